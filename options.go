// go-pn547
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn547.
//
// go-pn547 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn547 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn547; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package pn547

import (
	"errors"
	"log/slog"
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithClock sets the clock used for power holds and write retry delays
func WithClock(clock Clock) Option {
	return func(d *Device) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}
		d.clock = clock
		return nil
	}
}

// WithLogger sets the structured logger for device events
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		d.log = l
		return nil
	}
}

// WithName sets the device name used in logs
func WithName(name string) Option {
	return func(d *Device) error {
		d.name = name
		return nil
	}
}

// WithWriteRetries sets how many times a failed write is retried after the first attempt
func WithWriteRetries(retries int) Option {
	return func(d *Device) error {
		if retries < 0 {
			return errors.New("write retries must not be negative")
		}
		d.writeRetries = retries
		return nil
	}
}

// WithRetryDelay sets the pause between write attempts
func WithRetryDelay(delay time.Duration) Option {
	return func(d *Device) error {
		if delay < 0 {
			return errors.New("retry delay must not be negative")
		}
		d.retryDelay = delay
		return nil
	}
}

// SessionOption configures a Session at open time
type SessionOption func(*Session)

// WithNonBlocking opens the session in non-blocking mode: reads fail with
// ErrWouldBlock instead of waiting for the interrupt.
func WithNonBlocking() SessionOption {
	return func(s *Session) {
		s.nonBlocking.Store(true)
	}
}
