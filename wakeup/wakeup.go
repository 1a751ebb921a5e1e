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

// Package wakeup marks devices as system wake sources through sysfs.
package wakeup

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	enabledValue  = "enabled"
	disabledValue = "disabled"
)

// ErrUnexpectedValue is returned when a wakeup attribute holds something other
// than "enabled" or "disabled"
var ErrUnexpectedValue = errors.New("unexpected wakeup attribute value")

// I2CDevicePath returns the power/wakeup attribute of an I²C client device
func I2CDevicePath(bus int, addr uint16) string {
	return fmt.Sprintf("/sys/bus/i2c/devices/%d-%04x/power/wakeup", bus, addr)
}

// Sysfs writes a device's power/wakeup attribute
type Sysfs struct {
	path string
	mu   sync.Mutex
}

// New creates a wake source for the attribute at path
func New(path string) *Sysfs {
	return &Sysfs{path: path}
}

// Path returns the attribute path
func (s *Sysfs) Path() string {
	return s.path
}

// SetWake enables or disables the device as a wake source
func (s *Sysfs) SetWake(enabled bool) error {
	value := disabledValue
	if enabled {
		value = enabledValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G306 -- sysfs attributes ignore the mode
	if err := os.WriteFile(s.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", value, s.path, err)
	}
	return nil
}

// Enabled reads the attribute back
func (s *Sysfs) Enabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	switch v := strings.TrimSpace(string(raw)); v {
	case enabledValue:
		return true, nil
	case disabledValue:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnexpectedValue, v)
	}
}
