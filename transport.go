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
	"time"

	"github.com/jonboulle/clockwork"
)

// Bus is a byte-oriented, addressable two-wire bus endpoint bound to the controller.
// Implementations live in transport/i2c (periph.io) and transport/i2cdev (Linux i2c-dev).
type Bus interface {
	// Send writes data in a single transaction and reports how many bytes the bus accepted.
	Send(data []byte) (int, error)

	// Receive reads one frame into buf and reports the frame length. A length larger
	// than len(buf) means the bus and the chip disagree on framing.
	Receive(buf []byte) (int, error)

	// String names the bus for logs and errors
	String() string
}

// BusType names the kind of bus a Bus implementation drives
type BusType string

const (
	// BusI2C represents an I²C bus driven through periph.io.
	BusI2C BusType = "i2c"
	// BusI2CDev represents a Linux /dev/i2c-N character device.
	BusI2CDev BusType = "i2cdev"
	// BusMock represents a mock bus for testing
	BusMock BusType = "mock"
)

// BusTyper is implemented by buses that can report their type
type BusTyper interface {
	Type() BusType
}

// Clock is the delay primitive used for power holds and write retry gaps.
// clockwork.Clock satisfies it.
type Clock interface {
	Sleep(d time.Duration)
}

func defaultClock() Clock {
	return clockwork.NewRealClock()
}
