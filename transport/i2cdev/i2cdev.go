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

// Package i2cdev drives the PN547 through a Linux /dev/i2c-N character device.
//
// Unlike periph.io transactions, read(2) and write(2) on i2c-dev report how many
// bytes actually moved, so short transfers reach the retry logic in pn547.Device.
package i2cdev

import (
	"errors"
	"fmt"

	pn547 "github.com/ZaparooProject/go-pn547"
)

const (
	// i2cSlave is the ioctl command to set slave address
	i2cSlave = 0x0703

	// i2cFuncs is the ioctl command to get adapter functionality
	i2cFuncs = 0x0705

	// i2cFuncI2C indicates plain I2C support
	i2cFuncI2C = 0x00000001
)

var (
	// ErrUnsupportedPlatform is returned outside Linux
	ErrUnsupportedPlatform = errors.New("i2c-dev is only available on linux")
	// ErrNoPlainI2C is returned when the adapter cannot do plain I²C transfers
	ErrNoPlainI2C = errors.New("adapter does not support plain I2C transfers")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("i2c-dev transport closed")
)

// Path returns the character device path for bus number n
func Path(n int) string {
	return fmt.Sprintf("/dev/i2c-%d", n)
}

// String returns the device path and address
func (t *Transport) String() string {
	return fmt.Sprintf("%s:0x%02X", t.path, t.addr)
}

// Type returns the bus type
func (*Transport) Type() pn547.BusType {
	return pn547.BusI2CDev
}

// Ensure Transport implements pn547.Bus
var _ pn547.Bus = (*Transport)(nil)
