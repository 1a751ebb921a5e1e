//go:build !linux

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

package i2cdev

// Transport is unavailable on this platform
type Transport struct {
	path string
	addr uint16
}

// Open always fails outside Linux
func Open(path string, addr uint16) (*Transport, error) {
	return nil, ErrUnsupportedPlatform
}

// Send always fails outside Linux
func (*Transport) Send([]byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

// Receive always fails outside Linux
func (*Transport) Receive([]byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

// Close is a no-op
func (*Transport) Close() error {
	return nil
}
