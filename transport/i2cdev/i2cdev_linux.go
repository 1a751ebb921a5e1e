//go:build linux

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

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Transport is an open i2c-dev file bound to one slave address
type Transport struct {
	path string
	mu   sync.Mutex
	fd   int
	addr uint16
}

// Open opens path, checks the adapter supports plain I²C and binds addr
func Open(path string, addr uint16) (*Transport, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	funcs, err := unix.IoctlGetUint32(fd, i2cFuncs)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to query %s functionality: %w", path, err)
	}
	if funcs&i2cFuncI2C == 0 {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%s: %w", path, ErrNoPlainI2C)
	}

	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to bind %s to 0x%02X: %w", path, addr, err)
	}

	return &Transport{path: path, fd: fd, addr: addr}, nil
}

// Send writes data and reports how many bytes the adapter accepted
func (t *Transport) Send(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fd < 0 {
		return 0, ErrClosed
	}

	n, err := unix.Write(t.fd, data)
	if err != nil {
		return 0, fmt.Errorf("write to %s failed: %w", t, err)
	}
	return n, nil
}

// Receive reads one frame into buf
func (t *Transport) Receive(buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fd < 0 {
		return 0, ErrClosed
	}

	n, err := unix.Read(t.fd, buf)
	if err != nil {
		return 0, fmt.Errorf("read from %s failed: %w", t, err)
	}
	return n, nil
}

// Close closes the device file
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fd < 0 {
		return nil
	}

	err := unix.Close(t.fd)
	t.fd = -1
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", t.path, err)
	}
	return nil
}
