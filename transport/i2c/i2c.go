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

// Package i2c provides a periph.io I²C bus for the PN547
package i2c

import (
	"fmt"
	"io"
	"sync"

	pn547 "github.com/ZaparooProject/go-pn547"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the PN547's 7-bit I²C address
	DefaultAddress = 0x2B

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements pn547.Bus on a periph.io I²C bus.
// periph transactions are all-or-nothing, so a successful transfer always moves
// the full buffer.
type Transport struct {
	dev     *i2c.Dev
	closer  io.Closer
	busName string
	mu      sync.Mutex
}

// New opens the named I²C bus ("" for the first one) and binds it to addr
func New(busName string, addr uint16) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	_ = bus.SetSpeed(maxClockFreq) // Ignore error, continue with default speed

	t := NewWithBus(bus, addr)
	t.closer = bus
	if busName != "" {
		t.busName = busName
	}
	return t, nil
}

// NewWithBus binds an already open bus. The caller keeps ownership of bus.
func NewWithBus(bus i2c.Bus, addr uint16) *Transport {
	return &Transport{
		dev:     &i2c.Dev{Addr: addr, Bus: bus},
		busName: bus.String(),
	}
}

// Send writes data in one transaction
func (t *Transport) Send(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.dev.Write(data)
	if err != nil {
		return n, fmt.Errorf("I2C write to 0x%02X failed: %w", t.dev.Addr, err)
	}
	return n, nil
}

// Receive fills buf in one transaction
func (t *Transport) Receive(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dev.Tx(nil, buf); err != nil {
		return 0, fmt.Errorf("I2C read from 0x%02X failed: %w", t.dev.Addr, err)
	}
	return len(buf), nil
}

// String returns the bus name
func (t *Transport) String() string {
	return t.busName
}

// Type returns the bus type
func (*Transport) Type() pn547.BusType {
	return pn547.BusI2C
}

// Close closes the bus if this transport opened it
func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}
	if err := t.closer.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// Ensure Transport implements pn547.Bus
var _ pn547.Bus = (*Transport)(nil)
