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

package i2c

import (
	"context"
	"testing"

	pn547 "github.com/ZaparooProject/go-pn547"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestTransport_SendReceive(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0x20, 0x00, 0x01, 0x00}},
			{Addr: DefaultAddress, R: []byte{0x40, 0x00, 0x03}},
			{Addr: DefaultAddress, R: []byte{0x00, 0x10, 0x00}},
		},
		DontPanic: true,
	}
	tr := NewWithBus(bus, DefaultAddress)

	n, err := tr.Send([]byte{0x20, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	hdr := make([]byte, 3)
	n, err = tr.Receive(hdr)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x40, 0x00, 0x03}, hdr)

	payload := make([]byte, 3)
	n, err = tr.Receive(payload)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x00, 0x10, 0x00}, payload)

	require.NoError(t, tr.Close(), "NewWithBus does not own the bus")
	require.NoError(t, bus.Close())
}

func TestTransport_EmptyTransfers(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{DontPanic: true}
	tr := NewWithBus(bus, DefaultAddress)

	n, err := tr.Send(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = tr.Receive(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, bus.Close())
}

func TestTransport_Errors(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x28, W: []byte{0x01}}},
		DontPanic: true,
	}
	tr := NewWithBus(bus, DefaultAddress)

	_, err := tr.Send([]byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I2C write to 0x2B failed")

	_, err = tr.Receive(make([]byte, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I2C read from 0x2B failed")
}

func TestTransport_Identity(t *testing.T) {
	t.Parallel()

	tr := NewWithBus(&i2ctest.Playback{}, DefaultAddress)
	assert.Equal(t, "playback", tr.String())
	assert.Equal(t, pn547.BusI2C, tr.Type())
}

func TestTransport_WithDevice(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0x20, 0x00, 0x01, 0x00}},
			{Addr: DefaultAddress, R: []byte{0x40, 0x00, 0x03}},
		},
		DontPanic: true,
	}

	hw := pn547.NewTestHardware()
	res := hw.Resources()
	res.Bus = NewWithBus(bus, DefaultAddress)

	dev, err := pn547.Setup(res, pn547.WithClock(hw.Clock))
	require.NoError(t, err)
	defer func() { require.NoError(t, dev.Remove()) }()

	s, err := dev.Open()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	n, err := s.Write([]byte{0x20, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	hw.IRQLine.Set(gpio.High)
	hdr, err := s.Read(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0x03}, hdr)
	require.NoError(t, bus.Close())
}
