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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func openTestSession(t *testing.T, opts ...SessionOption) (*Session, *TestHardware) {
	t.Helper()

	dev, hw := setupTestDevice(t)
	s, err := dev.Open(opts...)
	require.NoError(t, err)
	hw.Log.Reset()
	return s, hw
}

func TestSession_NonBlockingMode(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t, WithNonBlocking())
	assert.True(t, s.NonBlocking())

	_, err := s.Read(context.Background(), 10)
	require.ErrorIs(t, err, ErrWouldBlock)
	assert.Equal(t, 0, hw.Bus.Receives())

	s.SetNonBlocking(false)
	assert.False(t, s.NonBlocking())
}

func TestSession_ReadPacket(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)
	hw.IRQLine.Set(gpio.High)
	hw.Bus.QueueFrames([]byte{0x40, 0x00, 0x03}, []byte{0x00, 0x10, 0x00})

	pkt, err := s.ReadPacket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0x03, 0x00, 0x10, 0x00}, pkt)
	assert.Equal(t, 2, hw.Bus.Receives())
}

func TestSession_ReadPacketHeaderOnly(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)
	hw.IRQLine.Set(gpio.High)
	hw.Bus.QueueFrames([]byte{0x60, 0x07, 0x00})

	pkt, err := s.ReadPacket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x07, 0x00}, pkt)
	assert.Equal(t, 1, hw.Bus.Receives())
}

func TestSession_ReadPacketShortHeader(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)
	hw.IRQLine.Set(gpio.High)
	hw.Bus.QueueFrames([]byte{0x40, 0x00})

	_, err := s.ReadPacket(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestSession_ReadPacketShortPayload(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)
	hw.IRQLine.Set(gpio.High)
	hw.Bus.QueueFrames([]byte{0x40, 0x00, 0x03}, []byte{0x00})

	_, err := s.ReadPacket(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestSession_ReadPacketNonBlockingWaitsForPayload(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t, WithNonBlocking())

	hdr := []byte{0x40, 0x00, 0x03}
	payload := []byte{0x00, 0x10, 0x01}
	receives := 0
	hw.Bus.ReceiveFunc = func(buf []byte) (int, error) {
		receives++
		if receives == 1 {
			// The controller drops its line between header and payload.
			hw.IRQLine.Set(gpio.Low)
			return copy(buf, hdr), nil
		}
		return copy(buf, payload), nil
	}
	hw.IRQLine.Set(gpio.High)

	type result struct {
		err  error
		data []byte
	}
	resCh := make(chan result, 1)
	go func() {
		data, err := s.ReadPacket(context.Background())
		resCh <- result{data: data, err: err}
	}()

	require.Eventually(t, s.dev.InterruptSignal().Armed, time.Second, time.Millisecond)
	assert.Equal(t, 1, hw.Bus.Receives())

	hw.IRQLine.Set(gpio.High)
	require.True(t, hw.IRQ.Fire())

	select {
	case res := <-resCh:
		require.NoError(t, res.err)
		assert.Equal(t, []byte{0x40, 0x00, 0x03, 0x00, 0x10, 0x01}, res.data)
	case <-time.After(2 * time.Second):
		t.Fatal("payload read did not complete")
	}
	assert.True(t, s.NonBlocking(), "the session mode is left unchanged")
}

func TestSession_WriteAndSetPower(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)

	n, err := s.Write([]byte{0x20, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, s.SetPower(PowerOn))
	assert.Equal(t, []string{"firmware=Low", "enable=High", "sleep 20ms"}, hw.Log.Events())

	require.ErrorIs(t, s.Control(CmdSetPower, 7), ErrInvalidArgument)
}

func TestSession_Closed(t *testing.T) {
	t.Parallel()

	s, hw := openTestSession(t)
	require.NoError(t, s.Close())
	hw.Log.Reset()

	_, err := s.Read(context.Background(), 1)
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Write([]byte{1})
	require.ErrorIs(t, err, ErrSessionClosed)
	require.ErrorIs(t, s.SetPower(PowerOn), ErrSessionClosed)
	_, err = s.ReadPacket(context.Background())
	require.ErrorIs(t, err, ErrSessionClosed)

	assert.Empty(t, hw.Log.Events())
	assert.Empty(t, hw.Bus.Sent())
}
