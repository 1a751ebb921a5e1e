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
	"fmt"
	"sync/atomic"

	"github.com/ZaparooProject/go-pn547/internal/frame"
)

// Session is an open handle on a Device, the equivalent of an open file descriptor
// on the controller's character device.
type Session struct {
	dev         *Device
	nonBlocking atomic.Bool
	closed      atomic.Bool
}

// NonBlocking reports whether reads fail with ErrWouldBlock instead of waiting
func (s *Session) NonBlocking() bool {
	return s.nonBlocking.Load()
}

// SetNonBlocking switches the session's read mode
func (s *Session) SetNonBlocking(nonBlocking bool) {
	s.nonBlocking.Store(nonBlocking)
}

// Read reads one frame of at most maxLen bytes
func (s *Session) Read(ctx context.Context, maxLen int) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.dev.Read(ctx, maxLen, s.nonBlocking.Load())
}

// Write sends one frame
func (s *Session) Write(data []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	return s.dev.Write(data)
}

// Control issues a raw control request
func (s *Session) Control(cmd uint32, arg uint64) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.dev.Control(cmd, arg)
}

// SetPower is shorthand for Control(CmdSetPower, mode)
func (s *Session) SetPower(mode PowerMode) error {
	return s.Control(CmdSetPower, uint64(mode))
}

// ReadPacket reads one complete NCI packet: the three byte header first, then the
// payload it announces. Only the header read honours non-blocking mode; once a
// header is consumed the payload read always waits, so a would-block result
// never splits a packet. If ctx ends between the two reads the stream is out of
// step and the controller must be reset (SetPower off then on).
func (s *Session) ReadPacket(ctx context.Context) ([]byte, error) {
	hdr, err := s.Read(ctx, frame.HeaderLength)
	if err != nil {
		return nil, err
	}
	h, err := frame.ParseHeader(hdr)
	if err != nil {
		return nil, NewTransportError("readPacket", s.dev.bus.String(),
			fmt.Errorf("%w: %w", ErrProtocol, err), ErrorTypePermanent)
	}
	if h.PayloadLen == 0 {
		return hdr, nil
	}

	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	payload, err := s.dev.Read(ctx, h.PayloadLen, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s payload: %w", h, err)
	}
	if len(payload) != h.PayloadLen {
		return nil, NewTransportError("readPacket", s.dev.bus.String(),
			fmt.Errorf("%w: %s got %d payload bytes", ErrProtocol, h, len(payload)), ErrorTypePermanent)
	}
	return append(hdr, payload...), nil
}

// Close ends the session
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	return s.dev.release()
}
