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

package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrShortHeader is returned when fewer than HeaderLength bytes are available
	ErrShortHeader = errors.New("nci header too short")
	// ErrLengthMismatch is returned when a packet's payload does not match its header
	ErrLengthMismatch = errors.New("nci payload length mismatch")
	// ErrPayloadTooLarge is returned when a payload does not fit in one packet
	ErrPayloadTooLarge = errors.New("nci payload too large")
)

// Header is a decoded NCI packet header
type Header struct {
	MT         byte
	GID        byte // control packets only
	OID        byte // control packets only
	ConnID     byte // data packets only
	PayloadLen int
	Segmented  bool // packet boundary flag: more segments follow
}

// IsControl reports whether the header belongs to a command, response or notification
func (h Header) IsControl() bool {
	return h.MT != MTData
}

// String renders the header for logs
func (h Header) String() string {
	if !h.IsControl() {
		return fmt.Sprintf("DATA conn=%d len=%d", h.ConnID, h.PayloadLen)
	}
	return fmt.Sprintf("%s gid=0x%X oid=0x%02X len=%d", MTName(h.MT), h.GID, h.OID, h.PayloadLen)
}

// MTName names an NCI message type
func MTName(mt byte) string {
	switch mt {
	case MTData:
		return "DATA"
	case MTCommand:
		return "CMD"
	case MTResponse:
		return "RSP"
	case MTNotification:
		return "NTF"
	default:
		return fmt.Sprintf("MT(%d)", mt)
	}
}

// ParseHeader decodes the first HeaderLength bytes of buf
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLength {
		return Header{}, fmt.Errorf("%w: got %d bytes", ErrShortHeader, len(buf))
	}

	h := Header{
		MT:         (buf[0] >> mtShift) & mtMask,
		Segmented:  buf[0]&pbfMask != 0,
		PayloadLen: int(buf[2]),
	}
	if h.IsControl() {
		h.GID = buf[0] & gidMask
		h.OID = buf[1] & oidMask
	} else {
		h.ConnID = buf[0] & connMask
	}
	return h, nil
}

// Bytes encodes the header
func (h Header) Bytes() []byte {
	b0 := (h.MT & mtMask) << mtShift
	if h.Segmented {
		b0 |= pbfMask
	}

	var b1 byte
	if h.IsControl() {
		b0 |= h.GID & gidMask
		b1 = h.OID & oidMask
	} else {
		b0 |= h.ConnID & connMask
	}
	return []byte{b0, b1, byte(h.PayloadLen)}
}

// BuildCommand encodes a complete, unsegmented control command packet
func BuildCommand(gid, oid byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	h := Header{MT: MTCommand, GID: gid, OID: oid, PayloadLen: len(payload)}
	pkt := make([]byte, 0, HeaderLength+len(payload))
	pkt = append(pkt, h.Bytes()...)
	return append(pkt, payload...), nil
}

// CoreResetCmd builds CORE_RESET_CMD with the given reset type
func CoreResetCmd(resetType byte) []byte {
	pkt, _ := BuildCommand(GIDCore, OIDCoreReset, []byte{resetType})
	return pkt
}

// CoreInitCmd builds CORE_INIT_CMD
func CoreInitCmd() []byte {
	pkt, _ := BuildCommand(GIDCore, OIDCoreInit, nil)
	return pkt
}

// ParsePacket splits a complete packet into header and payload, checking that the
// payload length matches the header.
func ParsePacket(pkt []byte) (Header, []byte, error) {
	h, err := ParseHeader(pkt)
	if err != nil {
		return Header{}, nil, err
	}

	payload := pkt[HeaderLength:]
	if len(payload) != h.PayloadLen {
		return Header{}, nil, fmt.Errorf("%w: header says %d, got %d", ErrLengthMismatch, h.PayloadLen, len(payload))
	}
	return h, payload, nil
}
