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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		in   []byte
		hdr  Header
	}{
		{
			name: "core reset response",
			in:   []byte{0x40, 0x00, 0x03},
			hdr:  Header{MT: MTResponse, GID: GIDCore, OID: OIDCoreReset, PayloadLen: 3},
			want: "RSP gid=0x0 oid=0x00 len=3",
		},
		{
			name: "core reset command",
			in:   []byte{0x20, 0x00, 0x01},
			hdr:  Header{MT: MTCommand, GID: GIDCore, OID: OIDCoreReset, PayloadLen: 1},
			want: "CMD gid=0x0 oid=0x00 len=1",
		},
		{
			name: "notification",
			in:   []byte{0x61, 0x05, 0x10},
			hdr:  Header{MT: MTNotification, GID: 0x1, OID: 0x05, PayloadLen: 16},
			want: "NTF gid=0x1 oid=0x05 len=16",
		},
		{
			name: "segmented data",
			in:   []byte{0x11, 0x00, 0xFF},
			hdr:  Header{MT: MTData, ConnID: 1, PayloadLen: 255, Segmented: true},
			want: "DATA conn=1 len=255",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, err := ParseHeader(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.hdr, h)
			assert.Equal(t, tt.want, h.String())
			assert.Equal(t, tt.in, h.Bytes())
		})
	}
}

func TestParseHeader_Short(t *testing.T) {
	t.Parallel()

	_, err := ParseHeader([]byte{0x40, 0x00})
	require.ErrorIs(t, err, ErrShortHeader)
}

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0x20, 0x00, 0x01, 0x00}, CoreResetCmd(ResetKeepConf))
	assert.Equal(t, []byte{0x20, 0x00, 0x01, 0x01}, CoreResetCmd(ResetConf))
	assert.Equal(t, []byte{0x20, 0x01, 0x00}, CoreInitCmd())

	_, err := BuildCommand(GIDCore, OIDCoreInit, make([]byte, MaxPayloadLength+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestParsePacket(t *testing.T) {
	t.Parallel()

	h, payload, err := ParsePacket([]byte{0x40, 0x00, 0x03, 0x00, 0x10, 0x00})
	require.NoError(t, err)
	assert.Equal(t, byte(MTResponse), h.MT)
	assert.Equal(t, []byte{0x00, 0x10, 0x00}, payload)

	_, _, err = ParsePacket([]byte{0x40, 0x00, 0x03, 0x00})
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, _, err = ParsePacket([]byte{0x40})
	require.ErrorIs(t, err, ErrShortHeader)
}

func TestMTName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DATA", MTName(MTData))
	assert.Equal(t, "MT(5)", MTName(5))
}

func TestBufferPool(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 3, 16, 17, 255, MaxTransferUnit, MaxTransferUnit + 1} {
		buf := GetBuffer(size)
		require.Len(t, buf, size)
		assert.True(t, bytes.Equal(buf, make([]byte, size)), "buffer of %d bytes is not zeroed", size)

		for i := range buf {
			buf[i] = 0xFF
		}
		PutBuffer(buf)
	}

	buf := GetBuffer(MaxTransferUnit)
	assert.True(t, bytes.Equal(buf, make([]byte, MaxTransferUnit)), "recycled buffer is not zeroed")
	PutBuffer(buf)
}
