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
	"testing"

	"github.com/ZaparooProject/go-pn547/detection"
	"github.com/stretchr/testify/assert"
)

func TestCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts detection.Options
		want []uint16
	}{
		{
			name: "safe mode probes every address",
			opts: detection.Options{Mode: detection.Safe},
			want: []uint16{0x28, 0x29, 0x2A, 0x2B},
		},
		{
			name: "passive mode lists the default address",
			opts: detection.Options{Mode: detection.Passive},
			want: []uint16{0x2B},
		},
		{
			name: "blocklist",
			opts: detection.Options{Mode: detection.Full, Blocklist: []uint16{0x29}},
			want: []uint16{0x28, 0x2A, 0x2B},
		},
		{
			name: "ignored path",
			opts: detection.Options{Mode: detection.Safe, IgnorePaths: []string{"/dev/i2c-1:0x2B"}},
			want: []uint16{0x28, 0x29, 0x2A},
		},
		{
			name: "passive with default blocked",
			opts: detection.Options{Mode: detection.Passive, Blocklist: []uint16{0x2B}},
			want: []uint16{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, candidates("/dev/i2c-1", &tt.opts))
		})
	}
}

func TestDevicePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/dev/i2c-1:0x2B", devicePath("/dev/i2c-1", 0x2B))
	assert.Equal(t, "/dev/i2c-10:0x08", devicePath("/dev/i2c-10", 0x08))
}

func TestDetectorTransport(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "i2c", New().Transport())
}
