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

import "sync"

const smallBufferSize = 16

var (
	smallPool = sync.Pool{New: func() any { b := make([]byte, smallBufferSize); return &b }}
	largePool = sync.Pool{New: func() any { b := make([]byte, MaxTransferUnit); return &b }}
)

// GetBuffer returns a zeroed buffer of exactly size bytes. Sizes above
// MaxTransferUnit are allocated directly and never pooled.
func GetBuffer(size int) []byte {
	var bp *[]byte
	switch {
	case size <= smallBufferSize:
		bp, _ = smallPool.Get().(*[]byte)
	case size <= MaxTransferUnit:
		bp, _ = largePool.Get().(*[]byte)
	default:
		return make([]byte, size)
	}

	buf := (*bp)[:size]
	clear(buf)
	return buf
}

// PutBuffer returns a buffer obtained from GetBuffer to its pool
func PutBuffer(buf []byte) {
	switch cap(buf) {
	case smallBufferSize:
		buf = buf[:smallBufferSize]
		smallPool.Put(&buf)
	case MaxTransferUnit:
		buf = buf[:MaxTransferUnit]
		largePool.Put(&buf)
	}
}
