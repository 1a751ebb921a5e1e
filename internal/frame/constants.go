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

// Package frame provides frame limits, buffer pooling and NCI packet helpers for
// PN547 communication
package frame

// Transfer limits
const (
	// MaxTransferUnit caps a single bus read or write in either direction
	MaxTransferUnit = 512
	// HeaderLength is the size of an NCI packet header
	HeaderLength = 3
	// MaxPayloadLength is the largest payload an NCI header can announce
	MaxPayloadLength = 255
)

// NCI message types, carried in the top three bits of the first header byte
const (
	MTData         = 0x00
	MTCommand      = 0x01
	MTResponse     = 0x02
	MTNotification = 0x03
)

// NCI core group opcodes
const (
	GIDCore       = 0x00
	OIDCoreReset  = 0x00
	OIDCoreInit   = 0x01
	ResetKeepConf = 0x00
	ResetConf     = 0x01
)

// Header field masks
const (
	mtShift  = 5
	mtMask   = 0x07
	pbfMask  = 0x10
	gidMask  = 0x0F
	oidMask  = 0x3F
	connMask = 0x0F
)
