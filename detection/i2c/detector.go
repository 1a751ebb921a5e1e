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
	"runtime"

	"github.com/ZaparooProject/go-pn547/detection"
)

const (
	// DefaultPN547Address is the address the PN547 answers on with both
	// address pins pulled high
	DefaultPN547Address = 0x2B
)

// candidateAddresses are the four addresses selectable with the I2CADR pins
var candidateAddresses = []uint16{0x28, 0x29, 0x2A, 0x2B}

// detector implements the Detector interface for I2C devices
type detector struct{}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "i2c"
}

// Detect searches for PN547 devices on I2C buses
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectLinux(ctx, opts)
}

// candidates filters the candidate addresses through the blocklist and ignore paths
func candidates(busPath string, opts *detection.Options) []uint16 {
	out := make([]uint16, 0, len(candidateAddresses))
	for _, addr := range candidateAddresses {
		if detection.IsBlocked(addr, opts.Blocklist) {
			continue
		}
		if detection.IsPathIgnored(devicePath(busPath, addr), opts.IgnorePaths) {
			continue
		}
		if opts.Mode == detection.Passive && addr != DefaultPN547Address {
			continue
		}
		out = append(out, addr)
	}
	return out
}
