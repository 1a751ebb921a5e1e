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

package detection

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBlocklist returns I²C addresses that are never probed.
// Candidate addresses overlap with ranging and light sensors (VL53L0X, TSL2561 at
// 0x29), so boards carrying those should add them to Options.Blocklist.
func DefaultBlocklist() []uint16 {
	return []uint16{}
}

// IsBlocked checks if an address is in the blocklist
func IsBlocked(addr uint16, blocklist []uint16) bool {
	for _, blocked := range blocklist {
		if addr == blocked {
			return true
		}
	}
	return false
}

// ParseAddress parses a 7-bit I²C address in hex ("0x2B", "2b") or decimal ("43")
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x"):
		v, err = strconv.ParseUint(s[2:], 16, 16)
	case isHexOnly(s):
		v, err = strconv.ParseUint(s, 16, 16)
	default:
		v, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid I2C address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("invalid I2C address %q: not a 7-bit address", s)
	}
	return uint16(v), nil
}

// isHexOnly reports strings that can only be hex, i.e. contain a-f
func isHexOnly(s string) bool {
	if s == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}

		if normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
		if devicePath == ignorePath {
			return true
		}
	}
	return false
}

// normalizedPath normalizes a device path for comparison
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
