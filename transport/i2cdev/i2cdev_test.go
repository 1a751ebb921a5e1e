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

package i2cdev

import (
	"os"
	"path/filepath"
	"testing"

	pn547 "github.com/ZaparooProject/go-pn547"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/dev/i2c-1", Path(1))
	assert.Equal(t, "/dev/i2c-12", Path(12))
}

func TestOpenRejectsNonAdapters(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing"), 0x2B)
	require.Error(t, err)

	// A regular file has no I2C_FUNCS ioctl
	plain := filepath.Join(t.TempDir(), "i2c-9")
	require.NoError(t, os.WriteFile(plain, nil, 0o600))
	_, err = Open(plain, 0x2B)
	require.Error(t, err)
}

func TestTransportIdentity(t *testing.T) {
	t.Parallel()

	tr := &Transport{path: "/dev/i2c-1", addr: 0x2B}
	assert.Equal(t, "/dev/i2c-1:0x2B", tr.String())
	assert.Equal(t, pn547.BusI2CDev, tr.Type())
}
