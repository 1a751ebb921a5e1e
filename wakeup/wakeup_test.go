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

package wakeup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttribute(t *testing.T, initial string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakeup")
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))
	return path
}

func TestSysfs_SetWake(t *testing.T) {
	t.Parallel()

	path := newTestAttribute(t, "disabled\n")
	s := New(path)
	assert.Equal(t, path, s.Path())

	enabled, err := s.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, s.SetWake(true))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "enabled", string(raw))

	enabled, err = s.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.SetWake(false))
	enabled, err = s.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSysfs_UnexpectedValue(t *testing.T) {
	t.Parallel()

	s := New(newTestAttribute(t, "maybe"))
	_, err := s.Enabled()
	require.ErrorIs(t, err, ErrUnexpectedValue)
}

func TestSysfs_MissingAttribute(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "missing", "wakeup"))
	require.Error(t, s.SetWake(true))

	_, err := s.Enabled()
	require.Error(t, err)
}

func TestI2CDevicePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/sys/bus/i2c/devices/1-002b/power/wakeup", I2CDevicePath(1, 0x2B))
	assert.Equal(t, "/sys/bus/i2c/devices/10-0028/power/wakeup", I2CDevicePath(10, 0x28))
}
