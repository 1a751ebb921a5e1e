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
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: the package logger and debug flag are global.
func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		SetDebugEnabled(false)
		SetLogger(nil)
	})

	debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebugEnabled(true)
	debugf("read: %d bytes", 3)
	debugln("irq:", "rearming")
	assert.Contains(t, buf.String(), "read: 3 bytes")
	assert.Contains(t, buf.String(), "irq:rearming")

	SetLogger(nil)
	assert.Equal(t, slog.Default(), Logger())
}

func TestOptionsRejectInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opt  Option
		name string
	}{
		{name: "nil clock", opt: WithClock(nil)},
		{name: "nil logger", opt: WithLogger(nil)},
		{name: "negative retries", opt: WithWriteRetries(-1)},
		{name: "negative delay", opt: WithRetryDelay(-time.Millisecond)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hw := NewTestHardware()
			_, err := Setup(hw.Resources(), tt.opt)
			require.Error(t, err)
		})
	}
}

func TestWakeFunc(t *testing.T) {
	t.Parallel()

	var got []bool
	wake := WakeFunc(func(enabled bool) error {
		got = append(got, enabled)
		if !enabled {
			return errors.New("stuck")
		}
		return nil
	})

	require.NoError(t, wake.SetWake(true))
	require.Error(t, wake.SetWake(false))
	assert.Equal(t, []bool{true, false}, got)
	require.NoError(t, NopWake.SetWake(true))
}
