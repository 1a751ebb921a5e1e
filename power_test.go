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
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer() (*PowerSequencer, *EventLog, *RecordingPin, *RecordingPin) {
	log := &EventLog{}
	enable := NewRecordingPin("enable", log)
	firmware := NewRecordingPin("firmware", log)
	return NewPowerSequencer(enable, firmware, &RecordingClock{Log: log}, nil), log, enable, firmware
}

func TestPowerSequencer_Sequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want []string
		mode PowerMode
	}{
		{
			name: "off",
			mode: PowerOff,
			want: []string{"firmware=Low", "enable=Low", "sleep 60ms"},
		},
		{
			name: "on",
			mode: PowerOn,
			want: []string{"firmware=Low", "enable=High", "sleep 20ms"},
		},
		{
			name: "firmware download",
			mode: PowerOnFirmware,
			want: []string{
				"firmware=High",
				"enable=High", "sleep 20ms",
				"enable=Low", "sleep 60ms",
				"enable=High", "sleep 20ms",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seq, log, _, _ := newTestSequencer()
			require.NoError(t, seq.SetPower(tt.mode))
			assert.Equal(t, tt.want, log.Events())
			assert.Equal(t, tt.mode, seq.Mode())
		})
	}
}

func TestPowerSequencer_InitialModeOff(t *testing.T) {
	t.Parallel()

	seq, log, _, _ := newTestSequencer()
	assert.Equal(t, PowerOff, seq.Mode())
	assert.Empty(t, log.Events())
}

func TestPowerSequencer_UnknownMode(t *testing.T) {
	t.Parallel()

	seq, log, _, _ := newTestSequencer()
	err := seq.SetPower(PowerMode(99))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, log.Events())
}

func TestPowerSequencer_GPIOFailureAborts(t *testing.T) {
	t.Parallel()

	seq, log, enable, _ := newTestSequencer()
	require.NoError(t, seq.SetPower(PowerOn))
	log.Reset()

	driverErr := errors.New("line busy")
	enable.FailOut(driverErr)

	err := seq.SetPower(PowerOnFirmware)
	require.ErrorIs(t, err, ErrGPIO)
	require.ErrorIs(t, err, driverErr)

	var gpioErr *GPIOError
	require.ErrorAs(t, err, &gpioErr)
	assert.Equal(t, "enable", gpioErr.Line)

	assert.Equal(t, []string{"firmware=High", "enable=High failed"}, log.Events())
	assert.Equal(t, PowerOn, seq.Mode(), "a failed sequence must not change the mode")
}

func TestPowerSequencer_StoppedDrivesNothing(t *testing.T) {
	t.Parallel()

	seq, log, _, _ := newTestSequencer()
	require.NoError(t, seq.SetPower(PowerOn))
	log.Reset()

	seq.stop()

	require.ErrorIs(t, seq.SetPower(PowerOff), ErrDeviceRemoved)
	require.ErrorIs(t, seq.ResetPulse(), ErrDeviceRemoved)
	assert.Empty(t, log.Events())
	assert.Equal(t, PowerOn, seq.Mode())
}

func TestPowerSequencer_ResetPulse(t *testing.T) {
	t.Parallel()

	seq, log, _, firmware := newTestSequencer()
	require.NoError(t, seq.SetPower(PowerOnFirmware))
	log.Reset()

	require.NoError(t, seq.ResetPulse())
	assert.Equal(t, []string{
		"enable=High", "sleep 20ms",
		"enable=Low", "sleep 60ms",
		"enable=High",
	}, log.Events())
	assert.Equal(t, "High", firmware.Read().String())
}

func TestPowerSequencer_HoldsBeforeReturning(t *testing.T) {
	t.Parallel()

	log := &EventLog{}
	clock := clockwork.NewFakeClock()
	seq := NewPowerSequencer(NewRecordingPin("enable", log), NewRecordingPin("firmware", log), clock, nil)

	done := make(chan error, 1)
	go func() { done <- seq.SetPower(PowerOn) }()

	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("SetPower returned before the hold elapsed")
	default:
	}

	clock.Advance(19 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("SetPower returned before the hold elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("SetPower did not return after the hold")
	}
	assert.Equal(t, PowerOn, seq.Mode())
}

func TestParsePowerMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    PowerMode
		wantErr bool
	}{
		{in: "off", want: PowerOff},
		{in: "0", want: PowerOff},
		{in: "ON", want: PowerOn},
		{in: "1", want: PowerOn},
		{in: "firmware", want: PowerOnFirmware},
		{in: " fw ", want: PowerOnFirmware},
		{in: "2", want: PowerOnFirmware},
		{in: "3", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePowerMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) PowerMode {
	t.Helper()
	m, err := ParsePowerMode(s)
	require.NoError(t, err)
	return m
}
