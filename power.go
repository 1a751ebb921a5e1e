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
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// PowerMode is the operating mode the controller is sequenced into
type PowerMode int

const (
	// PowerOff holds the controller in reset
	PowerOff PowerMode = iota
	// PowerOn boots the controller into normal operation
	PowerOn
	// PowerOnFirmware boots the controller into its firmware download mode
	PowerOnFirmware
)

// Hold times required by the controller after each transition
const (
	powerOnHold  = 20 * time.Millisecond
	powerOffHold = 60 * time.Millisecond
)

// String returns the mode name
func (m PowerMode) String() string {
	switch m {
	case PowerOff:
		return "off"
	case PowerOn:
		return "on"
	case PowerOnFirmware:
		return "firmware"
	default:
		return fmt.Sprintf("PowerMode(%d)", int(m))
	}
}

// ParsePowerMode accepts the names printed by PowerMode.String
func ParsePowerMode(s string) (PowerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return PowerOff, nil
	case "on", "1":
		return PowerOn, nil
	case "firmware", "fw", "2":
		return PowerOnFirmware, nil
	default:
		return PowerOff, fmt.Errorf("%w: unknown power mode %q", ErrInvalidArgument, s)
	}
}

type powerLine int

const (
	lineEnable powerLine = iota
	lineFirmware
)

func (l powerLine) String() string {
	if l == lineFirmware {
		return "firmware"
	}
	return "enable"
}

// powerStep drives one line and then holds for the given time
type powerStep struct {
	line  powerLine
	level gpio.Level
	hold  time.Duration
}

// The controller samples the firmware line on the rising edge of enable, so the
// firmware level is always set before enable goes high.
var powerSequences = map[PowerMode][]powerStep{
	PowerOff: {
		{line: lineFirmware, level: gpio.Low},
		{line: lineEnable, level: gpio.Low, hold: powerOffHold},
	},
	PowerOn: {
		{line: lineFirmware, level: gpio.Low},
		{line: lineEnable, level: gpio.High, hold: powerOnHold},
	},
	PowerOnFirmware: {
		{line: lineFirmware, level: gpio.High},
		{line: lineEnable, level: gpio.High, hold: powerOnHold},
		{line: lineEnable, level: gpio.Low, hold: powerOffHold},
		{line: lineEnable, level: gpio.High, hold: powerOnHold},
	},
}

// resetPulse power cycles the controller without touching the firmware line
var resetPulse = []powerStep{
	{line: lineEnable, level: gpio.High, hold: powerOnHold},
	{line: lineEnable, level: gpio.Low, hold: powerOffHold},
	{line: lineEnable, level: gpio.High},
}

// PowerSequencer owns the enable (VEN) and firmware select lines.
// Sequences are serialized; a call returns only after its final hold has elapsed.
type PowerSequencer struct {
	enable   gpio.PinOut
	firmware gpio.PinOut
	clock    Clock
	log      *slog.Logger

	mu   sync.Mutex
	mode PowerMode

	// stopping aborts a running sequence at its next step
	stopping atomic.Bool
}

// NewPowerSequencer creates a sequencer. The lines are assumed to already be
// driven low, which is PowerOff.
func NewPowerSequencer(enable, firmware gpio.PinOut, clock Clock, log *slog.Logger) *PowerSequencer {
	if clock == nil {
		clock = defaultClock()
	}
	if log == nil {
		log = Logger()
	}
	return &PowerSequencer{
		enable:   enable,
		firmware: firmware,
		clock:    clock,
		log:      log,
		mode:     PowerOff,
	}
}

// Mode returns the last mode that was fully applied
func (p *PowerSequencer) Mode() PowerMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetPower runs the sequence for mode. A GPIO failure aborts the remaining steps
// and leaves Mode unchanged, as does removal of the device mid-sequence.
func (p *PowerSequencer) SetPower(mode PowerMode) error {
	steps, ok := powerSequences[mode]
	if !ok {
		return fmt.Errorf("%w: power mode %d", ErrInvalidArgument, int(mode))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.run(steps); err != nil {
		if errors.Is(err, ErrDeviceRemoved) {
			p.log.Warn("power sequence stopped by removal", "mode", mode.String())
		} else {
			p.log.Error("power sequence aborted", "mode", mode.String(), "error", err)
		}
		return err
	}

	p.log.Info("power mode set", "mode", mode.String(), "previous", p.mode.String())
	p.mode = mode
	return nil
}

// ResetPulse cycles enable while leaving the firmware line alone
func (p *PowerSequencer) ResetPulse() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.run(resetPulse); err != nil {
		return err
	}
	debugln("power: reset pulse complete")
	return nil
}

// stop makes every later sequence fail with ErrDeviceRemoved and waits for a
// running one to give up. The lines are not driven once stop returns.
func (p *PowerSequencer) stop() {
	p.stopping.Store(true)
	p.mu.Lock()
	defer p.mu.Unlock()
}

func (p *PowerSequencer) run(steps []powerStep) error {
	for _, step := range steps {
		if p.stopping.Load() {
			return ErrDeviceRemoved
		}

		pin := p.enable
		if step.line == lineFirmware {
			pin = p.firmware
		}

		if err := pin.Out(step.level); err != nil {
			return &GPIOError{Line: step.line.String(), Level: step.level, Err: err}
		}
		debugf("power: %s=%s hold=%s", step.line, step.level, step.hold)

		if step.hold > 0 {
			p.clock.Sleep(step.hold)
		}
	}
	return nil
}
