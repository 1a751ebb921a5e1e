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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-pn547/internal/frame"
	"github.com/ZaparooProject/go-pn547/internal/transport"
	"periph.io/x/conn/v3/gpio"
)

// MaxTransferUnit caps a single read or write. Larger requests are truncated before
// the bus is touched.
const MaxTransferUnit = frame.MaxTransferUnit

// CmdSetPower is the only control command, _IOW(0xE9, 0x01, unsigned int).
// Its argument is a PowerMode: 0 off, 1 on, 2 on with firmware download.
const CmdSetPower uint32 = 0x4004E901

// Write retry defaults: three attempts in total, 20ms apart
const (
	defaultWriteRetries = 2
	defaultRetryDelay   = 20 * time.Millisecond
)

// Resources is the hardware bundle a Device takes ownership of.
// A bundle can back exactly one Device.
type Resources struct {
	Bus      Bus
	IRQLine  gpio.PinIn
	Enable   gpio.PinOut
	Firmware gpio.PinOut
	IRQ      InterruptController
	// Wake is optional and defaults to NopWake
	Wake WakeSource

	claimed atomic.Bool
}

func (r *Resources) validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: resources", ErrMissingResource)
	case r.Bus == nil:
		return fmt.Errorf("%w: bus", ErrMissingResource)
	case r.IRQLine == nil:
		return fmt.Errorf("%w: irq line", ErrMissingResource)
	case r.Enable == nil:
		return fmt.Errorf("%w: enable line", ErrMissingResource)
	case r.Firmware == nil:
		return fmt.Errorf("%w: firmware line", ErrMissingResource)
	case r.IRQ == nil:
		return fmt.Errorf("%w: interrupt controller", ErrMissingResource)
	}
	return nil
}

// Device is a PN547 controller reachable over a bus.
//
// Thread Safety: Device is safe for concurrent use. Reads are serialized by an
// internal mutex; writes and control requests are not ordered against reads, so
// callers pairing a write with its response must serialize that pair themselves.
type Device struct {
	bus    Bus
	res    *Resources
	wake   WakeSource
	signal *InterruptSignal
	power  *PowerSequencer
	clock  Clock
	log    *slog.Logger
	done   chan struct{}

	name         string
	writeRetries int
	retryDelay   time.Duration

	readMu sync.Mutex

	sessMu   sync.Mutex
	sessions int

	removeOnce sync.Once
	removeErr  error
}

// Setup takes ownership of res, drives the control lines low, registers the
// interrupt handler and returns a ready Device. On failure every resource acquired
// so far is released in reverse order.
func Setup(res *Resources, opts ...Option) (*Device, error) {
	if err := res.validate(); err != nil {
		return nil, err
	}
	if !res.claimed.CompareAndSwap(false, true) {
		return nil, ErrResourcesClaimed
	}

	d := &Device{
		bus:          res.Bus,
		res:          res,
		wake:         res.Wake,
		clock:        defaultClock(),
		log:          Logger(),
		done:         make(chan struct{}),
		name:         res.Bus.String(),
		writeRetries: defaultWriteRetries,
		retryDelay:   defaultRetryDelay,
	}
	if d.wake == nil {
		d.wake = NopWake
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			res.claimed.Store(false)
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	d.log = d.log.With("device", d.name)

	if err := d.acquire(); err != nil {
		res.claimed.Store(false)
		d.log.Error("setup failed", "error", err)
		return nil, err
	}

	d.log.Info("device ready", "bus", d.bus.String())
	return d, nil
}

func (d *Device) acquire() error {
	var undo []func() error
	unwind := func(cause error) error {
		errs := []error{cause}
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	res := d.res
	if err := res.IRQLine.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return unwind(fmt.Errorf("%w: request irq line: %w", ErrGPIO, err))
	}
	undo = append(undo, haltFunc("irq", res.IRQLine))

	if err := res.Enable.Out(gpio.Low); err != nil {
		return unwind(&GPIOError{Line: "enable", Level: gpio.Low, Err: err})
	}
	undo = append(undo, haltFunc("enable", res.Enable))

	if err := res.Firmware.Out(gpio.Low); err != nil {
		return unwind(&GPIOError{Line: "firmware", Level: gpio.Low, Err: err})
	}
	undo = append(undo, haltFunc("firmware", res.Firmware))

	d.power = NewPowerSequencer(res.Enable, res.Firmware, d.clock, d.log)
	d.signal = NewInterruptSignal(res.IRQLine, res.IRQ, d.done)

	if err := d.signal.attach(); err != nil {
		return unwind(err)
	}
	return nil
}

type halter interface {
	Halt() error
}

func haltFunc(name string, h halter) func() error {
	return func() error {
		if err := h.Halt(); err != nil {
			return fmt.Errorf("failed to release %s line: %w", name, err)
		}
		return nil
	}
}

// String returns the device name
func (d *Device) String() string {
	return d.name
}

// Mode returns the last applied power mode
func (d *Device) Mode() PowerMode {
	return d.power.Mode()
}

// InterruptSignal exposes the signal for inspection
func (d *Device) InterruptSignal() *InterruptSignal {
	return d.signal
}

func (d *Device) removed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Read waits for the controller to raise its interrupt line and reads one frame of
// at most maxLen bytes.
//
// With nonBlocking set, a deasserted line fails at once with ErrWouldBlock and the
// bus is not touched. Cancelling ctx fails the wait with ErrInterrupted. A frame
// longer than maxLen is reported as ErrProtocol, never truncated.
func (d *Device) Read(ctx context.Context, maxLen int, nonBlocking bool) ([]byte, error) {
	if d.removed() {
		return nil, ErrDeviceRemoved
	}
	if maxLen > MaxTransferUnit {
		maxLen = MaxTransferUnit
	}
	if maxLen <= 0 {
		return []byte{}, nil
	}

	debugf("read: %d bytes (nonblock=%t)", maxLen, nonBlocking)

	d.readMu.Lock()
	defer d.readMu.Unlock()

	if err := d.signal.Wait(ctx, nonBlocking); err != nil {
		return nil, err
	}

	buf := frame.GetBuffer(maxLen)
	defer frame.PutBuffer(buf)

	n, err := d.bus.Receive(buf)
	if err != nil {
		d.log.Error("bus receive failed", "error", err)
		return nil, NewBusError("read", d.bus.String(), err)
	}
	if n < 0 {
		return nil, NewBusError("read", d.bus.String(), fmt.Errorf("negative length %d", n))
	}
	if n > maxLen {
		d.log.Error("received too many bytes", "got", n, "max", maxLen)
		return nil, NewProtocolError("read", d.bus.String(), n, maxLen)
	}

	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// Write sends data in one bus transaction, truncated to MaxTransferUnit.
// Failed or short sends are retried; the returned count is always len(data) after
// truncation.
func (d *Device) Write(data []byte) (int, error) {
	if d.removed() {
		return 0, ErrDeviceRemoved
	}
	if len(data) > MaxTransferUnit {
		data = data[:MaxTransferUnit]
	}

	debugf("write: %d bytes", len(data))

	var lastErr error
	n, err := transport.WithRetry(transport.RetryConfig{
		Sleep:       d.clock.Sleep,
		MaxRetries:  d.writeRetries,
		RetryDelay:  d.retryDelay,
		Description: "write",
		OnRetry: func(attempt int) error {
			d.log.Warn("bus write failed, retrying", "attempt", attempt, "error", lastErr)
			return nil
		},
		OnRetryFailed: func() error {
			d.log.Error("bus write failed", "attempts", d.writeRetries+1, "error", lastErr)
			return NewBusError("write", d.bus.String(), lastErr)
		},
	}, func(int) (int, bool, error) {
		sent, sendErr := d.bus.Send(data)
		if sendErr == nil && sent == len(data) {
			return sent, false, nil
		}
		if sendErr == nil {
			sendErr = fmt.Errorf("short write: %d of %d bytes", sent, len(data))
		}
		lastErr = sendErr
		return 0, true, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Control handles an out-of-band request. CmdSetPower with argument 0, 1 or 2 is
// the only accepted pair; anything else fails with ErrInvalidArgument and leaves
// the control lines untouched.
func (d *Device) Control(cmd uint32, arg uint64) error {
	if d.removed() {
		return ErrDeviceRemoved
	}
	if cmd != CmdSetPower {
		d.log.Warn("bad control command", "cmd", fmt.Sprintf("0x%08X", cmd))
		return fmt.Errorf("%w: control command 0x%08X", ErrInvalidArgument, cmd)
	}
	if arg > uint64(PowerOnFirmware) {
		d.log.Warn("bad power argument", "arg", arg)
		return fmt.Errorf("%w: power argument %d", ErrInvalidArgument, arg)
	}
	return d.power.SetPower(PowerMode(arg))
}

// Open starts a session. The first open session marks the device as a wake source.
func (d *Device) Open(opts ...SessionOption) (*Session, error) {
	if d.removed() {
		return nil, ErrDeviceRemoved
	}

	d.sessMu.Lock()
	defer d.sessMu.Unlock()

	if d.sessions == 0 {
		if err := d.wake.SetWake(true); err != nil {
			return nil, fmt.Errorf("failed to enable wake source: %w", err)
		}
	}
	d.sessions++

	s := &Session{dev: d}
	for _, opt := range opts {
		opt(s)
	}

	d.log.Debug("session opened", "sessions", d.sessions)
	return s, nil
}

// release ends one session; the last one clears the wake source marking
func (d *Device) release() error {
	d.sessMu.Lock()
	defer d.sessMu.Unlock()

	if d.sessions == 0 {
		return nil
	}
	d.sessions--
	d.log.Debug("session closed", "sessions", d.sessions)

	if d.sessions == 0 {
		if err := d.wake.SetWake(false); err != nil {
			return fmt.Errorf("failed to disable wake source: %w", err)
		}
	}
	return nil
}

// Sessions returns the number of open sessions
func (d *Device) Sessions() int {
	d.sessMu.Lock()
	defer d.sessMu.Unlock()
	return d.sessions
}

// Shutdown pulses the enable line the way the controller expects on system
// shutdown. The chip is left powered.
func (d *Device) Shutdown() error {
	if d.removed() {
		return ErrDeviceRemoved
	}
	d.log.Info("shutdown reset pulse")
	return d.power.ResetPulse()
}

// Remove tears the device down: blocked readers are woken with ErrInterrupted, the
// interrupt is freed and the lines are released in reverse order of acquisition.
// A running power sequence is stopped at its next step and an in-flight bus
// receive is waited for before any line is released.
// Calling Remove more than once returns the first result.
func (d *Device) Remove() error {
	d.removeOnce.Do(func() {
		close(d.done)
		d.power.stop()

		// Waiting readers were released by done; one still on the bus finishes first.
		d.readMu.Lock()
		defer d.readMu.Unlock()

		var errs []error
		if err := d.signal.detach(); err != nil {
			errs = append(errs, err)
		}

		d.sessMu.Lock()
		if d.sessions > 0 {
			if err := d.wake.SetWake(false); err != nil {
				errs = append(errs, fmt.Errorf("failed to disable wake source: %w", err))
			}
			d.sessions = 0
		}
		d.sessMu.Unlock()

		for _, release := range []func() error{
			haltFunc("firmware", d.res.Firmware),
			haltFunc("enable", d.res.Enable),
			haltFunc("irq", d.res.IRQLine),
		} {
			if err := release(); err != nil {
				errs = append(errs, err)
			}
		}

		d.removeErr = errors.Join(errs...)
		d.log.Info("device removed")
	})
	return d.removeErr
}
