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
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// EventLog records hardware interactions in the order they happen
type EventLog struct {
	events []string
	mu     sync.Mutex
}

// Add appends one event
func (l *EventLog) Add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events
func (l *EventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// Reset drops all recorded events
func (l *EventLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// RecordingPin is a gpiotest.Pin that logs every configuration, drive and release
// as "<name>.in", "<name>=<Level>" and "<name>.halt".
type RecordingPin struct {
	*gpiotest.Pin
	Log *EventLog

	mu      sync.Mutex
	inErr   error
	outErr  error
	haltErr error
}

// NewRecordingPin creates a pin named name that logs to log
func NewRecordingPin(name string, log *EventLog) *RecordingPin {
	return &RecordingPin{
		Pin: &gpiotest.Pin{
			N:         name,
			EdgesChan: make(chan gpio.Level, 1),
		},
		Log: log,
	}
}

// FailIn makes In fail with err
func (p *RecordingPin) FailIn(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inErr = err
}

// FailOut makes Out fail with err
func (p *RecordingPin) FailOut(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outErr = err
}

// FailHalt makes Halt fail with err
func (p *RecordingPin) FailHalt(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltErr = err
}

// In implements gpio.PinIn
func (p *RecordingPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	err := p.inErr
	p.mu.Unlock()

	p.Log.Add("%s.in", p.N)
	if err != nil {
		return err
	}
	return p.Pin.In(pull, edge)
}

// Out implements gpio.PinOut
func (p *RecordingPin) Out(l gpio.Level) error {
	p.mu.Lock()
	err := p.outErr
	p.mu.Unlock()

	if err != nil {
		p.Log.Add("%s=%s failed", p.N, l)
		return err
	}
	p.Log.Add("%s=%s", p.N, l)
	return p.Pin.Out(l)
}

// Halt implements conn.Resource
func (p *RecordingPin) Halt() error {
	p.mu.Lock()
	err := p.haltErr
	p.mu.Unlock()

	p.Log.Add("%s.halt", p.N)
	return err
}

// Set changes the level seen by Read without logging, the way the chip would
func (p *RecordingPin) Set(l gpio.Level) {
	p.Pin.Lock()
	defer p.Pin.Unlock()
	p.Pin.L = l
}

// RecordingClock logs every sleep as "sleep <d>" and returns at once
type RecordingClock struct {
	Log *EventLog

	mu    sync.Mutex
	total time.Duration
}

// Sleep implements Clock
func (c *RecordingClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.total += d
	c.mu.Unlock()
	c.Log.Add("sleep %s", d)
}

// Total returns the accumulated sleep time
func (c *RecordingClock) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// FakeInterrupt is an InterruptController whose interrupts are raised by Fire.
// It logs "irq.request", "irq.enable", "irq.disable" and "irq.free".
type FakeInterrupt struct {
	Log        *EventLog
	RequestErr error
	FreeErr    error

	handler  func()
	mu       sync.Mutex
	enables  int
	disables int
	enabled  bool
	freed    bool
}

// Request implements InterruptController
func (f *FakeInterrupt) Request(handler func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RequestErr != nil {
		f.Log.Add("irq.request failed")
		return f.RequestErr
	}
	f.Log.Add("irq.request")
	f.handler = handler
	f.enabled = true
	return nil
}

// Enable implements InterruptController
func (f *FakeInterrupt) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Log.Add("irq.enable")
	f.enables++
	f.enabled = true
}

// Disable implements InterruptController
func (f *FakeInterrupt) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Log.Add("irq.disable")
	f.disables++
	f.enabled = false
}

// Free implements InterruptController
func (f *FakeInterrupt) Free() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Log.Add("irq.free")
	f.freed = true
	f.enabled = false
	f.handler = nil
	return f.FreeErr
}

// Fire runs the handler on the calling goroutine if the interrupt is unmasked.
// It reports whether the handler ran.
func (f *FakeInterrupt) Fire() bool {
	f.mu.Lock()
	handler := f.handler
	enabled := f.enabled
	f.mu.Unlock()

	if handler == nil || !enabled {
		return false
	}
	handler()
	return true
}

// Enabled reports whether the interrupt is unmasked
func (f *FakeInterrupt) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Enables returns how many times Enable was called
func (f *FakeInterrupt) Enables() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enables
}

// Freed reports whether Free was called
func (f *FakeInterrupt) Freed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.freed
}

// MockBus is a scriptable Bus. Without scripts Send moves every byte and Receive
// moves nothing.
type MockBus struct {
	SendFunc    func(attempt int, data []byte) (int, error)
	ReceiveFunc func(buf []byte) (int, error)
	Name        string

	sent     [][]byte
	received int
	mu       sync.Mutex
}

// Send implements Bus
func (b *MockBus) Send(data []byte) (int, error) {
	b.mu.Lock()
	attempt := len(b.sent)
	b.sent = append(b.sent, append([]byte(nil), data...))
	fn := b.SendFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(attempt, data)
	}
	return len(data), nil
}

// Receive implements Bus
func (b *MockBus) Receive(buf []byte) (int, error) {
	b.mu.Lock()
	b.received++
	fn := b.ReceiveFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(buf)
	}
	return 0, nil
}

// QueueFrames makes successive receives return frames in order. Each receive
// reports the full frame length, even when buf is shorter.
func (b *MockBus) QueueFrames(frames ...[]byte) {
	var mu sync.Mutex
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ReceiveFunc = func(buf []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(frames) == 0 {
			return 0, nil
		}
		next := frames[0]
		frames = frames[1:]
		copy(buf, next)
		return len(next), nil
	}
}

// Sent returns a copy of every Send payload
func (b *MockBus) Sent() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.sent))
	copy(out, b.sent)
	return out
}

// Receives returns how many times Receive was called
func (b *MockBus) Receives() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.received
}

// String implements Bus
func (b *MockBus) String() string {
	if b.Name == "" {
		return "mock"
	}
	return b.Name
}

// Type implements BusTyper
func (*MockBus) Type() BusType {
	return BusMock
}

// RecordingWake logs "wake=true" and "wake=false"
type RecordingWake struct {
	Log *EventLog
	Err error
}

// SetWake implements WakeSource
func (w *RecordingWake) SetWake(enabled bool) error {
	w.Log.Add("wake=%t", enabled)
	return w.Err
}

// TestHardware is a complete set of fakes sharing one EventLog
type TestHardware struct {
	Log      *EventLog
	Bus      *MockBus
	IRQLine  *RecordingPin
	Enable   *RecordingPin
	Firmware *RecordingPin
	IRQ      *FakeInterrupt
	Wake     *RecordingWake
	Clock    *RecordingClock
}

// NewTestHardware creates fakes with the IRQ line deasserted
func NewTestHardware() *TestHardware {
	log := &EventLog{}
	return &TestHardware{
		Log:      log,
		Bus:      &MockBus{},
		IRQLine:  NewRecordingPin("irq", log),
		Enable:   NewRecordingPin("enable", log),
		Firmware: NewRecordingPin("firmware", log),
		IRQ:      &FakeInterrupt{Log: log},
		Wake:     &RecordingWake{Log: log},
		Clock:    &RecordingClock{Log: log},
	}
}

// Resources bundles the fakes for Setup
func (h *TestHardware) Resources() *Resources {
	return &Resources{
		Bus:      h.Bus,
		IRQLine:  h.IRQLine,
		Enable:   h.Enable,
		Firmware: h.Firmware,
		IRQ:      h.IRQ,
		Wake:     h.Wake,
	}
}

// Setup creates a Device on the fakes with the recording clock and clears the log
func (h *TestHardware) Setup(opts ...Option) (*Device, error) {
	opts = append([]Option{WithClock(h.Clock)}, opts...)
	dev, err := Setup(h.Resources(), opts...)
	if err != nil {
		return nil, err
	}
	h.Log.Reset()
	return dev, nil
}
