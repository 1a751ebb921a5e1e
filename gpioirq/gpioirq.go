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

// Package gpioirq dispatches a level-triggered interrupt from a periph.io GPIO input.
//
// Userland GPIO only reports edges, so the controller emulates a level-triggered,
// maskable interrupt: while unmasked and the line sits at its active level the
// handler is called; otherwise the dispatch goroutine sleeps in WaitForEdge.
package gpioirq

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

var (
	// ErrAlreadyRequested is returned when a handler is already registered
	ErrAlreadyRequested = errors.New("interrupt already requested")
	// ErrFreed is returned when requesting an interrupt that has been freed
	ErrFreed = errors.New("interrupt freed")
	// ErrNilHandler is returned when Request is called without a handler
	ErrNilHandler = errors.New("nil interrupt handler")
)

const defaultPollInterval = 50 * time.Millisecond

// Option configures a Controller
type Option func(*Controller)

// WithActiveLevel sets the level that asserts the interrupt. Default is High.
func WithActiveLevel(l gpio.Level) Option {
	return func(c *Controller) {
		c.active = l
	}
}

// WithPollInterval bounds how long the dispatcher sleeps in WaitForEdge before it
// notices a mask change or Free.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.poll = d
		}
	}
}

// Controller is a maskable interrupt source backed by a GPIO input.
// The pin must already be configured with In and an edge.
type Controller struct {
	pin    gpio.PinIn
	active gpio.Level
	poll   time.Duration
	fired  atomic.Uint64
	wg     sync.WaitGroup

	mu      sync.Mutex
	cond    *sync.Cond
	handler func()
	enabled bool
	freed   bool
}

// New creates a Controller for pin
func New(pin gpio.PinIn, opts ...Option) *Controller {
	c := &Controller{
		pin:    pin,
		active: gpio.High,
		poll:   defaultPollInterval,
	}
	c.cond = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// String names the interrupt after its pin
func (c *Controller) String() string {
	return "irq(" + c.pin.String() + ")"
}

// Request registers handler and starts dispatching with the interrupt unmasked
func (c *Controller) Request(handler func()) error {
	if handler == nil {
		return ErrNilHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.freed:
		return ErrFreed
	case c.handler != nil:
		return ErrAlreadyRequested
	}

	c.handler = handler
	c.enabled = true
	c.wg.Add(1)
	go c.run()
	return nil
}

// Enable unmasks the interrupt. It is a no-op after Free.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return
	}
	c.enabled = true
	c.cond.Broadcast()
}

// Disable masks the interrupt. A handler already running is not waited for.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enabled reports whether the interrupt is unmasked
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Fired returns how many times the handler has been called
func (c *Controller) Fired() uint64 {
	return c.fired.Load()
}

// Free stops dispatching and waits for the dispatch goroutine to exit.
// It must not be called from the handler.
func (c *Controller) Free() error {
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return nil
	}
	c.freed = true
	c.enabled = false
	c.cond.Broadcast()
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *Controller) run() {
	defer c.wg.Done()

	for {
		handler, ok := c.waitUnmasked()
		if !ok {
			return
		}

		if c.pin.Read() == c.active {
			if c.stillUnmasked() {
				c.fired.Add(1)
				handler()
			}
			continue
		}

		c.pin.WaitForEdge(c.poll)
	}
}

// waitUnmasked blocks while the interrupt is masked. It returns false once freed.
func (c *Controller) waitUnmasked() (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.enabled && !c.freed {
		c.cond.Wait()
	}
	if c.freed {
		return nil, false
	}
	return c.handler, true
}

func (c *Controller) stillUnmasked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && !c.freed
}
