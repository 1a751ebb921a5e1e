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
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// InterruptController is the dispatcher behind the controller's IRQ line.
//
// Enable and Disable must not block and must not call the handler synchronously;
// the handler runs on the controller's own goroutine. The gpioirq package provides
// an implementation on top of periph.io edge detection.
type InterruptController interface {
	// Request registers handler. The line comes up enabled.
	Request(handler func()) error
	// Enable unmasks the interrupt
	Enable()
	// Disable masks the interrupt without waiting for a running handler
	Disable()
	// Free unregisters the handler and stops dispatching
	Free() error
}

// InterruptSignal couples the IRQ line to a wake notification for blocked readers.
//
// The armed flag mirrors whether the controller is currently unmasked. It is only
// changed under mu, by both the waiting reader and the interrupt handler.
type InterruptSignal struct {
	line gpio.PinIn
	irq  InterruptController
	wake chan struct{}
	done <-chan struct{}

	mu    sync.Mutex
	armed bool
}

// NewInterruptSignal creates a disarmed signal. done, when closed, interrupts any wait.
func NewInterruptSignal(line gpio.PinIn, irq InterruptController, done <-chan struct{}) *InterruptSignal {
	return &InterruptSignal{
		line: line,
		irq:  irq,
		wake: make(chan struct{}, 1),
		done: done,
	}
}

// Ready reports whether the chip is asserting the IRQ line
func (s *InterruptSignal) Ready() bool {
	return s.line.Read() == gpio.High
}

// Armed reports whether the interrupt is currently unmasked
func (s *InterruptSignal) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Wait returns once the chip has data to read.
//
// If the line is already asserted it returns at once without arming. Otherwise it
// fails with ErrWouldBlock when nonBlocking is set, or arms the interrupt and
// sleeps until the handler fires, ctx is done, or the device goes away. The signal
// is always disarmed when Wait returns.
func (s *InterruptSignal) Wait(ctx context.Context, nonBlocking bool) error {
	if s.Ready() {
		return nil
	}
	if nonBlocking {
		return ErrWouldBlock
	}

	// Drop a notification left over from a wait that already returned.
	select {
	case <-s.wake:
	default:
	}

	defer s.disarm()
	for {
		s.arm()

		// The line may have gone high between the first check and arming.
		if s.Ready() {
			return nil
		}

		select {
		case <-s.wake:
			if s.Ready() {
				return nil
			}
			debugln("irq: spurious wake, rearming")
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		case <-s.done:
			return fmt.Errorf("%w: %w", ErrInterrupted, ErrDeviceRemoved)
		}
	}
}

// handleInterrupt is registered with the InterruptController. It masks the line so a
// level that stays asserted until the frame is drained does not storm, then wakes
// the reader. It never touches the bus.
func (s *InterruptSignal) handleInterrupt() {
	s.disarm()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *InterruptSignal) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		s.armed = true
		s.irq.Enable()
	}
}

func (s *InterruptSignal) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		s.irq.Disable()
		s.armed = false
	}
}

// attach registers the handler. The controller comes up unmasked, so the signal
// records itself armed and masks the line straight away.
func (s *InterruptSignal) attach() error {
	s.mu.Lock()
	s.armed = true
	s.mu.Unlock()

	if err := s.irq.Request(s.handleInterrupt); err != nil {
		s.mu.Lock()
		s.armed = false
		s.mu.Unlock()
		return fmt.Errorf("failed to request interrupt: %w", err)
	}

	s.disarm()
	return nil
}

// detach masks and frees the interrupt
func (s *InterruptSignal) detach() error {
	s.disarm()
	if err := s.irq.Free(); err != nil {
		return fmt.Errorf("failed to free interrupt: %w", err)
	}
	return nil
}
