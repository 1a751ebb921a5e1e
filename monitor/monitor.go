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

// Package monitor streams frames from a PN547 session to callbacks.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	pn547 "github.com/ZaparooProject/go-pn547"
)

// ErrAlreadyRunning is returned by Start on a running monitor
var ErrAlreadyRunning = errors.New("monitor already running")

// FrameReader is satisfied by *pn547.Session
type FrameReader interface {
	Read(ctx context.Context, maxLen int) ([]byte, error)
}

// PacketReader is satisfied by *pn547.Session
type PacketReader interface {
	ReadPacket(ctx context.Context) ([]byte, error)
}

// Config configures a FrameMonitor
type Config struct {
	// MaxLen is the read size in frame mode
	MaxLen int
	// ErrorBackoff is the pause after a failed read or a would-block result
	ErrorBackoff time.Duration
	// Packets reads whole NCI packets instead of fixed size frames
	Packets bool
}

// DefaultConfig reads whole NCI packets and backs off 10ms after errors
func DefaultConfig() *Config {
	return &Config{
		MaxLen:       pn547.MaxTransferUnit,
		ErrorBackoff: 10 * time.Millisecond,
		Packets:      true,
	}
}

// Callbacks defines callback functions for monitor events
type Callbacks struct {
	OnFrame func(frame []byte) error
	OnError func(err error)
}

// Metrics tracks operational metrics for FrameMonitor
type Metrics struct {
	FramesRead      int64         // Frames handed to OnFrame
	BytesRead       int64         // Total frame bytes
	ReadErrors      int64         // Failed reads, excluding would-block
	CallbackErrors  int64         // Errors returned by OnFrame
	LastReadLatency time.Duration // Time the last successful read spent waiting
}

// FrameMonitor reads frames in a goroutine until stopped or the device goes away
type FrameMonitor struct {
	reader    FrameReader
	config    *Config
	callbacks Callbacks

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}

	framesRead      int64
	bytesRead       int64
	readErrors      int64
	callbackErrors  int64
	lastReadLatency int64 // in nanoseconds
}

// New creates a monitor. In packet mode reader must also implement PacketReader.
func New(reader FrameReader, config *Config, callbacks Callbacks) *FrameMonitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &FrameMonitor{
		reader:    reader,
		config:    config,
		callbacks: callbacks,
	}
}

// Start begins reading in a goroutine
func (m *FrameMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyRunning
	}

	read := m.frameReadFunc()
	if m.config.Packets {
		pr, ok := m.reader.(PacketReader)
		if !ok {
			return errors.New("packet mode requires a PacketReader")
		}
		read = pr.ReadPacket
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.stopped = make(chan struct{})
	go m.readLoop(runCtx, read, m.stopped)
	return nil
}

// Stop cancels the read loop and waits for it to exit or for ctx to expire
func (m *FrameMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, stopped := m.cancel, m.stopped
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the most recent read loop exits. It is nil before Start.
func (m *FrameMonitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *FrameMonitor) frameReadFunc() func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		return m.reader.Read(ctx, m.config.MaxLen)
	}
}

func (m *FrameMonitor) readLoop(ctx context.Context, read func(context.Context) ([]byte, error), stopped chan struct{}) {
	defer m.exited(stopped)

	for {
		start := time.Now()
		data, err := read(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if errors.Is(err, pn547.ErrDeviceRemoved) || errors.Is(err, pn547.ErrSessionClosed) {
				m.reportError(err)
				return
			}
			if !errors.Is(err, pn547.ErrWouldBlock) {
				atomic.AddInt64(&m.readErrors, 1)
				m.reportError(err)
			}
			if !m.backoff(ctx) {
				return
			}
			continue
		}

		atomic.AddInt64(&m.framesRead, 1)
		atomic.AddInt64(&m.bytesRead, int64(len(data)))
		atomic.StoreInt64(&m.lastReadLatency, time.Since(start).Nanoseconds())

		if m.callbacks.OnFrame != nil {
			if cbErr := m.callbacks.OnFrame(data); cbErr != nil {
				atomic.AddInt64(&m.callbackErrors, 1)
			}
		}
	}
}

// exited releases the run context of a loop that ended without Stop, so Start
// can be called again, then closes stopped.
func (m *FrameMonitor) exited(stopped chan struct{}) {
	m.mu.Lock()
	if m.stopped == stopped && m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	close(stopped)
}

func (m *FrameMonitor) reportError(err error) {
	if m.callbacks.OnError != nil {
		m.callbacks.OnError(err)
	}
}

// backoff waits ErrorBackoff; it returns false if ctx ended first
func (m *FrameMonitor) backoff(ctx context.Context) bool {
	if m.config.ErrorBackoff <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(m.config.ErrorBackoff)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// GetMetrics returns current operational metrics
func (m *FrameMonitor) GetMetrics() Metrics {
	return Metrics{
		FramesRead:      atomic.LoadInt64(&m.framesRead),
		BytesRead:       atomic.LoadInt64(&m.bytesRead),
		ReadErrors:      atomic.LoadInt64(&m.readErrors),
		CallbackErrors:  atomic.LoadInt64(&m.callbackErrors),
		LastReadLatency: time.Duration(atomic.LoadInt64(&m.lastReadLatency)),
	}
}
