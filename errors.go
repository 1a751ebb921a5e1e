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

	"periph.io/x/conn/v3/gpio"
)

// Transport errors
var (
	// ErrBusIO is returned when a bus transfer fails or moves the wrong number of bytes.
	ErrBusIO = errors.New("bus transfer failed")
	// ErrProtocol is returned when the bus reports more bytes than were requested.
	ErrProtocol = errors.New("frame length exceeds read buffer")
	// ErrGPIO is returned when a control line cannot be requested or driven.
	ErrGPIO = errors.New("gpio line failure")
)

// Control-flow errors. These are not failures: callers are expected to retry or bail.
var (
	// ErrWouldBlock is returned by a non-blocking read while the interrupt line is deasserted.
	ErrWouldBlock = errors.New("operation would block")
	// ErrInterrupted is returned when a wait ends by cancellation or device removal.
	ErrInterrupted = errors.New("wait interrupted")
)

// Caller and lifecycle errors
var (
	// ErrInvalidArgument is returned for an unknown control command or power mode.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDeviceRemoved is returned by every operation once Remove has started.
	ErrDeviceRemoved = errors.New("device removed")
	// ErrSessionClosed is returned by a session after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrResourcesClaimed is returned when Setup is given resources another device owns.
	ErrResourcesClaimed = errors.New("resources already claimed by a device")
	// ErrMissingResource is returned when Setup is given an incomplete resource bundle.
	ErrMissingResource = errors.New("missing required resource")
)

// ErrorType classifies errors for callers that want to decide on retries
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on a later attempt
	ErrorTypeTransient
	// ErrorTypeControl marks would-block and interrupted waits
	ErrorTypeControl
)

// String returns a readable error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeControl:
		return "control"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps a bus level failure with the operation and bus it happened on
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements error
func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient,
	}
}

// NewBusError wraps a failed transfer so that it matches both ErrBusIO and cause
func NewBusError(op, port string, cause error) *TransportError {
	err := ErrBusIO
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrBusIO, cause)
	}
	return NewTransportError(op, port, err, ErrorTypeTransient)
}

// NewProtocolError reports a frame that does not fit the caller's buffer
func NewProtocolError(op, port string, got, want int) *TransportError {
	return NewTransportError(op, port,
		fmt.Errorf("%w: bus reported %d bytes for a %d byte read", ErrProtocol, got, want),
		ErrorTypePermanent)
}

// GPIOError reports a failed drive of one of the control lines
type GPIOError struct {
	Err   error
	Line  string
	Level gpio.Level
}

// Error implements error
func (e *GPIOError) Error() string {
	return fmt.Sprintf("gpio %s -> %s: %v", e.Line, e.Level, e.Err)
}

// Unwrap exposes both ErrGPIO and the driver error to errors.Is
func (e *GPIOError) Unwrap() []error {
	return []error{ErrGPIO, e.Err}
}

// IsRetryable reports whether err is worth another attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	return errors.Is(err, ErrBusIO)
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrWouldBlock), errors.Is(err, ErrInterrupted):
		return ErrorTypeControl
	case errors.Is(err, ErrBusIO):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
