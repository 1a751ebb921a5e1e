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

// WakeSource marks the controller's interrupt as able to resume a suspended system.
// The wakeup package implements it on top of sysfs.
type WakeSource interface {
	SetWake(enabled bool) error
}

// WakeFunc adapts a function to WakeSource
type WakeFunc func(enabled bool) error

// SetWake implements WakeSource
func (f WakeFunc) SetWake(enabled bool) error {
	return f(enabled)
}

// NopWake is a WakeSource for hosts without a suspend domain
var NopWake WakeSource = WakeFunc(func(bool) error { return nil })
