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

/*
Package pn547 drives an NXP PN547 NFC controller from user space.

The PN547 talks NCI over I²C and uses three GPIO lines besides the bus: an
interrupt line the chip raises while it has data to read, an enable (VEN) line
and a firmware select line that picks between normal boot and firmware download.
This package turns those resources into a Device with blocking reads, retried
writes and a power control request.

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-pn547"
	    "github.com/ZaparooProject/go-pn547/gpioirq"
	    "github.com/ZaparooProject/go-pn547/transport/i2c"
	    "periph.io/x/conn/v3/gpio/gpioreg"
	)

	bus, err := i2c.New("", i2c.DefaultAddress)
	if err != nil {
	    log.Fatal(err)
	}
	defer bus.Close()

	irq := gpioreg.ByName("GPIO23")
	dev, err := pn547.Setup(&pn547.Resources{
	    Bus:      bus,
	    IRQLine:  irq,
	    Enable:   gpioreg.ByName("GPIO24"),
	    Firmware: gpioreg.ByName("GPIO25"),
	    IRQ:      gpioirq.New(irq),
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer dev.Remove()

	session, err := dev.Open()
	if err != nil {
	    log.Fatal(err)
	}
	defer session.Close()

	if err := session.SetPower(pn547.PowerOn); err != nil {
	    log.Fatal(err)
	}
	if _, err := session.Write([]byte{0x20, 0x00, 0x01, 0x00}); err != nil {
	    log.Fatal(err)
	}
	rsp, err := session.ReadPacket(ctx)

Reads:

A read waits until the interrupt line is asserted and then performs exactly one
bus receive. Sessions opened with WithNonBlocking fail with ErrWouldBlock instead
of waiting. A frame longer than the requested length is reported as ErrProtocol.

Power Control:

Control(CmdSetPower, arg) accepts 0 (off), 1 (on) and 2 (on with firmware
download). Each mode is an ordered sequence of line changes with hold times of
20ms after enable rises and 60ms after it falls; the call returns only after the
last hold.

Error Handling:

	if errors.Is(err, pn547.ErrWouldBlock) {
	    // Nothing pending
	}
	if pn547.IsRetryable(err) {
	    // Bus hiccup, try again
	}

Thread Safety:

Device and Session are safe for concurrent use. Reads are serialized; writes
and control requests are not ordered against reads.
*/
package pn547
