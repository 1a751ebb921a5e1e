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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	pn547 "github.com/ZaparooProject/go-pn547"
	"github.com/ZaparooProject/go-pn547/gpioirq"
	"github.com/ZaparooProject/go-pn547/transport/i2c"
	"github.com/ZaparooProject/go-pn547/transport/i2cdev"
	"github.com/ZaparooProject/go-pn547/wakeup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// closableBus is what both bus drivers provide
type closableBus interface {
	pn547.Bus
	io.Closer
}

// hardware is an opened device together with the bus it owns
type hardware struct {
	dev *pn547.Device
	bus closableBus
}

// Close removes the device and then closes the bus
func (h *hardware) Close() error {
	return errors.Join(h.dev.Remove(), h.bus.Close())
}

func openBus(cfg *Config) (closableBus, error) {
	switch cfg.Driver {
	case driverI2CDev:
		bus, err := i2cdev.Open(cfg.Bus, cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to create i2c-dev transport: %w", err)
		}
		return bus, nil
	default:
		bus, err := i2c.New(cfg.Bus, cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return bus, nil
	}
}

func lookupPin(name, role string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%s pin %q not found", role, name)
	}
	return pin, nil
}

// openHardware resolves the configured pins and bus and sets the device up
func openHardware(cfg *Config, logger *slog.Logger) (*hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	irqPin, err := lookupPin(cfg.Pins.IRQ, "irq")
	if err != nil {
		return nil, err
	}
	enablePin, err := lookupPin(cfg.Pins.Enable, "enable")
	if err != nil {
		return nil, err
	}
	firmwarePin, err := lookupPin(cfg.Pins.Firmware, "firmware")
	if err != nil {
		return nil, err
	}

	bus, err := openBus(cfg)
	if err != nil {
		return nil, err
	}

	wake := pn547.NopWake
	if cfg.Wakeup != "" {
		wake = wakeup.New(cfg.Wakeup)
	}

	res := &pn547.Resources{
		Bus:      bus,
		IRQLine:  irqPin,
		Enable:   enablePin,
		Firmware: firmwarePin,
		IRQ:      gpioirq.New(irqPin),
		Wake:     wake,
	}

	dev, err := pn547.Setup(res, pn547.WithLogger(logger))
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to set up PN547: %w", err)
	}

	return &hardware{dev: dev, bus: bus}, nil
}
