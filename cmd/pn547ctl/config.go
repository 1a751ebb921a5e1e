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
	"flag"
	"fmt"
	"os"

	"github.com/ZaparooProject/go-pn547/detection"
	"gopkg.in/yaml.v3"
)

const (
	driverPeriph = "periph"
	driverI2CDev = "i2cdev"
)

// Pins names the GPIO lines as periph.io knows them (e.g. "GPIO17")
type Pins struct {
	IRQ      string `yaml:"irq"`
	Enable   string `yaml:"enable"`
	Firmware string `yaml:"firmware"`
}

// Config is the on-disk and command line configuration
type Config struct {
	Pins    Pins   `yaml:"pins"`
	Bus     string `yaml:"bus"`
	Driver  string `yaml:"driver"`
	Wakeup  string `yaml:"wakeup"`
	Address uint16 `yaml:"address"`
	Debug   bool   `yaml:"debug"`
}

// DefaultConfig matches a Raspberry Pi NFC HAT wiring
func DefaultConfig() *Config {
	return &Config{
		Bus:     "",
		Driver:  driverPeriph,
		Address: 0x2B,
		Pins: Pins{
			IRQ:      "GPIO23",
			Enable:   "GPIO24",
			Firmware: "GPIO25",
		},
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields needed to open the device
func (c *Config) Validate() error {
	switch c.Driver {
	case driverPeriph:
	case driverI2CDev:
		if c.Bus == "" {
			return errors.New("i2cdev driver needs a bus path such as /dev/i2c-1")
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, driverPeriph, driverI2CDev)
	}
	if c.Address > 0x7F {
		return fmt.Errorf("address 0x%X is not a 7-bit I2C address", c.Address)
	}
	if c.Pins.IRQ == "" || c.Pins.Enable == "" || c.Pins.Firmware == "" {
		return errors.New("irq, enable and firmware pins must all be set")
	}
	return nil
}

// globalFlags holds flag values that override the config file when set
type globalFlags struct {
	configPath *string
	bus        *string
	driver     *string
	addr       *string
	irq        *string
	enable     *string
	firmware   *string
	wakeup     *string
	debug      *bool
}

func registerGlobalFlags(fs *flag.FlagSet) *globalFlags {
	return &globalFlags{
		configPath: fs.String("config", "", "YAML configuration file"),
		bus:        fs.String("bus", "", "I2C bus name (periph) or /dev/i2c-N path (i2cdev)"),
		driver:     fs.String("driver", "", "bus driver: periph or i2cdev"),
		addr:       fs.String("addr", "", "controller I2C address (default 0x2B)"),
		irq:        fs.String("irq", "", "IRQ GPIO pin name"),
		enable:     fs.String("ven", "", "enable (VEN) GPIO pin name"),
		firmware:   fs.String("firm", "", "firmware select GPIO pin name"),
		wakeup:     fs.String("wakeup", "", "sysfs power/wakeup attribute to mark while sessions are open"),
		debug:      fs.Bool("debug", false, "Enable debug output"),
	}
}

// resolve loads the config file and applies explicitly set flags on top
func (g *globalFlags) resolve(fs *flag.FlagSet) (*Config, error) {
	cfg, err := LoadConfig(*g.configPath)
	if err != nil {
		return nil, err
	}

	var applyErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			cfg.Bus = *g.bus
		case "driver":
			cfg.Driver = *g.driver
		case "addr":
			addr, err := detection.ParseAddress(*g.addr)
			if err != nil {
				applyErr = err
				return
			}
			cfg.Address = addr
		case "irq":
			cfg.Pins.IRQ = *g.irq
		case "ven":
			cfg.Pins.Enable = *g.enable
		case "firm":
			cfg.Pins.Firmware = *g.firmware
		case "wakeup":
			cfg.Wakeup = *g.wakeup
		case "debug":
			cfg.Debug = *g.debug
		}
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return cfg, cfg.Validate()
}
