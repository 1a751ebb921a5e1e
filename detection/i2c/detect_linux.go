//go:build linux

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

package i2c

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/go-pn547/detection"
	"github.com/ZaparooProject/go-pn547/internal/frame"
	"golang.org/x/sys/unix"
)

const (
	// i2cSlave is the ioctl command to set slave address
	i2cSlave = 0x0703

	// i2cFuncs is the ioctl command to get adapter functionality
	i2cFuncs = 0x0705

	// i2cFuncI2C indicates plain I2C support
	i2cFuncI2C = 0x00000001

	// resetResponseDelay gives the controller time to answer CORE_RESET_CMD
	resetResponseDelay = 20 * time.Millisecond
)

// i2cBusInfo contains information about an I2C bus
type i2cBusInfo struct {
	Path   string // Device path, e.g., "/dev/i2c-1"
	Number int    // Bus number
}

// detectLinux searches for PN547 devices on Linux I2C buses
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findI2CBuses()
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		devices = append(devices, detectBusDevices(ctx, bus, opts)...)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// detectBusDevices probes the candidate addresses on a single bus
func detectBusDevices(ctx context.Context, bus i2cBusInfo, opts *detection.Options) []detection.DeviceInfo {
	addrs := candidates(bus.Path, opts)
	devices := make([]detection.DeviceInfo, 0, len(addrs))

	for _, addr := range addrs {
		device := detection.DeviceInfo{
			Transport: "i2c",
			Path:      devicePath(bus.Path, addr),
			Name:      fmt.Sprintf("PN547 candidate on %s address 0x%02X", bus.Path, addr),
			Metadata: map[string]string{
				"bus":        bus.Path,
				"bus_number": fmt.Sprintf("%d", bus.Number),
				"address":    fmt.Sprintf("0x%02X", addr),
			},
			Confidence: detection.Low,
		}

		if opts.Mode == detection.Passive {
			devices = append(devices, device)
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, time.Second)
		confidence, ok := probeI2CDevice(probeCtx, bus.Path, addr, opts.Mode)
		cancel()
		if !ok {
			continue
		}

		device.Confidence = confidence
		devices = append(devices, device)
	}

	return devices
}

// probeI2CDevice addresses the device. In Safe mode an acknowledged one byte read
// is enough; in Full mode the device must answer CORE_RESET_CMD with CORE_RESET_RSP.
func probeI2CDevice(ctx context.Context, busPath string, addr uint16, mode detection.Mode) (detection.Confidence, bool) {
	fd, err := unix.Open(busPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return detection.Low, false
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		return detection.Low, false
	}

	if mode == detection.Safe {
		buf := make([]byte, 1)
		if _, err := unix.Read(fd, buf); err != nil {
			return detection.Low, false
		}
		return detection.Medium, true
	}

	cmd := frame.CoreResetCmd(frame.ResetKeepConf)
	if n, err := unix.Write(fd, cmd); err != nil || n != len(cmd) {
		return detection.Low, false
	}

	select {
	case <-ctx.Done():
		return detection.Low, false
	case <-time.After(resetResponseDelay):
	}

	hdr := make([]byte, frame.HeaderLength)
	n, err := unix.Read(fd, hdr)
	if err != nil || n != frame.HeaderLength {
		return detection.Medium, true
	}

	h, err := frame.ParseHeader(hdr)
	if err == nil && h.MT == frame.MTResponse && h.GID == frame.GIDCore && h.OID == frame.OIDCoreReset {
		// Drain the payload so the chip releases its interrupt line.
		payload := make([]byte, h.PayloadLen)
		_, _ = unix.Read(fd, payload)
		return detection.High, true
	}
	return detection.Medium, true
}

// findI2CBuses discovers available I2C buses on the system
func findI2CBuses() ([]i2cBusInfo, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]i2cBusInfo, 0, len(matches))
	for _, path := range matches {
		var busNum int
		if _, err := fmt.Sscanf(filepath.Base(path), "i2c-%d", &busNum); err != nil {
			continue
		}

		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, i2cFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&i2cFuncI2C == 0 {
			continue
		}

		buses = append(buses, i2cBusInfo{Path: path, Number: busNum})
	}

	return buses, nil
}
