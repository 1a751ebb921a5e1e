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
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	pn547 "github.com/ZaparooProject/go-pn547"
	"github.com/ZaparooProject/go-pn547/detection"
	// Register the I2C detector
	_ "github.com/ZaparooProject/go-pn547/detection/i2c"
	"github.com/ZaparooProject/go-pn547/internal/frame"
	"github.com/ZaparooProject/go-pn547/monitor"
)

const usageText = `usage: pn547ctl [flags] <command> [args]

commands:
  power off|on|firmware   sequence the controller into a power mode
  write <hex>             send one frame, e.g. "20 00 01 00"
  read [-n N] [-nonblock] [-timeout d]
                          read one frame
  reset                   power on and exchange CORE_RESET
  monitor                 print every packet until interrupted
  detect [-mode m]        probe I2C buses for controllers
`

// command is run with an opened session; detect is the only command that doesn't
// need hardware
type command func(ctx context.Context, s *pn547.Session, args []string) error

var commands = map[string]command{
	"power":   runPower,
	"write":   runWrite,
	"read":    runRead,
	"reset":   runReset,
	"monitor": runMonitor,
}

// parseHex accepts hex with optional spaces, colons and 0x prefixes
func parseHex(s string) ([]byte, error) {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.NewReplacer(" ", "", ":", "", ",", "").Replace(s)
	if s == "" {
		return nil, errors.New("empty frame")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return data, nil
}

func formatFrame(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	out := strings.ToUpper(hex.EncodeToString(data))
	var b strings.Builder
	for i := 0; i < len(out); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(out[i : i+2])
	}
	return b.String()
}

// describePacket decodes the NCI header when data holds a whole packet
func describePacket(data []byte) string {
	h, payload, err := frame.ParsePacket(data)
	if err != nil {
		return formatFrame(data)
	}
	if len(payload) == 0 {
		return fmt.Sprintf("%s [%s]", h, formatFrame(data))
	}
	return fmt.Sprintf("%s payload=%s", h, formatFrame(payload))
}

func runPower(_ context.Context, s *pn547.Session, args []string) error {
	if len(args) != 1 {
		return errors.New("power needs exactly one mode: off, on or firmware")
	}
	mode, err := pn547.ParsePowerMode(args[0])
	if err != nil {
		return err
	}
	if err := s.SetPower(mode); err != nil {
		return fmt.Errorf("failed to set power %s: %w", mode, err)
	}
	_, _ = fmt.Printf("Power mode: %s\n", mode)
	return nil
}

func runWrite(_ context.Context, s *pn547.Session, args []string) error {
	if len(args) == 0 {
		return errors.New("write needs a hex frame")
	}
	data, err := parseHex(strings.Join(args, ""))
	if err != nil {
		return err
	}
	n, err := s.Write(data)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	_, _ = fmt.Printf("Wrote %d bytes: %s\n", n, formatFrame(data[:n]))
	return nil
}

func runRead(ctx context.Context, s *pn547.Session, args []string) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	n := fs.Int("n", pn547.MaxTransferUnit, "maximum frame length")
	nonBlock := fs.Bool("nonblock", false, "fail instead of waiting for the interrupt")
	timeout := fs.Duration("timeout", 5*time.Second, "how long to wait for the interrupt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s.SetNonBlocking(*nonBlock)
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	data, err := s.Read(ctx, *n)
	if err != nil {
		if errors.Is(err, pn547.ErrWouldBlock) {
			_, _ = fmt.Println("No data pending")
			return nil
		}
		return fmt.Errorf("read failed: %w", err)
	}
	_, _ = fmt.Printf("Read %d bytes: %s\n", len(data), formatFrame(data))
	return nil
}

func runReset(ctx context.Context, s *pn547.Session, _ []string) error {
	if err := s.SetPower(pn547.PowerOn); err != nil {
		return fmt.Errorf("failed to power on: %w", err)
	}

	cmd := frame.CoreResetCmd(frame.ResetKeepConf)
	if _, err := s.Write(cmd); err != nil {
		return fmt.Errorf("failed to send CORE_RESET_CMD: %w", err)
	}
	_, _ = fmt.Printf("> %s\n", describePacket(cmd))

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// The response may be followed by a CORE_RESET_NTF
	for i := 0; i < 2; i++ {
		pkt, err := s.ReadPacket(ctx)
		if err != nil {
			if i > 0 && errors.Is(err, pn547.ErrInterrupted) {
				return nil
			}
			return fmt.Errorf("no reset response: %w", err)
		}
		_, _ = fmt.Printf("< %s\n", describePacket(pkt))
	}
	return nil
}

func runMonitor(ctx context.Context, s *pn547.Session, _ []string) error {
	mon := monitor.New(s, monitor.DefaultConfig(), monitor.Callbacks{
		OnFrame: func(data []byte) error {
			_, _ = fmt.Printf("%s < %s\n", time.Now().Format("15:04:05.000"), describePacket(data))
			return nil
		},
		OnError: func(err error) {
			_, _ = fmt.Printf("read error: %v\n", err)
		},
	})
	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	_, _ = fmt.Println("Monitoring, press Ctrl+C to stop...")

	select {
	case <-ctx.Done():
	case <-mon.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := mon.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop monitor: %w", err)
	}

	m := mon.GetMetrics()
	_, _ = fmt.Printf("Frames: %d, bytes: %d, errors: %d\n", m.FramesRead, m.BytesRead, m.ReadErrors)
	return nil
}

func parseDetectionMode(s string) (detection.Mode, error) {
	switch strings.ToLower(s) {
	case "passive":
		return detection.Passive, nil
	case "safe":
		return detection.Safe, nil
	case "full":
		return detection.Full, nil
	default:
		return detection.Passive, fmt.Errorf("unknown detection mode %q", s)
	}
}

func runDetect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	modeName := fs.String("mode", "safe", "probe mode: passive, safe or full")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mode, err := parseDetectionMode(*modeName)
	if err != nil {
		return err
	}

	opts := detection.DefaultOptions()
	opts.Mode = mode
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	devices, err := detection.DetectAllContext(ctx, &opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	for _, d := range devices {
		_, _ = fmt.Printf("%-20s %-8s %s\n", d.Path, d.Confidence, d.Name)
	}
	return nil
}
