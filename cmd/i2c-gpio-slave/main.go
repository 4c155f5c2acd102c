// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// i2c-gpio-slave runs an I²C slave over two bit-banged GPIO lines, serving a
// demo address-indexed memory device to whatever master is on the bus.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fymyte/i2c-gpio-slave/internal/gpioline"
	"github.com/fymyte/i2c-gpio-slave/internal/i2clog"
	"github.com/fymyte/i2c-gpio-slave/internal/i2cslave"
	"github.com/fymyte/i2c-gpio-slave/internal/memdev"
)

func mainImpl() error {
	timeout := flag.Duration("timeout", 0, "per-edge-wait deadline (0 disables timeouts, the engine default)")
	memSize := flag.Int("mem-size", 256, "byte size of the demo memory device")
	flag.Parse()

	if flag.NArg() != 3 {
		return errors.New("usage: i2c-gpio-slave <chip-device-path> <sda-offset> <scl-offset>")
	}
	chipPath := flag.Arg(0)
	sdaOffset, err := strconv.ParseUint(flag.Arg(1), 10, 32)
	if err != nil {
		return fmt.Errorf("sda-offset: %w", err)
	}
	sclOffset, err := strconv.ParseUint(flag.Arg(2), 10, 32)
	if err != nil {
		return fmt.Errorf("scl-offset: %w", err)
	}

	logger := i2clog.New(os.Stderr, i2clog.ParseLevel(os.Getenv("I2C_GPIO_LOG_LEVEL")))

	chip, err := gpioline.OpenChip(chipPath)
	if err != nil {
		logger.Errorf("open chip: %s", err)
		return err
	}
	defer chip.Close()
	logger.Infof("opened %s (%s): %d lines", chip.Path(), chip.Name(), chip.LineCount())

	engine, err := i2cslave.New(chip, uint32(sdaOffset), uint32(sclOffset))
	if err != nil {
		logger.Errorf("engine init: %s", err)
		return err
	}
	defer engine.Close()
	if *timeout > 0 {
		engine.SetTimeout(*timeout)
		logger.Infof("edge-wait timeout: %s", *timeout)
	}

	mem := memdev.New(*memSize)
	logger.Infof("serving %d-byte memory device; sda=%d scl=%d", mem.Size(), sdaOffset, sclOffset)

	for {
		rec := engine.RunTransaction(mem)
		if rec.Err == nil {
			logger.Infof("transaction %s addr=0x%02x bytes=%d stop=%v", rec.Op.Kind, rec.Op.Addr, len(rec.Bytes), rec.Stopped)
			continue
		}

		var e *i2cslave.Error
		if !errors.As(rec.Err, &e) {
			logger.Errorf("transaction: %s", rec.Err)
			continue
		}
		switch e.Tier() {
		case i2cslave.TierProcessFatal:
			logger.Errorf("process-fatal: %s", e)
			return e
		default:
			logger.Warnf("transaction aborted (%s): %s", e.Tier(), e)
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "i2c-gpio-slave: %s\n", err)
		os.Exit(1)
	}
}
