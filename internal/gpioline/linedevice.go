package gpioline

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import "periph.io/x/conn/v3/gpio"

// LineDevice is the subset of Line's contract the protocol engine in
// internal/i2cslave depends on. It exists so tests can substitute
// gpiofake's scripted fake bus for a real kernel-backed Line without the
// engine importing anything hardware-specific.
type LineDevice interface {
	Name() string
	Offset() uint32
	AsInput() error
	AsOutput(v gpio.Level) error
	AsRisingWatch() (EdgeSource, error)
	AsFallingWatch() (EdgeSource, error)
	Read() (gpio.Level, error)
	Write(v gpio.Level) error
	Release()
}

var _ LineDevice = (*Line)(nil)
