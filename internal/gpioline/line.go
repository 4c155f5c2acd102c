package gpioline

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// A Line memoizes a single kernel-backed mode and re-requests the
// underlying handle only when the caller asks for a different one. The
// GPIO v2 ioctl ABI issues one file descriptor per (line, flags) pair and
// neither direction nor edge selection can be changed on an open
// descriptor, so switching modes means: drop the current handle (the line
// floats to the bus pull-up), open a new one, then update the mode tag.

import (
	"fmt"
	"os"

	"periph.io/x/conn/v3/gpio"
)

// Mode is the kind of kernel handle a Line currently holds.
type Mode int

const (
	// ModeUndefined means the previous mode switch failed; the next
	// operation must re-attempt acquisition.
	ModeUndefined Mode = iota
	ModeInput
	ModeOutput
	ModeRisingWatch
	ModeFallingWatch
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeRisingWatch:
		return "rising-watch"
	case ModeFallingWatch:
		return "falling-watch"
	default:
		return "undefined"
	}
}

// Line is a single GPIO line on a Chip, with an exclusive current Mode.
type Line struct {
	chip   *Chip
	name   string
	offset uint32

	mode  Mode
	fd    int32
	file  *os.File // non-nil only while mode is a watch mode
	value gpio.Level
}

func newLine(chip *Chip, name string, offset uint32) *Line {
	return &Line{chip: chip, name: name, offset: offset, mode: ModeInput}
}

// Name is the human-readable identity ("sda", "scl") used in error messages.
func (l *Line) Name() string { return l.name }

// Offset is the line's numeric offset within its chip.
func (l *Line) Offset() uint32 { return l.offset }

// Mode reports the Line's current tagged mode.
func (l *Line) Mode() Mode { return l.mode }

// AsInput guarantees the line is released to the bus (high-Z), relying on
// the external pull-up. No-op if already Input with a live handle.
func (l *Line) AsInput() error {
	if l.mode == ModeInput && l.fd != 0 {
		return nil
	}
	if err := l.reacquire(_GPIO_V2_LINE_FLAG_INPUT); err != nil {
		return err
	}
	l.mode = ModeInput
	return nil
}

// AsOutput guarantees the line is driven to v. If already Output, only the
// driven value is updated (no re-acquisition); otherwise the line is
// re-acquired as Output first.
func (l *Line) AsOutput(v gpio.Level) error {
	if l.mode == ModeOutput {
		return l.Write(v)
	}
	if err := l.reacquire(_GPIO_V2_LINE_FLAG_OUTPUT); err != nil {
		return err
	}
	l.mode = ModeOutput
	// Force the first Write below to actually hit the ioctl regardless of
	// what v is, since the kernel-side default output value is unknown to us.
	l.value = !v
	return l.Write(v)
}

// AsRisingWatch guarantees a rising-edge event stream is open on the line
// and returns a handle to consume it. Re-acquires only if the line isn't
// already a rising watch.
func (l *Line) AsRisingWatch() (EdgeSource, error) {
	if l.mode == ModeRisingWatch && l.file != nil {
		return &EdgeWatch{file: l.file}, nil
	}
	if err := l.reacquire(_GPIO_V2_LINE_FLAG_INPUT | _GPIO_V2_LINE_FLAG_EDGE_RISING); err != nil {
		return nil, err
	}
	l.mode = ModeRisingWatch
	l.openEdgeFile()
	return &EdgeWatch{file: l.file}, nil
}

// AsFallingWatch is AsRisingWatch's falling-edge counterpart.
func (l *Line) AsFallingWatch() (EdgeSource, error) {
	if l.mode == ModeFallingWatch && l.file != nil {
		return &EdgeWatch{file: l.file}, nil
	}
	if err := l.reacquire(_GPIO_V2_LINE_FLAG_INPUT | _GPIO_V2_LINE_FLAG_EDGE_FALLING); err != nil {
		return nil, err
	}
	l.mode = ModeFallingWatch
	l.openEdgeFile()
	return &EdgeWatch{file: l.file}, nil
}

// Read samples the line's current electrical level. Valid in Input or
// either edge-watch mode; in Output mode it returns the last driven value
// without touching hardware.
func (l *Line) Read() (gpio.Level, error) {
	if l.mode == ModeOutput {
		return l.value, nil
	}
	if l.fd == 0 {
		return false, fmt.Errorf("gpioline: line %s (%d): read with no handle acquired", l.name, l.offset)
	}
	var data gpio_v2_line_values
	data.mask = 1
	if err := ioctl_get_gpio_v2_line_values(uintptr(l.fd), &data); err != nil {
		return false, fmt.Errorf("gpioline: line %s (%d): get values ioctl: %w", l.name, l.offset, err)
	}
	return data.bits&1 == 1, nil
}

// Write updates the driven value. Valid only in Output mode; a value equal
// to the one already driven is elided (no ioctl is issued).
func (l *Line) Write(v gpio.Level) error {
	if l.mode != ModeOutput {
		return fmt.Errorf("gpioline: line %s (%d): write while not in output mode (mode=%s)", l.name, l.offset, l.mode)
	}
	if l.value == v {
		return nil
	}
	var data gpio_v2_line_values
	data.mask = 1
	if v {
		data.bits = 1
	}
	if err := ioctl_set_gpio_v2_line_values(uintptr(l.fd), &data); err != nil {
		return fmt.Errorf("gpioline: line %s (%d): set values ioctl: %w", l.name, l.offset, err)
	}
	l.value = v
	return nil
}

// Release drops the current handle, if any, leaving the line floating to
// the bus pull-up. Safe to call repeatedly and on a line with no handle.
func (l *Line) Release() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
		l.fd = 0
		return
	}
	if l.fd != 0 {
		_ = syscall_close_wrapper(int(l.fd))
		l.fd = 0
	}
}

func (l *Line) reacquire(flags uint64) error {
	l.Release()
	var req gpio_v2_line_request
	req.setLineOffset(0, l.offset)
	copy(req.consumer[:], consumerBytes)
	req.num_lines = 1
	req.config.flags = flags
	if err := ioctl_gpio_v2_line_request(l.chip.fd(), &req); err != nil {
		l.mode = ModeUndefined
		return fmt.Errorf("gpioline: line %s (%d): request ioctl: %w", l.name, l.offset, err)
	}
	l.fd = req.fd
	return nil
}

func (l *Line) openEdgeFile() {
	_ = syscall_nonblock_wrapper(int(l.fd), true)
	l.file = os.NewFile(uintptr(l.fd), fmt.Sprintf("gpio-%s-%d", l.name, l.offset))
}
