package gpioline

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"fmt"
	"os"
	"strings"
)

// Consumer is the fixed label attached to every line request this package
// issues. It is informational only: the kernel surfaces it to tools like
// gpioinfo so an operator can see who holds a line, but nothing in this
// module reads it back.
const Consumer = "i2c-gpio-sqn"

var consumerBytes = []byte(Consumer)

// Chip wraps one opened /dev/gpiochipN character device and hands out
// Lines by offset. It owns the device file descriptor for its entire
// lifetime; closing it invalidates any Line obtained from it that hasn't
// already released its own handle.
type Chip struct {
	path      string
	name      string
	label     string
	lineCount int
	file      *os.File
}

// OpenChip opens the gpiochip device at path and reads its line count.
func OpenChip(path string) (*Chip, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("gpioline: open chip %s: %w", path, err)
	}
	c := &Chip{path: path, file: f}
	var info gpiochip_info
	if err := ioctl_gpiochip_info(c.file.Fd(), &info); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gpioline: chip %s: chip info ioctl: %w", path, err)
	}
	c.name = strings.TrimRight(string(info.name[:]), "\x00")
	c.label = strings.TrimRight(string(info.label[:]), "\x00")
	c.lineCount = int(info.lines)
	return c, nil
}

// Path returns the device node path this chip was opened from.
func (c *Chip) Path() string { return c.path }

// Name returns the kernel-reported chip name (e.g. "gpiochip0").
func (c *Chip) Name() string { return c.name }

// Label returns the kernel-reported chip label.
func (c *Chip) Label() string { return c.label }

// LineCount returns the number of lines this chip exposes.
func (c *Chip) LineCount() int { return c.lineCount }

// Line returns a handle for the line at offset, named for logging/error
// purposes. The line starts logically released (Input, no kernel handle
// yet acquired); the handle is opened lazily on the first mode-entering
// call.
func (c *Chip) Line(name string, offset uint32) (*Line, error) {
	if int(offset) >= c.lineCount {
		return nil, fmt.Errorf("gpioline: chip %s: line offset %d out of range (chip has %d lines)", c.path, offset, c.lineCount)
	}
	return newLine(c, name, offset), nil
}

// Close closes the chip's device file descriptor. It does not release any
// Lines obtained from it; callers must release those first.
func (c *Chip) Close() error {
	return c.file.Close()
}

func (c *Chip) fd() uintptr {
	return c.file.Fd()
}
