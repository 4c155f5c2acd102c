package gpioline

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/binary"
	"os"
	"time"
)

// EdgeSource is the consumer-facing view of an open edge-event stream: a
// blocking, optionally deadlined, FIFO source of "another edge happened"
// notifications. Line.AsRisingWatch/AsFallingWatch return one; tests
// substitute gpiofake's own implementation for a scripted master.
type EdgeSource interface {
	// Next blocks until the next queued edge event is delivered, or until
	// a deadline set by SetDeadline expires.
	Next() error
	// SetDeadline applies an optional read deadline to future Next calls.
	SetDeadline(t time.Time) error
}

// EdgeWatch delivers edge events from a Line in the order the kernel
// observed them. It is bound to the Line's current handle: once the Line
// switches to a different mode, a previously obtained EdgeWatch's file is
// closed out from under it and further Next calls fail.
type EdgeWatch struct {
	file *os.File
}

var _ EdgeSource = (*EdgeWatch)(nil)

// Next blocks until the kernel delivers the next queued edge event, or
// until the deadline set by SetDeadline (if any) expires. The event
// payload itself isn't exposed: every caller in this module only needs to
// know that an edge of the requested polarity occurred, then samples a
// line's level to decide what it means.
func (w *EdgeWatch) Next() error {
	var ev gpio_v2_line_event
	return binary.Read(w.file, binary.LittleEndian, &ev)
}

// SetDeadline applies an optional read deadline to future Next calls. The
// protocol engine calls this only after a collaborator has installed a
// timeout through Engine.SetTimeout (the CLI's -timeout flag); by default
// the core runs without timeouts.
func (w *EdgeWatch) SetDeadline(t time.Time) error {
	return w.file.SetReadDeadline(t)
}
