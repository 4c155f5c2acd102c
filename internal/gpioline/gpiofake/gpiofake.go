// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package gpiofake is a pure in-memory stand-in for internal/gpioline,
// scriptable enough to drive internal/i2cslave's protocol engine against a
// simulated bus master without real hardware. It generalizes the idea
// behind periph-host/gpioioctl's offline DummyGPIOChip fixture (one static
// line, built so tests still compile off Linux) into a small shared bus
// two fakes can both drive edges onto.
package gpiofake

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/fymyte/i2c-gpio-slave/internal/gpioline"
)

// ErrClosed is returned by Next once the Line that opened the watch has
// released it (a mode switch or Release), standing in for the "event stream
// ended" case a real kernel fd read would produce.
var ErrClosed = errors.New("gpiofake: edge stream closed")

// Bus is a single shared open-drain wire that a test's simulated master
// and the Lines under test both drive; SDA and SCL each need their own Bus. The resting level is the logical
// AND of every participant's driven value, matching open-drain wire-AND
// semantics: anyone pulling low wins.
type Bus struct {
	mu        sync.Mutex
	drivers   map[string]bool // driver name -> pulling low (true) or released (false)
	level     bool            // true == high
	listeners []*watch
}

// NewBus returns a Bus with the wire idle high, as spec.md §4.2 assumes
// ("Assume SDA and SCL are both pulled up and initially released").
func NewBus() *Bus {
	return &Bus{drivers: make(map[string]bool), level: true}
}

// Line returns a fake Line named name (e.g. "sda"/"scl") sharing this bus.
func (b *Bus) Line(name string) *Line {
	return &Line{bus: b, name: name}
}

// Drive is called by test code playing the role of the master: low=true
// pulls the wire down, low=false releases it. It recomputes the bus level
// and wakes any open watch whose polarity the transition matches.
func (b *Bus) Drive(driver string, low bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setDriver(driver, low)
}

func (b *Bus) setDriver(driver string, low bool) {
	prev := b.level
	b.drivers[driver] = low
	b.level = !b.anyLowLocked()
	if prev == b.level {
		return
	}
	for _, w := range b.listeners {
		if (b.level && w.rising) || (!b.level && !w.rising) {
			w.deliver()
		}
	}
}

func (b *Bus) anyLowLocked() bool {
	for _, low := range b.drivers {
		if low {
			return true
		}
	}
	return false
}

func (b *Bus) read() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Level returns the wire's current resting level, for a test's simulated
// master to sample the way a real master would.
func (b *Bus) Level() bool {
	return b.read()
}

// WatcherCount returns the number of edge watches currently registered on
// the bus, letting a test's simulated master wait for the slave side to
// finish a mode switch before driving the next edge — otherwise an edge
// driven before the watch exists is simply lost, the way it would be on
// real hardware too.
func (b *Bus) WatcherCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) addWatch(w *watch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, w)
}

func (b *Bus) removeWatch(w *watch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l == w {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

const (
	modeUndefined = iota // no handle acquired yet
	modeInput
	modeOutput
	modeRising
	modeFalling
)

// Line is a fake gpioline.LineDevice backed by a shared Bus.
type Line struct {
	bus    *Bus
	name   string
	driver string // non-empty while this Line is itself pulling the wire low

	mode         int
	watch        *watch
	driven       bool
	acquireCount int
}

// AcquireCount is incremented every time this Line's underlying handle is
// (re)requested, letting tests assert the idempotence property from
// spec.md §8 ("calling as_input() twice in succession issues exactly one
// kernel re-acquisition").
func (l *Line) AcquireCount() int { return l.acquireCount }

type watch struct {
	rising bool
	ch     chan struct{}
}

func (w *watch) deliver() {
	select {
	case w.ch <- struct{}{}:
	default:
		// All 64 buffered slots are full and the event is dropped; no
		// scripted test in this module queues that many unconsumed edges.
	}
}

// Next implements gpioline.EdgeSource.
func (w *watch) Next() error {
	if w.ch == nil {
		return ErrClosed
	}
	if _, ok := <-w.ch; !ok {
		return ErrClosed
	}
	return nil
}

// SetDeadline implements gpioline.EdgeSource. Fakes don't model timeouts;
// a scripted test either delivers an edge or the test itself times out.
func (w *watch) SetDeadline(time.Time) error { return nil }

var _ gpioline.EdgeSource = (*watch)(nil)

func (l *Line) Name() string   { return l.name }
func (l *Line) Offset() uint32 { return 0 }

func (l *Line) AsInput() error {
	if l.mode == modeInput && l.driver == "" && l.watch == nil {
		return nil
	}
	l.release()
	l.mode = modeInput
	l.acquireCount++
	return nil
}

func (l *Line) AsOutput(v gpio.Level) error {
	if l.mode == modeOutput {
		return l.Write(v)
	}
	l.release()
	l.mode = modeOutput
	l.driver = l.name
	l.acquireCount++
	l.driven = !bool(v)
	return l.Write(v)
}

func (l *Line) AsRisingWatch() (gpioline.EdgeSource, error) {
	if l.mode == modeRising && l.watch != nil {
		return l.watch, nil
	}
	l.release()
	l.mode = modeRising
	l.acquireCount++
	w := &watch{rising: true, ch: make(chan struct{}, 64)}
	l.watch = w
	l.bus.addWatch(w)
	return w, nil
}

func (l *Line) AsFallingWatch() (gpioline.EdgeSource, error) {
	if l.mode == modeFalling && l.watch != nil {
		return l.watch, nil
	}
	l.release()
	l.mode = modeFalling
	l.acquireCount++
	w := &watch{rising: false, ch: make(chan struct{}, 64)}
	l.watch = w
	l.bus.addWatch(w)
	return w, nil
}

func (l *Line) Read() (gpio.Level, error) {
	if l.mode == modeOutput {
		return gpio.Level(l.driven), nil
	}
	return gpio.Level(l.bus.read()), nil
}

func (l *Line) Write(v gpio.Level) error {
	if l.mode != modeOutput {
		return errors.New("gpiofake: write while not in output mode")
	}
	if l.driven == bool(v) {
		return nil
	}
	l.driven = bool(v)
	l.bus.Drive(l.name, !bool(v))
	return nil
}

func (l *Line) Release() {
	l.release()
}

func (l *Line) release() {
	if l.watch != nil {
		l.bus.removeWatch(l.watch)
		close(l.watch.ch)
		l.watch = nil
	}
	if l.driver != "" {
		l.bus.Drive(l.driver, false)
		l.driver = ""
	}
}

var _ gpioline.LineDevice = (*Line)(nil)
