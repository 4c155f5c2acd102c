// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiofake

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestAsInputIdempotent(t *testing.T) {
	bus := NewBus()
	l := bus.Line("sda")
	if err := l.AsInput(); err != nil {
		t.Fatalf("first AsInput: %s", err)
	}
	if err := l.AsInput(); err != nil {
		t.Fatalf("second AsInput: %s", err)
	}
	if got := l.AcquireCount(); got != 1 {
		t.Errorf("AcquireCount() = %d, want 1", got)
	}
}

func TestAsOutputReacquiresOnlyOnModeChange(t *testing.T) {
	bus := NewBus()
	l := bus.Line("sda")
	if err := l.AsOutput(gpio.Low); err != nil {
		t.Fatalf("AsOutput(Low): %s", err)
	}
	if err := l.AsOutput(gpio.High); err != nil {
		t.Fatalf("AsOutput(High): %s", err)
	}
	if got := l.AcquireCount(); got != 1 {
		t.Errorf("AcquireCount() = %d, want 1 (only the mode switch should acquire)", got)
	}
	v, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	if v != gpio.High {
		t.Errorf("Read() = %v, want High", v)
	}
}

func TestBusWireAndSemantics(t *testing.T) {
	bus := NewBus()
	if !bus.Level() {
		t.Fatal("bus should idle high")
	}
	a := bus.Line("a")
	b := bus.Line("b")
	if err := a.AsOutput(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if bus.Level() {
		t.Error("bus should read low once a drives low")
	}
	if err := b.AsOutput(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := a.AsOutput(gpio.High); err != nil {
		t.Fatal(err)
	}
	if bus.Level() {
		t.Error("bus should still read low while b drives low")
	}
	if err := b.AsOutput(gpio.High); err != nil {
		t.Fatal(err)
	}
	if !bus.Level() {
		t.Error("bus should release high once every driver releases")
	}
}

func TestWatchDeliversOnMatchingEdge(t *testing.T) {
	bus := NewBus()
	master := bus.Line("master")
	slave := bus.Line("slave")
	src, err := slave.AsFallingWatch()
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- src.Next() }()
	if err := master.AsOutput(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Errorf("Next() returned error: %s", err)
	}
}
