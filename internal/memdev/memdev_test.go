// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package memdev

import (
	"testing"

	"github.com/fymyte/i2c-gpio-slave/internal/i2cslave"
)

func TestWriteSetsPointerThenWritesSequentially(t *testing.T) {
	m := New(8)
	if !m.AckAddress(i2cslave.SlaveOp{Kind: i2cslave.OpRead, Addr: 0x50}) {
		t.Fatal("AckAddress returned false")
	}
	// First byte sets the pointer to 3, not stored.
	if !m.AckByte(3) {
		t.Fatal("AckByte(pointer) returned false")
	}
	if !m.AckByte(0xAA) {
		t.Fatal("AckByte(0xAA) returned false")
	}
	if !m.AckByte(0xBB) {
		t.Fatal("AckByte(0xBB) returned false")
	}
	snap := m.Snapshot()
	if snap[3] != 0xAA || snap[4] != 0xBB {
		t.Fatalf("snapshot = %v, want data[3]=0xAA data[4]=0xBB", snap)
	}
}

func TestWritePointerWraps(t *testing.T) {
	m := New(4)
	m.AckAddress(i2cslave.SlaveOp{})
	m.AckByte(3) // pointer -> 3
	m.AckByte(0x11)
	m.AckByte(0x22) // wraps to index 0
	snap := m.Snapshot()
	if snap[3] != 0x11 || snap[0] != 0x22 {
		t.Fatalf("snapshot = %v, want data[3]=0x11 data[0]=0x22 (wrap)", snap)
	}
}

func TestReadAdvancesAndWraps(t *testing.T) {
	m := New(4)
	m.AckAddress(i2cslave.SlaveOp{})
	m.AckByte(2) // set pointer to 2
	m.AckByte(0x55)
	m.AckByte(0x66) // wraps: data[2]=0x55, data[3]=0x66, pointer now 0

	// New transaction, read from current pointer (0) without resetting
	// the address: AckAddress only clears write-pointer bookkeeping, it
	// doesn't move the read cursor.
	m.AckAddress(i2cslave.SlaveOp{Kind: i2cslave.OpWrite, Addr: 0x50})
	got := []byte{m.NextByte(), m.NextByte(), m.NextByte(), m.NextByte(), m.NextByte()}
	want := []byte{0, 0, 0x55, 0x66, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NextByte sequence = %v, want %v", got, want)
		}
	}
}
