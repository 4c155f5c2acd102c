// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package memdev implements the demo address-indexed byte store spec.md §1
// gestures at ("a tiny address-indexed byte store") and that
// original_source/src/main.rs sketches but never finishes — its write path
// is a stub that always logs "Writing is not implemented yet" and NACKs.
// MemoryDevice completes both directions: the first byte of a write
// transaction sets the current-address pointer, subsequent bytes write
// sequentially from it (wrapping); reads return bytes starting at the
// pointer, auto-incrementing (also wrapping) — the conventional behavior of
// the simple EEPROM-style devices this kind of demo typically emulates.
package memdev

import (
	"sync"

	"github.com/fymyte/i2c-gpio-slave/internal/i2cslave"
)

// MemoryDevice is a fixed-size byte array plus a current-address pointer.
// It implements internal/i2cslave's TransactionPolicy so the CLI driver
// loop can hand it directly to Engine.RunTransaction.
type MemoryDevice struct {
	mu   sync.Mutex
	data []byte
	addr int

	addrSet bool // true once the pointer byte of the in-progress write has been consumed
}

var _ i2cslave.TransactionPolicy = (*MemoryDevice)(nil)

// New returns a MemoryDevice of the given size, addressed starting at 0.
func New(size int) *MemoryDevice {
	return &MemoryDevice{data: make([]byte, size)}
}

// Size reports the device's total addressable byte count.
func (m *MemoryDevice) Size() int {
	return len(m.data)
}

// Snapshot returns a copy of the device's current contents, for tests and
// logging.
func (m *MemoryDevice) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// AckAddress implements i2cslave.TransactionPolicy. This device always
// acknowledges an addressed transaction whatever its 7-bit address (nothing
// in this module filters on address), and resets its per-transaction
// write-pointer state.
func (m *MemoryDevice) AckAddress(op i2cslave.SlaveOp) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrSet = false
	return true
}

// NextByte implements i2cslave.TransactionPolicy for read (master-reads)
// transactions: returns the byte at the current pointer and advances it,
// wrapping at the array bound.
func (m *MemoryDevice) NextByte() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return 0
	}
	b := m.data[m.addr]
	m.addr = (m.addr + 1) % len(m.data)
	return b
}

// AckByte implements i2cslave.TransactionPolicy for write (master-writes)
// transactions: the first byte of the transaction sets the pointer rather
// than being stored; every subsequent byte is written at the pointer, which
// then advances, wrapping at the array bound. Always acknowledges — this
// device has no capacity limit that would cause it to NACK mid-write.
func (m *MemoryDevice) AckByte(b byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return true
	}
	if !m.addrSet {
		m.addr = int(b) % len(m.data)
		m.addrSet = true
		return true
	}
	m.data[m.addr] = b
	m.addr = (m.addr + 1) % len(m.data)
	return true
}
