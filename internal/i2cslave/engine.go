// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package i2cslave implements the bit/byte-level I²C slave protocol on top
// of two gpioline.LineDevice handles, entirely in user space via edge
// watches. It ports the state machine of original_source's i2cslave.rs
// draft (wait_start/read_byte/read_addr/write_byte/ack/nack/
// read_master_ack/wait_stop/wait_up_down_cycle) into the teacher's Go idiom:
// exported methods on a struct holding its two collaborators, each
// operation wrapping its failure in a single named Error type instead of
// the Rust source's thiserror enum. ReadMasterAck is the exception: it has
// no Code of its own and returns line errors unwrapped.
package i2cslave

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/fymyte/i2c-gpio-slave/internal/gpioline"
)

// OpKind is the direction decoded from a received address byte.
type OpKind int

const (
	// OpRead means the slave reads FROM the master (direction bit was 0);
	// OpWrite means the slave writes TO the master (direction bit was 1).
	// The kinds name the slave's role, per the naming convention documented
	// in DESIGN.md's open-question decision, which this type preserves as-is.
	OpRead OpKind = iota
	OpWrite
)

func (k OpKind) String() string {
	if k == OpWrite {
		return "write"
	}
	return "read"
}

// SlaveOp is the tagged address/direction pair read_addr returns.
type SlaveOp struct {
	Kind OpKind
	Addr uint8 // 7-bit
}

// Engine is the I²C slave protocol engine. It owns exactly two lines (SDA,
// SCL) for its entire lifetime and is single-threaded, non-reentrant: no
// two operations may run concurrently on the same Engine.
type Engine struct {
	sda gpioline.LineDevice
	scl gpioline.LineDevice

	// edgeTimeout, when non-zero, is applied as a read deadline to every
	// edge watch this engine opens. The engine core itself never sets
	// one (spec.md §9 leaves the core free of timeouts); SetTimeout is the
	// collaborator boundary the CLI's -timeout flag calls through.
	edgeTimeout time.Duration
}

// SetTimeout installs a deadline applied to every edge watch subsequently
// opened by this engine. A zero duration (the default) disables timeouts,
// restoring the indefinite-blocking behavior spec.md §5 specifies for the
// core. This exists purely for the collaborator boundary (spec.md §9's
// open question "consider injecting a deadline at the collaborator
// boundary"); the engine's own protocol logic never reads this field
// directly, only the watch-opening helpers below do.
func (e *Engine) SetTimeout(d time.Duration) {
	e.edgeTimeout = d
}

func (e *Engine) risingWatch(l gpioline.LineDevice) (gpioline.EdgeSource, error) {
	w, err := l.AsRisingWatch()
	if err != nil {
		return nil, err
	}
	e.applyDeadline(w)
	return w, nil
}

func (e *Engine) fallingWatch(l gpioline.LineDevice) (gpioline.EdgeSource, error) {
	w, err := l.AsFallingWatch()
	if err != nil {
		return nil, err
	}
	e.applyDeadline(w)
	return w, nil
}

func (e *Engine) applyDeadline(w gpioline.EdgeSource) {
	if e.edgeTimeout <= 0 {
		return
	}
	_ = w.SetDeadline(time.Now().Add(e.edgeTimeout))
}

// New constructs an Engine from a Chip and the two line offsets, grounded
// on spec.md §6's constructor signature new(chip, sda_offset, scl_offset).
// Both lines start in Input mode (the electrically safe default).
func New(chip *gpioline.Chip, sdaOffset, sclOffset uint32) (*Engine, error) {
	sda, err := chip.Line("sda", sdaOffset)
	if err != nil {
		return nil, errLineRequest(LineInfo{"sda", sdaOffset}, "initial acquisition", err)
	}
	scl, err := chip.Line("scl", sclOffset)
	if err != nil {
		sda.Release()
		return nil, errLineRequest(LineInfo{"scl", sclOffset}, "initial acquisition", err)
	}
	if err := sda.AsInput(); err != nil {
		sda.Release()
		scl.Release()
		return nil, errLineInfo(lineInfoOf(sda), err)
	}
	if err := scl.AsInput(); err != nil {
		sda.Release()
		scl.Release()
		return nil, errLineInfo(lineInfoOf(scl), err)
	}
	return &Engine{sda: sda, scl: scl}, nil
}

// newFromLines builds an Engine directly from two LineDevices, used by
// tests to wire in internal/gpioline/gpiofake lines without a real Chip.
func newFromLines(sda, scl gpioline.LineDevice) *Engine {
	return &Engine{sda: sda, scl: scl}
}

// Close releases both lines to Input/high-Z, the scoped-acquisition
// guarantee spec.md §5 requires on engine teardown.
func (e *Engine) Close() error {
	e.sda.Release()
	e.scl.Release()
	return nil
}

func lineInfoOf(l gpioline.LineDevice) LineInfo {
	return LineInfo{Name: l.Name(), Offset: l.Offset()}
}

// WaitStart blocks until the master issues a START condition (SDA falls
// while SCL reads high).
func (e *Engine) WaitStart() error {
	if err := e.scl.AsInput(); err != nil {
		return errWaitStart(err)
	}
	watch, err := e.fallingWatch(e.sda)
	if err != nil {
		return errWaitStart(err)
	}
	for {
		if err := watch.Next(); err != nil {
			return errWaitStart(err)
		}
		high, err := e.scl.Read()
		if err != nil {
			return errWaitStart(err)
		}
		if high {
			return nil
		}
		// SCL was low: not a START (mid-bit data change, or a spurious
		// first event at handle-open time). Keep waiting.
	}
}

// ReadByte receives eight bits sent MSB-first by the master.
func (e *Engine) ReadByte() (byte, error) {
	if err := e.sda.AsInput(); err != nil {
		return 0, errReadByte(err)
	}
	watch, err := e.risingWatch(e.scl)
	if err != nil {
		return 0, errReadByte(err)
	}
	var b byte
	for n := 0; n < 8; n++ {
		if err := watch.Next(); err != nil {
			return 0, errReadByte(err)
		}
		bit, err := e.sda.Read()
		if err != nil {
			return 0, errReadByte(err)
		}
		if bit {
			b |= 1 << (7 - n)
		}
	}
	return b, nil
}

// ReadAddr reads one byte and splits it into a SlaveOp: the LSB is the
// direction bit (1 => OpWrite, 0 => OpRead, per the source's own naming
// convention — see the OpKind doc comment), the upper seven bits the
// address.
func (e *Engine) ReadAddr() (SlaveOp, error) {
	b, err := e.ReadByte()
	if err != nil {
		return SlaveOp{}, errReadAddr(err)
	}
	op := SlaveOp{Addr: b >> 1}
	if b&1 == 1 {
		op.Kind = OpWrite
	} else {
		op.Kind = OpRead
	}
	return op, nil
}

// WriteByte transmits eight bits MSB-first, synchronized to the master's
// clock, then releases SDA to Input so the master may drive the ack bit.
func (e *Engine) WriteByte(b byte) error {
	bit7 := gpio.Level(b&0x80 != 0)
	if err := e.sda.AsOutput(bit7); err != nil {
		return errWriteByte(b, err)
	}
	watch, err := e.risingWatch(e.scl)
	if err != nil {
		return errWriteByte(b, err)
	}
	for n := 1; n < 8; n++ {
		if err := watch.Next(); err != nil {
			return errWriteByte(b, err)
		}
		v := gpio.Level((b >> (6 - (n - 1))) & 1 != 0)
		if err := e.sda.Write(v); err != nil {
			return errWriteByte(b, err)
		}
	}
	// The seventh rising edge just consumed is the clock for the eighth
	// (last) bit; no further edge is awaited before releasing SDA.
	if err := e.sda.AsInput(); err != nil {
		return errWriteByte(b, err)
	}
	return nil
}

// waitUpDownCycle waits for one SCL rising edge followed by one SCL
// falling edge, the shared sub-step of ack/nack.
func (e *Engine) waitUpDownCycle() error {
	rise, err := e.risingWatch(e.scl)
	if err != nil {
		return errWaitNextEdge("rising", err)
	}
	if err := rise.Next(); err != nil {
		return errWaitNextEdge("rising", err)
	}
	fall, err := e.fallingWatch(e.scl)
	if err != nil {
		return errWaitNextEdge("falling", err)
	}
	if err := fall.Next(); err != nil {
		return errWaitNextEdge("falling", err)
	}
	return nil
}

// Ack pulls SDA low for one SCL cycle, acknowledging the preceding byte,
// then releases SDA to Input. SDA is released on every exit path once it
// has been driven, including a failure partway through the up-down wait,
// so the bus never ends up contended after a failed ack (spec.md §8
// "bus-safety on error path").
func (e *Engine) Ack() error {
	if err := e.sda.AsOutput(gpio.Low); err != nil {
		return errAck("drive low", err)
	}
	cycleErr := e.waitUpDownCycle()
	relErr := e.sda.AsInput()
	if cycleErr != nil {
		return errAck("up-down cycle", cycleErr)
	}
	if relErr != nil {
		return errAck("release", relErr)
	}
	return nil
}

// Nack leaves SDA high (released; the bus pull-up holds it) for one SCL
// cycle, signalling no-acknowledge. The caller must already have SDA in
// Input mode from the preceding operation.
func (e *Engine) Nack() error {
	if err := e.sda.AsInput(); err != nil {
		return errNack("release", err)
	}
	if err := e.waitUpDownCycle(); err != nil {
		return errNack("up-down cycle", err)
	}
	return nil
}

// ReadMasterAck samples the master's acknowledgement of a byte the slave
// just transmitted: false means the master wants more bytes, true means
// end-of-read. Errors from the line operations are returned as-is, not
// wrapped in an *Error.
func (e *Engine) ReadMasterAck() (nack bool, err error) {
	if err := e.sda.AsInput(); err != nil {
		return false, err
	}
	watch, err := e.risingWatch(e.scl)
	if err != nil {
		return false, err
	}
	if err := watch.Next(); err != nil {
		return false, err
	}
	v, err := e.sda.Read()
	if err != nil {
		return false, err
	}
	return bool(v), nil
}

// WaitStop blocks until the master issues a STOP condition (SDA rises
// while SCL reads high). Only a rising edge on SDA is watched, so a
// repeated START (SDA falling while SCL is high) is not detected.
func (e *Engine) WaitStop() error {
	if err := e.scl.AsInput(); err != nil {
		return errWaitStop(err)
	}
	watch, err := e.risingWatch(e.sda)
	if err != nil {
		return errWaitStop(err)
	}
	if err := watch.Next(); err != nil {
		return errWaitStop(err)
	}
	high, err := e.scl.Read()
	if err != nil {
		return errWaitStop(err)
	}
	if !high {
		return errWaitStop(nil)
	}
	return nil
}

// TransactionPolicy is the driver loop's strategy object: it decides
// whether to ack a freshly-addressed slave, supplies bytes for a write
// transaction, and consumes bytes the master reads, all without the
// engine knowing anything about memory devices, CLI flags, or logging.
type TransactionPolicy interface {
	// AckAddress decides whether to acknowledge a freshly decoded SlaveOp.
	// Returning false ends the transaction with a Nack and no payload loop.
	AckAddress(op SlaveOp) bool
	// NextByte supplies the next byte to transmit to the master during an
	// OpWrite transaction.
	NextByte() byte
	// AckByte decides whether to acknowledge a byte just received from
	// the master during an OpRead transaction. Returning false ends the
	// write payload loop (Nack) without consuming more bytes.
	AckByte(b byte) bool
}

// RunTransaction sequences wait_start → read_addr → (policy-driven payload
// loop) → wait_stop and returns a TransactionRecord describing what
// happened. It is the only place in this package that knows the engine-
// level state machine of spec.md §4.2.10; RunTransaction itself only calls
// the eight primitive operations above and consults policy between bytes.
func (e *Engine) RunTransaction(policy TransactionPolicy) *TransactionRecord {
	rec := &TransactionRecord{}

	if err := e.WaitStart(); err != nil {
		rec.Err = err
		return rec
	}

	op, err := e.ReadAddr()
	if err != nil {
		rec.Err = err
		return rec
	}
	rec.Op = op

	if !policy.AckAddress(op) {
		if err := e.Nack(); err != nil {
			rec.Err = err
			return rec
		}
		if err := e.WaitStop(); err != nil {
			rec.Err = err
			return rec
		}
		rec.Stopped = true
		return rec
	}
	if err := e.Ack(); err != nil {
		rec.Err = err
		return rec
	}

	// Per the source's own naming convention (documented on OpKind and in
	// DESIGN.md's open-question decision), OpRead means the master is
	// clocking bytes IN to the slave (engine receives via ReadByte), and
	// OpWrite means the master is clocking bytes OUT of the slave (engine
	// transmits via WriteByte) — the reverse of what the kind names would
	// suggest under conventional I²C framing. spec.md §8 scenario 1 (a
	// master write, decoded as Read(0x50)) and scenario 2 (a master read,
	// decoded as Write(0x50)) both confirm this mapping.
	switch op.Kind {
	case OpRead:
		for {
			b, err := e.ReadByte()
			if err != nil {
				rec.Err = err
				return rec
			}
			rec.appendByte(b)
			if policy.AckByte(b) {
				if err := e.Ack(); err != nil {
					rec.Err = err
					return rec
				}
			} else {
				if err := e.Nack(); err != nil {
					rec.Err = err
					return rec
				}
				break
			}
		}
	case OpWrite:
		for {
			b := policy.NextByte()
			if err := e.WriteByte(b); err != nil {
				rec.Err = err
				return rec
			}
			rec.appendByte(b)
			nack, err := e.ReadMasterAck()
			if err != nil {
				rec.Err = err
				return rec
			}
			if nack {
				break
			}
		}
	}

	if err := e.WaitStop(); err != nil {
		rec.Err = err
		return rec
	}
	rec.Stopped = true
	return rec
}
