// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cslave

import "fmt"

// Code names one of the engine's failure kinds, grounded on
// jangala-dev-devicecode-go/errcode's Code newtype — a plain exported string
// constant rather than a Go error-variable-per-kind, so the driver loop can
// switch on it and every Error carries exactly one.
type Code string

const (
	CodeLineRequest  Code = "line_request"
	CodeLineInfo     Code = "line_info"
	CodeWaitStart    Code = "wait_start"
	CodeWaitStop     Code = "wait_stop"
	CodeWaitNextEdge Code = "wait_next_edge"
	CodeReadByte     Code = "read_byte"
	CodeWriteByte    Code = "write_byte"
	CodeReadAddr     Code = "read_addr"
	CodeAck          Code = "ack"
	CodeNack         Code = "nack"
)

// Tier classifies how the driver loop should react to an Error, per
// spec.md §7.
type Tier int

const (
	// TierRecoverable errors abort only the current transaction.
	TierRecoverable Tier = iota + 1
	// TierTransactionFatal errors also abort only the current transaction;
	// the outer loop does not exit, matching spec.md §7's tier 2 wording
	// ("same outer policy as (1)").
	TierTransactionFatal
	// TierProcessFatal errors propagate up to the collaborator, which
	// logs and terminates.
	TierProcessFatal
)

func (t Tier) String() string {
	switch t {
	case TierRecoverable:
		return "recoverable"
	case TierTransactionFatal:
		return "transaction-fatal"
	case TierProcessFatal:
		return "process-fatal"
	default:
		return "unknown"
	}
}

var codeTiers = map[Code]Tier{
	CodeAck:          TierRecoverable,
	CodeNack:         TierRecoverable,
	CodeWaitNextEdge: TierRecoverable,
	CodeReadByte:     TierTransactionFatal,
	CodeWriteByte:    TierTransactionFatal,
	CodeReadAddr:     TierTransactionFatal,
	CodeWaitStart:    TierTransactionFatal,
	CodeWaitStop:     TierTransactionFatal,
	CodeLineRequest:  TierProcessFatal,
	CodeLineInfo:     TierProcessFatal,
}

// LineInfo identifies the line implicated in an Error, when there is one.
type LineInfo struct {
	Name   string
	Offset uint32
}

func (li LineInfo) String() string {
	if li.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s(%d)", li.Name, li.Offset)
}

// Error is the engine's single error type. Code selects the failure kind;
// Line is the zero value when the failure isn't attributable to one line;
// Reason carries the free-form detail the Code kinds that need one
// (Ack/Nack/WaitNextEdge/LineRequest) specify; Byte carries the byte of a
// WriteByte failure; Err is the wrapped
// underlying cause, unwrapped via the standard %w mechanism the way the
// Rust source's #[from]/with_context chaining does.
type Error struct {
	Code   Code
	Line   LineInfo
	Reason string
	Byte   byte
	hasB   bool
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Line.Name != "" {
		msg += " " + e.Line.String()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.hasB {
		msg += fmt.Sprintf(" (byte=0x%02x)", e.Byte)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Tier classifies e per spec.md §7. Unknown codes are treated as
// process-fatal, the conservative choice.
func (e *Error) Tier() Tier {
	if t, ok := codeTiers[e.Code]; ok {
		return t
	}
	return TierProcessFatal
}

func errLineRequest(line LineInfo, hint string, cause error) error {
	return &Error{Code: CodeLineRequest, Line: line, Reason: hint, Err: cause}
}

func errLineInfo(line LineInfo, cause error) error {
	return &Error{Code: CodeLineInfo, Line: line, Err: cause}
}

func errWaitStart(cause error) error {
	return &Error{Code: CodeWaitStart, Err: cause}
}

func errWaitStop(cause error) error {
	return &Error{Code: CodeWaitStop, Err: cause}
}

func errWaitNextEdge(polarity string, cause error) error {
	return &Error{Code: CodeWaitNextEdge, Reason: polarity, Err: cause}
}

func errReadByte(cause error) error {
	return &Error{Code: CodeReadByte, Err: cause}
}

func errWriteByte(b byte, cause error) error {
	return &Error{Code: CodeWriteByte, Byte: b, hasB: true, Err: cause}
}

func errReadAddr(cause error) error {
	return &Error{Code: CodeReadAddr, Err: cause}
}

func errAck(reason string, cause error) error {
	return &Error{Code: CodeAck, Reason: reason, Err: cause}
}

func errNack(reason string, cause error) error {
	return &Error{Code: CodeNack, Reason: reason, Err: cause}
}
