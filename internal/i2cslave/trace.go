// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cslave

// TransactionRecord is a structured, replayable record of one bus
// transaction, emitted by RunTransaction purely for logging and testing
// (the engine itself never inspects one it has built). It exists because
// spec.md's own "End-to-end scenarios" (§8) describe transactions as an
// ordered sequence of operation outcomes, which this struct mirrors as
// data instead of only as a comment-documented test expectation.
type TransactionRecord struct {
	// Op is the address/direction decoded by read_addr, or the zero value
	// if the transaction failed before an address was read.
	Op SlaveOp
	// Bytes is every payload byte transferred, in transfer order,
	// regardless of direction.
	Bytes []byte
	// Stopped is true iff the transaction ended with a successful
	// wait_stop rather than an error.
	Stopped bool
	// Err is the error that aborted the transaction, nil when Stopped.
	Err error
}

func (r *TransactionRecord) appendByte(b byte) {
	r.Bytes = append(r.Bytes, b)
}
