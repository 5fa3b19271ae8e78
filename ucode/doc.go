// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ucode decodes Xenos shader microcode.
//
// The instruction stream is a sequence of 96-bit slots. Control-flow slots
// carry two 48-bit control-flow instructions each; body slots carry exactly
// one ALU, vertex-fetch or texture-fetch instruction. Which body kind a slot
// holds is recorded in the owning Exec instruction's sequence field, two bits
// per slot, with the low bit set for fetches.
//
// All decoding is explicit shift and mask extraction from host-order words;
// nothing here relies on Go struct layout matching the wire format. Decoding
// never fails: a slot with an opcode outside the documented enumeration
// decodes to a record whose opcode reports Valid() == false, and it is up to
// the translator to reject it.
//
// # Usage
//
//	program := ucode.NewProgram(code)
//	slot, _ := program.Slot(0)
//	pair := ucode.DecodeControlFlowPair(slot)
//	for _, cf := range pair {
//	    fmt.Println(cf.Opcode)
//	}
//
// Every record type also has an Encode method that is the exact inverse of
// its decoder, which is what fixture builders use to assemble programs.
package ucode
