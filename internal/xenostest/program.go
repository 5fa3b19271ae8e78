// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package xenostest

import (
	"strings"

	"github.com/gogpu/xenos/ucode"
)

// Assemble lays out control-flow instructions followed by body slots.
// Exec-family addresses in cf are body-relative and are rebased onto the
// first body slot; other addresses are control-flow indices and are kept.
func Assemble(cf []ucode.ControlFlow, body ...ucode.Slot) []ucode.Slot {
	cfSlots := uint32(len(cf)+1) / 2
	nop := ucode.ControlFlow{Opcode: ucode.CFNop, Kind: ucode.Nop{}}

	slots := make([]ucode.Slot, 0, int(cfSlots)+len(body))
	for i := 0; i < len(cf); i += 2 {
		a := rebase(cf[i], cfSlots)
		b := nop
		if i+1 < len(cf) {
			b = rebase(cf[i+1], cfSlots)
		}
		slots = append(slots, ucode.EncodeControlFlowPair(a, b))
	}
	return append(slots, body...)
}

func rebase(cf ucode.ControlFlow, by uint32) ucode.ControlFlow {
	switch k := cf.Kind.(type) {
	case ucode.Exec:
		k.Address += by
		cf.Kind = k
	case ucode.CondExec:
		k.Address += by
		cf.Kind = k
	case ucode.CondExecPred:
		k.Address += by
		cf.Kind = k
	}
	return cf
}

// Sequence builds an Exec sequence field where the listed body slots are
// fetches.
func Sequence(fetches ...int) uint32 {
	var seq uint32
	for _, i := range fetches {
		seq |= 1 << (2 * uint(i))
	}
	return seq
}

// Exec returns an Exec instruction over count body slots at body-relative
// address.
func Exec(address, count uint32, fetches ...int) ucode.ControlFlow {
	return ucode.ControlFlow{
		Opcode: ucode.CFExec,
		Kind: ucode.Exec{ExecBody: ucode.ExecBody{
			Address:  address,
			Count:    count,
			Sequence: Sequence(fetches...),
		}},
	}
}

// ExecEnd is Exec that ends the program.
func ExecEnd(address, count uint32, fetches ...int) ucode.ControlFlow {
	cf := Exec(address, count, fetches...)
	cf.Opcode = ucode.CFExecEnd
	return cf
}

// LoopStart opens a loop on integer constant loopID.
func LoopStart(loopID, address uint32) ucode.ControlFlow {
	return ucode.ControlFlow{
		Opcode: ucode.CFLoopStart,
		Kind:   ucode.LoopStart{Address: address, LoopID: loopID},
	}
}

// LoopEnd closes a loop on integer constant loopID, jumping back to address.
func LoopEnd(loopID, address uint32) ucode.ControlFlow {
	return ucode.ControlFlow{
		Opcode: ucode.CFLoopEnd,
		Kind:   ucode.LoopEnd{Address: address, LoopID: loopID},
	}
}

// Jump returns a CondJmp to control-flow index address.
func Jump(address uint32, k ucode.CondJmp) ucode.ControlFlow {
	k.Address = address
	return ucode.ControlFlow{Opcode: ucode.CFCondJmp, Kind: k}
}

// Swizzle encodes an ALU operand swizzle such as "xyzw" or "wzyx".
// Components are stored relative to their position.
func Swizzle(components string) uint32 {
	var swz uint32
	for i := 0; i < 4; i++ {
		c := components[len(components)-1]
		if i < len(components) {
			c = components[i]
		}
		comp := uint32(strings.IndexByte("xyzw", c))
		swz |= ((comp - uint32(i)) & 3) << (2 * uint(i))
	}
	return swz
}

// FetchSwizzle encodes a fetch destination swizzle. Each byte of components
// is one of "xyzw01_" where '_' keeps the destination component.
func FetchSwizzle(components string) uint32 {
	var swz uint32
	for i := 0; i < 4 && i < len(components); i++ {
		var sel ucode.DestSwizzle
		switch c := components[i]; c {
		case '0':
			sel = ucode.DestZero
		case '1':
			sel = ucode.DestOne
		case '_':
			sel = ucode.DestKeep
		default:
			sel = ucode.DestSwizzle(strings.IndexByte("xyzw", c))
		}
		swz |= uint32(sel) << (3 * uint(i))
	}
	for i := len(components); i < 4; i++ {
		swz |= uint32(ucode.DestKeep) << (3 * uint(i))
	}
	return swz
}
