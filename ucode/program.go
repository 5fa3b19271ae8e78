// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

import "encoding/binary"

// SlotSize is the size in bytes of one instruction slot.
// Control-flow addresses and counts are expressed in these units.
const SlotSize = 12

// Slot is one 96-bit instruction unit as three host-order words.
type Slot [3]uint32

// Program is a read-only view of an instruction stream converted to host
// byte order.
type Program struct {
	words []uint32
}

// NewProgram converts big-endian microcode into a Program.
// Trailing bytes that do not form a whole word are ignored.
func NewProgram(code []byte) Program {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(code[i*4:])
	}
	return Program{words: words}
}

// ProgramFromWords wraps host-order words without copying.
func ProgramFromWords(words []uint32) Program {
	return Program{words: words}
}

// Len returns the number of whole slots in the program.
func (p Program) Len() uint32 {
	return uint32(len(p.words) / 3)
}

// ByteLen returns the size of the whole-slot portion of the program in bytes.
func (p Program) ByteLen() uint32 {
	return p.Len() * SlotSize
}

// Slot returns the slot at the given slot index.
func (p Program) Slot(index uint32) (Slot, bool) {
	if index >= p.Len() {
		return Slot{}, false
	}
	base := index * 3
	return Slot{p.words[base], p.words[base+1], p.words[base+2]}, true
}

// Words returns the underlying host-order words.
func (p Program) Words() []uint32 {
	return p.words
}

// bits extracts width bits of v starting at bit offset.
func bits(v uint64, offset, width uint) uint32 {
	return uint32((v >> offset) & (1<<width - 1))
}

// flag reports whether bit offset of v is set.
func flag(v uint64, offset uint) bool {
	return (v>>offset)&1 != 0
}

// signExtend interprets the low width bits of v as a two's complement value.
func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

// put stores the low width bits of value at bit offset of v.
func put(v *uint64, offset, width uint, value uint32) {
	mask := uint64(1<<width-1) << offset
	*v = (*v &^ mask) | (uint64(value)<<offset)&mask
}

// putFlag stores a single bit at offset of v.
func putFlag(v *uint64, offset uint, set bool) {
	if set {
		put(v, offset, 1, 1)
	} else {
		put(v, offset, 1, 0)
	}
}
