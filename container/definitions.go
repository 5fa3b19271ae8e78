// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

// Definitions holds the literal constant values of a shader, one entry per
// register.
type Definitions struct {
	Float4 []Float4Definition
	Int4   []Int4Definition
}

// Float4Definition is a literal float4 register as raw IEEE-754 bits.
type Float4Definition struct {
	Register uint32
	Bits     [4]uint32
}

// Int4Definition is a literal int4 register.
type Int4Definition struct {
	Register uint32
	Values   [4]int8
}

const (
	definitionHeaderSize = 20

	// pixelFloat4Bias is subtracted from float4 definition registers of
	// pixel shaders, whose constant file starts at 256.
	pixelFloat4Bias = 256

	// int4Base is the register index of i0 in definition records.
	int4Base = 8992
)

// readDefinitions reads the float4 run and then the int4 run of the
// definition table. Each run ends with a zero word.
func readDefinitions(r *reader, h Header, pixel bool) Definitions {
	var defs Definitions
	off := h.DefinitionTableOffset + definitionHeaderSize

	for r.err == nil {
		word := r.u32(off)
		if word == 0 {
			break
		}
		regIndex, count := word>>16, word&0xFFFF
		physical := r.u32(off + 4)

		if pixel && regIndex < pixelFloat4Bias {
			r.malformed("pixel float4 definition at register %d", regIndex)
			break
		}
		if pixel {
			regIndex -= pixelFloat4Bias
		}

		value := h.VirtualSize + physical
		for i := uint32(0); i < (count+3)/4 && r.err == nil; i++ {
			d := Float4Definition{Register: regIndex + i}
			for j := range d.Bits {
				d.Bits[j] = r.u32(value + uint32(j)*4)
			}
			defs.Float4 = append(defs.Float4, d)
			value += 16
		}
		off += 8
	}
	off += 4

	for r.err == nil {
		word := r.u32(off)
		if word == 0 {
			break
		}
		regIndex, count := word>>16, word&0xFFFF
		if regIndex < int4Base {
			r.malformed("int4 definition at register %d", regIndex)
			break
		}

		for i := uint32(0); i < count && r.err == nil; i++ {
			v := r.u32(off + 8 + i*4)
			defs.Int4 = append(defs.Int4, Int4Definition{
				Register: (regIndex-int4Base)/4 + i,
				Values:   [4]int8{int8(v), int8(v >> 8), int8(v >> 16), int8(v >> 24)},
			})
		}
		off += 8 + count*4
	}

	return defs
}
