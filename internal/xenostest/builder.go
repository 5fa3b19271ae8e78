// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package xenostest builds synthetic shader containers for tests.
package xenostest

import (
	"encoding/binary"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/ucode"
)

// Float4Literal is a run of literal float4 registers starting at Register.
type Float4Literal struct {
	Register uint32
	Bits     [][4]uint32
}

// Int4Literal is a run of literal int4 registers starting at Register.
type Int4Literal struct {
	Register uint32
	Values   [][4]int8
}

// Builder describes a container to serialize. The zero value is a vertex
// shader with no constants and no code.
type Builder struct {
	Pixel bool

	Constants []container.Constant
	Float4    []Float4Literal
	Int4      []Int4Literal

	// Outputs is written for pixel shaders.
	Outputs container.PixelOutputs
	// PixelPositionRegister is stored in the stage header's fieldC.
	PixelPositionRegister uint32

	VertexElements []container.VertexElement
	Interpolators  []container.Interpolator

	Code []ucode.Slot
	// Size overrides the stage header size field. Zero means the code size.
	Size uint32
}

type buffer struct {
	b []byte
}

func (w *buffer) u32(v uint32) {
	w.b = binary.BigEndian.AppendUint32(w.b, v)
}

func (w *buffer) u16(v uint16) {
	w.b = binary.BigEndian.AppendUint16(w.b, v)
}

func (w *buffer) align4() {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
}

func (w *buffer) setU32(off int, v uint32) {
	binary.BigEndian.PutUint32(w.b[off:], v)
}

// Bytes serializes the container.
func (b *Builder) Bytes() []byte {
	w := &buffer{b: make([]byte, container.HeaderSize)}

	// Data region: literal float values, then code.
	var data buffer
	var float4Offsets []uint32
	for _, lit := range b.Float4 {
		float4Offsets = append(float4Offsets, uint32(len(data.b)))
		for _, reg := range lit.Bits {
			for _, v := range reg {
				data.u32(v)
			}
		}
	}
	codeOffset := uint32(len(data.b))
	for _, s := range b.Code {
		data.u32(s[0])
		data.u32(s[1])
		data.u32(s[2])
	}

	cto := uint32(len(w.b))
	b.writeConstantTable(w)

	var dto uint32
	if len(b.Float4) > 0 || len(b.Int4) > 0 {
		dto = uint32(len(w.b))
		b.writeDefinitions(w, float4Offsets)
	}

	so := uint32(len(w.b))
	b.writeShaderHeader(w, codeOffset)

	virtualSize := uint32(len(w.b))
	w.b = append(w.b, data.b...)

	flags := container.Signature
	if !b.Pixel {
		flags |= 1
	}
	header := []uint32{flags, virtualSize, uint32(len(data.b)), 0, cto, dto, so, 0, 0}
	for i, v := range header {
		w.setU32(i*4, v)
	}
	return w.b
}

func (b *Builder) writeConstantTable(w *buffer) {
	sizeAt := len(w.b)
	w.u32(0)

	base := len(w.b)
	const tableHeader = 28
	const entrySize = 20
	w.u32(0) // size
	w.u32(0) // creator
	w.u32(0) // version
	w.u32(uint32(len(b.Constants)))
	w.u32(tableHeader)
	w.u32(0) // flags
	w.u32(0) // target

	namesAt := tableHeader + entrySize*len(b.Constants)
	nameOffsets := make([]uint32, len(b.Constants))
	for i, c := range b.Constants {
		nameOffsets[i] = uint32(namesAt)
		namesAt += len(c.Name) + 1
	}

	for i, c := range b.Constants {
		w.u32(nameOffsets[i])
		w.u16(uint16(c.RegisterSet))
		w.u16(c.RegisterIndex)
		w.u16(c.RegisterCount)
		w.u16(0)
		w.u32(c.TypeInfo)
		w.u32(c.DefaultValue)
	}
	for _, c := range b.Constants {
		w.b = append(w.b, c.Name...)
		w.b = append(w.b, 0)
	}
	w.align4()

	w.setU32(base, uint32(len(w.b)-base))
	w.setU32(sizeAt, uint32(len(w.b)-base))
}

func (b *Builder) writeDefinitions(w *buffer, float4Offsets []uint32) {
	for i := 0; i < 5; i++ {
		w.u32(0)
	}

	bias := uint32(0)
	if b.Pixel {
		bias = 256
	}
	for i, lit := range b.Float4 {
		w.u32((lit.Register+bias)<<16 | uint32(len(lit.Bits)*4))
		w.u32(float4Offsets[i])
	}
	w.u32(0)

	for _, lit := range b.Int4 {
		w.u32((8992+lit.Register*4)<<16 | uint32(len(lit.Values)))
		w.u32(0)
		for _, v := range lit.Values {
			w.u32(uint32(uint8(v[0])) | uint32(uint8(v[1]))<<8 | uint32(uint8(v[2]))<<16 | uint32(uint8(v[3]))<<24)
		}
	}
	w.u32(0)
}

func (b *Builder) writeShaderHeader(w *buffer, codeOffset uint32) {
	size := b.Size
	if size == 0 {
		size = uint32(len(b.Code)) * ucode.SlotSize
	}

	w.u32(codeOffset)
	w.u32(size)
	w.u32(0)
	w.u32((b.PixelPositionRegister & 0xFF) << 8)
	w.u32(0)
	w.u32(uint32(len(b.Interpolators)&0x1F) << 5)

	if b.Pixel {
		w.u32(0)
		w.u32(0)
		w.u32(uint32(b.Outputs))
		for _, in := range b.Interpolators {
			w.u32(in.Encode())
		}
		return
	}

	w.u32(0) // first element index
	w.u32(uint32(len(b.VertexElements)))
	w.u32(0)
	for _, e := range b.VertexElements {
		w.u32(e.Encode())
	}
	for _, in := range b.Interpolators {
		w.u32(in.Encode())
	}
}
