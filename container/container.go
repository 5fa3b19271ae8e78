// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"errors"
	"fmt"
)

// ErrMalformed reports a buffer that is not a valid shader container.
var ErrMalformed = errors.New("malformed shader container")

// Signature is the value of the header flags with the stage bit masked off.
const (
	Signature     uint32 = 0x102A1100
	SignatureMask uint32 = 0xFFFFFF00
)

// HeaderSize is the size in bytes of the fixed container header.
const HeaderSize = 36

// Stage is the pipeline stage a shader runs in.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StagePixel
)

// String returns the HLSL stage name.
func (s Stage) String() string {
	if s == StagePixel {
		return "pixel"
	}
	return "vertex"
}

// Header is the fixed container header.
type Header struct {
	Flags                 uint32
	VirtualSize           uint32
	PhysicalSize          uint32
	FieldC                uint32
	ConstantTableOffset   uint32
	DefinitionTableOffset uint32
	ShaderOffset          uint32
	Field1C               uint32
	Field20               uint32
}

// HasSignature reports whether the flags carry the container signature.
func (h Header) HasSignature() bool {
	return h.Flags&SignatureMask == Signature
}

// Size returns the total container size in bytes.
func (h Header) Size() uint64 {
	return uint64(h.VirtualSize) + uint64(h.PhysicalSize)
}

func readHeader(r *reader) Header {
	return Header{
		Flags:                 r.u32(0),
		VirtualSize:           r.u32(4),
		PhysicalSize:          r.u32(8),
		FieldC:                r.u32(12),
		ConstantTableOffset:   r.u32(16),
		DefinitionTableOffset: r.u32(20),
		ShaderOffset:          r.u32(24),
		Field1C:               r.u32(28),
		Field20:               r.u32(32),
	}
}

// Container is a parsed shader container.
type Container struct {
	Header Header

	// Constants lists the constant table entries in table order.
	Constants []Constant

	// Definitions holds literal constant values baked in at compile time.
	Definitions Definitions

	// Shader is the stage header.
	Shader ShaderHeader

	// Outputs is the pixel shader output mask. Zero for vertex shaders.
	Outputs PixelOutputs

	// VertexElements lists the vertex shader inputs.
	VertexElements []VertexElement

	// Interpolators lists the pixel shader inputs or vertex shader outputs.
	Interpolators []Interpolator

	// Code is the microcode, from the shader's physical offset to the end
	// of the data region.
	Code []byte

	data []byte
}

// Parse validates data and returns a read-only view of the container it
// starts with. Bytes past the container's own size are ignored.
func Parse(data []byte) (*Container, error) {
	r := &reader{data: data}

	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}

	h := readHeader(r)
	if !h.HasSignature() {
		return nil, fmt.Errorf("%w: bad signature in flags %#08x", ErrMalformed, h.Flags)
	}
	if h.ConstantTableOffset == 0 {
		return nil, fmt.Errorf("%w: missing constant table", ErrMalformed)
	}
	if h.Size() > uint64(len(data)) {
		return nil, fmt.Errorf("%w: container of %d bytes truncated to %d", ErrMalformed, h.Size(), len(data))
	}

	c := &Container{
		Header: h,
		data:   data[:h.Size()],
	}
	r.data = c.data

	c.Constants = readConstants(r, h.ConstantTableOffset)
	c.Shader = readShaderHeader(r, h.ShaderOffset)

	if c.IsPixelShader() {
		c.Outputs, c.Interpolators = readPixelStage(r, h.ShaderOffset, c.Shader)
	} else {
		c.VertexElements, c.Interpolators = readVertexStage(r, h.ShaderOffset, c.Shader)
	}

	if h.DefinitionTableOffset != 0 {
		c.Definitions = readDefinitions(r, h, c.IsPixelShader())
	}

	codeStart := uint64(h.VirtualSize) + uint64(c.Shader.PhysicalOffset)
	if codeStart > h.Size() {
		r.malformed("code offset %#x past end of container", codeStart)
	}
	if r.err != nil {
		return nil, r.err
	}
	c.Code = c.data[codeStart:]

	return c, nil
}

// Bytes returns the container's bytes.
func (c *Container) Bytes() []byte {
	return c.data
}

// Size returns the container size in bytes.
func (c *Container) Size() uint32 {
	return uint32(c.Header.Size())
}

// IsPixelShader reports whether the container holds a pixel shader.
func (c *Container) IsPixelShader() bool {
	return c.Header.Flags&1 == 0
}

// Stage returns the shader stage.
func (c *Container) Stage() Stage {
	if c.IsPixelShader() {
		return StagePixel
	}
	return StageVertex
}

// PixelPositionRegister returns the temporary register that receives the
// fragment position in a pixel shader.
func (c *Container) PixelPositionRegister() uint32 {
	return (c.Shader.FieldC >> 8) & 0xFF
}
