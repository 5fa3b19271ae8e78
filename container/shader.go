// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

// DeclUsage is the semantic of a vertex element or interpolator.
type DeclUsage uint8

// Declaration usages.
const (
	UsagePosition DeclUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePointSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

var usageNames = [...]string{
	UsagePosition:     "Position",
	UsageBlendWeight:  "BlendWeight",
	UsageBlendIndices: "BlendIndices",
	UsageNormal:       "Normal",
	UsagePointSize:    "PointSize",
	UsageTexCoord:     "TexCoord",
	UsageTangent:      "Tangent",
	UsageBinormal:     "Binormal",
	UsageTessFactor:   "TessFactor",
	UsagePositionT:    "PositionT",
	UsageColor:        "Color",
	UsageFog:          "Fog",
	UsageDepth:        "Depth",
	UsageSample:       "Sample",
}

// String returns the usage name used to build variable names.
func (u DeclUsage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return "Unknown"
}

// Valid reports whether u is a known usage.
func (u DeclUsage) Valid() bool {
	return int(u) < len(usageNames)
}

// VertexElement binds a vertex fetch instruction to an input semantic.
type VertexElement struct {
	// Address is the slot index of the vertex fetch that reads the element.
	Address    uint32
	Usage      DeclUsage
	UsageIndex uint32
}

// DecodeVertexElement unpacks a vertex element word.
func DecodeVertexElement(v uint32) VertexElement {
	return VertexElement{
		Address:    v & 0xFFF,
		Usage:      DeclUsage((v >> 12) & 0xF),
		UsageIndex: (v >> 16) & 0xF,
	}
}

// Encode packs the vertex element into a word.
func (e VertexElement) Encode() uint32 {
	return e.Address&0xFFF | uint32(e.Usage&0xF)<<12 | (e.UsageIndex&0xF)<<16
}

// Interpolator binds a temporary register to a varying semantic.
type Interpolator struct {
	UsageIndex uint32
	Usage      DeclUsage
	Register   uint32
}

// DecodeInterpolator unpacks an interpolator word.
func DecodeInterpolator(v uint32) Interpolator {
	return Interpolator{
		UsageIndex: v & 0xF,
		Usage:      DeclUsage((v >> 4) & 0xF),
		Register:   (v >> 8) & 0xF,
	}
}

// Encode packs the interpolator into a word.
func (i Interpolator) Encode() uint32 {
	return i.UsageIndex&0xF | uint32(i.Usage&0xF)<<4 | (i.Register&0xF)<<8
}

// PixelOutputs is the set of render targets a pixel shader writes.
type PixelOutputs uint32

// Pixel shader outputs.
const (
	OutputColor0 PixelOutputs = 1 << iota
	OutputColor1
	OutputColor2
	OutputColor3
	OutputDepth
)

// Has reports whether o contains all outputs of mask.
func (o PixelOutputs) Has(mask PixelOutputs) bool {
	return o&mask == mask
}

// ShaderHeader is the common part of the stage header.
type ShaderHeader struct {
	// PhysicalOffset is the code offset within the data region.
	PhysicalOffset uint32
	// Size bounds the control-flow scan in bytes.
	Size             uint32
	Field8           uint32
	FieldC           uint32
	Field10          uint32
	InterpolatorInfo uint32
	Field18          uint32
}

// InterpolatorCount returns the number of interpolator records.
func (s ShaderHeader) InterpolatorCount() uint32 {
	return (s.InterpolatorInfo >> 5) & 0x1F
}

const (
	stageArrayOffset = 36

	// maxVertexElements bounds the element count before allocation.
	maxVertexElements = 1 << 12
)

func readShaderHeader(r *reader, off uint32) ShaderHeader {
	return ShaderHeader{
		PhysicalOffset:   r.u32(off),
		Size:             r.u32(off + 4),
		Field8:           r.u32(off + 8),
		FieldC:           r.u32(off + 12),
		Field10:          r.u32(off + 16),
		InterpolatorInfo: r.u32(off + 20),
		Field18:          r.u32(off + 24),
	}
}

func readPixelStage(r *reader, off uint32, s ShaderHeader) (PixelOutputs, []Interpolator) {
	outputs := PixelOutputs(r.u32(off + 32))

	n := s.InterpolatorCount()
	interpolators := make([]Interpolator, 0, n)
	for i := uint32(0); i < n; i++ {
		interpolators = append(interpolators, DecodeInterpolator(r.u32(off+stageArrayOffset+i*4)))
	}
	return outputs, interpolators
}

func readVertexStage(r *reader, off uint32, s ShaderHeader) ([]VertexElement, []Interpolator) {
	first := s.Field18
	count := r.u32(off + 28)
	if r.err != nil {
		return nil, nil
	}
	if count > maxVertexElements || first > maxVertexElements {
		r.malformed("vertex element range [%d, +%d) out of bounds", first, count)
		return nil, nil
	}

	at := func(i uint32) uint32 {
		return r.u32(off + stageArrayOffset + (first+i)*4)
	}

	elements := make([]VertexElement, 0, count)
	for i := uint32(0); i < count; i++ {
		elements = append(elements, DecodeVertexElement(at(i)))
	}

	n := s.InterpolatorCount()
	interpolators := make([]Interpolator, 0, n)
	for i := uint32(0); i < n; i++ {
		interpolators = append(interpolators, DecodeInterpolator(at(count+i)))
	}
	return elements, interpolators
}
