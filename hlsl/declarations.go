// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/xenos/container"
)

// Constant names the fixups key on.
const (
	mtxProjectionName            = "g_MtxProjection"
	mtxPrevInvViewProjectionName = "g_MtxPrevInvViewProjection"
	instanceTypesName            = "g_InstanceTypes"
	indexCountName               = "g_IndexCount"
	zBufferSamplerName           = "sampZBuffer"
)

// Float4 register file sizes per stage.
const (
	pixelFloat4Registers  = 224
	vertexFloat4Registers = 256
)

// bindConstants assigns identifiers to the constant table and builds the
// register lookup maps. When two entries claim a register the first wins.
func (w *Writer) bindConstants() {
	for _, k := range w.c.Constants {
		name := w.names.call(k.Name)
		w.constantNames = append(w.constantNames, name)
		reg := uint32(k.RegisterIndex)

		switch k.RegisterSet {
		case container.RegisterFloat4:
			b := &constantBinding{constant: k, name: name}
			for j := uint32(0); j < uint32(k.RegisterCount); j++ {
				if _, ok := w.float4[reg+j]; !ok {
					w.float4[reg+j] = b
				}
			}
		case container.RegisterSampler:
			if _, ok := w.samplers[reg]; !ok {
				w.samplers[reg] = name
			}
		case container.RegisterBool:
			if _, ok := w.booleans[reg]; !ok {
				w.booleans[reg] = name
			}
		}
		w.detectFixup(k, name)
	}

	for _, d := range w.c.Definitions.Float4 {
		w.literals[d.Register] = true
	}
	for _, d := range w.c.Definitions.Int4 {
		w.integers[d.Register] = true
	}
	for _, e := range w.c.VertexElements {
		if _, ok := w.elements[e.Address]; !ok {
			w.elements[e.Address] = e
		}
	}
	if !w.pixel {
		for i, in := range w.c.Interpolators {
			if isInterpolator(in.Usage, in.UsageIndex) {
				w.interpolators[uint32(i)] = "o" + variable(in.Usage, in.UsageIndex)
			}
		}
	}
	w.trackPixelCoord = w.pixel && w.options.Fixups.Has(FixupPixelCoord)
}

func (w *Writer) detectFixup(k container.Constant, name string) {
	fixups := w.options.Fixups
	float4 := k.RegisterSet == container.RegisterFloat4

	if w.pixel {
		if k.Name == mtxPrevInvViewProjectionName && fixups.Has(FixupZBufferInversion) {
			w.invertZBuffer = true
		}
		return
	}

	switch k.Name {
	case mtxProjectionName:
		if float4 && k.RegisterCount >= 4 && fixups.Has(FixupReverseZ) {
			w.reverseZ = true
			w.projectionName = name
		}
	case instanceTypesName:
		w.instanceTypes = fixups.Has(FixupInstancing)
	case indexCountName:
		if float4 && fixups.Has(FixupInstancing) {
			w.indexCount = true
			w.indexCountName = name
		}
	}
}

func (w *Writer) stageName() string {
	if w.pixel {
		return "Pixel"
	}
	return "Vertex"
}

// arrayTail is the number of registers from the start of an array to the
// end of the stage's float4 register file.
func (w *Writer) arrayTail(k container.Constant) int {
	size := vertexFloat4Registers
	if w.pixel {
		size = pixelFloat4Registers
	}
	return max(size-int(k.RegisterIndex), int(k.RegisterCount))
}

// writeDeclarations emits the constant declarations for both dialects:
// raw buffer loads under __spirv__ and packed cbuffers otherwise.
func (w *Writer) writeDeclarations() {
	constants := w.c.Constants
	names := w.constantNames

	w.writeRaw("#ifdef __spirv__")
	w.writeRaw("")
	for i, k := range constants {
		switch k.RegisterSet {
		case container.RegisterFloat4:
			if k.IsArray() {
				w.writeRaw("#define %s(INDEX) select((INDEX) < %d, vk::RawBufferLoad<float4>(g_PushConstants.%sShaderConstants + (%d + clamp(INDEX, 0, %d)) * 16, 0x10), 0.0)",
					names[i], w.arrayTail(k), w.stageName(), k.RegisterIndex, k.RegisterCount-1)
			} else {
				w.writeRaw("#define %s vk::RawBufferLoad<float4>(g_PushConstants.%sShaderConstants + %d, 0x10)",
					names[i], w.stageName(), uint32(k.RegisterIndex)*16)
			}
		case container.RegisterSampler:
			for j, dim := range textureDimensions {
				w.writeRaw("#define %s_Texture%sDescriptorIndex vk::RawBufferLoad<uint>(g_PushConstants.SharedConstants + %d)",
					names[i], dim, j*64+int(k.RegisterIndex)*4)
			}
			w.writeRaw("#define %s_SamplerDescriptorIndex vk::RawBufferLoad<uint>(g_PushConstants.SharedConstants + %d)",
				names[i], len(textureDimensions)*64+int(k.RegisterIndex)*4)
		}
	}
	w.writeRaw("")
	w.writeRaw("#else")
	w.writeRaw("")

	buffer := 0
	if w.pixel {
		buffer = 1
	}
	w.openBlock("cbuffer %sShaderConstants : register(b%d, space4)", w.stageName(), buffer)
	for i, k := range constants {
		if k.RegisterSet != container.RegisterFloat4 {
			continue
		}
		if k.IsArray() {
			w.writeLine("float4 %s[%d] : packoffset(c%d);", names[i], k.RegisterCount, k.RegisterIndex)
			w.writeRaw("#define %[1]s(INDEX) select((INDEX) < %[2]d, %[1]s[clamp(INDEX, 0, %[3]d)], 0.0)",
				names[i], w.arrayTail(k), k.RegisterCount-1)
		} else {
			w.writeLine("float4 %s : packoffset(c%d);", names[i], k.RegisterIndex)
		}
	}
	w.closeStruct()

	w.openBlock("cbuffer SharedConstants : register(b2, space4)")
	for i, k := range constants {
		if k.RegisterSet != container.RegisterSampler {
			continue
		}
		reg := int(k.RegisterIndex)
		for j, dim := range textureDimensions {
			w.writeLine("uint %s_Texture%sDescriptorIndex : packoffset(c%d.%c);",
				names[i], dim, j*4+reg/4, swizzles[reg%4])
		}
		w.writeLine("uint %s_SamplerDescriptorIndex : packoffset(c%d.%c);",
			names[i], 4*len(textureDimensions)+reg/4, swizzles[reg%4])
	}
	w.writeLine("DEFINE_SHARED_CONSTANTS();")
	w.closeStruct()

	w.writeRaw("#endif")

	bias := uint32(0)
	if w.pixel {
		bias = 16
	}
	for i, k := range constants {
		if k.RegisterSet == container.RegisterBool {
			w.writeRaw("#define %s (1 << %d)", names[i], uint32(k.RegisterIndex)+bias)
		}
	}
	w.writeRaw("")
}

// closeStruct closes a cbuffer body.
func (w *Writer) closeStruct() {
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
}

// booleanMask renders the g_Booleans bit tested for boolean constant reg.
func (w *Writer) booleanMask(reg uint32) string {
	if name, ok := w.booleans[reg]; ok {
		return name
	}
	bias := uint32(0)
	if w.pixel {
		bias = 16
	}
	return "(1 << " + itoa(reg+bias) + ")"
}
