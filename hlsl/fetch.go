// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/ucode"
)

// giSamplerIndex is the fetch constant of the global illumination sampler,
// which gets a bicubic path behind a spec constant.
const giSamplerIndex = 10

// fetchDest renders the destination components a fetch writes, or the
// source components they read when source is set.
func fetchDest(dstSwizzle uint32, source bool) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		sel := ucode.DestSwizzleAt(dstSwizzle, i)
		if !sel.IsComponent() {
			continue
		}
		if source {
			b.WriteByte(swizzles[sel])
		} else {
			b.WriteByte(swizzles[i])
		}
	}
	return b.String()
}

// writeFetchConstants writes the zero and one selectors of a fetch.
func (w *Writer) writeFetchConstants(dst, dstSwizzle uint32) {
	for i := 0; i < 4; i++ {
		switch ucode.DestSwizzleAt(dstSwizzle, i) {
		case ucode.DestZero:
			w.writeLine("r%d.%c = 0.0;", dst, swizzles[i])
		case ucode.DestOne:
			w.writeLine("r%d.%c = 1.0;", dst, swizzles[i])
		}
	}
}

// writeFetch dispatches a fetch slot.
func (w *Writer) writeFetch(f ucode.Fetch) error {
	switch f := f.(type) {
	case ucode.VertexFetch:
		return w.writeVertexFetch(f)
	case ucode.TextureFetch:
		if !f.Opcode.Valid() {
			return NewErrorAt(ErrUnsupportedOpcode, w.slot, "fetch opcode %d", f.Opcode)
		}
		if f.Opcode != ucode.FetchTexture && f.Opcode != ucode.FetchGetTextureWeights {
			return nil
		}
		if f.ConstIndex == giSamplerIndex && f.Dimension == ucode.Texture2D && w.options.Fixups.Has(FixupBicubicGI) {
			w.specConstants |= SpecBicubicGIFilter
			w.openBlock("if (g_SpecConstants() & SPEC_CONSTANT_BICUBIC_GI_FILTER)")
			if err := w.writeTextureFetch(f, true); err != nil {
				return err
			}
			w.closeBlock()
			w.openBlock("else")
			if err := w.writeTextureFetch(f, false); err != nil {
				return err
			}
			w.closeBlock()
			return nil
		}
		return w.writeTextureFetch(f, false)
	}
	return NewErrorAt(ErrInternalError, w.slot, "unknown fetch record %T", f)
}

// writeVertexFetch reads the vertex element bound to the current slot.
func (w *Writer) writeVertexFetch(f ucode.VertexFetch) error {
	e, ok := w.elements[w.slot]
	if !ok {
		return NewErrorAt(ErrUnresolvedReference, w.slot, "no vertex element at address %d", w.slot)
	}

	if f.IsPredicated {
		w.openPredicate(f.PredicateCondition)
	}

	if dst := fetchDest(f.DstSwizzle, false); dst != "" {
		input := "i" + variable(e.Usage, e.UsageIndex)
		switch e.Usage {
		case container.UsageNormal, container.UsageTangent, container.UsageBinormal:
			w.specConstants |= SpecR11G11B10Normal
			input = "tfetchR11G11B10(" + input + ")"
		case container.UsageTexCoord:
			w.specConstants |= SpecSwappedTexcoords
			input = "tfetchTexcoord(g_SwappedTexcoords, " + input + ", " + itoa(e.UsageIndex) + ")"
		}
		w.writeLine("r%d.%s = %s.%s;", f.DstRegister, dst, input, fetchDest(f.DstSwizzle, true))
	}
	w.writeFetchConstants(f.DstRegister, f.DstSwizzle)

	if f.IsPredicated {
		w.closeBlock()
	}
	return nil
}

// textureSource renders the coordinate register read by a texture fetch.
func textureSource(f ucode.TextureFetch, components int) string {
	var b strings.Builder
	b.WriteString("r")
	b.WriteString(itoa(f.SrcRegister))
	b.WriteByte('.')
	for i := 0; i < components; i++ {
		b.WriteByte(swizzles[(f.SrcSwizzle>>(2*uint(i)))&3])
	}
	return b.String()
}

func formatOffset(v int32) string {
	return strconv.FormatFloat(float64(float32(v)*0.5), 'g', -1, 32)
}

// useSampler records name in first-use order.
func (w *Writer) useSampler(name string) {
	for _, s := range w.usedSamplers {
		if s == name {
			return
		}
	}
	w.usedSamplers = append(w.usedSamplers, name)
}

// writeTextureFetch samples or reads filter weights from a texture.
func (w *Writer) writeTextureFetch(f ucode.TextureFetch, bicubic bool) error {
	sampler, ok := w.samplers[f.ConstIndex]
	if !ok {
		return NewErrorAt(ErrUnresolvedReference, w.slot, "no sampler bound to fetch constant %d", f.ConstIndex)
	}
	w.useSampler(sampler)

	if f.IsPredicated {
		w.openPredicate(f.PredicateCondition)
	}

	// 1D fetches read a 2D descriptor.
	descriptor := f.Dimension.String()
	if f.Dimension == ucode.Texture1D {
		descriptor = ucode.Texture2D.String()
	}

	if w.trackPixelCoord && f.ConstIndex == 0 && f.Dimension == ucode.Texture2D {
		w.writeLine("pixelCoord = getPixelCoord(%s_Texture2DDescriptorIndex, %s);", sampler, textureSource(f, 2))
	}

	if dst := fetchDest(f.DstSwizzle, false); dst != "" {
		var b strings.Builder
		if f.Opcode == ucode.FetchTexture {
			if w.invertZBuffer && sampler == zBufferSamplerName {
				b.WriteString("1.0 - ")
			}
			b.WriteString("tfetch")
		} else {
			b.WriteString("getWeights")
		}
		b.WriteString(f.Dimension.String())
		if bicubic {
			b.WriteString("Bicubic")
		}
		b.WriteString("(" + sampler + "_Texture" + descriptor + "DescriptorIndex, " + sampler + "_SamplerDescriptorIndex, ")
		b.WriteString(textureSource(f, f.Dimension.Components()))
		switch f.Dimension {
		case ucode.Texture2D:
			b.WriteString(", float2(" + formatOffset(f.OffsetX) + ", " + formatOffset(f.OffsetY) + ")")
		case ucode.TextureCube:
			b.WriteString(", cubeMapData")
		}
		b.WriteString(").")
		b.WriteString(fetchDest(f.DstSwizzle, true))

		w.writeLine("r%d.%s = %s;", f.DstRegister, dst, b.String())
	}
	w.writeFetchConstants(f.DstRegister, f.DstSwizzle)

	if f.IsPredicated {
		w.closeBlock()
	}
	return nil
}
