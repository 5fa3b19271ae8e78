// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/xenos/container"
)

// writeEntry emits the main signature. Pixel shaders read every
// interpolator; vertex shaders read their vertex elements and write every
// interpolator so the two stages always link.
func (w *Writer) writeEntry() {
	w.writeRaw("#ifndef __spirv__")
	if w.pixel {
		w.writeRaw(`[shader("pixel")]`)
	} else {
		w.writeRaw(`[shader("vertex")]`)
	}
	w.writeRaw("#endif")
	w.writeLine("void main(")
	w.pushIndent()

	var params []string
	if w.pixel {
		params = w.pixelParameters()
	} else {
		params = w.vertexParameters()
	}
	for i, p := range params {
		if i == len(params)-1 {
			w.writeLine("%s", p)
		} else {
			w.writeLine("%s,", p)
		}
	}
	if w.pixel {
		// iFace closes the list; its type differs per dialect.
		w.writeRaw("#ifdef __spirv__")
		w.writeLine("in bool iFace : SV_IsFrontFace")
		w.writeRaw("#else")
		w.writeLine("in uint iFace : SV_IsFrontFace")
		w.writeRaw("#endif")
	}

	w.popIndent()
	w.writeLine(")")
	w.writeLine("{")
	w.pushIndent()
}

func (w *Writer) pixelParameters() []string {
	params := []string{"in float4 iPos : SV_Position"}
	for _, k := range interpolators {
		params = append(params, "in float4 i"+variable(k.usage, k.index)+" : "+semantic(k.usage, k.index))
	}

	outputs := w.c.Outputs
	for i := 0; i < 4; i++ {
		if outputs.Has(container.OutputColor0 << i) {
			params = append(params, "out float4 oC"+string(rune('0'+i))+" : SV_Target"+string(rune('0'+i)))
		}
	}
	if outputs.Has(container.OutputDepth) {
		params = append(params, "out float oDepth : SV_Depth")
	}
	return params
}

func (w *Writer) vertexParameters() []string {
	var params []string
	for _, e := range w.c.VertexElements {
		typ := "float4"
		if e.Usage.Valid() {
			typ = usageTypes[e.Usage]
		}
		if w.instanceTypes && e.Usage == container.UsageTexCoord && e.UsageIndex == 2 {
			typ = "uint4"
		}
		if w.options.Fixups.Has(FixupInstancing) && e.Usage == container.UsagePosition && e.UsageIndex == 1 {
			typ = "uint4"
		}

		var p strings.Builder
		if loc, ok := usageLocations[usageKey{e.Usage, e.UsageIndex}]; ok {
			p.WriteString("[[vk::location(")
			p.WriteString(itoa(loc))
			p.WriteString(")]] ")
		}
		p.WriteString("in " + typ + " i" + variable(e.Usage, e.UsageIndex) + " : " + semantic(e.Usage, e.UsageIndex))
		params = append(params, p.String())
	}

	if w.indexCount {
		params = append(params,
			"in uint iVertexId : SV_VertexID",
			"in uint iInstanceId : SV_InstanceID",
		)
	}

	params = append(params, "out float4 oPos : SV_Position")
	for _, k := range interpolators {
		params = append(params, "out float4 o"+variable(k.usage, k.index)+" : "+semantic(k.usage, k.index))
	}
	return params
}

// writePrologue declares and initializes every register the body may touch.
func (w *Writer) writePrologue() {
	if w.reverseZ {
		w.specConstants |= SpecReverseZ
		p := w.projectionName
		w.writeLine("oPos = 0.0;")
		w.writeLine("float4x4 mtxProjection = float4x4(%[1]s(0), %[1]s(1), %[1]s(2), %[1]s(3));", p)
		w.writeLine("float4x4 mtxProjectionReverseZ = mul(mtxProjection, float4x4(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, -1, 0, 0, 0, 1, 1));")
		w.openBlock("[unroll] for (int iterationIndex = 0; iterationIndex < 2; iterationIndex++)")
	}

	defs := w.c.Definitions
	for _, d := range defs.Float4 {
		w.writeLine("float4 c%d = asfloat(uint4(0x%X, 0x%X, 0x%X, 0x%X));",
			d.Register, d.Bits[0], d.Bits[1], d.Bits[2], d.Bits[3])
	}
	for _, d := range defs.Int4 {
		w.writeLine("int4 i%d = int4(%d, %d, %d, %d);",
			d.Register, d.Values[0], d.Values[1], d.Values[2], d.Values[3])
	}
	if len(defs.Float4) > 0 || len(defs.Int4) > 0 {
		w.writeLine("")
	}

	if w.pixel {
		for _, in := range w.c.Interpolators {
			if in.Register >= tempRegisters || w.declared[in.Register] {
				continue
			}
			w.writeLine("float4 r%d = i%s;", in.Register, variable(in.Usage, in.UsageIndex))
			w.declared[in.Register] = true
		}
	} else {
		if !w.reverseZ {
			w.writeLine("oPos = 0.0;")
		}
		for _, k := range interpolators {
			w.writeLine("o%s = 0.0;", variable(k.usage, k.index))
		}
		w.writeLine("")
	}

	positionRegister := w.c.PixelPositionRegister()
	for i := uint32(0); i < tempRegisters; i++ {
		if w.declared[i] {
			continue
		}
		switch {
		case w.pixel && i == positionRegister:
			w.writeLine("float4 r%d = float4((iPos.xy - 0.5) * float2(iFace ? 1.0 : -1.0, 1.0), 0.0, 0.0);", i)
		case !w.pixel && w.indexCount && i == 0:
			w.writeLine("float4 r%d = float4(iVertexId + %s.x * iInstanceId, 0.0, 0.0, 0.0);", i, w.indexCountName)
		default:
			w.writeLine("float4 r%d = 0.0;", i)
		}
		w.declared[i] = true
	}

	w.writeLine("int a0 = 0;")
	w.writeLine("int aL = 0;")
	w.writeLine("bool p0 = false;")
	w.writeLine("float ps = 0.0;")
	if w.pixel && w.options.Fixups&(FixupPixelCoord|FixupAlphaToCoverage) != 0 {
		w.writeLine("float2 pixelCoord = 0.0;")
	}
	w.writeLine("CubeMapData cubeMapData = (CubeMapData)0;")
}
