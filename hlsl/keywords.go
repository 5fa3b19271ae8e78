// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"
)

// UnnamedIdentifier replaces constant names that are empty.
const UnnamedIdentifier = "_unnamed"

// hlslKeywords are the HLSL and DXC keywords a constant name must not take.
var hlslKeywords = []string{
	"AppendStructuredBuffer", "asm", "BlendState", "break", "Buffer",
	"ByteAddressBuffer", "case", "cbuffer", "centroid", "class", "column_major",
	"compile", "const", "ConstantBuffer", "ConsumeStructuredBuffer", "continue",
	"default", "DepthStencilState", "discard", "do", "else", "enum", "export",
	"extern", "false", "for", "fxgroup", "globallycoherent", "groupshared",
	"if", "in", "inline", "inout", "InputPatch", "interface", "line", "lineadj",
	"linear", "LineStream", "matrix", "namespace", "nointerpolation",
	"noperspective", "NULL", "operator", "out", "OutputPatch", "packoffset",
	"pass", "point", "PointStream", "precise", "RasterizerState", "register",
	"return", "row_major", "RWBuffer", "RWByteAddressBuffer",
	"RWStructuredBuffer", "RWTexture1D", "RWTexture2D", "RWTexture3D", "sample",
	"sampler", "SamplerComparisonState", "SamplerState", "shared", "snorm",
	"static", "string", "struct", "StructuredBuffer", "switch", "tbuffer",
	"technique", "template", "texture", "Texture1D", "Texture1DArray",
	"Texture2D", "Texture2DArray", "Texture2DMS", "Texture3D", "TextureCube",
	"TextureCubeArray", "this", "triangle", "triangleadj", "TriangleStream",
	"true", "typedef", "typename", "uniform", "unorm", "unsigned", "using",
	"vector", "vertexfragment", "void", "volatile", "while",
}

// hlslIntrinsics are the intrinsic functions generated code calls, plus the
// common ones a constant name could shadow.
var hlslIntrinsics = []string{
	"abs", "all", "any", "asfloat", "asint", "asuint", "ceil", "clamp", "clip",
	"cos", "cross", "ddx", "ddy", "degrees", "determinant", "distance", "dot",
	"dst", "exp", "exp2", "floor", "fmod", "frac", "fwidth", "isinf", "isnan",
	"length", "lerp", "lit", "log", "log10", "log2", "max", "min", "mul",
	"normalize", "pow", "radians", "rcp", "reflect", "refract", "round",
	"rsqrt", "saturate", "select", "sign", "sin", "sincos", "smoothstep",
	"sqrt", "step", "tan", "transpose", "trunc",
}

// scalarTypes are the scalar types that also come in vector and matrix
// shorthands such as float4 and float4x4.
var scalarTypes = []string{
	"bool", "int", "uint", "dword", "half", "float", "double",
	"min16float", "min10float", "min16int", "min12int", "min16uint",
	"int16_t", "int32_t", "int64_t", "uint16_t", "uint32_t", "uint64_t",
	"float16_t", "float32_t", "float64_t",
}

// helperNames are identifiers the common header and the entry point define.
var helperNames = []string{
	"main", "cube", "max4", "tfetch1D", "tfetch2D", "tfetch3D", "tfetchCube",
	"tfetch2DBicubic", "getWeights1D", "getWeights2D", "getWeights3D",
	"getWeightsCube", "getWeights2DBicubic", "getPixelCoord", "computeMipLevel",
	"tfetchR11G11B10", "tfetchTexcoord", "textureSize2D", "textureSize3D",
	"CubeMapData", "PushConstants", "g_PushConstants", "g_Booleans",
	"g_SwappedTexcoords", "g_AlphaThreshold", "g_HalfPixelOffset",
	"g_SpecConstants", "g_SpecConstantValue", "g_Texture2DDescriptorHeap",
	"g_Texture3DDescriptorHeap", "g_TextureCubeDescriptorHeap",
	"g_SamplerDescriptorHeap", "VertexShaderConstants", "PixelShaderConstants",
	"SharedConstants", "a0", "aL", "p0", "ps", "pc", "iPos", "iFace", "oPos",
	"oC0", "oC1", "oC2", "oC3", "oDepth", "iVertexId", "iInstanceId",
	"pixelCoord", "cubeMapData", "iterationIndex", "mtxProjection",
	"mtxProjectionReverseZ",
}

var reservedNames = func() map[string]struct{} {
	names := make(map[string]struct{}, 1024)
	add := func(list ...string) {
		for _, name := range list {
			names[name] = struct{}{}
		}
	}
	add(hlslKeywords...)
	add(hlslIntrinsics...)
	add(helperNames...)

	for _, base := range scalarTypes {
		add(base)
		for r := 1; r <= 4; r++ {
			add(base + strconv.Itoa(r))
			for c := 1; c <= 4; c++ {
				add(base + strconv.Itoa(r) + "x" + strconv.Itoa(c))
			}
		}
	}

	// Registers the emitter declares by number.
	for i := 0; i < 512; i++ {
		add("c" + strconv.Itoa(i))
	}
	for i := 0; i < 32; i++ {
		add("r"+strconv.Itoa(i), "i"+strconv.Itoa(i))
	}
	return names
}()

// IsReserved reports whether name collides with an HLSL keyword, type,
// intrinsic, or an identifier generated shaders define.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// sanitize replaces characters that cannot appear in an identifier.
func sanitize(name string) string {
	valid := func(i int, c rune) bool {
		return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9'
	}
	clean := true
	for i, c := range name {
		if !valid(i, c) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}

	var b strings.Builder
	for i, c := range name {
		switch {
		case valid(i, c):
			b.WriteRune(c)
		case i == 0 && c >= '0' && c <= '9':
			b.WriteByte('_')
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Escape returns name as a usable HLSL identifier. Reserved names get a
// leading underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	name = sanitize(name)
	if IsReserved(name) {
		return "_" + name
	}
	return name
}
