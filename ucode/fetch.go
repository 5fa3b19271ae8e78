// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

// FetchOpcode selects the kind of a fetch instruction.
type FetchOpcode uint8

// Fetch opcodes.
const (
	FetchVertex                    FetchOpcode = 0
	FetchTexture                   FetchOpcode = 1
	FetchGetTextureBorderColorFrac FetchOpcode = 16
	FetchGetTextureComputedLod     FetchOpcode = 17
	FetchGetTextureGradients       FetchOpcode = 18
	FetchGetTextureWeights         FetchOpcode = 19
	FetchSetTextureLod             FetchOpcode = 24
	FetchSetTextureGradientsHorz   FetchOpcode = 25
	FetchSetTextureGradientsVert   FetchOpcode = 26
)

// String returns the opcode mnemonic.
func (op FetchOpcode) String() string {
	switch op {
	case FetchVertex:
		return "vfetch"
	case FetchTexture:
		return "tfetch"
	case FetchGetTextureBorderColorFrac:
		return "getBCF"
	case FetchGetTextureComputedLod:
		return "getCompTexLOD"
	case FetchGetTextureGradients:
		return "getGradients"
	case FetchGetTextureWeights:
		return "getWeights"
	case FetchSetTextureLod:
		return "setTexLOD"
	case FetchSetTextureGradientsHorz:
		return "setGradientH"
	case FetchSetTextureGradientsVert:
		return "setGradientV"
	default:
		return "unknown"
	}
}

// Valid reports whether op is part of the documented enumeration.
func (op FetchOpcode) Valid() bool {
	return op.String() != "unknown"
}

// TextureDimension is the dimensionality of a texture fetch.
type TextureDimension uint8

// Texture dimensions.
const (
	Texture1D TextureDimension = iota
	Texture2D
	Texture3D
	TextureCube
)

// String returns the HLSL suffix used for the dimension.
func (d TextureDimension) String() string {
	switch d {
	case Texture1D:
		return "1D"
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	default:
		return "Cube"
	}
}

// Components returns the number of coordinate components the dimension reads.
func (d TextureDimension) Components() int {
	switch d {
	case Texture1D:
		return 1
	case Texture2D:
		return 2
	default:
		return 3
	}
}

// DestSwizzle is the 3-bit per-component destination selector of a fetch.
type DestSwizzle uint8

// Destination selectors.
const (
	DestX DestSwizzle = iota
	DestY
	DestZ
	DestW
	DestZero
	DestOne
	destReserved
	DestKeep
)

// DestSwizzleAt returns the selector for destination component i.
func DestSwizzleAt(dstSwizzle uint32, i int) DestSwizzle {
	return DestSwizzle((dstSwizzle >> (uint(i) * 3)) & 0x7)
}

// IsComponent reports whether the selector copies a fetched component.
func (s DestSwizzle) IsComponent() bool {
	return s <= DestW
}

// Fetch is either a VertexFetch or a TextureFetch.
type Fetch interface {
	Body
	FetchOpcode() FetchOpcode
}

// VertexFetch reads a vertex element into a temporary register.
type VertexFetch struct {
	Opcode           FetchOpcode
	SrcRegister      uint32
	SrcRegisterAm    bool
	DstRegister      uint32
	DstRegisterAm    bool
	MustBeOne        bool
	ConstIndex       uint32
	ConstIndexSelect uint32
	PrefetchCount    uint32
	SrcSwizzle       uint32

	DstSwizzle         uint32
	FormatCompAll      bool
	NumFormatAll       bool
	SignedRfModeAll    bool
	IsIndexRounded     bool
	Format             uint32
	ExpAdjust          int32
	IsMiniFetch        bool
	IsPredicated       bool
	Stride             uint32
	Offset             int32
	PredicateCondition bool
}

func (VertexFetch) bodyKind() {}

// FetchOpcode implements Fetch.
func (f VertexFetch) FetchOpcode() FetchOpcode { return f.Opcode }

// TextureFetch samples a texture into a temporary register.
type TextureFetch struct {
	Opcode          FetchOpcode
	SrcRegister     uint32
	SrcRegisterAm   bool
	DstRegister     uint32
	DstRegisterAm   bool
	FetchValidOnly  bool
	ConstIndex      uint32
	TexCoordDenorm  bool
	SrcSwizzle      uint32
	DstSwizzle      uint32
	MagFilter       uint32
	MinFilter       uint32
	MipFilter       uint32
	AnisoFilter     uint32
	ArbitraryFilter uint32
	VolMagFilter    uint32
	VolMinFilter    uint32
	UseCompLod      bool
	UseRegLod       bool
	IsPredicated    bool

	UseRegGradients    bool
	SampleLocation     bool
	LodBias            int32
	Dimension          TextureDimension
	OffsetX            int32
	OffsetY            int32
	OffsetZ            int32
	PredicateCondition bool
}

func (TextureFetch) bodyKind() {}

// FetchOpcode implements Fetch.
func (f TextureFetch) FetchOpcode() FetchOpcode { return f.Opcode }

// DecodeFetch decodes a fetch slot, choosing the record by opcode.
func DecodeFetch(s Slot) Fetch {
	if FetchOpcode(s[0]&0x1F) == FetchVertex {
		return DecodeVertexFetch(s)
	}
	return DecodeTextureFetch(s)
}

// DecodeVertexFetch decodes a slot as a vertex fetch.
func DecodeVertexFetch(s Slot) VertexFetch {
	w0, w1, w2 := uint64(s[0]), uint64(s[1]), uint64(s[2])
	return VertexFetch{
		Opcode:           FetchOpcode(bits(w0, 0, 5)),
		SrcRegister:      bits(w0, 5, 6),
		SrcRegisterAm:    flag(w0, 11),
		DstRegister:      bits(w0, 12, 6),
		DstRegisterAm:    flag(w0, 18),
		MustBeOne:        flag(w0, 19),
		ConstIndex:       bits(w0, 20, 5),
		ConstIndexSelect: bits(w0, 25, 2),
		PrefetchCount:    bits(w0, 27, 3),
		SrcSwizzle:       bits(w0, 30, 2),

		DstSwizzle:      bits(w1, 0, 12),
		FormatCompAll:   flag(w1, 12),
		NumFormatAll:    flag(w1, 13),
		SignedRfModeAll: flag(w1, 14),
		IsIndexRounded:  flag(w1, 15),
		Format:          bits(w1, 16, 6),
		ExpAdjust:       signExtend(bits(w1, 24, 6), 6),
		IsMiniFetch:     flag(w1, 30),
		IsPredicated:    flag(w1, 31),

		Stride:             bits(w2, 0, 8),
		Offset:             signExtend(bits(w2, 8, 23), 23),
		PredicateCondition: flag(w2, 31),
	}
}

// DecodeTextureFetch decodes a slot as a texture fetch.
func DecodeTextureFetch(s Slot) TextureFetch {
	w0, w1, w2 := uint64(s[0]), uint64(s[1]), uint64(s[2])
	return TextureFetch{
		Opcode:         FetchOpcode(bits(w0, 0, 5)),
		SrcRegister:    bits(w0, 5, 6),
		SrcRegisterAm:  flag(w0, 11),
		DstRegister:    bits(w0, 12, 6),
		DstRegisterAm:  flag(w0, 18),
		FetchValidOnly: flag(w0, 19),
		ConstIndex:     bits(w0, 20, 5),
		TexCoordDenorm: flag(w0, 25),
		SrcSwizzle:     bits(w0, 26, 6),

		DstSwizzle:      bits(w1, 0, 12),
		MagFilter:       bits(w1, 12, 2),
		MinFilter:       bits(w1, 14, 2),
		MipFilter:       bits(w1, 16, 2),
		AnisoFilter:     bits(w1, 18, 3),
		ArbitraryFilter: bits(w1, 21, 3),
		VolMagFilter:    bits(w1, 24, 2),
		VolMinFilter:    bits(w1, 26, 2),
		UseCompLod:      flag(w1, 28),
		UseRegLod:       flag(w1, 29),
		IsPredicated:    flag(w1, 31),

		UseRegGradients:    flag(w2, 0),
		SampleLocation:     flag(w2, 1),
		LodBias:            signExtend(bits(w2, 2, 7), 7),
		Dimension:          TextureDimension(bits(w2, 14, 2)),
		OffsetX:            signExtend(bits(w2, 16, 5), 5),
		OffsetY:            signExtend(bits(w2, 21, 5), 5),
		OffsetZ:            signExtend(bits(w2, 26, 5), 5),
		PredicateCondition: flag(w2, 31),
	}
}

// Body is the payload of one body slot: ALU, VertexFetch or TextureFetch.
type Body interface {
	bodyKind()
}

// DecodeBody decodes a body slot, using isFetch from the owning Exec's
// sequence field to tell fetches from ALU instructions.
func DecodeBody(s Slot, isFetch bool) Body {
	if isFetch {
		return DecodeFetch(s)
	}
	return DecodeALU(s)
}
