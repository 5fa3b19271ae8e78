// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

import (
	"encoding/binary"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgramBigEndian(t *testing.T) {
	code := make([]byte, 26) // two trailing bytes are ignored
	binary.BigEndian.PutUint32(code[0:], 0x01020304)
	binary.BigEndian.PutUint32(code[4:], 0xAABBCCDD)
	binary.BigEndian.PutUint32(code[8:], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(code[12:], 7)

	p := NewProgram(code)
	require.Len(t, p.Words(), 6)
	assert.Equal(t, uint32(2), p.Len())
	assert.Equal(t, uint32(24), p.ByteLen())

	s, ok := p.Slot(0)
	require.True(t, ok)
	assert.Equal(t, Slot{0x01020304, 0xAABBCCDD, 0xFFFFFFFF}, s)

	_, ok = p.Slot(2)
	assert.False(t, ok)
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		v     uint32
		width uint
		want  int32
	}{
		{0x0F, 5, 15},
		{0x10, 5, -16},
		{0x1F, 5, -1},
		{0x3F, 6, -1},
		{0x7FFFFF, 23, -1},
		{0x3FFFFF, 23, 0x3FFFFF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, signExtend(tt.v, tt.width), "v=%#x width=%d", tt.v, tt.width)
	}
}

func TestControlFlowPairLayout(t *testing.T) {
	first := ControlFlow{
		Opcode: CFExec,
		Kind: Exec{ExecBody: ExecBody{
			Address:  2,
			Count:    3,
			Sequence: 0b01_00_01,
		}},
	}
	second := ControlFlow{
		Opcode: CFCondJmp,
		Kind: CondJmp{
			Address:      5,
			IsPredicated: true,
			Direction:    true,
			BoolAddress:  9,
			Condition:    true,
		},
	}

	s := EncodeControlFlowPair(first, second)

	// The first instruction occupies w0 and the low half of w1.
	assert.Equal(t, uint32(2|3<<12|0b010001<<16), s[0])
	v0 := first.Encode()
	assert.Equal(t, uint32(v0>>32)&0xFFFF, s[1]&0xFFFF)

	pair := DecodeControlFlowPair(s)
	assert.Equal(t, first, pair[0])
	assert.Equal(t, second, pair[1])

	body, ok := pair[0].Body()
	require.True(t, ok)
	assert.True(t, body.IsFetch(0))
	assert.False(t, body.IsFetch(1))
	assert.True(t, body.IsFetch(2))

	_, ok = pair[1].Body()
	assert.False(t, ok)
}

func TestControlFlowRoundTrip(t *testing.T) {
	tests := []ControlFlow{
		{Opcode: CFNop, Kind: Nop{}},
		{Opcode: CFExecEnd, Kind: Exec{ExecBody: ExecBody{Address: 0xFFF, Count: 7, Sequence: 0xFFF, IsYield: true, VertexCache: 0x3F}, IsPredicateClean: true, AbsoluteAddressing: true}},
		{Opcode: CFCondExec, Kind: CondExec{ExecBody: ExecBody{Address: 4, Count: 1}, BoolAddress: 0xFF, Condition: true}},
		{Opcode: CFCondExecPredCleanEnd, Kind: CondExec{ExecBody: ExecBody{Address: 4, Count: 2}, BoolAddress: 3}},
		{Opcode: CFCondExecPredEnd, Kind: CondExecPred{ExecBody: ExecBody{Address: 1, Count: 6}, Condition: true, IsPredicateClean: true}},
		{Opcode: CFLoopStart, Kind: LoopStart{Address: 0x1FFF, IsRepeat: true, LoopID: 31}},
		{Opcode: CFLoopEnd, Kind: LoopEnd{Address: 3, LoopID: 3, IsPredicatedBreak: true, Condition: true}},
		{Opcode: CFCondCall, Kind: CondJmp{Address: 8, IsUnconditional: true}},
		{Opcode: CFAlloc, Kind: Alloc{Size: 5, IsUnserialized: true, AllocType: 2}},
		{Opcode: CFReturn, Kind: Nop{}},
		{Opcode: CFMarkVsFetchDone, Kind: Nop{}},
	}
	for _, cf := range tests {
		t.Run(cf.Opcode.String(), func(t *testing.T) {
			s := EncodeControlFlowPair(cf, ControlFlow{Opcode: CFNop, Kind: Nop{}})
			got := DecodeControlFlowPair(s)
			assert.Equal(t, cf, got[0])
			assert.Equal(t, CFNop, got[1].Opcode)
		})
	}
}

// Arbitrary words must decode without panicking and re-encode to themselves
// once unused bits are masked off by a decode/encode cycle.
func TestControlFlowRandomWordsStable(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 500; i++ {
		s := Slot{faker.Uint32(), faker.Uint32(), faker.Uint32()}
		pair := DecodeControlFlowPair(s)
		again := DecodeControlFlowPair(EncodeControlFlowPair(pair[0], pair[1]))
		require.Equal(t, pair, again)
	}
}

func TestALURoundTrip(t *testing.T) {
	alu := ALU{
		VectorDest:                   12,
		AbsConstants:                 true,
		ScalarDest:                   63,
		ScalarDestRelative:           true,
		ExportData:                   true,
		VectorWriteMask:              0b0111,
		ScalarWriteMask:              0b1000,
		VectorSaturate:               true,
		ScalarOpcode:                 ScaRetainPrev,
		Src3Swizzle:                  0xE4,
		Src2Swizzle:                  0x1B,
		Src1Swizzle:                  0xFF,
		Src2Negate:                   true,
		PredicateCondition:           true,
		IsPredicated:                 true,
		ConstAddressRegisterRelative: true,
		Const0Relative:               true,
		Src3Register:                 200,
		Src2Register:                 1,
		Src1Register:                 128,
		VectorOpcode:                 VecMaxA,
		Src1Select:                   true,
		Src3Select:                   true,
	}
	assert.Equal(t, alu, DecodeALU(alu.Encode()))
}

func TestALURandomWordsExact(t *testing.T) {
	// Every bit of an ALU slot is assigned, so the cycle is exact.
	faker := gofakeit.New(7)
	for i := 0; i < 500; i++ {
		s := Slot{faker.Uint32(), faker.Uint32(), faker.Uint32()}
		require.Equal(t, s, DecodeALU(s).Encode())
	}
}

func TestFetchRoundTrip(t *testing.T) {
	vf := VertexFetch{
		Opcode:           FetchVertex,
		SrcRegister:      14,
		DstRegister:      3,
		MustBeOne:        true,
		ConstIndex:       31,
		ConstIndexSelect: 2,
		SrcSwizzle:       1,
		DstSwizzle:       0b111_101_100_000,
		Format:           57,
		ExpAdjust:        -32,
		IsPredicated:     true,
		Stride:           16,
		Offset:           -4,
	}
	got := DecodeFetch(vf.Encode())
	assert.Equal(t, vf, got)
	assert.Equal(t, FetchVertex, got.FetchOpcode())

	tf := TextureFetch{
		Opcode:      FetchGetTextureWeights,
		SrcRegister: 1,
		DstRegister: 2,
		ConstIndex:  10,
		SrcSwizzle:  0b10_01_00,
		DstSwizzle:  0b011_010_001_000,
		UseRegLod:   true,
		LodBias:     -64,
		Dimension:   TextureCube,
		OffsetX:     -16,
		OffsetY:     15,
		OffsetZ:     -1,
	}
	assert.Equal(t, tf, DecodeFetch(tf.Encode()))
}

func TestDecodeBody(t *testing.T) {
	alu := ALU{VectorOpcode: VecDp3, VectorWriteMask: 0xF}
	tf := TextureFetch{Opcode: FetchTexture, Dimension: Texture2D}

	assert.IsType(t, ALU{}, DecodeBody(alu.Encode(), false))
	assert.IsType(t, TextureFetch{}, DecodeBody(tf.Encode(), true))
	assert.IsType(t, VertexFetch{}, DecodeBody(VertexFetch{}.Encode(), true))
}

func TestOpcodeValidity(t *testing.T) {
	assert.True(t, VecMaxA.Valid())
	assert.False(t, VectorOpcode(30).Valid())
	assert.Equal(t, "unknown", VectorOpcode(31).String())

	assert.True(t, ScaRetainPrev.Valid())
	assert.False(t, ScalarOpcode(41).Valid())
	assert.False(t, ScalarOpcode(51).Valid())
	assert.Equal(t, "sqrt", ScaSqrt.String())
	assert.Equal(t, "unknown", ScalarOpcode(41).String())

	assert.True(t, FetchSetTextureGradientsVert.Valid())
	assert.False(t, FetchOpcode(2).Valid())

	for op := ControlFlowOpcode(0); op < 16; op++ {
		assert.True(t, op.Valid(), op.String())
	}
	assert.True(t, CFCondExecPredCleanEnd.IsEnd())
	assert.False(t, CFCondExecPredClean.IsEnd())
}

func TestOpcodeClassifiers(t *testing.T) {
	assert.True(t, VecKillGt.IsKill())
	assert.False(t, VecDst.IsKill())
	assert.True(t, VecSetpGePush.IsSetpPush())
	assert.True(t, ScaSetpRstr.IsSetp())
	assert.True(t, ScaKillsOne.IsKill())
	assert.True(t, ScaSubsc1.IsConstantPair())
	assert.False(t, ScaSin.IsConstantPair())
}

func TestDestSwizzle(t *testing.T) {
	dst := uint32(DestKeep)<<9 | uint32(DestOne)<<6 | uint32(DestZero)<<3 | uint32(DestY)
	assert.Equal(t, DestY, DestSwizzleAt(dst, 0))
	assert.Equal(t, DestZero, DestSwizzleAt(dst, 1))
	assert.Equal(t, DestOne, DestSwizzleAt(dst, 2))
	assert.Equal(t, DestKeep, DestSwizzleAt(dst, 3))
	assert.True(t, DestY.IsComponent())
	assert.False(t, DestKeep.IsComponent())
}

func TestTextureDimension(t *testing.T) {
	assert.Equal(t, "Cube", TextureCube.String())
	assert.Equal(t, 1, Texture1D.Components())
	assert.Equal(t, 2, Texture2D.Components())
	assert.Equal(t, 3, Texture3D.Components())
}
