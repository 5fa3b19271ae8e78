// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/internal/xenostest"
	"github.com/gogpu/xenos/ucode"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NotNil(t, opts)

	assert.Equal(t, ShaderModel6_0, opts.ShaderModel)
	assert.Equal(t, AllFixups, opts.Fixups)
	assert.Equal(t, DefaultCommonHeader, opts.CommonHeader, "CommonHeader should be the embedded header")
}

func TestDefaultCommonHeader(t *testing.T) {
	for _, want := range []string{
		"#define SPEC_CONSTANT_REVERSE_Z",
		"#define g_SpecConstants()",
		"float4 tfetch2D(",
		"float4 tfetchCube(",
		"float4 getWeights2D(",
		"float2 getPixelCoord(",
		"tfetchR11G11B10(",
		"tfetchTexcoord(",
		"struct CubeMapData",
		"DEFINE_SHARED_CONSTANTS()",
	} {
		assert.Contains(t, DefaultCommonHeader, want)
	}
}

func TestFixups_Has(t *testing.T) {
	tests := []struct {
		name   string
		fixups Fixups
		check  Fixups
		expect bool
	}{
		{"all has reverse z", AllFixups, FixupReverseZ, true},
		{"none has reverse z", 0, FixupReverseZ, false},
		{"single has both", FixupReverseZ, FixupReverseZ | FixupBicubicGI, false},
		{"pair has both", FixupReverseZ | FixupBicubicGI, FixupReverseZ | FixupBicubicGI, true},
		{"anything has none", FixupInstancing, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.fixups.Has(tt.check))
		})
	}
}

func TestSpecConstant_String(t *testing.T) {
	tests := []struct {
		mask SpecConstant
		want string
	}{
		{0, "none"},
		{SpecReverseZ, "ReverseZ"},
		{SpecAlphaTest | SpecAlphaToCoverage, "AlphaTest, AlphaToCoverage"},
		{SpecR11G11B10Normal | SpecSwappedTexcoords, "R11G11B10Normal, SwappedTexcoords"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mask.String())
		})
	}
}

func TestSpecConstant_Bits(t *testing.T) {
	// The bit values are shared with the common header defines.
	tests := []struct {
		bit  SpecConstant
		want uint32
	}{
		{SpecR11G11B10Normal, 1 << 0},
		{SpecAlphaTest, 1 << 1},
		{SpecBicubicGIFilter, 1 << 2},
		{SpecAlphaToCoverage, 1 << 3},
		{SpecReverseZ, 1 << 4},
		{SpecSwappedTexcoords, 1 << 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uint32(tt.bit), "%v", tt.bit)
	}
}

func TestCompile_NilOptions(t *testing.T) {
	b := &xenostest.Builder{}
	b.Code = xenostest.Assemble([]ucode.ControlFlow{xenostest.ExecEnd(0, 1)}, vectorOp(ucode.VecAdd, 0, 1, 2).Encode())
	c, err := container.Parse(b.Bytes())
	require.NoError(t, err)

	src, info, err := Compile(c, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, DefaultCommonHeader), "nil options should emit the default common header")
	assert.Equal(t, "vs_6_0", info.Profile)
}

func TestCompile_WrapsErrors(t *testing.T) {
	b := &xenostest.Builder{}
	b.Code = xenostest.Assemble([]ucode.ControlFlow{xenostest.ExecEnd(0, 1)}, vectorOp(ucode.VectorOpcode(31), 0, 1, 2).Encode())
	c, err := container.Parse(b.Bytes())
	require.NoError(t, err)

	_, _, err = Compile(c, nil)
	require.Error(t, err, "Compile() should fail on an unknown vector opcode")
	assert.Regexp(t, "^hlsl: ", err.Error())
	var hlslErr *Error
	require.ErrorAs(t, err, &hlslErr)
	assert.True(t, hlslErr.IsUnsupportedOpcode(), "Kind = %v", hlslErr.Kind)
}

func TestCompile_TruncatedBody(t *testing.T) {
	b := &xenostest.Builder{}
	// The body claims three slots but only one follows the control flow.
	b.Code = xenostest.Assemble([]ucode.ControlFlow{xenostest.ExecEnd(0, 3)}, vectorOp(ucode.VecAdd, 0, 1, 2).Encode())
	c, err := container.Parse(b.Bytes())
	require.NoError(t, err)

	_, _, err = Compile(c, nil)
	assert.ErrorIs(t, err, container.ErrMalformed)
}

func TestCompile_UnreachableReported(t *testing.T) {
	b := &xenostest.Builder{}
	b.Code = xenostest.Assemble([]ucode.ControlFlow{
		xenostest.ExecEnd(0, 1),
		xenostest.Exec(1, 1),
	},
		vectorOp(ucode.VecAdd, 0, 1, 2).Encode(),
		vectorOp(ucode.VecAdd, 3, 3, 3).Encode(),
	)
	c, err := container.Parse(b.Bytes())
	require.NoError(t, err)

	src, info, err := Compile(c, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, info.Unreachable)
	// Unreachable code is still translated.
	assert.Contains(t, src, "r3.xyzw = r3.xyzw + r3.xyzw;")
}
