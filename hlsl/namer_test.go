// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	assert.Equal(t, "g_MtxWorld", n.call("g_MtxWorld"))
	assert.Equal(t, "g_MtxWorld_1", n.call("g_MtxWorld"))
	assert.Equal(t, "g_Diffuse", n.call("g_Diffuse"))
}

func TestNamer_CaseInsensitivity(t *testing.T) {
	n := newNamer()

	require.Equal(t, "sampColor", n.call("sampColor"))
	assert.NotEqual(t, "SAMPCOLOR", n.call("SAMPCOLOR"), "SAMPCOLOR should collide with sampColor")
}

func TestNamer_EscapesGeneratedNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"float4", "_float4"},
		{"c12", "_c12"},
		{"r3", "_r3"},
		{"p0", "_p0"},
		{"oPos", "_oPos"},
		{"g_Booleans", "_g_Booleans"},
		{"", UnnamedIdentifier},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newNamer().call(tt.input), "call(%q)", tt.input)
	}
}

func TestNamer_EscapedCollision(t *testing.T) {
	n := newNamer()
	first := n.call("_c0")
	second := n.call("c0")
	assert.NotEqual(t, first, second)
}
