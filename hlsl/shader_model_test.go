// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/xenos/container"
)

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		sm   ShaderModel
		want string
	}{
		{ShaderModel6_0, "SM 6.0"},
		{ShaderModel6_3, "SM 6.3"},
		{ShaderModel6_6, "SM 6.6"},
		{ShaderModel(200), "SM 6.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sm.String())
		})
	}
}

func TestShaderModel_Profile(t *testing.T) {
	tests := []struct {
		name  string
		sm    ShaderModel
		stage container.Stage
		want  string
	}{
		{"vertex", ShaderModel6_0, container.StageVertex, "vs_6_0"},
		{"pixel", ShaderModel6_0, container.StagePixel, "ps_6_0"},
		{"pixel 6.5", ShaderModel6_5, container.StagePixel, "ps_6_5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sm.Profile(tt.stage))
		})
	}
}

func TestShaderModel_LibraryProfile(t *testing.T) {
	assert.Equal(t, "lib_6_3", ShaderModel6_0.LibraryProfile())
	assert.Equal(t, "lib_6_6", ShaderModel6_6.LibraryProfile())
	assert.EqualValues(t, 6, ShaderModel6_2.Major())
	assert.EqualValues(t, 2, ShaderModel6_2.Minor())
}
