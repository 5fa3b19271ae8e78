// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/xenos/container"
)

// ShaderModel represents a DirectX Shader Model version.
// Recompiled shaders are consumed by DXC, so only DXIL models are listed.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel6_0 is the default stage profile.
	ShaderModel6_0 ShaderModel = iota

	// ShaderModel6_1 adds SV_ViewID and barycentrics.
	ShaderModel6_1

	// ShaderModel6_2 adds float16 and denorm control.
	ShaderModel6_2

	// ShaderModel6_3 adds library targets, used for DXIL with
	// specialization constants.
	ShaderModel6_3

	// ShaderModel6_4 adds variable rate shading.
	ShaderModel6_4

	// ShaderModel6_5 adds mesh shaders and sampler feedback.
	ShaderModel6_5

	// ShaderModel6_6 adds dynamic resources.
	ShaderModel6_6
)

// String returns a human-readable representation of the shader model.
// Example: "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "6_0", used to construct profiles like "vs_6_0".
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the DXC target profile for a shader stage.
func (sm ShaderModel) Profile(stage container.Stage) string {
	if stage == container.StagePixel {
		return "ps_" + sm.ProfileSuffix()
	}
	return "vs_" + sm.ProfileSuffix()
}

// LibraryProfile returns the DXC library profile. Library targets need
// SM 6.3, so lower models are raised.
func (sm ShaderModel) LibraryProfile() string {
	return "lib_" + max(sm, ShaderModel6_3).ProfileSuffix()
}

func (sm ShaderModel) version() (major, minor uint8) {
	if sm > ShaderModel6_6 {
		return 6, 0
	}
	return 6, uint8(sm)
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}
