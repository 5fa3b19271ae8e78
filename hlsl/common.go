// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	_ "embed"
)

// DefaultCommonHeader defines the push constants, descriptor heaps and
// fetch helpers generated shaders call.
//
//go:embed shader_common.hlsli
var DefaultCommonHeader string
