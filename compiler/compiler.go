// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package compiler hands generated HLSL to a downstream compiler that
// produces GPU bytecode.
//
// The recompiler treats the downstream compiler as an opaque service. DXC
// implements it by running the dxc executable; Func adapts a plain function,
// which tests use in place of a real toolchain.
package compiler

import (
	"errors"

	"github.com/gogpu/xenos/container"
)

// ErrCompileFailed is returned, wrapped, when the downstream compiler
// rejects a shader or cannot be run.
var ErrCompileFailed = errors.New("downstream compile failed")

// Target is the bytecode format to produce.
type Target uint8

const (
	// TargetDXIL produces DXIL for Direct3D 12.
	TargetDXIL Target = iota

	// TargetSPIRV produces SPIR-V for Vulkan.
	TargetSPIRV
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetDXIL:
		return "DXIL"
	case TargetSPIRV:
		return "SPIR-V"
	default:
		return "Unknown"
	}
}

// Compiler compiles HLSL source to bytecode.
//
// specConstants is set when the shader reads specialization constants.
// DXIL has no specialization constants, so such shaders are built as
// libraries and linked per variant by the host.
type Compiler interface {
	Compile(source string, stage container.Stage, target Target, specConstants bool) ([]byte, error)
}

// Func adapts a function to the Compiler interface.
type Func func(source string, stage container.Stage, target Target, specConstants bool) ([]byte, error)

// Compile calls f.
func (f Func) Compile(source string, stage container.Stage, target Target, specConstants bool) ([]byte, error) {
	return f(source, stage, target, specConstants)
}

// Factory creates a Compiler. Batch runs call it once per task so
// implementations need not be safe for concurrent use.
type Factory func() (Compiler, error)
