// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl translates Xenos shader microcode into HLSL source.
//
// The output targets DXC and compiles to both DXIL and SPIR-V. Constant
// declarations are emitted twice: as raw buffer loads through push constant
// addresses under __spirv__, and as packoffset cbuffers otherwise.
//
// # Usage
//
//	c, err := container.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	source, info, err := hlsl.Compile(c, hlsl.DefaultOptions())
//
// # Control Flow
//
// Programs whose jumps are all conditional and forward are emitted as
// nested if and for blocks. Any other program is emitted as a switch over
// a program counter inside an endless loop.
//
// # Spec Constants
//
// Generated code tests host features through g_SpecConstants(). Each
// shader defines SHADER_SPEC_CONSTANTS with the bits it actually reads,
// reported in TranslationInfo.SpecConstants, so hosts can skip building
// variants for bits a shader ignores.
//
// # Fixups
//
// Options.Fixups enables rewrites keyed on well-known constant names, such
// as a second reverse-Z projection pass when the vertex shader declares
// g_MtxProjection. A fixup has no effect on shaders without its constant.
package hlsl
