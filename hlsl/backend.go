// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/xenos/container"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel selects the profile reported in TranslationInfo.
	ShaderModel ShaderModel

	// CommonHeader is emitted verbatim at the top of every shader. It must
	// define the helpers the generated code calls. Empty emits no header.
	CommonHeader string

	// Fixups enables host-renderer specific rewrites.
	Fixups Fixups
}

// DefaultOptions returns the embedded common header with every fixup
// enabled.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel:  ShaderModel6_0,
		CommonHeader: DefaultCommonHeader,
		Fixups:       AllFixups,
	}
}

// Fixups selects rewrites that adapt shaders to the host renderer. A fixup
// only applies when the shader declares the constant it keys on.
type Fixups uint32

const (
	// FixupReverseZ renders vertex shaders with g_MtxProjection twice,
	// once with a reverse-Z projection.
	FixupReverseZ Fixups = 1 << iota

	// FixupZBufferInversion inverts sampZBuffer reads in pixel shaders
	// declaring g_MtxPrevInvViewProjection.
	FixupZBufferInversion

	// FixupAlphaToCoverage emits the alpha-to-coverage epilogue branch.
	FixupAlphaToCoverage

	// FixupPixelCoord tracks the texel coordinate of sampler 0.
	FixupPixelCoord

	// FixupBicubicGI fetches the GI sampler through a bicubic filter
	// switch.
	FixupBicubicGI

	// FixupInstancing adapts inputs for g_IndexCount and g_InstanceTypes.
	FixupInstancing

	// FixupUnrollLoops marks structured loops [unroll].
	FixupUnrollLoops

	// AllFixups enables every fixup.
	AllFixups = FixupReverseZ | FixupZBufferInversion | FixupAlphaToCoverage |
		FixupPixelCoord | FixupBicubicGI | FixupInstancing | FixupUnrollLoops
)

// Has returns true if all fixups in f are enabled.
func (f Fixups) Has(fixup Fixups) bool {
	return f&fixup == fixup
}

// SpecConstant is a bit in the specialization-constant mask a shader
// consults at runtime.
type SpecConstant uint32

const (
	// SpecR11G11B10Normal decodes packed normals.
	SpecR11G11B10Normal SpecConstant = 1 << iota

	// SpecAlphaTest enables the alpha test epilogue.
	SpecAlphaTest

	// SpecBicubicGIFilter selects bicubic filtering for the GI sampler.
	SpecBicubicGIFilter

	// SpecAlphaToCoverage enables the alpha-to-coverage epilogue.
	SpecAlphaToCoverage

	// SpecReverseZ enables the reverse-Z projection pass.
	SpecReverseZ

	// SpecSwappedTexcoords swaps texture coordinate components per semantic.
	SpecSwappedTexcoords
)

var specConstantNames = []struct {
	bit  SpecConstant
	name string
}{
	{SpecR11G11B10Normal, "R11G11B10Normal"},
	{SpecAlphaTest, "AlphaTest"},
	{SpecBicubicGIFilter, "BicubicGIFilter"},
	{SpecAlphaToCoverage, "AlphaToCoverage"},
	{SpecReverseZ, "ReverseZ"},
	{SpecSwappedTexcoords, "SwappedTexcoords"},
}

// Has returns true if the mask contains the specified constant.
func (s SpecConstant) Has(bit SpecConstant) bool {
	return s&bit != 0
}

// String returns a human-readable list of set constants.
func (s SpecConstant) String() string {
	var names []string
	for _, n := range specConstantNames {
		if s.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// Stage is the shader stage.
	Stage container.Stage

	// SpecConstants is the set of specialization constants the shader reads.
	// A downstream compiler needs spec-constant support when it is nonzero.
	SpecConstants SpecConstant

	// Structured is set when control flow was emitted as nested blocks
	// rather than a program-counter dispatch loop.
	Structured bool

	// InstructionBound is the control-flow length in bytes.
	InstructionBound uint32

	// ControlFlowCount is the number of control-flow instructions translated.
	ControlFlowCount int

	// Loops counts LoopStart instructions.
	Loops int

	// UsedSamplers lists the sampler names fetched from, in first-use order.
	UsedSamplers []string

	// Unreachable lists control-flow indices no path reaches. They are
	// still translated.
	Unreachable []uint32

	// Profile is the DXC target profile for the stage.
	Profile string
}

// Compile generates HLSL source code from a shader container.
// Returns the HLSL source, translation info, or an error.
func Compile(c *container.Container, options *Options) (string, *TranslationInfo, error) {
	if c == nil {
		return "", nil, &Error{
			Kind:    ErrInternalError,
			Message: "container is nil",
		}
	}

	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}

	w := writerPool.Get().(*Writer)
	defer writerPool.Put(w)

	source, info, err := w.Compile(c, options)
	if err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}
	return source, info, nil
}
