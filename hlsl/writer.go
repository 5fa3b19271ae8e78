// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oleiade/lane"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/flow"
	"github.com/gogpu/xenos/ucode"
)

// tempRegisters is the number of temporaries declared up front.
const tempRegisters = 32

var writerPool = sync.Pool{
	New: func() any { return NewWriter() },
}

// constantBinding is a float4 constant and its HLSL identifier.
type constantBinding struct {
	constant container.Constant
	name     string
}

// Writer translates one shader at a time. A Writer may be reused; each
// Compile call starts from a clean state. It is not safe for concurrent use.
type Writer struct {
	out    strings.Builder
	indent int

	options *Options
	c       *container.Container
	program ucode.Program
	flow    *flow.Info
	pixel   bool

	names         *namer
	constantNames []string
	float4        map[uint32]*constantBinding
	literals      map[uint32]bool
	integers      map[uint32]bool
	samplers      map[uint32]string
	booleans      map[uint32]string
	elements      map[uint32]container.VertexElement
	interpolators map[uint32]string
	declared      [tempRegisters]bool

	// blocks holds the kind of every open structured block.
	blocks       *lane.Stack
	usedSamplers []string
	// slot is the body slot being translated, for error spans.
	slot uint32

	specConstants SpecConstant

	reverseZ        bool
	invertZBuffer   bool
	instanceTypes   bool
	indexCount      bool
	indexCountName  string
	projectionName  string
	trackPixelCoord bool
}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) reset(c *container.Container, options *Options) {
	w.out.Reset()
	w.indent = 0
	w.options = options
	w.c = c
	w.program = ucode.NewProgram(c.Code)
	w.flow = nil
	w.pixel = c.IsPixelShader()

	w.names = newNamer()
	w.constantNames = w.constantNames[:0]
	w.float4 = make(map[uint32]*constantBinding)
	w.literals = make(map[uint32]bool)
	w.integers = make(map[uint32]bool)
	w.samplers = make(map[uint32]string)
	w.booleans = make(map[uint32]string)
	w.elements = make(map[uint32]container.VertexElement, len(c.VertexElements))
	w.interpolators = make(map[uint32]string, len(c.Interpolators))
	w.declared = [tempRegisters]bool{}
	w.blocks = lane.NewStack()
	w.usedSamplers = nil
	w.slot = 0
	w.specConstants = 0

	w.reverseZ = false
	w.invertZBuffer = false
	w.instanceTypes = false
	w.indexCount = false
	w.indexCountName = ""
	w.projectionName = ""
	w.trackPixelCoord = false
}

// Compile translates c. It is the unpooled form of the package-level Compile.
func (w *Writer) Compile(c *container.Container, options *Options) (string, *TranslationInfo, error) {
	if options == nil {
		options = DefaultOptions()
	}
	w.reset(c, options)
	// Drop references to the shader once done so a pooled Writer does not
	// pin its container.
	defer func() {
		w.c = nil
		w.program = ucode.Program{}
	}()

	w.flow = flow.Analyze(w.program, c.Shader.Size)
	w.bindConstants()

	if err := w.writeProgram(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.Grow(len(options.CommonHeader) + w.out.Len() + 64)
	sb.WriteString(options.CommonHeader)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "#define SHADER_SPEC_CONSTANTS 0x%X\n", uint32(w.specConstants))
	sb.WriteString(w.out.String())

	info := &TranslationInfo{
		Stage:            c.Stage(),
		SpecConstants:    w.specConstants,
		Structured:       w.flow.Structured,
		InstructionBound: w.flow.Bound,
		ControlFlowCount: len(w.flow.Instructions),
		Loops:            w.flow.Loops,
		UsedSamplers:     w.usedSamplers,
		Unreachable:      w.flow.Unreachable(),
		Profile:          options.ShaderModel.Profile(c.Stage()),
	}
	return sb.String(), info, nil
}

// writeLine writes an indented line.
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeRaw writes a line at column zero, for preprocessor directives.
func (w *Writer) writeRaw(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// openBlock writes header and an opening brace.
func (w *Writer) openBlock(format string, args ...any) {
	w.writeLine(format, args...)
	w.writeLine("{")
	w.pushIndent()
}

// closeBlock closes the innermost brace.
func (w *Writer) closeBlock() {
	w.popIndent()
	w.writeLine("}")
}

// openPredicate guards the following statements on p0.
func (w *Writer) openPredicate(condition bool) {
	if condition {
		w.openBlock("if (p0)")
	} else {
		w.openBlock("if (!p0)")
	}
}

// String returns the body generated so far, without the common header.
func (w *Writer) String() string {
	return w.out.String()
}
