// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package xenos recompiles Xbox 360 (Xenos) shader microcode to HLSL.
//
// A shader container is parsed, its control flow analyzed and its
// instructions translated into one HLSL text that compiles for both DXIL and
// SPIR-V:
//
//	source, err := xenos.Recompile(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The stages are also available separately through the container, ucode,
// flow and hlsl packages. Directory-wide recompilation with deduplication
// and a cache artifact lives in package batch.
package xenos

import (
	"fmt"

	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/flow"
	"github.com/gogpu/xenos/hlsl"
	"github.com/gogpu/xenos/ucode"
)

// Recompile translates the container at the start of data to HLSL using
// default options.
func Recompile(data []byte) (string, error) {
	source, _, err := RecompileWithOptions(data, hlsl.DefaultOptions())
	return source, err
}

// RecompileWithOptions translates the container at the start of data to
// HLSL. Nil options mean hlsl.DefaultOptions().
func RecompileWithOptions(data []byte, opts *hlsl.Options) (string, *hlsl.TranslationInfo, error) {
	c, err := Parse(data)
	if err != nil {
		return "", nil, err
	}
	return hlsl.Compile(c, opts)
}

// Parse validates data and returns the container it starts with.
func Parse(data []byte) (*container.Container, error) {
	c, err := container.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return c, nil
}

// Hash returns the XXH3-64 hash that identifies a container in a shader
// cache.
func Hash(c *container.Container) uint64 {
	return xxhash3.Hash(c.Bytes())
}

// Listing is the decoded microcode of one shader.
type Listing struct {
	// Flow is the control-flow analysis.
	Flow *flow.Info

	// Blocks holds the body run of every Exec-family instruction in
	// program order.
	Blocks []Block

	// Lossy lists body slot indices whose re-encoding differs from the
	// original words. These carry bits the decoder does not model.
	Lossy []uint32
}

// Block is the decoded body run of one Exec-family instruction.
type Block struct {
	// PC is the control-flow index of the owning instruction.
	PC uint32

	// Address is the first body slot.
	Address uint32

	Slots []ucode.Body
}

// Decode decodes the control flow and every executed body slot of c.
// Body slots past the end of the code are left out.
func Decode(c *container.Container) *Listing {
	p := ucode.NewProgram(c.Code)
	l := &Listing{Flow: flow.Analyze(p, c.Shader.Size)}

	for pc, cf := range l.Flow.Instructions {
		body, ok := cf.Body()
		if !ok {
			continue
		}
		b := Block{PC: uint32(pc), Address: body.Address}
		for i := uint32(0); i < body.Count; i++ {
			index := body.Address + i
			slot, ok := p.Slot(index)
			if !ok {
				break
			}
			decoded := ucode.DecodeBody(slot, body.IsFetch(i))
			if encodeBody(decoded) != slot {
				l.Lossy = append(l.Lossy, index)
			}
			b.Slots = append(b.Slots, decoded)
		}
		l.Blocks = append(l.Blocks, b)
	}
	return l
}

func encodeBody(b ucode.Body) ucode.Slot {
	switch b := b.(type) {
	case ucode.ALU:
		return b.Encode()
	case ucode.VertexFetch:
		return b.Encode()
	case ucode.TextureFetch:
		return b.Encode()
	}
	return ucode.Slot{}
}
