// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package flow analyzes the control-flow stream of a Xenos shader.
//
// The stream has no instruction count. Its extent is derived from the body
// addresses of the Exec-family instructions: body slots follow the
// control-flow slots, so the smallest body address marks where control flow
// ends. Analyze runs this scan once and classifies the program as structured
// or unstructured for the emitter.
package flow

import (
	"github.com/oleiade/lane"

	"github.com/gogpu/xenos/ucode"
)

// Info is the result of analyzing a control-flow stream.
type Info struct {
	// Bound is the length of the control-flow stream in bytes.
	Bound uint32

	// Structured is set when every CondJmp is conditional and forward.
	Structured bool

	// IfEndLabels maps a control-flow index to the number of structured
	// if blocks that close there.
	IfEndLabels map[uint32]uint32

	// Instructions holds the decoded control flow inside Bound, indexed by
	// program counter.
	Instructions []ucode.ControlFlow

	// Loops counts LoopStart instructions.
	Loops int

	// Reachable marks the instructions reachable from the entry point.
	Reachable []bool
}

// Analyze scans p for its control-flow bound and shape. sizeHint is the
// stage header's size field; zero means the whole program.
func Analyze(p ucode.Program, sizeHint uint32) *Info {
	bound := sizeHint
	if bound == 0 {
		bound = p.ByteLen()
	}

	for addr := uint32(0); addr < bound; addr += ucode.SlotSize {
		slot, ok := p.Slot(addr / ucode.SlotSize)
		if !ok {
			break
		}
		for _, cf := range ucode.DecodeControlFlowPair(slot) {
			if body, ok := cf.Body(); ok && body.Address != 0 {
				bound = min(bound, body.Address*ucode.SlotSize)
			}
		}
	}

	info := &Info{
		Bound:       bound,
		Structured:  true,
		IfEndLabels: make(map[uint32]uint32),
	}

	slots := min((bound+ucode.SlotSize-1)/ucode.SlotSize, p.Len())
	info.Instructions = make([]ucode.ControlFlow, 0, slots*2)
	for i := uint32(0); i < slots; i++ {
		slot, _ := p.Slot(i)
		for _, cf := range ucode.DecodeControlFlowPair(slot) {
			switch k := cf.Kind.(type) {
			case ucode.CondJmp:
				if cf.Opcode != ucode.CFCondJmp {
					break
				}
				if k.IsUnconditional || k.Direction {
					info.Structured = false
				} else {
					info.IfEndLabels[k.Address]++
				}
			case ucode.LoopStart:
				info.Loops++
			}
			info.Instructions = append(info.Instructions, cf)
		}
	}

	info.Reachable = reachable(info.Instructions)
	return info
}

// Unreachable returns the program counters no path from the entry reaches.
func (info *Info) Unreachable() []uint32 {
	var out []uint32
	for pc, ok := range info.Reachable {
		if !ok {
			out = append(out, uint32(pc))
		}
	}
	return out
}

// successors returns the control-flow indices pc may continue at.
func successors(pc uint32, cf ucode.ControlFlow) []uint32 {
	if cf.Opcode.IsEnd() {
		return nil
	}
	switch k := cf.Kind.(type) {
	case ucode.LoopStart:
		return []uint32{pc + 1, k.Address}
	case ucode.LoopEnd:
		return []uint32{pc + 1, k.Address}
	case ucode.CondJmp:
		if cf.Opcode != ucode.CFCondJmp {
			break
		}
		if k.IsUnconditional {
			return []uint32{k.Address}
		}
		return []uint32{pc + 1, k.Address}
	}
	return []uint32{pc + 1}
}

func reachable(cfs []ucode.ControlFlow) []bool {
	seen := make([]bool, len(cfs))
	if len(cfs) == 0 {
		return seen
	}

	q := lane.NewQueue()
	seen[0] = true
	for q.Enqueue(uint32(0)); !q.Empty(); {
		pc := q.Dequeue().(uint32)
		for _, next := range successors(pc, cfs[pc]) {
			if next < uint32(len(cfs)) && !seen[next] {
				seen[next] = true
				q.Enqueue(next)
			}
		}
	}
	return seen
}
