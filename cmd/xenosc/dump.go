// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/gogpu/xenos"
	"github.com/gogpu/xenos/container"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpListing prints the container header tables and the decoded
// microcode of c.
func dumpListing(w io.Writer, c *container.Container) error {
	l := xenos.Decode(c)

	fmt.Fprintf(w, "; %s shader, %d bytes, hash %016X\n", c.Stage(), c.Size(), xenos.Hash(c))
	fmt.Fprintf(w, "; control flow %d bytes, structured %t, %d loops\n",
		l.Flow.Bound, l.Flow.Structured, l.Flow.Loops)
	if len(l.Lossy) > 0 {
		fmt.Fprintf(w, "; %d body slots do not re-encode exactly: %v\n", len(l.Lossy), l.Lossy)
	}
	if unreachable := l.Flow.Unreachable(); len(unreachable) > 0 {
		fmt.Fprintf(w, "; unreachable control flow: %v\n", unreachable)
	}

	fmt.Fprintln(w, "\n; constants")
	dumpConfig.Fdump(w, c.Constants, c.Definitions)
	if c.IsPixelShader() {
		fmt.Fprintln(w, "\n; interpolators")
		dumpConfig.Fdump(w, c.Interpolators)
	} else {
		fmt.Fprintln(w, "\n; vertex elements")
		dumpConfig.Fdump(w, c.VertexElements, c.Interpolators)
	}

	blocks := make(map[uint32]xenos.Block, len(l.Blocks))
	for _, b := range l.Blocks {
		blocks[b.PC] = b
	}
	for pc, cf := range l.Flow.Instructions {
		fmt.Fprintf(w, "\n; cf %d: %s\n", pc, cf.Opcode)
		dumpConfig.Fdump(w, cf.Kind)
		if b, ok := blocks[uint32(pc)]; ok {
			for i, s := range b.Slots {
				fmt.Fprintf(w, "; slot %d\n", b.Address+uint32(i))
				dumpConfig.Fdump(w, s)
			}
		}
	}
	return nil
}
