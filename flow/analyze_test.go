// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package flow

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/internal/xenostest"
	"github.com/gogpu/xenos/ucode"
)

func program(slots []ucode.Slot) ucode.Program {
	words := make([]uint32, 0, len(slots)*3)
	for _, s := range slots {
		words = append(words, s[:]...)
	}
	return ucode.ProgramFromWords(words)
}

// poison decodes as an unconditional backward jump when read as control flow.
func poison() ucode.Slot {
	j := xenostest.Jump(0, ucode.CondJmp{IsUnconditional: true, Direction: true})
	return ucode.EncodeControlFlowPair(j, j)
}

func TestAnalyzeSingleExec(t *testing.T) {
	slots := xenostest.Assemble(
		[]ucode.ControlFlow{xenostest.ExecEnd(0, 1)},
		poison(),
	)
	info := Analyze(program(slots), 0)

	assert.Equal(t, uint32(ucode.SlotSize), info.Bound)
	assert.True(t, info.Structured)
	assert.Empty(t, info.IfEndLabels)
	require.Len(t, info.Instructions, 2)
	assert.Equal(t, ucode.CFExecEnd, info.Instructions[0].Opcode)
	assert.Equal(t, ucode.CFNop, info.Instructions[1].Opcode)
	assert.Equal(t, []uint32{1}, info.Unreachable())
}

func TestAnalyzeBoundIsMinimumAddress(t *testing.T) {
	cf := []ucode.ControlFlow{
		xenostest.Exec(2, 1),
		xenostest.Exec(0, 1), // smallest body address
		xenostest.Exec(1, 1),
		xenostest.ExecEnd(3, 1),
	}
	slots := xenostest.Assemble(cf, poison(), poison(), poison(), poison())
	info := Analyze(program(slots), 0)

	assert.Equal(t, uint32(2*ucode.SlotSize), info.Bound)
	assert.Len(t, info.Instructions, 4)
	assert.True(t, info.Structured, "body slots must not be classified")
}

func TestAnalyzeSizeHintCapsBound(t *testing.T) {
	slots := xenostest.Assemble(
		[]ucode.ControlFlow{xenostest.Exec(0, 1), xenostest.Exec(0, 1), xenostest.ExecEnd(0, 1)},
		poison(),
	)
	info := Analyze(program(slots), ucode.SlotSize)
	assert.Equal(t, uint32(ucode.SlotSize), info.Bound)
	assert.Len(t, info.Instructions, 2)
}

func TestAnalyzeZeroAddressIgnored(t *testing.T) {
	exec := ucode.ControlFlow{Opcode: ucode.CFExec, Kind: ucode.Exec{}}
	slots := []ucode.Slot{
		ucode.EncodeControlFlowPair(exec, exec),
		ucode.EncodeControlFlowPair(exec, exec),
	}
	info := Analyze(program(slots), 0)
	assert.Equal(t, uint32(2*ucode.SlotSize), info.Bound)
	assert.Len(t, info.Instructions, 4)
}

func TestAnalyzeClassification(t *testing.T) {
	forward := xenostest.Jump(3, ucode.CondJmp{IsPredicated: true})
	tests := []struct {
		name       string
		jump       ucode.ControlFlow
		structured bool
	}{
		{"forward conditional", forward, true},
		{"backward", xenostest.Jump(0, ucode.CondJmp{Direction: true}), false},
		{"unconditional", xenostest.Jump(3, ucode.CondJmp{IsUnconditional: true}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := []ucode.ControlFlow{
				xenostest.Exec(0, 1),
				tt.jump,
				xenostest.Exec(0, 1),
				xenostest.ExecEnd(0, 1),
			}
			info := Analyze(program(xenostest.Assemble(cf, ucode.ALU{}.Encode())), 0)
			assert.Equal(t, tt.structured, info.Structured)
		})
	}
}

func TestAnalyzeConvergingLabels(t *testing.T) {
	cf := []ucode.ControlFlow{
		xenostest.Jump(4, ucode.CondJmp{BoolAddress: 1}),
		xenostest.Exec(0, 1),
		xenostest.Jump(4, ucode.CondJmp{IsPredicated: true, Condition: true}),
		xenostest.Exec(0, 1),
		xenostest.ExecEnd(0, 1),
	}
	info := Analyze(program(xenostest.Assemble(cf, ucode.ALU{}.Encode())), 0)

	require.True(t, info.Structured)
	assert.Equal(t, map[uint32]uint32{4: 2}, info.IfEndLabels)
}

func TestAnalyzeCondCallIsNotAJump(t *testing.T) {
	call := ucode.ControlFlow{Opcode: ucode.CFCondCall, Kind: ucode.CondJmp{Address: 0, IsUnconditional: true}}
	cf := []ucode.ControlFlow{call, xenostest.ExecEnd(0, 1)}
	info := Analyze(program(xenostest.Assemble(cf, ucode.ALU{}.Encode())), 0)
	assert.True(t, info.Structured)
	assert.Empty(t, info.IfEndLabels)
}

func TestAnalyzeLoops(t *testing.T) {
	cf := []ucode.ControlFlow{
		xenostest.LoopStart(3, 3),
		xenostest.Exec(0, 1),
		xenostest.LoopEnd(3, 1),
		xenostest.ExecEnd(0, 1),
	}
	info := Analyze(program(xenostest.Assemble(cf, ucode.ALU{}.Encode())), 0)
	assert.Equal(t, 1, info.Loops)
	assert.True(t, info.Structured)
	assert.Empty(t, info.Unreachable())
}

func TestAnalyzeReachability(t *testing.T) {
	cf := []ucode.ControlFlow{
		xenostest.Jump(3, ucode.CondJmp{IsUnconditional: true}),
		xenostest.Exec(0, 1), // skipped
		xenostest.ExecEnd(0, 1),
		xenostest.Jump(2, ucode.CondJmp{IsUnconditional: true, Direction: true}),
	}
	info := Analyze(program(xenostest.Assemble(cf, ucode.ALU{}.Encode())), 0)
	assert.False(t, info.Structured)
	assert.Equal(t, []bool{true, false, true, true}, info.Reachable)
}

func TestAnalyzeEmpty(t *testing.T) {
	info := Analyze(ucode.Program{}, 0)
	assert.Zero(t, info.Bound)
	assert.Empty(t, info.Instructions)
	assert.True(t, info.Structured)
}

// The bound equals the smallest nonzero body address, for any arrangement
// where body slots follow control flow.
func TestAnalyzeBoundProperty(t *testing.T) {
	faker := gofakeit.New(2024)
	for round := 0; round < 200; round++ {
		n := faker.Number(1, 12)
		cfSlots := uint32(n+1) / 2
		bodySlots := uint32(faker.Number(1, 8))

		cf := make([]ucode.ControlFlow, n)
		want := cfSlots + bodySlots
		for i := range cf {
			rel := uint32(faker.Number(0, int(bodySlots)-1))
			cf[i] = xenostest.Exec(rel, 1)
			want = min(want, cfSlots+rel)
		}
		cf[n-1].Opcode = ucode.CFExecEnd

		body := make([]ucode.Slot, bodySlots)
		slots := xenostest.Assemble(cf, body...)

		info := Analyze(program(slots), 0)
		require.Equal(t, want*ucode.SlotSize, info.Bound, "round %d", round)
		require.True(t, info.Structured, "round %d", round)
	}
}
