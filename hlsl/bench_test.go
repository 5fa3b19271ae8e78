// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"runtime"
	"testing"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/internal/xenostest"
	"github.com/gogpu/xenos/ucode"
)

type hlslBenchCase struct {
	name    string
	builder func() *xenostest.Builder
}

// benchBody returns n register-only ALU slots.
func benchBody(n int) []ucode.Slot {
	ops := []ucode.VectorOpcode{ucode.VecAdd, ucode.VecMul, ucode.VecDp4, ucode.VecMad, ucode.VecMax}
	body := make([]ucode.Slot, n)
	for i := range body {
		a := vectorOp(ops[i%len(ops)], uint32(i%16), uint32((i+1)%16), uint32((i+2)%16), uint32((i+3)%16))
		a.ScalarOpcode = ucode.ScaRsq
		a.ScalarDest = uint32((i + 4) % 16)
		a.ScalarWriteMask = 0b0001
		body[i] = a.Encode()
	}
	return body
}

var hlslBenchShaders = []hlslBenchCase{
	{"small", func() *xenostest.Builder {
		b := &xenostest.Builder{}
		b.Code = xenostest.Assemble([]ucode.ControlFlow{xenostest.ExecEnd(0, 4)}, benchBody(4)...)
		return b
	}},
	{"medium", func() *xenostest.Builder {
		b := &xenostest.Builder{
			Constants: []container.Constant{
				{Name: "g_MtxProjection", RegisterSet: container.RegisterFloat4, RegisterIndex: 0, RegisterCount: 4},
				{Name: "g_Bones", RegisterSet: container.RegisterFloat4, RegisterIndex: 4, RegisterCount: 48},
			},
			Int4: []xenostest.Int4Literal{{Register: 0, Values: [][4]int8{{4, 0, 1, 0}}}},
		}
		b.Code = xenostest.Assemble([]ucode.ControlFlow{
			xenostest.Exec(0, 16),
			xenostest.LoopStart(0, 4),
			xenostest.Exec(16, 16),
			xenostest.LoopEnd(0, 2),
			xenostest.ExecEnd(32, 16),
		}, benchBody(48)...)
		return b
	}},
	{"large", func() *xenostest.Builder {
		b := &xenostest.Builder{Pixel: true, Outputs: container.OutputColor0}
		b.Code = xenostest.Assemble([]ucode.ControlFlow{
			xenostest.Exec(0, 64),
			xenostest.Jump(3, ucode.CondJmp{IsPredicated: true}),
			xenostest.Exec(64, 64),
			xenostest.ExecEnd(128, 64),
		}, benchBody(192)...)
		return b
	}},
}

func benchContainer(b *testing.B, bc hlslBenchCase) *container.Container {
	b.Helper()
	c, err := container.Parse(bc.builder().Bytes())
	if err != nil {
		b.Fatalf("parse failed: %v", err)
	}
	return c
}

// BenchmarkHLSLEmit benchmarks translation of containers of increasing size.
func BenchmarkHLSLEmit(b *testing.B) {
	for _, bc := range hlslBenchShaders {
		b.Run(bc.name, func(b *testing.B) {
			c := benchContainer(b, bc)
			opts := DefaultOptions()

			b.ReportAllocs()
			b.SetBytes(int64(len(c.Code)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(c, opts)
				if err != nil {
					b.Fatalf("hlsl emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkHLSLFixups compares translation with and without fixups.
func BenchmarkHLSLFixups(b *testing.B) {
	c := benchContainer(b, hlslBenchShaders[1])

	variants := []struct {
		name   string
		fixups Fixups
	}{
		{"none", 0},
		{"all", AllFixups},
	}

	for _, v := range variants {
		b.Run(v.name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Fixups = v.fixups

			b.ReportAllocs()
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(c, opts)
				if err != nil {
					b.Fatalf("hlsl %s emit failed: %v", v.name, err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
