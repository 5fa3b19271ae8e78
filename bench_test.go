// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package xenos

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/gogpu/xenos/internal/xenostest"
	"github.com/gogpu/xenos/ucode"
)

// benchShader builds a vertex shader of execs Exec instructions, each over
// six ALU slots with operands drawn from a seeded faker.
func benchShader(execs int) []byte {
	faker := gofakeit.New(1)
	cf := make([]ucode.ControlFlow, execs)
	var body []ucode.Slot
	for i := range cf {
		cf[i] = xenostest.Exec(uint32(len(body)), 6)
		for j := 0; j < 6; j++ {
			a := ucode.ALU{
				VectorOpcode:    ucode.VecMad,
				VectorDest:      uint32(faker.Number(0, 31)),
				VectorWriteMask: uint32(faker.Number(1, 15)),
				ScalarOpcode:    ucode.ScaRetainPrev,
				Src1Select:      true,
				Src1Register:    uint32(faker.Number(0, 31)),
				Src2Select:      true,
				Src2Register:    uint32(faker.Number(0, 31)),
				Src3Select:      true,
				Src3Register:    uint32(faker.Number(0, 31)),
			}
			body = append(body, a.Encode())
		}
	}
	cf[len(cf)-1].Opcode = ucode.CFExecEnd

	b := &xenostest.Builder{Code: xenostest.Assemble(cf, body...)}
	return b.Bytes()
}

func BenchmarkRecompile(b *testing.B) {
	for _, bc := range []struct {
		name  string
		execs int
	}{
		{"small", 1},
		{"medium", 8},
		{"large", 64},
	} {
		data := benchShader(bc.execs)
		b.Run(bc.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Recompile(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	c, err := Parse(benchShader(64))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(c)
	}
}
