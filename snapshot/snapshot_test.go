// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package snapshot_test runs a fixed corpus of shader containers through the
// whole recompiler and checks every output.
//
// Each fixture must translate, produce well-formed text for both dialects,
// decode losslessly and translate identically on a fresh and on a reused
// Writer. When testdata/golden/<name>.hlsl exists the output must also match
// it byte for byte.
//
// To create or regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/xenos"
	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/hlsl"
	"github.com/gogpu/xenos/internal/xenostest"
	"github.com/gogpu/xenos/ucode"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// fixture is one named shader in the corpus.
type fixture struct {
	name       string
	structured bool
	build      func() *xenostest.Builder
}

func alu(op ucode.VectorOpcode, dst uint32, srcs ...uint32) ucode.ALU {
	a := ucode.ALU{
		VectorOpcode:    op,
		VectorDest:      dst,
		VectorWriteMask: 0b1111,
		ScalarOpcode:    ucode.ScaRetainPrev,
	}
	sel := []*bool{&a.Src1Select, &a.Src2Select, &a.Src3Select}
	reg := []*uint32{&a.Src1Register, &a.Src2Register, &a.Src3Register}
	for i, s := range srcs {
		*sel[i], *reg[i] = true, s
	}
	return a
}

func loopInt4() []xenostest.Int4Literal {
	return []xenostest.Int4Literal{{Register: 0, Values: [][4]int8{{4, 0, 1, 0}}}}
}

var fixtures = []fixture{
	{"single_exec", true, func() *xenostest.Builder {
		return &xenostest.Builder{Code: xenostest.Assemble(
			[]ucode.ControlFlow{xenostest.ExecEnd(0, 1)},
			alu(ucode.VecAdd, 0, 1, 2).Encode())}
	}},
	{"vertex_fetch", true, func() *xenostest.Builder {
		pos := ucode.VertexFetch{
			Opcode:      ucode.FetchVertex,
			DstRegister: 1,
			DstSwizzle:  xenostest.FetchSwizzle("xyz1"),
			MustBeOne:   true,
		}
		export := alu(ucode.VecMax, 62, 1, 1)
		export.ExportData = true
		return &xenostest.Builder{
			VertexElements: []container.VertexElement{{Address: 1, Usage: container.UsagePosition}},
			Code: xenostest.Assemble(
				[]ucode.ControlFlow{xenostest.ExecEnd(0, 2, 0)},
				pos.Encode(), export.Encode()),
		}
	}},
	{"bones_array", true, func() *xenostest.Builder {
		a := alu(ucode.VecMul, 0, 2, 1)
		a.Src1Select = false
		return &xenostest.Builder{
			Constants: []container.Constant{
				{Name: "g_Bones", RegisterSet: container.RegisterFloat4, RegisterIndex: 10, RegisterCount: 4},
				{Name: "g_Tint", RegisterSet: container.RegisterFloat4, RegisterIndex: 2, RegisterCount: 1},
			},
			Code: xenostest.Assemble([]ucode.ControlFlow{xenostest.ExecEnd(0, 1)}, a.Encode()),
		}
	}},
	{"pixel_texture", true, func() *xenostest.Builder {
		f := ucode.TextureFetch{
			Opcode:     ucode.FetchTexture,
			SrcSwizzle: 0b10_01_00,
			DstSwizzle: xenostest.FetchSwizzle("xyzw"),
			Dimension:  ucode.Texture2D,
		}
		export := alu(ucode.VecMul, 0, 0, 0)
		export.ExportData = true
		return &xenostest.Builder{
			Pixel:   true,
			Outputs: container.OutputColor0,
			Constants: []container.Constant{
				{Name: "sampDiffuse", RegisterSet: container.RegisterSampler, RegisterIndex: 0, RegisterCount: 1},
			},
			Code: xenostest.Assemble(
				[]ucode.ControlFlow{xenostest.ExecEnd(0, 2, 0)},
				f.Encode(), export.Encode()),
		}
	}},
	{"loop", true, func() *xenostest.Builder {
		return &xenostest.Builder{
			Int4: loopInt4(),
			Code: xenostest.Assemble([]ucode.ControlFlow{
				xenostest.LoopStart(0, 3),
				xenostest.Exec(0, 1),
				xenostest.LoopEnd(0, 1),
				xenostest.ExecEnd(1, 1),
			}, alu(ucode.VecAdd, 0, 0, 1).Encode(), alu(ucode.VecMul, 2, 0, 0).Encode()),
		}
	}},
	{"loop_unstructured", false, func() *xenostest.Builder {
		return &xenostest.Builder{
			Int4: loopInt4(),
			Code: xenostest.Assemble([]ucode.ControlFlow{
				xenostest.LoopStart(0, 3),
				xenostest.Exec(0, 1),
				xenostest.LoopEnd(0, 1),
				xenostest.ExecEnd(1, 1),
				xenostest.Jump(0, ucode.CondJmp{IsUnconditional: true, Direction: true}),
			}, alu(ucode.VecAdd, 0, 0, 1).Encode(), alu(ucode.VecMul, 2, 0, 0).Encode()),
		}
	}},
	{"forward_jumps", true, func() *xenostest.Builder {
		return &xenostest.Builder{
			Constants: []container.Constant{
				{Name: "g_UseFog", RegisterSet: container.RegisterBool, RegisterIndex: 3, RegisterCount: 1},
			},
			Code: xenostest.Assemble([]ucode.ControlFlow{
				xenostest.Exec(0, 1),
				xenostest.Jump(4, ucode.CondJmp{IsPredicated: true, Condition: true}),
				xenostest.Jump(4, ucode.CondJmp{BoolAddress: 3}),
				xenostest.Exec(1, 1),
				xenostest.ExecEnd(2, 1),
			},
				alu(ucode.VecAdd, 0, 0, 1).Encode(),
				alu(ucode.VecAdd, 1, 1, 1).Encode(),
				alu(ucode.VecAdd, 2, 2, 2).Encode()),
		}
	}},
}

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

func snapshotOptions() *hlsl.Options {
	opts := hlsl.DefaultOptions()
	opts.CommonHeader = ""
	return opts
}

// TestSnapshots translates every fixture and checks its output.
func TestSnapshots(t *testing.T) {
	reused := hlsl.NewWriter()

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			data := f.build().Bytes()
			c, err := xenos.Parse(data)
			if err != nil {
				t.Fatalf("[%s] parse failed: %v", f.name, err)
			}

			source, info, err := hlsl.Compile(c, snapshotOptions())
			if err != nil {
				t.Fatalf("[%s] translate failed: %v", f.name, err)
			}
			if info.Structured != f.structured {
				t.Errorf("Structured = %t, want %t", info.Structured, f.structured)
			}

			t.Run("wellformed", func(t *testing.T) {
				checkWellFormed(t, source, info)
			})

			t.Run("reuse", func(t *testing.T) {
				again, _, err := reused.Compile(c, snapshotOptions())
				if err != nil {
					t.Fatalf("reused writer failed: %v", err)
				}
				if again != source {
					t.Errorf("reused writer output differs:\n%s", diffStrings(source, again))
				}
			})

			t.Run("decode", func(t *testing.T) {
				l := xenos.Decode(c)
				if len(l.Lossy) != 0 {
					t.Errorf("lossy body slots %v", l.Lossy)
				}
				if l.Flow.Structured != f.structured {
					t.Errorf("listing Structured = %t, want %t", l.Flow.Structured, f.structured)
				}
			})

			t.Run("golden", func(t *testing.T) {
				compareGolden(t, filepath.Join("testdata", "golden", f.name+".hlsl"), source)
			})
		})
	}
}

// checkWellFormed checks properties every translated shader has.
func checkWellFormed(t *testing.T, source string, info *hlsl.TranslationInfo) {
	t.Helper()

	if open, closed := strings.Count(source, "{"), strings.Count(source, "}"); open != closed {
		t.Errorf("unbalanced braces: %d open, %d closed", open, closed)
	}

	conditionals := strings.Count(source, "#ifdef ") + strings.Count(source, "#ifndef ")
	if endifs := strings.Count(source, "#endif"); conditionals != endifs {
		t.Errorf("%d preprocessor conditionals but %d #endif", conditionals, endifs)
	}

	spec := fmt.Sprintf("#define SHADER_SPEC_CONSTANTS 0x%X\n", uint32(info.SpecConstants))
	if !strings.HasPrefix(source, "\n"+spec) {
		t.Errorf("output should start with %q", spec)
	}

	stage := `[shader("vertex")]`
	if info.Stage == container.StagePixel {
		stage = `[shader("pixel")]`
	}
	if strings.Count(source, stage) != 1 {
		t.Errorf("want one %s attribute", stage)
	}
	if strings.Count(source, "void main(") != 1 {
		t.Error("want one entry point")
	}
	if !strings.HasSuffix(source, "}\n") {
		t.Error("output should end with the closing brace of main")
	}
	if strings.Contains(source, "%!") {
		t.Errorf("format verb error in output:\n%s", truncate(source, 500))
	}
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
// Fixtures without a golden file are skipped.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Skipf("no golden file %s; run with UPDATE_GOLDEN=1 to create", path)
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	if expectedStr != actual {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actual))
	}
}

// diffStrings describes the first differing line with some context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))

	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	const contextLines = 3
	start := max(firstDiff-contextLines, 0)
	end := min(firstDiff+contextLines+1, maxLines)
	for i := start; i < end; i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(e, 120))
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(a, 120))
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
