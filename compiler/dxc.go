// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/hlsl"
)

// DefaultDXCPath is the executable looked up on PATH when DXC.Path is empty.
const DefaultDXCPath = "dxc"

// DXC runs the DirectX Shader Compiler executable.
type DXC struct {
	// Path is the dxc executable. Empty means DefaultDXCPath.
	Path string

	// ShaderModel selects the stage and library profiles.
	ShaderModel hlsl.ShaderModel

	// ExtraArgs are appended after the generated arguments.
	ExtraArgs []string
}

// NewDXC returns a DXC with the default shader model.
func NewDXC(path string) *DXC {
	return &DXC{Path: path, ShaderModel: hlsl.ShaderModel6_0}
}

// DXCFactory returns a Factory producing DXC compilers that share path.
func DXCFactory(path string) Factory {
	return func() (Compiler, error) {
		return NewDXC(path), nil
	}
}

// Args returns the dxc command line, without input and output files.
func (d *DXC) Args(stage container.Stage, target Target, specConstants bool) []string {
	library := target == TargetDXIL && specConstants

	args := make([]string, 0, 16)
	if library {
		args = append(args, "-T", d.ShaderModel.LibraryProfile())
	} else {
		args = append(args, "-T", d.ShaderModel.Profile(stage), "-E", "main")
	}
	args = append(args, "-HV", "2021", "-all-resources-bound")

	if target == TargetSPIRV {
		args = append(args, "-spirv", "-fvk-use-dx-layout", "-fspv-target-env=vulkan1.0")
		if stage == container.StageVertex {
			args = append(args, "-fvk-invert-y")
		}
	}
	args = append(args, "-Qstrip_debug", "-Qstrip_reflect")
	return append(args, d.ExtraArgs...)
}

// Compile writes source to a temporary directory and runs dxc on it.
func (d *DXC) Compile(source string, stage container.Stage, target Target, specConstants bool) ([]byte, error) {
	dir, err := os.MkdirTemp("", "xenos-dxc-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "shader.hlsl")
	output := filepath.Join(dir, "shader.bin")
	if err := os.WriteFile(input, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}

	path := d.Path
	if path == "" {
		path = DefaultDXCPath
	}
	args := append(d.Args(stage, target, specConstants), "-Fo", output, input)

	var stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v: %s",
			ErrCompileFailed, stage, target, err, strings.TrimSpace(stderr.String()))
	}

	blob, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: no output: %v", ErrCompileFailed, stage, target, err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: %s %s: empty output", ErrCompileFailed, stage, target)
	}
	return blob, nil
}
