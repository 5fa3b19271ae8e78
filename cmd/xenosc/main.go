// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command xenosc recompiles Xbox 360 shader microcode to HLSL.
//
// Usage:
//
//	xenosc [options] <input>
//
// When input is a file it is parsed as one shader container and the HLSL is
// written out. When input is a directory every container embedded in every
// file below it is recompiled and compiled with dxc, and the resulting shader
// cache is written to the output file.
//
// Examples:
//
//	xenosc shader.bin                        # HLSL to stdout
//	xenosc -o shader.hlsl shader.bin         # HLSL to file
//	xenosc -dump shader.bin                  # Decoded microcode
//	xenosc -o cache.bin game/                # Batch, Thrift cache index
//	xenosc -format c -dxil -o cache.cpp game/
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/xenos"
	"github.com/gogpu/xenos/batch"
	"github.com/gogpu/xenos/compiler"
	"github.com/gogpu/xenos/hlsl"
)

var (
	output  = flag.String("o", "", "output file (default: stdout; required for directories)")
	header  = flag.String("header", "", "common header to prepend instead of the embedded one")
	dump    = flag.Bool("dump", false, "print the decoded microcode instead of HLSL")
	dxil    = flag.Bool("dxil", false, "also compile DXIL in batch mode")
	dxcPath = flag.String("dxc", compiler.DefaultDXCPath, "path to the dxc executable")
	workers = flag.Int("workers", 0, "batch worker count (default: one per physical core)")
	format  = flag.String("format", "thrift", "batch output format: thrift or c")
	verbose = flag.Bool("v", false, "log every skipped shader and progress")
	version = flag.Bool("version", false, "print version")
)

const xenoscVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("xenosc version %s\n", xenoscVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input specified")
		usage()
		os.Exit(1)
	}

	opts := hlsl.DefaultOptions()
	if *header != "" {
		data, err := os.ReadFile(*header)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading header: %v\n", err)
			os.Exit(1)
		}
		opts.CommonHeader = string(data)
	}

	inputPath := args[0]
	st, err := os.Stat(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if st.IsDir() {
		err = runBatch(inputPath, opts)
	} else {
		err = runFile(inputPath, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFile(path string, opts *hlsl.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	if *dump {
		c, err := xenos.Parse(data)
		if err != nil {
			return err
		}
		return writeOutput(func(w io.Writer) error {
			return dumpListing(w, c)
		})
	}

	source, info, err := xenos.RecompileWithOptions(data, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, source)
		return err
	}); err != nil {
		return err
	}
	if *output != "" {
		fmt.Printf("Recompiled %s %s shader to %s (spec constants %s, structured %t)\n",
			path, info.Stage, *output, info.SpecConstants, info.Structured)
	}
	return nil
}

func runBatch(dir string, opts *hlsl.Options) error {
	if *output == "" {
		return fmt.Errorf("-o is required when the input is a directory")
	}
	if *format != "thrift" && *format != "c" {
		return fmt.Errorf("unknown format %q", *format)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	res, err := batch.Run(dir, &batch.Options{
		HLSL:      opts,
		Compilers: compiler.DXCFactory(*dxcPath),
		DXIL:      *dxil,
		Workers:   *workers,
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	})
	if err != nil {
		return err
	}

	compiled := res.Compiled()
	ci, err := batch.BuildCache(compiled)
	if err != nil {
		return err
	}

	err = writeOutput(func(w io.Writer) error {
		if *format == "c" {
			return batch.WriteSource(w, ci)
		}
		data, err := ci.Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recompiled %d of %d unique shaders (%d containers in %d files) to %s\n",
		len(compiled), len(res.Records), res.Containers, res.Files, *output)
	return nil
}

// writeOutput runs write against the -o file, or stdout when none is set.
func writeOutput(write func(io.Writer) error) error {
	if *output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	return f.Close()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: xenosc [options] <shader file | directory>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  xenosc shader.bin                      HLSL to stdout\n")
	fmt.Fprintf(os.Stderr, "  xenosc -dump shader.bin                 Decoded microcode\n")
	fmt.Fprintf(os.Stderr, "  xenosc -o cache.bin game/               Batch to a Thrift cache index\n")
	fmt.Fprintf(os.Stderr, "  xenosc -format c -dxil -o cache.cpp game/\n")
}
