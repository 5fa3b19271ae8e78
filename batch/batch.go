// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package batch recompiles every shader found under a directory.
//
// Files are scanned for embedded containers, which are deduplicated by the
// XXH3 hash of their bytes. Unique shaders are translated and compiled on a
// worker pool, then collected in ascending hash order so that the resulting
// cache artifact does not depend on scheduling.
package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/bytedance/gopkg/util/xxhash3"
	"github.com/klauspost/cpuid/v2"

	"github.com/gogpu/xenos/compiler"
	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/hlsl"
)

// progressInterval is how many finished shaders separate progress logs.
const progressInterval = 10

// queueSize bounds the pending tasks of a pool; SubmitTask blocks beyond it.
const queueSize = 256

// Worker goroutines never exit, so pools are created once per width and
// shared by every run for the life of the process.
var (
	poolsMu sync.Mutex
	pools   = make(map[int]worker.DynamicWorkerPool)
)

// sharedPool returns the pool with n workers, creating it on first use.
func sharedPool(n int) worker.DynamicWorkerPool {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	pool, ok := pools[n]
	if !ok {
		pool = worker.NewDynamicWorkerPool(n, queueSize, time.Second)
		pools[n] = pool
	}
	return pool
}

// Options configures a batch run.
type Options struct {
	// HLSL configures translation. Nil means hlsl.DefaultOptions().
	HLSL *hlsl.Options

	// Compilers creates one downstream compiler per task.
	Compilers compiler.Factory

	// DXIL also compiles every shader to DXIL. SPIR-V is always built.
	DXIL bool

	// KeepSource retains the generated HLSL on each Record.
	KeepSource bool

	// Workers bounds the worker pool. Zero means one per physical core.
	Workers int

	// Logger receives progress and skipped shaders. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options compiling SPIR-V with dxc from PATH.
func DefaultOptions() *Options {
	return &Options{
		HLSL:      hlsl.DefaultOptions(),
		Compilers: compiler.DXCFactory(""),
	}
}

// DefaultWorkers returns the worker count used when Options.Workers is zero.
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return 1
}

// Record is one unique shader and what became of it.
type Record struct {
	// Hash is the XXH3-64 hash of the container bytes.
	Hash uint64

	// Path is the first file the container was found in.
	Path string

	// Data is the container, aliasing the file contents.
	Data []byte

	Stage         container.Stage
	SpecConstants hlsl.SpecConstant

	// Source is the generated HLSL, kept when Options.KeepSource is set.
	Source string

	DXIL  []byte
	SPIRV []byte

	// Err is set when the shader was skipped.
	Err error
}

// Skipped reports whether the shader produced no bytecode.
func (r *Record) Skipped() bool {
	return r.Err != nil
}

// Result is the outcome of a batch run.
type Result struct {
	// Records holds every unique shader in ascending hash order, including
	// skipped ones.
	Records []*Record

	// Files counts the regular files scanned.
	Files int

	// Containers counts containers found before deduplication.
	Containers int
}

// Compiled returns the records that produced bytecode.
func (r *Result) Compiled() []*Record {
	out := make([]*Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if !rec.Skipped() {
			out = append(out, rec)
		}
	}
	return out
}

// Run recompiles every container found under dir.
//
// Malformed containers and shaders referencing undeclared constants are
// logged and skipped. Unsupported opcodes and downstream compile failures
// abort the run; the error of the lowest failing hash is returned.
func Run(dir string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Compilers == nil {
		return nil, errors.New("batch: no compiler factory")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	res, records, err := discover(dir)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	log.Info("recompiling shaders",
		"dir", dir,
		"files", res.Files,
		"containers", res.Containers,
		"unique", len(records),
		"workers", workers,
		"cpu", cpuid.CPU.BrandName,
	)

	res.Records = make([]*Record, 0, len(records))
	for _, r := range records {
		res.Records = append(res.Records, r)
	}
	slices.SortFunc(res.Records, func(a, b *Record) int {
		switch {
		case a.Hash < b.Hash:
			return -1
		case a.Hash > b.Hash:
			return 1
		}
		return 0
	})

	if len(res.Records) > 0 {
		recompileAll(res.Records, opts, workers, log)
	}

	for _, r := range res.Records {
		if r.Err == nil {
			continue
		}
		if fatal(r.Err) {
			return nil, fmt.Errorf("batch: shader %016X in %s: %w", r.Hash, r.Path, r.Err)
		}
		log.Warn("skipping shader", "hash", fmt.Sprintf("%016X", r.Hash), "path", r.Path, "err", r.Err)
	}
	return res, nil
}

// discover walks dir and keeps the first container per hash. The map is
// complete before any task starts.
func discover(dir string) (*Result, map[uint64]*Record, error) {
	res := &Result{}
	records := make(map[uint64]*Record)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res.Files++

		for _, c := range container.Scan(data) {
			res.Containers++
			blob := c.Slice(data)
			hash := xxhash3.Hash(blob)
			if _, ok := records[hash]; !ok {
				records[hash] = &Record{Hash: hash, Path: path, Data: blob}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("batch: %w", err)
	}
	return res, records, nil
}

// recompileAll runs one task per record and waits for all of them. Each
// task writes only to its own record.
func recompileAll(records []*Record, opts *Options, workers int, log *slog.Logger) {
	pool := sharedPool(workers)

	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	total := int64(len(records))

	wg.Add(len(records))
	for i, r := range records {
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: r.Hash,
			Do: func() (any, error) {
				defer wg.Done()
				r.Err = recompile(r, opts)

				if n := done.Add(1); n%progressInterval == 0 || n == total {
					log.Info("recompiling shaders", "done", n, "total", total,
						"percent", fmt.Sprintf("%.1f", float64(n)/float64(total)*100))
				}
				return nil, r.Err
			},
		})
	}
	wg.Wait()
}

// recompile translates and compiles one shader into r.
func recompile(r *Record, opts *Options) error {
	c, err := container.Parse(r.Data)
	if err != nil {
		return err
	}
	source, info, err := hlsl.Compile(c, opts.HLSL)
	if err != nil {
		return err
	}
	r.Stage = info.Stage
	r.SpecConstants = info.SpecConstants
	if opts.KeepSource {
		r.Source = source
	}

	comp, err := opts.Compilers()
	if err != nil {
		return fmt.Errorf("%w: %v", compiler.ErrCompileFailed, err)
	}
	if opts.DXIL {
		if r.DXIL, err = comp.Compile(source, info.Stage, compiler.TargetDXIL, info.SpecConstants != 0); err != nil {
			return err
		}
	}
	r.SPIRV, err = comp.Compile(source, info.Stage, compiler.TargetSPIRV, false)
	return err
}

// fatal reports whether err aborts the whole run rather than skipping one
// shader.
func fatal(err error) bool {
	if errors.Is(err, compiler.ErrCompileFailed) {
		return true
	}
	if kind, ok := hlsl.KindOf(err); ok {
		return kind == hlsl.ErrUnsupportedOpcode
	}
	return !errors.Is(err, container.ErrMalformed)
}
