// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/cloudwego/frugal"
	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/xenos/compiler"
	"github.com/gogpu/xenos/hlsl"
)

// ErrNoEntry is returned by CacheIndex.Blob for hashes not in the cache.
var ErrNoEntry = errors.New("batch: no cache entry")

// CacheEntry locates one shader's bytecode in the decompressed blobs.
// Thrift has no unsigned integers; the hash is stored bit for bit.
type CacheEntry struct {
	Hash          int64 `frugal:"1,default,i64"`
	DXILOffset    int64 `frugal:"2,default,i64"`
	DXILSize      int64 `frugal:"3,default,i64"`
	SPIRVOffset   int64 `frugal:"4,default,i64"`
	SPIRVSize     int64 `frugal:"5,default,i64"`
	SpecConstants int32 `frugal:"6,default,i32"`
}

// ShaderHash returns the entry's XXH3 hash.
func (e *CacheEntry) ShaderHash() uint64 {
	return uint64(e.Hash)
}

// CacheIndex is the batch artifact: an entry per shader in ascending hash
// order and the zstd-compressed concatenation of their bytecode.
type CacheIndex struct {
	Entries []*CacheEntry `frugal:"1,default,list<CacheEntry>"`

	DXIL             []byte `frugal:"2,default,binary"`
	DXILDecompressed int64  `frugal:"3,default,i64"`

	SPIRV             []byte `frugal:"4,default,binary"`
	SPIRVDecompressed int64  `frugal:"5,default,i64"`
}

// BuildCache assembles the artifact from compiled records, which must be
// in ascending hash order. Skipped records are left out.
func BuildCache(records []*Record) (*CacheIndex, error) {
	var dxilSize, spirvSize int
	for _, r := range records {
		dxilSize += len(r.DXIL)
		spirvSize += len(r.SPIRV)
	}
	dxil := dirtmake.Bytes(0, dxilSize)
	spirv := dirtmake.Bytes(0, spirvSize)

	ci := &CacheIndex{Entries: make([]*CacheEntry, 0, len(records))}
	var (
		last uint64
		seen bool
	)
	for _, r := range records {
		if r.Skipped() {
			continue
		}
		if seen && r.Hash <= last {
			return nil, fmt.Errorf("batch: records out of hash order at %016X", r.Hash)
		}
		last, seen = r.Hash, true

		ci.Entries = append(ci.Entries, &CacheEntry{
			Hash:          int64(r.Hash),
			DXILOffset:    int64(len(dxil)),
			DXILSize:      int64(len(r.DXIL)),
			SPIRVOffset:   int64(len(spirv)),
			SPIRVSize:     int64(len(r.SPIRV)),
			SpecConstants: int32(r.SpecConstants),
		})
		dxil = append(dxil, r.DXIL...)
		spirv = append(spirv, r.SPIRV...)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	defer enc.Close()

	ci.DXILDecompressed = int64(len(dxil))
	ci.SPIRVDecompressed = int64(len(spirv))
	if len(dxil) > 0 {
		ci.DXIL = enc.EncodeAll(dxil, nil)
	}
	ci.SPIRV = enc.EncodeAll(spirv, nil)
	return ci, nil
}

// Marshal encodes the index with the Thrift binary protocol.
func (ci *CacheIndex) Marshal() ([]byte, error) {
	size := frugal.EncodedSize(ci)
	buf := dirtmake.Bytes(size, size)
	n, err := frugal.EncodeObject(buf, nil, ci)
	if err != nil {
		return nil, fmt.Errorf("batch: encode cache index: %w", err)
	}
	return buf[:n], nil
}

// UnmarshalCache decodes an index written by Marshal.
func UnmarshalCache(data []byte) (*CacheIndex, error) {
	ci := &CacheIndex{}
	if _, err := frugal.DecodeObject(data, ci); err != nil {
		return nil, fmt.Errorf("batch: decode cache index: %w", err)
	}
	return ci, nil
}

// Lookup returns the entry for hash.
func (ci *CacheIndex) Lookup(hash uint64) (*CacheEntry, bool) {
	i, ok := slices.BinarySearchFunc(ci.Entries, hash, func(e *CacheEntry, h uint64) int {
		switch eh := e.ShaderHash(); {
		case eh < h:
			return -1
		case eh > h:
			return 1
		}
		return 0
	})
	if !ok {
		return nil, false
	}
	return ci.Entries[i], true
}

// SpecConstants returns the spec constants the shader with hash reads.
func (ci *CacheIndex) SpecConstants(hash uint64) (hlsl.SpecConstant, bool) {
	e, ok := ci.Lookup(hash)
	if !ok {
		return 0, false
	}
	return hlsl.SpecConstant(uint32(e.SpecConstants)), true
}

// Decompress returns the whole decompressed blob for target.
func (ci *CacheIndex) Decompress(target compiler.Target) ([]byte, error) {
	src, size := ci.SPIRV, ci.SPIRVDecompressed
	if target == compiler.TargetDXIL {
		src, size = ci.DXIL, ci.DXILDecompressed
	}
	if size == 0 {
		return nil, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(src, dirtmake.Bytes(0, int(size)))
	if err != nil {
		return nil, fmt.Errorf("batch: decompress %s: %w", target, err)
	}
	if int64(len(out)) != size {
		return nil, fmt.Errorf("batch: %s blob is %d bytes, index says %d", target, len(out), size)
	}
	return out, nil
}

// Blob returns one shader's bytecode for target. blob is the result of
// Decompress for the same target.
func (ci *CacheIndex) Blob(blob []byte, hash uint64, target compiler.Target) ([]byte, error) {
	e, ok := ci.Lookup(hash)
	if !ok {
		return nil, fmt.Errorf("%w: %016X", ErrNoEntry, hash)
	}
	off, size := e.SPIRVOffset, e.SPIRVSize
	if target == compiler.TargetDXIL {
		off, size = e.DXILOffset, e.DXILSize
	}
	if off < 0 || size < 0 || off+size > int64(len(blob)) {
		return nil, fmt.Errorf("batch: entry %016X %s range [%d, %d) outside blob of %d bytes",
			hash, target, off, off+size, len(blob))
	}
	return blob[off : off+size], nil
}
