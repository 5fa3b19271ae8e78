// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"encoding/binary"
	"fmt"
)

// reader performs bounds-checked big-endian reads. The first failure is
// sticky: later reads return zero values and err keeps the original cause.
type reader struct {
	data []byte
	err  error
}

func (r *reader) fail(off uint64, n uint64) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: read of %d bytes at %#x past end of %d-byte buffer",
			ErrMalformed, n, off, len(r.data))
	}
}

func (r *reader) check(off uint64, n uint64) bool {
	if r.err != nil {
		return false
	}
	if off+n > uint64(len(r.data)) {
		r.fail(off, n)
		return false
	}
	return true
}

func (r *reader) u32(off uint32) uint32 {
	if !r.check(uint64(off), 4) {
		return 0
	}
	return binary.BigEndian.Uint32(r.data[off:])
}

func (r *reader) u16(off uint32) uint16 {
	if !r.check(uint64(off), 2) {
		return 0
	}
	return binary.BigEndian.Uint16(r.data[off:])
}

// cstring reads a NUL-terminated string starting at off.
func (r *reader) cstring(off uint32) string {
	if !r.check(uint64(off), 1) {
		return ""
	}
	for i := uint64(off); i < uint64(len(r.data)); i++ {
		if r.data[i] == 0 {
			return string(r.data[off:i])
		}
	}
	r.fail(uint64(off), uint64(len(r.data))-uint64(off)+1)
	return ""
}

func (r *reader) bytes(off, n uint32) []byte {
	if !r.check(uint64(off), uint64(n)) {
		return nil
	}
	return r.data[off : off+n]
}

func (r *reader) malformed(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)
	}
}
