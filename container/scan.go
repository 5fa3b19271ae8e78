// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import "encoding/binary"

// Candidate locates a container embedded in a larger buffer.
type Candidate struct {
	Offset uint32
	Size   uint32
}

// Slice returns the candidate's bytes within data.
func (c Candidate) Slice(data []byte) []byte {
	return data[c.Offset : c.Offset+c.Size]
}

// Scan walks data in 4-byte steps looking for container headers. A header is
// accepted when its flags carry the signature, its size fits in the rest of
// the buffer and its two trailing header words are zero. Scanning resumes
// after an accepted container.
//
// Candidates are not parsed; Parse may still reject them.
func Scan(data []byte) []Candidate {
	var out []Candidate
	n := uint64(len(data))
	if n <= HeaderSize {
		return nil
	}

	for i := uint64(0); i < n-HeaderSize-1; {
		word := func(k uint64) uint32 {
			return binary.BigEndian.Uint32(data[i+k*4:])
		}

		flags := word(0)
		size := uint64(word(1)) + uint64(word(2))
		if flags&SignatureMask == Signature &&
			size >= HeaderSize && size <= n-i &&
			word(7) == 0 && word(8) == 0 {
			out = append(out, Candidate{Offset: uint32(i), Size: uint32(size)})
			i += size
			continue
		}
		i += 4
	}
	return out
}
