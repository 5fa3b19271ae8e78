// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer hands out unique identifiers for constant table entries. Names
// compare case-insensitively so two constants differing only in case
// still get distinct identifiers.
type namer struct {
	used    map[string]struct{}
	counter uint32
}

func newNamer() *namer {
	return &namer{used: make(map[string]struct{})}
}

// call returns an identifier for base, escaping reserved names and
// appending a numeric suffix on collision.
func (n *namer) call(base string) string {
	escaped := Escape(base)
	if !n.isUsed(escaped) {
		n.reserve(escaped)
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if !n.isUsed(candidate) {
			n.reserve(candidate)
			return candidate
		}
	}
}

func (n *namer) isUsed(name string) bool {
	_, ok := n.used[strings.ToLower(name)]
	return ok
}

// reserve marks name as taken.
func (n *namer) reserve(name string) {
	n.used[strings.ToLower(name)] = struct{}{}
}
