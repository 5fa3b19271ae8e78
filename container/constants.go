// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

// RegisterSet is the register file a constant lives in.
type RegisterSet uint16

// Register sets.
const (
	RegisterBool RegisterSet = iota
	RegisterInt4
	RegisterFloat4
	RegisterSampler
)

// String returns the register set name.
func (s RegisterSet) String() string {
	switch s {
	case RegisterBool:
		return "Bool"
	case RegisterInt4:
		return "Int4"
	case RegisterFloat4:
		return "Float4"
	case RegisterSampler:
		return "Sampler"
	default:
		return "Unknown"
	}
}

// Constant is one constant table entry.
type Constant struct {
	Name          string
	RegisterSet   RegisterSet
	RegisterIndex uint16
	RegisterCount uint16
	TypeInfo      uint32
	DefaultValue  uint32
}

// IsArray reports whether the constant spans more than one register.
func (c Constant) IsArray() bool {
	return c.RegisterCount > 1
}

// Contains reports whether register reg belongs to the constant.
func (c Constant) Contains(reg uint32) bool {
	start := uint32(c.RegisterIndex)
	return reg >= start && reg < start+uint32(c.RegisterCount)
}

const constantInfoSize = 20

// readConstants reads the D3DX constant table. The table follows a size word
// at off; its internal offsets are relative to the table start.
func readConstants(r *reader, off uint32) []Constant {
	base := off + 4
	count := r.u32(base + 12)
	info := r.u32(base + 16)
	if r.err != nil {
		return nil
	}

	// Bound the allocation by what the buffer can hold.
	if uint64(count)*constantInfoSize > uint64(len(r.data)) {
		r.malformed("constant count %d exceeds buffer", count)
		return nil
	}

	constants := make([]Constant, 0, count)
	for i := uint32(0); i < count; i++ {
		entry := base + info + i*constantInfoSize
		c := Constant{
			RegisterSet:   RegisterSet(r.u16(entry + 4)),
			RegisterIndex: r.u16(entry + 6),
			RegisterCount: r.u16(entry + 8),
			TypeInfo:      r.u32(entry + 12),
			DefaultValue:  r.u32(entry + 16),
		}
		c.Name = r.cstring(base + r.u32(entry))
		if r.err != nil {
			return nil
		}
		constants = append(constants, c)
	}
	return constants
}

// ConstantsIn returns the constants of one register set in table order.
func (c *Container) ConstantsIn(set RegisterSet) []Constant {
	var out []Constant
	for _, k := range c.Constants {
		if k.RegisterSet == set {
			out = append(out, k)
		}
	}
	return out
}

// Lookup returns the constant of the given set that covers register reg.
func (c *Container) Lookup(set RegisterSet, reg uint32) (Constant, bool) {
	for _, k := range c.Constants {
		if k.RegisterSet == set && k.Contains(reg) {
			return k, true
		}
	}
	return Constant{}, false
}

// HasConstant reports whether a constant with the given name exists.
func (c *Container) HasConstant(name string) bool {
	for _, k := range c.Constants {
		if k.Name == name {
			return true
		}
	}
	return false
}
