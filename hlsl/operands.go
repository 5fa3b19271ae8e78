// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/xenos/ucode"
)

// operand selects an ALU source as seen by one half of the instruction.
type operand uint8

const (
	vector0 operand = iota
	vector1
	vector2
	scalar0
	scalar1
	// scalarConstant0 and scalarConstant1 are the constant and register
	// sources of mulsc, addsc and subsc.
	scalarConstant0
	scalarConstant1
)

// Single-component masks for vector operands.
const (
	componentX = 0b0001
	componentW = 0b1000
)

// source is an ALU source register after select and abs decoding.
type source struct {
	register uint32
	swizzle  uint32
	temp     bool
	negate   bool
	abs      bool
}

func aluSource(a ucode.ALU, op operand) source {
	switch op {
	case scalarConstant0:
		return source{
			register: a.Src3Register,
			swizzle:  a.Src3Swizzle,
			negate:   a.Src3Negate,
			abs:      a.AbsConstants,
		}
	case scalarConstant1:
		return source{
			register: uint32(a.ScalarOpcode)&1 | boolBit(a.Src3Select)<<1 | a.Src3Swizzle&0x3C,
			swizzle:  a.Src3Swizzle,
			temp:     true,
			negate:   a.Src3Negate,
			abs:      a.AbsConstants,
		}
	}

	var s source
	switch op {
	case vector0:
		s = source{register: a.Src1Register, swizzle: a.Src1Swizzle, temp: a.Src1Select, negate: a.Src1Negate}
	case vector1:
		s = source{register: a.Src2Register, swizzle: a.Src2Swizzle, temp: a.Src2Select, negate: a.Src2Negate}
	default:
		s = source{register: a.Src3Register, swizzle: a.Src3Swizzle, temp: a.Src3Select, negate: a.Src3Negate}
	}
	if s.temp {
		s.abs = s.register&0x80 != 0
		s.register &= 0x3F
	} else {
		s.abs = a.AbsConstants
	}
	return s
}

// vectorMask returns the components a vector operand contributes. Dot
// products read a fixed width regardless of the write mask.
func vectorMask(a ucode.ALU, op operand) uint32 {
	switch a.VectorOpcode {
	case ucode.VecDp2Add:
		if op == vector2 {
			return 0b1
		}
		return 0b11
	case ucode.VecDp3:
		return 0b111
	case ucode.VecDp4, ucode.VecMax4:
		return 0b1111
	}
	if a.VectorWriteMask != 0 {
		return a.VectorWriteMask
	}
	return 0b1
}

// writeOperand renders op with the component mask its opcode implies.
func (w *Writer) writeOperand(a ucode.ALU, op operand) (string, error) {
	return w.writeOperandMask(a, op, vectorMask(a, op))
}

// writeOperandMask renders op; mask only applies to vector operands.
func (w *Writer) writeOperandMask(a ucode.ALU, op operand, mask uint32) (string, error) {
	src := aluSource(a, op)

	reg := "r" + itoa(src.register)
	if !src.temp {
		var err error
		if reg, err = w.constant(a, src.register); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	if src.negate {
		b.WriteByte('-')
	}
	if src.abs {
		b.WriteString("abs(")
	}
	b.WriteString(reg)
	b.WriteByte('.')

	switch op {
	case scalar0, scalarConstant0:
		b.WriteByte(swizzles[((src.swizzle>>6)+3)&3])
	case scalar1, scalarConstant1:
		b.WriteByte(swizzles[src.swizzle&3])
	default:
		// Components are stored relative to their position.
		for i := uint32(0); i < 4; i++ {
			if mask>>i&1 != 0 {
				b.WriteByte(swizzles[((src.swizzle>>(2*i))+i)&3])
			}
		}
	}

	if src.abs {
		b.WriteByte(')')
	}
	return b.String(), nil
}

// constant renders float constant register reg.
func (w *Writer) constant(a ucode.ALU, reg uint32) (string, error) {
	relative := a.Const0Relative || a.Const1Relative

	if b, ok := w.float4[reg]; ok {
		k := b.constant
		if !k.IsArray() {
			if relative {
				return "", NewErrorAt(ErrInternalError, w.slot,
					"relative addressing of non-array constant %s", k.Name)
			}
			return b.name, nil
		}

		offset := reg - uint32(k.RegisterIndex)
		if w.reverseZ && k.Name == mtxProjectionName {
			return fmt.Sprintf("(iterationIndex == 0 ? mtxProjectionReverseZ[%[1]d] : mtxProjection[%[1]d])", offset), nil
		}
		index := itoa(offset)
		if a.Const0Relative {
			if a.ConstAddressRegisterRelative {
				index += " + a0"
			} else {
				index += " + aL"
			}
		}
		return b.name + "(" + index + ")", nil
	}

	if relative {
		return "", NewErrorAt(ErrInternalError, w.slot, "relative addressing of literal constant c%d", reg)
	}
	if !w.literals[reg] {
		return "", NewErrorAt(ErrUnresolvedReference, w.slot, "float constant c%d is neither named nor defined", reg)
	}
	return "c" + itoa(reg), nil
}

// writeMask renders a destination write mask such as "xyw".
func writeMask(mask uint32) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		if mask>>i&1 != 0 {
			b.WriteByte(swizzles[i])
		}
	}
	return b.String()
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
