// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/ucode"
)

// Export register numbers.
const (
	exportPixelDepth     = 61
	exportVertexPosition = 62
)

// aluTranslator renders the operands of one ALU instruction, keeping the
// first error so expressions can be composed without checks at every step.
type aluTranslator struct {
	w   *Writer
	a   ucode.ALU
	err error
}

func (t *aluTranslator) op(o operand) string {
	return t.keep(t.w.writeOperand(t.a, o))
}

func (t *aluTranslator) opX(o operand) string {
	return t.keep(t.w.writeOperandMask(t.a, o, componentX))
}

func (t *aluTranslator) opW(o operand) string {
	return t.keep(t.w.writeOperandMask(t.a, o, componentW))
}

func (t *aluTranslator) keep(s string, err error) string {
	if err != nil && t.err == nil {
		t.err = err
	}
	return s
}

var vectorCompare = map[ucode.VectorOpcode]string{
	ucode.VecSeq:        "==",
	ucode.VecSgt:        ">",
	ucode.VecSge:        ">=",
	ucode.VecSne:        "!=",
	ucode.VecKillEq:     "==",
	ucode.VecKillGt:     ">",
	ucode.VecKillGe:     ">=",
	ucode.VecKillNe:     "!=",
	ucode.VecSetpEqPush: "==",
	ucode.VecSetpNePush: "!=",
	ucode.VecSetpGtPush: ">",
	ucode.VecSetpGePush: ">=",
	ucode.VecCndEq:      "==",
	ucode.VecCndGe:      ">=",
	ucode.VecCndGt:      ">",
}

var scalarCompare = map[ucode.ScalarOpcode]string{
	ucode.ScaSeqs:     "== 0.0",
	ucode.ScaSgts:     "> 0.0",
	ucode.ScaSges:     ">= 0.0",
	ucode.ScaSnes:     "!= 0.0",
	ucode.ScaSetpEq:   "== 0.0",
	ucode.ScaSetpNe:   "!= 0.0",
	ucode.ScaSetpGt:   "> 0.0",
	ucode.ScaSetpGe:   ">= 0.0",
	ucode.ScaKillsEq:  "== 0.0",
	ucode.ScaKillsGt:  "> 0.0",
	ucode.ScaKillsGe:  ">= 0.0",
	ucode.ScaKillsNe:  "!= 0.0",
	ucode.ScaKillsOne: "== 1.0",
}

func (t *aluTranslator) vectorExpression() string {
	a := t.a
	switch op := a.VectorOpcode; op {
	case ucode.VecAdd:
		return t.op(vector0) + " + " + t.op(vector1)
	case ucode.VecMul:
		return t.op(vector0) + " * " + t.op(vector1)
	case ucode.VecMax, ucode.VecMaxA:
		return fmt.Sprintf("max(%s, %s)", t.op(vector0), t.op(vector1))
	case ucode.VecMin:
		return fmt.Sprintf("min(%s, %s)", t.op(vector0), t.op(vector1))
	case ucode.VecSeq, ucode.VecSgt, ucode.VecSge, ucode.VecSne:
		return t.op(vector0) + " " + vectorCompare[op] + " " + t.op(vector1)
	case ucode.VecFrc:
		return fmt.Sprintf("frac(%s)", t.op(vector0))
	case ucode.VecTrunc:
		return fmt.Sprintf("trunc(%s)", t.op(vector0))
	case ucode.VecFloor:
		return fmt.Sprintf("floor(%s)", t.op(vector0))
	case ucode.VecMad:
		return t.op(vector0) + " * " + t.op(vector1) + " + " + t.op(vector2)
	case ucode.VecCndEq, ucode.VecCndGe, ucode.VecCndGt:
		return fmt.Sprintf("select(%s %s 0.0, %s, %s)", t.op(vector0), vectorCompare[op], t.op(vector1), t.op(vector2))
	case ucode.VecDp4, ucode.VecDp3:
		return fmt.Sprintf("dot(%s, %s)", t.op(vector0), t.op(vector1))
	case ucode.VecDp2Add:
		return fmt.Sprintf("dot(%s, %s) + %s", t.op(vector0), t.op(vector1), t.op(vector2))
	case ucode.VecCube:
		return fmt.Sprintf("cube(r%d, cubeMapData)", a.Src1Register&0x3F)
	case ucode.VecMax4:
		return fmt.Sprintf("max4(%s)", t.op(vector0))
	case ucode.VecSetpEqPush, ucode.VecSetpNePush, ucode.VecSetpGtPush, ucode.VecSetpGePush:
		return fmt.Sprintf("p0 ? 0.0 : %s + 1.0", t.op(vector0))
	case ucode.VecKillEq, ucode.VecKillGt, ucode.VecKillGe, ucode.VecKillNe:
		return fmt.Sprintf("any(%s %s %s)", t.op(vector0), vectorCompare[op], t.op(vector1))
	case ucode.VecDst:
		return fmt.Sprintf("dst(%s, %s)", t.op(vector0), t.op(vector1))
	}
	return ""
}

// predicateUpdate returns the new p0 value a setp scalar opcode computes.
func (t *aluTranslator) predicateUpdate() string {
	switch op := t.a.ScalarOpcode; op {
	case ucode.ScaSetpInv:
		return t.op(scalar0) + " == 1.0"
	case ucode.ScaSetpPop:
		return t.op(scalar0) + " - 1.0 <= 0.0"
	case ucode.ScaSetpClr:
		return "false"
	case ucode.ScaSetpRstr:
		return t.op(scalar0) + " == 0.0"
	default:
		return t.op(scalar0) + " " + scalarCompare[op]
	}
}

func (t *aluTranslator) scalarExpression() string {
	switch op := t.a.ScalarOpcode; op {
	case ucode.ScaAdds:
		return t.op(scalar0) + " + " + t.op(scalar1)
	case ucode.ScaAddsPrev:
		return t.op(scalar0) + " + ps"
	case ucode.ScaMuls:
		return t.op(scalar0) + " * " + t.op(scalar1)
	case ucode.ScaMulsPrev, ucode.ScaMulsPrev2:
		return t.op(scalar0) + " * ps"
	case ucode.ScaMaxs, ucode.ScaMaxAs, ucode.ScaMaxAsf:
		return fmt.Sprintf("max(%s, %s)", t.op(scalar0), t.op(scalar1))
	case ucode.ScaMins:
		return fmt.Sprintf("min(%s, %s)", t.op(scalar0), t.op(scalar1))
	case ucode.ScaSeqs, ucode.ScaSgts, ucode.ScaSges, ucode.ScaSnes,
		ucode.ScaKillsEq, ucode.ScaKillsGt, ucode.ScaKillsGe, ucode.ScaKillsNe, ucode.ScaKillsOne:
		return t.op(scalar0) + " " + scalarCompare[op]
	case ucode.ScaFrcs:
		return fmt.Sprintf("frac(%s)", t.op(scalar0))
	case ucode.ScaTruncs:
		return fmt.Sprintf("trunc(%s)", t.op(scalar0))
	case ucode.ScaFloors:
		return fmt.Sprintf("floor(%s)", t.op(scalar0))
	case ucode.ScaExp:
		return fmt.Sprintf("exp2(%s)", t.op(scalar0))
	case ucode.ScaLogc, ucode.ScaLog:
		return fmt.Sprintf("clamp(log2(%s), FLT_MIN, FLT_MAX)", t.op(scalar0))
	case ucode.ScaRcpc, ucode.ScaRcpf, ucode.ScaRcp:
		return fmt.Sprintf("clamp(rcp(%s), FLT_MIN, FLT_MAX)", t.op(scalar0))
	case ucode.ScaRsqc, ucode.ScaRsqf, ucode.ScaRsq:
		return fmt.Sprintf("clamp(rsqrt(%s), FLT_MIN, FLT_MAX)", t.op(scalar0))
	case ucode.ScaSubs:
		return t.op(scalar0) + " - " + t.op(scalar1)
	case ucode.ScaSubsPrev:
		return t.op(scalar0) + " - ps"
	case ucode.ScaSetpEq, ucode.ScaSetpNe, ucode.ScaSetpGt, ucode.ScaSetpGe:
		return "p0 ? 0.0 : 1.0"
	case ucode.ScaSetpInv:
		return fmt.Sprintf("%[1]s == 0.0 ? 1.0 : %[1]s", t.op(scalar0))
	case ucode.ScaSetpPop:
		return fmt.Sprintf("p0 ? 0.0 : (%s - 1.0)", t.op(scalar0))
	case ucode.ScaSetpClr:
		return "FLT_MAX"
	case ucode.ScaSetpRstr:
		return "p0 ? 0.0 : " + t.op(scalar0)
	case ucode.ScaSqrt:
		return fmt.Sprintf("sqrt(%s)", t.op(scalar0))
	case ucode.ScaMulsc0, ucode.ScaMulsc1:
		return t.op(scalarConstant0) + " * " + t.op(scalarConstant1)
	case ucode.ScaAddsc0, ucode.ScaAddsc1:
		return t.op(scalarConstant0) + " + " + t.op(scalarConstant1)
	case ucode.ScaSubsc0, ucode.ScaSubsc1:
		return t.op(scalarConstant0) + " - " + t.op(scalarConstant1)
	case ucode.ScaSin:
		return fmt.Sprintf("sin(%s)", t.op(scalar0))
	case ucode.ScaCos:
		return fmt.Sprintf("cos(%s)", t.op(scalar0))
	}
	return ""
}

// exportRegister maps an export destination to its output variable.
func (w *Writer) exportRegister(dest uint32) (string, error) {
	if w.pixel {
		switch {
		case dest < 4:
			if w.c.Outputs.Has(container.OutputColor0 << dest) {
				return "oC" + itoa(dest), nil
			}
		case dest == exportPixelDepth:
			if w.c.Outputs.Has(container.OutputDepth) {
				return "oDepth", nil
			}
		}
		return "", NewErrorAt(ErrUnresolvedReference, w.slot, "pixel export register %d is not an output", dest)
	}

	if dest == exportVertexPosition {
		return "oPos", nil
	}
	if name, ok := w.interpolators[dest]; ok {
		return name, nil
	}
	return "", NewErrorAt(ErrUnresolvedReference, w.slot, "vertex export register %d has no interpolator", dest)
}

func saturate(expr string, on bool) string {
	if on {
		return "saturate(" + expr + ")"
	}
	return expr
}

// writeALU translates a co-issued vector and scalar operation.
func (w *Writer) writeALU(a ucode.ALU) error {
	if !a.VectorOpcode.Valid() {
		return NewErrorAt(ErrUnsupportedOpcode, w.slot, "vector opcode %d", a.VectorOpcode)
	}
	if !a.ScalarOpcode.Valid() {
		return NewErrorAt(ErrUnsupportedOpcode, w.slot, "scalar opcode %d", a.ScalarOpcode)
	}

	t := &aluTranslator{w: w, a: a}

	var export string
	if a.ExportData {
		var err error
		if export, err = w.exportRegister(a.VectorDest); err != nil {
			return err
		}
	}

	if a.IsPredicated {
		w.openPredicate(a.PredicateCondition)
	}

	op := a.VectorOpcode
	if op.IsKill() {
		w.writeLine("clip(any(%s %s %s) ? -1 : 1);", t.op(vector0), vectorCompare[op], t.op(vector1))
	}

	reverseZGuard := export == "oPos" && w.reverseZ
	if reverseZGuard {
		w.openBlock("if ((g_SpecConstants() & SPEC_CONSTANT_REVERSE_Z) == 0 || iterationIndex == 0)")
	}

	switch {
	case op.IsSetpPush():
		// pred_set*_push tests src0.w and src1.x.
		w.writeLine("p0 = %s == 0.0 && %s %s 0.0;", t.opW(vector0), t.opX(vector1), vectorCompare[op])
	case op == ucode.VecMaxA:
		w.writeLine("a0 = (int)clamp(floor(%s + 0.5), -256.0, 255.0);", t.opW(vector0))
	}

	vectorWriteMask := a.VectorWriteMask
	if a.ExportData {
		vectorWriteMask &^= a.ScalarWriteMask
	}
	if vectorWriteMask != 0 {
		dest := export
		if dest == "" {
			dest = "r" + itoa(a.VectorDest)
		}
		w.writeLine("%s.%s = %s;", dest, writeMask(vectorWriteMask), saturate(t.vectorExpression(), a.VectorSaturate))
	}

	if sop := a.ScalarOpcode; sop != ucode.ScaRetainPrev {
		if sop.IsSetp() {
			w.writeLine("p0 = %s;", t.predicateUpdate())
		}
		w.writeLine("ps = %s;", saturate(t.scalarExpression(), a.ScalarSaturate))

		switch sop {
		case ucode.ScaMaxAs:
			w.writeLine("a0 = (int)clamp(floor(%s + 0.5), -256.0, 255.0);", t.op(scalar0))
		case ucode.ScaMaxAsf:
			w.writeLine("a0 = (int)clamp(floor(%s), -256.0, 255.0);", t.op(scalar0))
		}
	}

	scalarWriteMask := a.ScalarWriteMask
	if a.ExportData {
		scalarWriteMask &^= a.VectorWriteMask
	}
	if scalarWriteMask != 0 {
		dest := export
		if dest == "" {
			dest = "r" + itoa(a.ScalarDest)
		}
		w.writeLine("%s.%s = ps;", dest, writeMask(scalarWriteMask))
	}

	if a.ExportData {
		// Components written by both halves export 1.0.
		var zeroMask uint32
		if a.ScalarDestRelative {
			zeroMask = 0b1111 &^ (a.VectorWriteMask | a.ScalarWriteMask)
		}
		oneMask := a.VectorWriteMask & a.ScalarWriteMask
		for i := uint32(0); i < 4; i++ {
			switch bit := uint32(1) << i; {
			case zeroMask&bit != 0:
				w.writeLine("%s.%c = 0.0;", export, swizzles[i])
			case oneMask&bit != 0:
				w.writeLine("%s.%c = 1.0;", export, swizzles[i])
			}
		}
	}

	if a.ScalarOpcode.IsKill() {
		w.writeLine("clip(ps != 0.0 ? -1 : 1);")
	}

	if reverseZGuard {
		w.closeBlock()
	}
	if a.IsPredicated {
		w.closeBlock()
	}
	return t.err
}
