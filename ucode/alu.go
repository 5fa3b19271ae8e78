// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

// VectorOpcode selects the vector half of an ALU instruction.
type VectorOpcode uint8

// Vector opcodes.
const (
	VecAdd VectorOpcode = iota
	VecMul
	VecMax
	VecMin
	VecSeq
	VecSgt
	VecSge
	VecSne
	VecFrc
	VecTrunc
	VecFloor
	VecMad
	VecCndEq
	VecCndGe
	VecCndGt
	VecDp4
	VecDp3
	VecDp2Add
	VecCube
	VecMax4
	VecSetpEqPush
	VecSetpNePush
	VecSetpGtPush
	VecSetpGePush
	VecKillEq
	VecKillGt
	VecKillGe
	VecKillNe
	VecDst
	VecMaxA
)

var vectorOpcodeNames = [...]string{
	VecAdd:        "add",
	VecMul:        "mul",
	VecMax:        "max",
	VecMin:        "min",
	VecSeq:        "seq",
	VecSgt:        "sgt",
	VecSge:        "sge",
	VecSne:        "sne",
	VecFrc:        "frc",
	VecTrunc:      "trunc",
	VecFloor:      "floor",
	VecMad:        "mad",
	VecCndEq:      "cndeq",
	VecCndGe:      "cndge",
	VecCndGt:      "cndgt",
	VecDp4:        "dp4",
	VecDp3:        "dp3",
	VecDp2Add:     "dp2add",
	VecCube:       "cube",
	VecMax4:       "max4",
	VecSetpEqPush: "setp_eq_push",
	VecSetpNePush: "setp_ne_push",
	VecSetpGtPush: "setp_gt_push",
	VecSetpGePush: "setp_ge_push",
	VecKillEq:     "kill_eq",
	VecKillGt:     "kill_gt",
	VecKillGe:     "kill_ge",
	VecKillNe:     "kill_ne",
	VecDst:        "dst",
	VecMaxA:       "maxa",
}

// String returns the opcode mnemonic.
func (op VectorOpcode) String() string {
	if int(op) < len(vectorOpcodeNames) {
		return vectorOpcodeNames[op]
	}
	return "unknown"
}

// Valid reports whether op is part of the documented enumeration.
func (op VectorOpcode) Valid() bool {
	return int(op) < len(vectorOpcodeNames)
}

// IsKill reports whether op is one of the vector kill opcodes.
func (op VectorOpcode) IsKill() bool {
	return op >= VecKillEq && op <= VecKillNe
}

// IsSetpPush reports whether op is one of the predicate push opcodes.
func (op VectorOpcode) IsSetpPush() bool {
	return op >= VecSetpEqPush && op <= VecSetpGePush
}

// ScalarOpcode selects the scalar half of an ALU instruction.
type ScalarOpcode uint8

// Scalar opcodes.
const (
	ScaAdds ScalarOpcode = iota
	ScaAddsPrev
	ScaMuls
	ScaMulsPrev
	ScaMulsPrev2
	ScaMaxs
	ScaMins
	ScaSeqs
	ScaSgts
	ScaSges
	ScaSnes
	ScaFrcs
	ScaTruncs
	ScaFloors
	ScaExp
	ScaLogc
	ScaLog
	ScaRcpc
	ScaRcpf
	ScaRcp
	ScaRsqc
	ScaRsqf
	ScaRsq
	ScaMaxAs
	ScaMaxAsf
	ScaSubs
	ScaSubsPrev
	ScaSetpEq
	ScaSetpNe
	ScaSetpGt
	ScaSetpGe
	ScaSetpInv
	ScaSetpPop
	ScaSetpClr
	ScaSetpRstr
	ScaKillsEq
	ScaKillsGt
	ScaKillsGe
	ScaKillsNe
	ScaKillsOne
	ScaSqrt
	scaReserved41
	ScaMulsc0
	ScaMulsc1
	ScaAddsc0
	ScaAddsc1
	ScaSubsc0
	ScaSubsc1
	ScaSin
	ScaCos
	ScaRetainPrev
)

var scalarOpcodeNames = [...]string{
	ScaAdds:       "adds",
	ScaAddsPrev:   "adds_prev",
	ScaMuls:       "muls",
	ScaMulsPrev:   "muls_prev",
	ScaMulsPrev2:  "muls_prev2",
	ScaMaxs:       "maxs",
	ScaMins:       "mins",
	ScaSeqs:       "seqs",
	ScaSgts:       "sgts",
	ScaSges:       "sges",
	ScaSnes:       "snes",
	ScaFrcs:       "frcs",
	ScaTruncs:     "truncs",
	ScaFloors:     "floors",
	ScaExp:        "exp",
	ScaLogc:       "logc",
	ScaLog:        "log",
	ScaRcpc:       "rcpc",
	ScaRcpf:       "rcpf",
	ScaRcp:        "rcp",
	ScaRsqc:       "rsqc",
	ScaRsqf:       "rsqf",
	ScaRsq:        "rsq",
	ScaMaxAs:      "maxas",
	ScaMaxAsf:     "maxasf",
	ScaSubs:       "subs",
	ScaSubsPrev:   "subs_prev",
	ScaSetpEq:     "setp_eq",
	ScaSetpNe:     "setp_ne",
	ScaSetpGt:     "setp_gt",
	ScaSetpGe:     "setp_ge",
	ScaSetpInv:    "setp_inv",
	ScaSetpPop:    "setp_pop",
	ScaSetpClr:    "setp_clr",
	ScaSetpRstr:   "setp_rstr",
	ScaKillsEq:    "kills_eq",
	ScaKillsGt:    "kills_gt",
	ScaKillsGe:    "kills_ge",
	ScaKillsNe:    "kills_ne",
	ScaKillsOne:   "kills_one",
	ScaSqrt:       "sqrt",
	ScaMulsc0:     "mulsc0",
	ScaMulsc1:     "mulsc1",
	ScaAddsc0:     "addsc0",
	ScaAddsc1:     "addsc1",
	ScaSubsc0:     "subsc0",
	ScaSubsc1:     "subsc1",
	ScaSin:        "sin",
	ScaCos:        "cos",
	ScaRetainPrev: "retain_prev",
}

// String returns the opcode mnemonic.
func (op ScalarOpcode) String() string {
	if int(op) < len(scalarOpcodeNames) && scalarOpcodeNames[op] != "" {
		return scalarOpcodeNames[op]
	}
	return "unknown"
}

// Valid reports whether op is part of the documented enumeration.
// Opcode 41 is a hole in the enumeration.
func (op ScalarOpcode) Valid() bool {
	return int(op) < len(scalarOpcodeNames) && op != scaReserved41
}

// IsSetp reports whether op updates the predicate register.
func (op ScalarOpcode) IsSetp() bool {
	return op >= ScaSetpEq && op <= ScaSetpRstr
}

// IsKill reports whether op is one of the scalar kill opcodes.
func (op ScalarOpcode) IsKill() bool {
	return op >= ScaKillsEq && op <= ScaKillsOne
}

// IsConstantPair reports whether op reads a constant and a register operand
// (mulsc, addsc, subsc).
func (op ScalarOpcode) IsConstantPair() bool {
	return op >= ScaMulsc0 && op <= ScaSubsc1
}

// ALU is a co-issued vector and scalar operation.
type ALU struct {
	VectorDest         uint32
	VectorDestRelative bool
	AbsConstants       bool
	ScalarDest         uint32
	ScalarDestRelative bool
	ExportData         bool
	VectorWriteMask    uint32
	ScalarWriteMask    uint32
	VectorSaturate     bool
	ScalarSaturate     bool
	ScalarOpcode       ScalarOpcode

	Src3Swizzle                  uint32
	Src2Swizzle                  uint32
	Src1Swizzle                  uint32
	Src3Negate                   bool
	Src2Negate                   bool
	Src1Negate                   bool
	PredicateCondition           bool
	IsPredicated                 bool
	ConstAddressRegisterRelative bool
	Const1Relative               bool
	Const0Relative               bool

	Src3Register uint32
	Src2Register uint32
	Src1Register uint32
	VectorOpcode VectorOpcode
	// SrcNSelect is set when the operand reads a temporary register rather
	// than a float constant.
	Src3Select bool
	Src2Select bool
	Src1Select bool
}

func (ALU) bodyKind() {}

// DecodeALU decodes an ALU instruction slot.
func DecodeALU(s Slot) ALU {
	w0, w1, w2 := uint64(s[0]), uint64(s[1]), uint64(s[2])
	return ALU{
		VectorDest:         bits(w0, 0, 6),
		VectorDestRelative: flag(w0, 6),
		AbsConstants:       flag(w0, 7),
		ScalarDest:         bits(w0, 8, 6),
		ScalarDestRelative: flag(w0, 14),
		ExportData:         flag(w0, 15),
		VectorWriteMask:    bits(w0, 16, 4),
		ScalarWriteMask:    bits(w0, 20, 4),
		VectorSaturate:     flag(w0, 24),
		ScalarSaturate:     flag(w0, 25),
		ScalarOpcode:       ScalarOpcode(bits(w0, 26, 6)),

		Src3Swizzle:                  bits(w1, 0, 8),
		Src2Swizzle:                  bits(w1, 8, 8),
		Src1Swizzle:                  bits(w1, 16, 8),
		Src3Negate:                   flag(w1, 24),
		Src2Negate:                   flag(w1, 25),
		Src1Negate:                   flag(w1, 26),
		PredicateCondition:           flag(w1, 27),
		IsPredicated:                 flag(w1, 28),
		ConstAddressRegisterRelative: flag(w1, 29),
		Const1Relative:               flag(w1, 30),
		Const0Relative:               flag(w1, 31),

		Src3Register: bits(w2, 0, 8),
		Src2Register: bits(w2, 8, 8),
		Src1Register: bits(w2, 16, 8),
		VectorOpcode: VectorOpcode(bits(w2, 24, 5)),
		Src3Select:   flag(w2, 29),
		Src2Select:   flag(w2, 30),
		Src1Select:   flag(w2, 31),
	}
}
