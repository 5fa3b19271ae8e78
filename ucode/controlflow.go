// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

// ControlFlowOpcode selects the kind of a control-flow instruction.
type ControlFlowOpcode uint8

// Control-flow opcodes. The field is four bits wide so every value is named.
const (
	CFNop ControlFlowOpcode = iota
	CFExec
	CFExecEnd
	CFCondExec
	CFCondExecEnd
	CFCondExecPred
	CFCondExecPredEnd
	CFLoopStart
	CFLoopEnd
	CFCondCall
	CFReturn
	CFCondJmp
	CFAlloc
	CFCondExecPredClean
	CFCondExecPredCleanEnd
	CFMarkVsFetchDone
)

var controlFlowOpcodeNames = [...]string{
	CFNop:                  "Nop",
	CFExec:                 "Exec",
	CFExecEnd:              "ExecEnd",
	CFCondExec:             "CondExec",
	CFCondExecEnd:          "CondExecEnd",
	CFCondExecPred:         "CondExecPred",
	CFCondExecPredEnd:      "CondExecPredEnd",
	CFLoopStart:            "LoopStart",
	CFLoopEnd:              "LoopEnd",
	CFCondCall:             "CondCall",
	CFReturn:               "Return",
	CFCondJmp:              "CondJmp",
	CFAlloc:                "Alloc",
	CFCondExecPredClean:    "CondExecPredClean",
	CFCondExecPredCleanEnd: "CondExecPredCleanEnd",
	CFMarkVsFetchDone:      "MarkVsFetchDone",
}

// String returns the opcode mnemonic.
func (op ControlFlowOpcode) String() string {
	if int(op) < len(controlFlowOpcodeNames) {
		return controlFlowOpcodeNames[op]
	}
	return "Unknown"
}

// Valid reports whether op is part of the documented enumeration.
func (op ControlFlowOpcode) Valid() bool {
	return int(op) < len(controlFlowOpcodeNames)
}

// IsEnd reports whether the instruction terminates the program after its
// body executes.
func (op ControlFlowOpcode) IsEnd() bool {
	switch op {
	case CFExecEnd, CFCondExecEnd, CFCondExecPredEnd, CFCondExecPredCleanEnd:
		return true
	default:
		return false
	}
}

// ControlFlow is one decoded 48-bit control-flow instruction.
type ControlFlow struct {
	Opcode ControlFlowOpcode
	Kind   ControlFlowKind
}

// ControlFlowKind is the opcode-specific payload of a control-flow instruction.
type ControlFlowKind interface {
	controlFlowKind()
}

// ExecBody describes the run of body slots an Exec-family instruction executes.
type ExecBody struct {
	// Address is the first body slot, in slot units.
	Address uint32
	// Count is the number of body slots.
	Count uint32
	// Sequence holds two bits per body slot; the low bit marks a fetch.
	Sequence    uint32
	IsYield     bool
	VertexCache uint32
}

// IsFetch reports whether the i-th body slot holds a fetch instruction.
func (b ExecBody) IsFetch(i uint32) bool {
	return (b.Sequence>>(2*i))&1 != 0
}

// Exec executes a run of body slots unconditionally.
type Exec struct {
	ExecBody
	IsPredicateClean   bool
	AbsoluteAddressing bool
}

func (Exec) controlFlowKind() {}

// CondExec executes a run of body slots when a boolean constant matches Condition.
type CondExec struct {
	ExecBody
	BoolAddress        uint32
	Condition          bool
	AbsoluteAddressing bool
}

func (CondExec) controlFlowKind() {}

// CondExecPred executes a run of body slots when p0 matches Condition.
type CondExecPred struct {
	ExecBody
	IsPredicateClean   bool
	Condition          bool
	AbsoluteAddressing bool
}

func (CondExecPred) controlFlowKind() {}

// LoopStart opens a loop whose trip count comes from integer constant LoopID.
type LoopStart struct {
	// Address is the control-flow index just past the matching LoopEnd.
	Address            uint32
	IsRepeat           bool
	LoopID             uint32
	AbsoluteAddressing bool
}

func (LoopStart) controlFlowKind() {}

// LoopEnd closes a loop, jumping back to Address while iterations remain.
type LoopEnd struct {
	Address            uint32
	LoopID             uint32
	IsPredicatedBreak  bool
	Condition          bool
	AbsoluteAddressing bool
}

func (LoopEnd) controlFlowKind() {}

// CondJmp transfers control to the control-flow index Address.
// CondCall shares this layout.
type CondJmp struct {
	Address uint32
	// IsUnconditional forces the jump regardless of the condition source.
	IsUnconditional bool
	// IsPredicated selects p0 instead of a boolean constant as condition.
	IsPredicated bool
	// Direction is set for backward jumps.
	Direction          bool
	BoolAddress        uint32
	Condition          bool
	AbsoluteAddressing bool
}

func (CondJmp) controlFlowKind() {}

// Alloc reserves export space. It has no effect on translation.
type Alloc struct {
	Size           uint32
	IsUnserialized bool
	AllocType      uint32
}

func (Alloc) controlFlowKind() {}

// Nop carries no payload. Return and MarkVsFetchDone also decode to Nop.
type Nop struct{}

func (Nop) controlFlowKind() {}

// Body returns the body run of an Exec-family instruction.
func (cf ControlFlow) Body() (ExecBody, bool) {
	switch k := cf.Kind.(type) {
	case Exec:
		return k.ExecBody, true
	case CondExec:
		return k.ExecBody, true
	case CondExecPred:
		return k.ExecBody, true
	default:
		return ExecBody{}, false
	}
}

// Bit positions within the 48-bit control-flow word.
const (
	cfOpcodeShift = 44
	cfAbsShift    = 43
	cfCondShift   = 42
	cfCleanShift  = 41
	cfBoolShift   = 34
)

// controlFlowWords splits a slot into its two 48-bit instructions.
func controlFlowWords(s Slot) [2]uint64 {
	lo0 := s[0]
	hi0 := s[1] & 0xFFFF
	lo1 := (s[1] >> 16) | (s[2] << 16)
	hi1 := s[2] >> 16
	return [2]uint64{
		uint64(lo0) | uint64(hi0)<<32,
		uint64(lo1) | uint64(hi1)<<32,
	}
}

// DecodeControlFlowPair decodes both control-flow instructions of a slot.
func DecodeControlFlowPair(s Slot) [2]ControlFlow {
	words := controlFlowWords(s)
	return [2]ControlFlow{decodeControlFlow(words[0]), decodeControlFlow(words[1])}
}

func decodeExecBody(v uint64) ExecBody {
	return ExecBody{
		Address:     bits(v, 0, 12),
		Count:       bits(v, 12, 3),
		IsYield:     flag(v, 15),
		Sequence:    bits(v, 16, 12),
		VertexCache: bits(v, 28, 6),
	}
}

func decodeControlFlow(v uint64) ControlFlow {
	op := ControlFlowOpcode(bits(v, cfOpcodeShift, 4))
	abs := flag(v, cfAbsShift)

	var kind ControlFlowKind
	switch op {
	case CFExec, CFExecEnd:
		kind = Exec{
			ExecBody:           decodeExecBody(v),
			IsPredicateClean:   flag(v, cfCleanShift),
			AbsoluteAddressing: abs,
		}
	case CFCondExec, CFCondExecEnd, CFCondExecPredClean, CFCondExecPredCleanEnd:
		kind = CondExec{
			ExecBody:           decodeExecBody(v),
			BoolAddress:        bits(v, cfBoolShift, 8),
			Condition:          flag(v, cfCondShift),
			AbsoluteAddressing: abs,
		}
	case CFCondExecPred, CFCondExecPredEnd:
		kind = CondExecPred{
			ExecBody:           decodeExecBody(v),
			IsPredicateClean:   flag(v, cfCleanShift),
			Condition:          flag(v, cfCondShift),
			AbsoluteAddressing: abs,
		}
	case CFLoopStart:
		kind = LoopStart{
			Address:            bits(v, 0, 13),
			IsRepeat:           flag(v, 13),
			LoopID:             bits(v, 16, 5),
			AbsoluteAddressing: abs,
		}
	case CFLoopEnd:
		kind = LoopEnd{
			Address:            bits(v, 0, 13),
			LoopID:             bits(v, 16, 5),
			IsPredicatedBreak:  flag(v, 21),
			Condition:          flag(v, cfCondShift),
			AbsoluteAddressing: abs,
		}
	case CFCondJmp, CFCondCall:
		kind = CondJmp{
			Address:            bits(v, 0, 13),
			IsUnconditional:    flag(v, 13),
			IsPredicated:       flag(v, 14),
			Direction:          flag(v, 33),
			BoolAddress:        bits(v, cfBoolShift, 8),
			Condition:          flag(v, cfCondShift),
			AbsoluteAddressing: abs,
		}
	case CFAlloc:
		kind = Alloc{
			Size:           bits(v, 0, 3),
			IsUnserialized: flag(v, 40),
			AllocType:      bits(v, 41, 2),
		}
	default:
		kind = Nop{}
	}

	return ControlFlow{Opcode: op, Kind: kind}
}
