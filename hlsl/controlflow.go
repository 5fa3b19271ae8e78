// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/xenos/ucode"
)

// blockKind identifies an open brace in structured emission.
type blockKind uint8

const (
	blockIf blockKind = iota
	blockLoop
)

func (k blockKind) String() string {
	if k == blockLoop {
		return "loop"
	}
	return "if"
}

// writeStructured emits the program as nested blocks. Forward jumps become
// if blocks closed at the label the analyzer recorded.
func (w *Writer) writeStructured() error {
	w.writeLine("")
	for pc, cf := range w.flow.Instructions {
		for n := w.flow.IfEndLabels[uint32(pc)]; n > 0; n-- {
			if err := w.closeStructured(blockIf); err != nil {
				return err
			}
		}
		if err := w.writeControlFlow(cf, true); err != nil {
			return err
		}
	}

	// Labels past the last instruction.
	for !w.blocks.Empty() {
		w.blocks.Pop()
		w.closeBlock()
	}
	return nil
}

// closeStructured closes the innermost block, which must be of kind want.
func (w *Writer) closeStructured(want blockKind) error {
	if w.blocks.Empty() {
		return NewErrorAt(ErrInternalError, w.slot, "no open %s block to close", want)
	}
	if got := w.blocks.Pop().(blockKind); got != want {
		return NewErrorAt(ErrInternalError, w.slot, "%s block closed while %s block is open", want, got)
	}
	w.closeBlock()
	return nil
}

// writeDispatch emits the program as a switch over a program counter,
// for streams with backward or unconditional jumps.
func (w *Writer) writeDispatch() error {
	w.writeLine("")
	w.writeLine("uint pc = 0;")
	w.openBlock("while (true)")
	w.openBlock("switch (pc)")
	for pc, cf := range w.flow.Instructions {
		w.writeLine("case %d:", pc)
		w.pushIndent()
		if err := w.writeControlFlow(cf, false); err != nil {
			return err
		}
		w.popIndent()
	}
	w.pushIndent()
	w.writeLine("break;")
	w.popIndent()
	w.closeBlock()
	w.writeLine("break;")
	w.closeBlock()
	return nil
}

// loopCounter renders the integer constant holding a loop's trip count.
func (w *Writer) loopCounter(loopID uint32) (string, error) {
	if !w.integers[loopID] {
		return "", NewErrorAt(ErrUnresolvedReference, w.slot, "loop constant i%d is not defined", loopID)
	}
	return "i" + itoa(loopID) + ".x", nil
}

// jumpCondition renders the test of a conditional jump. Structured
// emission tests for the jump not being taken.
func (w *Writer) jumpCondition(k ucode.CondJmp, structured bool) string {
	taken := k.Condition != structured
	if k.IsPredicated {
		if taken {
			return "if (p0)"
		}
		return "if (!p0)"
	}
	op := "=="
	if taken {
		op = "!="
	}
	return "if ((g_Booleans & " + w.booleanMask(k.BoolAddress) + ") " + op + " 0)"
}

// writeControlFlow translates one control-flow instruction and its body.
func (w *Writer) writeControlFlow(cf ucode.ControlFlow, structured bool) error {
	var (
		body    ucode.ExecBody
		hasBody bool
		guarded bool
	)

	switch k := cf.Kind.(type) {
	case ucode.Exec:
		body, hasBody = k.ExecBody, true

	case ucode.CondExec:
		body, hasBody, guarded = k.ExecBody, true, true
		op := "=="
		if k.Condition {
			op = "!="
		}
		w.openBlock("if ((g_Booleans & %s) %s 0)", w.booleanMask(k.BoolAddress), op)

	case ucode.CondExecPred:
		body, hasBody, guarded = k.ExecBody, true, true
		w.openPredicate(k.Condition)

	case ucode.LoopStart:
		if !structured {
			w.writeLine("aL = 0;")
			break
		}
		counter, err := w.loopCounter(k.LoopID)
		if err != nil {
			return err
		}
		unroll := ""
		if w.options.Fixups.Has(FixupUnrollLoops) {
			unroll = "[unroll] "
		}
		w.openBlock("%sfor (aL = 0; aL < %s; aL++)", unroll, counter)
		w.blocks.Push(blockLoop)

	case ucode.LoopEnd:
		if structured {
			return w.closeStructured(blockLoop)
		}
		counter, err := w.loopCounter(k.LoopID)
		if err != nil {
			return err
		}
		w.writeLine("++aL;")
		w.openBlock("if (aL < %s)", counter)
		w.writeLine("pc = %d;", k.Address)
		w.writeLine("continue;")
		w.closeBlock()

	case ucode.CondJmp:
		// CondCall shares the layout and is not translated.
		if cf.Opcode != ucode.CFCondJmp {
			break
		}
		if k.IsUnconditional {
			w.writeLine("pc = %d;", k.Address)
			w.writeLine("continue;")
			break
		}
		w.openBlock("%s", w.jumpCondition(k, structured))
		if structured {
			w.blocks.Push(blockIf)
			break
		}
		w.writeLine("pc = %d;", k.Address)
		w.writeLine("continue;")
		w.closeBlock()
	}

	if hasBody {
		if err := w.writeBody(body); err != nil {
			return err
		}
	}
	if guarded {
		w.closeBlock()
	}
	if cf.Opcode.IsEnd() {
		w.writeEpilogue(structured)
	}
	return nil
}
