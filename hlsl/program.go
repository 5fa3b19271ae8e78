// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/xenos/container"
	"github.com/gogpu/xenos/ucode"
)

// writeProgram emits everything after the common header: declarations,
// the entry point, register setup and the translated control flow.
func (w *Writer) writeProgram() error {
	w.writeDeclarations()
	w.writeEntry()
	w.writePrologue()

	var err error
	if w.flow.Structured {
		err = w.writeStructured()
	} else {
		err = w.writeDispatch()
	}
	if err != nil {
		return err
	}

	if w.reverseZ {
		w.closeBlock()
		w.writeLine("oPos.xy += g_HalfPixelOffset * oPos.w;")
	}
	w.closeBlock()
	return nil
}

// writeBody translates the body slots of an Exec-family instruction.
func (w *Writer) writeBody(body ucode.ExecBody) error {
	for i := uint32(0); i < body.Count; i++ {
		w.slot = body.Address + i
		s, ok := w.program.Slot(w.slot)
		if !ok {
			return fmt.Errorf("%w: body slot %d is past the end of the code", container.ErrMalformed, w.slot)
		}

		var err error
		switch b := ucode.DecodeBody(s, body.IsFetch(i)).(type) {
		case ucode.ALU:
			err = w.writeALU(b)
		case ucode.Fetch:
			err = w.writeFetch(b)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// writeEpilogue ends the program: alpha handling for pixel shaders, the
// half-pixel offset for vertex shaders, then the exit statement.
func (w *Writer) writeEpilogue(structured bool) {
	if w.pixel {
		if w.c.Outputs.Has(container.OutputColor0) {
			w.specConstants |= SpecAlphaTest
			w.openBlock("[branch] if (g_SpecConstants() & SPEC_CONSTANT_ALPHA_TEST)")
			w.writeLine("clip(oC0.w - g_AlphaThreshold);")
			w.closeBlock()

			if w.options.Fixups.Has(FixupAlphaToCoverage) {
				w.specConstants |= SpecAlphaToCoverage
				w.openBlock("else if (g_SpecConstants() & SPEC_CONSTANT_ALPHA_TO_COVERAGE)")
				w.writeLine("oC0.w *= 1.0 + computeMipLevel(pixelCoord) * 0.25;")
				w.writeLine("oC0.w = 0.5 + (oC0.w - g_AlphaThreshold) / max(fwidth(oC0.w), 1e-6);")
				w.closeBlock()
			}
		}
	} else if !w.reverseZ {
		w.writeLine("oPos.xy += g_HalfPixelOffset * oPos.w;")
	}

	switch {
	case !structured:
		w.writeLine("break;")
	case w.reverseZ:
		// The second projection pass runs in the next iteration.
		w.writeLine("continue;")
	default:
		w.writeLine("return;")
	}
}
