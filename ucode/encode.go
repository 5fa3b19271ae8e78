// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ucode

// Encode packs the control-flow instruction into its 48-bit form.
func (cf ControlFlow) Encode() uint64 {
	var v uint64
	put(&v, cfOpcodeShift, 4, uint32(cf.Opcode))

	switch k := cf.Kind.(type) {
	case Exec:
		encodeExecBody(&v, k.ExecBody)
		putFlag(&v, cfCleanShift, k.IsPredicateClean)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case CondExec:
		encodeExecBody(&v, k.ExecBody)
		put(&v, cfBoolShift, 8, k.BoolAddress)
		putFlag(&v, cfCondShift, k.Condition)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case CondExecPred:
		encodeExecBody(&v, k.ExecBody)
		putFlag(&v, cfCleanShift, k.IsPredicateClean)
		putFlag(&v, cfCondShift, k.Condition)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case LoopStart:
		put(&v, 0, 13, k.Address)
		putFlag(&v, 13, k.IsRepeat)
		put(&v, 16, 5, k.LoopID)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case LoopEnd:
		put(&v, 0, 13, k.Address)
		put(&v, 16, 5, k.LoopID)
		putFlag(&v, 21, k.IsPredicatedBreak)
		putFlag(&v, cfCondShift, k.Condition)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case CondJmp:
		put(&v, 0, 13, k.Address)
		putFlag(&v, 13, k.IsUnconditional)
		putFlag(&v, 14, k.IsPredicated)
		putFlag(&v, 33, k.Direction)
		put(&v, cfBoolShift, 8, k.BoolAddress)
		putFlag(&v, cfCondShift, k.Condition)
		putFlag(&v, cfAbsShift, k.AbsoluteAddressing)
	case Alloc:
		put(&v, 0, 3, k.Size)
		putFlag(&v, 40, k.IsUnserialized)
		put(&v, 41, 2, k.AllocType)
	}
	return v
}

func encodeExecBody(v *uint64, b ExecBody) {
	put(v, 0, 12, b.Address)
	put(v, 12, 3, b.Count)
	putFlag(v, 15, b.IsYield)
	put(v, 16, 12, b.Sequence)
	put(v, 28, 6, b.VertexCache)
}

// EncodeControlFlowPair packs two control-flow instructions into one slot.
func EncodeControlFlowPair(a, b ControlFlow) Slot {
	v0, v1 := a.Encode(), b.Encode()
	lo0, hi0 := uint32(v0), uint32(v0>>32)&0xFFFF
	lo1, hi1 := uint32(v1), uint32(v1>>32)&0xFFFF
	return Slot{
		lo0,
		hi0 | lo1<<16,
		lo1>>16 | hi1<<16,
	}
}

// Encode packs the ALU instruction into a slot.
func (a ALU) Encode() Slot {
	var w0, w1, w2 uint64

	put(&w0, 0, 6, a.VectorDest)
	putFlag(&w0, 6, a.VectorDestRelative)
	putFlag(&w0, 7, a.AbsConstants)
	put(&w0, 8, 6, a.ScalarDest)
	putFlag(&w0, 14, a.ScalarDestRelative)
	putFlag(&w0, 15, a.ExportData)
	put(&w0, 16, 4, a.VectorWriteMask)
	put(&w0, 20, 4, a.ScalarWriteMask)
	putFlag(&w0, 24, a.VectorSaturate)
	putFlag(&w0, 25, a.ScalarSaturate)
	put(&w0, 26, 6, uint32(a.ScalarOpcode))

	put(&w1, 0, 8, a.Src3Swizzle)
	put(&w1, 8, 8, a.Src2Swizzle)
	put(&w1, 16, 8, a.Src1Swizzle)
	putFlag(&w1, 24, a.Src3Negate)
	putFlag(&w1, 25, a.Src2Negate)
	putFlag(&w1, 26, a.Src1Negate)
	putFlag(&w1, 27, a.PredicateCondition)
	putFlag(&w1, 28, a.IsPredicated)
	putFlag(&w1, 29, a.ConstAddressRegisterRelative)
	putFlag(&w1, 30, a.Const1Relative)
	putFlag(&w1, 31, a.Const0Relative)

	put(&w2, 0, 8, a.Src3Register)
	put(&w2, 8, 8, a.Src2Register)
	put(&w2, 16, 8, a.Src1Register)
	put(&w2, 24, 5, uint32(a.VectorOpcode))
	putFlag(&w2, 29, a.Src3Select)
	putFlag(&w2, 30, a.Src2Select)
	putFlag(&w2, 31, a.Src1Select)

	return Slot{uint32(w0), uint32(w1), uint32(w2)}
}

// Encode packs the vertex fetch into a slot.
func (f VertexFetch) Encode() Slot {
	var w0, w1, w2 uint64

	put(&w0, 0, 5, uint32(f.Opcode))
	put(&w0, 5, 6, f.SrcRegister)
	putFlag(&w0, 11, f.SrcRegisterAm)
	put(&w0, 12, 6, f.DstRegister)
	putFlag(&w0, 18, f.DstRegisterAm)
	putFlag(&w0, 19, f.MustBeOne)
	put(&w0, 20, 5, f.ConstIndex)
	put(&w0, 25, 2, f.ConstIndexSelect)
	put(&w0, 27, 3, f.PrefetchCount)
	put(&w0, 30, 2, f.SrcSwizzle)

	put(&w1, 0, 12, f.DstSwizzle)
	putFlag(&w1, 12, f.FormatCompAll)
	putFlag(&w1, 13, f.NumFormatAll)
	putFlag(&w1, 14, f.SignedRfModeAll)
	putFlag(&w1, 15, f.IsIndexRounded)
	put(&w1, 16, 6, f.Format)
	put(&w1, 24, 6, uint32(f.ExpAdjust))
	putFlag(&w1, 30, f.IsMiniFetch)
	putFlag(&w1, 31, f.IsPredicated)

	put(&w2, 0, 8, f.Stride)
	put(&w2, 8, 23, uint32(f.Offset))
	putFlag(&w2, 31, f.PredicateCondition)

	return Slot{uint32(w0), uint32(w1), uint32(w2)}
}

// Encode packs the texture fetch into a slot.
func (f TextureFetch) Encode() Slot {
	var w0, w1, w2 uint64

	put(&w0, 0, 5, uint32(f.Opcode))
	put(&w0, 5, 6, f.SrcRegister)
	putFlag(&w0, 11, f.SrcRegisterAm)
	put(&w0, 12, 6, f.DstRegister)
	putFlag(&w0, 18, f.DstRegisterAm)
	putFlag(&w0, 19, f.FetchValidOnly)
	put(&w0, 20, 5, f.ConstIndex)
	putFlag(&w0, 25, f.TexCoordDenorm)
	put(&w0, 26, 6, f.SrcSwizzle)

	put(&w1, 0, 12, f.DstSwizzle)
	put(&w1, 12, 2, f.MagFilter)
	put(&w1, 14, 2, f.MinFilter)
	put(&w1, 16, 2, f.MipFilter)
	put(&w1, 18, 3, f.AnisoFilter)
	put(&w1, 21, 3, f.ArbitraryFilter)
	put(&w1, 24, 2, f.VolMagFilter)
	put(&w1, 26, 2, f.VolMinFilter)
	putFlag(&w1, 28, f.UseCompLod)
	putFlag(&w1, 29, f.UseRegLod)
	putFlag(&w1, 31, f.IsPredicated)

	putFlag(&w2, 0, f.UseRegGradients)
	putFlag(&w2, 1, f.SampleLocation)
	put(&w2, 2, 7, uint32(f.LodBias))
	put(&w2, 14, 2, uint32(f.Dimension))
	put(&w2, 16, 5, uint32(f.OffsetX))
	put(&w2, 21, 5, uint32(f.OffsetY))
	put(&w2, 26, 5, uint32(f.OffsetZ))
	putFlag(&w2, 31, f.PredicateCondition)

	return Slot{uint32(w0), uint32(w1), uint32(w2)}
}
