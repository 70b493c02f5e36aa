package opt

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// combinePattern fuses the producer of one operand into the consumer.
type combinePattern struct {
	// producer is the opcode of the producer's canonical descriptor, or OpcodeInvalid for any.
	producer ir.Opcode
	// operands is the bitmask of the consumer's operands which may read the producer, or 0 for any.
	operands uint8
	// revertible is true if the producer may have other uses: the fusion is undone by the selector
	// if the producer is still needed.
	revertible bool
	fn         func(ctx *optCtx, f *fusion) (aluInfo, bool)
}

// combinePatternsOf returns the patterns of the consumer opcode, in the order they are tried.
func combinePatternsOf(op ir.Opcode) []combinePattern {
	return patternTable[op]
}

var patternTable = map[ir.Opcode][]combinePattern{}

func addPatterns(consumer ir.Opcode, pats ...combinePattern) {
	patternTable[consumer] = append(patternTable[consumer], pats...)
}

// threeOp fuses a two-operand producer into a two-operand consumer, the operands of the result being
// picked from [producer op0, producer op1, other] by the swizzle.
func threeOp(producer, result ir.Opcode, swizzle string) combinePattern {
	return combinePattern{producer: producer, fn: func(_ *optCtx, f *fusion) (aluInfo, bool) {
		if len(f.prod.operands) != 2 || len(f.consumer.operands) != 2 {
			return aluInfo{}, false
		}
		return f.result(result, f.swizzle(swizzle)...), true
	}}
}

func init() {
	// Multiply-add.
	for _, add := range []ir.Opcode{ir.OpcodeVAddF32, ir.OpcodeVAddF16, ir.OpcodeVAddF64} {
		addPatterns(add, combinePattern{revertible: true, fn: fuseMulAdd})
	}

	// Three operand min/max and med3.
	for _, fam := range minMaxFamilies {
		fam := fam
		addPatterns(fam.max,
			threeOp(fam.max, fam.max3, "012"),
			threeOp(fam.min, fam.minmax, "012"),
			combinePattern{producer: fam.min, fn: fam.fuseMed3},
		)
		addPatterns(fam.min,
			threeOp(fam.min, fam.min3, "012"),
			threeOp(fam.max, fam.maxmin, "012"),
			combinePattern{producer: fam.max, fn: fam.fuseMed3},
		)
	}

	addPatterns(ir.OpcodeVMulF32, combinePattern{producer: ir.OpcodeVCndmaskB32, fn: fuseMulCndmask})

	addPatterns(ir.OpcodeVOrB32,
		threeOp(ir.OpcodeVOrB32, ir.OpcodeVOr3B32, "012"),
		threeOp(ir.OpcodeVAndB32, ir.OpcodeVAndOrB32, "012"),
		threeOp(ir.OpcodeVLshlrevB32, ir.OpcodeVLshlOrB32, "102"),
		threeOp(ir.OpcodeSLshlB32, ir.OpcodeVLshlOrB32, "012"),
		combinePattern{producer: ir.OpcodeVNotB32, fn: fuseNotBfi(true)},
	)
	addPatterns(ir.OpcodeVAndB32, combinePattern{producer: ir.OpcodeVNotB32, fn: fuseNotBfi(false)})
	addPatterns(ir.OpcodeVXorB32,
		threeOp(ir.OpcodeVXorB32, ir.OpcodeVXor3B32, "012"),
		combinePattern{producer: ir.OpcodeVNotB32, fn: fuseNot(ir.OpcodeVXnorB32, true)},
	)

	addPatterns(ir.OpcodeVAddU32,
		threeOp(ir.OpcodeVMulU32U24, ir.OpcodeVMadU32U24, "012"),
		threeOp(ir.OpcodeVMulI32I24, ir.OpcodeVMadI32I24, "012"),
		threeOp(ir.OpcodeVXorB32, ir.OpcodeVXadU32, "012"),
		threeOp(ir.OpcodeVAddU32, ir.OpcodeVAdd3U32, "012"),
		threeOp(ir.OpcodeVLshlrevB32, ir.OpcodeVLshlAddU32, "102"),
		threeOp(ir.OpcodeSLshlB32, ir.OpcodeVLshlAddU32, "012"),
		combinePattern{producer: ir.OpcodeSMulI32, fn: fuseScalarMul24},
		combinePattern{producer: ir.OpcodeVMadU32U16, fn: fuseMadU16Addend},
	)
	addPatterns(ir.OpcodeVSubU32,
		combinePattern{producer: ir.OpcodeVMulU32U24, operands: 0b10, fn: fuseSubMul},
		combinePattern{producer: ir.OpcodeVLshlrevB32, operands: 0b10, fn: fuseSubMul},
	)
	addPatterns(ir.OpcodeVLshlrevB32, combinePattern{
		producer: ir.OpcodeVAddU32, operands: 0b10,
		fn: threeOp(ir.OpcodeVAddU32, ir.OpcodeVAddLshlU32, "012").fn,
	})

	addPatterns(ir.OpcodeSAddU32, combinePattern{producer: ir.OpcodeSLshlB32, fn: fuseScalarLshlAdd})
	addPatterns(ir.OpcodeSAndB32, combinePattern{producer: ir.OpcodeSNotB32, fn: fuseNot(ir.OpcodeSAndn2B32, false)})
	addPatterns(ir.OpcodeSAndB64, combinePattern{producer: ir.OpcodeSNotB64, fn: fuseNot(ir.OpcodeSAndn2B64, false)})
	addPatterns(ir.OpcodeSOrB32, combinePattern{producer: ir.OpcodeSNotB32, fn: fuseNot(ir.OpcodeSOrn2B32, false)})
	addPatterns(ir.OpcodeSOrB64, combinePattern{producer: ir.OpcodeSNotB64, fn: fuseNot(ir.OpcodeSOrn2B64, false)})
	addPatterns(ir.OpcodeSXorB32, combinePattern{producer: ir.OpcodeSNotB32, fn: fuseNot(ir.OpcodeSXnorB32, true)})
	addPatterns(ir.OpcodeSXorB64, combinePattern{producer: ir.OpcodeSNotB64, fn: fuseNot(ir.OpcodeSXnorB64, true)})
	addPatterns(ir.OpcodeSBcnt1I32B32, combinePattern{producer: ir.OpcodeSNotB32, fn: fuseBcnt0})

	addPatterns(ir.OpcodeVCndmaskB32,
		combinePattern{producer: ir.OpcodeSNotB32, operands: 0b100, fn: fuseCndmaskNot},
		combinePattern{producer: ir.OpcodeSNotB64, operands: 0b100, fn: fuseCndmaskNot},
	)

	for _, op := range []ir.Opcode{ir.OpcodeVAddF32, ir.OpcodeVMulF32, ir.OpcodeVFmaF32, ir.OpcodeVMadF32} {
		addPatterns(op, combinePattern{producer: ir.OpcodeVCvtF32F16, fn: fuseF16ToF32})
	}
}

// fuseMulAdd fuses add(mul(a, b), c) into a multiply-add. v_mad_f32 rounds like the separate operations,
// so it is the only option for precise results.
func fuseMulAdd(ctx *optCtx, f *fusion) (aluInfo, bool) {
	c := f.consumer
	precise := c.defs[0].IsPrecise() || f.producer.Defs[0].IsPrecise()
	if f.prod.opcode != mulOpcodeOf(fmaOpcodeOfAdd(c.opcode)) || len(f.prod.operands) != 2 {
		return aluInfo{}, false
	}
	op := fmaOpcodeOfAdd(c.opcode)
	if op == ir.OpcodeVFmaF32 {
		mad := ctx.target.HasMadF32() && ctx.fpMode.Denorm32 == ir.DenormFlush
		switch {
		case mad && (precise || !ctx.target.FastFMA32):
			op = ir.OpcodeVMadF32
		case precise:
			return aluInfo{}, false
		}
	} else if precise {
		return aluInfo{}, false
	}
	return f.result(op, f.swizzle("012")...), true
}

func fmaOpcodeOfAdd(add ir.Opcode) ir.Opcode {
	switch add {
	case ir.OpcodeVAddF16:
		return ir.OpcodeVFmaF16
	case ir.OpcodeVAddF64:
		return ir.OpcodeVFmaF64
	default:
		return ir.OpcodeVFmaF32
	}
}

// minMaxFamily is the set of min/max opcodes of one type.
type minMaxFamily struct {
	typ                  ir.ALUType
	min, max, min3, max3 ir.Opcode
	med3, minmax, maxmin ir.Opcode
}

var minMaxFamilies = []minMaxFamily{
	{
		typ: ir.ALUType{Base: ir.BaseTypeFloat, BitSize: 32},
		min: ir.OpcodeVMinF32, max: ir.OpcodeVMaxF32, min3: ir.OpcodeVMin3F32, max3: ir.OpcodeVMax3F32,
		med3: ir.OpcodeVMed3F32, minmax: ir.OpcodeVMinmaxF32, maxmin: ir.OpcodeVMaxminF32,
	},
	{
		typ: ir.ALUType{Base: ir.BaseTypeUint, BitSize: 32},
		min: ir.OpcodeVMinU32, max: ir.OpcodeVMaxU32, min3: ir.OpcodeVMin3U32, max3: ir.OpcodeVMax3U32,
		med3: ir.OpcodeVMed3U32, minmax: ir.OpcodeVMinmaxU32, maxmin: ir.OpcodeVMaxminU32,
	},
	{
		typ: ir.ALUType{Base: ir.BaseTypeInt, BitSize: 32},
		min: ir.OpcodeVMinI32, max: ir.OpcodeVMaxI32, min3: ir.OpcodeVMin3I32, max3: ir.OpcodeVMax3I32,
		med3: ir.OpcodeVMed3I32, minmax: ir.OpcodeVMinmaxI32, maxmin: ir.OpcodeVMaxminI32,
	},
}

// fuseMed3 fuses min(max(x, lo), hi) and max(min(x, hi), lo) into med3(x, lo, hi) when lo <= hi.
func (fam *minMaxFamily) fuseMed3(ctx *optCtx, f *fusion) (aluInfo, bool) {
	c := f.consumer
	if len(c.operands) != 2 || len(f.prod.operands) != 2 {
		return aluInfo{}, false
	}
	outer := f.other()
	// max(min(NaN, hi), lo) is lo while med3 returns hi.
	if c.opcode == fam.max && fam.typ.IsFloat() && c.defs[0].IsNaNPreserve() {
		return aluInfo{}, false
	}
	x, inner := f.prod.operands[0], f.prod.operands[1]
	if x.op.IsConstant() {
		x, inner = inner, x
	}
	if !inner.op.IsConstant() || !outer.op.IsConstant() || x.op.IsConstant() || inner.isDPP() || outer.isDPP() {
		return aluInfo{}, false
	}
	lo, hi := inner, outer
	if c.opcode == fam.max {
		lo, hi = outer, inner
	}
	if !constantLessEqual(ctx, fam.typ, &lo, &hi) {
		return aluInfo{}, false
	}
	return f.result(fam.med3, x, lo, hi), true
}

// constantLessEqual compares two constant operands after their modifiers.
func constantLessEqual(ctx *optCtx, typ ir.ALUType, a, b *aluOp) bool {
	va, vb := a.constantAfterMods(ctx, typ), b.constantAfterMods(ctx, typ)
	switch typ.Base {
	case ir.BaseTypeFloat:
		return math.Float32frombits(uint32(va)) <= math.Float32frombits(uint32(vb))
	case ir.BaseTypeInt:
		return int32(va) <= int32(vb)
	default:
		return uint32(va) <= uint32(vb)
	}
}

// fuseMulCndmask fuses mul(cndmask(0, 1.0, cond), a) into cndmask(0, a, cond) and
// mul(cndmask(1.0, 0, cond), a) into cndmask(a, 0, cond).
func fuseMulCndmask(ctx *optCtx, f *fusion) (aluInfo, bool) {
	c := f.consumer
	def := c.defs[0]
	if def.IsPrecise() || def.IsSZPreserve() || def.IsNaNPreserve() || def.IsInfPreserve() || c.omod != 0 || c.clamp {
		return aluInfo{}, false
	}
	// The multiplication would flush a denormal a.
	if ctx.fpMode.MustFlushDenorms32 {
		return aluInfo{}, false
	}
	p := &f.prod
	typ := ir.ALUType{Base: ir.BaseTypeFloat, BitSize: 32}
	for i := 0; i < 2; i++ {
		if !p.operands[i].op.IsConstant() || p.operands[i].isDPP() {
			return aluInfo{}, false
		}
	}
	zero := newALUOp(ir.OperandZero(4))
	switch v0, v1 := p.operands[0].constantAfterMods(ctx, typ), p.operands[1].constantAfterMods(ctx, typ); {
	case v0 == 0 && v1 == floatOne(32):
		return f.result(ir.OpcodeVCndmaskB32, zero, f.other(), p.operands[2]), true
	case v0 == floatOne(32) && v1 == 0:
		return f.result(ir.OpcodeVCndmaskB32, f.other(), zero, p.operands[2]), true
	}
	return aluInfo{}, false
}

// fuseNotBfi fuses or(not(a), b) into bfi(a, b, -1) and and(not(a), b) into bfi(a, 0, b).
func fuseNotBfi(or bool) func(*optCtx, *fusion) (aluInfo, bool) {
	return func(_ *optCtx, f *fusion) (aluInfo, bool) {
		a := f.prod.operands[0]
		if or {
			return f.result(ir.OpcodeVBfiB32, a, f.other(), newALUOp(ir.OperandC32(math.MaxUint32))), true
		}
		return f.result(ir.OpcodeVBfiB32, a, newALUOp(ir.OperandZero(4)), f.other()), true
	}
}

// fuseNot fuses a bitwise operation reading not(a) into its inverted-operand form, which reads
// (a, other) if notFirst, or (other, a).
func fuseNot(result ir.Opcode, notFirst bool) func(*optCtx, *fusion) (aluInfo, bool) {
	return func(_ *optCtx, f *fusion) (aluInfo, bool) {
		if len(f.consumer.operands) != 2 {
			return aluInfo{}, false
		}
		a := f.prod.operands[0]
		if notFirst {
			return f.result(result, a, f.other()), true
		}
		return f.result(result, f.other(), a), true
	}
}

func fuseBcnt0(_ *optCtx, f *fusion) (aluInfo, bool) {
	return f.result(ir.OpcodeSBcnt0I32B32, f.prod.operands[0]), true
}

// fuseCndmaskNot selects with the inverted condition by swapping the values.
func fuseCndmaskNot(_ *optCtx, f *fusion) (aluInfo, bool) {
	c := f.consumer
	return f.result(ir.OpcodeVCndmaskB32, c.operands[1], c.operands[0], f.prod.operands[0]), true
}

// fits24 returns true if the operand is known to hold an unsigned 24-bit value.
func fits24(o *aluOp) bool {
	if o.op.IsConstant() {
		return o.op.ConstantValue() < 1<<24
	}
	return o.op.Is24bit() || o.op.Is16bit()
}

// fuseScalarMul24 fuses add(s_mul_i32(a, b), c) into v_mad_u32_u24(a, b, c) when both factors fit in 24 bits.
func fuseScalarMul24(_ *optCtx, f *fusion) (aluInfo, bool) {
	a, b := f.prod.operands[0], f.prod.operands[1]
	if !fits24(&a) || !fits24(&b) {
		return aluInfo{}, false
	}
	return f.result(ir.OpcodeVMadU32U24, a, b, f.other()), true
}

// fuseMadU16Addend replaces the zero addend of v_mad_u32_u16.
func fuseMadU16Addend(ctx *optCtx, f *fusion) (aluInfo, bool) {
	p := &f.prod
	if len(p.operands) != 3 || !p.operands[2].op.IsConstant() || p.operands[2].op.ConstantValue() != 0 {
		return aluInfo{}, false
	}
	return f.result(ir.OpcodeVMadU32U16, p.operands[0], p.operands[1], f.other()), true
}

// fuseSubMul fuses sub(a, mul_u24(x, k)) and sub(a, lshl(x, s)) into mad_i32_i24(x, -k, a) when x is
// a 16-bit value and -k is a signed 24-bit value.
func fuseSubMul(ctx *optCtx, f *fusion) (aluInfo, bool) {
	p := &f.prod
	var x aluOp
	var k uint32
	switch p.opcode {
	case ir.OpcodeVMulU32U24:
		i := slices.IndexFunc(p.operands, func(o aluOp) bool { return o.op.IsConstant() })
		if i < 0 {
			return aluInfo{}, false
		}
		k, x = p.operands[i].op.ConstantValue()&0xffffff, p.operands[1-i]
	case ir.OpcodeVLshlrevB32:
		s := p.operands[0]
		if !s.op.IsConstant() || s.op.ConstantValue() > 23 {
			return aluInfo{}, false
		}
		k, x = 1<<s.op.ConstantValue(), p.operands[1]
	default:
		return aluInfo{}, false
	}
	if !x.op.IsTemp() || !x.op.Is16bit() || x.hasMods() || k > 1<<23 {
		return aluInfo{}, false
	}
	negK := ir.OperandGetConst(ctx.target.Gen, uint64(uint32(-int32(k))), 4)
	return f.result(ir.OpcodeVMadI32I24, x, newALUOp(negK), f.other()), true
}

// fuseScalarLshlAdd fuses s_add_u32(s_lshl_b32(a, n), b) into s_lshlN_add_u32(a, b) for n in 1..4.
func fuseScalarLshlAdd(ctx *optCtx, f *fusion) (aluInfo, bool) {
	c := f.consumer
	if len(c.defs) > 1 && c.defs[1].IsTemp() && ctx.uses[c.defs[1].TempID()] > 0 {
		return aluInfo{}, false
	}
	s := f.prod.operands[1]
	if !s.op.IsConstant() {
		return aluInfo{}, false
	}
	n := s.op.ConstantValue()
	if n < 1 || n > 4 {
		return aluInfo{}, false
	}
	ops := [...]ir.Opcode{ir.OpcodeSLshl1AddU32, ir.OpcodeSLshl2AddU32, ir.OpcodeSLshl3AddU32, ir.OpcodeSLshl4AddU32}
	return f.result(ops[n-1], f.prod.operands[0], f.other()), true
}

// fuseF16ToF32 reads the half directly instead of its conversion, which makes the consumer a mixed
// precision instruction.
func fuseF16ToF32(ctx *optCtx, f *fusion) (aluInfo, bool) {
	if !ctx.target.HasFMAMix() || ctx.fpMode.Denorm16_64&ir.DenormKeepIn == 0 {
		return aluInfo{}, false
	}
	x := f.prod.operands[0]
	if x.f16ToF32 || x.isDPP() {
		return aluInfo{}, false
	}
	switch sel := x.extract[0]; {
	case sel.IsDword():
		x.extract[0] = ir.SelUWord0
	case sel.Size() != 2:
		return aluInfo{}, false
	}
	x.f16ToF32 = true
	c := f.consumer
	ops := slices.Clone(c.operands)
	ops[f.idx] = x
	return f.result(c.opcode, ops...), true
}
