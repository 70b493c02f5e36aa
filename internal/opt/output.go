package opt

import (
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// singleUseProducer returns the producer of the idx-th operand if the consumer is its only user.
func (ctx *optCtx) singleUseProducer(info *aluInfo, idx int) (*ir.Instruction, aluInfo, bool) {
	o := info.operands[idx]
	if !ctx.hasSingleUse(o.op) {
		return nil, aluInfo{}, false
	}
	p := ctx.producer(o.op.TempID())
	if p == nil || p.Opcode.HasSideEffects() || p.IsVALU() && p.PassFlags != info.passFlags {
		return nil, aluInfo{}, false
	}
	for _, def := range p.Defs {
		if def.IsTemp() && def.TempID() != o.op.TempID() && ctx.uses[def.TempID()] > 0 {
			return nil, aluInfo{}, false
		}
	}
	pinfo, ok := gatherInfo(ctx, p)
	return p, pinfo, ok
}

// rewriteOutput returns the producer's descriptor with the consumer's definitions and the given opcode.
func rewriteOutput(consumer, p *aluInfo, op ir.Opcode, ndefs int) aluInfo {
	res := p.clone()
	res.defs = slices.Clone(consumer.defs[:ndefs])
	res.passFlags = consumer.passFlags
	res.opcode = op
	res.format = op.Format()
	return res
}

// applyOutput folds the consumer into the producer of its operand, when the consumer only transforms
// the producer's result. Returns the new instruction, or nil.
func (ctx *optCtx) applyOutput(instr *ir.Instruction, info *aluInfo) *ir.Instruction {
	var res aluInfo
	var ok bool
	switch info.opcode {
	case ir.OpcodeVNotB32:
		res, ok = ctx.outputNotXor(info)
	case ir.OpcodeSNotB32, ir.OpcodeSNotB64:
		res, ok = ctx.outputScalarNot(info)
	case ir.OpcodeSAndn2B32, ir.OpcodeSAndn2B64:
		res, ok = ctx.outputInvertCompare(info)
	case ir.OpcodeSAbsI32:
		res, ok = ctx.outputAbsdiff(info)
	case ir.OpcodeVMed3F32:
		res, ok = ctx.outputClamp(info)
	case ir.OpcodeVMovB32:
		res, ok = ctx.outputInsert(info)
	case ir.OpcodeVCvtF16F32:
		res, ok = ctx.outputF32ToF16(info)
	case ir.OpcodeVMulF32, ir.OpcodeVMulF16:
		res, ok = ctx.outputOmod(info)
	}
	if !ok {
		return nil
	}
	return ctx.rewrite(instr, &res, logging.PassScopeCombine)
}

// plainOperand returns true if the operand reads its register unmodified.
func plainOperand(o *aluOp) bool {
	return o.op.IsTemp() && !o.hasMods()
}

// outputNotXor turns not(xor(a, b)) into xnor(a, b).
func (ctx *optCtx) outputNotXor(info *aluInfo) (aluInfo, bool) {
	if !plainOperand(&info.operands[0]) || info.usesInsert() {
		return aluInfo{}, false
	}
	_, p, ok := ctx.singleUseProducer(info, 0)
	if !ok || p.opcode != ir.OpcodeVXorB32 || p.usesInsert() {
		return aluInfo{}, false
	}
	return rewriteOutput(info, &p, ir.OpcodeVXnorB32, 1), true
}

// outputScalarNot turns not(and/or/xor(a, b)) into nand/nor/xnor(a, b).
func (ctx *optCtx) outputScalarNot(info *aluInfo) (aluInfo, bool) {
	if !info.operands[0].op.IsTemp() {
		return aluInfo{}, false
	}
	_, p, ok := ctx.singleUseProducer(info, 0)
	if !ok {
		return aluInfo{}, false
	}
	switch p.opcode {
	case ir.OpcodeSAndB32, ir.OpcodeSOrB32, ir.OpcodeSXorB32, ir.OpcodeSAndB64, ir.OpcodeSOrB64, ir.OpcodeSXorB64:
	default:
		return aluInfo{}, false
	}
	return rewriteOutput(info, &p, p.opcode.Inverse(), len(info.defs)), true
}

// outputInvertCompare turns andn2(exec, cmp(a, b)) into the inverse compare of the active lanes.
func (ctx *optCtx) outputInvertCompare(info *aluInfo) (aluInfo, bool) {
	if !isExec(info.operands[0].op) || !info.operands[1].op.IsTemp() {
		return aluInfo{}, false
	}
	if len(info.defs) > 1 && info.defs[1].IsTemp() && ctx.uses[info.defs[1].TempID()] > 0 {
		return aluInfo{}, false
	}
	cmp, p, ok := ctx.singleUseProducer(info, 1)
	if !ok || !cmp.Format.Is(ir.FormatVOPC) || cmp.PassFlags != info.passFlags {
		return aluInfo{}, false
	}
	inv := p.opcode.Inverse()
	if inv == ir.OpcodeInvalid || cmp.Defs[0].RegClass() != info.defs[0].RegClass() {
		return aluInfo{}, false
	}
	return rewriteOutput(info, &p, inv, 1), true
}

// outputAbsdiff turns abs(sub(a, b)) into absdiff(a, b), and abs(add(a, c)) into absdiff(a, -c).
func (ctx *optCtx) outputAbsdiff(info *aluInfo) (aluInfo, bool) {
	if !info.operands[0].op.IsTemp() {
		return aluInfo{}, false
	}
	_, p, ok := ctx.singleUseProducer(info, 0)
	if !ok {
		return aluInfo{}, false
	}
	switch p.opcode {
	case ir.OpcodeSSubI32, ir.OpcodeSSubU32:
	case ir.OpcodeSAddI32, ir.OpcodeSAddU32:
		i := slices.IndexFunc(p.operands, func(o aluOp) bool { return o.op.IsConstant() })
		if i < 0 {
			return aluInfo{}, false
		}
		c := p.operands[i].op.ConstantValue()
		p.operands = []aluOp{p.operands[1-i], newALUOp(ir.OperandGetConst(ctx.target.Gen, uint64(-c), 4))}
	default:
		return aluInfo{}, false
	}
	return rewriteOutput(info, &p, ir.OpcodeSAbsdiffI32, len(info.defs)), true
}

// outputClamp turns med3(x, 0, 1.0) into x computed with clamp.
func (ctx *optCtx) outputClamp(info *aluInfo) (aluInfo, bool) {
	if info.omod != 0 || info.clamp || info.usesInsert() {
		return aluInfo{}, false
	}
	typ := ir.ALUType{Base: ir.BaseTypeFloat, BitSize: 32}
	x, zero, one := -1, false, false
	for i := range info.operands {
		o := &info.operands[i]
		switch {
		case o.op.IsConstant() && !o.isDPP():
			switch o.constantAfterMods(ctx, typ) {
			case 0:
				zero = true
			case floatOne(32):
				one = true
			}
		case plainOperand(o) && x < 0:
			x = i
		}
	}
	if x < 0 || !zero || !one {
		return aluInfo{}, false
	}
	_, p, ok := ctx.singleUseProducer(info, x)
	if !ok || !p.opcode.CanUseOutputModifiers() || p.opcode.DefType() != typ || p.clamp || p.usesInsert() || p.f32ToF16 {
		return aluInfo{}, false
	}
	res := rewriteOutput(info, &p, p.opcode, 1)
	res.clamp = true
	return res, true
}

// outputInsert makes the producer write the selection of the destination directly, for p_insert and
// for zero-extending p_extract of the low bits.
func (ctx *optCtx) outputInsert(info *aluInfo) (aluInfo, bool) {
	o := &info.operands[0]
	sel := info.insert
	if !info.usesInsert() {
		sel = o.extract[0]
		if sel.IsDword() || sel.Offset() != 0 || sel.SignExtend() {
			return aluInfo{}, false
		}
	} else if !o.extract[0].IsDword() {
		return aluInfo{}, false
	}
	if !o.op.IsTemp() || o.neg[0] || o.abs[0] || o.isDPP() || o.f16ToF32 || info.omod != 0 || info.clamp {
		return aluInfo{}, false
	}
	prod, p, ok := ctx.singleUseProducer(info, 0)
	if !ok || !prod.IsVALU() || p.usesInsert() || p.f32ToF16 || len(p.defs) != 1 || p.defs[0].Bytes() != 4 {
		return aluInfo{}, false
	}
	res := rewriteOutput(info, &p, p.opcode, 1)
	res.insert = ir.NewSubdwordSel(sel.Size(), sel.Offset(), false)
	return res, true
}

// outputF32ToF16 turns cvt_f16_f32(fma(a, b, c)) into v_fma_mixlo_f16.
func (ctx *optCtx) outputF32ToF16(info *aluInfo) (aluInfo, bool) {
	if !plainOperand(&info.operands[0]) || info.omod != 0 || info.clamp || info.usesInsert() {
		return aluInfo{}, false
	}
	if info.defs[0].Bytes() != 2 || ctx.fpMode.Denorm16_64 != ir.DenormKeep {
		return aluInfo{}, false
	}
	prod, p, ok := ctx.singleUseProducer(info, 0)
	if !ok || !isMixCandidate(p.opcode) || p.omod != 0 || p.usesInsert() || p.f32ToF16 {
		return aluInfo{}, false
	}
	if prod.Defs[0].IsPrecise() || info.defs[0].IsPrecise() {
		return aluInfo{}, false
	}
	res := rewriteOutput(info, &p, p.opcode, 1)
	res.f32ToF16 = true
	return res, true
}

// outputOmod turns mul(x, ±2.0), mul(x, ±4.0) and mul(x, ±0.5) into x computed with the output modifier.
// A negative factor or a negated x is folded into the input modifiers of the producer.
func (ctx *optCtx) outputOmod(info *aluInfo) (aluInfo, bool) {
	if info.omod != 0 || info.usesInsert() || len(info.operands) != 2 {
		return aluInfo{}, false
	}
	typ := info.opcode.OperandType(0)
	bits := int(typ.BitSize)
	for i := 0; i < 2; i++ {
		c, x := &info.operands[i], &info.operands[1-i]
		if !c.op.IsConstant() || c.isDPP() || !x.op.IsTemp() || x.abs[0] || x.f16ToF32 || x.isDPP() || !x.extract[0].IsDword() {
			continue
		}
		v := c.constantAfterMods(ctx, typ)
		negate := x.neg[0] != (v&signBit(bits) != 0)
		var omod uint8
		switch v &^ signBit(bits) {
		case floatConstantBits(2, bits):
			omod = 1
		case floatConstantBits(4, bits):
			omod = 2
		case floatConstantBits(0.5, bits):
			omod = 3
		default:
			continue
		}
		_, p, ok := ctx.singleUseProducer(info, 1-i)
		if !ok || !p.opcode.CanUseOutputModifiers() || p.opcode.DefType() != info.opcode.DefType() {
			return aluInfo{}, false
		}
		if p.omod != 0 || p.clamp || p.usesInsert() || p.f32ToF16 {
			return aluInfo{}, false
		}
		res := rewriteOutput(info, &p, p.opcode, 1)
		if negate && !negateResult(&res) {
			return aluInfo{}, false
		}
		res.omod, res.clamp = omod, info.clamp
		return res, true
	}
	return aluInfo{}, false
}

// negateResult flips the input modifiers of the operands the result is odd in. Zero results lose their sign,
// which the output modifier flushes anyway.
func negateResult(info *aluInfo) bool {
	var idx []int
	switch info.opcode {
	case ir.OpcodeVMulF32, ir.OpcodeVMulF16:
		idx = []int{0}
	case ir.OpcodeVAddF32, ir.OpcodeVAddF16, ir.OpcodeVSubF32, ir.OpcodeVSubF16, ir.OpcodeVSubrevF32, ir.OpcodeVSubrevF16:
		idx = []int{0, 1}
	case ir.OpcodeVFmaF32, ir.OpcodeVFmaF16, ir.OpcodeVMadF32:
		idx = []int{0, 2}
	default:
		return false
	}
	for _, i := range idx {
		info.operands[i].neg[0] = !info.operands[i].neg[0]
	}
	return true
}
