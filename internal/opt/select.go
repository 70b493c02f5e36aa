package opt

import (
	"fmt"
	"math/bits"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// literalUsesThreshold is the number of uses below which a constant is turned into a literal of its users
// rather than kept in a register.
const literalUsesThreshold = 4

// passSelectOpt walks the program backward, removing the dead instructions and choosing the final form of
// the live ones now that all their users are known.
func passSelectOpt(ctx *optCtx) {
	for bi := len(ctx.prog.Blocks) - 1; bi >= 0; bi-- {
		blk := ctx.prog.Blocks[bi]
		ctx.fpMode = blk.FPMode
		for i := len(blk.Instructions) - 1; i >= 0; i-- {
			instr := blk.Instructions[i]
			if instr == nil {
				continue
			}
			if ctx.isDead(instr) {
				ctx.log.Rewrite(logging.PassScopeSelect, "removed %s", instr)
				blk.Instructions[i] = nil
				continue
			}
			blk.Instructions[i] = ctx.selectInstruction(instr)
		}
		blk.Compact()
	}
}

func (ctx *optCtx) selectInstruction(instr *ir.Instruction) *ir.Instruction {
	instr = ctx.revertCombined(instr)
	ctx.markSCCNeeded(instr)

	if n := ctx.narrowUniformBitwise(instr); n != nil {
		return n
	}
	if instr.Opcode == ir.OpcodePSplitVector {
		if n := ctx.narrowSplitVector(instr); n != nil {
			return n
		}
		return instr
	}
	if !instr.IsVALU() && !instr.IsSALU() {
		return instr
	}

	if n := ctx.selectMed3Clamp(instr); n != nil {
		instr = n
	}
	if n := ctx.selectConvertToMix(instr); n != nil {
		instr = n
	}
	if n := ctx.foldDPPMov(instr); n != nil {
		instr = n
	}
	return ctx.chooseLiterals(instr)
}

// revertCombined undoes the fusion which produced the instruction if the producer it subsumed is still
// needed by other instructions: keeping both would compute the product twice.
func (ctx *optCtx) revertCombined(instr *ir.Instruction) *ir.Instruction {
	if len(instr.Defs) == 0 || !instr.Defs[0].IsTemp() {
		return instr
	}
	info := &ctx.info[instr.Defs[0].TempID()]
	if !info.isCombined() {
		return instr
	}
	rec := ctx.combined[info.val]
	info.clear()
	if ctx.uses[rec.subsumed] == 0 {
		return instr
	}
	ctx.replaceUses(instr, rec.orig)
	ctx.setProducer(rec.orig)
	ctx.logRewrite(logging.PassScopeSelect, instr, rec.orig)
	return rec.orig
}

// markSCCNeeded records the scc values which must stay in scc because they are read as a condition.
func (ctx *optCtx) markSCCNeeded(instr *ir.Instruction) {
	var cond ir.Operand
	switch instr.Opcode {
	case ir.OpcodePCbranchZ, ir.OpcodePCbranchNz:
		cond = instr.Operands[0]
	case ir.OpcodeSCselectB32, ir.OpcodeSCselectB64:
		cond = instr.Operands[2]
	default:
		return
	}
	if cond.IsTemp() {
		ctx.info[cond.TempID()].setSCCNeeded()
	}
}

// narrowUniformBitwise rewrites a bitwise operation on uniform booleans whose lane mask result is unused
// into a 32-bit operation on their scc values. If the scc result isn't needed as a condition, the result
// is moved to the SGPR definition so that scc is free.
func (ctx *optCtx) narrowUniformBitwise(instr *ir.Instruction) *ir.Instruction {
	if len(instr.Defs) != 2 || !instr.Defs[0].IsTemp() || !instr.Defs[1].IsTemp() {
		return nil
	}
	def, scc := instr.Defs[0], instr.Defs[1]
	if ctx.uses[def.TempID()] != 0 || ctx.uses[scc.TempID()] == 0 || !ctx.info[def.TempID()].isUniformBitwise() {
		return nil
	}
	ops := make([]ir.Operand, len(instr.Operands))
	for i, op := range instr.Operands {
		t, ok := ctx.sccOf(op)
		if !ok {
			return nil
		}
		ops[i] = ir.OperandTemp(t)
	}

	var op ir.Opcode
	switch instr.Opcode {
	case ir.OpcodeSAndB32, ir.OpcodeSAndB64:
		op = ir.OpcodeSAndB32
	case ir.OpcodeSOrB32, ir.OpcodeSOrB64:
		op = ir.OpcodeSOrB32
	case ir.OpcodeSXorB32, ir.OpcodeSXorB64:
		// |a - b| is a ^ b for booleans.
		op = ir.OpcodeSAbsdiffI32
	case ir.OpcodeSNotB32, ir.OpcodeSNotB64:
		op = ir.OpcodeSAbsdiffI32
		ops = append(ops, ir.OperandC32(1))
	default:
		return nil
	}

	dst := ctx.allocateTemp(ir.RegClassS1)
	defs := []ir.Definition{ir.NewDefinition(dst), ir.NewFixedDefinition(scc.Temp(), ir.RegSCC)}
	if !ctx.info[scc.TempID()].isSCCNeeded() {
		defs[0], defs[1] = ir.NewDefinition(scc.Temp()), ir.NewFixedDefinition(dst, ir.RegSCC)
	}
	n := ctx.prog.NewInstruction(op, defs, ops...)
	n.PassFlags = instr.PassFlags
	ctx.setProducer(n)
	ctx.replaceUses(instr, n)
	ctx.logRewrite(logging.PassScopeSelect, instr, n)
	return n
}

// narrowSplitVector replaces a split_vector with a single used definition by a copy of the matching
// component of the create_vector it splits, or by an extract_vector.
func (ctx *optCtx) narrowSplitVector(instr *ir.Instruction) *ir.Instruction {
	used := -1
	for i, def := range instr.Defs {
		if def.IsTemp() && ctx.uses[def.TempID()] > 0 {
			if used >= 0 {
				return nil
			}
			used = i
		}
	}
	if used < 0 || !instr.Operands[0].IsTemp() {
		return nil
	}
	def := instr.Defs[used]
	offset := 0
	for _, d := range instr.Defs[:used] {
		offset += d.Bytes()
	}

	var n *ir.Instruction
	if vec := ctx.producer(instr.Operands[0].TempID()); vec != nil && vec.Opcode == ir.OpcodePCreateVector {
		pos := 0
		for _, op := range vec.Operands {
			if pos == offset && op.Bytes() == def.Bytes() {
				n = ctx.prog.NewInstruction(ir.OpcodePParallelcopy, []ir.Definition{def}, op)
				break
			}
			pos += op.Bytes()
		}
	}
	if n == nil {
		if offset%def.Bytes() != 0 {
			return nil
		}
		for _, d := range instr.Defs {
			if d.Bytes() != def.Bytes() {
				return nil
			}
		}
		n = ctx.prog.NewInstruction(ir.OpcodePExtractVector, []ir.Definition{def},
			instr.Operands[0], ir.OperandC32(uint32(used)))
	}
	n.PassFlags = instr.PassFlags
	ctx.setProducer(n)
	ctx.replaceUses(instr, n)
	ctx.logRewrite(logging.PassScopeSelect, instr, n)
	return n
}

// selectMed3Clamp turns med3(x, 0, 1.0) into add(x, 0) with clamp, which can be dual issued.
func (ctx *optCtx) selectMed3Clamp(instr *ir.Instruction) *ir.Instruction {
	if instr.Opcode != ir.OpcodeVMed3F32 || ctx.target.Gen < ir.GenGFX11 || instr.Defs[0].IsSZPreserve() {
		return nil
	}
	info, ok := gatherInfo(ctx, instr)
	if !ok || info.omod != 0 || info.clamp {
		return nil
	}
	typ := ir.ALUType{Base: ir.BaseTypeFloat, BitSize: 32}
	x, zero, one := -1, false, false
	for i := range info.operands {
		o := &info.operands[i]
		switch {
		case o.op.IsConstant() && !o.isDPP() && o.constantAfterMods(ctx, typ) == 0:
			zero = true
		case o.op.IsConstant() && !o.isDPP() && o.constantAfterMods(ctx, typ) == floatOne(32):
			one = true
		case !o.op.IsConstant():
			x = i
		}
	}
	if x < 0 || !zero || !one {
		return nil
	}
	info.opcode = ir.OpcodeVAddF32
	info.operands = []aluOp{info.operands[x], newALUOp(ir.OperandZero(4))}
	info.clamp = true
	return ctx.rewrite(instr, &info, logging.PassScopeSelect)
}

// selectConvertToMix turns the fp16 conversions into v_fma_mix on GFX11 wave64, where the VOP1 conversions
// are slower.
func (ctx *optCtx) selectConvertToMix(instr *ir.Instruction) *ir.Instruction {
	if ctx.target.Gen != ir.GenGFX11 || ctx.target.WaveSize != 64 {
		return nil
	}
	if instr.Opcode != ir.OpcodeVCvtF32F16 && instr.Opcode != ir.OpcodeVCvtF16F32 {
		return nil
	}
	if ctx.fpMode.Denorm32 != ir.DenormKeep || ctx.fpMode.Denorm16_64 != ir.DenormKeep {
		return nil
	}
	info, ok := gatherInfo(ctx, instr)
	if !ok || info.omod != 0 || info.usesInsert() || info.operands[0].isDPP() {
		return nil
	}
	x := info.operands[0]
	if instr.Opcode == ir.OpcodeVCvtF32F16 {
		if x.extract[0].IsDword() {
			x.extract[0] = ir.SelUWord0
		}
		x.f16ToF32 = true
	} else {
		if info.defs[0].Bytes() != 2 {
			return nil
		}
		info.f32ToF16 = true
	}
	info.opcode = ir.OpcodeVMadF32
	if ctx.target.FusedMadMix {
		info.opcode = ir.OpcodeVFmaF32
	}
	// x * 1.0 + -0.0 is x.
	info.operands = []aluOp{x, newALUOp(ir.OperandC32(0x3f800000)), newALUOp(ir.OperandC32(0x80000000))}
	return ctx.rewrite(instr, &info, logging.PassScopeSelect)
}

// foldDPPMov folds a v_mov_b32 with DPP whose only user is the instruction into the user's operand.
func (ctx *optCtx) foldDPPMov(instr *ir.Instruction) *ir.Instruction {
	if instr.IsDPP() || !instr.IsVALU() || !ctx.target.HasDPP() {
		return nil
	}
	for i, op := range instr.Operands {
		if i >= 2 || !ctx.hasSingleUse(op) {
			continue
		}
		mov := ctx.producer(op.TempID())
		if mov == nil || mov.Opcode != ir.OpcodeVMovB32 || !mov.IsDPP() || mov.PassFlags != instr.PassFlags {
			continue
		}
		movInfo, ok := gatherInfo(ctx, mov)
		if !ok {
			continue
		}
		info, ok := gatherInfo(ctx, instr)
		if !ok || info.operands[i].isDPP() || !info.operands[i].extract[0].IsDword() {
			continue
		}
		src := movInfo.operands[0]
		o := &info.operands[i]
		o.op, o.dpp16, o.dpp8, o.bc, o.fi, o.dppCtrl = src.op, src.dpp16, src.dpp8, src.bc, src.fi, src.dppCtrl
		if i != 0 && !info.swapOperands(0, i) {
			continue
		}
		if n := ctx.rewrite(instr, &info, logging.PassScopeSelect); n != nil {
			return n
		}
	}
	return nil
}

// chooseLiterals decides which constant operands become literals of the instruction. A choice which
// several literals or a multiply-add literal form depend on, or which removes the last use of the constant,
// is materialized right away. Otherwise it is recorded in the use counts only: the operands whose constant
// ends up with no uses are substituted by the literal finalization.
func (ctx *optCtx) chooseLiterals(instr *ir.Instruction) *ir.Instruction {
	if instr.IsSDWA() || instr.IsDPP() {
		return instr
	}
	var cands []int
	for i, op := range instr.Operands {
		if !op.IsTemp() || op.IsFixed() || op.Bytes() != 4 && op.Bytes() != 2 {
			continue
		}
		if fact := &ctx.info[op.TempID()]; fact.isConstant() {
			cands = append(cands, i)
		}
	}
	if len(cands) == 0 || len(cands) > 3 {
		return instr
	}
	info, ok := gatherInfo(ctx, instr)
	if !ok {
		return instr
	}

	withLiterals := func(subset uint) (aluInfo, int) {
		cand := info.clone()
		uses := 0
		for j, idx := range cands {
			if subset&(1<<j) == 0 {
				continue
			}
			t := instr.Operands[idx].Temp()
			cand.operands[idx].op = ir.OperandGetConst(ctx.target.Gen, ctx.info[t.ID()].val, t.Bytes())
			uses += ctx.uses[t.ID()]
		}
		return cand, uses
	}

	var best uint
	bestUses, force := literalUsesThreshold, false
	for subset := uint(1); subset < 1<<len(cands); subset++ {
		cand, uses := withLiterals(subset)
		if !isValid(ctx, &cand) {
			continue
		}
		switch {
		case isMadLiteralForm(cand.opcode), bits.OnesCount(subset) > 1:
			if !force || uses < bestUses {
				best, bestUses, force = subset, uses, true
			}
		case !force && uses < bestUses:
			best, bestUses = subset, uses
		}
	}
	if best == 0 {
		return instr
	}
	for j, idx := range cands {
		if best&(1<<j) != 0 {
			t := instr.Operands[idx].Temp()
			ctx.uses[t.ID()]--
			ctx.log.Rewrite(logging.PassScopeSelect, "literal %s for operand %d of %s", t, idx, instr)
		}
	}
	if !force && bestUses != 1 {
		return instr
	}

	cand, _ := withLiterals(best)
	if !isValid(ctx, &cand) {
		panic(fmt.Sprintf("BUG: literals chosen for %s can't be encoded", instr))
	}
	n := ctx.commit(&cand)
	ctx.logRewrite(logging.PassScopeSelect, instr, n)
	return n
}
