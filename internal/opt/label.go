package opt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/aluapi"
	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// passLabelOpt walks the program forward, recording what is known about every SSA value and folding
// those facts into the operands of later instructions. It never removes instructions.
func passLabelOpt(ctx *optCtx) {
	for _, blk := range ctx.prog.Blocks {
		ctx.fpMode = blk.FPMode
		for i, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			if n := ctx.labelInstruction(instr); n != instr {
				blk.Instructions[i] = n
			}
		}
	}
	ctx.renameLoopHeaderPhis()
}

// labelInstruction propagates the facts into the operands of the instruction, and records the facts of
// its definitions. Returns the instruction replacing it if it was rewritten.
func (ctx *optCtx) labelInstruction(instr *ir.Instruction) *ir.Instruction {
	ctx.setProducer(instr)
	ctx.propagateOperands(instr)

	if instr.IsVALU() || instr.IsSALU() {
		if info, ok := gatherInfo(ctx, instr); ok {
			if legal, changed := propagateTempConst(ctx, &info, false); changed {
				n := ctx.commit(&legal)
				if aluapi.LabelLoggingEnabled {
					fmt.Printf("label: %s -> %s\n", instr, n)
				}
				ctx.log.Rewrite(logging.PassScopeLabel, "%s -> %s", instr, n)
				instr = n
			}
		}
	}

	switch instr.Opcode {
	case ir.OpcodePCreateVector:
		instr = ctx.labelCreateVector(instr)
	case ir.OpcodePSplitVector:
		ctx.labelSplitVector(instr)
	case ir.OpcodePExtractVector:
		instr = ctx.labelExtractVector(instr)
	case ir.OpcodePParallelcopy, ir.OpcodeSMovB32, ir.OpcodeSMovB64, ir.OpcodeVMovB32:
		ctx.labelCopy(instr)
	case ir.OpcodeVMulF16, ir.OpcodeVMulF32, ir.OpcodeVMulF64:
		ctx.labelMul(instr)
	case ir.OpcodeVAddF16, ir.OpcodeVAddF32, ir.OpcodeVAddF64, ir.OpcodeVAddU32, ir.OpcodeSAddU32, ir.OpcodeSAddI32:
		ctx.labelAdd(instr)
	case ir.OpcodeVSubF16, ir.OpcodeVSubF32:
		ctx.labelSub(instr)
	case ir.OpcodeVAndB32, ir.OpcodeVXorB32:
		ctx.labelSignBitOp(instr)
	case ir.OpcodeSAndB32, ir.OpcodeSAndB64:
		if !ctx.labelAndExec(instr) {
			ctx.labelSignBitOp(instr)
			ctx.labelUniformBitwise(instr)
		}
	case ir.OpcodeSOrB32, ir.OpcodeSOrB64:
		ctx.labelUniformBitwise(instr)
	case ir.OpcodeSXorB32, ir.OpcodeSXorB64:
		ctx.labelSignBitOp(instr)
		ctx.labelUniformBitwise(instr)
	case ir.OpcodeSNotB32, ir.OpcodeSNotB64:
		ctx.labelNot(instr)
	case ir.OpcodeSCselectB32, ir.OpcodeSCselectB64:
		ctx.labelCselect(instr)
	case ir.OpcodePExtract:
		ctx.labelExtract(instr)
	}

	ctx.gatherCanonicalized(instr)
	return instr
}

// propagateOperands replaces the operands by the sources of their copies, and by the constants and
// registers they are known to hold where the instruction accepts them as they are.
func (ctx *optCtx) propagateOperands(instr *ir.Instruction) {
	pseudo := instr.Format.Is(ir.FormatPseudo) && !instr.Opcode.IsPhi()
	for i := range instr.Operands {
		op := &instr.Operands[i]
		if !op.IsTemp() {
			continue
		}
		for {
			info := &ctx.info[op.TempID()]
			if !info.isTemp() || info.temp.RegClass() != op.RegClass() {
				break
			}
			op.SetTemp(info.temp)
		}
		if !pseudo || op.IsFixed() {
			continue
		}
		info := &ctx.info[op.TempID()]
		switch {
		case info.isConstant():
			if b := op.Bytes(); b == 2 || b == 4 || b == 8 {
				*op = ir.OperandGetConst(ctx.target.Gen, info.val, b)
			}
		case info.isPhysReg():
			*op = ir.OperandFixed(info.reg, op.RegClass())
		}
	}

	if instr.Opcode == ir.OpcodePCbranchZ || instr.Opcode == ir.OpcodePCbranchNz {
		if op := &instr.Operands[0]; op.IsTemp() && ctx.info[op.TempID()].isSCCInvert() {
			op.SetTemp(ctx.info[op.TempID()].temp)
			if instr.Opcode == ir.OpcodePCbranchZ {
				instr.Opcode = ir.OpcodePCbranchNz
			} else {
				instr.Opcode = ir.OpcodePCbranchZ
			}
		}
	}
}

// constantValueOf returns the value of a constant operand, or of a Temp known to be constant.
func (ctx *optCtx) constantValueOf(op ir.Operand) (uint64, bool) {
	switch {
	case op.IsConstant():
		return op.ConstantValue64(), true
	case op.IsTemp() && ctx.info[op.TempID()].isConstant():
		return ctx.info[op.TempID()].val, true
	}
	return 0, false
}

// setOperandFact records the value of the definition as the value read by the operand.
func (ctx *optCtx) setOperandFact(def ir.Definition, op ir.Operand) {
	if !def.IsTemp() {
		return
	}
	info := &ctx.info[def.TempID()]
	if v, ok := ctx.constantValueOf(op); ok {
		if def.Bytes() <= 8 {
			info.setConstant(ctx.target.Gen, v&widthMask(8*def.Bytes()))
		}
		return
	}
	if op.IsTemp() && op.RegClass() == def.RegClass() {
		info.setTemp(op.Temp())
	}
}

func (ctx *optCtx) labelCreateVector(instr *ir.Instruction) *ir.Instruction {
	// Flatten the nested vectors.
	var ops []ir.Operand
	flattened := false
	for _, op := range instr.Operands {
		if op.IsTemp() {
			if p := ctx.producer(op.TempID()); p != nil && p.Opcode == ir.OpcodePCreateVector {
				ops = append(ops, p.Operands...)
				flattened = true
				continue
			}
		}
		ops = append(ops, op)
	}
	if flattened {
		n := ctx.prog.NewInstruction(ir.OpcodePCreateVector, instr.Defs, ops...)
		n.PassFlags = instr.PassFlags
		ctx.setProducer(n)
		ctx.log.Rewrite(logging.PassScopeLabel, "%s -> %s", instr, n)
		instr = n
	}

	def := instr.Defs[0]
	if len(instr.Operands) == 1 {
		ctx.setOperandFact(def, instr.Operands[0])
		return instr
	}

	// A vector of constants is a constant.
	var v uint64
	shift, constant := 0, true
	for _, op := range instr.Operands {
		c, ok := ctx.constantValueOf(op)
		if !ok || shift+8*op.Bytes() > 64 {
			constant = false
			break
		}
		v |= (c & widthMask(8*op.Bytes())) << shift
		shift += 8 * op.Bytes()
	}
	if constant && def.Bytes() <= 8 {
		ctx.info[def.TempID()].setConstant(ctx.target.Gen, v)
		return instr
	}

	// Recreating the vector which was split is a copy of it.
	first := instr.Operands[0]
	if !first.IsTemp() {
		return instr
	}
	split := ctx.producer(first.TempID())
	if split == nil || split.Opcode != ir.OpcodePSplitVector || len(split.Defs) != len(instr.Operands) {
		return instr
	}
	for i, op := range instr.Operands {
		if !op.IsTemp() || op.Temp() != split.Defs[i].Temp() {
			return instr
		}
	}
	if src := split.Operands[0]; src.IsTemp() && src.RegClass() == def.RegClass() {
		ctx.info[def.TempID()].setTemp(src.Temp())
	}
	return instr
}

func (ctx *optCtx) labelSplitVector(instr *ir.Instruction) {
	src := instr.Operands[0]
	if v, ok := ctx.constantValueOf(src); ok {
		shift := 0
		for _, def := range instr.Defs {
			if def.IsTemp() && shift < 64 {
				ctx.info[def.TempID()].setConstant(ctx.target.Gen, (v>>shift)&widthMask(8*def.Bytes()))
			}
			shift += 8 * def.Bytes()
		}
		return
	}
	if !src.IsTemp() {
		return
	}
	vec := ctx.producer(src.TempID())
	if vec == nil || vec.Opcode != ir.OpcodePCreateVector || len(vec.Operands) != len(instr.Defs) {
		return
	}
	for i, def := range instr.Defs {
		if def.Bytes() != vec.Operands[i].Bytes() {
			return
		}
	}
	for i, def := range instr.Defs {
		ctx.setOperandFact(def, vec.Operands[i])
	}
}

func (ctx *optCtx) labelExtractVector(instr *ir.Instruction) *ir.Instruction {
	src, idxOp := instr.Operands[0], instr.Operands[1]
	if !idxOp.IsConstant() {
		return instr
	}
	def := instr.Defs[0]
	idx := int(idxOp.ConstantValue())
	if v, ok := ctx.constantValueOf(src); ok {
		if shift := idx * 8 * def.Bytes(); shift < 64 {
			ctx.info[def.TempID()].setConstant(ctx.target.Gen, (v>>shift)&widthMask(8*def.Bytes()))
		}
		return instr
	}
	if !src.IsTemp() {
		return instr
	}
	vec := ctx.producer(src.TempID())
	if vec == nil || vec.Opcode != ir.OpcodePCreateVector {
		return instr
	}
	offset := idx * def.Bytes()
	for _, elem := range vec.Operands {
		switch {
		case offset > 0:
			offset -= elem.Bytes()
			continue
		case offset < 0 || elem.Bytes() != def.Bytes():
			return instr
		}
		if !elem.IsTemp() || elem.RegClass() != def.RegClass() {
			ctx.setOperandFact(def, elem)
			return instr
		}
		n := ctx.prog.NewInstruction(ir.OpcodePParallelcopy, instr.Defs, elem)
		n.PassFlags = instr.PassFlags
		ctx.setProducer(n)
		ctx.info[def.TempID()].setTemp(elem.Temp())
		ctx.log.Rewrite(logging.PassScopeLabel, "%s -> %s", instr, n)
		return n
	}
	return instr
}

// labelCopy records the facts of the moves and parallel copies.
func (ctx *optCtx) labelCopy(instr *ir.Instruction) {
	switch instr.Opcode {
	case ir.OpcodeVMovB32:
		if instr.Format != ir.FormatVOP1 && instr.Format != ir.FormatVOP1.AsVOP3() || instr.UsesModifiers() {
			return
		}
	case ir.OpcodePParallelcopy:
		for i, def := range instr.Defs {
			op := instr.Operands[i]
			if !op.IsTemp() && op.IsFixed() && def.IsTemp() {
				ctx.info[def.TempID()].setPhysReg(op.PhysReg())
				continue
			}
			ctx.setOperandFact(def, op)
		}
		return
	}
	ctx.setOperandFact(instr.Defs[0], instr.Operands[0])
}

// floatConstant returns the value of the idx-th operand if it is a constant, with the instruction's
// modifiers of that operand applied.
func (ctx *optCtx) floatConstant(instr *ir.Instruction, idx, bits int) (uint64, bool) {
	v, ok := ctx.constantValueOf(instr.Operands[idx])
	if !ok {
		return 0, false
	}
	v &= widthMask(bits)
	if instr.VALU.Abs[idx] {
		v &^= signBit(bits)
	}
	if instr.VALU.Neg[idx] {
		v ^= signBit(bits)
	}
	return v, true
}

// plainFloatOp returns true if the result of the instruction isn't altered by any output modifier or
// special encoding.
func plainFloatOp(instr *ir.Instruction) bool {
	v := &instr.VALU
	return v.Omod == 0 && !v.Clamp && !instr.IsDPP() && !instr.IsSDWA() && !instr.IsVOP3P() &&
		!v.Opsel[0] && !v.Opsel[1] && !v.Opsel[3]
}

// labelMul records the multiplications by +-1 as copies, negations or absolute values, and by 0 as a constant.
func (ctx *optCtx) labelMul(instr *ir.Instruction) {
	if !plainFloatOp(instr) || !instr.Defs[0].IsTemp() {
		return
	}
	bits := int(instr.Opcode.DefType().BitSize)
	def := instr.Defs[0]
	info := &ctx.info[def.TempID()]
	for i := 0; i < 2; i++ {
		v, ok := ctx.floatConstant(instr, i, bits)
		if !ok {
			continue
		}
		other := instr.Operands[1-i]
		if !other.IsTemp() {
			return
		}
		neg, abs := instr.VALU.Neg[1-i], instr.VALU.Abs[1-i]
		switch v {
		case floatOne(bits):
			switch {
			case neg:
				return
			case abs:
				info.setAbs(other.Temp(), bits)
			case ctx.info[other.TempID()].isCanonicalized(bits) && other.RegClass() == def.RegClass():
				info.setTemp(other.Temp())
			default:
				info.setFcanonicalize(other.Temp())
			}
		case floatOne(bits) | signBit(bits):
			switch {
			case neg:
				return
			case abs:
				info.setNegAbs(other.Temp(), bits)
			default:
				info.setNeg(other.Temp(), bits)
			}
		case 0, signBit(bits):
			if def.IsNaNPreserve() || def.IsInfPreserve() || def.IsSZPreserve() {
				return
			}
			info.setConstant(ctx.target.Gen, 0)
		}
		return
	}
}

// labelAdd records the additions of zero.
func (ctx *optCtx) labelAdd(instr *ir.Instruction) {
	def := instr.Defs[0]
	if !def.IsTemp() {
		return
	}
	info := &ctx.info[def.TempID()]
	typ := instr.Opcode.DefType()
	if !typ.IsFloat() {
		if instr.IsVALU() && instr.UsesModifiers() {
			return
		}
		for i := 0; i < 2; i++ {
			if v, ok := ctx.constantValueOf(instr.Operands[i]); ok && v == 0 {
				ctx.setOperandFact(def, instr.Operands[1-i])
				return
			}
		}
		return
	}

	if !plainFloatOp(instr) {
		return
	}
	bits := int(typ.BitSize)
	for i := 0; i < 2; i++ {
		v, ok := ctx.floatConstant(instr, i, bits)
		other := instr.Operands[1-i]
		if !ok || !other.IsTemp() || instr.VALU.Neg[1-i] || instr.VALU.Abs[1-i] {
			continue
		}
		// x + -0 is x, and so is x + +0 unless x is -0.
		if v == signBit(bits) || (v == 0 && !def.IsSZPreserve()) {
			info.setFcanonicalize(other.Temp())
		}
		return
	}
}

// labelSub records 0 - x as the negation of x.
func (ctx *optCtx) labelSub(instr *ir.Instruction) {
	def := instr.Defs[0]
	if !def.IsTemp() || !plainFloatOp(instr) {
		return
	}
	bits := int(instr.Opcode.DefType().BitSize)
	a, b := instr.Operands[0], instr.Operands[1]
	if v, ok := ctx.floatConstant(instr, 0, bits); ok && v == 0 && b.IsTemp() && !def.IsSZPreserve() {
		switch {
		case instr.VALU.Neg[1]:
		case instr.VALU.Abs[1]:
			ctx.info[def.TempID()].setNegAbs(b.Temp(), bits)
		default:
			ctx.info[def.TempID()].setNeg(b.Temp(), bits)
		}
		return
	}
	if v, ok := ctx.floatConstant(instr, 1, bits); ok && v == 0 && a.IsTemp() && !instr.VALU.Neg[0] && !instr.VALU.Abs[0] {
		ctx.info[def.TempID()].setFcanonicalize(a.Temp())
	}
}

// labelSignBitOp records the bitwise operations on the sign bit as negations and absolute values.
func (ctx *optCtx) labelSignBitOp(instr *ir.Instruction) {
	def := instr.Defs[0]
	if !def.IsTemp() || def.Bytes() != 4 || (instr.IsVALU() && instr.UsesModifiers()) {
		return
	}
	isAnd := instr.Opcode == ir.OpcodeVAndB32 || instr.Opcode == ir.OpcodeSAndB32
	for i := 0; i < 2; i++ {
		v, ok := ctx.constantValueOf(instr.Operands[i])
		other := instr.Operands[1-i]
		if !ok || !other.IsTemp() || other.Bytes() != 4 {
			continue
		}
		info := &ctx.info[def.TempID()]
		switch {
		case isAnd && v == 0x7fffffff:
			info.setAbs(other.Temp(), 32)
		case isAnd && v == 0x7fff:
			info.setAbs(other.Temp(), 16)
		case !isAnd && v == 0x80000000:
			info.setNeg(other.Temp(), 32)
		case !isAnd && v == 0x8000:
			info.setNeg(other.Temp(), 16)
		}
		return
	}
}

// sccOf returns the scc temp which is set iff the uniform lane mask is not zero.
func (ctx *optCtx) sccOf(op ir.Operand) (ir.Temp, bool) {
	if !op.IsTemp() {
		return ir.TempInvalid, false
	}
	info := &ctx.info[op.TempID()]
	switch {
	case info.isUniformBool():
		return info.temp, true
	case info.isUniformBitwise():
		p := ctx.producer(op.TempID())
		if p != nil && len(p.Defs) > 1 && p.Defs[1].IsTemp() {
			return p.Defs[1].Temp(), true
		}
	}
	return ir.TempInvalid, false
}

func isExec(op ir.Operand) bool {
	return !op.IsTemp() && op.IsFixed() && op.PhysReg() == ir.RegExec
}

// labelAndExec records the facts of masking a lane mask with exec. Returns true if the instruction is one.
func (ctx *optCtx) labelAndExec(instr *ir.Instruction) bool {
	var other ir.Operand
	switch {
	case isExec(instr.Operands[0]):
		other = instr.Operands[1]
	case isExec(instr.Operands[1]):
		other = instr.Operands[0]
	default:
		return false
	}
	if !other.IsTemp() {
		return true
	}
	def := instr.Defs[0]
	if scc, ok := ctx.sccOf(other); ok {
		ctx.info[def.TempID()].setUniformBool(scc)
		if len(instr.Defs) > 1 && instr.Defs[1].IsTemp() {
			ctx.info[instr.Defs[1].TempID()].setTemp(scc)
		}
		return true
	}
	// Compares only write the active lanes.
	if p := ctx.producer(other.TempID()); p != nil && p.Format.Is(ir.FormatVOPC) && p.PassFlags == instr.PassFlags &&
		other.RegClass() == def.RegClass() {
		ctx.info[def.TempID()].setTemp(other.Temp())
	}
	return true
}

// labelUniformBitwise records the bitwise operations whose operands are all uniform booleans.
func (ctx *optCtx) labelUniformBitwise(instr *ir.Instruction) {
	if len(instr.Defs) < 2 {
		return
	}
	for _, op := range instr.Operands {
		if _, ok := ctx.sccOf(op); !ok {
			return
		}
	}
	ctx.info[instr.Defs[0].TempID()].setUniformBitwise()
}

func (ctx *optCtx) labelNot(instr *ir.Instruction) {
	scc, ok := ctx.sccOf(instr.Operands[0])
	if !ok || len(instr.Defs) < 2 {
		return
	}
	ctx.info[instr.Defs[0].TempID()].setUniformBitwise()
	ctx.info[instr.Defs[1].TempID()].setSCCInvert(scc)
}

func (ctx *optCtx) labelCselect(instr *ir.Instruction) {
	cond := &instr.Operands[2]
	if cond.IsTemp() && ctx.info[cond.TempID()].isSCCInvert() {
		cond.SetTemp(ctx.info[cond.TempID()].temp)
		instr.Operands[0], instr.Operands[1] = instr.Operands[1], instr.Operands[0]
		ctx.log.Rewrite(logging.PassScopeLabel, "swapped the operands of %s", instr)
	}
	bits := 8 * instr.Defs[0].Bytes()
	a, aok := ctx.constantValueOf(instr.Operands[0])
	b, bok := ctx.constantValueOf(instr.Operands[1])
	if aok && bok && a&widthMask(bits) == widthMask(bits) && b == 0 && cond.IsTemp() {
		ctx.info[instr.Defs[0].TempID()].setUniformBool(cond.Temp())
	}
}

// labelExtract records p_extract: a copy if it reads the whole value, a composition with the extract
// it reads from, or an extract fact.
func (ctx *optCtx) labelExtract(instr *ir.Instruction) {
	sel, ok := extractSel(instr)
	def, src := instr.Defs[0], instr.Operands[0]
	if !ok || !def.IsTemp() || !src.IsTemp() {
		return
	}
	if sel.Offset() == 0 && sel.Size() >= src.Bytes() && src.RegClass() == def.RegClass() {
		ctx.info[def.TempID()].setTemp(src.Temp())
		return
	}
	if p := ctx.producer(src.TempID()); p != nil && p.Opcode == ir.OpcodePExtract {
		inner, iok := extractSel(p)
		composed, cok := extractApplyExtract(inner, sel)
		if iok && cok && p.Operands[0].IsTemp() {
			if composed == inner && p.Defs[0].RegClass() == def.RegClass() {
				ctx.info[def.TempID()].setTemp(p.Defs[0].Temp())
				return
			}
			if composed.Offset()%composed.Size() == 0 {
				instr.Operands[0] = p.Operands[0]
				instr.Operands[1] = ir.OperandC32(uint32(composed.Offset() / composed.Size()))
				instr.Operands[2] = ir.OperandC32(uint32(8 * composed.Size()))
				sext := uint32(0)
				if composed.SignExtend() {
					sext = 1
				}
				instr.Operands[3] = ir.OperandC32(sext)
				ctx.log.Rewrite(logging.PassScopeLabel, "composed %s", instr)
			}
		}
	}
	ctx.info[def.TempID()].setExtract()
}

// producesCanonicalFloat returns true if the results of the opcode are flushed and quieted floats.
func producesCanonicalFloat(op ir.Opcode) bool {
	return op.DefType().IsFloat() && (canEliminateFcanonicalize(op) || !op.CanUseInputModifiers())
}

func (ctx *optCtx) gatherCanonicalized(instr *ir.Instruction) {
	if !instr.IsVALU() || len(instr.Defs) == 0 || !instr.Defs[0].IsTemp() || !producesCanonicalFloat(instr.Opcode) {
		return
	}
	ctx.info[instr.Defs[0].TempID()].setCanonicalized(int(instr.Opcode.DefType().BitSize))
}

// renameLoopHeaderPhis resolves the copies read by the phis of loop headers, which were defined after the
// phis were labeled.
func (ctx *optCtx) renameLoopHeaderPhis() {
	for _, blk := range ctx.prog.Blocks {
		if blk.Kind&ir.BlockKindLoopHeader == 0 {
			continue
		}
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			if !instr.Opcode.IsPhi() {
				break
			}
			for i := range instr.Operands {
				op := &instr.Operands[i]
				for op.IsTemp() {
					info := &ctx.info[op.TempID()]
					if !info.isTemp() || info.temp.RegClass() != op.RegClass() {
						break
					}
					op.SetTemp(info.temp)
				}
			}
		}
	}
}
