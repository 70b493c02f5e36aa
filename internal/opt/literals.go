package opt

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// passApplyLiteralsOpt walks the program forward, substituting the literals chosen by the selector, and
// applying the rewrites which depend on the final operands.
func passApplyLiteralsOpt(ctx *optCtx) {
	for _, blk := range ctx.prog.Blocks {
		ctx.fpMode = blk.FPMode
		ctx.instructions = make([]*ir.Instruction, 0, len(blk.Instructions))
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			if instr.IsVALU() || instr.IsSALU() {
				instr = ctx.applyLiterals(instr)
			}
			if instr.Format == ir.FormatSOPC && ctx.target.HasSOPK() {
				convertSOPCToSOPK(instr)
			}
			if instr.Opcode == ir.OpcodeVFmaMixF32 || instr.Opcode == ir.OpcodeVFmaMixloF16 {
				ctx.optimizeMixAccumulator(instr)
			}
			if instr.Opcode == ir.OpcodeVMulF64 {
				instr = ctx.lowerNegAbsF64(instr)
			}
			ctx.instructions = append(ctx.instructions, instr)
		}
		blk.Instructions = ctx.instructions
	}
	ctx.instructions = nil
}

// applyLiterals substitutes the constants whose every use was turned into a literal.
func (ctx *optCtx) applyLiterals(instr *ir.Instruction) *ir.Instruction {
	chosen := func(op ir.Operand) bool {
		return op.IsTemp() && ctx.uses[op.TempID()] == 0 && ctx.info[op.TempID()].isConstant()
	}
	if slices.IndexFunc(instr.Operands, chosen) < 0 {
		return instr
	}
	info, ok := gatherInfo(ctx, instr)
	if !ok {
		panic("BUG: literal chosen for " + instr.String() + " which has no descriptor")
	}
	for i := range info.operands {
		if o := &info.operands[i]; chosen(o.op) {
			t := o.op.Temp()
			o.op = ir.OperandGetConst(ctx.target.Gen, ctx.info[t.ID()].val, t.Bytes())
		}
	}
	legal := info.clone()
	if !isValid(ctx, &legal) {
		panic(fmt.Sprintf("BUG: literals chosen for %s can't be encoded", instr))
	}
	n := ctx.commit(&legal)
	ctx.logRewrite(logging.PassScopeLiterals, instr, n)
	return n
}

// convertSOPCToSOPK turns a scalar compare with a 16-bit literal into its SOPK form.
func convertSOPCToSOPK(instr *ir.Instruction) {
	if instr.Opcode < ir.OpcodeSCmpEqI32 || instr.Opcode > ir.OpcodeSCmpLeU32 {
		return
	}
	if instr.Operands[0].IsLiteral() {
		instr.Operands[0], instr.Operands[1] = instr.Operands[1], instr.Operands[0]
		if s := instr.Opcode.Swapped(0, 1); s != ir.OpcodeInvalid {
			instr.Opcode = s
		}
	}
	if !instr.Operands[1].IsLiteral() || !instr.Operands[0].IsTemp() {
		return
	}

	v := instr.Operands[1].ConstantValue()
	const i16Mask = 0xffff8000
	isI16 := v&i16Mask == 0 || v&i16Mask == i16Mask
	isU16 := v&0xffff0000 == 0
	signed := instr.Opcode <= ir.OpcodeSCmpLeI32
	switch {
	case !isI16 && !isU16:
		return
	case !isI16 && signed:
		// Equality doesn't depend on the signedness.
		switch instr.Opcode {
		case ir.OpcodeSCmpEqI32:
			instr.Opcode = ir.OpcodeSCmpEqU32
		case ir.OpcodeSCmpLgI32:
			instr.Opcode = ir.OpcodeSCmpLgU32
		default:
			return
		}
	case !isU16 && !signed:
		switch instr.Opcode {
		case ir.OpcodeSCmpEqU32:
			instr.Opcode = ir.OpcodeSCmpEqI32
		case ir.OpcodeSCmpLgU32:
			instr.Opcode = ir.OpcodeSCmpLgI32
		default:
			return
		}
	}

	instr.Opcode = ir.OpcodeSCmpkEqI32 + (instr.Opcode - ir.OpcodeSCmpEqI32)
	instr.Format = ir.FormatSOPK
	instr.Imm = v & 0xffff
	instr.Operands = instr.Operands[:1]
}

// swapVALUOperands swaps two operands along with their modifiers.
func swapVALUOperands(instr *ir.Instruction, i, j int) {
	instr.Operands[i], instr.Operands[j] = instr.Operands[j], instr.Operands[i]
	v := &instr.VALU
	v.Neg[i], v.Neg[j] = v.Neg[j], v.Neg[i]
	v.Abs[i], v.Abs[j] = v.Abs[j], v.Abs[i]
	v.Opsel[i], v.Opsel[j] = v.Opsel[j], v.Opsel[i]
	v.OpselLo[i], v.OpselLo[j] = v.OpselLo[j], v.OpselLo[i]
	v.OpselHi[i], v.OpselHi[j] = v.OpselHi[j], v.OpselHi[i]
}

// optimizeMixAccumulator moves the operand of the destination's precision to the accumulator, which lets
// GFX11 dual issue v_fma_mix. For v_fma_mixlo_f16, a constant addend is narrowed to fp16 when exact.
func (ctx *optCtx) optimizeMixAccumulator(instr *ir.Instruction) {
	f2f16 := instr.Opcode == ir.OpcodeVFmaMixloF16
	v := &instr.VALU
	if v.OpselHi[2] == f2f16 || instr.IsDPP() {
		return
	}

	isAdd := false
	for i := 0; i < 2; i++ {
		one := uint32(0x3f800000)
		if v.OpselHi[i] {
			one = 0x3800
		}
		isAdd = instr.Operands[i].ConstantEquals(one) && !v.Neg[i] && !v.OpselLo[i]
		if isAdd {
			swapVALUOperands(instr, 0, i)
			break
		}
	}
	if isAdd && v.OpselHi[1] == f2f16 {
		swapVALUOperands(instr, 1, 2)
		return
	}

	literals := 0
	for _, op := range instr.Operands {
		if op.IsLiteral() {
			literals++
		}
	}
	if !f2f16 || literals > 1 {
		return
	}

	start := 2
	if isAdd {
		start = 1
	}
	for i := start; i < 3; i++ {
		op := instr.Operands[i]
		if !op.IsConstant() {
			continue
		}
		h, exact := float32ToHalfExact(op.ConstantValue())
		denorm := h&0x7fff != 0 && h&0x7fff <= 0x3ff
		if !exact || denorm && ctx.fpMode.Denorm16_64&ir.DenormKeepIn == 0 {
			continue
		}
		op16 := ir.OperandC16(h)
		if op16.IsLiteral() && !op.IsLiteral() {
			continue
		}
		swapVALUOperands(instr, i, 2)
		instr.Operands[2] = op16
		v.OpselLo[2], v.OpselHi[2] = false, true
		return
	}
}

// lowerNegAbsF64 turns a multiplication by +-1.0 into a copy, or into a bitwise operation on the high dword.
func (ctx *optCtx) lowerNegAbsF64(instr *ir.Instruction) *ir.Instruction {
	v := &instr.VALU
	if v.Omod != 0 || v.Clamp || instr.IsDPP() {
		return instr
	}
	for i := 0; i < 2; i++ {
		c, x := instr.Operands[i], instr.Operands[1-i]
		if !c.IsConstant() || math.Abs(math.Float64frombits(c.ConstantValue64())) != 1.0 || !x.IsTemp() {
			continue
		}
		if !ctx.info[x.TempID()].isCanonicalized(64) && ctx.fpMode.Denorm16_64 != ir.DenormKeep {
			continue
		}
		neg := math.Float64frombits(c.ConstantValue64()) == -1.0 && !v.Abs[i]
		neg = neg != (v.Neg[0] != v.Neg[1])
		abs := v.Abs[1-i]

		def := instr.Defs[0]
		if !neg && !abs {
			n := ctx.prog.NewInstruction(ir.OpcodePParallelcopy, []ir.Definition{def}, x)
			n.PassFlags = instr.PassFlags
			ctx.setProducer(n)
			ctx.logRewrite(logging.PassScopeLiterals, instr, n)
			return n
		}

		rc := ir.RegClassV1
		if x.RegClass().Type() == ir.RegTypeSGPR {
			rc = ir.RegClassS1
		}
		lo, hi := ctx.allocateTemp(rc), ctx.allocateTemp(rc)
		split := ctx.prog.NewInstruction(ir.OpcodePSplitVector, []ir.Definition{ir.NewDefinition(lo), ir.NewDefinition(hi)}, x)

		mask := uint32(0x7fffffff)
		if neg {
			mask = 0x80000000
		}
		var op ir.Opcode
		var bitDefs []ir.Definition
		res := ctx.allocateTemp(rc)
		if rc == ir.RegClassS1 {
			switch {
			case neg && abs:
				op = ir.OpcodeSOrB32
			case neg:
				op = ir.OpcodeSXorB32
			default:
				op = ir.OpcodeSAndB32
			}
			bitDefs = []ir.Definition{ir.NewDefinition(res), ir.NewFixedDefinition(ctx.allocateTemp(ir.RegClassS1), ir.RegSCC)}
		} else {
			switch {
			case neg && abs:
				op = ir.OpcodeVOrB32
			case neg:
				op = ir.OpcodeVXorB32
			default:
				op = ir.OpcodeVAndB32
			}
			bitDefs = []ir.Definition{ir.NewDefinition(res)}
		}
		bit := ctx.prog.NewInstruction(op, bitDefs, ir.OperandC32(mask), ir.OperandTemp(hi))
		vec := ctx.prog.NewInstruction(ir.OpcodePCreateVector, []ir.Definition{def}, ir.OperandTemp(lo), ir.OperandTemp(res))

		for _, n := range []*ir.Instruction{split, bit, vec} {
			n.PassFlags = instr.PassFlags
			ctx.setProducer(n)
		}
		ctx.uses[lo.ID()], ctx.uses[hi.ID()], ctx.uses[res.ID()] = 1, 1, 1
		ctx.instructions = append(ctx.instructions, split, bit)
		ctx.logRewrite(logging.PassScopeLiterals, instr, vec)
		return vec
	}
	return instr
}
