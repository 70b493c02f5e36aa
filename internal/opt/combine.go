package opt

import (
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// maxExtractUses is the number of uses above which an extract is kept instead of being folded into every user.
const maxExtractUses = 4

// passCombineOpt walks the program forward, folding the facts into the operands with the use counts known,
// and fusing the instructions with the producers of their operands.
func passCombineOpt(ctx *optCtx) {
	for _, blk := range ctx.prog.Blocks {
		ctx.fpMode = blk.FPMode
		for i, instr := range blk.Instructions {
			if instr == nil || len(instr.Defs) == 0 || ctx.isDead(instr) {
				continue
			}
			if n := ctx.combineInstruction(instr); n != instr {
				blk.Instructions[i] = n
			}
		}
	}
}

func (ctx *optCtx) combineInstruction(instr *ir.Instruction) *ir.Instruction {
	for _, def := range instr.Defs {
		if info := &ctx.info[def.TempID()]; def.IsTemp() && info.isExtract() && ctx.uses[def.TempID()] > maxExtractUses {
			info.keepOnly(attributeLabels)
		}
	}

	switch instr.Opcode {
	case ir.OpcodePExtract, ir.OpcodePInsert:
		// Only as the consumer of an output folding.
		info, ok := gatherInfo(ctx, instr)
		if !ok {
			return instr
		}
		if n := ctx.applyOutput(instr, &info); n != nil {
			return n
		}
		return instr
	}
	if !instr.IsVALU() && !instr.IsSALU() {
		return instr
	}

	info, ok := gatherInfo(ctx, instr)
	if !ok {
		return instr
	}
	if legal, changed := propagateTempConst(ctx, &info, true); changed {
		n := ctx.commit(&legal)
		ctx.logRewrite(logging.PassScopeCombine, instr, n)
		instr = n
	}

	if n := ctx.applyOutput(instr, &info); n != nil {
		return n
	}
	if n := ctx.combinePatterns(instr, &info); n != nil {
		return n
	}
	return instr
}

// fusion is one attempt of fusing the producer of an operand into its consumer.
type fusion struct {
	consumer *aluInfo
	// idx is the operand of the consumer reading the producer.
	idx      int
	producer *ir.Instruction
	// prod is the descriptor of the producer, with the modifiers of the consumer's operand pushed into it.
	prod aluInfo
	// multiUse is true if the producer has other uses, which is only allowed if the fusion can be reverted.
	multiUse bool
}

// other returns the operand of a two-operand consumer which doesn't read the producer.
func (f *fusion) other() aluOp {
	return f.consumer.operands[1-f.idx]
}

// result returns a descriptor of the consumer's definitions with the given opcode and operands.
func (f *fusion) result(op ir.Opcode, ops ...aluOp) aluInfo {
	c := f.consumer
	return aluInfo{
		defs:      slices.Clone(c.defs),
		operands:  ops,
		opcode:    op,
		format:    op.Format(),
		passFlags: c.passFlags,
		omod:      c.omod,
		clamp:     c.clamp,
		insert:    c.insert,
		f32ToF16:  c.f32ToF16,
	}
}

// swizzle returns the pool [producer op0, producer op1, other] permuted by the pattern, e.g. "102".
func (f *fusion) swizzle(s string) []aluOp {
	pool := [3]aluOp{f.prod.operands[0], f.prod.operands[1], f.other()}
	ops := make([]aluOp, len(s))
	for i, c := range s {
		ops[i] = pool[c-'0']
	}
	return ops
}

// backpropagateInputModifiers rewrites the producer so that it computes the value read by an operand with
// the given modifiers. Returns false if the producer can't absorb them.
func backpropagateInputModifiers(p *aluInfo, neg, abs bool) bool {
	if !neg && !abs {
		return true
	}
	apply := func(o *aluOp) {
		if abs {
			o.abs[0], o.neg[0] = true, false
		}
		if neg {
			o.neg[0] = !o.neg[0]
		}
	}
	switch p.opcode {
	case ir.OpcodeVMulF16, ir.OpcodeVMulF32, ir.OpcodeVMulF64:
		// |a * b| = |a| * |b| and -(a * b) = -a * b
		if abs {
			for i := 0; i < 2; i++ {
				p.operands[i].abs[0], p.operands[i].neg[0] = true, false
			}
		}
		if neg {
			p.operands[0].neg[0] = !p.operands[0].neg[0]
		}
	case ir.OpcodeVCvtF32F16:
		apply(&p.operands[0])
	case ir.OpcodeVCndmaskB32:
		apply(&p.operands[0])
		apply(&p.operands[1])
	case ir.OpcodeVAddF16, ir.OpcodeVAddF32, ir.OpcodeVAddF64, ir.OpcodeVFmaF16, ir.OpcodeVFmaF32, ir.OpcodeVFmaF64,
		ir.OpcodeVMadF32:
		// -(a + b) is +0 when a + b is +0.
		if abs || p.defs[0].IsSZPreserve() {
			return false
		}
		p.operands[0].neg[0] = !p.operands[0].neg[0]
		last := len(p.operands) - 1
		p.operands[last].neg[0] = !p.operands[last].neg[0]
	case ir.OpcodeVMaxF32, ir.OpcodeVMinF32:
		// -max(a, b) = min(-a, -b)
		if abs {
			return false
		}
		if p.opcode == ir.OpcodeVMaxF32 {
			p.opcode = ir.OpcodeVMinF32
		} else {
			p.opcode = ir.OpcodeVMaxF32
		}
		apply(&p.operands[0])
		apply(&p.operands[1])
	default:
		return false
	}
	return true
}

// fusionCandidates returns the operands whose producer may be fused, the ones with fewer uses first,
// then the vector ones, then the most recently defined ones.
func (ctx *optCtx) fusionCandidates(info *aluInfo) []int {
	var cands []int
	for i := range info.operands {
		if op := info.operands[i].op; op.IsTemp() && ctx.producer(op.TempID()) != nil {
			cands = append(cands, i)
		}
	}
	slices.SortStableFunc(cands, func(a, b int) bool {
		ta, tb := info.operands[a].op.Temp(), info.operands[b].op.Temp()
		if ua, ub := ctx.uses[ta.ID()], ctx.uses[tb.ID()]; ua != ub {
			return ua < ub
		}
		if va, vb := ta.Type() == ir.RegTypeVGPR, tb.Type() == ir.RegTypeVGPR; va != vb {
			return va
		}
		return ta.ID() > tb.ID()
	})
	return cands
}

// newFusion prepares the fusion of the producer of the idx-th operand. Returns false if the producer can't be
// fused at all.
func (ctx *optCtx) newFusion(instr *ir.Instruction, info *aluInfo, idx int) (fusion, bool) {
	o := &info.operands[idx]
	p := ctx.producer(o.op.TempID())
	if p == nil || p == instr || p.Opcode.HasSideEffects() || p.IsVALU() && info.format.IsVALU() && p.PassFlags != info.passFlags {
		return fusion{}, false
	}
	if o.isDPP() || !o.extract[0].IsDword() || o.f16ToF32 {
		return fusion{}, false
	}
	prod, ok := gatherInfo(ctx, p)
	if !ok || prod.omod != 0 || prod.clamp || prod.usesInsert() || prod.f32ToF16 {
		return fusion{}, false
	}
	if !backpropagateInputModifiers(&prod, o.neg[0], o.abs[0]) {
		return fusion{}, false
	}
	multiUse := ctx.uses[o.op.TempID()] > 1
	for _, def := range p.Defs {
		if def.IsTemp() && def.TempID() != o.op.TempID() && ctx.uses[def.TempID()] > 0 {
			multiUse = true
		}
	}
	return fusion{consumer: info, idx: idx, producer: p, prod: prod, multiUse: multiUse}, true
}

// combinePatterns tries the fusion patterns of the consumer's opcode on each candidate operand, and applies
// the first one which is encodable.
func (ctx *optCtx) combinePatterns(instr *ir.Instruction, info *aluInfo) *ir.Instruction {
	pats := combinePatternsOf(info.opcode)
	if len(pats) == 0 {
		return nil
	}
	for _, idx := range ctx.fusionCandidates(info) {
		f, ok := ctx.newFusion(instr, info, idx)
		if !ok {
			continue
		}
		for _, pat := range pats {
			if f.multiUse && !pat.revertible {
				continue
			}
			if pat.producer != ir.OpcodeInvalid && pat.producer != f.prod.opcode {
				continue
			}
			if pat.operands != 0 && pat.operands&(1<<idx) == 0 {
				continue
			}
			fused, ok := pat.fn(ctx, &f)
			if !ok {
				continue
			}
			if info.clamp && !fused.opcode.DefType().IsFloat() {
				continue
			}
			n := ctx.rewrite(instr, &fused, logging.PassScopeCombine)
			if n == nil {
				continue
			}
			if f.multiUse {
				ctx.combined = append(ctx.combined, combineRecord{orig: instr, subsumed: info.operands[idx].op.TempID()})
				ctx.info[n.Defs[0].TempID()].setCombined(len(ctx.combined) - 1)
			}
			return n
		}
	}
	return nil
}
