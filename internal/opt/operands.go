package opt

import (
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// extractSel returns the selection of p_extract (src, index, bits, signext) or p_insert (src, index, bits).
func extractSel(instr *ir.Instruction) (ir.SubdwordSel, bool) {
	n := 3
	if instr.Opcode == ir.OpcodePExtract {
		n = 4
	}
	ops := instr.Operands
	if len(ops) != n || len(instr.Defs) == 0 {
		return 0, false
	}
	for _, op := range ops[1:] {
		if !op.IsConstant() {
			return 0, false
		}
	}
	idx, bits := int(ops[1].ConstantValue()), int(ops[2].ConstantValue())
	if bits != 8 && bits != 16 && bits != 32 {
		return 0, false
	}
	size, offset := bits/8, idx*bits/8
	if offset+size > 4 {
		return 0, false
	}
	if size == 4 {
		return ir.SelDword, true
	}
	sext := n == 4 && ops[3].ConstantValue() != 0
	return ir.NewSubdwordSel(size, offset, sext), true
}

// extractApplyExtract returns the selection equivalent to applying outer to the result of inner.
func extractApplyExtract(inner, outer ir.SubdwordSel) (ir.SubdwordSel, bool) {
	switch {
	case inner.IsDword():
		return outer, true
	case outer.IsDword():
		return inner, true
	case outer.Offset()+outer.Size() <= inner.Size():
		return ir.NewSubdwordSel(outer.Size(), inner.Offset()+outer.Offset(), outer.SignExtend()), true
	case outer.Offset() != 0:
		return 0, false
	case !inner.SignExtend():
		// The bits above the inner selection are zero.
		return ir.NewSubdwordSel(inner.Size(), inner.Offset(), false), true
	case outer.SignExtend() || outer.Size() == 4:
		return inner, true
	}
	return 0, false
}

// factBits returns the width of the float value computed by the producer of the Temp, or 0.
func (ctx *optCtx) factBits(id ir.TempID) int {
	p := ctx.producer(id)
	if p == nil {
		return 0
	}
	return int(p.Opcode.DefType().BitSize)
}

func isSignBitOp(instr *ir.Instruction) bool {
	if instr == nil {
		return false
	}
	switch instr.Opcode {
	case ir.OpcodeVAndB32, ir.OpcodeVXorB32, ir.OpcodeSAndB32, ir.OpcodeSXorB32:
		return true
	}
	return false
}

// canEliminateFcanonicalize returns true if the opcode flushes and quiets its float inputs itself.
func canEliminateFcanonicalize(op ir.Opcode) bool {
	if !op.CanUseInputModifiers() || op.Format().Is(ir.FormatVOPC) {
		return false
	}
	switch op {
	case ir.OpcodeVCndmaskB32, ir.OpcodeVMovB32,
		ir.OpcodeVMaxF32, ir.OpcodeVMinF32, ir.OpcodeVMax3F32, ir.OpcodeVMin3F32, ir.OpcodeVMed3F32,
		ir.OpcodeVMinmaxF32, ir.OpcodeVMaxminF32:
		return false
	}
	return true
}

// applyFact rewrites the idx-th operand of the descriptor to read the source of the fact known about it,
// folding the fact into the operand's modifiers. Returns false if the fact can't be folded.
func applyFact(ctx *optCtx, info *aluInfo, idx int, fact *ssaInfo) bool {
	o := &info.operands[idx]
	t := o.op.Temp()
	switch {
	case fact.isConstant():
		bytes := t.Bytes()
		if bytes != 2 && bytes != 4 && bytes != 8 {
			return false
		}
		o.op = ir.OperandGetConst(ctx.target.Gen, fact.val, bytes)
		return true

	case fact.isTemp():
		if fact.temp.RegClass() != t.RegClass() {
			return false
		}
		o.op.SetTemp(fact.temp)
		return true

	case fact.label&(labelNegFP32_64|labelAbsFP32_64|labelNegFP16|labelAbsFP16) != 0:
		bits := info.operandBits(idx)
		typ := info.opcode.OperandType(idx)
		if !typ.IsFloat() || !info.opcode.CanUseInputModifiers() || o.isDPP() {
			return false
		}
		if !(fact.isNeg(bits) || fact.isAbs(bits)) {
			return false
		}
		if sel := o.extract[0]; !sel.IsDword() && !(o.f16ToF32 && sel.Offset() == 0) {
			return false
		}
		// Negations computed by float arithmetic also flush and quiet their source.
		if !isSignBitOp(ctx.producer(t.ID())) && (ctx.factBits(t.ID()) != bits ||
			!canEliminateFcanonicalize(info.opcode) && !ctx.info[fact.temp.ID()].isCanonicalized(bits)) {
			return false
		}
		fNeg, fAbs := fact.isNeg(bits), fact.isAbs(bits)
		if !o.abs[0] {
			o.neg[0] = o.neg[0] != fNeg
			o.abs[0] = fAbs
		}
		o.op.SetTemp(fact.temp)
		return true

	case fact.isFcanonicalize():
		bits := info.operandBits(idx)
		if !info.opcode.OperandType(idx).IsFloat() || !canEliminateFcanonicalize(info.opcode) || o.isDPP() {
			return false
		}
		if ctx.factBits(t.ID()) != bits || !o.extract[0].IsDword() {
			return false
		}
		o.op.SetTemp(fact.temp)
		return true

	case fact.isExtract():
		p := ctx.producer(t.ID())
		if p == nil || o.isDPP() || o.abs[1] || o.neg[1] {
			return false
		}
		inner, ok := extractSel(p)
		if !ok || !p.Operands[0].IsTemp() || p.Defs[0].Bytes() != 4 || p.Operands[0].Bytes() != 4 {
			return false
		}
		sel, ok := extractApplyExtract(inner, o.extract[0])
		if !ok {
			return false
		}
		o.extract[0] = sel
		o.op.SetTemp(p.Operands[0].Temp())
		return true
	}
	return false
}

// operandOrder returns the order in which the operands are tried. When the use counts are known, the operands
// whose producer is more likely to die are tried first.
func operandOrder(ctx *optCtx, info *aluInfo, usesValid bool) []int {
	order := make([]int, len(info.operands))
	for i := range order {
		order[i] = i
	}
	if !usesValid {
		return order
	}
	usesOf := func(i int) int {
		if op := info.operands[i].op; op.IsTemp() {
			return ctx.uses[op.TempID()]
		}
		return 0
	}
	slices.SortStableFunc(order, func(a, b int) bool { return usesOf(a) < usesOf(b) })
	return order
}

// propagateTempConst folds the facts known about the operands into the descriptor, keeping only the foldings
// which produce an encodable instruction without more literals. The descriptor is updated in its canonical form,
// and its encodable form is returned along with whether anything was folded.
//
// If usesValid is true, the use counts are updated, and the producers which become dead are removed.
func propagateTempConst(ctx *optCtx, info *aluInfo, usesValid bool) (aluInfo, bool) {
	legal := info.clone()
	if !isValid(ctx, &legal) {
		return aluInfo{}, false
	}
	changed := false
	for _, i := range operandOrder(ctx, info, usesValid) {
		for {
			old := info.operands[i].op
			if !old.IsTemp() {
				break
			}
			fact := ctx.info[old.TempID()]
			cand := info.clone()
			if !applyFact(ctx, &cand, i, &fact) || cand.operands[i].op.Equals(old) {
				break
			}
			candLegal := cand.clone()
			if !isValid(ctx, &candLegal) || literalCount(&candLegal) > literalCount(&legal) {
				break
			}
			if usesValid {
				if op := cand.operands[i].op; op.IsTemp() {
					ctx.uses[op.TempID()]++
				}
				ctx.decreaseAndDCE(old.Temp())
			}
			*info, legal, changed = cand, candLegal, true
		}
	}
	return legal, changed
}
