package opt

import (
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// isValid decides whether the descriptor can be encoded on the target, and rewrites it into the encodable form:
// constants are encoded, sub-dword selections are legalized and the format is chosen.
//
// The descriptor must be in the canonical form returned by gatherInfo. On failure it is left in an unspecified
// state and must be discarded.
func isValid(ctx *optCtx, info *aluInfo) bool {
	if !opcodeAvailable(ctx.target, info.opcode) {
		return false
	}
	if info.format.IsSALU() {
		return isValidSALU(ctx, info)
	}
	if !info.format.IsVALU() || len(info.operands) > 3 {
		return false
	}

	dppIdx, ok := legalizeDPP(ctx, info)
	if !ok {
		return false
	}
	pushNegToConstant(info)
	if !optimizeConstants(ctx, info) {
		return false
	}
	if !checkModifiers(ctx, info) {
		return false
	}
	if !checkConstantBus(ctx, info) {
		return false
	}
	sdwa, ok := legalizeSubdword(ctx, info)
	if !ok {
		return false
	}
	if !selectFormat(ctx, info, dppIdx, sdwa) {
		return false
	}
	if !checkLiterals(ctx, info) {
		return false
	}
	return opcodeAvailable(ctx.target, info.opcode)
}

// opcodeAvailable returns true if the target implements the opcode.
func opcodeAvailable(t ir.Target, op ir.Opcode) bool {
	switch op {
	case ir.OpcodeVMadF32, ir.OpcodeVMadakF32, ir.OpcodeVMadmkF32:
		return t.HasMadF32()
	case ir.OpcodeVFmaakF32, ir.OpcodeVFmamkF32, ir.OpcodeVFmaakF16, ir.OpcodeVFmamkF16:
		return t.Gen >= ir.GenGFX10
	case ir.OpcodeVXnorB32, ir.OpcodeVXor3B32:
		return t.HasXor3()
	case ir.OpcodeVOr3B32, ir.OpcodeVAndOrB32, ir.OpcodeVLshlOrB32, ir.OpcodeVAdd3U32, ir.OpcodeVLshlAddU32,
		ir.OpcodeVAddLshlU32, ir.OpcodeVXadU32, ir.OpcodeVMadU32U16, ir.OpcodeSLshl1AddU32, ir.OpcodeSLshl2AddU32,
		ir.OpcodeSLshl3AddU32, ir.OpcodeSLshl4AddU32:
		return t.HasThreeOpFusion()
	case ir.OpcodeVMinmaxF32, ir.OpcodeVMaxminF32, ir.OpcodeVMinmaxU32, ir.OpcodeVMaxminU32,
		ir.OpcodeVMinmaxI32, ir.OpcodeVMaxminI32:
		return t.HasMinMaxFused()
	case ir.OpcodeVFmaMixF32, ir.OpcodeVFmaMixloF16:
		return t.HasFMAMix()
	case ir.OpcodeVFmaF16, ir.OpcodeVAddF16, ir.OpcodeVSubF16, ir.OpcodeVSubrevF16, ir.OpcodeVMulF16:
		return t.Gen >= ir.GenGFX8
	}
	if op >= ir.OpcodeSCmpkEqI32 && op <= ir.OpcodeSCmpkLeU32 {
		return t.HasSOPK()
	}
	return true
}

func isValidSALU(ctx *optCtx, info *aluInfo) bool {
	if info.omod != 0 || info.clamp || info.f32ToF16 || info.usesInsert() {
		return false
	}
	for i := range info.operands {
		o := &info.operands[i]
		if o.hasMods() || o.abs[1] || o.neg[1] {
			return false
		}
		if o.op.IsConstant() && info.format == ir.FormatSOPK {
			return false
		}
		if o.op.IsOfType(ir.RegTypeVGPR) {
			return false
		}
	}
	return optimizeConstants(ctx, info)
}

// legalizeDPP drops the lane permutations which are no-ops on uniform operands, and returns the index
// of the operand which is permuted, or -1.
func legalizeDPP(ctx *optCtx, info *aluInfo) (int, bool) {
	idx := -1
	for i := range info.operands {
		o := &info.operands[i]
		if !o.isDPP() {
			continue
		}
		if !ctx.target.HasDPP() {
			return -1, false
		}
		if !o.op.IsOfType(ir.RegTypeVGPR) {
			// A uniform value is the same in every lane, unless the permutation reads zero for some lanes.
			if !o.fi || (o.dpp16 && o.bc) {
				return -1, false
			}
			o.dpp16, o.dpp8, o.bc, o.fi, o.dppCtrl = false, false, false, false, 0
			continue
		}
		if idx >= 0 || o.op.Bytes() > 4 {
			return -1, false
		}
		idx = i
	}
	return idx, true
}

func isMulLike(op ir.Opcode) bool {
	switch op {
	case ir.OpcodeVMulF32, ir.OpcodeVMulF16, ir.OpcodeVMulF64, ir.OpcodeVMadF32,
		ir.OpcodeVFmaF32, ir.OpcodeVFmaF16, ir.OpcodeVFmaF64:
		return true
	}
	return false
}

// pushNegToConstant moves the negation of a factor onto a constant factor, so that it can be folded,
// and cancels the negation of both factors.
func pushNegToConstant(info *aluInfo) {
	if !isMulLike(info.opcode) {
		return
	}
	a, b := &info.operands[0], &info.operands[1]
	switch {
	case a.neg[0] && b.neg[0]:
		a.neg[0], b.neg[0] = false, false
	case a.neg[0] && b.op.IsConstant():
		a.neg[0], b.neg[0] = false, !b.neg[0]
	case b.neg[0] && a.op.IsConstant():
		b.neg[0], a.neg[0] = false, !a.neg[0]
	}
}

func checkModifiers(ctx *optCtx, info *aluInfo) bool {
	for i := range info.operands {
		o := &info.operands[i]
		if (o.neg[0] || o.abs[0]) && !info.opcode.CanUseInputModifiers() {
			return false
		}
		if o.neg[1] || o.abs[1] || !o.extract[1].IsDword() {
			return false
		}
		if o.f16ToF32 && !isMixCandidate(info.opcode) {
			return false
		}
		if info.opcode.OperandType(i).Base == ir.BaseTypeLaneMask && !o.op.IsOfType(ir.RegTypeSGPR) {
			return false
		}
	}
	if (info.clamp || info.omod != 0) && !info.opcode.CanUseOutputModifiers() {
		return false
	}
	if info.omod != 0 {
		fp := ctx.fpMode
		switch info.opcode.DefType().BitSize {
		case 32:
			if fp.Denorm32 != ir.DenormFlush {
				return false
			}
		default:
			if fp.Denorm16_64 != ir.DenormFlush {
				return false
			}
		}
		if len(info.defs) > 0 && info.defs[0].IsSZPreserve() {
			return false
		}
	}
	return !info.f32ToF16 || isMixCandidate(info.opcode)
}

// checkConstantBus counts the distinct scalar values read by the instruction.
func checkConstantBus(ctx *optCtx, info *aluInfo) bool {
	var temps []ir.TempID
	var regs []ir.PhysReg
	var literal bool
	n := 0
	for i := range info.operands {
		op := info.operands[i].op
		switch {
		case op.IsLiteral():
			if !literal {
				literal = true
				n++
			}
		case op.IsTemp() && op.RegClass().Type() == ir.RegTypeSGPR:
			if !slices.Contains(temps, op.TempID()) {
				temps = append(temps, op.TempID())
				n++
			}
		case op.IsFixed() && op.RegClass().Type() == ir.RegTypeSGPR:
			if !slices.Contains(regs, op.PhysReg()) {
				regs = append(regs, op.PhysReg())
				n++
			}
		}
	}
	return n <= ctx.target.ConstantBusLimit()
}

func isMixCandidate(op ir.Opcode) bool {
	switch op {
	case ir.OpcodeVFmaF32, ir.OpcodeVMadF32, ir.OpcodeVAddF32, ir.OpcodeVMulF32:
		return true
	}
	return false
}

func usesMix(info *aluInfo) bool {
	if info.f32ToF16 {
		return true
	}
	for i := range info.operands {
		if info.operands[i].f16ToF32 {
			return true
		}
	}
	return false
}

// legalizeSubdword rewrites the sub-dword selections of the operands and the definition into
// opsel, an opcode variant or the SDWA encoding, and converts fp16 conversions into v_fma_mix.
// Returns true if SDWA is needed.
func legalizeSubdword(ctx *optCtx, info *aluInfo) (sdwa, ok bool) {
	gen := ctx.target.Gen
	for i := range info.operands {
		o := &info.operands[i]
		sel := o.extract[0]
		if sel.IsDword() {
			continue
		}
		if o.f16ToF32 {
			if sel.Size() != 2 {
				return false, false
			}
			continue
		}
		bits := int(info.opcode.OperandType(i).BitSize)
		switch {
		case sel.Offset() == 0 && 8*sel.Size() >= bits:
			o.extract[0] = ir.SelDword
		case bits == 16 && sel.Size() == 2 && sel.Offset() == 2 && info.opcode.CanUseOpsel(gen, i):
		case info.opcode == ir.OpcodeVCvtF32Ubyte0 && sel.Size() == 1 && !sel.SignExtend():
			info.opcode += ir.Opcode(sel.Offset())
			o.extract[0] = ir.SelDword
		default:
			sdwa = true
		}
	}

	if sdwa && gen >= ir.GenGFX10 && info.opcode == ir.OpcodeVMulU32U24 && mulU24ToMadU16(ctx, info) {
		sdwa = false
	}
	if info.usesInsert() {
		sdwa = true
	}

	if usesMix(info) {
		if sdwa || !convertToMix(ctx, info) {
			return false, false
		}
		return false, true
	}

	if !sdwa {
		return false, true
	}
	if !ctx.target.HasSDWA() || !info.opcode.Format().Is(ir.FormatVOP1|ir.FormatVOP2|ir.FormatVOPC) {
		return false, false
	}
	if info.usesInsert() && (info.opcode.Format().Is(ir.FormatVOPC) || info.insert.SignExtend()) {
		return false, false
	}
	for i := range info.operands {
		o := &info.operands[i]
		if !o.extract[0].IsDword() && i >= 2 {
			return false, false
		}
		if gen < ir.GenGFX9 && !o.op.IsOfType(ir.RegTypeVGPR) {
			return false, false
		}
		if o.op.IsLiteral() || o.op.Bytes() > 4 {
			return false, false
		}
	}
	if info.omod != 0 && gen < ir.GenGFX9 {
		return false, false
	}
	return true, true
}

// mulU24ToMadU16 rewrites v_mul_u32_u24 of 16-bit halves into v_mad_u32_u16 with a zero addend.
func mulU24ToMadU16(ctx *optCtx, info *aluInfo) bool {
	for i := 0; i < 2; i++ {
		o := &info.operands[i]
		sel := o.extract[0]
		switch {
		case sel.IsDword():
			if !o.op.Is16bit() && !(o.op.IsConstant() && o.op.ConstantValue() <= 0xffff) {
				return false
			}
		case sel.Size() != 2 || sel.SignExtend():
			return false
		}
	}
	info.opcode = ir.OpcodeVMadU32U16
	for i := 0; i < 2; i++ {
		if sel := info.operands[i].extract[0]; !sel.IsDword() && sel.Offset() == 0 {
			info.operands[i].extract[0] = ir.SelDword
		}
	}
	info.operands = append(info.operands, newALUOp(ir.OperandGetConst(ctx.target.Gen, 0, 4)))
	info.format = ir.FormatVOP3
	return true
}

// convertToMix turns a fp32 multiply-add reading fp16 operands, or writing a fp16 result, into v_fma_mix.
func convertToMix(ctx *optCtx, info *aluInfo) bool {
	if info.omod != 0 || info.usesInsert() {
		return false
	}
	fused := ctx.target.FusedMadMix
	gen := ctx.target.Gen
	switch info.opcode {
	case ir.OpcodeVFmaF32:
		if !fused {
			return false
		}
	case ir.OpcodeVMadF32:
		if fused {
			return false
		}
	case ir.OpcodeVMulF32:
		// a * b + -0 is exactly a * b.
		zero := newALUOp(ir.OperandGetConst(gen, 0, 4))
		zero.neg[0] = true
		info.operands = append(info.operands, zero)
	case ir.OpcodeVAddF32:
		one := newALUOp(ir.OperandGetConst(gen, floatOne(32), 4))
		info.operands = []aluOp{info.operands[0], one, info.operands[1]}
	default:
		return false
	}
	for i := range info.operands {
		o := &info.operands[i]
		if !o.f16ToF32 && !o.extract[0].IsDword() || o.isDPP() {
			return false
		}
	}
	if info.f32ToF16 {
		info.opcode = ir.OpcodeVFmaMixloF16
	} else {
		info.opcode = ir.OpcodeVFmaMixF32
	}
	info.format = ir.FormatVOP3P
	return true
}

func isVGPRTemp(op ir.Operand) bool {
	return op.IsTemp() && op.RegClass().Type() == ir.RegTypeVGPR
}

// toSub removes the negation of one operand of a float addition by turning it into a subtraction.
func toSub(info *aluInfo) {
	var sub, subrev ir.Opcode
	switch info.opcode {
	case ir.OpcodeVAddF32:
		sub, subrev = ir.OpcodeVSubF32, ir.OpcodeVSubrevF32
	case ir.OpcodeVAddF16:
		sub, subrev = ir.OpcodeVSubF16, ir.OpcodeVSubrevF16
	default:
		return
	}
	a, b := &info.operands[0], &info.operands[1]
	switch {
	case b.neg[0] && !a.neg[0]:
		info.opcode, b.neg[0] = sub, false
	case a.neg[0] && !b.neg[0]:
		info.opcode, a.neg[0] = subrev, false
	}
}

func madLiteralForms(op ir.Opcode) (ak, mk ir.Opcode) {
	switch op {
	case ir.OpcodeVMadF32:
		return ir.OpcodeVMadakF32, ir.OpcodeVMadmkF32
	case ir.OpcodeVFmaF32:
		return ir.OpcodeVFmaakF32, ir.OpcodeVFmamkF32
	case ir.OpcodeVFmaF16:
		return ir.OpcodeVFmaakF16, ir.OpcodeVFmamkF16
	}
	return ir.OpcodeInvalid, ir.OpcodeInvalid
}

// toMadLiteralForm turns a multiply-add with one literal into the VOP2 encoding with an implicit literal.
func toMadLiteralForm(ctx *optCtx, info *aluInfo) bool {
	ak, mk := madLiteralForms(info.opcode)
	if ak == ir.OpcodeInvalid || !opcodeAvailable(ctx.target, ak) || info.clamp || info.omod != 0 {
		return false
	}
	lit := -1
	for i := range info.operands {
		o := &info.operands[i]
		if o.neg[0] || o.abs[0] || !o.extract[0].IsDword() || o.isDPP() || o.f16ToF32 {
			return false
		}
		if o.op.IsLiteral() {
			if lit >= 0 {
				return false
			}
			lit = i
		}
	}
	switch lit {
	case 2:
		if !isVGPRTemp(info.operands[1].op) {
			info.operands[0], info.operands[1] = info.operands[1], info.operands[0]
		}
		if !isVGPRTemp(info.operands[1].op) {
			return false
		}
		info.opcode = ak
	case 0, 1:
		if lit == 0 {
			info.operands[0], info.operands[1] = info.operands[1], info.operands[0]
		}
		if !isVGPRTemp(info.operands[2].op) {
			return false
		}
		// a * K + b is encoded as madmk(a, b, K).
		info.operands[1], info.operands[2] = info.operands[2], info.operands[1]
		info.opcode = mk
	default:
		return false
	}
	info.format = ir.FormatVOP2
	return true
}

// selectFormat chooses the encoding: the opcode's default one, promoted to VOP3 when the modifiers or operands
// require it, combined with DPP or SDWA.
func selectFormat(ctx *optCtx, info *aluInfo, dppIdx int, sdwa bool) bool {
	gen := ctx.target.Gen
	if !sdwa {
		toSub(info)
	}
	base := info.opcode.Format()
	if info.format.Is(ir.FormatVOP3P) {
		base = ir.FormatVOP3P
	}

	if base.Is(ir.FormatVOP3) && literalCount(info) == 1 && dppIdx < 0 && toMadLiteralForm(ctx, info) {
		return true
	}

	vop3 := base.Is(ir.FormatVOP3) || base.Is(ir.FormatVOP3P)
	needVOP3 := false
	if !vop3 {
		for i := range info.operands {
			o := &info.operands[i]
			if (o.neg[0] || o.abs[0]) && !sdwa {
				needVOP3 = true
			}
			if !o.extract[0].IsDword() && !sdwa {
				needVOP3 = true
			}
		}
		if (info.omod != 0 || info.clamp) && (!sdwa || base.Is(ir.FormatVOPC)) {
			needVOP3 = true
		}
		if (base.Is(ir.FormatVOP2) || base.Is(ir.FormatVOPC)) && len(info.operands) >= 2 {
			src1 := info.operands[1].op
			src1OK := isVGPRTemp(src1) || (sdwa && gen >= ir.GenGFX9 && !src1.IsLiteral())
			if !src1OK && dppIdx != 1 && isVGPRTemp(info.operands[0].op) && info.swapOperands(0, 1) {
				if dppIdx == 0 {
					dppIdx = 1
				}
				src1OK = true
			}
			if !src1OK {
				needVOP3 = true
			}
		}
	}

	if dppIdx > 0 {
		if dppIdx != 1 || !info.swapOperands(0, 1) {
			return false
		}
		dppIdx = 0
	}
	if dppIdx == 0 {
		if sdwa || base.Is(ir.FormatVOP3P) || ((vop3 || needVOP3) && gen < ir.GenGFX11) {
			return false
		}
		for i := 1; i < len(info.operands); i++ {
			if !isVGPRTemp(info.operands[i].op) && info.opcode.OperandType(i).Base != ir.BaseTypeLaneMask {
				return false
			}
		}
	}
	if sdwa && needVOP3 {
		return false
	}

	format := base
	if needVOP3 {
		format = format.AsVOP3()
	}
	if sdwa {
		format |= ir.FormatSDWA
	}
	if dppIdx == 0 {
		if info.operands[0].dpp16 {
			format |= ir.FormatDPP16
		} else {
			format |= ir.FormatDPP8
		}
	}
	info.format = format
	return true
}

// checkLiterals enforces where literals can be encoded.
func checkLiterals(ctx *optCtx, info *aluInfo) bool {
	if literalCount(info) == 0 {
		return true
	}
	f := info.format
	switch {
	case f.Is(ir.FormatSDWA) || f.Is(ir.FormatDPP16) || f.Is(ir.FormatDPP8):
		return false
	case f.Is(ir.FormatVOP3) || f.Is(ir.FormatVOP3P):
		return ctx.target.AllowsVOP3Literal()
	}
	if isMadLiteralForm(info.opcode) {
		return true
	}
	for i := 1; i < len(info.operands); i++ {
		if info.operands[i].op.IsLiteral() {
			return false
		}
	}
	return true
}

func isMadLiteralForm(op ir.Opcode) bool {
	switch op {
	case ir.OpcodeVMadakF32, ir.OpcodeVMadmkF32, ir.OpcodeVFmaakF32, ir.OpcodeVFmamkF32,
		ir.OpcodeVFmaakF16, ir.OpcodeVFmamkF16:
		return true
	}
	return false
}
