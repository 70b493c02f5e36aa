package opt

import (
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// aluOp is an operand of the canonical ALU descriptor.
type aluOp struct {
	op ir.Operand
	// extract holds the selection of each 16-bit component; only extract[0] is used by non-packed operands.
	extract  [2]ir.SubdwordSel
	neg, abs [2]bool
	// f16ToF32 converts the selected 16-bit half to fp32 before the operation.
	f16ToF32 bool

	dpp16, dpp8 bool
	bc, fi      bool
	dppCtrl     uint32
}

func newALUOp(op ir.Operand) aluOp {
	return aluOp{op: op, extract: [2]ir.SubdwordSel{ir.SelDword, ir.SelDword}}
}

func (o *aluOp) isDPP() bool { return o.dpp16 || o.dpp8 }

// hasMods returns true if the value read differs from the plain register value.
func (o *aluOp) hasMods() bool {
	return o.neg[0] || o.abs[0] || o.f16ToF32 || !o.extract[0].IsDword() || o.isDPP()
}

// aluInfo is the canonical ALU descriptor: a detached copy of one instruction which can be mutated freely,
// checked with isValid and materialized with commit.
type aluInfo struct {
	defs     []ir.Definition
	operands []aluOp
	opcode   ir.Opcode
	format   ir.Format

	imm       uint32
	passFlags uint32
	omod      uint8
	clamp     bool
	f32ToF16  bool
	// insert is the destination selection. Dword means the whole register is written.
	insert ir.SubdwordSel
}

// clone returns a deep copy which can be mutated independently.
func (info *aluInfo) clone() aluInfo {
	ret := *info
	ret.defs = slices.Clone(info.defs)
	ret.operands = slices.Clone(info.operands)
	return ret
}

func (info *aluInfo) usesInsert() bool {
	return info.insert.Valid() && !info.insert.IsDword()
}

// swapOperands swaps two operands, changing the opcode if needed. Returns false if the opcode can't be swapped.
func (info *aluInfo) swapOperands(i, j int) bool {
	swapped := info.opcode.Swapped(i, j)
	if swapped == ir.OpcodeInvalid {
		return false
	}
	info.opcode = swapped
	info.operands[i], info.operands[j] = info.operands[j], info.operands[i]
	return true
}

func isFMAOrMad(op ir.Opcode) bool {
	switch op {
	case ir.OpcodeVFmaF32, ir.OpcodeVMadF32, ir.OpcodeVFmaF16, ir.OpcodeVFmaF64:
		return true
	}
	return false
}

func addOpcodeOf(fma ir.Opcode) ir.Opcode {
	switch fma {
	case ir.OpcodeVFmaF16:
		return ir.OpcodeVAddF16
	case ir.OpcodeVFmaF64:
		return ir.OpcodeVAddF64
	default:
		return ir.OpcodeVAddF32
	}
}

func mulOpcodeOf(fma ir.Opcode) ir.Opcode {
	switch fma {
	case ir.OpcodeVFmaF16:
		return ir.OpcodeVMulF16
	case ir.OpcodeVFmaF64:
		return ir.OpcodeVMulF64
	default:
		return ir.OpcodeVMulF32
	}
}

// gatherInfo builds the canonical descriptor of the instruction. Interchangeable encodings of the same
// operation are normalized, so that e.g. v_sub_f32 becomes v_add_f32 with a negated operand.
func gatherInfo(ctx *optCtx, instr *ir.Instruction) (aluInfo, bool) {
	switch instr.Opcode {
	case ir.OpcodePExtract:
		return gatherExtract(instr)
	case ir.OpcodePInsert:
		return gatherInsert(instr)
	}
	if !instr.IsVALU() && !instr.IsSALU() {
		return aluInfo{}, false
	}
	// Writing the high half with opsel preserves the low half, which the descriptor can't express.
	if instr.IsVALU() && !instr.IsSDWA() && instr.VALU.Opsel[3] {
		return aluInfo{}, false
	}

	info := aluInfo{
		defs:      slices.Clone(instr.Defs),
		opcode:    instr.Opcode,
		format:    instr.Format,
		imm:       instr.Imm,
		passFlags: instr.PassFlags,
		insert:    ir.SelDword,
		operands:  make([]aluOp, len(instr.Operands)),
	}
	for i, op := range instr.Operands {
		o := newALUOp(op)
		if instr.IsVALU() && i < 3 {
			o.neg[0], o.abs[0] = instr.VALU.Neg[i], instr.VALU.Abs[i]
			switch {
			case instr.IsVOP3P():
				o.f16ToF32 = instr.VALU.OpselHi[i]
				if o.f16ToF32 && instr.VALU.OpselLo[i] {
					o.extract[0] = ir.SelUWord1
				} else if o.f16ToF32 {
					o.extract[0] = ir.SelUWord0
				}
			case instr.IsSDWA() && i < 2:
				o.extract[0] = instr.SDWA.Sel[i]
			case instr.VALU.Opsel[i]:
				o.extract[0] = ir.SelUWord1
			}
		}
		info.operands[i] = o
	}

	if instr.IsVALU() {
		info.omod, info.clamp = instr.VALU.Omod, instr.VALU.Clamp
		if instr.IsSDWA() {
			info.insert = instr.SDWA.DstSel
		}
		if instr.IsDPP() && len(info.operands) > 0 {
			o := &info.operands[0]
			o.dpp16, o.dpp8 = instr.Format.Is(ir.FormatDPP16), instr.Format.Is(ir.FormatDPP8)
			o.bc, o.fi = instr.DPP.BoundCtrl, instr.DPP.FetchInactive
			if o.dpp16 {
				o.dppCtrl = uint32(instr.DPP.Ctrl)
			} else {
				o.dppCtrl = instr.DPP.LaneSel
			}
		}
	}

	switch info.opcode {
	case ir.OpcodeVSubF32, ir.OpcodeVSubF16:
		info.opcode = addOpcodeOf(fmaOpcodeOfType(info.opcode))
		info.operands[1].neg[0] = !info.operands[1].neg[0]
	case ir.OpcodeVSubrevF32, ir.OpcodeVSubrevF16:
		info.opcode = addOpcodeOf(fmaOpcodeOfType(info.opcode))
		info.operands[0].neg[0] = !info.operands[0].neg[0]
	case ir.OpcodeVSubrevU32:
		info.opcode = ir.OpcodeVSubU32
		info.operands[0], info.operands[1] = info.operands[1], info.operands[0]
	case ir.OpcodeVMadakF32:
		info.opcode = ir.OpcodeVMadF32
	case ir.OpcodeVFmaakF32:
		info.opcode = ir.OpcodeVFmaF32
	case ir.OpcodeVFmaakF16:
		info.opcode = ir.OpcodeVFmaF16
	case ir.OpcodeVMadmkF32, ir.OpcodeVFmamkF32, ir.OpcodeVFmamkF16:
		// a * K + b
		info.opcode = map[ir.Opcode]ir.Opcode{
			ir.OpcodeVMadmkF32: ir.OpcodeVMadF32,
			ir.OpcodeVFmamkF32: ir.OpcodeVFmaF32,
			ir.OpcodeVFmamkF16: ir.OpcodeVFmaF16,
		}[info.opcode]
		info.operands[1], info.operands[2] = info.operands[2], info.operands[1]
	case ir.OpcodeVFmaMixF32, ir.OpcodeVFmaMixloF16:
		info.f32ToF16 = info.opcode == ir.OpcodeVFmaMixloF16
		if ctx.target.FusedMadMix {
			info.opcode = ir.OpcodeVFmaF32
		} else {
			info.opcode = ir.OpcodeVMadF32
		}
	}

	if isFMAOrMad(info.opcode) {
		simplifyFMA(ctx, &info)
	}

	if info.format.IsVALU() {
		// The format is recomputed by isValid.
		info.format = info.opcode.Format()
	}
	return info, true
}

func fmaOpcodeOfType(op ir.Opcode) ir.Opcode {
	if op.DefType().BitSize == 16 {
		return ir.OpcodeVFmaF16
	}
	return ir.OpcodeVFmaF32
}

// simplifyFMA turns a multiply-add by -0 into a multiply, and a multiply-add with a factor of +-1 into an add.
func simplifyFMA(ctx *optCtx, info *aluInfo) {
	typ := info.opcode.OperandType(0)
	bits := int(typ.BitSize)
	// v_mad_f32 always flushes denormals.
	if info.opcode == ir.OpcodeVMadF32 && ctx.fpMode.Denorm32 != ir.DenormFlush {
		return
	}
	if op := &info.operands[2]; op.op.IsConstant() && !op.isDPP() && op.constantAfterMods(ctx, typ) == negZero(bits) {
		info.opcode = mulOpcodeOf(info.opcode)
		info.operands = info.operands[:2]
		return
	}
	for i := 0; i < 2; i++ {
		op := &info.operands[i]
		if !op.op.IsConstant() || op.isDPP() {
			continue
		}
		v := op.constantAfterMods(ctx, typ)
		if v != floatOne(bits) && v != floatOne(bits)|negZero(bits) {
			continue
		}
		other := info.operands[1-i]
		if v != floatOne(bits) {
			other.neg[0] = !other.neg[0]
		}
		info.opcode = addOpcodeOf(info.opcode)
		info.operands = []aluOp{other, info.operands[2]}
		return
	}
}

// gatherExtract describes p_extract of a vector register as a v_mov_b32 of a sub-dword selection.
func gatherExtract(instr *ir.Instruction) (aluInfo, bool) {
	sel, ok := extractSel(instr)
	if !ok || instr.Defs[0].RegClass() != ir.RegClassV1 || !instr.Operands[0].IsOfType(ir.RegTypeVGPR) {
		return aluInfo{}, false
	}
	op := newALUOp(instr.Operands[0])
	op.extract[0] = sel
	return aluInfo{
		defs:      slices.Clone(instr.Defs[:1]),
		operands:  []aluOp{op},
		opcode:    ir.OpcodeVMovB32,
		format:    ir.FormatVOP1,
		passFlags: instr.PassFlags,
		insert:    ir.SelDword,
	}, true
}

// gatherInsert describes p_insert into a vector register as a v_mov_b32 with a destination selection.
func gatherInsert(instr *ir.Instruction) (aluInfo, bool) {
	sel, ok := extractSel(instr)
	if !ok || sel.SignExtend() || instr.Defs[0].RegClass() != ir.RegClassV1 || !instr.Operands[0].IsOfType(ir.RegTypeVGPR) {
		return aluInfo{}, false
	}
	return aluInfo{
		defs:      slices.Clone(instr.Defs[:1]),
		operands:  []aluOp{newALUOp(instr.Operands[0])},
		opcode:    ir.OpcodeVMovB32,
		format:    ir.FormatVOP1,
		passFlags: instr.PassFlags,
		insert:    sel,
	}, true
}

// commit materializes the descriptor into a new instruction, and makes it the producer of its definitions.
// The descriptor must have been accepted by isValid.
func (ctx *optCtx) commit(info *aluInfo) *ir.Instruction {
	instr := ctx.prog.AllocateInstruction(info.opcode, info.format, len(info.operands), len(info.defs))
	copy(instr.Defs, info.defs)
	instr.PassFlags = info.passFlags
	instr.Imm = info.imm

	for i := range info.operands {
		o := &info.operands[i]
		instr.Operands[i] = o.op
		if !info.format.IsVALU() || i >= 3 {
			continue
		}
		instr.VALU.Neg[i], instr.VALU.Abs[i] = o.neg[0], o.abs[0]
		switch {
		case info.format.Is(ir.FormatVOP3P):
			instr.VALU.OpselHi[i] = o.f16ToF32
			instr.VALU.OpselLo[i] = o.f16ToF32 && o.extract[0].Offset() == 2
		case info.format.Is(ir.FormatSDWA) && i < 2:
			instr.SDWA.Sel[i] = o.extract[0]
		default:
			instr.VALU.Opsel[i] = !o.extract[0].IsDword() && o.extract[0].Offset() == 2
		}
	}

	if info.format.IsVALU() {
		instr.VALU.Omod, instr.VALU.Clamp = info.omod, info.clamp
		if info.format.Is(ir.FormatSDWA) {
			instr.SDWA.DstSel = info.insert
			if !instr.SDWA.DstSel.Valid() {
				instr.SDWA.DstSel = ir.SelDword
			}
		}
		if len(info.operands) > 0 && info.operands[0].isDPP() {
			o := &info.operands[0]
			instr.DPP.BoundCtrl, instr.DPP.FetchInactive = o.bc, o.fi
			if o.dpp16 {
				instr.DPP.Ctrl = uint16(o.dppCtrl)
			} else {
				instr.DPP.LaneSel = o.dppCtrl
			}
		}
	}

	ctx.setProducer(instr)
	return instr
}
