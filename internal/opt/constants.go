package opt

import (
	"math"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/tetratelabs/aluopt/internal/ir"
)

func signBit(bits int) uint64 {
	return 1 << (bits - 1)
}

func negZero(bits int) uint64 { return signBit(bits) }

// floatOne returns the bit pattern of 1.0 of the given width.
func floatOne(bits int) uint64 {
	switch bits {
	case 16:
		return 0x3c00
	case 64:
		return 0x3ff0000000000000
	default:
		return 0x3f800000
	}
}

// floatConstantBits returns the bit pattern of v, which must be representable in the given width.
func floatConstantBits(v float64, bits int) uint64 {
	switch bits {
	case 16:
		h, _ := float32ToHalfExact(math.Float32bits(float32(v)))
		return uint64(h)
	case 64:
		return math.Float64bits(v)
	default:
		return uint64(math.Float32bits(float32(v)))
	}
}

func widthMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

func signExtend[T constraints.Unsigned](v T, bits int) T {
	shift := 8*sizeOf(v) - bits
	if shift <= 0 {
		return v
	}
	sign := T(1) << (bits - 1)
	v &= sign<<1 - 1
	return (v ^ sign) - sign
}

func sizeOf[T constraints.Unsigned](T) int {
	var max T
	max--
	n := 0
	for ; max != 0; max >>= 8 {
		n++
	}
	return n
}

// halfToFloat32 converts the binary16 value to binary32. The conversion is exact.
func halfToFloat32(h uint16) uint32 {
	return math.Float32bits(float16.Frombits(h).Float32())
}

// float32ToHalfExact converts the binary32 value to binary16 if no precision is lost.
func float32ToHalfExact(f uint32) (uint16, bool) {
	v := math.Float32frombits(f)
	switch float16.PrecisionFromfloat32(v) {
	case float16.PrecisionExact, float16.PrecisionUnknown:
	default:
		return 0, false
	}
	// Denormals and NaN payloads are only known to be exact once converted back.
	h := float16.Fromfloat32(v)
	return h.Bits(), halfToFloat32(h.Bits()) == f
}

// constantAfterMods returns the value read by a constant operand once its modifiers are applied,
// truncated to the width of typ.
func (o *aluOp) constantAfterMods(ctx *optCtx, typ ir.ALUType) uint64 {
	bits := typ.ConstantBits()
	if bits == 0 {
		bits = 32
	}
	v := o.op.ConstantValue64()
	if o.op.Bytes() < 8 {
		v &= widthMask(8 * o.op.Bytes())
	}
	if sel := o.extract[0]; !sel.IsDword() && bits <= 32 {
		v = uint64(uint32(v) >> (8 * sel.Offset()))
		if sel.SignExtend() {
			v = uint64(signExtend(uint32(v), 8*sel.Size()))
		} else {
			v &= widthMask(8 * sel.Size())
		}
	}
	if o.f16ToF32 {
		v = uint64(halfToFloat32(uint16(v)))
	}
	if typ.IsFloat() || o.f16ToF32 {
		if o.abs[0] {
			v &^= signBit(bits)
		}
		if o.neg[0] {
			v ^= signBit(bits)
		}
	}
	return v & widthMask(bits)
}

// literalDword returns the dword encoding the constant as a literal of the given type, if possible.
// 64-bit floats keep the high dword and 64-bit integers are sign extended.
func literalDword(v uint64, typ ir.ALUType) (uint32, bool) {
	if typ.BitSize != 64 {
		return uint32(v), true
	}
	if typ.IsFloat() {
		return uint32(v >> 32), uint32(v) == 0
	}
	return uint32(v), uint64(signExtend(v, 32)) == v
}

// operandBits returns the width of the value read by the operand.
func (info *aluInfo) operandBits(idx int) int {
	if info.operands[idx].f16ToF32 {
		return 16
	}
	return int(info.opcode.OperandType(idx).BitSize)
}

// optimizeConstants applies the modifiers of every constant operand and chooses its encoding:
// inline, negated inline or a literal. All the literals of the instruction must share one dword,
// so 16-bit literals are packed into both halves when possible. Returns false if the constants
// can't be encoded.
func optimizeConstants(ctx *optCtx, info *aluInfo) bool {
	gen := ctx.target.Gen
	var lits []int
	for i := range info.operands {
		o := &info.operands[i]
		if !o.op.IsConstant() {
			continue
		}
		typ := info.opcode.OperandType(i)
		bits := typ.ConstantBits()
		if bits == 0 {
			return false
		}
		v := o.constantAfterMods(ctx, typ)
		canNeg := info.opcode.CanUseInputModifiers() && typ.IsFloat() && info.format.IsVALU()
		*o = aluOp{op: ir.OperandGetConst(gen, v, bits/8), extract: [2]ir.SubdwordSel{ir.SelDword, ir.SelDword},
			dpp16: o.dpp16, dpp8: o.dpp8, bc: o.bc, fi: o.fi, dppCtrl: o.dppCtrl}
		if !o.op.IsLiteral() {
			continue
		}
		if canNeg {
			if neg := ir.OperandGetConst(gen, v^signBit(bits), bits/8); !neg.IsLiteral() {
				o.op, o.neg[0] = neg, true
				continue
			}
		}
		if _, ok := literalDword(v, typ); !ok {
			return false
		}
		lits = append(lits, i)
	}
	if len(lits) < 2 {
		return true
	}

	var values []uint32
	for _, i := range lits {
		d, _ := literalDword(info.operands[i].op.ConstantValue64(), info.opcode.OperandType(i))
		if !slices.Contains(values, d) {
			values = append(values, d)
		}
	}
	if len(values) == 1 {
		return true
	}
	if len(values) == 2 && packLiterals16(ctx, info, lits, values) {
		return true
	}
	return len(values) == 2 && packLiteralsF16Pair(ctx, info, lits, values)
}

// packLiterals16 packs two distinct 16-bit literals into the halves of one literal, selecting the high half with opsel.
func packLiterals16(ctx *optCtx, info *aluInfo, lits []int, values []uint32) bool {
	for _, i := range lits {
		if info.opcode.OperandType(i).BitSize != 16 {
			return false
		}
		if values[1] == info.operands[i].op.ConstantValue() && !info.opcode.CanUseOpsel(ctx.target.Gen, i) {
			return false
		}
	}
	packed := values[0]&0xffff | values[1]<<16
	for _, i := range lits {
		o := &info.operands[i]
		if o.op.ConstantValue() == values[1] {
			o.extract[0] = ir.SelUWord1
		}
		o.op = ir.OperandLiteral32(packed)
	}
	return true
}

// packLiteralsF16Pair packs two distinct fp32 literals of a multiply-add, which are exactly representable
// as fp16, into one literal read through the fp16 to fp32 conversion of v_fma_mix.
func packLiteralsF16Pair(ctx *optCtx, info *aluInfo, lits []int, values []uint32) bool {
	if info.opcode != ir.OpcodeVFmaF32 && info.opcode != ir.OpcodeVMadF32 || !ctx.target.HasFMAMix() {
		return false
	}
	var halves [2]uint16
	for k, v := range values {
		h, ok := float32ToHalfExact(v)
		if !ok {
			return false
		}
		halves[k] = h
	}
	packed := uint32(halves[0]) | uint32(halves[1])<<16
	for _, i := range lits {
		o := &info.operands[i]
		o.f16ToF32 = true
		if o.op.ConstantValue() == values[1] {
			o.extract[0] = ir.SelUWord1
		} else {
			o.extract[0] = ir.SelUWord0
		}
		o.op = ir.OperandLiteral32(packed)
	}
	return true
}

// literalCount returns the number of distinct literal dwords of the descriptor.
func literalCount(info *aluInfo) int {
	var values []uint64
	for i := range info.operands {
		if op := info.operands[i].op; op.IsLiteral() {
			if v := op.ConstantValue64(); !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
	}
	return len(values)
}
