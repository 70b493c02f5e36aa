package ir

import "fmt"

// BaseType is the interpretation of an operand or definition of an ALU opcode.
type BaseType uint8

const (
	BaseTypeNone BaseType = iota
	BaseTypeUint
	BaseTypeInt
	BaseTypeFloat
	BaseTypeLaneMask
)

// ALUType is the type of an operand or a definition of an ALU opcode.
type ALUType struct {
	Base    BaseType
	BitSize uint8
}

var (
	typeNone     = ALUType{}
	typeBool     = ALUType{Base: BaseTypeUint, BitSize: 1}
	typeLaneMask = ALUType{Base: BaseTypeLaneMask, BitSize: 1}
	typeU16      = ALUType{Base: BaseTypeUint, BitSize: 16}
	typeU32      = ALUType{Base: BaseTypeUint, BitSize: 32}
	typeU64      = ALUType{Base: BaseTypeUint, BitSize: 64}
	typeI32      = ALUType{Base: BaseTypeInt, BitSize: 32}
	typeF16      = ALUType{Base: BaseTypeFloat, BitSize: 16}
	typeF32      = ALUType{Base: BaseTypeFloat, BitSize: 32}
	typeF64      = ALUType{Base: BaseTypeFloat, BitSize: 64}
)

// IsFloat returns true if the type is a floating point type.
func (t ALUType) IsFloat() bool {
	return t.Base == BaseTypeFloat
}

// Bytes returns the number of bytes of the type, rounding booleans up to a byte.
func (t ALUType) Bytes() int {
	return (int(t.BitSize) + 7) / 8
}

// ConstantBits returns the width in bits of a constant operand of this type,
// or 0 if constants can't be used at all.
func (t ALUType) ConstantBits() int {
	switch {
	case t.Base == BaseTypeNone || t.Base == BaseTypeLaneMask:
		return 0
	case t.BitSize == 64:
		return 64
	case t.BitSize == 16:
		return 16
	default:
		return 32
	}
}

type opFlags uint8

const (
	opFlagInputMods opFlags = 1 << iota
	opFlagOutputMods
	// opFlagCommutative means the first two operands can be swapped.
	opFlagCommutative
	// opFlagCommutative3 means any pair of the three operands can be swapped.
	opFlagCommutative3
	opFlagSideEffect
)

type opcodeInfo struct {
	name    string
	format  Format
	opTypes [3]ALUType
	defType ALUType
	flags   opFlags
	// swapped is the opcode computing the same result with the first two operands swapped
	// for non commutative opcodes.
	swapped Opcode
	// inverse is the opcode computing the negated result (compares and scalar bitwise ops).
	inverse Opcode
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	if o == OpcodeInvalid || o >= opcodeEnd {
		return fmt.Sprintf("invalid(%d)", uint16(o))
	}
	return opcodeInfos[o].name
}

// LookupOpcode returns the opcode with the given name.
func LookupOpcode(name string) (Opcode, bool) {
	o, ok := opcodeByName[name]
	return o, ok
}

var opcodeByName = func() map[string]Opcode {
	ret := make(map[string]Opcode, opcodeEnd)
	for o := OpcodeInvalid + 1; o < opcodeEnd; o++ {
		ret[opcodeInfos[o].name] = o
	}
	return ret
}()

// Format returns the default encoding format of this opcode.
func (o Opcode) Format() Format {
	return opcodeInfos[o].format
}

// OperandType returns the type of the idx-th operand.
func (o Opcode) OperandType(idx int) ALUType {
	if idx >= len(opcodeInfos[o].opTypes) {
		return typeNone
	}
	return opcodeInfos[o].opTypes[idx]
}

// DefType returns the type of the first definition.
func (o Opcode) DefType() ALUType {
	return opcodeInfos[o].defType
}

// CanUseInputModifiers returns true if neg/abs can be applied to the operands of this opcode.
func (o Opcode) CanUseInputModifiers() bool {
	return opcodeInfos[o].flags&opFlagInputMods != 0
}

// CanUseOutputModifiers returns true if omod/clamp can be applied to the result of this opcode.
func (o Opcode) CanUseOutputModifiers() bool {
	return opcodeInfos[o].flags&opFlagOutputMods != 0
}

// HasSideEffects returns true if the instruction must never be removed.
func (o Opcode) HasSideEffects() bool {
	return opcodeInfos[o].flags&opFlagSideEffect != 0
}

// CanUseOpsel returns true if the opsel bit of the idx-th operand (or the definition if idx is negative)
// can be used on the given generation.
func (o Opcode) CanUseOpsel(gen Gen, idx int) bool {
	if gen < GenGFX9 || !o.Format().IsVALU() || o.Format().Is(FormatVOP3P) {
		return false
	}
	if idx < 0 {
		return opcodeInfos[o].defType.BitSize == 16
	}
	return o.OperandType(idx).BitSize == 16
}

// Inverse returns the opcode computing the negated result, or OpcodeInvalid.
func (o Opcode) Inverse() Opcode {
	return opcodeInfos[o].inverse
}

// Swapped returns the opcode computing the same result with the operands idx0 and idx1 swapped,
// or OpcodeInvalid if there's no such opcode.
func (o Opcode) Swapped(idx0, idx1 int) Opcode {
	if idx0 == idx1 {
		return o
	}
	if idx0 > idx1 {
		idx0, idx1 = idx1, idx0
	}
	info := &opcodeInfos[o]
	switch {
	case info.flags&opFlagCommutative3 != 0 && idx1 < 3:
		return o
	case idx0 != 0 || idx1 != 1:
		return OpcodeInvalid
	case info.flags&opFlagCommutative != 0:
		return o
	default:
		return info.swapped
	}
}

// IsBranch returns true if this is a branch.
func (o Opcode) IsBranch() bool {
	return o.Format() == FormatPseudoBranch
}

// IsPhi returns true if this is a phi of either register file.
func (o Opcode) IsPhi() bool {
	return o == OpcodePPhi || o == OpcodePLinearPhi
}
