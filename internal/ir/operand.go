package ir

import (
	"fmt"
	"strings"
)

type operandKind uint8

const (
	operandKindUndefined operandKind = iota
	operandKindTemp
	operandKindConstant
	operandKindFixed
)

// Operand is an input of an instruction: a Temp, a constant, a fixed physical register or undefined.
//
// Constants keep their full 64-bit value and their size in bytes. A constant is either inline,
// meaning it is encoded in the instruction for free, or a literal which takes an extra dword.
type Operand struct {
	kind  operandKind
	temp  Temp
	rc    RegClass
	reg   PhysReg
	fixed bool

	value   uint64
	bytes   uint8
	literal bool

	is16bit, is24bit bool
}

// OperandTemp returns an Operand referencing the Temp.
func OperandTemp(t Temp) Operand {
	return Operand{kind: operandKindTemp, temp: t, rc: t.RegClass()}
}

// OperandFixed returns an Operand reading the physical register directly.
func OperandFixed(reg PhysReg, rc RegClass) Operand {
	return Operand{kind: operandKindFixed, rc: rc, reg: reg, fixed: true}
}

// OperandUndef returns an undefined Operand of the given class.
func OperandUndef(rc RegClass) Operand {
	return Operand{kind: operandKindUndefined, rc: rc}
}

// OperandC16 returns a 16-bit constant.
func OperandC16(v uint16) Operand {
	return Operand{kind: operandKindConstant, value: uint64(v), bytes: 2, literal: !isInline16(v, GenGFX6)}
}

// OperandC32 returns a 32-bit constant.
func OperandC32(v uint32) Operand {
	return Operand{kind: operandKindConstant, value: uint64(v), bytes: 4, literal: !isInline32(v, GenGFX6)}
}

// OperandC64 returns a 64-bit constant.
func OperandC64(v uint64) Operand {
	return Operand{kind: operandKindConstant, value: v, bytes: 8, literal: !isInline64(v, GenGFX6)}
}

// OperandLiteral32 returns a 32-bit constant which is always encoded as a literal.
func OperandLiteral32(v uint32) Operand {
	return Operand{kind: operandKindConstant, value: uint64(v), bytes: 4, literal: true}
}

// OperandZero returns the constant zero of the given size.
func OperandZero(bytes int) Operand {
	return Operand{kind: operandKindConstant, bytes: uint8(bytes)}
}

// OperandGetConst returns the constant of the given size, which is inline if the generation can encode it inline.
func OperandGetConst(gen Gen, v uint64, bytes int) Operand {
	switch bytes {
	case 8:
		return Operand{kind: operandKindConstant, value: v, bytes: 8, literal: !isInline64(v, gen)}
	case 4:
		return Operand{kind: operandKindConstant, value: v & 0xffffffff, bytes: 4, literal: !isInline32(uint32(v), gen)}
	case 2:
		return Operand{kind: operandKindConstant, value: v & 0xffff, bytes: 2, literal: !isInline16(uint16(v), gen)}
	case 1:
		return Operand{kind: operandKindConstant, value: v & 0xff, bytes: 1}
	default:
		panic(fmt.Sprintf("BUG: invalid constant size %d", bytes))
	}
}

func isInline32(v uint32, gen Gen) bool {
	if v <= 64 || v >= 0xfffffff0 {
		return true
	}
	switch v {
	case 0x3f000000, 0xbf000000, 0x3f800000, 0xbf800000, 0x40000000, 0xc0000000, 0x40800000, 0xc0800000:
		return true
	case 0x3e22f983: // 1/(2*PI)
		return gen >= GenGFX8
	}
	return false
}

func isInline16(v uint16, gen Gen) bool {
	if v <= 64 || v >= 0xfff0 {
		return true
	}
	switch v {
	case 0x3800, 0xb800, 0x3c00, 0xbc00, 0x4000, 0xc000, 0x4400, 0xc400:
		return true
	case 0x3118: // 1/(2*PI)
		return gen >= GenGFX8
	}
	return false
}

func isInline64(v uint64, gen Gen) bool {
	if v <= 64 || v >= 0xfffffffffffffff0 {
		return true
	}
	switch v {
	case 0x3fe0000000000000, 0xbfe0000000000000, 0x3ff0000000000000, 0xbff0000000000000,
		0x4000000000000000, 0xc000000000000000, 0x4010000000000000, 0xc010000000000000:
		return true
	case 0x3fc45f306dc9c882: // 1/(2*PI)
		return gen >= GenGFX8
	}
	return false
}

// IsTemp returns true if this references a Temp.
func (o Operand) IsTemp() bool { return o.kind == operandKindTemp }

// IsConstant returns true if this is a constant, either inline or literal.
func (o Operand) IsConstant() bool { return o.kind == operandKindConstant }

// IsLiteral returns true if this is a constant which needs a literal.
func (o Operand) IsLiteral() bool { return o.kind == operandKindConstant && o.literal }

// IsUndefined returns true if this is undefined.
func (o Operand) IsUndefined() bool { return o.kind == operandKindUndefined }

// IsFixed returns true if this is assigned to a physical register.
func (o Operand) IsFixed() bool { return o.fixed }

// Temp returns the referenced Temp, or TempInvalid.
func (o Operand) Temp() Temp { return o.temp }

// TempID returns the id of the referenced Temp.
func (o Operand) TempID() TempID { return o.temp.ID() }

// HasRegClass returns true if this lives in a register.
func (o Operand) HasRegClass() bool { return o.kind == operandKindTemp || o.kind == operandKindFixed }

// RegClass returns the register class of a Temp, fixed or undefined operand.
func (o Operand) RegClass() RegClass { return o.rc }

// IsOfType returns true if this lives in a register of the given register file.
func (o Operand) IsOfType(typ RegType) bool {
	return o.HasRegClass() && o.rc.Type() == typ
}

// Bytes returns the size in bytes.
func (o Operand) Bytes() int {
	if o.kind == operandKindConstant {
		return int(o.bytes)
	}
	return o.rc.Bytes()
}

// Size returns the size in dwords.
func (o Operand) Size() int {
	return (o.Bytes() + 3) / 4
}

// PhysReg returns the fixed register.
func (o Operand) PhysReg() PhysReg { return o.reg }

// SetFixed assigns the operand to the physical register.
func (o *Operand) SetFixed(reg PhysReg) {
	o.fixed, o.reg = true, reg
}

// SetTemp makes this reference the Temp, keeping the fixed register if any.
func (o *Operand) SetTemp(t Temp) {
	o.kind, o.temp, o.rc = operandKindTemp, t, t.RegClass()
}

// ConstantValue returns the lower 32-bit of a constant.
func (o Operand) ConstantValue() uint32 { return uint32(o.value) }

// ConstantValue64 returns the value of a constant.
func (o Operand) ConstantValue64() uint64 { return o.value }

// ConstantValue16 returns one half of a constant.
func (o Operand) ConstantValue16(hi bool) uint16 {
	if hi {
		if o.bytes == 2 {
			return 0
		}
		return uint16(o.value >> 16)
	}
	return uint16(o.value)
}

// ConstantEquals returns true if this is a constant of the given value.
func (o Operand) ConstantEquals(v uint32) bool {
	return o.kind == operandKindConstant && o.ConstantValue() == v
}

// Is16bit returns true if the value is known to fit in 16 bits.
func (o Operand) Is16bit() bool { return o.is16bit }

// Set16bit marks the value as fitting in 16 bits.
func (o *Operand) Set16bit(v bool) { o.is16bit = v }

// Is24bit returns true if the value is known to fit in 24 bits.
func (o Operand) Is24bit() bool { return o.is24bit }

// Set24bit marks the value as fitting in 24 bits.
func (o *Operand) Set24bit(v bool) { o.is24bit = v }

// Equals returns true if both operands read the same value from the same location.
func (o Operand) Equals(other Operand) bool {
	if o.kind != other.kind || o.fixed != other.fixed || (o.fixed && o.reg != other.reg) {
		return false
	}
	switch o.kind {
	case operandKindConstant:
		return o.bytes == other.bytes && o.literal == other.literal && o.value == other.value
	case operandKindTemp:
		return o.temp == other.temp
	default:
		return o.rc == other.rc
	}
}

// String implements fmt.Stringer.
func (o Operand) String() string {
	var b strings.Builder
	switch o.kind {
	case operandKindUndefined:
		fmt.Fprintf(&b, "undef:%s", o.rc)
	case operandKindConstant:
		if o.literal {
			b.WriteString("lit:")
		} else {
			b.WriteByte('#')
		}
		if o.value <= 64 {
			fmt.Fprintf(&b, "%d", o.value)
		} else {
			fmt.Fprintf(&b, "%#x", o.value)
		}
		switch o.bytes {
		case 1:
			b.WriteString(":8")
		case 2:
			b.WriteString(":16")
		case 8:
			b.WriteString(":64")
		}
	case operandKindFixed:
		fmt.Fprintf(&b, "@%s:%s", o.reg, o.rc)
	case operandKindTemp:
		b.WriteString(o.temp.String())
		if o.fixed {
			fmt.Fprintf(&b, "@%s", o.reg)
		}
		if o.is24bit {
			b.WriteString(".u24")
		} else if o.is16bit {
			b.WriteString(".u16")
		}
	}
	return b.String()
}

// DefFlags are the flags of a Definition.
type DefFlags uint8

const (
	// DefPrecise forbids any optimization changing the rounding of the result.
	DefPrecise DefFlags = 1 << iota
	DefNaNPreserve
	DefInfPreserve
	// DefSZPreserve requires the sign of zero to be preserved.
	DefSZPreserve
)

var defFlagNames = [...]string{"precise", "nan_preserve", "inf_preserve", "sz_preserve"}

// String implements fmt.Stringer.
func (f DefFlags) String() string {
	var names []string
	for i, n := range defFlagNames {
		if f&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	return strings.Join(names, " ")
}

// ParseDefFlag parses one name printed by DefFlags.String.
func ParseDefFlag(s string) (DefFlags, bool) {
	for i, n := range defFlagNames {
		if n == s {
			return 1 << i, true
		}
	}
	return 0, false
}

// Definition is an output of an instruction.
type Definition struct {
	temp  Temp
	reg   PhysReg
	fixed bool
	flags DefFlags
}

// NewDefinition returns a Definition of the Temp.
func NewDefinition(t Temp) Definition {
	return Definition{temp: t}
}

// NewFixedDefinition returns a Definition of the Temp assigned to the register.
func NewFixedDefinition(t Temp, reg PhysReg) Definition {
	return Definition{temp: t, reg: reg, fixed: true}
}

// IsTemp returns true if this defines a Temp.
func (d Definition) IsTemp() bool { return d.temp.Valid() }

// Temp returns the defined Temp.
func (d Definition) Temp() Temp { return d.temp }

// TempID returns the id of the defined Temp.
func (d Definition) TempID() TempID { return d.temp.ID() }

// RegClass returns the register class of the defined Temp.
func (d Definition) RegClass() RegClass { return d.temp.RegClass() }

// Bytes returns the size in bytes.
func (d Definition) Bytes() int { return d.temp.Bytes() }

// Size returns the size in dwords.
func (d Definition) Size() int { return d.temp.Size() }

// SetTemp changes the defined Temp.
func (d *Definition) SetTemp(t Temp) { d.temp = t }

// IsFixed returns true if this is assigned to a physical register.
func (d Definition) IsFixed() bool { return d.fixed }

// PhysReg returns the fixed register.
func (d Definition) PhysReg() PhysReg { return d.reg }

// SetFixed assigns the definition to the physical register.
func (d *Definition) SetFixed(reg PhysReg) { d.fixed, d.reg = true, reg }

// Flags returns the flags.
func (d Definition) Flags() DefFlags { return d.flags }

// SetFlags replaces the flags.
func (d *Definition) SetFlags(f DefFlags) { d.flags = f }

// IsPrecise returns true if the result must be computed exactly as written.
func (d Definition) IsPrecise() bool { return d.flags&DefPrecise != 0 }

// SetPrecise sets or clears DefPrecise.
func (d *Definition) SetPrecise(v bool) {
	if v {
		d.flags |= DefPrecise
	} else {
		d.flags &^= DefPrecise
	}
}

// IsSZPreserve returns true if the sign of zero must be preserved.
func (d Definition) IsSZPreserve() bool { return d.flags&DefSZPreserve != 0 }

// IsNaNPreserve returns true if NaNs must be preserved.
func (d Definition) IsNaNPreserve() bool { return d.flags&DefNaNPreserve != 0 }

// IsInfPreserve returns true if infinities must be preserved.
func (d Definition) IsInfPreserve() bool { return d.flags&DefInfPreserve != 0 }

// String implements fmt.Stringer.
func (d Definition) String() string {
	s := fmt.Sprintf("%s:%s", d.temp, d.temp.RegClass())
	if d.fixed {
		s += "@" + d.reg.String()
	}
	return s
}
