package opt

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// label is the set of facts known about an SSA value.
type label uint32

const (
	// Value-shaped facts. labelLiteral is set for any constant and the labelConstantN facts are added
	// for each width at which the constant can be inline-encoded.
	labelLiteral label = 1 << iota
	labelConstant16
	labelConstant32
	labelConstant64
	// labelCombined marks the result of a fusion which can be reverted by the selector.
	labelCombined

	// Temp-shaped facts.
	labelTemp
	labelNegFP32_64
	labelAbsFP32_64
	labelNegFP16
	labelAbsFP16
	labelFcanonicalize
	labelUniformBool
	labelSCCInvert

	// Instruction-shaped facts: they are about the producer itself.
	labelExtract
	labelUniformBitwise
	labelPhysReg

	// Attributes which are independent of the groups above.
	labelSCCNeeded
	labelCanonicalizedFP16
	labelCanonicalizedFP32
	labelCanonicalizedFP64
)

const (
	valueLabels = labelLiteral | labelConstant16 | labelConstant32 | labelConstant64 | labelCombined
	tempLabels  = labelTemp | labelNegFP32_64 | labelAbsFP32_64 | labelNegFP16 | labelAbsFP16 |
		labelFcanonicalize | labelUniformBool | labelSCCInvert
	instrLabels         = labelExtract | labelUniformBitwise | labelPhysReg
	canonicalizedLabels = labelCanonicalizedFP16 | labelCanonicalizedFP32 | labelCanonicalizedFP64
	attributeLabels     = labelSCCNeeded | canonicalizedLabels
	constantLabels      = labelLiteral | labelConstant16 | labelConstant32 | labelConstant64
)

// factGroup is one of the mutually exclusive groups of labels.
type factGroup uint8

const (
	factGroupNone factGroup = iota
	factGroupValue
	factGroupTemp
	factGroupInstr
)

// ssaInfo is the fact record of an SSA value.
type ssaInfo struct {
	label label
	// val is the payload of the value-shaped facts: a constant, or the index of the pre-combine instruction.
	val uint64
	// temp is the payload of the temp-shaped facts.
	temp ir.Temp
	// reg is the payload of labelPhysReg.
	reg ir.PhysReg
	// producer is the instruction currently defining the value.
	producer ir.InstrID
}

func newSSAInfo() ssaInfo {
	return ssaInfo{producer: ir.InstrIDInvalid}
}

// addLabel adds the label, clearing the facts of the other groups and the superseded facts of its own group.
func (i *ssaInfo) addLabel(l label) {
	// The payload of every group is shared by the labels of the group, so a new fact of any group
	// supersedes all of them.
	if l&(valueLabels|tempLabels|instrLabels) != 0 {
		i.label &^= valueLabels | tempLabels | instrLabels
	}
	i.label |= l
}

// keepOnly clears every label but the given ones.
func (i *ssaInfo) keepOnly(l label) {
	i.label &= l
}

func (i *ssaInfo) clear() {
	i.label = 0
}

// group returns the group of the active fact, or factGroupNone.
func (i *ssaInfo) group() factGroup {
	switch {
	case i.label&valueLabels != 0:
		return factGroupValue
	case i.label&tempLabels != 0:
		return factGroupTemp
	case i.label&instrLabels != 0:
		return factGroupInstr
	}
	return factGroupNone
}

// exclusive returns true if the active facts belong to at most one group.
func (i *ssaInfo) exclusive() bool {
	var n int
	for _, g := range []label{valueLabels, tempLabels, instrLabels} {
		if i.label&g != 0 {
			n++
		}
	}
	return n <= 1
}

func (i *ssaInfo) setConstant(gen ir.Gen, v uint64) {
	l := labelLiteral
	// The upper half must not be lost in case of packed 16-bit constants.
	if op16 := ir.OperandGetConst(gen, v, 2); gen >= ir.GenGFX8 && !op16.IsLiteral() && uint64(op16.ConstantValue16(true)) == (v>>16)&0xffff {
		l |= labelConstant16
	}
	if !ir.OperandGetConst(gen, v, 4).IsLiteral() {
		l |= labelConstant32
	}
	if !ir.OperandGetConst(gen, v, 8).IsLiteral() {
		l |= labelConstant64
	}
	i.addLabel(l)
	i.val = v
}

func (i *ssaInfo) isConstant() bool { return i.label&labelLiteral != 0 }

// isInlineConstant returns true if the constant can be inline-encoded at the given width.
func (i *ssaInfo) isInlineConstant(bits int) bool {
	switch bits {
	case 16:
		return i.label&labelConstant16 != 0
	case 32:
		return i.label&labelConstant32 != 0
	case 64:
		return i.label&labelConstant64 != 0
	}
	return false
}

func (i *ssaInfo) setCombined(idx int) {
	i.addLabel(labelCombined)
	i.val = uint64(idx)
}

func (i *ssaInfo) isCombined() bool { return i.label&labelCombined != 0 }

func (i *ssaInfo) setTempLabel(l label, t ir.Temp) {
	i.addLabel(l)
	i.temp = t
}

func (i *ssaInfo) setTemp(t ir.Temp) { i.setTempLabel(labelTemp, t) }
func (i *ssaInfo) isTemp() bool { return i.label&labelTemp != 0 }
func (i *ssaInfo) setUniformBool(t ir.Temp) { i.setTempLabel(labelUniformBool, t) }
func (i *ssaInfo) isUniformBool() bool { return i.label&labelUniformBool != 0 }
func (i *ssaInfo) setSCCInvert(t ir.Temp) { i.setTempLabel(labelSCCInvert, t) }
func (i *ssaInfo) isSCCInvert() bool { return i.label&labelSCCInvert != 0 }
func (i *ssaInfo) setFcanonicalize(t ir.Temp) { i.setTempLabel(labelFcanonicalize, t) }
func (i *ssaInfo) isFcanonicalize() bool { return i.label&labelFcanonicalize != 0 }

func negLabel(bits int) label {
	if bits == 16 {
		return labelNegFP16
	}
	return labelNegFP32_64
}

func absLabel(bits int) label {
	if bits == 16 {
		return labelAbsFP16
	}
	return labelAbsFP32_64
}

func (i *ssaInfo) setNeg(t ir.Temp, bits int) { i.setTempLabel(negLabel(bits), t) }
func (i *ssaInfo) setAbs(t ir.Temp, bits int) { i.setTempLabel(absLabel(bits), t) }
func (i *ssaInfo) setNegAbs(t ir.Temp, bits int) { i.setTempLabel(negLabel(bits)|absLabel(bits), t) }

// isNeg returns true if the value is the negation of temp for float operands of the given width.
func (i *ssaInfo) isNeg(bits int) bool { return i.label&negLabel(bits) != 0 }

// isAbs returns true if the value is the absolute value of temp for float operands of the given width.
func (i *ssaInfo) isAbs(bits int) bool { return i.label&absLabel(bits) != 0 }

func (i *ssaInfo) setExtract() { i.addLabel(labelExtract) }
func (i *ssaInfo) isExtract() bool { return i.label&labelExtract != 0 }
func (i *ssaInfo) setUniformBitwise() { i.addLabel(labelUniformBitwise) }
func (i *ssaInfo) isUniformBitwise() bool { return i.label&labelUniformBitwise != 0 }

func (i *ssaInfo) setPhysReg(reg ir.PhysReg) {
	i.addLabel(labelPhysReg)
	i.reg = reg
}

func (i *ssaInfo) isPhysReg() bool { return i.label&labelPhysReg != 0 }

func (i *ssaInfo) setSCCNeeded() { i.label |= labelSCCNeeded }
func (i *ssaInfo) isSCCNeeded() bool { return i.label&labelSCCNeeded != 0 }

func canonicalizedLabel(bits int) label {
	switch bits {
	case 16:
		return labelCanonicalizedFP16
	case 64:
		return labelCanonicalizedFP64
	default:
		return labelCanonicalizedFP32
	}
}

func (i *ssaInfo) setCanonicalized(bits int) { i.label |= canonicalizedLabel(bits) }
func (i *ssaInfo) isCanonicalized(bits int) bool { return i.label&canonicalizedLabel(bits) != 0 }

var labelNames = [...]string{
	"literal", "constant16", "constant32", "constant64", "combined",
	"temp", "neg", "abs", "neg16", "abs16", "fcanonicalize", "uniform_bool", "scc_invert",
	"extract", "uniform_bitwise", "phys_reg",
	"scc_needed", "canonicalized16", "canonicalized32", "canonicalized64",
}

// String implements fmt.Stringer.
func (l label) String() string {
	var names []string
	for i, n := range labelNames {
		if l&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	return strings.Join(names, "|")
}

// String implements fmt.Stringer.
func (i ssaInfo) String() string {
	switch i.group() {
	case factGroupValue:
		return fmt.Sprintf("%s(%#x)", i.label, i.val)
	case factGroupTemp:
		return fmt.Sprintf("%s(%s)", i.label, i.temp)
	default:
		if i.isPhysReg() {
			return fmt.Sprintf("%s(%s)", i.label, i.reg)
		}
		return i.label.String()
	}
}
