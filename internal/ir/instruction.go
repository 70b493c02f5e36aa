package ir

import (
	"fmt"
	"math"
	"strings"
)

// InstrID is the index of an Instruction in the instruction arena of its Program.
type InstrID uint32

// InstrIDInvalid is the invalid InstrID.
const InstrIDInvalid InstrID = math.MaxUint32

// Instruction represents an instruction whose semantics are specified by its Opcode.
// The modifier fields are only meaningful for the encodings in Format.
type Instruction struct {
	id       InstrID
	Opcode   Opcode
	Format   Format
	Operands []Operand
	Defs     []Definition
	// PassFlags correlates instructions created for the same exec mask.
	PassFlags uint32
	VALU      VALUModifiers
	SDWA      SDWAModifiers
	DPP       DPPModifiers
	// Imm is the 16-bit immediate of SOPK instructions.
	Imm uint32
}

// VALUModifiers are the input and output modifiers of vector instructions.
type VALUModifiers struct {
	Neg, Abs [3]bool
	// Opsel selects the high half of 16-bit operands. Index 3 is the definition.
	Opsel [4]bool
	// OpselLo and OpselHi are the VOP3P half selections. For v_fma_mix, OpselHi means the operand is fp16
	// and OpselLo selects its high half.
	OpselLo, OpselHi [3]bool
	// Omod is the output multiplier: 0 = none, 1 = *2, 2 = *4, 3 = *0.5.
	Omod  uint8
	Clamp bool
}

// SDWAModifiers are the sub-dword selections of the SDWA encoding.
type SDWAModifiers struct {
	Sel    [2]SubdwordSel
	DstSel SubdwordSel
}

// DPPModifiers are the lane permutations of the DPP encodings.
type DPPModifiers struct {
	// Ctrl is the DPP16 control.
	Ctrl uint16
	// LaneSel is the DPP8 lane selection: eight 3-bit lane indexes.
	LaneSel       uint32
	BoundCtrl     bool
	FetchInactive bool
}

// ID returns the InstrID of this instruction.
func (i *Instruction) ID() InstrID {
	return i.id
}

// IsVALU returns true if this is a vector ALU instruction.
func (i *Instruction) IsVALU() bool { return i.Format.IsVALU() }

// IsSALU returns true if this is a scalar ALU instruction.
func (i *Instruction) IsSALU() bool { return i.Format.IsSALU() }

// IsDPP returns true if this uses either DPP encoding.
func (i *Instruction) IsDPP() bool { return i.Format.Is(FormatDPP16 | FormatDPP8) }

// IsSDWA returns true if this uses the SDWA encoding.
func (i *Instruction) IsSDWA() bool { return i.Format.Is(FormatSDWA) }

// IsVOP3 returns true if this uses the VOP3 encoding.
func (i *Instruction) IsVOP3() bool { return i.Format.Is(FormatVOP3) }

// IsVOP3P returns true if this uses the VOP3P encoding.
func (i *Instruction) IsVOP3P() bool { return i.Format.Is(FormatVOP3P) }

// ReadsExec returns true if an operand is the exec mask.
func (i *Instruction) ReadsExec() bool {
	for _, op := range i.Operands {
		if op.IsFixed() && (op.PhysReg() == RegExec || op.PhysReg() == RegExecHi) {
			return true
		}
	}
	return false
}

// UsesModifiers returns true if any input or output modifier or special encoding is used.
func (i *Instruction) UsesModifiers() bool {
	if i.IsDPP() || i.IsSDWA() || i.IsVOP3P() {
		return true
	}
	if !i.IsVALU() {
		return false
	}
	v := &i.VALU
	for idx := range i.Operands {
		if idx < 3 && (v.Neg[idx] || v.Abs[idx] || v.Opsel[idx]) {
			return true
		}
	}
	return v.Opsel[3] || v.Omod != 0 || v.Clamp
}

// String implements fmt.Stringer.
func (i *Instruction) String() string {
	var b strings.Builder
	for idx, d := range i.Defs {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
	}
	if len(i.Defs) > 0 {
		b.WriteString(" = ")
	}
	b.WriteString(i.Opcode.String())
	for idx, op := range i.Operands {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(i.formatOperand(idx, op))
	}
	b.WriteString(i.formatAttributes())
	return b.String()
}

func (i *Instruction) formatOperand(idx int, op Operand) string {
	s := op.String()
	if !i.IsVALU() || idx >= 3 {
		return s
	}
	if i.VALU.Abs[idx] {
		s = "|" + s + "|"
	}
	if i.VALU.Neg[idx] {
		s = "-" + s
	}
	return s
}

func formatBits(bs []bool) string {
	var v uint
	for idx, set := range bs {
		if set {
			v |= 1 << idx
		}
	}
	return fmt.Sprintf("%#b", v)
}

func anySet(bs []bool) bool {
	for _, set := range bs {
		if set {
			return true
		}
	}
	return false
}

var omodNames = [...]string{"", "2", "4", "0.5"}

func (i *Instruction) formatAttributes() string {
	var attrs []string
	if i.Format != i.Opcode.Format() {
		attrs = append(attrs, "fmt:"+strings.ReplaceAll(i.Format.String(), "|", "+"))
	}
	if i.IsVALU() {
		v := &i.VALU
		if anySet(v.Opsel[:]) {
			attrs = append(attrs, "opsel:"+formatBits(v.Opsel[:]))
		}
		if i.IsVOP3P() {
			attrs = append(attrs, "opsel_lo:"+formatBits(v.OpselLo[:]), "opsel_hi:"+formatBits(v.OpselHi[:]))
		}
		if v.Clamp {
			attrs = append(attrs, "clamp")
		}
		if v.Omod != 0 {
			attrs = append(attrs, "omod:"+omodNames[v.Omod&3])
		}
	}
	if i.IsSDWA() {
		attrs = append(attrs, "sel0:"+i.SDWA.Sel[0].String(), "sel1:"+i.SDWA.Sel[1].String(), "dst_sel:"+i.SDWA.DstSel.String())
	}
	if i.Format.Is(FormatDPP16) {
		attrs = append(attrs, fmt.Sprintf("dpp16:%#x", i.DPP.Ctrl))
	}
	if i.Format.Is(FormatDPP8) {
		attrs = append(attrs, fmt.Sprintf("dpp8:%#x", i.DPP.LaneSel))
	}
	if i.IsDPP() {
		if i.DPP.BoundCtrl {
			attrs = append(attrs, "bound_ctrl")
		}
		if i.DPP.FetchInactive {
			attrs = append(attrs, "fi")
		}
	}
	if i.Format == FormatSOPK {
		attrs = append(attrs, fmt.Sprintf("imm:%#x", i.Imm))
	}
	if i.PassFlags != 0 {
		attrs = append(attrs, fmt.Sprintf("pass:%d", i.PassFlags))
	}
	if len(i.Defs) > 0 && i.Defs[0].Flags() != 0 {
		attrs = append(attrs, i.Defs[0].Flags().String())
	}
	if len(attrs) == 0 {
		return ""
	}
	return " " + strings.Join(attrs, " ")
}
