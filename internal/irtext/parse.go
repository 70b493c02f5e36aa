package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// ParseInstruction parses one instruction in the syntax of ir.Instruction.String, and allocates it in the
// program without inserting it in a block. The definitions are declared if they aren't yet, and the Temps
// read by the operands must already be declared.
func ParseInstruction(p *ir.Program, line string) (*ir.Instruction, error) {
	instr, err := parseInstruction(p, line)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, line, err)
	}
	return instr, nil
}

func splitDefs(line string) (defs, rest string) {
	if i := strings.Index(line, " = "); i >= 0 {
		return line[:i], line[i+3:]
	}
	return "", line
}

// declareDefs declares the Temps defined by the line.
func declareDefs(p *ir.Program, line string) error {
	defs, _ := splitDefs(strings.TrimSpace(line))
	if defs == "" {
		return nil
	}
	for _, s := range strings.Split(defs, ",") {
		d, err := parseDefinition(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		if _, err := p.DeclareTemp(d.id, d.rc); err != nil {
			return err
		}
	}
	return nil
}

type defSyntax struct {
	id    ir.TempID
	rc    ir.RegClass
	reg   ir.PhysReg
	fixed bool
}

// parseDefinition parses "%3:v1" or "%4:s1@scc".
func parseDefinition(s string) (defSyntax, error) {
	var d defSyntax
	if at := strings.IndexByte(s, '@'); at >= 0 {
		reg, err := ir.ParsePhysReg(s[at+1:])
		if err != nil {
			return d, err
		}
		d.reg, d.fixed = reg, true
		s = s[:at]
	}
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return d, fmt.Errorf("definition %q has no register class", s)
	}
	id, err := parseTempID(s[:colon])
	if err != nil {
		return d, err
	}
	rc, err := ir.ParseRegClass(s[colon+1:])
	if err != nil {
		return d, err
	}
	d.id, d.rc = id, rc
	return d, nil
}

func parseTempID(s string) (ir.TempID, error) {
	if !strings.HasPrefix(s, "%") {
		return 0, fmt.Errorf("invalid temp %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid temp %q", s)
	}
	return ir.TempID(n), nil
}

func parseInstruction(p *ir.Program, line string) (*ir.Instruction, error) {
	defsStr, rest := splitDefs(strings.TrimSpace(line))

	var defs []ir.Definition
	if defsStr != "" {
		for _, s := range strings.Split(defsStr, ",") {
			d, err := parseDefinition(strings.TrimSpace(s))
			if err != nil {
				return nil, err
			}
			if rc := declaredRegClass(p, d.id); !rc.Valid() {
				if _, err := p.DeclareTemp(d.id, d.rc); err != nil {
					return nil, err
				}
			} else if rc != d.rc {
				return nil, fmt.Errorf("%%%d is declared as %s", d.id, rc)
			}
			t := ir.NewTemp(d.id, d.rc)
			if d.fixed {
				defs = append(defs, ir.NewFixedDefinition(t, d.reg))
			} else {
				defs = append(defs, ir.NewDefinition(t))
			}
		}
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing opcode")
	}
	op, ok := ir.LookupOpcode(fields[0])
	if !ok {
		return nil, fmt.Errorf("unknown opcode %q", fields[0])
	}

	var ops []parsedOperand
	var attrs []string
	for _, f := range fields[1:] {
		if len(attrs) == 0 && isOperandToken(f) {
			o, err := parseOperand(p, strings.TrimSuffix(f, ","))
			if err != nil {
				return nil, err
			}
			ops = append(ops, o)
			continue
		}
		attrs = append(attrs, f)
	}

	format := op.Format()
	for _, a := range attrs {
		if strings.HasPrefix(a, "fmt:") {
			f, err := parseFormat(strings.TrimPrefix(a, "fmt:"))
			if err != nil {
				return nil, err
			}
			format = f
		}
	}

	instr := p.AllocateInstruction(op, format, len(ops), len(defs))
	copy(instr.Defs, defs)
	for i, o := range ops {
		instr.Operands[i] = o.op
		if i < 3 {
			instr.VALU.Neg[i], instr.VALU.Abs[i] = o.neg, o.abs
		} else if o.neg || o.abs {
			return nil, fmt.Errorf("operand %d can't have modifiers", i)
		}
	}
	if err := applyAttributes(instr, attrs); err != nil {
		return nil, err
	}
	return instr, nil
}

func declaredRegClass(p *ir.Program, id ir.TempID) ir.RegClass {
	if id >= p.PeekAllocationID() {
		return ir.RegClassInvalid
	}
	return p.TempRegClass(id)
}

type parsedOperand struct {
	op       ir.Operand
	neg, abs bool
}

func isOperandToken(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '%', '#', '@', '-', '|':
		return true
	}
	return strings.HasPrefix(s, "lit:") || strings.HasPrefix(s, "undef:")
}

func parseOperand(p *ir.Program, s string) (parsedOperand, error) {
	var ret parsedOperand
	if strings.HasPrefix(s, "-") {
		ret.neg = true
		s = s[1:]
	}
	if len(s) >= 2 && s[0] == '|' && s[len(s)-1] == '|' {
		ret.abs = true
		s = s[1 : len(s)-1]
	}

	switch {
	case strings.HasPrefix(s, "undef:"):
		rc, err := ir.ParseRegClass(strings.TrimPrefix(s, "undef:"))
		if err != nil {
			return ret, err
		}
		ret.op = ir.OperandUndef(rc)
	case strings.HasPrefix(s, "@"):
		colon := strings.LastIndexByte(s, ':')
		if colon < 0 {
			return ret, fmt.Errorf("fixed operand %q has no register class", s)
		}
		reg, err := ir.ParsePhysReg(s[1:colon])
		if err != nil {
			return ret, err
		}
		rc, err := ir.ParseRegClass(s[colon+1:])
		if err != nil {
			return ret, err
		}
		ret.op = ir.OperandFixed(reg, rc)
	case strings.HasPrefix(s, "#"), strings.HasPrefix(s, "lit:"):
		op, err := parseConstant(p.Target.Gen, s)
		if err != nil {
			return ret, err
		}
		ret.op = op
	case strings.HasPrefix(s, "%"):
		op, err := parseTempOperand(p, s)
		if err != nil {
			return ret, err
		}
		ret.op = op
	default:
		return ret, fmt.Errorf("invalid operand %q", s)
	}
	return ret, nil
}

// parseConstant parses "#1", "#0x3f800000", "#0x3c00:16" or "lit:0x1234". A '#' constant is a literal
// only if the generation can't encode it inline.
func parseConstant(gen ir.Gen, s string) (ir.Operand, error) {
	literal := strings.HasPrefix(s, "lit:")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "lit:"), "#")
	bytes := 4
	if colon := strings.IndexByte(s, ':'); colon >= 0 {
		switch s[colon+1:] {
		case "8":
			bytes = 1
		case "16":
			bytes = 2
		case "64":
			bytes = 8
		default:
			return ir.Operand{}, fmt.Errorf("invalid constant size %q", s[colon+1:])
		}
		s = s[:colon]
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return ir.Operand{}, fmt.Errorf("invalid constant %q", s)
	}
	if literal && bytes == 4 {
		return ir.OperandLiteral32(uint32(v)), nil
	}
	return ir.OperandGetConst(gen, v, bytes), nil
}

// parseTempOperand parses "%3", "%3@vcc", "%3.u24" or "%3.u16".
func parseTempOperand(p *ir.Program, s string) (ir.Operand, error) {
	var is16, is24 bool
	switch {
	case strings.HasSuffix(s, ".u24"):
		is24, s = true, strings.TrimSuffix(s, ".u24")
	case strings.HasSuffix(s, ".u16"):
		is16, s = true, strings.TrimSuffix(s, ".u16")
	}
	var reg ir.PhysReg
	fixed := false
	if at := strings.IndexByte(s, '@'); at >= 0 {
		r, err := ir.ParsePhysReg(s[at+1:])
		if err != nil {
			return ir.Operand{}, err
		}
		reg, fixed = r, true
		s = s[:at]
	}
	id, err := parseTempID(s)
	if err != nil {
		return ir.Operand{}, err
	}
	rc := declaredRegClass(p, id)
	if !rc.Valid() {
		return ir.Operand{}, fmt.Errorf("%%%d is not defined", id)
	}
	op := ir.OperandTemp(ir.NewTemp(id, rc))
	if fixed {
		op.SetFixed(reg)
	}
	op.Set16bit(is16)
	op.Set24bit(is24)
	return op, nil
}

var formatsByName = func() map[string]ir.Format {
	ret := map[string]ir.Format{}
	for _, f := range []ir.Format{
		ir.FormatPseudo, ir.FormatPseudoBranch, ir.FormatSOP1, ir.FormatSOP2, ir.FormatSOPK, ir.FormatSOPC,
		ir.FormatVOP1, ir.FormatVOP2, ir.FormatVOPC, ir.FormatVOP3, ir.FormatVOP3P, ir.FormatDPP16,
		ir.FormatDPP8, ir.FormatSDWA,
	} {
		ret[f.String()] = f
	}
	return ret
}()

// parseFormat parses the format printed with '+' between the vector encodings, e.g. "VOP2+SDWA".
func parseFormat(s string) (ir.Format, error) {
	var ret ir.Format
	for _, name := range strings.Split(s, "+") {
		f, ok := formatsByName[name]
		if !ok {
			return 0, fmt.Errorf("unknown format %q", name)
		}
		ret |= f
	}
	return ret, nil
}

func parseBits(s string, dst []bool) error {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v>>len(dst) != 0 {
		return fmt.Errorf("invalid bit mask %q", s)
	}
	for i := range dst {
		dst[i] = v&(1<<i) != 0
	}
	return nil
}

func applyAttributes(instr *ir.Instruction, attrs []string) error {
	var flags ir.DefFlags
	for _, a := range attrs {
		key, val, _ := strings.Cut(a, ":")
		var err error
		switch key {
		case "fmt":
		case "opsel":
			err = parseBits(val, instr.VALU.Opsel[:])
		case "opsel_lo":
			err = parseBits(val, instr.VALU.OpselLo[:])
		case "opsel_hi":
			err = parseBits(val, instr.VALU.OpselHi[:])
		case "clamp":
			instr.VALU.Clamp = true
		case "omod":
			switch val {
			case "2":
				instr.VALU.Omod = 1
			case "4":
				instr.VALU.Omod = 2
			case "0.5":
				instr.VALU.Omod = 3
			default:
				err = fmt.Errorf("invalid output modifier %q", val)
			}
		case "sel0":
			instr.SDWA.Sel[0], err = ir.ParseSubdwordSel(val)
		case "sel1":
			instr.SDWA.Sel[1], err = ir.ParseSubdwordSel(val)
		case "dst_sel":
			instr.SDWA.DstSel, err = ir.ParseSubdwordSel(val)
		case "dpp16":
			var v uint64
			v, err = strconv.ParseUint(val, 0, 16)
			instr.DPP.Ctrl = uint16(v)
		case "dpp8":
			var v uint64
			v, err = strconv.ParseUint(val, 0, 32)
			instr.DPP.LaneSel = uint32(v)
		case "bound_ctrl":
			instr.DPP.BoundCtrl = true
		case "fi":
			instr.DPP.FetchInactive = true
		case "imm":
			var v uint64
			v, err = strconv.ParseUint(val, 0, 16)
			instr.Imm = uint32(v)
		case "pass":
			var v uint64
			v, err = strconv.ParseUint(val, 10, 32)
			instr.PassFlags = uint32(v)
		default:
			f, ok := ir.ParseDefFlag(a)
			if !ok {
				return fmt.Errorf("unknown attribute %q", a)
			}
			flags |= f
		}
		if err != nil {
			return err
		}
	}
	if flags != 0 {
		if len(instr.Defs) == 0 {
			return fmt.Errorf("definition flags %q on an instruction without definitions", flags)
		}
		instr.Defs[0].SetFlags(flags)
	}
	if instr.IsSDWA() {
		for _, s := range []*ir.SubdwordSel{&instr.SDWA.Sel[0], &instr.SDWA.Sel[1], &instr.SDWA.DstSel} {
			if !s.Valid() {
				*s = ir.SelDword
			}
		}
	}
	return nil
}
