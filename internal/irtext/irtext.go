// Package irtext loads and prints programs as YAML documents, whose instructions are written in the
// syntax of ir.Instruction.String:
//
//	target:
//	  gen: gfx10
//	  wave_size: 64
//	blocks:
//	- fp_mode: {denorm32: flush, denorm16_64: keep}
//	  instructions:
//	  - "%1:v1, %2:v1 = p_startpgm"
//	  - "%3:v1 = v_mul_f32 %1, %2"
//	  - "%4:v1 = v_add_f32 %3, #0x3f800000"
//	  - "p_unit_test %4"
package irtext

import (
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/tetratelabs/aluopt/internal/ir"
)

// ErrSyntax is wrapped by the errors of malformed documents and instructions.
var ErrSyntax = errors.New("syntax error")

type document struct {
	Target targetDoc   `json:"target"`
	Blocks []*blockDoc `json:"blocks"`
}

type targetDoc struct {
	Gen         string `json:"gen"`
	WaveSize    int    `json:"wave_size,omitempty"`
	FastFMA32   bool   `json:"fast_fma32,omitempty"`
	FusedMadMix bool   `json:"fused_mad_mix,omitempty"`
}

type blockDoc struct {
	// Idom defaults to the index of the block.
	Idom         *int       `json:"idom,omitempty"`
	Kind         string     `json:"kind,omitempty"`
	FPMode       *fpModeDoc `json:"fp_mode,omitempty"`
	Instructions []string   `json:"instructions"`
}

type fpModeDoc struct {
	Denorm32              string `json:"denorm32,omitempty"`
	Denorm16_64           string `json:"denorm16_64,omitempty"`
	MustFlushDenorms32    bool   `json:"must_flush_denorms32,omitempty"`
	MustFlushDenorms16_64 bool   `json:"must_flush_denorms16_64,omitempty"`
}

// Load parses a program document.
func Load(data []byte) (*ir.Program, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	t, err := doc.Target.target()
	if err != nil {
		return nil, fmt.Errorf("%w: target: %v", ErrSyntax, err)
	}
	p := ir.NewProgram(t)

	for i, bd := range doc.Blocks {
		blk := p.AddBlock()
		if err := bd.apply(blk); err != nil {
			return nil, fmt.Errorf("%w: BB%d: %v", ErrSyntax, i, err)
		}
		// Phis may read values defined later in the program order.
		for _, line := range bd.Instructions {
			if err := declareDefs(p, line); err != nil {
				return nil, fmt.Errorf("%w: BB%d: %q: %v", ErrSyntax, i, line, err)
			}
		}
	}
	for i, bd := range doc.Blocks {
		blk := p.Blocks[i]
		for _, line := range bd.Instructions {
			instr, err := parseInstruction(p, line)
			if err != nil {
				return nil, fmt.Errorf("%w: BB%d: %q: %v", ErrSyntax, i, line, err)
			}
			blk.Instructions = append(blk.Instructions, instr)
		}
	}
	return p, nil
}

func (d *targetDoc) target() (ir.Target, error) {
	gen, err := ir.ParseGen(d.Gen)
	if err != nil {
		return ir.Target{}, err
	}
	t := ir.Target{Gen: gen, WaveSize: d.WaveSize, FastFMA32: d.FastFMA32, FusedMadMix: d.FusedMadMix}
	switch t.WaveSize {
	case 0:
		t.WaveSize = 64
	case 32, 64:
	default:
		return ir.Target{}, fmt.Errorf("invalid wave size %d", t.WaveSize)
	}
	return t, nil
}

func (d *blockDoc) apply(blk *ir.Block) error {
	if d.Idom != nil {
		blk.LogicalIdom = *d.Idom
	}
	if d.Kind != "" {
		var kind ir.BlockKind
		for _, name := range strings.Split(d.Kind, ",") {
			k, err := ir.ParseBlockKind(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			kind |= k
		}
		blk.Kind = kind
	}
	if m := d.FPMode; m != nil {
		var err error
		if m.Denorm32 != "" {
			if blk.FPMode.Denorm32, err = ir.ParseDenormMode(m.Denorm32); err != nil {
				return err
			}
		}
		if m.Denorm16_64 != "" {
			if blk.FPMode.Denorm16_64, err = ir.ParseDenormMode(m.Denorm16_64); err != nil {
				return err
			}
		}
		blk.FPMode.MustFlushDenorms32 = m.MustFlushDenorms32
		blk.FPMode.MustFlushDenorms16_64 = m.MustFlushDenorms16_64
	}
	return nil
}

// Print returns the document of the program, which Load parses back.
func Print(p *ir.Program) string {
	doc := document{Target: targetDoc{
		Gen:         p.Target.Gen.String(),
		WaveSize:    p.Target.WaveSize,
		FastFMA32:   p.Target.FastFMA32,
		FusedMadMix: p.Target.FusedMadMix,
	}}
	for _, blk := range p.Blocks {
		bd := &blockDoc{Instructions: []string{}}
		if blk.LogicalIdom != blk.Index {
			idom := blk.LogicalIdom
			bd.Idom = &idom
		}
		if blk.Kind != ir.BlockKindTopLevel {
			bd.Kind = blk.Kind.String()
		}
		if m := blk.FPMode; m != (ir.FloatMode{}) {
			bd.FPMode = &fpModeDoc{
				Denorm32:              m.Denorm32.String(),
				Denorm16_64:           m.Denorm16_64.String(),
				MustFlushDenorms32:    m.MustFlushDenorms32,
				MustFlushDenorms16_64: m.MustFlushDenorms16_64,
			}
		}
		for _, instr := range blk.Instructions {
			if instr != nil {
				bd.Instructions = append(bd.Instructions, instr.String())
			}
		}
		doc.Blocks = append(doc.Blocks, bd)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		panic("BUG: program document can't be marshaled: " + err.Error())
	}
	return string(out)
}

// Instructions returns the instructions of the block as printed by Print, mostly for tests.
func Instructions(blk *ir.Block) []string {
	var ret []string
	for _, instr := range blk.Instructions {
		if instr != nil {
			ret = append(ret, instr.String())
		}
	}
	return ret
}
