package aluopt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
)

// Program is an ALU program in SSA form, as loaded by LoadProgram and rewritten by Optimize.
type Program struct {
	p *ir.Program
}

// LoadProgram parses the YAML document of a program: its target, and per block the float mode and the
// instructions in the printed form of String.
func LoadProgram(data []byte) (*Program, error) {
	p, err := irtext.Load(data)
	if err != nil {
		return nil, err
	}
	return &Program{p: p}, nil
}

// String returns the document of the program, which LoadProgram parses back.
func (p *Program) String() string {
	return irtext.Print(p.p)
}

// Instructions returns the printed instructions of the block at the given index.
func (p *Program) Instructions(block int) []string {
	if block < 0 || block >= len(p.p.Blocks) {
		panic(fmt.Sprintf("block %d out of range: program has %d blocks", block, len(p.p.Blocks)))
	}
	return irtext.Instructions(p.p.Blocks[block])
}
