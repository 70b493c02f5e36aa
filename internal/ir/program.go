package ir

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/aluopt/internal/aluapi"
)

// BlockKind are the properties of a Block in the control flow.
type BlockKind uint16

const (
	BlockKindTopLevel BlockKind = 1 << iota
	BlockKindLoopHeader
	BlockKindLoopExit
	BlockKindUniform
)

var blockKindNames = [...]string{"top_level", "loop_header", "loop_exit", "uniform"}

// String implements fmt.Stringer.
func (k BlockKind) String() string {
	var names []string
	for i, n := range blockKindNames {
		if k&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	return strings.Join(names, ",")
}

// ParseBlockKind parses one name printed by BlockKind.String.
func ParseBlockKind(s string) (BlockKind, error) {
	for i, n := range blockKindNames {
		if n == s {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("unknown block kind %q", s)
}

// Block is a basic block of a Program.
type Block struct {
	Index int
	// LogicalIdom is the index of the immediate dominator in the logical CFG, the Index itself for the entry
	// of a dominance region and -1 for blocks which aren't part of the logical CFG.
	LogicalIdom int
	Kind        BlockKind
	FPMode      FloatMode
	// Instructions in the program order. A nil slot is a removed instruction.
	Instructions []*Instruction
}

// Compact drops the removed instructions.
func (b *Block) Compact() {
	var cur int
	for _, instr := range b.Instructions {
		if instr != nil {
			b.Instructions[cur] = instr
			cur++
		}
	}
	for i := cur; i < len(b.Instructions); i++ {
		b.Instructions[i] = nil
	}
	b.Instructions = b.Instructions[:cur]
}

// Program is a shader program in SSA form.
type Program struct {
	Target Target
	Blocks []*Block
	// tempRC holds the RegClass of each TempID. Index 0 is unused.
	tempRC []RegClass
	instrs aluapi.Pool[Instruction]
}

// NewProgram returns a new empty Program for the target.
func NewProgram(t Target) *Program {
	return &Program{Target: t, tempRC: []RegClass{RegClassInvalid}, instrs: aluapi.NewPool[Instruction]()}
}

// AddBlock appends a new Block which dominates itself.
func (p *Program) AddBlock() *Block {
	blk := &Block{Index: len(p.Blocks), LogicalIdom: len(p.Blocks), Kind: BlockKindTopLevel}
	p.Blocks = append(p.Blocks, blk)
	return blk
}

// AllocateTemp allocates a new Temp of the given class.
func (p *Program) AllocateTemp(rc RegClass) Temp {
	id := TempID(len(p.tempRC))
	p.tempRC = append(p.tempRC, rc)
	return NewTemp(id, rc)
}

// DeclareTemp registers the Temp with the given id, which must not be allocated yet.
func (p *Program) DeclareTemp(id TempID, rc RegClass) (Temp, error) {
	for TempID(len(p.tempRC)) <= id {
		p.tempRC = append(p.tempRC, RegClassInvalid)
	}
	if p.tempRC[id].Valid() {
		return TempInvalid, fmt.Errorf("%%%d is defined twice", id)
	}
	p.tempRC[id] = rc
	return NewTemp(id, rc), nil
}

// PeekAllocationID returns the TempID the next AllocateTemp returns, which is also the size of
// the tables indexed by TempID.
func (p *Program) PeekAllocationID() TempID {
	return TempID(len(p.tempRC))
}

// TempRegClass returns the RegClass of the Temp with the given id.
func (p *Program) TempRegClass(id TempID) RegClass {
	return p.tempRC[id]
}

// AllocateInstruction allocates a new Instruction in the arena.
func (p *Program) AllocateInstruction(op Opcode, format Format, numOperands, numDefs int) *Instruction {
	instr, idx := p.instrs.Allocate()
	*instr = Instruction{
		id:       InstrID(idx),
		Opcode:   op,
		Format:   format,
		Operands: make([]Operand, numOperands),
		Defs:     make([]Definition, numDefs),
	}
	return instr
}

// NewInstruction allocates a new Instruction with the opcode's default format.
func (p *Program) NewInstruction(op Opcode, defs []Definition, ops ...Operand) *Instruction {
	instr := p.AllocateInstruction(op, op.Format(), len(ops), len(defs))
	copy(instr.Operands, ops)
	copy(instr.Defs, defs)
	return instr
}

// Instruction returns the Instruction with the given id.
func (p *Program) Instruction(id InstrID) *Instruction {
	return p.instrs.View(int(id))
}

// NumInstructions returns the number of instructions ever allocated, including the removed ones.
func (p *Program) NumInstructions() int {
	return p.instrs.Allocated()
}

// String implements fmt.Stringer.
func (p *Program) String() string {
	var b strings.Builder
	for _, blk := range p.Blocks {
		fmt.Fprintf(&b, "BB%d: (idom=%d, kind=%s)\n", blk.Index, blk.LogicalIdom, blk.Kind)
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			b.WriteByte('\t')
			b.WriteString(instr.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// CloneInstruction allocates a copy of the instruction with its own operand and definition slices.
func (p *Program) CloneInstruction(src *Instruction) *Instruction {
	instr := p.AllocateInstruction(src.Opcode, src.Format, len(src.Operands), len(src.Defs))
	id := instr.id
	ops, defs := instr.Operands, instr.Defs
	*instr = *src
	instr.id = id
	copy(ops, src.Operands)
	copy(defs, src.Defs)
	instr.Operands, instr.Defs = ops, defs
	return instr
}
