package ir

// Builder appends instructions to the blocks of a Program.
type Builder struct {
	p   *Program
	blk *Block
}

// NewBuilder returns a Builder of a new Program with one block.
func NewBuilder(t Target) *Builder {
	p := NewProgram(t)
	return &Builder{p: p, blk: p.AddBlock()}
}

// Program returns the built Program.
func (b *Builder) Program() *Program { return b.p }

// CurrentBlock returns the block where the instructions are inserted.
func (b *Builder) CurrentBlock() *Block { return b.blk }

// SetCurrentBlock changes the block where the instructions are inserted.
func (b *Builder) SetCurrentBlock(blk *Block) { b.blk = blk }

// AddBlock appends a new block dominated by idom, and makes it the current one.
func (b *Builder) AddBlock(idom int, kind BlockKind) *Block {
	blk := b.p.AddBlock()
	blk.LogicalIdom, blk.Kind = idom, kind
	blk.FPMode = b.blk.FPMode
	b.blk = blk
	return blk
}

// Insert appends a new instruction to the current block.
func (b *Builder) Insert(op Opcode, defs []Definition, ops ...Operand) *Instruction {
	instr := b.p.NewInstruction(op, defs, ops...)
	b.blk.Instructions = append(b.blk.Instructions, instr)
	return instr
}

// Def appends an instruction with a single definition of the given class and returns it.
func (b *Builder) Def(op Opcode, rc RegClass, ops ...Operand) Temp {
	t := b.p.AllocateTemp(rc)
	b.Insert(op, []Definition{NewDefinition(t)}, ops...)
	return t
}

// DefSCC appends a scalar instruction which also writes scc, and returns both definitions.
func (b *Builder) DefSCC(op Opcode, rc RegClass, ops ...Operand) (Temp, Temp) {
	t, scc := b.p.AllocateTemp(rc), b.p.AllocateTemp(RegClassS1)
	b.Insert(op, []Definition{NewDefinition(t), NewFixedDefinition(scc, RegSCC)}, ops...)
	return t, scc
}

// Startpgm appends p_startpgm defining the inputs of the program.
func (b *Builder) Startpgm(rcs ...RegClass) []Temp {
	defs := make([]Definition, len(rcs))
	temps := make([]Temp, len(rcs))
	for i, rc := range rcs {
		temps[i] = b.p.AllocateTemp(rc)
		defs[i] = NewDefinition(temps[i])
	}
	b.Insert(OpcodePStartpgm, defs)
	return temps
}

// Sink appends p_unit_test which keeps the operands alive.
func (b *Builder) Sink(ops ...Operand) *Instruction {
	return b.Insert(OpcodePUnitTest, nil, ops...)
}

// Last returns the last instruction of the current block.
func (b *Builder) Last() *Instruction {
	return b.blk.Instructions[len(b.blk.Instructions)-1]
}

// Exec returns the operand reading the exec mask.
func (b *Builder) Exec() Operand {
	return OperandFixed(RegExec, b.p.Target.LaneMask())
}
