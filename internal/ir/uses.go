package ir

// IsDead returns true if the instruction can be removed given the use counts of its definitions.
func IsDead(uses []int, instr *Instruction) bool {
	if len(instr.Defs) == 0 || instr.Opcode.HasSideEffects() {
		return false
	}
	for _, def := range instr.Defs {
		if !def.IsTemp() || uses[def.TempID()] > 0 {
			return false
		}
	}
	return true
}

// ComputeUses counts, for each Temp, the operands referencing it from instructions which are not dead.
//
// Every operand is counted first, and then dead instructions are removed from the counts transitively
// until the fixed point, so values only used by dead instructions end up with zero uses as well.
// A cycle through phis stays alive as long as one of its values is used.
func ComputeUses(p *Program) []int {
	uses := make([]int, p.PeekAllocationID())
	producers := make([]*Instruction, p.PeekAllocationID())
	for _, blk := range p.Blocks {
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			for _, op := range instr.Operands {
				if op.IsTemp() {
					uses[op.TempID()]++
				}
			}
			for _, def := range instr.Defs {
				if def.IsTemp() {
					producers[def.TempID()] = instr
				}
			}
		}
	}

	var dead []*Instruction
	removed := make(map[*Instruction]struct{})
	for _, blk := range p.Blocks {
		for _, instr := range blk.Instructions {
			if instr != nil && IsDead(uses, instr) {
				dead = append(dead, instr)
				removed[instr] = struct{}{}
			}
		}
	}

	for len(dead) > 0 {
		tail := len(dead) - 1
		instr := dead[tail]
		dead = dead[:tail]
		for _, op := range instr.Operands {
			if !op.IsTemp() {
				continue
			}
			uses[op.TempID()]--
			producer := producers[op.TempID()]
			if producer == nil {
				continue
			}
			if _, ok := removed[producer]; !ok && IsDead(uses, producer) {
				removed[producer] = struct{}{}
				dead = append(dead, producer)
			}
		}
	}
	return uses
}
