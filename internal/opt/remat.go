package opt

import (
	"golang.org/x/exp/maps"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// constantMov returns true if the instruction moves a constant into its only definition.
func constantMov(instr *ir.Instruction) bool {
	if len(instr.Defs) != 1 || len(instr.Operands) != 1 || !instr.Operands[0].IsConstant() {
		return false
	}
	if def := instr.Defs[0]; !def.IsTemp() || def.IsFixed() {
		return false
	}
	switch instr.Opcode {
	case ir.OpcodeSMovB32, ir.OpcodeSMovB64, ir.OpcodePParallelcopy:
		return true
	case ir.OpcodeVMovB32:
		return !instr.UsesModifiers()
	}
	return false
}

// passRematerializeConstantsOpt duplicates the constant moves into the blocks using them, so that the constants
// don't have to be kept alive across blocks. The copies are shared by the uses of one block.
func passRematerializeConstantsOpt(ctx *optCtx) {
	// constants maps the constants defined in the current dominance region to their move.
	constants := map[ir.TempID]*ir.Instruction{}
	defBlock := map[ir.TempID]int{}
	for _, blk := range ctx.prog.Blocks {
		if blk.LogicalIdom < 0 {
			continue
		}
		if blk.LogicalIdom == blk.Index {
			maps.Clear(constants)
		}
		renames := map[ir.TempID]ir.Temp{}
		instrs := make([]*ir.Instruction, 0, len(blk.Instructions))
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			if ctx.isDead(instr) || instr.Opcode.IsPhi() {
				instrs = append(instrs, instr)
				continue
			}
			for i := range instr.Operands {
				op := &instr.Operands[i]
				if !op.IsTemp() || op.IsFixed() {
					continue
				}
				old := op.Temp()
				mov, ok := constants[old.ID()]
				if !ok || defBlock[old.ID()] == blk.Index {
					continue
				}
				t, ok := renames[old.ID()]
				if !ok {
					t = ctx.allocateTemp(old.RegClass())
					remat := ctx.prog.CloneInstruction(mov)
					remat.Defs[0] = ir.NewDefinition(t)
					ctx.info[t.ID()] = ctx.info[old.ID()]
					ctx.setProducer(remat)
					instrs = append(instrs, remat)
					renames[old.ID()] = t
					ctx.log.Rewrite(logging.PassScopeRemat, "BB%d: %s", blk.Index, remat)
				}
				op.SetTemp(t)
				ctx.uses[t.ID()]++
				ctx.decreaseAndDCE(old)
			}
			if constantMov(instr) {
				id := instr.Defs[0].TempID()
				constants[id] = instr
				defBlock[id] = blk.Index
			}
			instrs = append(instrs, instr)
		}
		blk.Instructions = instrs
	}
}
