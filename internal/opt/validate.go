package opt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// validatePass panics if the state left by the given pass breaks one of the invariants the next passes rely on.
func (ctx *optCtx) validatePass(pass logging.PassScopes) {
	fail := func(property string, where interface{}) {
		panic(fmt.Sprintf("BUG: optimizer: %s: %s: %v", pass, property, where))
	}

	for _, blk := range ctx.prog.Blocks {
		for _, instr := range blk.Instructions {
			if instr == nil {
				if pass >= logging.PassScopeSelect {
					fail("nil instruction left in block", fmt.Sprintf("BB%d", blk.Index))
				}
				continue
			}
			for _, def := range instr.Defs {
				if !def.IsTemp() {
					continue
				}
				if p := ctx.info[def.TempID()].producer; p != instr.ID() {
					fail(fmt.Sprintf("producer of %s is instruction %d", def.Temp(), p), instr)
				}
				if !ctx.info[def.TempID()].exclusive() {
					fail(fmt.Sprintf("facts of %s belong to several groups: %s", def.Temp(), ctx.info[def.TempID()]), instr)
				}
			}
			if pass >= logging.PassScopeSelect && ctx.isDead(instr) {
				fail("dead instruction kept", instr)
			}
		}
	}

	// Phis may read values defined later, so the definitions are collected first.
	defined := make([]bool, len(ctx.info))
	for _, blk := range ctx.prog.Blocks {
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			for _, def := range instr.Defs {
				if def.IsTemp() {
					defined[def.TempID()] = true
				}
			}
		}
	}
	for _, blk := range ctx.prog.Blocks {
		for _, instr := range blk.Instructions {
			if instr == nil {
				continue
			}
			for _, op := range instr.Operands {
				if op.IsTemp() && (int(op.TempID()) >= len(defined) || !defined[op.TempID()]) {
					fail(fmt.Sprintf("%s is read but not defined in any block", op.Temp()), instr)
				}
			}
		}
	}

	if ctx.uses == nil {
		return
	}
	want := ir.ComputeUses(ctx.prog)
	for id, n := range want {
		var got int
		if id < len(ctx.uses) {
			got = ctx.uses[id]
		}
		// The selector removes the uses of the constants it turns into literals before they are substituted.
		if pass >= logging.PassScopeSelect && ctx.info[id].isConstant() && got <= n {
			continue
		}
		if got != n {
			var where interface{} = "no producer"
			if p := ctx.producer(ir.TempID(id)); p != nil {
				where = p
			}
			fail(fmt.Sprintf("%%%d has %d uses but is referenced %d times", id, got, n), where)
		}
	}
}
