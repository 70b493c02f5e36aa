// Package opt implements the SSA peephole optimizer of the ALU IR.
//
// The passes run in a fixed order, each one walking the whole program:
//
//   - label: records the facts known about each value and folds them into the operands.
//   - remat: duplicates the constant moves into the blocks using them.
//   - combine: fuses instructions with the producers of their operands.
//   - select: removes the dead instructions, reverts the fusions which turned out to duplicate work,
//     and chooses the literals.
//   - literals: substitutes the literals and applies the rewrites depending on the final operands.
package opt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/aluapi"
	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// Optimize rewrites the program in place. log may be nil. If validate is true, the state left by every
// pass is checked and a violation panics.
func Optimize(p *ir.Program, log *logging.PassLogger, validate bool) {
	if aluapi.PrintProgramBeforeOptimization {
		fmt.Printf("before optimization:\n%s\n", p)
	}

	ctx := newOptCtx(p, log, validate || aluapi.ValidationRequested())
	ctx.runPass(logging.PassScopeLabel, passLabelOpt)
	ctx.uses = ir.ComputeUses(p)
	ctx.runPass(logging.PassScopeRemat, passRematerializeConstantsOpt)
	ctx.runPass(logging.PassScopeCombine, passCombineOpt)
	ctx.runPass(logging.PassScopeSelect, passSelectOpt)
	ctx.runPass(logging.PassScopeLiterals, passApplyLiteralsOpt)

	if aluapi.PrintOptimizedProgram {
		fmt.Printf("after optimization:\n%s\n", p)
	}
}

func (ctx *optCtx) runPass(scope logging.PassScopes, pass func(*optCtx)) {
	pass(ctx)
	ctx.log.PassDone(scope, ctx.prog)
	if ctx.validate {
		ctx.validatePass(scope)
	}
}
