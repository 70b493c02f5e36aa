package opt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/aluapi"
	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// optCtx is the state of one optimizer invocation, shared by all the passes.
type optCtx struct {
	prog   *ir.Program
	target ir.Target
	// fpMode is the float mode of the block being processed.
	fpMode ir.FloatMode

	info []ssaInfo
	uses []int

	// combined holds the fusions which can be reverted, indexed by the labelCombined payload.
	combined []combineRecord

	// instructions is the new instruction list of the block being processed.
	instructions []*ir.Instruction

	log      *logging.PassLogger
	validate bool
}

// combineRecord is a fusion which subsumed the producer of one operand: orig is the consumer before the fusion.
// It is reverted if subsumed is still used once the selector reaches the fused instruction.
type combineRecord struct {
	orig     *ir.Instruction
	subsumed ir.TempID
}

func newOptCtx(p *ir.Program, log *logging.PassLogger, validate bool) *optCtx {
	ctx := &optCtx{
		prog:     p,
		target:   p.Target,
		log:      log,
		validate: validate,
	}
	ctx.info = make([]ssaInfo, p.PeekAllocationID())
	for i := range ctx.info {
		ctx.info[i] = newSSAInfo()
	}
	return ctx
}

// allocateTemp allocates a new Temp and grows the tables indexed by TempID.
func (ctx *optCtx) allocateTemp(rc ir.RegClass) ir.Temp {
	t := ctx.prog.AllocateTemp(rc)
	for len(ctx.info) <= int(t.ID()) {
		ctx.info = append(ctx.info, newSSAInfo())
	}
	for ctx.uses != nil && len(ctx.uses) <= int(t.ID()) {
		ctx.uses = append(ctx.uses, 0)
	}
	return t
}

// producer returns the instruction currently defining the Temp, or nil.
func (ctx *optCtx) producer(id ir.TempID) *ir.Instruction {
	p := ctx.info[id].producer
	if p == ir.InstrIDInvalid {
		return nil
	}
	return ctx.prog.Instruction(p)
}

// setProducer records instr as the producer of all of its definitions.
func (ctx *optCtx) setProducer(instr *ir.Instruction) {
	for _, def := range instr.Defs {
		if def.IsTemp() {
			ctx.info[def.TempID()].producer = instr.ID()
		}
	}
}

func (ctx *optCtx) isDead(instr *ir.Instruction) bool {
	return ir.IsDead(ctx.uses, instr)
}

// decreaseAndDCE removes one use of the Temp, and the uses of the operands of its producer
// transitively if the producer becomes dead.
func (ctx *optCtx) decreaseAndDCE(t ir.Temp) {
	if ctx.uses[t.ID()] == 0 {
		panic("BUG: removing a use of " + t.String() + " which has none")
	}
	ctx.uses[t.ID()]--
	if ctx.uses[t.ID()] != 0 {
		return
	}
	instr := ctx.producer(t.ID())
	if instr == nil || !ctx.isDead(instr) {
		return
	}
	for _, op := range instr.Operands {
		if op.IsTemp() {
			ctx.decreaseAndDCE(op.Temp())
		}
	}
}

// increaseUses adds a use for each Temp operand.
func (ctx *optCtx) increaseUses(ops []ir.Operand) {
	for _, op := range ops {
		if op.IsTemp() {
			ctx.uses[op.TempID()]++
		}
	}
}

// decreaseUses removes a use for each Temp operand, eliminating the producers which become dead.
func (ctx *optCtx) decreaseUses(ops []ir.Operand) {
	for _, op := range ops {
		if op.IsTemp() {
			ctx.decreaseAndDCE(op.Temp())
		}
	}
}

// replaceUses moves the uses from the operands of old to the operands of instr.
// The new operands are counted first so that shared producers don't die in between.
func (ctx *optCtx) replaceUses(old, instr *ir.Instruction) {
	ctx.increaseUses(instr.Operands)
	ctx.decreaseUses(old.Operands)
}

// hasSingleUse returns true if the operand is a Temp used exactly once.
func (ctx *optCtx) hasSingleUse(op ir.Operand) bool {
	return op.IsTemp() && ctx.uses[op.TempID()] == 1
}

func (ctx *optCtx) logRewrite(scope logging.PassScopes, old, n *ir.Instruction) {
	switch {
	case aluapi.CombineLoggingEnabled && scope == logging.PassScopeCombine,
		aluapi.SelectLoggingEnabled && scope == logging.PassScopeSelect:
		fmt.Printf("%s: %s -> %s\n", scope, old, n)
	}
	ctx.log.Rewrite(scope, "%s -> %s", old, n)
}

// rewrite materializes the descriptor in place of old, moving the uses from the operands of old to the ones
// of the new instruction. Returns nil if the descriptor isn't encodable.
func (ctx *optCtx) rewrite(old *ir.Instruction, info *aluInfo, scope logging.PassScopes) *ir.Instruction {
	legal := info.clone()
	if !isValid(ctx, &legal) {
		return nil
	}
	n := ctx.commit(&legal)
	ctx.replaceUses(old, n)
	ctx.logRewrite(scope, old, n)
	return n
}
