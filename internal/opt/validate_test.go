package opt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
	"github.com/tetratelabs/aluopt/internal/logging"
)

func TestValidatePass(t *testing.T) {
	newCtx := func(t *testing.T) *optCtx {
		p, err := irtext.Load([]byte(singleBlock("{gen: gfx10}", "",
			"%1:v1, %2:v1 = p_startpgm",
			"%3:v1 = v_mul_f32 %1, %2",
			"%4:v1 = v_add_f32 %3, %2",
			"p_unit_test %4",
		)))
		require.NoError(t, err)
		ctx := newOptCtx(p, nil, true)
		passLabelOpt(ctx)
		ctx.uses = ir.ComputeUses(p)
		return ctx
	}

	t.Run("ok", func(t *testing.T) {
		ctx := newCtx(t)
		require.NotPanics(t, func() { ctx.validatePass(logging.PassScopeRemat) })
	})

	t.Run("use count", func(t *testing.T) {
		ctx := newCtx(t)
		ctx.uses[3]++
		require.PanicsWithValue(t,
			"BUG: optimizer: combine: %3 has 2 uses but is referenced 1 times: %3:v1 = v_mul_f32 %1, %2",
			func() { ctx.validatePass(logging.PassScopeCombine) })
	})

	t.Run("producer", func(t *testing.T) {
		ctx := newCtx(t)
		ctx.info[4].producer = ctx.info[3].producer
		require.Panics(t, func() { ctx.validatePass(logging.PassScopeLabel) })
	})

	t.Run("operand without definition", func(t *testing.T) {
		ctx := newCtx(t)
		ctx.prog.Blocks[0].Instructions[1] = nil
		require.PanicsWithValue(t,
			"BUG: optimizer: remat: %3 is read but not defined in any block: %4:v1 = v_add_f32 %3, %2",
			func() { ctx.validatePass(logging.PassScopeRemat) })
	})

	t.Run("facts", func(t *testing.T) {
		ctx := newCtx(t)
		ctx.info[3].label |= labelTemp | labelLiteral
		require.Panics(t, func() { ctx.validatePass(logging.PassScopeLabel) })
	})

	t.Run("dead instruction", func(t *testing.T) {
		ctx := newCtx(t)
		ctx.uses[4] = 0
		require.PanicsWithValue(t,
			"BUG: optimizer: select: dead instruction kept: %4:v1 = v_add_f32 %3, %2",
			func() { ctx.validatePass(logging.PassScopeSelect) })
	})
}
