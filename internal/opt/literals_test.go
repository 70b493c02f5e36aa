package opt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
)

func TestConvertSOPCToSOPK(t *testing.T) {
	for _, tc := range []struct {
		line, expected string
	}{
		{line: "%2:s1@scc = s_cmp_eq_i32 %1, lit:0xffff", expected: "%2:s1@scc = s_cmpk_eq_u32 %1 imm:0xffff"},
		{line: "%2:s1@scc = s_cmp_lt_i32 %1, lit:0xffff", expected: "%2:s1@scc = s_cmp_lt_i32 %1, lit:0xffff"},
		{line: "%2:s1@scc = s_cmp_lt_i32 %1, lit:0xffffff80", expected: "%2:s1@scc = s_cmpk_lt_i32 %1 imm:0xff80"},
		{line: "%2:s1@scc = s_cmp_gt_u32 lit:0x100, %1", expected: "%2:s1@scc = s_cmpk_lt_u32 %1 imm:0x100"},
		{line: "%2:s1@scc = s_cmp_eq_u32 %1, lit:0xffffff80", expected: "%2:s1@scc = s_cmpk_eq_i32 %1 imm:0xff80"},
		{line: "%2:s1@scc = s_cmp_lt_u32 %1, lit:0x12345", expected: "%2:s1@scc = s_cmp_lt_u32 %1, lit:0x12345"},
		{line: "%2:s1@scc = s_cmp_lt_u32 %1, #4", expected: "%2:s1@scc = s_cmp_lt_u32 %1, #4"},
	} {
		tc := tc
		t.Run(tc.line, func(t *testing.T) {
			p := ir.NewProgram(ir.Target{Gen: ir.GenGFX10, WaveSize: 64})
			_, err := irtext.ParseInstruction(p, "%1:s1 = p_startpgm")
			require.NoError(t, err)
			instr, err := irtext.ParseInstruction(p, tc.line)
			require.NoError(t, err)

			convertSOPCToSOPK(instr)
			require.Equal(t, tc.expected, instr.String())
		})
	}
}

func parseMix(t *testing.T, fpMode ir.FloatMode, line string) (*optCtx, *ir.Instruction) {
	p := ir.NewProgram(ir.Target{Gen: ir.GenGFX11, WaveSize: 32})
	_, err := irtext.ParseInstruction(p, "%1:v1, %2:v1 = p_startpgm")
	require.NoError(t, err)
	instr, err := irtext.ParseInstruction(p, line)
	require.NoError(t, err)
	ctx := newOptCtx(p, nil, false)
	ctx.fpMode = fpMode
	return ctx, instr
}

func TestOptimizeMixAccumulator(t *testing.T) {
	t.Run("f32 accumulator", func(t *testing.T) {
		ctx, instr := parseMix(t, ir.FloatMode{}, "%3:v1 = v_fma_mix_f32 #0x3f800000, %1, %2 opsel_hi:0b100")
		ctx.optimizeMixAccumulator(instr)
		require.True(t, instr.Operands[0].ConstantEquals(0x3f800000))
		require.Equal(t, "%2", instr.Operands[1].String())
		require.Equal(t, "%1", instr.Operands[2].String())
		require.True(t, instr.VALU.OpselHi[1])
		require.False(t, instr.VALU.OpselHi[2])
	})

	t.Run("f16 constant addend", func(t *testing.T) {
		ctx, instr := parseMix(t, ir.FloatMode{}, "%3:v1 = v_fma_mixlo_f16 %1, %2, lit:0x3e800000 opsel_hi:0b11")
		ctx.optimizeMixAccumulator(instr)
		require.Equal(t, "%1", instr.Operands[0].String())
		require.True(t, instr.Operands[2].IsConstant())
		require.Equal(t, 2, instr.Operands[2].Bytes())
		require.Equal(t, uint32(0x3400), instr.Operands[2].ConstantValue())
		require.False(t, instr.VALU.OpselLo[2])
		require.True(t, instr.VALU.OpselHi[2])
	})

	t.Run("inexact addend", func(t *testing.T) {
		ctx, instr := parseMix(t, ir.FloatMode{}, "%3:v1 = v_fma_mixlo_f16 %1, %2, lit:0x3e800001 opsel_hi:0b11")
		before := instr.String()
		ctx.optimizeMixAccumulator(instr)
		require.Equal(t, before, instr.String())
	})

	t.Run("already accumulating", func(t *testing.T) {
		ctx, instr := parseMix(t, ir.FloatMode{}, "%3:v1 = v_fma_mix_f32 %1, %2, %1 opsel_hi:0b11")
		before := instr.String()
		ctx.optimizeMixAccumulator(instr)
		require.Equal(t, before, instr.String())
	})
}
