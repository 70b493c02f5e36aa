package irtext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
)

func newProgram(t *testing.T, gen ir.Gen, decls ...string) *ir.Program {
	p := ir.NewProgram(ir.Target{Gen: gen, WaveSize: 64})
	for _, d := range decls {
		_, err := ParseInstruction(p, d)
		require.NoError(t, err)
	}
	return p
}

func TestParseInstruction_roundTrip(t *testing.T) {
	for _, line := range []string{
		"%3:v1 = v_mul_f32 %1, %2",
		"%3:v1 = v_add_f32 -%1, |%2| fmt:VOP3",
		"%3:v1 = v_add_f32 -|%1|, %2 fmt:VOP2+VOP3 clamp omod:0.5 pass:3",
		"%3:s1, %4:s1@scc = s_and_b32 %5, lit:0x80000000",
		"%3:v1 = v_fma_f32 %1, %2, #0x3f800000 clamp omod:2 precise",
		"%3:v1 = v_fma_f32 %1, %2, #0 nan_preserve sz_preserve",
		"%3:s1@scc = s_cmpk_lt_u32 %5 imm:0x10",
		"%3:v1 = v_add_f32 %1, %2 fmt:VOP2+SDWA sel0:uword1 sel1:dword dst_sel:dword",
		"%3:v1 = v_mov_b32 %1 fmt:VOP1+DPP16 dpp16:0x1b bound_ctrl",
		"%3:v1 = v_mov_b32 %1 fmt:VOP1+DPP8 dpp8:0xfac688 fi",
		"%3:v1 = v_fma_mix_f32 %1, %2, %1 opsel_lo:0b1 opsel_hi:0b11",
		"%3:v1 = v_add_f16 %1, %2 fmt:VOP3 opsel:0b10",
		"%3:v1 = v_mul_u32_u24 %1.u24, %2.u24",
		"%3:v1 = v_mad_u32_u16 %1.u16, %2.u16, #0",
		"p_unit_test %1, #1:16, #0x3ff0000000000000:64, @exec:s2, undef:v1",
		"%7:v2 = p_create_vector %1, %2",
		"%3:s2 = s_and_b64 @exec:s2, %6@vcc",
	} {
		line := line
		t.Run(line, func(t *testing.T) {
			p := newProgram(t, ir.GenGFX10,
				"%1:v1, %2:v1, %5:s1 = p_startpgm",
				"%6:s2 = p_unit_test",
			)
			instr, err := ParseInstruction(p, line)
			require.NoError(t, err)
			require.Equal(t, line, instr.String())
		})
	}
}

func TestParseInstruction_constants(t *testing.T) {
	for _, tc := range []struct {
		in      string
		gen     ir.Gen
		literal bool
	}{
		{in: "#64", gen: ir.GenGFX10},
		{in: "#65", gen: ir.GenGFX10, literal: true},
		{in: "#0xfffffff0", gen: ir.GenGFX10},
		{in: "#0x3e22f983", gen: ir.GenGFX10},
		{in: "#0x3e22f983", gen: ir.GenGFX7, literal: true},
		{in: "lit:1", gen: ir.GenGFX10, literal: true},
		{in: "#0x3c00:16", gen: ir.GenGFX10},
		{in: "#0x3c01:16", gen: ir.GenGFX10, literal: true},
	} {
		tc := tc
		t.Run(tc.in+"/"+tc.gen.String(), func(t *testing.T) {
			p := newProgram(t, tc.gen, "%1:v1 = p_startpgm")
			instr, err := ParseInstruction(p, "p_unit_test "+tc.in)
			require.NoError(t, err)
			require.True(t, instr.Operands[0].IsConstant())
			require.Equal(t, tc.literal, instr.Operands[0].IsLiteral())
		})
	}
}

func TestParseInstruction_errors(t *testing.T) {
	for _, tc := range []struct {
		name, in string
	}{
		{name: "unknown opcode", in: "%3:v1 = v_frobnicate %1"},
		{name: "undefined temp", in: "%3:v1 = v_mov_b32 %9"},
		{name: "redefined with another class", in: "%1:s1 = s_mov_b32 #0"},
		{name: "missing class", in: "%3 = v_mov_b32 %1"},
		{name: "bad constant", in: "%3:v1 = v_mov_b32 #zz"},
		{name: "bad attribute", in: "%3:v1 = v_mov_b32 %1 shiny"},
		{name: "bad omod", in: "%3:v1 = v_mul_f32 %1, %1 omod:8"},
		{name: "bad format", in: "%3:v1 = v_mov_b32 %1 fmt:VOP9"},
		{name: "empty", in: ""},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := newProgram(t, ir.GenGFX10, "%1:v1 = p_startpgm")
			_, err := ParseInstruction(p, tc.in)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrSyntax))
		})
	}
}

const loopProgram = `blocks:
- fp_mode:
    denorm16_64: keep
    denorm32: flush
  instructions:
  - '%1:v1, %2:s1 = p_startpgm'
  - '%3:v1 = v_mov_b32 #0'
  - p_branch
- instructions:
  - '%4:v1 = p_phi %3, %5'
  - '%5:v1 = v_add_f32 %4, %1'
  - '%6:s1@vcc = v_cmp_lt_f32 %5, %1'
  - p_cbranch_z %6@vcc
  kind: loop_header
- idom: 1
  instructions:
  - p_unit_test %5
  kind: loop_exit
target:
  fast_fma32: true
  gen: gfx10.3
  wave_size: 32
`

func TestLoad(t *testing.T) {
	p, err := Load([]byte(loopProgram))
	require.NoError(t, err)

	require.Equal(t, ir.Target{Gen: ir.GenGFX10_3, WaveSize: 32, FastFMA32: true}, p.Target)
	require.Equal(t, 3, len(p.Blocks))
	require.Equal(t, ir.FloatMode{Denorm16_64: ir.DenormKeep}, p.Blocks[0].FPMode)
	require.Equal(t, ir.BlockKindLoopHeader, p.Blocks[1].Kind)
	require.Equal(t, 1, p.Blocks[1].LogicalIdom)
	require.Equal(t, 1, p.Blocks[2].LogicalIdom)
	require.Equal(t, ir.TempID(7), p.PeekAllocationID())

	// The phi reads %5 which is defined after it.
	phi := p.Blocks[1].Instructions[0]
	require.Equal(t, ir.OpcodePPhi, phi.Opcode)
	require.Equal(t, ir.RegClassV1, phi.Operands[1].RegClass())

	require.Equal(t, []string{"%4:v1 = p_phi %3, %5", "%5:v1 = v_add_f32 %4, %1",
		"%6:s1@vcc = v_cmp_lt_f32 %5, %1", "p_cbranch_z %6@vcc"}, Instructions(p.Blocks[1]))

	// Keys are printed in alphabetical order.
	require.Equal(t, loopProgram, Print(p))
	again, err := Load([]byte(Print(p)))
	require.NoError(t, err)
	require.Equal(t, Print(p), Print(again))
}

func TestLoad_errors(t *testing.T) {
	for _, tc := range []struct {
		name, doc string
	}{
		{name: "not yaml", doc: "target: ["},
		{name: "unknown field", doc: "target: {gen: gfx10}\nfoo: 1\n"},
		{name: "unknown gen", doc: "target: {gen: gfx99}\n"},
		{name: "wave size", doc: "target: {gen: gfx10, wave_size: 16}\n"},
		{name: "block kind", doc: "target: {gen: gfx10}\nblocks:\n- kind: sideways\n  instructions: []\n"},
		{name: "denorm mode", doc: "target: {gen: gfx10}\nblocks:\n- fp_mode: {denorm32: maybe}\n  instructions: []\n"},
		{name: "defined twice", doc: "target: {gen: gfx10}\nblocks:\n- instructions: ['%1:v1 = p_startpgm', '%1:v1 = v_mov_b32 #0']\n"},
		{name: "instruction", doc: "target: {gen: gfx10}\nblocks:\n- instructions: ['%1:v1 = v_mov_b32 %2']\n"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.doc))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrSyntax), err)
		})
	}
}
