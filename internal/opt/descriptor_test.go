package opt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
)

// descriptorOf parses the instruction after the definitions of %1, %2 (VGPRs) and %3, %4 (SGPRs), and returns
// its canonical descriptor.
func descriptorOf(t *testing.T, target ir.Target, line string) (*optCtx, *ir.Instruction, aluInfo) {
	p := ir.NewProgram(target)
	_, err := irtext.ParseInstruction(p, "%1:v1, %2:v1, %3:s1, %4:s1 = p_startpgm")
	require.NoError(t, err)
	instr, err := irtext.ParseInstruction(p, line)
	require.NoError(t, err)

	ctx := newOptCtx(p, nil, false)
	info, ok := gatherInfo(ctx, instr)
	require.True(t, ok)
	return ctx, instr, info
}

func TestGatherInfo_canonical(t *testing.T) {
	gfx9 := ir.Target{Gen: ir.GenGFX9, WaveSize: 64}
	for _, tc := range []struct {
		line     string
		opcode   ir.Opcode
		neg      []bool
		operands []string
	}{
		{line: "%5:v1 = v_sub_f32 %1, %2", opcode: ir.OpcodeVAddF32, neg: []bool{false, true}, operands: []string{"%1", "%2"}},
		{line: "%5:v1 = v_subrev_f32 %1, %2", opcode: ir.OpcodeVAddF32, neg: []bool{true, false}, operands: []string{"%1", "%2"}},
		{line: "%5:v1 = v_sub_f32 %1, -%2 fmt:VOP2+VOP3", opcode: ir.OpcodeVAddF32, neg: []bool{false, false}, operands: []string{"%1", "%2"}},
		{line: "%5:v1 = v_subrev_u32 %1, %2", opcode: ir.OpcodeVSubU32, neg: []bool{false, false}, operands: []string{"%2", "%1"}},
		{line: "%5:v1 = v_madmk_f32 %1, %2, lit:0x12345", opcode: ir.OpcodeVMadF32, neg: []bool{false, false, false},
			operands: []string{"%1", "lit:0x12345", "%2"}},
		// Multiply-adds by +-1 and by -0 are simpler operations.
		{line: "%5:v1 = v_fma_f32 %1, #0x3f800000, %2", opcode: ir.OpcodeVAddF32, neg: []bool{false, false}, operands: []string{"%1", "%2"}},
		{line: "%5:v1 = v_fma_f32 #0xbf800000, %1, %2", opcode: ir.OpcodeVAddF32, neg: []bool{true, false}, operands: []string{"%1", "%2"}},
		{line: "%5:v1 = v_fma_f32 %1, %2, -#0", opcode: ir.OpcodeVMulF32, neg: []bool{false, false}, operands: []string{"%1", "%2"}},
	} {
		tc := tc
		t.Run(tc.line, func(t *testing.T) {
			_, _, info := descriptorOf(t, gfx9, tc.line)
			require.Equal(t, tc.opcode, info.opcode)
			require.Equal(t, len(tc.operands), len(info.operands))
			for i, o := range info.operands {
				require.Equal(t, tc.operands[i], o.op.String())
				require.Equal(t, tc.neg[i], o.neg[0], i)
			}
		})
	}
}

func TestGatherInfo_mix(t *testing.T) {
	line := "%5:v1 = v_fma_mix_f32 %1, %2, %1 opsel_lo:0b1 opsel_hi:0b11"
	_, _, info := descriptorOf(t, ir.Target{Gen: ir.GenGFX10, WaveSize: 64}, line)
	require.Equal(t, ir.OpcodeVMadF32, info.opcode)
	require.Equal(t, ir.SelUWord1, info.operands[0].extract[0])
	require.True(t, info.operands[0].f16ToF32)
	require.Equal(t, ir.SelUWord0, info.operands[1].extract[0])
	require.True(t, info.operands[1].f16ToF32)
	require.False(t, info.operands[2].f16ToF32)

	_, _, info = descriptorOf(t, ir.Target{Gen: ir.GenGFX10, WaveSize: 64, FusedMadMix: true}, line)
	require.Equal(t, ir.OpcodeVFmaF32, info.opcode)
}

// TestDescriptor_roundTrip checks that committing the legalized descriptor of an instruction gives back the same
// instruction.
func TestDescriptor_roundTrip(t *testing.T) {
	for _, line := range []string{
		"%5:v1 = v_sub_f32 %1, %2",
		"%5:v1 = v_subrev_f32 %1, %2",
		"%5:v1 = v_madmk_f32 %1, %2, lit:0x12345",
		"%5:v1 = v_madak_f32 %1, %2, lit:0x12345",
		"%5:v1 = v_mul_f32 %1, %2 fmt:VOP2+VOP3 clamp omod:2",
		"%5:v1 = v_add_f32 %1, %2 fmt:VOP2+SDWA sel0:uword1 sel1:dword dst_sel:dword",
		"%5:v1 = v_add_f16 %1, %2 fmt:VOP2+VOP3 opsel:0b10",
		"%5:v1 = v_add_f32 %1, %2 fmt:VOP2+DPP16 dpp16:0x1b bound_ctrl",
		"%5:v1 = v_med3_f32 %1, -%2, #0x3f800000",
		"%5:v1 = v_cvt_f32_ubyte2 %1",
		"%5:s1, %6:s1@scc = s_and_b32 %3, %4",
	} {
		line := line
		t.Run(line, func(t *testing.T) {
			ctx, _, info := descriptorOf(t, ir.Target{Gen: ir.GenGFX9, WaveSize: 64}, line)
			legal := info.clone()
			require.True(t, isValid(ctx, &legal))
			require.Equal(t, line, ctx.commit(&legal).String())
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, tc := range []struct {
		name     string
		gen      ir.Gen
		line     string
		expected string
	}{
		{
			name: "one scalar value", gen: ir.GenGFX9,
			line: "%5:v1 = v_add_f32 %3, %3", expected: "%5:v1 = v_add_f32 %3, %3 fmt:VOP2+VOP3",
		},
		{name: "two scalar values before gfx10", gen: ir.GenGFX9, line: "%5:v1 = v_add_f32 %3, %4"},
		{
			name: "two scalar values", gen: ir.GenGFX10,
			line: "%5:v1 = v_add_f32 %3, %4", expected: "%5:v1 = v_add_f32 %3, %4 fmt:VOP2+VOP3",
		},
		{
			name: "scalar src1 is swapped", gen: ir.GenGFX9,
			line: "%5:s2 = v_cmp_lt_f32 %1, %3", expected: "%5:s2 = v_cmp_gt_f32 %3, %1",
		},
		{name: "literal and scalar before gfx10", gen: ir.GenGFX9, line: "%5:v1 = v_add_f32 %3, lit:0x12345"},
		{
			name: "literal re-encoded inline", gen: ir.GenGFX9,
			line: "%5:v1 = v_mul_f32 %1, lit:0xc0000000", expected: "%5:v1 = v_mul_f32 #0xc0000000, %1",
		},
		{
			name: "negated literal", gen: ir.GenGFX9,
			line: "%5:v1 = v_mul_f32 %1, -lit:0x12345", expected: "%5:v1 = v_mul_f32 lit:0x80012345, %1",
		},
		{name: "vop3 literal before gfx10", gen: ir.GenGFX9, line: "%5:v1 = v_fma_f32 %1, %2, lit:0x12345 clamp"},
		{
			name: "vop3 literal", gen: ir.GenGFX10,
			line: "%5:v1 = v_fma_f32 %1, %2, lit:0x12345 clamp", expected: "%5:v1 = v_fma_f32 %1, %2, lit:0x12345 clamp",
		},
		{
			name: "fmaak", gen: ir.GenGFX10,
			line: "%5:v1 = v_fma_f32 %1, %2, lit:0x12345", expected: "%5:v1 = v_fmaak_f32 %1, %2, lit:0x12345",
		},
		{
			name: "fmamk", gen: ir.GenGFX10,
			line: "%5:v1 = v_fma_f32 lit:0x12345, %1, %2", expected: "%5:v1 = v_fmamk_f32 %1, %2, lit:0x12345",
		},
		{name: "two literals", gen: ir.GenGFX10, line: "%5:v1 = v_fma_f32 %1, lit:0x12345, lit:0x23456"},
		{name: "xnor before gfx10", gen: ir.GenGFX9, line: "%5:v1 = v_xnor_b32 %1, %2"},
		{name: "modifiers on integers", gen: ir.GenGFX10, line: "%5:v1 = v_add_u32 -%1, %2 fmt:VOP2+VOP3"},
		{name: "sdwa after gfx10.3", gen: ir.GenGFX11, line: "%5:v1 = v_add_f32 %1, %2 fmt:VOP2+SDWA sel0:ubyte1 sel1:dword dst_sel:dword"},
		{
			name: "dpp without negation", gen: ir.GenGFX11,
			line:     "%5:v1 = v_add_f32 %1, -%2 fmt:VOP2+VOP3+DPP16 dpp16:0x1b",
			expected: "%5:v1 = v_sub_f32 %1, %2 fmt:VOP2+DPP16 dpp16:0x1b",
		},
		{name: "scalar with vgpr", gen: ir.GenGFX10, line: "%5:s1, %6:s1@scc = s_and_b32 %1, %3"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctx, _, info := descriptorOf(t, ir.Target{Gen: tc.gen, WaveSize: 64}, tc.line)
			legal := info.clone()
			ok := isValid(ctx, &legal)
			require.Equal(t, tc.expected != "", ok)
			if ok {
				require.Equal(t, tc.expected, ctx.commit(&legal).String())
			}
		})
	}
}

func TestOpcodeAvailable(t *testing.T) {
	for _, tc := range []struct {
		op       ir.Opcode
		gen      ir.Gen
		expected bool
	}{
		{op: ir.OpcodeVMadF32, gen: ir.GenGFX10, expected: true},
		{op: ir.OpcodeVMadF32, gen: ir.GenGFX10_3},
		{op: ir.OpcodeVFmaakF32, gen: ir.GenGFX9},
		{op: ir.OpcodeVFmaakF32, gen: ir.GenGFX10, expected: true},
		{op: ir.OpcodeVAdd3U32, gen: ir.GenGFX8},
		{op: ir.OpcodeVAdd3U32, gen: ir.GenGFX9, expected: true},
		{op: ir.OpcodeVMaxminF32, gen: ir.GenGFX10_3},
		{op: ir.OpcodeVMaxminF32, gen: ir.GenGFX11, expected: true},
		{op: ir.OpcodeSCmpkEqU32, gen: ir.GenGFX11, expected: true},
		{op: ir.OpcodeSCmpkEqU32, gen: ir.GenGFX12},
		{op: ir.OpcodeVAddF16, gen: ir.GenGFX7},
		{op: ir.OpcodeVAddF32, gen: ir.GenGFX6, expected: true},
	} {
		require.Equal(t, tc.expected, opcodeAvailable(ir.Target{Gen: tc.gen}, tc.op), "%s on %s", tc.op, tc.gen)
	}
}
