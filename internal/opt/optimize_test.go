package opt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
)

// singleBlock returns the document of a program with one block.
func singleBlock(target, fpMode string, lines ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "target: %s\nblocks:\n", target)
	if fpMode != "" {
		fmt.Fprintf(&b, "- fp_mode: %s\n  instructions:\n", fpMode)
	} else {
		b.WriteString("- instructions:\n")
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  - '%s'\n", l)
	}
	return b.String()
}

func optimize(t *testing.T, doc string) *ir.Program {
	p, err := irtext.Load([]byte(doc))
	require.NoError(t, err)
	Optimize(p, nil, true)
	return p
}

func TestOptimize(t *testing.T) {
	for _, tc := range []struct {
		name     string
		target   string
		fpMode   string
		lines    []string
		expected []string
	}{
		{
			name:   "mad",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_mad_f32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "fma without mad",
			target: "{gen: gfx10.3}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_fma_f32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "precise without mad",
			target: "{gen: gfx10.3}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3 precise",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3 precise",
				"p_unit_test %5",
			},
		},
		{
			name:   "precise mad",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3 precise",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_mad_f32 %1, %2, %3 precise",
				"p_unit_test %5",
			},
		},
		{
			name:   "multiply kept alive",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3",
				"p_unit_test %5, %4",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 %1, %2",
				"%5:v1 = v_add_f32 %4, %3",
				"p_unit_test %5, %4",
			},
		},
		{
			name:   "literal from scalar move",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:s1 = s_mov_b32 lit:0x40490fdb",
				"%3:v1 = v_mul_f32 %1, %2",
				"p_unit_test %3",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_mul_f32 lit:0x40490fdb, %1",
				"p_unit_test %3",
			},
		},
		{
			name:   "inline constant from scalar move",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:s1 = s_mov_b32 #2",
				"%3:v1 = v_mul_f32 %1, %2",
				"p_unit_test %3",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_mul_f32 #2, %1",
				"p_unit_test %3",
			},
		},
		{
			name:   "omod",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_add_f32 %1, %2",
				"%4:v1 = v_mul_f32 %3, #0x40000000",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_add_f32 %1, %2 fmt:VOP2+VOP3 omod:2",
				"p_unit_test %4",
			},
		},
		{
			name:   "negated omod",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_add_f32 %1, %2",
				"%4:v1 = v_mul_f32 %3, #0xc0000000",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_add_f32 -%1, -%2 fmt:VOP2+VOP3 omod:2",
				"p_unit_test %4",
			},
		},
		{
			name:   "negated omod of a multiplication",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_mul_f32 %1, %2",
				"%4:v1 = v_mul_f32 %3, #0xbf000000",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_mul_f32 -%1, %2 fmt:VOP2+VOP3 omod:0.5",
				"p_unit_test %4",
			},
		},
		{
			name:   "negated omod of a maximum",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_max_f32 %1, %2",
				"%4:v1 = v_mul_f32 %3, #0xc0800000",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_max_f32 %1, %2",
				"%4:v1 = v_mul_f32 %3, #0xc0800000",
				"p_unit_test %4",
			},
		},
		{
			name:   "clamp",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_add_f32 %1, %2",
				"%4:v1 = v_med3_f32 %3, #0, #0x3f800000",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_add_f32 %1, %2 fmt:VOP2+VOP3 clamp",
				"p_unit_test %4",
			},
		},
		{
			name:   "med3",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_max_u32 #4, %1",
				"%4:v1 = v_min_u32 #10, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%4:v1 = v_med3_u32 %1, #4, #10",
				"p_unit_test %4",
			},
		},
		{
			name:   "float med3",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_min_f32 #0x3f800000, %1",
				"%4:v1 = v_max_f32 #0, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%4:v1 = v_med3_f32 %1, #0, #0x3f800000",
				"p_unit_test %4",
			},
		},
		{
			name:   "float med3 preserving nans",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_min_f32 #0x3f800000, %1",
				"%4:v1 = v_max_f32 #0, %3 nan_preserve",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%3:v1 = v_min_f32 #0x3f800000, %1",
				"%4:v1 = v_max_f32 #0, %3 nan_preserve",
				"p_unit_test %4",
			},
		},
		{
			name:   "negation folded into subtraction",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_mul_f32 %1, #0xbf800000",
				"%4:v1 = v_add_f32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_subrev_f32 %1, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "xnor",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_not_b32 %1",
				"%4:v1 = v_xor_b32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_xnor_b32 %1, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "or3",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_or_b32 %1, %2",
				"%5:v1 = v_or_b32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_or3_b32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "nand",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s2, %2:s2 = p_startpgm",
				"%3:s2, %4:s1@scc = s_and_b64 %1, %2",
				"%5:s2, %6:s1@scc = s_not_b64 %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:s2, %2:s2 = p_startpgm",
				"%5:s2, %6:s1@scc = s_nand_b64 %1, %2",
				"p_unit_test %5",
			},
		},
		{
			name:   "inverted comparison",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:s2 = v_cmp_lt_f32 %1, %2",
				"%4:s2, %5:s1@scc = s_andn2_b64 @exec:s2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:s2 = v_cmp_nlt_f32 %1, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "dead code",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_mul_f32 %1, %2",
				"%4:v1 = v_add_f32 %3, %2",
				"p_unit_test %1",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"p_unit_test %1",
			},
		},
		{
			name:   "dpp",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_mov_b32 %1 fmt:VOP1+DPP16 dpp16:0x1b bound_ctrl",
				"%4:v1 = v_add_f32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_add_f32 %1, %2 fmt:VOP2+DPP16 dpp16:0x1b bound_ctrl",
				"p_unit_test %4",
			},
		},
		{
			name:   "fmaak",
			target: "{gen: gfx10.3}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:s1 = s_mov_b32 lit:0x40490fdb",
				"%4:v1 = v_fma_f32 %1, %2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_fmaak_f32 %1, %2, lit:0x40490fdb",
				"p_unit_test %4",
			},
		},
		{
			name:   "no vop3 literal before gfx10",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:s1 = s_mov_b32 lit:0x40490fdb",
				"%4:v1 = v_fma_f32 %1, %2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:s1 = s_mov_b32 lit:0x40490fdb",
				"%4:v1 = v_fma_f32 %1, %2, %3",
				"p_unit_test %4",
			},
		},
		{
			name:   "sopk",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s1 = p_startpgm",
				"%2:s1@scc = s_cmp_lt_u32 %1, lit:0x1234",
				"p_unit_test %2@scc",
			},
			expected: []string{
				"%1:s1 = p_startpgm",
				"%2:s1@scc = s_cmpk_lt_u32 %1 imm:0x1234",
				"p_unit_test %2@scc",
			},
		},
		{
			name:   "f64 negation",
			target: "{gen: gfx10}",
			fpMode: "{denorm16_64: keep}",
			lines: []string{
				"%1:v2 = p_startpgm",
				"%3:v2 = v_mul_f64 %1, #0xbff0000000000000:64",
				"p_unit_test %3",
			},
			expected: []string{
				"%1:v2 = p_startpgm",
				"%4:v1, %5:v1 = p_split_vector %1",
				"%6:v1 = v_xor_b32 lit:0x80000000, %5",
				"%3:v2 = p_create_vector %4, %6",
				"p_unit_test %3",
			},
		},
		{
			name:   "f64 multiplication by one",
			target: "{gen: gfx10}",
			fpMode: "{denorm16_64: keep}",
			lines: []string{
				"%1:v2 = p_startpgm",
				"%3:v2 = v_mul_f64 %1, #0x3ff0000000000000:64",
				"p_unit_test %3",
			},
			expected: []string{
				"%1:v2 = p_startpgm",
				"%3:v2 = p_parallelcopy %1",
				"p_unit_test %3",
			},
		},
		{
			name:   "minmax",
			target: "{gen: gfx11}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_min_f32 %1, %2",
				"%5:v1 = v_max_f32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_minmax_f32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "maxmin",
			target: "{gen: gfx11}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_max_i32 %1, %2",
				"%5:v1 = v_min_i32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_maxmin_i32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "minmax before gfx11",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_min_f32 %1, %2",
				"%5:v1 = v_max_f32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_min_f32 %1, %2",
				"%5:v1 = v_max_f32 %4, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "same literal twice",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:s1 = s_mov_b32 lit:0x40490fdb",
				"%3:s1 = s_mov_b32 lit:0x40490fdb",
				"%4:v1 = v_add_f32 %2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%4:v1 = v_add_f32 lit:0x40490fdb, lit:0x40490fdb fmt:VOP2+VOP3",
				"p_unit_test %4",
			},
		},
		{
			name:   "distinct literals",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:s1 = s_mov_b32 lit:0x40490fdb",
				"%3:s1 = s_mov_b32 lit:0x402df854",
				"%4:v1 = v_add_f32 %2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%3:s1 = s_mov_b32 lit:0x402df854",
				"%4:v1 = v_add_f32 lit:0x40490fdb, %3 fmt:VOP2+VOP3",
				"p_unit_test %4",
			},
		},
		{
			name:   "full width extract",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:v1 = p_extract %1, #0, #32, #0",
				"p_unit_test %2",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"p_unit_test %1",
			},
		},
		{
			name:   "bfi from or",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_not_b32 %1",
				"%4:v1 = v_or_b32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_bfi_b32 %1, %2, #0xffffffff",
				"p_unit_test %4",
			},
		},
		{
			name:   "bfi from and",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_not_b32 %1",
				"%4:v1 = v_and_b32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_bfi_b32 %1, #0, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "lshl_or",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_lshlrev_b32 #3, %1",
				"%4:v1 = v_or_b32 %3, %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_lshl_or_b32 %1, #3, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "and_or",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_and_b32 %1, %2",
				"%5:v1 = v_or_b32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_and_or_b32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "xor3",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_xor_b32 %1, %2",
				"%5:v1 = v_xor_b32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_xor3_b32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "add3",
			target: "{gen: gfx9}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_add_u32 %1, %2",
				"%5:v1 = v_add_u32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_add3_u32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "xad",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_xor_b32 %1, %2",
				"%5:v1 = v_add_u32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_xad_u32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "add_lshl",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_add_u32 %1, %2",
				"%5:v1 = v_lshlrev_b32 %3, %4",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_add_lshl_u32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "mad_u32_u16 accumulator",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%4:v1 = v_mad_u32_u16 %1, %2, #0",
				"%5:v1 = v_add_u32 %4, %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_mad_u32_u16 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:   "mad_i32_i24 from subtraction",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%3:v1 = v_mul_u32_u24 #12, %1.u16",
				"%4:v1 = v_sub_u32 %2, %3",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:v1 = p_startpgm",
				"%4:v1 = v_mad_i32_i24 %1.u16, #0xfffffff4, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "s_lshl2_add",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%3:s1, %4:s1@scc = s_lshl_b32 %1, #2",
				"%5:s1, %6:s1@scc = s_add_u32 %3, %2",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%5:s1, %6:s1@scc = s_lshl2_add_u32 %1, %2",
				"p_unit_test %5",
			},
		},
		{
			name:   "s_bcnt0",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s1 = p_startpgm",
				"%2:s1, %3:s1@scc = s_not_b32 %1",
				"%4:s1, %5:s1@scc = s_bcnt1_i32_b32 %2",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:s1 = p_startpgm",
				"%4:s1, %5:s1@scc = s_bcnt0_i32_b32 %1",
				"p_unit_test %4",
			},
		},
		{
			name:   "s_absdiff",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%3:s1, %4:s1@scc = s_sub_i32 %1, %2",
				"%5:s1, %6:s1@scc = s_abs_i32 %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%5:s1, %6:s1@scc = s_absdiff_i32 %1, %2",
				"p_unit_test %5",
			},
		},
		{
			name:   "cndmask of inverted condition",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:v1, %3:s2 = p_startpgm",
				"%4:s2, %5:s1@scc = s_not_b64 %3",
				"%6:v1 = v_cndmask_b32 %1, %2, %4",
				"p_unit_test %6",
			},
			expected: []string{
				"%1:v1, %2:v1, %3:s2 = p_startpgm",
				"%6:v1 = v_cndmask_b32 %2, %1, %3",
				"p_unit_test %6",
			},
		},
		{
			name:   "multiplication by a boolean",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%3:v1 = v_cndmask_b32 #0, #0x3f800000, %2",
				"%4:v1 = v_mul_f32 %3, %1",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%4:v1 = v_cndmask_b32 #0, %1, %2",
				"p_unit_test %4",
			},
		},
		{
			name:   "multiplication by an inverted boolean",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%3:v1 = v_cndmask_b32 #0x3f800000, #0, %2",
				"%4:v1 = v_mul_f32 %3, %1",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%4:v1 = v_cndmask_b32 %1, #0, %2 fmt:VOP2+VOP3",
				"p_unit_test %4",
			},
		},
		{
			name:   "multiplication by a boolean flushing denormals",
			target: "{gen: gfx10}",
			fpMode: "{must_flush_denorms32: true}",
			lines: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%3:v1 = v_cndmask_b32 #0, #0x3f800000, %2",
				"%4:v1 = v_mul_f32 %3, %1",
				"p_unit_test %4",
			},
			expected: []string{
				"%1:v1, %2:s2 = p_startpgm",
				"%3:v1 = v_cndmask_b32 #0, #0x3f800000, %2",
				"%4:v1 = v_mul_f32 %3, %1",
				"p_unit_test %4",
			},
		},
		{
			name:   "uniform bitwise on scc",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%3:s1@scc = s_cmp_eq_u32 %1, #0",
				"%4:s1@scc = s_cmp_eq_u32 %2, #0",
				"%5:s1 = s_cselect_b32 #0xffffffff, #0, %3@scc",
				"%6:s1 = s_cselect_b32 #0xffffffff, #0, %4@scc",
				"%7:s1, %8:s1@scc = s_and_b32 %5, %6",
				"%9:s1 = s_cselect_b32 %1, %2, %8@scc",
				"p_unit_test %9",
			},
			expected: []string{
				"%1:s1, %2:s1 = p_startpgm",
				"%3:s1@scc = s_cmp_eq_u32 %1, #0",
				"%4:s1@scc = s_cmp_eq_u32 %2, #0",
				"%10:s1, %8:s1@scc = s_and_b32 %3, %4",
				"%9:s1 = s_cselect_b32 %1, %2, %8@scc",
				"p_unit_test %9",
			},
		},
		{
			name:   "split of a created vector",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v1, %2:s1 = p_startpgm",
				"%3:v2 = p_create_vector %1, %2",
				"%4:v1, %5:v1 = p_split_vector %3",
				"p_unit_test %5",
			},
			expected: []string{
				"%1:v1, %2:s1 = p_startpgm",
				"%5:v1 = p_parallelcopy %2",
				"p_unit_test %5",
			},
		},
		{
			name:   "split with one used component",
			target: "{gen: gfx10}",
			lines: []string{
				"%1:v2 = p_startpgm",
				"%2:v1, %3:v1 = p_split_vector %1",
				"p_unit_test %3",
			},
			expected: []string{
				"%1:v2 = p_startpgm",
				"%3:v1 = p_extract_vector %1, #1",
				"p_unit_test %3",
			},
		},
		{
			name:   "conversion to mix",
			target: "{gen: gfx11, wave_size: 64, fused_mad_mix: true}",
			fpMode: "{denorm32: keep, denorm16_64: keep}",
			lines: []string{
				"%1:v1 = p_startpgm",
				"%2:v2b = v_cvt_f16_f32 %1",
				"p_unit_test %2",
			},
			expected: []string{
				"%1:v1 = p_startpgm",
				"%2:v2b = v_fma_mixlo_f16 #0x3f800000, %1, -#0:16 opsel_lo:0b0 opsel_hi:0b100",
				"p_unit_test %2",
			},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := optimize(t, singleBlock(tc.target, tc.fpMode, tc.lines...))
			require.Equal(t, tc.expected, irtext.Instructions(p.Blocks[0]))
		})
	}
}

const rematProgram = `target: {gen: gfx9}
blocks:
- instructions:
  - '%%1:v1 = p_startpgm'
  - '%%2:s1 = s_mov_b32 lit:0x12345'
  - p_branch
- idom: 0
  instructions:
%s`

func TestOptimize_rematerialize(t *testing.T) {
	t.Run("several uses", func(t *testing.T) {
		p := optimize(t, fmt.Sprintf(rematProgram, `  - '%3:v1 = v_add_u32 %2, %1'
  - '%4:v1 = v_add_u32 %2, %1'
  - '%5:v1 = v_add_u32 %2, %1'
  - '%6:v1 = v_add_u32 %2, %1'
  - 'p_unit_test %3, %4, %5, %6'
`))
		require.Equal(t, []string{"%1:v1 = p_startpgm", "p_branch"}, irtext.Instructions(p.Blocks[0]))
		require.Equal(t, []string{
			"%7:s1 = s_mov_b32 lit:0x12345",
			"%3:v1 = v_add_u32 %7, %1",
			"%4:v1 = v_add_u32 %7, %1",
			"%5:v1 = v_add_u32 %7, %1",
			"%6:v1 = v_add_u32 %7, %1",
			"p_unit_test %3, %4, %5, %6",
		}, irtext.Instructions(p.Blocks[1]))
	})
	t.Run("single use", func(t *testing.T) {
		p := optimize(t, fmt.Sprintf(rematProgram, `  - '%3:v1 = v_add_u32 %2, %1'
  - 'p_unit_test %3'
`))
		require.Equal(t, []string{"%1:v1 = p_startpgm", "p_branch"}, irtext.Instructions(p.Blocks[0]))
		require.Equal(t, []string{
			"%3:v1 = v_add_u32 lit:0x12345, %1",
			"p_unit_test %3",
		}, irtext.Instructions(p.Blocks[1]))
	})
}

// TestOptimize_idempotent checks that optimizing an optimized program changes nothing.
func TestOptimize_idempotent(t *testing.T) {
	doc := singleBlock("{gen: gfx10.3}", "",
		"%1:v1, %2:v1, %3:v1 = p_startpgm",
		"%4:v1 = v_mul_f32 %1, %2",
		"%5:v1 = v_add_f32 %4, %3",
		"%6:s1 = s_mov_b32 lit:0x12345",
		"%7:v1 = v_add_u32 %6, %5",
		"p_unit_test %7",
	)
	once := irtext.Print(optimize(t, doc))
	twice := irtext.Print(optimize(t, once))
	require.Equal(t, once, twice)
}
