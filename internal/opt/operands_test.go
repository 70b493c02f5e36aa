package opt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/irtext"
)

func TestExtractApplyExtract(t *testing.T) {
	for _, tc := range []struct {
		name         string
		inner, outer ir.SubdwordSel
		expected     ir.SubdwordSel
		ok           bool
	}{
		{name: "whole inner", inner: ir.SelDword, outer: ir.SelUByte1, expected: ir.SelUByte1, ok: true},
		{name: "whole outer", inner: ir.SelUWord1, outer: ir.SelDword, expected: ir.SelUWord1, ok: true},
		{name: "byte of word", inner: ir.SelUWord1, outer: ir.SelUByte1, expected: ir.SelUByte3, ok: true},
		{name: "signed byte of word", inner: ir.SelUWord1, outer: ir.SelSByte0, expected: ir.SelSByte2, ok: true},
		{name: "zero extended byte read as word", inner: ir.SelUByte0, outer: ir.SelUWord0, expected: ir.SelUByte0, ok: true},
		{name: "sign extended byte read as signed word", inner: ir.SelSByte0, outer: ir.SelSWord0, expected: ir.SelSByte0, ok: true},
		{name: "sign extended byte read as unsigned word", inner: ir.SelSByte0, outer: ir.SelUWord0},
		{name: "high word of word", inner: ir.SelUWord0, outer: ir.SelUWord1},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sel, ok := extractApplyExtract(tc.inner, tc.outer)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.expected, sel)
			}
		})
	}
}

func TestExtractSel(t *testing.T) {
	for _, tc := range []struct {
		line     string
		expected ir.SubdwordSel
		ok       bool
	}{
		{line: "%3:v1 = p_extract %1, #1, #8, #0", expected: ir.SelUByte1, ok: true},
		{line: "%3:v1 = p_extract %1, #1, #16, #1", expected: ir.SelSWord1, ok: true},
		{line: "%3:v1 = p_extract %1, #0, #32, #0", expected: ir.SelDword, ok: true},
		{line: "%3:v1 = p_insert %1, #3, #8", expected: ir.SelUByte3, ok: true},
		{line: "%3:v1 = p_extract %1, #2, #16, #0"},
		{line: "%3:v1 = p_extract %1, #0, #12, #0"},
		{line: "%3:v1 = p_extract %1, %2, #8, #0"},
	} {
		tc := tc
		t.Run(tc.line, func(t *testing.T) {
			p := ir.NewProgram(ir.Target{Gen: ir.GenGFX10, WaveSize: 64})
			_, err := irtext.ParseInstruction(p, "%1:v1, %2:v1 = p_startpgm")
			require.NoError(t, err)
			instr, err := irtext.ParseInstruction(p, tc.line)
			require.NoError(t, err)

			sel, ok := extractSel(instr)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.expected, sel)
			}
		})
	}
}
