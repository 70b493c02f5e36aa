package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubdwordSel(t *testing.T) {
	for _, tc := range []struct {
		sel          SubdwordSel
		size, offset int
		sext         bool
		str          string
	}{
		{sel: SelUByte0, size: 1, offset: 0, str: "ubyte0"},
		{sel: SelSByte3, size: 1, offset: 3, sext: true, str: "sbyte3"},
		{sel: SelUWord1, size: 2, offset: 2, str: "uword1"},
		{sel: SelSWord0, size: 2, offset: 0, sext: true, str: "sword0"},
		{sel: SelDword, size: 4, offset: 0, str: "dword"},
	} {
		tc := tc
		t.Run(tc.str, func(t *testing.T) {
			require.Equal(t, tc.size, tc.sel.Size())
			require.Equal(t, tc.offset, tc.sel.Offset())
			require.Equal(t, tc.sext, tc.sel.SignExtend())
			require.True(t, tc.sel.Valid())
			require.Equal(t, tc.size == 4, tc.sel.IsDword())
			require.Equal(t, tc.str, tc.sel.String())

			parsed, err := ParseSubdwordSel(tc.str)
			require.NoError(t, err)
			require.Equal(t, tc.sel, parsed)
		})
	}

	require.False(t, SubdwordSel(0).Valid())
	require.Equal(t, "invalid", SubdwordSel(0).String())
}

func TestParseSubdwordSel_errors(t *testing.T) {
	for _, s := range []string{"", "byte0", "ubyte4", "sword2", "xword0", "uword"} {
		_, err := ParseSubdwordSel(s)
		require.Error(t, err, s)
	}
}
