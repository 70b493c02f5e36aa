package ir

import (
	"fmt"
	"strings"
)

// SubdwordSel selects a byte or a word of a dword, optionally sign extending it.
// The zero value is invalid.
type SubdwordSel uint8

const (
	selSizeMask    = 0x7
	selOffsetShift = 3
	selOffsetMask  = 0x3 << selOffsetShift
	selSignExtend  = 1 << 5
)

// NewSubdwordSel returns the selection of size bytes at the byte offset.
func NewSubdwordSel(size, offset int, signExtend bool) SubdwordSel {
	s := SubdwordSel(size&selSizeMask) | SubdwordSel(offset<<selOffsetShift)&selOffsetMask
	if signExtend {
		s |= selSignExtend
	}
	return s
}

var (
	SelUByte0 = NewSubdwordSel(1, 0, false)
	SelUByte1 = NewSubdwordSel(1, 1, false)
	SelUByte2 = NewSubdwordSel(1, 2, false)
	SelUByte3 = NewSubdwordSel(1, 3, false)
	SelSByte0 = NewSubdwordSel(1, 0, true)
	SelSByte1 = NewSubdwordSel(1, 1, true)
	SelSByte2 = NewSubdwordSel(1, 2, true)
	SelSByte3 = NewSubdwordSel(1, 3, true)
	SelUWord0 = NewSubdwordSel(2, 0, false)
	SelUWord1 = NewSubdwordSel(2, 2, false)
	SelSWord0 = NewSubdwordSel(2, 0, true)
	SelSWord1 = NewSubdwordSel(2, 2, true)
	SelDword  = NewSubdwordSel(4, 0, false)
)

// Size returns the number of selected bytes.
func (s SubdwordSel) Size() int { return int(s & selSizeMask) }

// Offset returns the byte offset of the selection.
func (s SubdwordSel) Offset() int { return int(s&selOffsetMask) >> selOffsetShift }

// SignExtend returns true if the selection is sign extended.
func (s SubdwordSel) SignExtend() bool { return s&selSignExtend != 0 }

// Valid returns true if this is not the zero value.
func (s SubdwordSel) Valid() bool { return s.Size() != 0 }

// IsDword returns true if the whole dword is selected.
func (s SubdwordSel) IsDword() bool { return s.Size() == 4 }

// String implements fmt.Stringer.
func (s SubdwordSel) String() string {
	if !s.Valid() {
		return "invalid"
	}
	if s.IsDword() {
		return "dword"
	}
	sign := "u"
	if s.SignExtend() {
		sign = "s"
	}
	if s.Size() == 2 {
		return fmt.Sprintf("%sword%d", sign, s.Offset()/2)
	}
	return fmt.Sprintf("%sbyte%d", sign, s.Offset())
}

// ParseSubdwordSel parses the result of SubdwordSel.String.
func ParseSubdwordSel(str string) (SubdwordSel, error) {
	if str == "dword" {
		return SelDword, nil
	}
	var sext bool
	switch {
	case strings.HasPrefix(str, "s"):
		sext = true
	case strings.HasPrefix(str, "u"):
	default:
		return 0, fmt.Errorf("invalid subdword selection %q", str)
	}
	var n int
	if _, err := fmt.Sscanf(str[1:], "byte%d", &n); err == nil && n < 4 {
		return NewSubdwordSel(1, n, sext), nil
	}
	if _, err := fmt.Sscanf(str[1:], "word%d", &n); err == nil && n < 2 {
		return NewSubdwordSel(2, n*2, sext), nil
	}
	return 0, fmt.Errorf("invalid subdword selection %q", str)
}
