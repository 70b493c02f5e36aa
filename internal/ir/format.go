package ir

import "strings"

// Format is the encoding of an instruction. The lower byte enumerates the scalar and pseudo encodings,
// while the vector encodings are bit flags which can be combined, e.g. FormatVOP2|FormatSDWA.
type Format uint32

const (
	FormatPseudo Format = iota
	FormatPseudoBranch
	FormatSOP1
	FormatSOP2
	FormatSOPK
	FormatSOPC

	FormatVOP1 Format = 1 << (8 + iota - 6)
	FormatVOP2
	FormatVOPC
	FormatVOP3
	FormatVOP3P
	FormatDPP16
	FormatDPP8
	FormatSDWA

	formatBaseMask = 0xff
)

// Is returns true if f has the given vector flag, or equals the given scalar/pseudo base format.
func (f Format) Is(other Format) bool {
	if other <= formatBaseMask {
		return !f.IsVALU() && f == other
	}
	return f&other != 0
}

// IsVALU returns true if this is a vector ALU encoding.
func (f Format) IsVALU() bool {
	return f > formatBaseMask
}

// IsSALU returns true if this is a scalar ALU encoding.
func (f Format) IsSALU() bool {
	return f >= FormatSOP1 && f <= FormatSOPC
}

// IsPseudo returns true if this is a pseudo instruction or a branch.
func (f Format) IsPseudo() bool {
	return f == FormatPseudo || f == FormatPseudoBranch
}

// AsVOP3 returns the format with the VOP3 encoding enabled.
func (f Format) AsVOP3() Format {
	return f | FormatVOP3
}

// Without returns the format with the given vector flags cleared.
func (f Format) Without(flags Format) Format {
	return f &^ flags
}

var formatNames = []struct {
	f    Format
	name string
}{
	{FormatVOP1, "VOP1"}, {FormatVOP2, "VOP2"}, {FormatVOPC, "VOPC"}, {FormatVOP3, "VOP3"},
	{FormatVOP3P, "VOP3P"}, {FormatDPP16, "DPP16"}, {FormatDPP8, "DPP8"}, {FormatSDWA, "SDWA"},
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatPseudo:
		return "PSEUDO"
	case FormatPseudoBranch:
		return "PSEUDO_BRANCH"
	case FormatSOP1:
		return "SOP1"
	case FormatSOP2:
		return "SOP2"
	case FormatSOPK:
		return "SOPK"
	case FormatSOPC:
		return "SOPC"
	}
	var names []string
	for _, n := range formatNames {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
