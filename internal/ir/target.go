package ir

import (
	"fmt"
	"strings"
)

// Gen is the hardware generation tier.
type Gen uint8

const (
	GenGFX6 Gen = iota
	GenGFX7
	GenGFX8
	GenGFX9
	GenGFX10
	GenGFX10_3
	GenGFX11
	GenGFX12
)

var genNames = [...]string{"gfx6", "gfx7", "gfx8", "gfx9", "gfx10", "gfx10.3", "gfx11", "gfx12"}

// String implements fmt.Stringer.
func (g Gen) String() string {
	if int(g) < len(genNames) {
		return genNames[g]
	}
	return fmt.Sprintf("gfx?(%d)", uint8(g))
}

// ParseGen parses the generation name such as "gfx10.3".
func ParseGen(s string) (Gen, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range genNames {
		if n == s {
			return Gen(i), nil
		}
	}
	return 0, fmt.Errorf("unknown generation %q", s)
}

// Target describes the capabilities of the hardware the program is compiled for.
type Target struct {
	Gen Gen
	// WaveSize is either 32 or 64.
	WaveSize int
	// FastFMA32 is true if v_fma_f32 is as fast as v_mad_f32.
	FastFMA32 bool
	// FusedMadMix is true if v_fma_mix is fused, i.e. computes with a single rounding.
	FusedMadMix bool
}

// LaneMask returns the register class of a lane mask.
func (t Target) LaneMask() RegClass {
	if t.WaveSize == 32 {
		return RegClassS1
	}
	return RegClassS2
}

// ConstantBusLimit returns how many distinct scalar registers and literals a vector instruction may read.
func (t Target) ConstantBusLimit() int {
	if t.Gen >= GenGFX10 {
		return 2
	}
	return 1
}

// HasMadF32 returns true if v_mad_f32 (multiply-add with intermediate rounding) is available.
func (t Target) HasMadF32() bool { return t.Gen < GenGFX10_3 }

// HasThreeOpFusion returns true if v_or3, v_add3, v_lshl_add and friends are available.
func (t Target) HasThreeOpFusion() bool { return t.Gen >= GenGFX9 }

// HasXor3 returns true if v_xor3 and v_xnor are available.
func (t Target) HasXor3() bool { return t.Gen >= GenGFX10 }

// HasMinMax3 returns true if min3, max3 and med3 are available.
func (t Target) HasMinMax3() bool { return true }

// HasMinMaxFused returns true if v_minmax and v_maxmin are available.
func (t Target) HasMinMaxFused() bool { return t.Gen >= GenGFX11 }

// HasSDWA returns true if the sub-dword addressing encoding is available.
func (t Target) HasSDWA() bool { return t.Gen >= GenGFX8 && t.Gen < GenGFX11 }

// HasDPP returns true if the data parallel primitives encodings are available.
func (t Target) HasDPP() bool { return t.Gen >= GenGFX8 }

// HasOpsel returns true if 16-bit halves can be selected with opsel.
func (t Target) HasOpsel() bool { return t.Gen >= GenGFX9 }

// HasFMAMix returns true if v_fma_mix is available.
func (t Target) HasFMAMix() bool { return t.Gen >= GenGFX9 }

// AllowsVOP3Literal returns true if VOP3 and VOP3P instructions can have a literal operand.
func (t Target) AllowsVOP3Literal() bool { return t.Gen >= GenGFX10 }

// HasSOPK returns true if the compares with a 16-bit immediate are available.
func (t Target) HasSOPK() bool { return t.Gen < GenGFX12 }

// InlineConstantBits returns the widest value an inline constant can represent.
func (t Target) InlineConstantBits() int { return 64 }

// DenormMode describes how denormals are handled on the input and output of float instructions.
type DenormMode uint8

const (
	DenormFlush   DenormMode = 0
	DenormKeepIn  DenormMode = 1
	DenormKeepOut DenormMode = 2
	DenormKeep               = DenormKeepIn | DenormKeepOut
)

// String implements fmt.Stringer.
func (d DenormMode) String() string {
	switch d {
	case DenormFlush:
		return "flush"
	case DenormKeepIn:
		return "keep_in"
	case DenormKeepOut:
		return "keep_out"
	default:
		return "keep"
	}
}

// ParseDenormMode parses the result of DenormMode.String.
func ParseDenormMode(s string) (DenormMode, error) {
	for _, d := range []DenormMode{DenormFlush, DenormKeepIn, DenormKeepOut, DenormKeep} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown denormal mode %q", s)
}

// FloatMode is the floating point mode of a block.
type FloatMode struct {
	Denorm32    DenormMode
	Denorm16_64 DenormMode
	// MustFlushDenorms32 means the results must be flushed even if the hardware keeps them.
	MustFlushDenorms32    bool
	MustFlushDenorms16_64 bool
}

// Denorm returns true if any denormal mode keeps denormals.
func (m FloatMode) Denorm() bool {
	return m.Denorm32 != DenormFlush || m.Denorm16_64 != DenormFlush
}
