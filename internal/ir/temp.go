package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RegType is the register file of a value.
type RegType uint8

const (
	RegTypeSGPR RegType = iota
	RegTypeVGPR
)

// RegClass is the register file and the size of a value.
//
// The lower 5 bits hold the size in dwords, or in bytes for sub-dword classes.
type RegClass uint8

const (
	regClassVGPRBit     RegClass = 1 << 5
	regClassSubdwordBit RegClass = 1 << 7
	regClassSizeMask    RegClass = 0x1f

	RegClassInvalid RegClass = 0
	RegClassS1               = RegClass(1)
	RegClassS2               = RegClass(2)
	RegClassS3               = RegClass(3)
	RegClassS4               = RegClass(4)
	RegClassV1               = regClassVGPRBit | 1
	RegClassV2               = regClassVGPRBit | 2
	RegClassV3               = regClassVGPRBit | 3
	RegClassV4               = regClassVGPRBit | 4
	RegClassV1B              = regClassSubdwordBit | regClassVGPRBit | 1
	RegClassV2B              = regClassSubdwordBit | regClassVGPRBit | 2
	RegClassV3B              = regClassSubdwordBit | regClassVGPRBit | 3
)

// NewRegClass returns the register class of the given register file which holds the given number of bytes.
// Scalar classes are rounded up to dwords.
func NewRegClass(typ RegType, bytes int) RegClass {
	if typ == RegTypeSGPR {
		return RegClass((bytes + 3) / 4)
	}
	if bytes%4 != 0 {
		return regClassSubdwordBit | regClassVGPRBit | RegClass(bytes)
	}
	return regClassVGPRBit | RegClass(bytes/4)
}

// Type returns the register file.
func (rc RegClass) Type() RegType {
	if rc&regClassVGPRBit != 0 {
		return RegTypeVGPR
	}
	return RegTypeSGPR
}

// IsSubdword returns true if the size is measured in bytes.
func (rc RegClass) IsSubdword() bool {
	return rc&regClassSubdwordBit != 0
}

// Bytes returns the size in bytes.
func (rc RegClass) Bytes() int {
	if rc.IsSubdword() {
		return int(rc & regClassSizeMask)
	}
	return int(rc&regClassSizeMask) * 4
}

// Size returns the size in dwords, rounding up.
func (rc RegClass) Size() int {
	return (rc.Bytes() + 3) / 4
}

// Valid returns true if this is not RegClassInvalid.
func (rc RegClass) Valid() bool {
	return rc&regClassSizeMask != 0
}

// String implements fmt.Stringer.
func (rc RegClass) String() string {
	if !rc.Valid() {
		return "invalid"
	}
	prefix := "s"
	if rc.Type() == RegTypeVGPR {
		prefix = "v"
	}
	if rc.IsSubdword() {
		return fmt.Sprintf("%s%db", prefix, rc.Bytes())
	}
	return fmt.Sprintf("%s%d", prefix, rc.Size())
}

// ParseRegClass parses the result of RegClass.String.
func ParseRegClass(s string) (RegClass, error) {
	for _, rc := range []RegClass{RegClassS1, RegClassS2, RegClassS3, RegClassS4, RegClassV1, RegClassV2,
		RegClassV3, RegClassV4, RegClassV1B, RegClassV2B, RegClassV3B} {
		if rc.String() == s {
			return rc, nil
		}
	}
	return RegClassInvalid, fmt.Errorf("unknown register class %q", s)
}

// TempID is the unique identifier of an SSA value.
type TempID uint32

// Temp is an SSA value: the higher 32-bit holds its RegClass, and the lower 32-bit holds the TempID.
// Zero is not a valid Temp.
type Temp uint64

// TempInvalid is the invalid Temp.
const TempInvalid Temp = 0

// NewTemp returns a Temp.
func NewTemp(id TempID, rc RegClass) Temp {
	if id == 0 || id == math.MaxUint32 {
		panic("BUG: invalid temp id")
	}
	return Temp(id) | Temp(rc)<<32
}

// ID returns the TempID of this Temp.
func (t Temp) ID() TempID {
	return TempID(t)
}

// RegClass returns the RegClass of this Temp.
func (t Temp) RegClass() RegClass {
	return RegClass(t >> 32)
}

// Type returns the register file of this Temp.
func (t Temp) Type() RegType { return t.RegClass().Type() }

// Bytes returns the size of this Temp in bytes.
func (t Temp) Bytes() int { return t.RegClass().Bytes() }

// Size returns the size of this Temp in dwords.
func (t Temp) Size() int { return t.RegClass().Size() }

// Valid returns true if this Temp is valid.
func (t Temp) Valid() bool { return t.ID() != 0 }

// String implements fmt.Stringer.
func (t Temp) String() string {
	return fmt.Sprintf("%%%d", t.ID())
}

// PhysReg is a physical register with byte granularity.
type PhysReg uint16

// Reg returns the PhysReg of the register at the given index.
func Reg(index uint16) PhysReg {
	return PhysReg(index << 2)
}

const (
	RegVCC    PhysReg = 106 << 2
	RegM0     PhysReg = 124 << 2
	RegExec   PhysReg = 126 << 2
	RegExecHi PhysReg = 127 << 2
	RegSCC    PhysReg = 253 << 2
	// RegFirstVGPR is v[0].
	RegFirstVGPR PhysReg = 256 << 2
)

// Index returns the register index.
func (r PhysReg) Index() uint16 {
	return uint16(r) >> 2
}

// Byte returns the byte offset within the register.
func (r PhysReg) Byte() int {
	return int(r & 3)
}

// Advance returns the register the given number of bytes after r.
func (r PhysReg) Advance(bytes int) PhysReg {
	return PhysReg(int(r) + bytes)
}

// String implements fmt.Stringer.
func (r PhysReg) String() string {
	var name string
	switch r.Index() {
	case RegVCC.Index():
		name = "vcc"
	case RegM0.Index():
		name = "m0"
	case RegExec.Index():
		name = "exec"
	case RegExecHi.Index():
		name = "exec_hi"
	case RegSCC.Index():
		name = "scc"
	default:
		if r >= RegFirstVGPR {
			name = fmt.Sprintf("v[%d]", r.Index()-RegFirstVGPR.Index())
		} else {
			name = fmt.Sprintf("s[%d]", r.Index())
		}
	}
	if b := r.Byte(); b != 0 {
		name += fmt.Sprintf("[%d]", b)
	}
	return name
}

// ParsePhysReg parses the result of PhysReg.String for whole registers.
func ParsePhysReg(s string) (PhysReg, error) {
	switch s {
	case "vcc":
		return RegVCC, nil
	case "m0":
		return RegM0, nil
	case "exec":
		return RegExec, nil
	case "exec_hi":
		return RegExecHi, nil
	case "scc":
		return RegSCC, nil
	}
	if len(s) > 3 && (s[0] == 's' || s[0] == 'v') && s[1] == '[' && strings.HasSuffix(s, "]") {
		n, err := strconv.ParseUint(s[2:len(s)-1], 10, 16)
		if err == nil {
			if s[0] == 'v' {
				return RegFirstVGPR.Advance(int(n) * 4), nil
			}
			return Reg(uint16(n)), nil
		}
	}
	return 0, fmt.Errorf("invalid physical register %q", s)
}
