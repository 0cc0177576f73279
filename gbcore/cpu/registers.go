package cpu

import "github.com/arlowood/lr35902/gbcore/bit"

// Flag is one of the four flags stored in the high nibble of F.
type Flag = uint8

// Flag bit masks, matching the high nibble of the F register. The low
// nibble of F always reads zero.
const (
	flagZ Flag = 0x80 // Zero
	flagN Flag = 0x40 // Subtract
	flagH Flag = 0x20 // Half carry
	flagC Flag = 0x10 // Carry
)

// register8 identifies one of the eight addressable 8-bit operands in the
// standard opcode encoding, in the canonical B,C,D,E,H,L,(HL),A order.
type register8 uint8

const (
	regB register8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLInd
	regA
)

// register16 identifies a dd/qq register pair operand.
type register16 uint8

const (
	pairBC register16 = iota
	pairDE
	pairHL
	pairSP // dd-style: SP is the fourth pair
	pairAF // qq-style: AF replaces SP for PUSH/POP
)

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0 // low nibble of F always reads zero
}

func (c *CPU) setBC(v uint16) {
	c.b = bit.High(v)
	c.c = bit.Low(v)
}

func (c *CPU) setDE(v uint16) {
	c.d = bit.High(v)
	c.e = bit.Low(v)
}

func (c *CPU) setHL(v uint16) {
	c.h = bit.High(v)
	c.l = bit.Low(v)
}

// getReg8 reads one of the eight 8-bit operands. (HL) dereferences through
// the bus and costs an extra 4 cycles, accounted for by the caller's cycle
// table rather than here.
func (c *CPU) getReg8(r register8) uint8 {
	switch r {
	case regB:
		return c.b
	case regC:
		return c.c
	case regD:
		return c.d
	case regE:
		return c.e
	case regH:
		return c.h
	case regL:
		return c.l
	case regHLInd:
		return c.bus.Read(c.getHL())
	case regA:
		return c.a
	default:
		panic("cpu: invalid register8 index")
	}
}

func (c *CPU) setReg8(r register8, v uint8) {
	switch r {
	case regB:
		c.b = v
	case regC:
		c.c = v
	case regD:
		c.d = v
	case regE:
		c.e = v
	case regH:
		c.h = v
	case regL:
		c.l = v
	case regHLInd:
		c.bus.Write(c.getHL(), v)
	case regA:
		c.a = v
	default:
		panic("cpu: invalid register8 index")
	}
}

// getPairDD reads one of BC/DE/HL/SP, selected by the two bits following
// a dd-style opcode (0x0-0x3 occupying bits 5-4 of most opcodes).
func (c *CPU) getPairDD(p register16) uint16 {
	switch p {
	case pairBC:
		return c.getBC()
	case pairDE:
		return c.getDE()
	case pairHL:
		return c.getHL()
	case pairSP:
		return c.sp
	default:
		panic("cpu: invalid register16 index")
	}
}

func (c *CPU) setPairDD(p register16, v uint16) {
	switch p {
	case pairBC:
		c.setBC(v)
	case pairDE:
		c.setDE(v)
	case pairHL:
		c.setHL(v)
	case pairSP:
		c.sp = v
	default:
		panic("cpu: invalid register16 index")
	}
}

// getPairQQ reads one of BC/DE/HL/AF, the PUSH/POP operand encoding.
func (c *CPU) getPairQQ(p register16) uint16 {
	switch p {
	case pairBC:
		return c.getBC()
	case pairDE:
		return c.getDE()
	case pairHL:
		return c.getHL()
	case pairAF:
		return c.getAF()
	default:
		panic("cpu: invalid register16 index")
	}
}

func (c *CPU) setPairQQ(p register16, v uint16) {
	switch p {
	case pairBC:
		c.setBC(v)
	case pairDE:
		c.setDE(v)
	case pairHL:
		c.setHL(v)
	case pairAF:
		c.setAF(v)
	default:
		panic("cpu: invalid register16 index")
	}
}

func (c *CPU) getFlag(f Flag) bool {
	return c.f&f != 0
}

func (c *CPU) setFlagTo(f Flag, set bool) {
	if set {
		c.f |= f
	} else {
		c.f &^= f
	}
	c.f &= 0xF0
}

// condition evaluates one of the four branch conditions NZ,Z,NC,C.
func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.getFlag(flagZ)
	case 1:
		return c.getFlag(flagZ)
	case 2:
		return !c.getFlag(flagC)
	case 3:
		return c.getFlag(flagC)
	default:
		panic("cpu: invalid condition code")
	}
}
