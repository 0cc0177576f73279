package cpu

import "github.com/arlowood/lr35902/gbcore/bit"

// regTable maps the 3-bit register field used throughout the base opcode
// map to the canonical B,C,D,E,H,L,(HL),A ordering.
var regTable = [8]register8{regB, regC, regD, regE, regH, regL, regHLInd, regA}

// pairTableDD maps the 2-bit dd field (LD/INC/DEC/ADD HL, rr) to BC,DE,HL,SP.
var pairTableDD = [4]register16{pairBC, pairDE, pairHL, pairSP}

// pairTableQQ maps the 2-bit qq field (PUSH/POP) to BC,DE,HL,AF.
var pairTableQQ = [4]register16{pairBC, pairDE, pairHL, pairAF}

// execute decodes and runs one base (non-0xCB-prefixed) opcode, returning
// its cycle cost. Most of the 0x00-0x3F and 0xC0-0xFF ranges are handled by
// regular bit-field decomposition (matching the classic Z80 opcode layout,
// minus the instructions the LR35902 dropped); the irregular remainder is
// enumerated explicitly.
func (c *CPU) execute(opcode uint8) int {
	switch opcode {
	case 0x00: // NOP
		return 4
	case 0x08: // LD (nn), SP
		address := c.fetch16()
		c.bus.Write(address, bit.Low(c.sp))
		c.bus.Write(address+1, bit.High(c.sp))
		return 20
	case 0x10: // STOP
		c.fetch8() // STOP is followed by a throwaway byte on real hardware
		c.stopped = true
		return 4
	case 0x02: // LD (BC), A
		c.bus.Write(c.getBC(), c.a)
		return 8
	case 0x12: // LD (DE), A
		c.bus.Write(c.getDE(), c.a)
		return 8
	case 0x0A: // LD A, (BC)
		c.a = c.bus.Read(c.getBC())
		return 8
	case 0x1A: // LD A, (DE)
		c.a = c.bus.Read(c.getDE())
		return 8
	case 0x22: // LD (HL+), A
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
		return 8
	case 0x32: // LD (HL-), A
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)
		return 8
	case 0x2A: // LD A, (HL+)
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() + 1)
		return 8
	case 0x3A: // LD A, (HL-)
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() - 1)
		return 8
	case 0x07:
		c.rlca()
		return 4
	case 0x0F:
		c.rrca()
		return 4
	case 0x17:
		c.rla()
		return 4
	case 0x1F:
		c.rra()
		return 4
	case 0x27:
		c.daa()
		return 4
	case 0x2F:
		c.cpl()
		return 4
	case 0x37:
		c.scf()
		return 4
	case 0x3F:
		c.ccf()
		return 4
	case 0x18: // JR e
		offset := int8(c.fetch8())
		c.pc = uint16(int32(c.pc) + int32(offset))
		return 12
	case 0x76: // HALT
		c.halted = true
		return 4
	case 0xC3: // JP nn
		target := c.fetch16()
		c.pc = target
		return 16
	case 0xC9: // RET
		c.pc = c.popStack()
		return 16
	case 0xD9: // RETI
		c.pc = c.popStack()
		c.ime = true
		c.imeEnableDelay = 0
		return 16
	case 0xCD: // CALL nn
		target := c.fetch16()
		c.pushStack(c.pc)
		c.pc = target
		return 24
	case 0xE0: // LDH (n), A
		offset := c.fetch8()
		c.bus.Write(0xFF00+uint16(offset), c.a)
		return 12
	case 0xF0: // LDH A, (n)
		offset := c.fetch8()
		c.a = c.bus.Read(0xFF00 + uint16(offset))
		return 12
	case 0xE2: // LD (C), A
		c.bus.Write(0xFF00+uint16(c.c), c.a)
		return 8
	case 0xF2: // LD A, (C)
		c.a = c.bus.Read(0xFF00 + uint16(c.c))
		return 8
	case 0xEA: // LD (nn), A
		address := c.fetch16()
		c.bus.Write(address, c.a)
		return 16
	case 0xFA: // LD A, (nn)
		address := c.fetch16()
		c.a = c.bus.Read(address)
		return 16
	case 0xE8: // ADD SP, e
		offset := int8(c.fetch8())
		c.sp = c.addSPSigned(offset)
		return 16
	case 0xF8: // LD HL, SP+e
		offset := int8(c.fetch8())
		c.setHL(c.addSPSigned(offset))
		return 12
	case 0xF9: // LD SP, HL
		c.sp = c.getHL()
		return 8
	case 0xE9: // JP (HL)
		c.pc = c.getHL()
		return 4
	case 0xF3: // DI
		c.ime = false
		c.imeEnableDelay = 0
		return 4
	case 0xFB: // EI
		c.imeEnableDelay = 2
		return 4
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		c.fault(c.pc-1, opcode)
		return 0
	}

	switch {
	case opcode >= 0x40 && opcode <= 0x7F:
		// LD r, r' — 0x76 (HALT) is handled above, so this is never hit with dst==src==regHLInd.
		dst := regTable[(opcode>>3)&0x7]
		src := regTable[opcode&0x7]
		c.setReg8(dst, c.getReg8(src))
		if dst == regHLInd || src == regHLInd {
			return 8
		}
		return 4

	case opcode >= 0x80 && opcode <= 0xBF:
		src := regTable[opcode&0x7]
		c.aluOp((opcode>>3)&0x7, c.getReg8(src))
		if src == regHLInd {
			return 8
		}
		return 4

	case opcode&0xC7 == 0x04: // INC r
		r := regTable[(opcode>>3)&0x7]
		c.setReg8(r, c.inc8(c.getReg8(r)))
		if r == regHLInd {
			return 12
		}
		return 4

	case opcode&0xC7 == 0x05: // DEC r
		r := regTable[(opcode>>3)&0x7]
		c.setReg8(r, c.dec8(c.getReg8(r)))
		if r == regHLInd {
			return 12
		}
		return 4

	case opcode&0xC7 == 0x06: // LD r, n
		r := regTable[(opcode>>3)&0x7]
		n := c.fetch8()
		c.setReg8(r, n)
		if r == regHLInd {
			return 12
		}
		return 8

	case opcode&0xCF == 0x01: // LD dd, nn
		p := pairTableDD[(opcode>>4)&0x3]
		c.setPairDD(p, c.fetch16())
		return 12

	case opcode&0xCF == 0x03: // INC dd
		p := pairTableDD[(opcode>>4)&0x3]
		c.setPairDD(p, c.getPairDD(p)+1)
		return 8

	case opcode&0xCF == 0x0B: // DEC dd
		p := pairTableDD[(opcode>>4)&0x3]
		c.setPairDD(p, c.getPairDD(p)-1)
		return 8

	case opcode&0xCF == 0x09: // ADD HL, dd
		p := pairTableDD[(opcode>>4)&0x3]
		c.addToHL(c.getPairDD(p))
		return 8

	case opcode&0xE7 == 0x20: // JR cc, e
		cc := (opcode >> 3) & 0x3
		offset := int8(c.fetch8())
		if c.condition(cc) {
			c.pc = uint16(int32(c.pc) + int32(offset))
			return 12
		}
		return 8

	case opcode&0xE7 == 0xC0: // RET cc
		cc := (opcode >> 3) & 0x3
		if c.condition(cc) {
			c.pc = c.popStack()
			return 20
		}
		return 8

	case opcode&0xCF == 0xC1: // POP qq
		p := pairTableQQ[(opcode>>4)&0x3]
		c.setPairQQ(p, c.popStack())
		return 12

	case opcode&0xCF == 0xC5: // PUSH qq
		p := pairTableQQ[(opcode>>4)&0x3]
		c.pushStack(c.getPairQQ(p))
		return 16

	case opcode&0xE7 == 0xC2: // JP cc, nn
		cc := (opcode >> 3) & 0x3
		target := c.fetch16()
		if c.condition(cc) {
			c.pc = target
			return 16
		}
		return 12

	case opcode&0xE7 == 0xC4: // CALL cc, nn
		cc := (opcode >> 3) & 0x3
		target := c.fetch16()
		if c.condition(cc) {
			c.pushStack(c.pc)
			c.pc = target
			return 24
		}
		return 12

	case opcode&0xC7 == 0xC7: // RST n
		target := uint16(opcode & 0x38)
		c.pushStack(c.pc)
		c.pc = target
		return 16

	case opcode&0xC7 == 0xC6: // ALU A, n
		n := c.fetch8()
		c.aluOp((opcode>>3)&0x7, n)
		return 8

	case opcode == 0xCB:
		sub := c.fetch8()
		return c.executeCB(sub)
	}

	c.fault(c.pc-1, opcode)
	return 0
}

// aluOp dispatches the eight ALU operations shared by the register and
// immediate forms, in the canonical ADD,ADC,SUB,SBC,AND,XOR,OR,CP order.
func (c *CPU) aluOp(op uint8, value uint8) {
	switch op {
	case 0:
		c.addToA(value)
	case 1:
		c.adcToA(value)
	case 2:
		c.subFromA(value)
	case 3:
		c.sbcFromA(value)
	case 4:
		c.andWithA(value)
	case 5:
		c.xorWithA(value)
	case 6:
		c.orWithA(value)
	case 7:
		c.cpWithA(value)
	}
}
