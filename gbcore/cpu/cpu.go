// Package cpu implements decode and execution for the Sharp LR35902, the
// hybrid 8080/Z80 core at the heart of the original DMG handheld.
package cpu

import (
	"fmt"

	"github.com/arlowood/lr35902/gbcore/addr"
	"github.com/arlowood/lr35902/gbcore/bit"
)

// Bus is the narrow capability the CPU needs from the memory subsystem.
// The CPU never holds a reference to the concrete MMU: it only ever talks
// to whatever implements Bus, which keeps the bus/video/timer/audio
// ownership entirely with the caller (see Step's doc comment).
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds all LR35902 register and control state. It has no timing or
// peripheral state of its own beyond the monotonic cycle counter T: the
// host (gbcore.Emulator) owns the bus, PPU, timer and APU and is
// responsible for ticking them with the cycle count Step returns.
type CPU struct {
	a, b, c, d, e, h, l, f uint8
	sp, pc                 uint16

	ime            bool
	imeEnableDelay int // counts down to 0; hits zero one full instruction after EI
	halted         bool
	stopped        bool

	t uint64 // monotonic master-cycle counter

	bus Bus

	// OnFault is invoked, if set, before panicking on an invalid or
	// unimplemented opcode, so callers (tests, the host loop) can observe
	// the condition instead of crashing the process. See spec §7.
	OnFault func(pc uint16, opcode uint8)
}

// New returns a CPU wired to bus, with all registers zeroed. Callers that
// need the post-boot-ROM register state (running without the boot ROM
// overlay) should call SetPostBootState after New.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// SetPostBootState initializes registers to the values the stock DMG boot
// ROM leaves behind, for carts run without the boot ROM overlay installed.
func (c *CPU) SetPostBootState() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
}

// Cycle returns the CPU's monotonic master-cycle counter.
func (c *CPU) Cycle() uint64 { return c.t }

// PC returns the current program counter, mainly for debugging/tests.
func (c *CPU) PC() uint16 { return c.pc }

// SetPC forces the program counter, used by Reset and tests.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

// SetSP forces the stack pointer, used by Reset and tests.
func (c *CPU) SetSP(sp uint16) { c.sp = sp }

// SP returns the current stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// IME returns whether the interrupt master enable flag is currently set.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is parked in HALT.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU is parked in STOP.
func (c *CPU) Stopped() bool { return c.stopped }

// A, B, C, D, E, H, L, F expose register state for tests and debuggers.
func (c *CPU) A() uint8  { return c.a }
func (c *CPU) B() uint8  { return c.b }
func (c *CPU) C() uint8  { return c.c }
func (c *CPU) D() uint8  { return c.d }
func (c *CPU) E() uint8  { return c.e }
func (c *CPU) H() uint8  { return c.h }
func (c *CPU) L() uint8  { return c.l }
func (c *CPU) F() uint8  { return c.f }
func (c *CPU) AF() uint16 { return c.getAF() }
func (c *CPU) BC() uint16 { return c.getBC() }
func (c *CPU) DE() uint16 { return c.getDE() }
func (c *CPU) HL() uint16 { return c.getHL() }

// Step runs exactly one instruction's worth of work: either servicing a
// pending interrupt, ticking a HALT/STOP one 4-cycle unit, or
// fetch-decode-executing the next opcode. It returns the number of master
// cycles consumed, for the caller to feed to the PPU/timer/APU.
func (c *CPU) Step() int {
	if cycles := c.handleInterrupts(); cycles > 0 {
		c.t += uint64(cycles)
		return cycles
	}

	var cycles int
	switch {
	case c.halted:
		cycles = 4
	case c.stopped:
		cycles = 4
	default:
		opcode := c.fetch8()
		cycles = c.execute(opcode)
	}

	if c.imeEnableDelay > 0 {
		c.imeEnableDelay--
		if c.imeEnableDelay == 0 {
			c.ime = true
		}
	}

	c.t += uint64(cycles)
	return cycles
}

// handleInterrupts services the lowest-numbered pending, enabled interrupt
// if IME is set, and otherwise wakes the CPU from HALT when any interrupt
// is pending regardless of IME (spec §4.3).
func (c *CPU) handleInterrupts() int {
	ie := c.bus.Read(addr.IE)
	iff := c.bus.Read(addr.IF)
	pending := ie & iff & uint8(addr.AllInterruptsMask)

	if pending == 0 {
		return 0
	}

	c.halted = false
	c.stopped = false

	if !c.ime {
		return 0
	}

	bitIdx := lowestSetBit(pending)
	iff = bit.Reset(bitIdx, iff)
	c.bus.Write(addr.IF, iff)

	c.ime = false
	c.imeEnableDelay = 0

	c.pushStack(c.pc)
	c.pc = addr.Vectors[bitIdx]

	return 20
}

func lowestSetBit(v uint8) uint8 {
	for i := uint8(0); i < 8; i++ {
		if v&(1<<i) != 0 {
			return i
		}
	}
	panic("cpu: lowestSetBit called with zero value")
}

func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return bit.Combine(high, low)
}

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(v))
	c.sp--
	c.bus.Write(c.sp, bit.Low(v))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) fault(pc uint16, opcode uint8) {
	if c.OnFault != nil {
		c.OnFault(pc, opcode)
	}
	panic(fmt.Sprintf("cpu: invalid opcode 0x%02X at pc 0x%04X", opcode, pc))
}
