package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/addr"
)

// fakeBus is a flat 64KB address space, enough to exercise the decoder
// without pulling in the real MMU's region routing.
type fakeBus struct {
	mem [0x10000]byte
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) byte        { return b.mem[address] }
func (b *fakeBus) Write(address uint16, value byte) { b.mem[address] = value }

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	return New(bus), bus
}

func loadProgram(bus *fakeBus, pc uint16, bytes ...byte) {
	for i, b := range bytes {
		bus.mem[int(pc)+i] = b
	}
}

func TestStack(t *testing.T) {
	c, _ := newTestCPU()
	c.sp = 0xFFFE

	c.pushStack(0xBEEF)
	assert.Equal(t, uint16(0xFFFC), c.sp)

	got := c.popStack()
	assert.Equal(t, uint16(0xBEEF), got)
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestLoadImmediate(t *testing.T) {
	c, bus := newTestCPU()
	loadProgram(bus, 0x100, 0x3E, 0x42) // LD A, 0x42
	c.pc = 0x100

	c.Step()

	assert.Equal(t, uint8(0x42), c.a)
	assert.Equal(t, uint16(0x102), c.pc)
}

func TestAddSetsFlags(t *testing.T) {
	testCases := []struct {
		desc      string
		a, b      uint8
		wantA     uint8
		wantZ     bool
		wantH     bool
		wantC     bool
	}{
		{desc: "simple add", a: 0x01, b: 0x01, wantA: 0x02},
		{desc: "zero result", a: 0x00, b: 0x00, wantA: 0x00, wantZ: true},
		{desc: "half carry", a: 0x0F, b: 0x01, wantA: 0x10, wantH: true},
		{desc: "full carry", a: 0xFF, b: 0x01, wantA: 0x00, wantZ: true, wantH: true, wantC: true},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU()
			c.a = tC.a
			c.addToA(tC.b)

			assert.Equal(t, tC.wantA, c.a)
			assert.Equal(t, tC.wantZ, c.getFlag(flagZ))
			assert.False(t, c.getFlag(flagN))
			assert.Equal(t, tC.wantH, c.getFlag(flagH))
			assert.Equal(t, tC.wantC, c.getFlag(flagC))
		})
	}
}

func TestSubSetsFlags(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x10
	c.subFromA(0x01)

	assert.Equal(t, uint8(0x0F), c.a)
	assert.True(t, c.getFlag(flagN))
	assert.True(t, c.getFlag(flagH))
	assert.False(t, c.getFlag(flagC))
}

func TestIncDecWraparound(t *testing.T) {
	c, _ := newTestCPU()

	c.b = 0xFF
	c.b = c.inc8(c.b)
	assert.Equal(t, uint8(0x00), c.b)
	assert.True(t, c.getFlag(flagZ))
	assert.True(t, c.getFlag(flagH))

	c.c = 0x00
	c.c = c.dec8(c.c)
	assert.Equal(t, uint8(0xFF), c.c)
	assert.True(t, c.getFlag(flagN))
	assert.True(t, c.getFlag(flagH))
}

func TestLdRegisterToRegister(t *testing.T) {
	c, bus := newTestCPU()
	loadProgram(bus, 0x100, 0x47) // LD B, A
	c.pc = 0x100
	c.a = 0x99

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(0x99), c.b)
}

func TestLdFromHLIndirectCostsExtraCycles(t *testing.T) {
	c, bus := newTestCPU()
	c.setHL(0x9000)
	bus.mem[0x9000] = 0x77
	loadProgram(bus, 0x100, 0x46) // LD B, (HL)
	c.pc = 0x100

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x77), c.b)
}

func TestJumpsAndCalls(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	c.sp = 0xFFFE
	loadProgram(bus, 0x100, 0xCD, 0x00, 0x02) // CALL 0x0200
	loadProgram(bus, 0x200, 0xC9)             // RET

	cycles := c.Step()
	assert.Equal(t, 24, cycles)
	assert.Equal(t, uint16(0x0200), c.pc)
	assert.Equal(t, uint16(0xFFFC), c.sp)

	cycles = c.Step()
	assert.Equal(t, 16, cycles)
	assert.Equal(t, uint16(0x0103), c.pc)
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestConditionalJumpNotTaken(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	c.setFlagTo(flagZ, false)
	loadProgram(bus, 0x100, 0xCA, 0x00, 0x02) // JP Z, 0x0200

	cycles := c.Step()

	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(0x103), c.pc)
}

func TestCBSetBit(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	c.b = 0x00
	loadProgram(bus, 0x100, 0xCB, 0xC0) // SET 0, B

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x01), c.b)
}

func TestCBBitTest(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	c.b = 0x80
	loadProgram(bus, 0x100, 0xCB, 0x78) // BIT 7, B

	c.Step()

	assert.False(t, c.getFlag(flagZ))
	assert.True(t, c.getFlag(flagH))
}

func TestDAAAfterBCDAddition(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x45
	c.addToA(0x38) // binary 0x7D, BCD should read 83 after DAA
	c.daa()

	assert.Equal(t, uint8(0x83), c.a)
	assert.False(t, c.getFlag(flagC))
}

func TestInterruptDispatchRespectsIME(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x150
	c.sp = 0xFFFE
	c.ime = true
	bus.mem[addr.IE] = uint8(addr.VBlankInterrupt)
	bus.mem[addr.IF] = uint8(addr.VBlankInterrupt)

	cycles := c.Step()

	assert.Equal(t, 20, cycles)
	assert.Equal(t, addr.Vectors[0], c.pc)
	assert.False(t, c.ime)
	assert.Equal(t, uint8(0), bus.mem[addr.IF])
}

func TestInterruptIgnoredWhenIMEClear(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x150
	loadProgram(bus, 0x150, 0x00) // NOP
	c.ime = false
	bus.mem[addr.IE] = uint8(addr.VBlankInterrupt)
	bus.mem[addr.IF] = uint8(addr.VBlankInterrupt)

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x151), c.pc)
}

func TestHaltWakesOnPendingInterruptEvenWithoutIME(t *testing.T) {
	c, bus := newTestCPU()
	c.halted = true
	c.ime = false
	bus.mem[addr.IE] = uint8(addr.TimerInterrupt)
	bus.mem[addr.IF] = uint8(addr.TimerInterrupt)

	c.Step()

	assert.False(t, c.halted)
}

func TestEIDelaysInterruptEnableByOneInstruction(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	c.sp = 0xFFFE
	loadProgram(bus, 0x100, 0xFB, 0x00, 0x00) // EI, NOP, NOP
	bus.mem[addr.IE] = uint8(addr.VBlankInterrupt)
	bus.mem[addr.IF] = uint8(addr.VBlankInterrupt)

	c.Step() // EI: ime not yet true
	assert.False(t, c.ime)

	c.Step() // the instruction immediately after EI must not be preempted
	assert.True(t, c.ime)
	assert.Equal(t, uint16(0x102), c.pc)

	c.Step() // now the pending interrupt fires
	assert.Equal(t, addr.Vectors[0], c.pc)
}

func TestFaultHookInvokedOnInvalidOpcode(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x100
	loadProgram(bus, 0x100, 0xD3) // invalid
	var gotOpcode uint8
	c.OnFault = func(pc uint16, opcode uint8) { gotOpcode = opcode }

	assert.Panics(t, func() { c.Step() })
	assert.Equal(t, uint8(0xD3), gotOpcode)
}
