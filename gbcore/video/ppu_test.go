package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/addr"
)

type fakeBus struct {
	mem        [0x10000]uint8
	interrupts uint8
}

func (b *fakeBus) Read(address uint16) uint8         { return b.mem[address] }
func (b *fakeBus) Write(address uint16, value uint8) { b.mem[address] = value }
func (b *fakeBus) RequestInterrupt(i addr.Interrupt) {
	if pos, ok := addr.BitPosition(i); ok {
		b.interrupts |= 1 << pos
	}
}
func (b *fakeBus) ReadVRAM(address uint16) uint8 { return b.mem[address] }
func (b *fakeBus) ReadOAM(address uint16) uint8  { return b.mem[address] }

func newTestPPU() (*PPU, *fakeBus) {
	bus := &fakeBus{}
	bus.mem[addr.LCDC] = 0x91 // LCD on, BG on, tile data at 0x8000, BG map at 0x9800
	p := NewPPU(bus)
	p.line = 0
	p.mode = OAMScanMode
	return p, bus
}

func TestPPUOAMScanTransitionsToPixelTransfer(t *testing.T) {
	p, _ := newTestPPU()
	p.Tick(oamScanCycles)
	assert.Equal(t, PixelTransferMode, p.mode)
}

func TestPPUPixelTransferRendersAndTransitionsToHBlank(t *testing.T) {
	p, _ := newTestPPU()
	p.Tick(oamScanCycles)
	p.Tick(pixelTransferCycles)
	assert.Equal(t, HBlankMode, p.mode)
	assert.True(t, p.scanlineDrawn)
}

func TestPPUHBlankAdvancesLineAndReturnsToOAMScan(t *testing.T) {
	p, bus := newTestPPU()
	p.Tick(oamScanCycles)
	p.Tick(pixelTransferCycles)
	p.Tick(hblankCycles)

	assert.Equal(t, 1, p.line)
	assert.Equal(t, OAMScanMode, p.mode)
	assert.Equal(t, uint8(1), bus.mem[addr.LY])
}

func TestPPUEntersVBlankAfterLine143AndFiresInterrupt(t *testing.T) {
	p, bus := newTestPPU()
	for line := 0; line < 144; line++ {
		p.Tick(oamScanCycles)
		p.Tick(pixelTransferCycles)
		p.Tick(hblankCycles)
	}

	assert.Equal(t, VBlankMode, p.mode)
	assert.NotEqual(t, uint8(0), bus.interrupts&uint8(addr.VBlankInterrupt))
}

func TestPPUModeReflectsCurrentStage(t *testing.T) {
	p, _ := newTestPPU()

	assert.Equal(t, OAMScanMode, p.Mode())

	p.Tick(oamScanCycles)
	assert.Equal(t, PixelTransferMode, p.Mode())
}

func TestConsumeImageReadyPulsesOnceOnVBlankEntryThenClears(t *testing.T) {
	p, _ := newTestPPU()
	for line := 0; line < 144; line++ {
		p.Tick(oamScanCycles)
		p.Tick(pixelTransferCycles)
		p.Tick(hblankCycles)
	}

	assert.True(t, p.ConsumeImageReady())
	assert.False(t, p.ConsumeImageReady())
}

func TestConsumeImageReadyStaysFalseOutsideVBlankEntry(t *testing.T) {
	p, _ := newTestPPU()

	p.Tick(oamScanCycles)
	p.Tick(pixelTransferCycles)

	assert.False(t, p.ConsumeImageReady())
}

func TestPPUSetModeWritesSTATBits(t *testing.T) {
	p, bus := newTestPPU()
	bus.mem[addr.STAT] = 0xFC
	p.setMode(PixelTransferMode)
	assert.Equal(t, uint8(0xFF), bus.mem[addr.STAT])
}

func TestPPULYCMatchSetsCoincidenceFlagAndFiresSTATIRQ(t *testing.T) {
	p, bus := newTestPPU()
	bus.mem[addr.LYC] = 5
	bus.mem[addr.STAT] = 1 << statLycIrq
	p.setLY(5)

	assert.NotEqual(t, uint8(0), bus.mem[addr.STAT]&(1<<statLycEqual))
	assert.NotEqual(t, uint8(0), bus.interrupts&uint8(addr.LCDSTATInterrupt))
}

func TestPPUBackgroundDisabledFillsColorZero(t *testing.T) {
	p, bus := newTestPPU()
	bus.mem[addr.LCDC] = 0x80 // LCD on, BG off
	bus.mem[addr.BGP] = 0x03  // color 0 maps to palette entry 3 (white, per ByteToColor(3))
	p.drawScanline()

	assert.Equal(t, uint32(WhiteColor), p.framebuffer.buffer[0])
}

func TestPPUDrawBackgroundReadsTileData(t *testing.T) {
	p, bus := newTestPPU()
	// tile 0 at 0x8000, row 0: low=0xFF, high=0x00 -> color index 1 everywhere
	bus.mem[0x8000] = 0xFF
	bus.mem[0x8001] = 0x00
	bus.mem[addr.BGP] = 0xE4 // standard identity-ish palette: 3,2,1,0 packed

	p.drawScanline()

	// color index 1 -> (0xE4 >> 2) & 0x03 == 1 -> DarkGreyColor
	assert.Equal(t, uint32(DarkGreyColor), p.framebuffer.buffer[0])
}

func TestSpritePriorityLowerXWins(t *testing.T) {
	var sp spritePriority
	sp.clear()
	sp.tryClaim(5, 0, 5)
	sp.tryClaim(5, 1, 10)
	assert.Equal(t, 0, sp.owner(5))
}

func TestSpritePriorityTieBrokenByOAMIndex(t *testing.T) {
	var sp spritePriority
	sp.clear()
	sp.tryClaim(5, 3, 10)
	sp.tryClaim(5, 1, 10)
	assert.Equal(t, 1, sp.owner(5))
}
