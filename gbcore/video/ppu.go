// Package video implements the DMG's picture processing unit: the
// HBlank/VBlank/OAM-scan/pixel-transfer mode state machine, STAT/LYC
// interrupt generation, and background/window/sprite compositing into an
// RGBA framebuffer.
package video

import (
	"log/slog"

	"github.com/arlowood/lr35902/gbcore/addr"
	"github.com/arlowood/lr35902/gbcore/bit"
)

// Bus is the subset of the memory bus the PPU needs: register reads/
// writes, interrupt requests, and direct (mode-ungated) VRAM/OAM access.
// ReadVRAM/ReadOAM are separate from Read because the PPU is the owner of
// that memory during rendering: the CPU-facing Read path returns 0xFF for
// the same addresses while the PPU is using them (see MMU.Read), but the
// PPU's own scanline renderer always sees the real bytes. Keeping this
// narrow (as opposed to depending on the concrete bus type) lets the PPU
// be driven in tests by a flat byte array.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	RequestInterrupt(i addr.Interrupt)
	ReadVRAM(address uint16) uint8
	ReadOAM(address uint16) uint8
}

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode int

const (
	HBlankMode        Mode = 0
	VBlankMode        Mode = 1
	OAMScanMode       Mode = 2
	PixelTransferMode Mode = 3
)

const (
	oamScanCycles       = 80
	pixelTransferCycles = 172
	hblankCycles        = 204
	scanlineCycles      = oamScanCycles + pixelTransferCycles + hblankCycles

	vblankLineCount = 10
	totalLines      = 154
)

// PPU drives the mode state machine and renders each scanline once, on
// entering pixel-transfer mode, rather than pixel-by-pixel.
type PPU struct {
	bus Bus

	framebuffer *FrameBuffer
	bgPriority  []byte // per-pixel BG/window color index, for sprite priority
	spritePrio  spritePriority

	mode          Mode
	line          int
	cycles        int
	vblankCounter int
	vblankLine    int
	scanlineDrawn bool
	windowLine    int

	// imageReady pulses true for one Tick/Step cycle when a new frame
	// completes (Mode1 entry), per the image_ready flag in the PPU's data
	// model. ConsumeImageReady reads and clears it.
	imageReady bool
}

func NewPPU(bus Bus) *PPU {
	p := &PPU{
		bus:         bus,
		framebuffer: NewFrameBuffer(),
		bgPriority:  make([]byte, FramebufferSize),
		mode:        VBlankMode,
		line:        144,
	}
	slog.Debug("PPU initialized")
	return p
}

func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.framebuffer
}

// Mode returns the PPU's current rendering stage, for bus reads that must
// return 0xFF instead of live VRAM/OAM contents while the PPU owns them.
func (p *PPU) Mode() Mode {
	return p.mode
}

// ConsumeImageReady reports whether a frame completed since the last call,
// clearing the pulse. A frame completes when the PPU enters VBlank (Mode1).
func (p *PPU) ConsumeImageReady() bool {
	ready := p.imageReady
	p.imageReady = false
	return ready
}

// Tick advances the PPU state machine by cycles master cycles, firing
// VBlank/STAT interrupts on mode transitions and rendering each scanline
// once in full when pixel-transfer mode is entered.
func (p *PPU) Tick(cycles int) {
	p.cycles += cycles

	switch p.mode {
	case HBlankMode:
		if p.cycles < hblankCycles {
			return
		}
		p.cycles -= hblankCycles
		p.setLY(p.line + 1)

		if p.line == 144 {
			p.setMode(VBlankMode)
			p.vblankLine = 0
			p.vblankCounter = p.cycles
			p.windowLine = 0
			p.bus.RequestInterrupt(addr.VBlankInterrupt)
			if p.statIRQEnabled(statVblankIrq) {
				p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		} else {
			p.setMode(OAMScanMode)
			if p.statIRQEnabled(statOamIrq) {
				p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}

	case VBlankMode:
		p.vblankCounter += cycles
		if p.vblankCounter >= scanlineCycles {
			p.vblankCounter -= scanlineCycles
			p.vblankLine++
			if p.vblankLine <= vblankLineCount-1 {
				p.setLY(p.line + 1)
			}
		}

		if p.cycles >= 4104 && p.vblankCounter >= 4 && p.line == totalLines-1 {
			p.setLY(0)
		}

		if p.cycles >= 4560 {
			p.cycles -= 4560
			p.setMode(OAMScanMode)
			if p.statIRQEnabled(statOamIrq) {
				p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}

	case OAMScanMode:
		if p.cycles >= oamScanCycles {
			p.cycles -= oamScanCycles
			p.setMode(PixelTransferMode)
			p.scanlineDrawn = false
		}

	case PixelTransferMode:
		if !p.scanlineDrawn {
			p.drawScanline()
			p.scanlineDrawn = true
		}

		if p.cycles >= pixelTransferCycles {
			p.cycles -= pixelTransferCycles
			p.setMode(HBlankMode)
			if p.statIRQEnabled(statHblankIrq) {
				p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	}
}

func (p *PPU) lcdEnabled() bool {
	return p.lcdcBit(lcdDisplayEnable)
}

func (p *PPU) drawScanline() {
	if !p.lcdEnabled() {
		rowStart := p.line * FramebufferWidth
		for i := 0; i < FramebufferWidth; i++ {
			p.framebuffer.buffer[rowStart+i] = uint32(WhiteColor)
		}
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}

func (p *PPU) drawBackground() {
	rowStart := p.line * FramebufferWidth

	if !p.lcdcBit(bgDisplay) {
		palette := p.bus.Read(addr.BGP)
		color := uint32(ByteToColor(palette & 0x03))
		for i := 0; i < FramebufferWidth; i++ {
			p.framebuffer.buffer[rowStart+i] = color
			p.bgPriority[rowStart+i] = 0
		}
		return
	}

	signedTiles := !p.lcdcBit(bgWindowTileData)
	tileMap := addr.TileMap1
	if !p.lcdcBit(bgTileMap) {
		tileMap = addr.TileMap0
	}
	tileData := addr.TileData0
	if signedTiles {
		tileData = addr.TileData2
	}

	scx := p.bus.Read(addr.SCX)
	scy := p.bus.Read(addr.SCY)
	lineY := (p.line + int(scy)) & 0xFF
	tileRow32 := (lineY / 8) * 32
	pixelY2 := (lineY % 8) * 2

	for x := 0; x < FramebufferWidth; x++ {
		mapX := (x + int(scx)) & 0xFF
		tileX := mapX / 8
		tileXOffset := mapX % 8

		tileIndex := p.bus.ReadVRAM(tileMap + uint16(tileRow32+tileX))
		tileAddr := tileAddress(tileData, tileIndex, signedTiles, uint16(pixelY2))

		low := p.bus.ReadVRAM(tileAddr)
		high := p.bus.ReadVRAM(tileAddr + 1)
		pixel := pixelColorIndex(low, high, uint8(7-tileXOffset))

		palette := p.bus.Read(addr.BGP)
		color := uint32(ByteToColor(paletteShade(palette, pixel)))

		pos := rowStart + x
		p.framebuffer.buffer[pos] = color
		p.bgPriority[pos] = pixel
	}
}

func (p *PPU) drawWindow() {
	if p.windowLine > 143 || !p.lcdcBit(windowDisplayEnable) {
		return
	}

	wx := int(p.bus.Read(addr.WX)) - 7
	wy := p.bus.Read(addr.WY)
	if wx > 159 || wy > 143 || int(wy) > p.line {
		return
	}

	signedTiles := !p.lcdcBit(bgWindowTileData)
	tileMap := addr.TileMap1
	if !p.lcdcBit(windowTileMap) {
		tileMap = addr.TileMap0
	}
	tileData := addr.TileData0
	if signedTiles {
		tileData = addr.TileData2
	}

	tileRow32 := (p.windowLine / 8) * 32
	pixelY2 := uint16((p.windowLine % 8) * 2)
	rowStart := p.line * FramebufferWidth

	endTileX := (FramebufferWidth - wx + 7) / 8
	if endTileX > 32 {
		endTileX = 32
	}

	for tx := 0; tx < endTileX; tx++ {
		tileIndex := p.bus.ReadVRAM(tileMap + uint16(tileRow32+tx))
		tileAddr := tileAddress(tileData, tileIndex, signedTiles, pixelY2)
		low := p.bus.ReadVRAM(tileAddr)
		high := p.bus.ReadVRAM(tileAddr + 1)

		for px := 0; px < 8; px++ {
			bufferX := tx*8 + px + wx
			if bufferX < wx || bufferX >= FramebufferWidth {
				continue
			}

			pixel := pixelColorIndex(low, high, uint8(7-px))
			palette := p.bus.Read(addr.BGP)
			color := uint32(ByteToColor(paletteShade(palette, pixel)))

			pos := rowStart + bufferX
			p.framebuffer.buffer[pos] = color
			p.bgPriority[pos] = pixel
		}
	}

	p.windowLine++
}

func (p *PPU) drawSprites() {
	if !p.lcdcBit(spriteDisplayEnable) {
		return
	}

	spriteHeight := 8
	if p.lcdcBit(spriteSize) {
		spriteHeight = 16
	}

	var visible []int
	for sprite := 0; sprite < 40; sprite++ {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(p.bus.ReadOAM(oamAddr)) - 16
		if spriteY > p.line || spriteY+spriteHeight <= p.line {
			continue
		}
		visible = append(visible, sprite)
		if len(visible) >= 10 {
			break
		}
	}

	p.spritePrio.clear()
	for _, sprite := range visible {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteX := int(p.bus.ReadOAM(oamAddr+1)) - 8
		for px := 0; px < 8; px++ {
			p.spritePrio.tryClaim(spriteX+px, sprite, spriteX)
		}
	}

	rowStart := p.line * FramebufferWidth

	for _, sprite := range visible {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(p.bus.ReadOAM(oamAddr)) - 16
		spriteX := int(p.bus.ReadOAM(oamAddr+1)) - 8
		tileNum := p.bus.ReadOAM(oamAddr + 2)
		flags := p.bus.ReadOAM(oamAddr + 3)

		owns := false
		for x := 0; x < 8; x++ {
			if p.spritePrio.owner(spriteX+x) == sprite {
				owns = true
				break
			}
		}
		if !owns {
			continue
		}

		tileMask := uint8(0xFF)
		if spriteHeight == 16 {
			tileMask = 0xFE
		}
		paletteAddr := addr.OBP0
		if bit.IsSet(4, flags) {
			paletteAddr = addr.OBP1
		}
		flipX := bit.IsSet(5, flags)
		flipY := bit.IsSet(6, flags)
		aboveBG := !bit.IsSet(7, flags)

		pixelY := p.line - spriteY
		if flipY {
			pixelY = spriteHeight - 1 - pixelY
		}

		var pixelY2 int
		tileIndex := int(tileNum&tileMask) * 16
		if spriteHeight == 16 && pixelY >= 8 {
			pixelY2 = (pixelY - 8) * 2
			tileIndex += 16
		} else {
			pixelY2 = pixelY * 2
		}

		tileAddr := addr.TileData0 + uint16(tileIndex+pixelY2)
		low := p.bus.ReadVRAM(tileAddr)
		high := p.bus.ReadVRAM(tileAddr + 1)

		for px := 0; px < 8; px++ {
			bufferX := spriteX + px
			if p.spritePrio.owner(bufferX) != sprite {
				continue
			}

			bitIdx := uint8(7 - px)
			if flipX {
				bitIdx = uint8(px)
			}
			pixel := pixelColorIndex(low, high, bitIdx)
			if pixel == 0 {
				continue
			}

			pos := rowStart + bufferX
			if !aboveBG && p.bgPriority[pos] != 0 {
				continue
			}

			palette := p.bus.Read(paletteAddr)
			color := uint32(ByteToColor(paletteShade(palette, pixel)))
			p.framebuffer.buffer[pos] = color
		}
	}
}

// tileAddress computes the VRAM address of a tile row, handling the
// BG/window tile-data area's signed (0x9000-based) vs unsigned
// (0x8000-based) addressing mode.
func tileAddress(base uint16, tileIndex uint8, signed bool, rowOffset uint16) uint16 {
	if signed {
		return uint16(int(base) + int(int8(tileIndex))*16 + int(rowOffset))
	}
	return base + uint16(tileIndex)*16 + rowOffset
}

func pixelColorIndex(low, high uint8, bitIndex uint8) uint8 {
	pixel := uint8(0)
	if bit.IsSet(bitIndex, low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, high) {
		pixel |= 2
	}
	return pixel
}

func paletteShade(palette, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}

// statFlag identifies one of the interrupt-enable bits in the STAT
// register.
type statFlag = uint8

const (
	statLycIrq   statFlag = 6
	statOamIrq   statFlag = 5
	statVblankIrq statFlag = 4
	statHblankIrq statFlag = 3
	statLycEqual statFlag = 2
)

// lcdcFlag identifies one of the feature-enable bits in the LCDC register.
type lcdcFlag = uint8

const (
	lcdDisplayEnable    lcdcFlag = 7
	windowTileMap       lcdcFlag = 6
	windowDisplayEnable lcdcFlag = 5
	bgWindowTileData    lcdcFlag = 4
	bgTileMap           lcdcFlag = 3
	spriteSize          lcdcFlag = 2
	spriteDisplayEnable lcdcFlag = 1
	bgDisplay           lcdcFlag = 0
)

func (p *PPU) lcdcBit(flag lcdcFlag) bool {
	return bit.IsSet(flag, p.bus.Read(addr.LCDC))
}

func (p *PPU) statIRQEnabled(flag statFlag) bool {
	return bit.IsSet(flag, p.bus.Read(addr.STAT))
}

func (p *PPU) compareLYToLYC() {
	ly := p.bus.Read(addr.LY)
	lyc := p.bus.Read(addr.LYC)
	stat := p.bus.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLycEqual, stat)
		if bit.IsSet(statLycIrq, stat) {
			p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLycEqual, stat)
	}

	p.bus.Write(addr.STAT, stat)
}

func (p *PPU) setMode(mode Mode) {
	if mode == VBlankMode && p.mode != VBlankMode {
		p.imageReady = true
	}
	p.mode = mode
	stat := p.bus.Read(addr.STAT)
	stat = (stat &^ 0x03) | uint8(mode)
	p.bus.Write(addr.STAT, stat)
}

func (p *PPU) setLY(line int) {
	p.line = line
	p.bus.Write(addr.LY, uint8(p.line))
	p.compareLYToLYC()
}
