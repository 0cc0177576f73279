// Package memory implements the DMG address space: the cartridge and its
// bank controller, work/video RAM, the timer, joypad and OAM DMA, with the
// serial and audio registers routed out to their own packages and the
// remaining I/O registers kept as plain bytes on the bus.
package memory

import (
	"log/slog"

	"github.com/arlowood/lr35902/gbcore/addr"
	"github.com/arlowood/lr35902/gbcore/bit"
	"github.com/arlowood/lr35902/gbcore/video"
)

// PPUPort is the subset of the video package's PPU the bus needs to gate
// VRAM/OAM reads by rendering mode.
type PPUPort interface {
	Mode() video.Mode
}

// AudioPort is the subset of the audio package's APU the bus needs.
type AudioPort interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	Tick(cycles int)
}

// SerialPort is the subset of the serial package's Port the bus needs.
type SerialPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
}

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEchoRAM
	regionOAM
	regionUnusable
	regionIO
)

// MMU is the DMG memory bus: every CPU read/write and PPU VRAM/OAM access
// passes through it, dispatched by the high byte of the address into one
// of a handful of regions.
type MMU struct {
	cartridge *Cartridge
	mbc       MBC

	vram [0x2000]uint8
	wram [0x2000]uint8
	oam  [0xA0]uint8
	hram [0x7F]uint8
	io   [0x80]uint8

	timer   *Timer
	joypad  *Joypad
	serial  SerialPort
	audio   AudioPort
	ppu     PPUPort
	ifReg   uint8
	ieReg   uint8
	bootROM []uint8
	bootOff bool

	regionMap [256]memRegion
}

// New returns an MMU with no cartridge loaded, suitable for boot-ROM-only
// or unit-test use.
func New() *MMU {
	m := &MMU{
		cartridge: NewCartridge(),
		mbc:       NewNoMBC(make([]uint8, 0x8000)),
		timer:     &Timer{},
		joypad:    NewJoypad(),
	}
	m.initRegionMap()
	m.timer.InterruptHandler = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	return m
}

// NewWithCartridge constructs the MBC implied by cart's header and returns
// a bus backed by it.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cartridge = cart
	m.mbc = newMBCFor(cart)
	return m
}

func newMBCFor(cart *Cartridge) MBC {
	switch cart.mbcType {
	case MBC1Type, MBC1MultiType:
		return NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	case MBC2Type:
		return NewMBC2(cart.data, cart.hasBattery)
	case MBC3Type:
		return NewMBC3(cart.data, cart.hasBattery, cart.hasRTC, cart.ramBankCount)
	case MBC5Type:
		return NewMBC5(cart.data, cart.hasBattery, cart.hasRumble, cart.ramBankCount)
	default:
		return NewNoMBC(cart.data)
	}
}

// SetSerial installs the serial device the SB/SC registers route to.
func (m *MMU) SetSerial(port SerialPort) {
	m.serial = port
}

// SetAudio installs the APU the NRxx/wave-RAM registers route to.
func (m *MMU) SetAudio(port AudioPort) {
	m.audio = port
}

// SetPPU installs the PPU whose current mode gates VRAM/OAM reads. Writes
// are never gated: the reference implementation this bus is modeled on
// accepts VRAM/OAM writes unconditionally regardless of mode.
func (m *MMU) SetPPU(ppu PPUPort) {
	m.ppu = ppu
}

// SetBootROM installs a 256-byte boot ROM that overlays 0x0000-0x00FF
// until the game writes to addr.BootROMDisable.
func (m *MMU) SetBootROM(data []uint8) {
	m.bootROM = data
	m.bootOff = false
}

func (m *MMU) initRegionMap() {
	for i := 0; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEchoRAM
	}
	for i := 0xFE; i <= 0xFE; i++ {
		m.regionMap[i] = regionOAM
	}
	m.regionMap[0xFF] = regionIO
}

// Tick advances the timer, serial port and APU by cycles master cycles.
// The PPU is ticked separately by the owning emulator, since it needs to
// run even when the bus itself has nothing to do.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	if m.audio != nil {
		m.audio.Tick(cycles)
	}
}

// RequestInterrupt sets the IF bit for i.
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	if pos, ok := addr.BitPosition(i); ok {
		m.ifReg = bit.Set(pos, m.ifReg)
	}
}

// ReadBit reports whether the given bit of the byte at address is set.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// SetTimerSeed seeds the internal DIV counter, used to fast-forward past
// boot-ROM timing without actually executing it.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// BatteryRAM returns the cartridge's external RAM for persistence, and
// whether it is battery-backed and worth saving.
func (m *MMU) BatteryRAM() ([]uint8, bool) {
	return m.mbc.BatteryRAM()
}

// LoadBatteryRAM restores previously saved external RAM into the
// cartridge's MBC.
func (m *MMU) LoadBatteryRAM(data []uint8) {
	m.mbc.LoadBatteryRAM(data)
}

// BootROMActive reports whether reads below the boot ROM's length are
// still being overlaid, i.e. addr.BootROMDisable hasn't been written yet.
func (m *MMU) BootROMActive() bool {
	return m.bootROM != nil && !m.bootOff
}

// BootROM returns the currently installed boot ROM image, or nil if none
// was set via SetBootROM.
func (m *MMU) BootROM() []uint8 {
	return m.bootROM
}

// ReadVRAM returns the raw byte at a VRAM address, bypassing the Mode3
// gating applied to Read: this is what the PPU itself uses to render,
// since the PPU is the thing whose access the gating is modeling.
func (m *MMU) ReadVRAM(address uint16) uint8 {
	return m.vram[address-0x8000]
}

// ReadOAM returns the raw byte at an OAM address, bypassing the Mode2/3
// gating applied to Read, for the same reason as ReadVRAM.
func (m *MMU) ReadOAM(address uint16) uint8 {
	if address <= addr.OAMEnd {
		return m.oam[address-addr.OAMStart]
	}
	return 0xFF
}

// ppuMode reports the installed PPU's current mode, or HBlankMode (which
// gates nothing) if no PPU has been wired via SetPPU, so bus-only tests
// and boot-ROM-only setups see unconditional VRAM/OAM access.
func (m *MMU) ppuMode() video.Mode {
	if m.ppu == nil {
		return video.HBlankMode
	}
	return m.ppu.Mode()
}

// HandleKeyPress presses key, firing the joypad interrupt on a 1->0 edge.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.Press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// HandleKeyRelease releases key.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}

func (m *MMU) Read(address uint16) uint8 {
	if !m.bootOff && m.bootROM != nil && address < uint16(len(m.bootROM)) {
		return m.bootROM[address]
	}

	switch m.regionMap[address>>8] {
	case regionROM:
		return m.mbc.Read(address)
	case regionVRAM:
		if m.ppuMode() == video.PixelTransferMode {
			return 0xFF
		}
		return m.vram[address-0x8000]
	case regionExtRAM:
		return m.mbc.Read(address)
	case regionWRAM:
		return m.wram[address-0xC000]
	case regionEchoRAM:
		return m.wram[address-0xE000]
	case regionOAM:
		if address <= addr.OAMEnd {
			if mode := m.ppuMode(); mode == video.OAMScanMode || mode == video.PixelTransferMode {
				return 0xFF
			}
			return m.oam[address-addr.OAMStart]
		}
		return 0xFF
	case regionIO:
		return m.readIO(address)
	default:
		return 0xFF
	}
}

func (m *MMU) Write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM:
		m.mbc.Write(address, value)
	case regionVRAM:
		m.vram[address-0x8000] = value
	case regionExtRAM:
		m.mbc.Write(address, value)
	case regionWRAM:
		m.wram[address-0xC000] = value
	case regionEchoRAM:
		m.wram[address-0xE000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.oam[address-addr.OAMStart] = value
		}
	case regionIO:
		m.writeIO(address, value)
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return m.joypad.Register()
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			return m.serial.Read(address)
		}
		return 0xFF
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.ifReg | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.audio != nil {
			return m.audio.ReadRegister(address)
		}
		return 0xFF
	case address == addr.IE:
		return m.ieReg
	case address >= 0xFF80 && address <= 0xFFFE:
		return m.hram[address-0xFF80]
	default:
		return m.io[address-0xFF00]
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		m.joypad.SetSelect(value)
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
		}
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.ifReg = value & 0x1F
	case address == addr.DMA:
		m.doOAMDMA(value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.audio != nil {
			m.audio.WriteRegister(address, value)
		}
	case address == addr.BootROMDisable:
		m.bootOff = true
	case address == addr.IE:
		m.ieReg = value
	case address >= 0xFF80 && address <= 0xFFFE:
		m.hram[address-0xFF80] = value
	default:
		m.io[address-0xFF00] = value
	}
}

// doOAMDMA performs the 160-byte OAM DMA transfer triggered by a write to
// addr.DMA. Source is source*0x100, destination is always OAM. Real
// hardware also locks bus access to everything but HRAM for the 160
// M-cycles this takes; that restriction is not modeled here: the copy
// completes at once and the bus stays fully accessible.
func (m *MMU) doOAMDMA(source uint8) {
	base := uint16(source) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.oam[i] = m.Read(base + i)
	}
	slog.Debug("OAM DMA", "source", base)
}
