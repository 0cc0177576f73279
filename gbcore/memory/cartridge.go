package memory

import (
	"strings"
	"unicode"
)

const titleLength = 16

// Cartridge header field offsets, per the standard DMG ROM header layout.
const (
	entryPointAddress    = 0x100
	titleAddress         = 0x134
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
)

// MBCType identifies which memory bank controller chip, if any, a
// cartridge's header declares.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC1MultiType
	MBC2Type
	MBC3Type
	MBC5Type
	MBCUnknownType
)

// ramBankCounts maps the header's RAM size byte to a bank count (8KB banks).
var ramBankCounts = map[uint8]uint8{
	0x00: 0,
	0x01: 1, // unofficial, some tooling reports 2KB this way; treated as one bank
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Cartridge wraps a loaded ROM image together with the header fields the
// bus needs to pick and configure the right MBC.
type Cartridge struct {
	data []byte

	title        string
	mbcType      MBCType
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	ramBankCount uint8
}

// NewCartridge returns an empty cartridge, useful for running the core with
// no ROM loaded (e.g. boot-ROM-only smoke tests).
func NewCartridge() *Cartridge {
	return &Cartridge{data: make([]byte, 0x8000)}
}

// NewCartridgeWithData parses a ROM image's header and returns the
// resulting Cartridge. The caller is responsible for validating the image
// is at least large enough to contain a header (0x150 bytes).
func NewCartridgeWithData(bytes []byte) *Cartridge {
	cart := &Cartridge{
		data:  make([]byte, len(bytes)),
		title: cleanGameboyTitle(bytes[titleAddress : titleAddress+titleLength]),
	}
	copy(cart.data, bytes)

	cart.mbcType, cart.hasBattery, cart.hasRTC, cart.hasRumble = decodeCartridgeType(bytes[cartridgeTypeAddress])
	cart.ramBankCount = ramBankCounts[bytes[ramSizeAddress]]

	return cart
}

// Title returns the cleaned-up game title stored in the cartridge header.
func (c *Cartridge) Title() string { return c.title }

// decodeCartridgeType maps the header's cartridge-type byte to an MBC kind
// plus the battery/RTC/rumble extras that byte implies.
// Reference: https://gbdev.io/pandocs/The_Cartridge_Header.html#0147--cartridge-type
func decodeCartridgeType(b uint8) (mbc MBCType, battery, rtc, rumble bool) {
	switch b {
	case 0x00:
		return NoMBCType, false, false, false
	case 0x01:
		return MBC1Type, false, false, false
	case 0x02:
		return MBC1Type, false, false, false
	case 0x03:
		return MBC1Type, true, false, false
	case 0x05:
		return MBC2Type, false, false, false
	case 0x06:
		return MBC2Type, true, false, false
	case 0x0F:
		return MBC3Type, true, true, false
	case 0x10:
		return MBC3Type, true, true, false
	case 0x11:
		return MBC3Type, false, false, false
	case 0x12:
		return MBC3Type, false, false, false
	case 0x13:
		return MBC3Type, true, false, false
	case 0x19:
		return MBC5Type, false, false, false
	case 0x1A:
		return MBC5Type, false, false, false
	case 0x1B:
		return MBC5Type, true, false, false
	case 0x1C:
		return MBC5Type, false, false, true
	case 0x1D:
		return MBC5Type, false, false, true
	case 0x1E:
		return MBC5Type, true, false, true
	default:
		return MBCUnknownType, false, false, false
	}
}

// cleanGameboyTitle converts the raw, NUL-padded title field into a
// printable string.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}
