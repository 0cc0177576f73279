package memory

import "github.com/arlowood/lr35902/gbcore/bit"

// JoypadKey identifies one of the eight DMG input lines.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad tracks the live button/d-pad state and the P1 register's column
// selection. A 0 bit means pressed, matching the DMG's active-low wiring.
type Joypad struct {
	buttons uint8
	dpad    uint8
	select_ uint8 // bits 4-5 of P1, as last written
}

func NewJoypad() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Register computes the current P1 readback: bits 6-7 always read 1, bits
// 4-5 echo the selection, and bits 0-3 reflect whichever button group(s)
// are selected (ANDed together if both are).
func (j *Joypad) Register() uint8 {
	result := uint8(0b1100_0000) | (j.select_ & 0b0011_0000)

	selectDpad := !bit.IsSet(4, j.select_)
	selectButtons := !bit.IsSet(5, j.select_)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// SetSelect updates the selection bits written through P1.
func (j *Joypad) SetSelect(value uint8) {
	j.select_ = value & 0b0011_0000
}

// Press clears the bit for key and reports whether this was a 1->0
// transition, which is what the DMG treats as an edge worth an IRQ.
func (j *Joypad) Press(key JoypadKey) bool {
	before := j.Register()
	j.setLine(key, false)
	return bit.IsSet(keyBit(key), before) && !bit.IsSet(keyBit(key), j.Register())
}

// Release sets the bit for key.
func (j *Joypad) Release(key JoypadKey) {
	j.setLine(key, true)
}

func (j *Joypad) setLine(key JoypadKey, released bool) {
	idx := keyBit(key)
	if key <= JoypadDown {
		if released {
			j.dpad = bit.Set(idx, j.dpad)
		} else {
			j.dpad = bit.Reset(idx, j.dpad)
		}
		return
	}
	if released {
		j.buttons = bit.Set(idx, j.buttons)
	} else {
		j.buttons = bit.Reset(idx, j.buttons)
	}
}

func keyBit(key JoypadKey) uint8 {
	switch key {
	case JoypadRight, JoypadA:
		return 0
	case JoypadLeft, JoypadB:
		return 1
	case JoypadUp, JoypadSelect:
		return 2
	case JoypadDown, JoypadStart:
		return 3
	default:
		panic("memory: invalid joypad key")
	}
}
