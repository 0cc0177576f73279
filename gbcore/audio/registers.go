package audio

import (
	"github.com/arlowood/lr35902/gbcore/addr"
	"github.com/arlowood/lr35902/gbcore/bit"
)

// registers holds the raw NRxx bytes exactly as last written; channel
// state is derived from these by syncChannelsFromRegisters on every write.
type registers struct {
	nr10, nr11, nr12, nr13, nr14 uint8
	nr21, nr22, nr23, nr24       uint8
	nr30, nr31, nr32, nr33, nr34 uint8
	nr41, nr42, nr43, nr44       uint8
	nr50, nr51, nr52             uint8
}

func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.regs.nr10 | 0b1000_0000
	case addr.NR11:
		return a.regs.nr11 | 0b0011_1111
	case addr.NR12:
		return a.regs.nr12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.regs.nr14 | 0b1011_1111
	case addr.NR21:
		return a.regs.nr21 | 0b0011_1111
	case addr.NR22:
		return a.regs.nr22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.regs.nr24 | 0b1011_1111
	case addr.NR30:
		return a.regs.nr30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.regs.nr32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.regs.nr34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.regs.nr42
	case addr.NR43:
		return a.regs.nr43
	case addr.NR44:
		return a.regs.nr44 | 0b1011_1111
	case addr.NR50:
		return a.regs.nr50
	case addr.NR51:
		return a.regs.nr51
	case addr.NR52:
		status := uint8(0b0111_0000)
		if a.enabled {
			status = bit.Set(7, status)
		}
		for i := range a.ch {
			if a.ch[i].enabled {
				status = bit.Set(uint8(i), status)
			}
		}
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			return a.ch[2].waveSample
		}
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

func (a *APU) WriteRegister(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.regs.nr10 = value
	case addr.NR11:
		a.regs.nr11 = value
		a.ch[0].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR12:
		a.regs.nr12 = value
		resetEnvelope(&a.ch[0], bit.ExtractBits(value, 2, 0))
	case addr.NR13:
		a.regs.nr13 = value
	case addr.NR14:
		a.regs.nr14 = value
	case addr.NR21:
		a.regs.nr21 = value
		a.ch[1].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR22:
		a.regs.nr22 = value
		resetEnvelope(&a.ch[1], bit.ExtractBits(value, 2, 0))
	case addr.NR23:
		a.regs.nr23 = value
	case addr.NR24:
		a.regs.nr24 = value
	case addr.NR30:
		a.regs.nr30 = value
	case addr.NR31:
		a.regs.nr31 = value
		a.ch[2].length = 256 - uint16(value)
	case addr.NR32:
		a.regs.nr32 = value
	case addr.NR33:
		a.regs.nr33 = value
	case addr.NR34:
		a.regs.nr34 = value
	case addr.NR41:
		a.regs.nr41 = value
		a.ch[3].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR42:
		a.regs.nr42 = value
		resetEnvelope(&a.ch[3], bit.ExtractBits(value, 2, 0))
	case addr.NR43:
		a.regs.nr43 = value
	case addr.NR44:
		a.regs.nr44 = value
	case addr.NR50:
		a.regs.nr50 = value
	case addr.NR51:
		a.regs.nr51 = value
	case addr.NR52:
		a.regs.nr52 = value
	}

	if isWaveRAM {
		offset := address - addr.WaveRAMStart
		if a.waveRAMLocked() {
			a.waveRAM[a.ch[2].waveIndex>>1] = value
			a.ch[2].waveSample = value
		} else {
			a.waveRAM[offset] = value
		}
	}

	a.syncChannelsFromRegisters()
}

func resetEnvelope(c *channel, pace uint8) {
	if pace == 0 {
		c.envelopeCtr = 8
	} else {
		c.envelopeCtr = pace
	}
	c.envelopeDone = false
}

// syncChannelsFromRegisters rebuilds derived channel state from the raw
// NRxx bytes after every register write, including handling the
// write-to-trigger-bit convention shared by NR14/NR24/NR34/NR44.
func (a *APU) syncChannelsFromRegisters() {
	a.enabled = bit.IsSet(7, a.regs.nr52)
	if !a.enabled {
		a.regs = registers{nr52: a.regs.nr52}
		for i := range a.ch {
			a.ch[i].enabled = false
		}
	}

	for i := range a.ch {
		a.ch[i].right = bit.IsSet(uint8(i), a.regs.nr51)
		a.ch[i].left = bit.IsSet(uint8(i+4), a.regs.nr51)
	}

	a.vinLeft, a.vinRight = bit.IsSet(7, a.regs.nr50), bit.IsSet(3, a.regs.nr50)
	a.volLeft, a.volRight = bit.ExtractBits(a.regs.nr50, 6, 4), bit.ExtractBits(a.regs.nr50, 2, 0)

	a.syncSquare1()
	a.syncSquare2()
	a.syncWave()
	a.syncNoise()

	for i := range a.ch {
		if !a.ch[i].dacEnabled {
			a.ch[i].enabled = false
		}
	}
}

func (a *APU) syncSquare1() {
	c := &a.ch[0]
	prevSweepDown := c.sweepDown

	c.sweepPeriod = bit.ExtractBits(a.regs.nr10, 6, 4)
	c.sweepDown = bit.IsSet(3, a.regs.nr10)
	c.sweepShift = bit.ExtractBits(a.regs.nr10, 2, 0)
	if !c.sweepDown && prevSweepDown && c.sweepNegUsed && (c.sweepPeriod > 0 || c.sweepShift > 0) {
		c.enabled = false
	}

	c.duty = bit.ExtractBits(a.regs.nr11, 7, 6)
	c.volume = bit.ExtractBits(a.regs.nr12, 7, 4)
	c.envelopeUp = bit.IsSet(3, a.regs.nr12)
	c.envelopePace = bit.ExtractBits(a.regs.nr12, 2, 0)
	c.dacEnabled = c.volume > 0 || c.envelopeUp

	c.period = bit.Combine(a.regs.nr14&0b111, a.regs.nr13)

	prevLenEnable, lengthBefore := c.lengthEnable, c.length
	triggered := bit.IsSet(7, a.regs.nr14)
	c.lengthEnable = bit.IsSet(6, a.regs.nr14)

	if triggered {
		if c.dacEnabled {
			c.enabled = true
		}
		resetEnvelope(c, c.envelopePace)
		c.dutyStep = 0
		c.freqTimer = squarePeriodCycles(c.period)

		c.sweepEnabled = c.sweepPeriod > 0 || c.sweepShift > 0
		c.sweepTimer = c.sweepPeriod
		if c.sweepTimer == 0 {
			c.sweepTimer = 8
		}
		c.sweepShadow = c.period
		c.sweepNegUsed = false
		if c.sweepShift != 0 {
			if c.sweepDown {
				c.sweepNegUsed = true
			}
			if _, overflow := c.sweepTarget(); overflow {
				c.enabled = false
			}
		}

		a.regs.nr14 = bit.Reset(7, a.regs.nr14)
	}
	a.applyLengthTrigger(prevLenEnable, lengthBefore, triggered, 64, 0)
}

func (a *APU) syncSquare2() {
	c := &a.ch[1]
	c.duty = bit.ExtractBits(a.regs.nr21, 7, 6)
	c.volume = bit.ExtractBits(a.regs.nr22, 7, 4)
	c.envelopeUp = bit.IsSet(3, a.regs.nr22)
	c.envelopePace = bit.ExtractBits(a.regs.nr22, 2, 0)
	c.dacEnabled = c.volume > 0 || c.envelopeUp

	c.period = bit.Combine(a.regs.nr24&0b111, a.regs.nr23)

	prevLenEnable, lengthBefore := c.lengthEnable, c.length
	triggered := bit.IsSet(7, a.regs.nr24)
	c.lengthEnable = bit.IsSet(6, a.regs.nr24)

	if triggered {
		if c.dacEnabled {
			c.enabled = true
		}
		resetEnvelope(c, c.envelopePace)
		c.dutyStep = 0
		c.freqTimer = squarePeriodCycles(c.period)
		a.regs.nr24 = bit.Reset(7, a.regs.nr24)
	}
	a.applyLengthTrigger(prevLenEnable, lengthBefore, triggered, 64, 1)
}

func (a *APU) syncWave() {
	c := &a.ch[2]
	c.dacEnabled = bit.IsSet(7, a.regs.nr30)
	c.volume = bit.ExtractBits(a.regs.nr32, 6, 5)
	c.period = bit.Combine(a.regs.nr34&0b111, a.regs.nr33)

	prevLenEnable, lengthBefore := c.lengthEnable, c.length
	triggered := bit.IsSet(7, a.regs.nr34)
	c.lengthEnable = bit.IsSet(6, a.regs.nr34)

	if triggered {
		if c.dacEnabled {
			c.enabled = true
		}
		c.freqTimer = wavePeriodCycles(c.period)
		c.waveIndex = 0
		c.waveSample = a.waveRAM[0]
		a.regs.nr34 = bit.Reset(7, a.regs.nr34)
	}
	a.applyLengthTrigger(prevLenEnable, lengthBefore, triggered, 256, 2)
}

func (a *APU) syncNoise() {
	c := &a.ch[3]
	c.volume = bit.ExtractBits(a.regs.nr42, 7, 4)
	c.envelopeUp = bit.IsSet(3, a.regs.nr42)
	c.envelopePace = bit.ExtractBits(a.regs.nr42, 2, 0)
	c.dacEnabled = c.volume > 0 || c.envelopeUp

	c.noiseShift = bit.ExtractBits(a.regs.nr43, 7, 4)
	c.use7BitLFSR = bit.IsSet(3, a.regs.nr43)
	c.noiseDiv = bit.ExtractBits(a.regs.nr43, 2, 0)

	prevLenEnable, lengthBefore := c.lengthEnable, c.length
	triggered := bit.IsSet(7, a.regs.nr44)
	c.lengthEnable = bit.IsSet(6, a.regs.nr44)

	if triggered {
		if c.dacEnabled {
			c.enabled = true
		}
		resetEnvelope(c, c.envelopePace)
		c.lfsr = 0x7FFF
		c.noiseTimer = noisePeriodCycles(c.noiseShift, c.noiseDiv)
		a.regs.nr44 = bit.Reset(7, a.regs.nr44)
	}
	a.applyLengthTrigger(prevLenEnable, lengthBefore, triggered, 64, 3)
}

// applyLengthTrigger reproduces the DMG's documented obscure length-timer
// behavior around enabling the length counter and triggering a channel in
// the same write: https://gbdev.io/pandocs/Audio_details.html#obscure-behavior
func (a *APU) applyLengthTrigger(prevEnabled bool, lengthBefore uint16, triggered bool, maxLength uint16, idx int) {
	c := &a.ch[idx]
	lengthWasZero := lengthBefore == 0
	clockOnEnable := !prevEnabled && c.lengthEnable && a.sequencerStep%2 == 1 && lengthBefore > 0

	if triggered && (lengthWasZero || (clockOnEnable && lengthBefore == 1)) {
		c.length = maxLength
	}

	if !c.lengthEnable {
		return
	}

	forceClock := lengthWasZero && triggered && c.length > 0
	if !forceClock && prevEnabled {
		return
	}

	if a.sequencerStep%2 == 1 && c.length > 0 {
		c.length--
		if c.length == 0 {
			c.enabled = false
		}
	}
}
