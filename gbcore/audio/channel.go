package audio

// channel holds the live state of one of the four APU voices. Not every
// field applies to every channel; see the per-channel register-mapping
// comments in registers.go for which fields a given channel actually uses.
type channel struct {
	enabled    bool
	dacEnabled bool
	muted      bool // debug-only mute, independent of enabled/dacEnabled

	left, right bool // panning, from NR51

	duty   uint8
	length uint16 // counts down; channel disables itself at zero if lengthEnable is set

	volume       uint8
	envelopeUp   bool
	envelopePace uint8
	envelopeCtr  uint8
	envelopeDone bool

	// channel 1 sweep
	sweepPeriod  uint8
	sweepDown    bool
	sweepShift   uint8
	sweepEnabled bool
	sweepTimer   uint8
	sweepShadow  uint16
	sweepNegUsed bool

	period       uint16
	lengthEnable bool
	freqTimer    int
	dutyStep     uint8

	// channel 3 wave
	waveIndex  uint8
	waveSample uint8

	// channel 4 noise
	lfsr        uint16
	use7BitLFSR bool
	noiseShift  uint8
	noiseDiv    uint8
	noiseTimer  int
}

// sweepTarget computes the frequency sweep's next period and whether that
// calculation overflows past the 11-bit period range, per the DMG's
// documented (quirky) sweep unit.
func (c *channel) sweepTarget() (next uint16, overflow bool) {
	delta := c.sweepShadow >> c.sweepShift
	if c.sweepDown {
		if delta > c.sweepShadow {
			return 0, false
		}
		next = c.sweepShadow - delta
	} else {
		next = c.sweepShadow + delta
	}
	return next, next > 2047
}

var dutyPatterns = [4][8]int64{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var noiseDividers = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func squarePeriodCycles(period uint16) int {
	p := 2048 - int(period&0x7FF)
	if p <= 0 {
		return 0
	}
	return p * 4
}

func wavePeriodCycles(period uint16) int {
	p := 2048 - int(period&0x7FF)
	if p <= 0 {
		return 0
	}
	return p * 2
}

func noisePeriodCycles(shift, div uint8) int {
	period := noiseDividers[div&0x7] << shift
	if period <= 0 {
		return 0
	}
	return period
}

func (a *APU) stepSquare(c *channel, cycles int) int64 {
	period := squarePeriodCycles(c.period)
	if period == 0 {
		return 0
	}
	if c.freqTimer <= 0 {
		c.freqTimer = period
	}
	c.freqTimer -= cycles
	for c.freqTimer <= 0 {
		c.freqTimer += period
		c.dutyStep = (c.dutyStep + 1) & 0x7
	}

	if c.volume == 0 {
		return 0
	}
	level := int64(c.volume)
	if dutyPatterns[c.duty&0x3][c.dutyStep] == 0 {
		return -level
	}
	return level
}

func (a *APU) stepWave(c *channel, cycles int) int64 {
	period := wavePeriodCycles(c.period)
	if period == 0 {
		return 0
	}
	if c.freqTimer <= 0 {
		c.freqTimer = period
	}
	c.freqTimer -= cycles
	for c.freqTimer <= 0 {
		c.freqTimer += period
		c.waveIndex = (c.waveIndex + 1) & 0x1F
	}

	sample := int64(a.readWaveSample(c.waveIndex)) - 8
	switch c.volume & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

func (a *APU) stepNoise(c *channel, cycles int) int64 {
	period := noisePeriodCycles(c.noiseShift, c.noiseDiv)
	if period == 0 {
		return 0
	}
	if c.lfsr == 0 {
		c.lfsr = 0x7FFF
	}
	if c.noiseTimer <= 0 {
		c.noiseTimer = period
	}
	c.noiseTimer -= cycles
	for c.noiseTimer <= 0 {
		c.noiseTimer += period
		feedback := (c.lfsr & 1) ^ ((c.lfsr >> 1) & 1)
		c.lfsr = (c.lfsr >> 1) | (feedback << 14)
		if c.use7BitLFSR {
			c.lfsr = (c.lfsr &^ (1 << 6)) | (feedback << 6)
		}
	}

	if c.volume == 0 {
		return 0
	}
	level := int64(c.volume)
	if c.lfsr&1 != 0 {
		return -level
	}
	return level
}
