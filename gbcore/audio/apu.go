package audio

import "github.com/arlowood/lr35902/gbcore/timing"

// APU is the Audio Processing Unit: a collection of per-channel counters
// driven by Tick, whose output is mixed down to mono and downsampled into
// a PCM ring buffer for GetSamples to drain.
type APU struct {
	enabled bool
	ch      [4]channel

	vinLeft, vinRight bool
	volLeft, volRight uint8

	mixLeftAcc, mixRightAcc int64
	mixAccumCycles          int
	pcmBuffer               []int16
	pcmCursor               int
	pcmCycleAcc             float64
	pcmCyclesPerSample      float64

	sequencerStep int
	cycles        int

	regs    registers
	waveRAM [waveRAMSize]uint8
}

func New() *APU {
	a := &APU{}
	a.pcmCyclesPerSample = float64(timing.CPUFrequency) / float64(hostSampleRate)
	return a
}

// Tick advances every channel and the frame sequencer by cycles master
// cycles, accumulating mixed PCM samples along the way.
func (a *APU) Tick(cycles int) {
	if !a.enabled {
		return
	}

	a.tickChannels(cycles)

	a.cycles += cycles
	for a.cycles >= frameSequencerPeriod {
		a.cycles -= frameSequencerPeriod
		a.tickSequencer()
	}
}

func (a *APU) tickChannels(cycles int) {
	if cycles <= 0 {
		return
	}

	var left, right int64
	for i := range a.ch {
		c := &a.ch[i]
		if !c.enabled || !c.dacEnabled || c.muted {
			continue
		}

		var level int64
		switch i {
		case 0, 1:
			level = a.stepSquare(c, cycles)
		case 2:
			level = a.stepWave(c, cycles)
		case 3:
			level = a.stepNoise(c, cycles)
		}
		if level == 0 {
			continue
		}
		if c.left {
			left += level
		}
		if c.right {
			right += level
		}
	}

	a.mixLeftAcc += left * int64(cycles)
	a.mixRightAcc += right * int64(cycles)
	a.mixAccumCycles += cycles
	a.flushMix(cycles)
}

func (a *APU) flushMix(cycles int) {
	if a.pcmCyclesPerSample == 0 {
		return
	}
	a.pcmCycleAcc += float64(cycles)
	if a.pcmCycleAcc < a.pcmCyclesPerSample {
		return
	}
	a.pcmCycleAcc -= a.pcmCyclesPerSample

	a.pcmBuffer = append(a.pcmBuffer, a.exportMixedSample())
}

const pcmFullScale = 32767.0 / 15.0

// exportMixedSample averages the left/right (NR50/NR51 panning) mix
// accumulators into the single mono sample the host-facing API promises:
// panning still affects which channels contribute and at what master
// volume, but the two resulting buses are folded down to one DAC output
// rather than exposed as a stereo pair.
func (a *APU) exportMixedSample() int16 {
	if a.mixAccumCycles == 0 {
		return 0
	}
	leftAvg := float64(a.mixLeftAcc) / float64(a.mixAccumCycles)
	rightAvg := float64(a.mixRightAcc) / float64(a.mixAccumCycles)

	a.mixLeftAcc, a.mixRightAcc, a.mixAccumCycles = 0, 0, 0

	left := scaleToPCM(leftAvg, a.volLeft)
	right := scaleToPCM(rightAvg, a.volRight)
	return int16((int32(left) + int32(right)) / 2)
}

func scaleToPCM(avg float64, masterVol uint8) int16 {
	gain := float64(masterVol+1) / 8.0
	value := avg * gain * pcmFullScale
	switch {
	case value > 32767:
		return 32767
	case value < -32768:
		return -32768
	default:
		return int16(value)
	}
}

func (a *APU) readWaveSample(index uint8) uint8 {
	value := a.waveRAM[index>>1]
	a.ch[2].waveSample = value
	if index&1 == 0 {
		return value >> 4
	}
	return value & 0x0F
}

func (a *APU) waveRAMLocked() bool {
	return a.enabled && a.ch[2].enabled && a.ch[2].dacEnabled
}

// tickSequencer advances the 512Hz frame sequencer by one step. Length
// clocks at 256Hz (every other step), sweep at 128Hz (every fourth step),
// envelope at 64Hz (once per full cycle).
func (a *APU) tickSequencer() {
	switch a.sequencerStep {
	case 0, 4:
		a.tickLength()
	case 2, 6:
		a.tickLength()
		a.tickSweep()
	case 7:
		a.tickEnvelope()
	}
	a.sequencerStep = (a.sequencerStep + 1) % 8
}

func (a *APU) tickLength() {
	for i := range a.ch {
		c := &a.ch[i]
		if c.lengthEnable && c.length > 0 {
			c.length--
			if c.length == 0 {
				c.enabled = false
			}
		}
	}
}

func (a *APU) tickSweep() {
	c := &a.ch[0]
	if !c.sweepEnabled {
		return
	}

	c.sweepTimer--
	if c.sweepTimer > 0 {
		return
	}
	c.sweepTimer = c.sweepPeriod
	if c.sweepTimer == 0 {
		c.sweepTimer = 8
	}
	if c.sweepPeriod == 0 {
		return
	}

	next, overflow := c.sweepTarget()
	if overflow {
		c.enabled = false
		return
	}
	if c.sweepDown {
		c.sweepNegUsed = true
	}
	if c.sweepShift == 0 {
		return
	}

	c.sweepShadow = next
	c.period = next
	a.regs.nr14 = (a.regs.nr14 & 0b1111_1000) | uint8((next>>8)&0b111)
	a.regs.nr13 = uint8(next)

	if _, overflow := c.sweepTarget(); overflow {
		c.enabled = false
	}
}

func (a *APU) tickEnvelope() {
	for _, idx := range [3]int{0, 1, 3} {
		c := &a.ch[idx]
		if !c.dacEnabled || c.envelopeDone {
			continue
		}

		pace := c.envelopePace
		if pace == 0 {
			pace = 8
		}
		if c.envelopeCtr == 0 {
			c.envelopeCtr = pace
		}
		c.envelopeCtr--
		if c.envelopeCtr > 0 {
			continue
		}

		if c.envelopeUp {
			if c.volume < 15 {
				c.volume++
				c.envelopeCtr = pace
			} else {
				c.envelopeDone = true
			}
		} else {
			if c.volume > 0 {
				c.volume--
				c.envelopeCtr = pace
			} else {
				c.envelopeDone = true
			}
		}
	}
}

// GetSamples returns up to count mono PCM samples, zero-padding if the
// buffer has run dry (e.g. the APU is powered off).
func (a *APU) GetSamples(count int) []int16 {
	if count <= 0 {
		return nil
	}
	needed := count
	out := make([]int16, needed)

	available := len(a.pcmBuffer) - a.pcmCursor
	if available > 0 {
		n := min(available, needed)
		copy(out, a.pcmBuffer[a.pcmCursor:a.pcmCursor+n])
		a.pcmCursor += n
	}

	if a.pcmCursor >= len(a.pcmBuffer) {
		a.pcmBuffer = a.pcmBuffer[:0]
		a.pcmCursor = 0
	}

	return out
}

func (a *APU) ToggleChannel(idx int) {
	if idx < 0 || idx >= 4 {
		return
	}
	a.ch[idx].muted = !a.ch[idx].muted
}

func (a *APU) SoloChannel(idx int) {
	if idx < 0 || idx >= 4 {
		return
	}
	if !a.ch[idx].muted {
		for i := range a.ch {
			a.ch[i].muted = false
		}
	}
	for i := range a.ch {
		a.ch[i].muted = i != idx
	}
}

func (a *APU) GetChannelStatus() (ch1, ch2, ch3, ch4 bool) {
	return a.ch[0].enabled, a.ch[1].enabled, a.ch[2].enabled, a.ch[3].enabled
}
