// Package audio implements the DMG's four-channel APU: two pulse
// generators (one with frequency sweep), a programmable wave channel, and
// a pseudo-random noise channel, mixed down to 44.1kHz mono PCM.
package audio

// Provider is what a host frontend pulls rendered audio from.
type Provider interface {
	// GetSamples returns count mono int16 samples.
	GetSamples(count int) []int16

	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var _ Provider = (*APU)(nil)

const (
	// frameSequencerPeriod is the CPU-cycle interval between 512Hz frame
	// sequencer ticks: 4194304 Hz / 512 Hz.
	frameSequencerPeriod = 8192

	waveRAMSize = 16

	hostSampleRate = 44100
)
