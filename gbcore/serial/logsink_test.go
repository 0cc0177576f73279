package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/addr"
)

func TestImmediateTransferFiresInterruptAndResetsSB(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81) // start bit + internal clock

	assert.True(t, irqFired)
	assert.Equal(t, uint8(0xFF), s.Read(addr.SB))
	assert.Equal(t, uint8(0), s.Read(addr.SC)&0x80)
}

func TestFixedTimingTransferCompletesAfterCountdown(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true }, WithFixedTiming())

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81)

	assert.False(t, irqFired)

	s.Tick(4096)

	assert.True(t, irqFired)
}

func TestExternalClockTransferNeverCompletes(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x80) // start bit set, internal-clock bit clear

	assert.False(t, irqFired)
}

func TestResetClearsTransferState(t *testing.T) {
	s := NewLogSink(func() {}, WithFixedTiming())
	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81)

	s.Reset()

	assert.Equal(t, uint8(0x00), s.Read(addr.SB))
	assert.Equal(t, uint8(0x00), s.Read(addr.SC))
}
