package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/addr"
)

func TestTimerDIVIncrementsWithSystemCounter(t *testing.T) {
	tm := &Timer{}
	tm.Tick(256)
	assert.Equal(t, uint8(1), tm.Read(addr.DIV))
}

func TestTimerDIVWriteResets(t *testing.T) {
	tm := &Timer{}
	tm.Tick(512)
	tm.Write(addr.DIV, 0xFF)
	assert.Equal(t, uint8(0), tm.Read(addr.DIV))
}

func TestTimerTIMAIncrementsOnFallingEdge(t *testing.T) {
	tm := &Timer{}
	tm.Write(addr.TAC, 0x05) // enabled, clock select 1 -> bit 3

	tm.Tick(16) // one full period of bit 3 toggling high then low
	assert.Equal(t, uint8(1), tm.Read(addr.TIMA))
}

func TestTimerOverflowReloadsFromTMAAfterDelay(t *testing.T) {
	fired := 0
	tm := &Timer{InterruptHandler: func() { fired++ }}
	tm.Write(addr.TMA, 0x10)
	tm.Write(addr.TAC, 0x05)

	// bit 3 falls once every 16 cycles: 255 edges drive TIMA to 0xFF, one
	// more overflows it, and the reload and interrupt follow 4 cycles later
	for i := 0; i < 256; i++ {
		tm.Tick(16)
	}
	tm.Tick(4)

	assert.Equal(t, uint8(0x10), tm.Read(addr.TIMA))
	assert.Equal(t, 1, fired)
}

func TestTimerDisabledViaTACBit2(t *testing.T) {
	tm := &Timer{}
	tm.Write(addr.TAC, 0x01) // clock select set but enable bit clear
	tm.Tick(1000)
	assert.Equal(t, uint8(0), tm.Read(addr.TIMA))
}

func TestTimerTACReadMasksUnusedBits(t *testing.T) {
	tm := &Timer{}
	tm.Write(addr.TAC, 0x07)
	assert.Equal(t, uint8(0xFF), tm.Read(addr.TAC))
}
