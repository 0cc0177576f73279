package gbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/memory"
)

func TestNewStartsAtPostBootPC(t *testing.T) {
	e := New()
	assert.Equal(t, uint16(0x0100), e.CPU().PC())
}

func TestStepExecutesOneNOPAndAdvancesPC(t *testing.T) {
	e := New()
	e.MMU().Write(0x0100, 0x00) // NOP

	cycles, frameReady := e.Step()

	assert.Equal(t, 4, cycles)
	assert.False(t, frameReady)
	assert.Equal(t, uint16(0x0101), e.CPU().PC())
	assert.Equal(t, uint64(1), e.InstructionCount())
}

func TestStepReportsFrameReadyOnVBlankEntry(t *testing.T) {
	e := New()
	for addr := uint16(0x0100); addr < 0x8000; addr++ {
		e.MMU().Write(addr, 0x00) // NOP
	}

	sawFrameReady := false
	for i := 0; i < cyclesPerFrame/4+10; i++ {
		_, frameReady := e.Step()
		if frameReady {
			sawFrameReady = true
			break
		}
	}

	assert.True(t, sawFrameReady)
	assert.Equal(t, uint64(1), e.FrameCount())
}

func TestRunUntilNextFrameExecutesFullFrameOfNOPs(t *testing.T) {
	e := New()
	for addr := uint16(0x0100); addr < 0x8000; addr++ {
		e.MMU().Write(addr, 0x00)
	}

	executed := e.RunUntilNextFrame()

	assert.Greater(t, executed, 0)
	assert.Equal(t, uint64(1), e.FrameCount())
}

func TestPauseStopsRunUntilNextFrame(t *testing.T) {
	e := New()
	e.Pause()

	executed := e.RunUntilNextFrame()

	assert.Equal(t, 0, executed)
	assert.Equal(t, DebuggerPaused, e.DebuggerState())
}

func TestStepInstructionRunsExactlyOneInstructionThenPauses(t *testing.T) {
	e := New()
	e.MMU().Write(0x0100, 0x00)
	e.StepInstruction()

	executed := e.RunUntilNextFrame()

	assert.Equal(t, 1, executed)
	assert.Equal(t, DebuggerPaused, e.DebuggerState())
	assert.Equal(t, uint16(0x0101), e.CPU().PC())
}

func TestResetWithoutBootROMReturnsToPostBootState(t *testing.T) {
	e := New()
	e.MMU().Write(0x0100, 0x00)
	e.Step()

	e.Reset()

	assert.Equal(t, uint16(0x0100), e.CPU().PC())
	assert.Equal(t, uint64(0), e.InstructionCount())
}

func TestResetWithActiveBootROMStaysAtZero(t *testing.T) {
	e := New()
	e.LoadBootROM(make([]uint8, 256))

	e.Reset()

	assert.Equal(t, uint16(0x0000), e.CPU().PC())
}

func TestPressAndReleaseButtonRoundTripsThroughJoypad(t *testing.T) {
	e := New()
	e.MMU().Write(0xFF00, 0x10) // select button keys (bit5=0, bit4=1)

	before := e.MMU().Read(0xFF00)
	e.PressButton(memory.JoypadA)
	after := e.MMU().Read(0xFF00)
	e.ReleaseButton(memory.JoypadA)

	assert.NotEqual(t, before, after)
}

func TestSaveRAMIsNilWithoutBatteryBackedCartridge(t *testing.T) {
	e := New()

	// NoMBC cartridges have no battery RAM.
	assert.Nil(t, e.SaveRAM())
}

func TestDrainAudioReturnsMonoSamples(t *testing.T) {
	e := New()
	for i := 0; i < cyclesPerFrame; i++ {
		e.MMU().Tick(1)
	}

	samples := e.DrainAudio(10)

	assert.Len(t, samples, 10)
}
