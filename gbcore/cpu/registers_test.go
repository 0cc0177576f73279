package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairGettersSetters(t *testing.T) {
	c, _ := newTestCPU()

	c.setBC(0x1234)
	assert.Equal(t, uint16(0x1234), c.getBC())
	assert.Equal(t, uint8(0x12), c.b)
	assert.Equal(t, uint8(0x34), c.c)

	c.setDE(0xABCD)
	assert.Equal(t, uint16(0xABCD), c.getDE())

	c.setHL(0x0102)
	assert.Equal(t, uint16(0x0102), c.getHL())
}

func TestAFLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU()

	c.setAF(0x12FF)

	assert.Equal(t, uint8(0x12), c.a)
	assert.Equal(t, uint8(0xF0), c.f, "low nibble of F must read as zero")
	assert.Equal(t, uint16(0x12F0), c.getAF())
}

func TestSetFlagToMasksLowNibble(t *testing.T) {
	c, _ := newTestCPU()

	c.setFlagTo(flagZ, true)
	c.setFlagTo(flagC, true)

	assert.Equal(t, uint8(0x90), c.f)
	assert.True(t, c.getFlag(flagZ))
	assert.True(t, c.getFlag(flagC))
	assert.False(t, c.getFlag(flagN))
	assert.False(t, c.getFlag(flagH))
}

func TestRegHLIndGoesThroughBus(t *testing.T) {
	c, bus := newTestCPU()
	c.setHL(0x8000)

	c.setReg8(regHLInd, 0x55)
	assert.Equal(t, uint8(0x55), bus.mem[0x8000])
	assert.Equal(t, uint8(0x55), c.getReg8(regHLInd))
}

func TestConditionCodes(t *testing.T) {
	c, _ := newTestCPU()

	c.setFlagTo(flagZ, true)
	c.setFlagTo(flagC, false)

	assert.False(t, c.condition(0)) // NZ
	assert.True(t, c.condition(1))  // Z
	assert.True(t, c.condition(2))  // NC
	assert.False(t, c.condition(3)) // C
}
