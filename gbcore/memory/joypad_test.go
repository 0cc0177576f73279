package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypadUnpressedReadsAllOnes(t *testing.T) {
	j := NewJoypad()
	j.SetSelect(0x00) // select both groups
	assert.Equal(t, uint8(0xCF), j.Register())
}

func TestJoypadPressClearsBit(t *testing.T) {
	j := NewJoypad()
	j.SetSelect(0b0010_0000) // select d-pad (bit 4 clear)
	j.Press(JoypadRight)
	assert.False(t, j.Register()&0x01 != 0)
}

func TestJoypadPressReportsEdge(t *testing.T) {
	j := NewJoypad()
	j.SetSelect(0b0010_0000)
	assert.True(t, j.Press(JoypadRight))
	assert.False(t, j.Press(JoypadRight)) // already pressed, no new edge
}

func TestJoypadReleaseSetsBit(t *testing.T) {
	j := NewJoypad()
	j.SetSelect(0b0010_0000)
	j.Press(JoypadDown)
	j.Release(JoypadDown)
	assert.True(t, j.Register()&0x08 != 0)
}

func TestJoypadButtonsAndDpadAreIndependentGroups(t *testing.T) {
	j := NewJoypad()
	j.SetSelect(0b0001_0000) // select buttons only
	j.Press(JoypadUp)        // a d-pad key, should not affect button group
	assert.Equal(t, uint8(0x0F), j.Register()&0x0F)
}
