package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelToShadeMapsAllFourDMGColors(t *testing.T) {
	assert.Equal(t, 0, PixelToShade(0x000000FF))
	assert.Equal(t, 1, PixelToShade(0x4C4C4CFF))
	assert.Equal(t, 2, PixelToShade(0x989898FF))
	assert.Equal(t, 3, PixelToShade(0xFFFFFFFF))
}

func TestPixelToShadeUnknownValueDefaultsToBlack(t *testing.T) {
	assert.Equal(t, 0, PixelToShade(0x12345678))
}

func TestGetHalfBlockCharSameShadeIsFullBlock(t *testing.T) {
	assert.Equal(t, '█', GetHalfBlockChar(2, 2))
}

func TestGetHalfBlockCharWhiteOnTopIsLowerHalf(t *testing.T) {
	assert.Equal(t, '▄', GetHalfBlockChar(3, 0))
}

func TestGetHalfBlockCharWhiteOnBottomIsUpperHalf(t *testing.T) {
	assert.Equal(t, '▀', GetHalfBlockChar(0, 3))
}
