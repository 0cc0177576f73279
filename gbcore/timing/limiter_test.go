package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetFPSMatchesKnownDMGRefreshRate(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.01)
}

func TestFrameDurationRoundTripsWithTargetFPS(t *testing.T) {
	expectedSeconds := 1.0 / TargetFPS()

	assert.InDelta(t, expectedSeconds, FrameDuration().Seconds(), 0.0001)
}

func TestNoOpLimiterNeverBlocks(t *testing.T) {
	l := NewNoOpLimiter()

	// Should return immediately; a blocking implementation would hang the test.
	l.WaitForNextFrame()
	l.Reset()
}

func TestTickerLimiterStopDoesNotPanic(t *testing.T) {
	l := NewTickerLimiter()
	defer l.Stop()

	l.Reset()
}
