// Package timing provides host-side frame pacing: the core itself is
// driven purely by cycle counts, but something still has to decide how
// fast wall-clock time should advance those cycles for a live session.
package timing

import "time"

// DMG hardware frequencies.
const (
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// TargetFPS is the Game Boy's exact refresh rate, derived from the master
// clock rather than hardcoded to 59.7 to keep the two constants in sync.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration is the wall-clock budget for one frame at TargetFPS.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces RunUntilNextFrame calls against wall-clock time.
type Limiter interface {
	WaitForNextFrame()
	Reset()
}

// NewNoOpLimiter returns a Limiter that never blocks, for headless runs
// (test ROM harnesses, benchmarks) that want to run as fast as possible.
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// TickerLimiter paces frames with a time.Ticker: simple and good enough
// for a terminal/SDL2 frontend that isn't chasing sub-millisecond jitter.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() { <-t.ticker.C }

func (t *TickerLimiter) Reset() { t.ticker.Reset(FrameDuration()) }

func (t *TickerLimiter) Stop() { t.ticker.Stop() }
