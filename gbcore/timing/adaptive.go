package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps for the bulk of each frame's budget and busy-waits
// the last couple milliseconds, with periodic drift correction against
// wall-clock time. Meant for long unattended runs where TickerLimiter's
// slow drift would otherwise accumulate into audible desync.
type AdaptiveLimiter struct {
	target       time.Duration
	nextFrame    time.Time
	frameCounter int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		target:    FrameDuration(),
		nextFrame: time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	remaining := a.nextFrame.Sub(now)

	switch {
	case remaining > 2*time.Millisecond:
		time.Sleep(remaining - time.Millisecond)
		for time.Now().Before(a.nextFrame) {
		}
	case remaining > 0:
		for time.Now().Before(a.nextFrame) {
		}
	case remaining < -5*time.Millisecond:
		// badly behind schedule (debugger pause, GC stall): resync instead
		// of trying to burn through a backlog of frames.
		a.nextFrame = now
	}

	a.nextFrame = a.nextFrame.Add(a.target)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		drift := time.Now().Sub(a.nextFrame)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrame = a.nextFrame.Add(drift / 10)
			slog.Debug("frame timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrame = time.Now()
	a.frameCounter = 0
}
