// Package backend defines the interface a host frontend (terminal, SDL2
// window) implements to drive the emulator loop: pull rendered frames,
// push input events.
package backend

import (
	"github.com/arlowood/lr35902/gbcore/audio"
	"github.com/arlowood/lr35902/gbcore/input"
	"github.com/arlowood/lr35902/gbcore/video"
)

// Config configures a Backend at Init time.
type Config struct {
	Title      string
	Scale      int
	Fullscreen bool

	// AudioProvider, when set, lets a backend capable of audio output
	// (currently only sdl2) pull rendered samples each Update.
	AudioProvider audio.Provider
}

// Backend is a complete host platform: it renders frames and reports the
// input events it collected while doing so.
type Backend interface {
	// Init prepares the backend for Update calls.
	Init(config Config) error

	// Update renders frame and returns any input events collected since
	// the previous call.
	Update(frame *video.FrameBuffer) ([]input.Event, error)

	// Cleanup releases any resources the backend holds.
	Cleanup() error
}
