//go:build !sdl2

// Package sdl2 implements a backend.Backend on top of go-sdl2. This file
// is the build without the real SDL2 library; build with -tags sdl2 on a
// machine that has the SDL2 development headers installed to get the
// real window.
package sdl2

import (
	"fmt"

	"github.com/arlowood/lr35902/gbcore/backend"
	"github.com/arlowood/lr35902/gbcore/input"
	"github.com/arlowood/lr35902/gbcore/video"
)

// Backend is a stand-in that reports SDL2 isn't available in this build.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	return fmt.Errorf("sdl2 backend not available, build with -tags sdl2")
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	return nil, fmt.Errorf("sdl2 backend not available")
}

func (s *Backend) Cleanup() error {
	return nil
}
