//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/arlowood/lr35902/gbcore/audio"
	"github.com/arlowood/lr35902/gbcore/backend"
	"github.com/arlowood/lr35902/gbcore/input"
	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
	"github.com/arlowood/lr35902/gbcore/video"
)

const (
	pixelScale       = 3
	windowWidth      = video.FramebufferWidth * pixelScale
	windowHeight     = video.FramebufferHeight * pixelScale
	bytesPerPixel    = 4
	audioSampleCount = 1024
)

// Backend renders with an SDL2 window and, when an audio.Provider is
// configured, plays rendered samples through an SDL2 audio device.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	running       bool
	config        backend.Config
	audioProvider audio.Provider
	audioDevice   sdl.AudioDeviceID

	pixelBuffer []byte
	eventBuffer []input.Event
}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	s.config = config
	s.audioProvider = config.AudioProvider

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("sdl2: init: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		windowWidth, windowHeight,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2: create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create texture: %w", err)
	}
	s.texture = texture

	s.pixelBuffer = make([]byte, video.FramebufferWidth*video.FramebufferHeight*bytesPerPixel)
	s.eventBuffer = make([]input.Event, 0, 10)
	s.running = true

	if s.audioProvider != nil {
		if err := s.initAudio(); err != nil {
			slog.Warn("sdl2: audio init failed", "error", err)
		}
	}

	slog.Info("sdl2 backend initialized", "title", config.Title)
	return nil
}

func (s *Backend) initAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     44100,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  audioSampleCount,
	}
	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	s.audioDevice = device
	sdl.PauseAudioDevice(device, false)
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	s.eventBuffer = s.eventBuffer[:0]

	for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
		s.eventBuffer = append(s.eventBuffer, s.handleEvent(evt)...)
	}

	if !s.running {
		return s.eventBuffer, nil
	}

	s.renderFrame(frame)

	if s.audioDevice != 0 && s.audioProvider != nil {
		s.queueAudio()
	}

	return s.eventBuffer, nil
}

func (s *Backend) Cleanup() error {
	slog.Info("sdl2 backend shutting down")
	if s.audioDevice != 0 {
		sdl.CloseAudioDevice(s.audioDevice)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) handleEvent(evt sdl.Event) []input.Event {
	switch e := evt.(type) {
	case *sdl.QuitEvent:
		s.running = false
		return []input.Event{{Action: action.EmulatorQuit, Type: event.Press}}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			return s.handleKeyDown(e.Keysym.Sym, e.Repeat)
		}
		if e.Type == sdl.KEYUP {
			return s.handleKeyUp(e.Keysym.Sym)
		}
	}
	return nil
}

var keyMapping = map[sdl.Keycode]action.Action{
	sdl.K_ESCAPE: action.EmulatorQuit,
	sdl.K_SPACE:  action.EmulatorPauseToggle,
	sdl.K_o:      action.EmulatorStepFrame,

	sdl.K_F1: action.AudioToggleChannel1,
	sdl.K_F2: action.AudioToggleChannel2,
	sdl.K_F3: action.AudioToggleChannel3,
	sdl.K_F4: action.AudioToggleChannel4,
	sdl.K_1:  action.AudioSoloChannel1,
	sdl.K_2:  action.AudioSoloChannel2,
	sdl.K_3:  action.AudioSoloChannel3,
	sdl.K_4:  action.AudioSoloChannel4,

	sdl.K_RETURN: action.GBButtonStart,
	sdl.K_z:      action.GBButtonA,
	sdl.K_x:      action.GBButtonB,
	sdl.K_RSHIFT: action.GBButtonSelect,
	sdl.K_UP:     action.GBDPadUp,
	sdl.K_DOWN:   action.GBDPadDown,
	sdl.K_LEFT:   action.GBDPadLeft,
	sdl.K_RIGHT:  action.GBDPadRight,
}

func (s *Backend) handleKeyDown(key sdl.Keycode, repeat uint8) []input.Event {
	act, ok := keyMapping[key]
	if !ok {
		return nil
	}
	if repeat == 0 {
		return []input.Event{{Action: act, Type: event.Press}}
	}
	return []input.Event{{Action: act, Type: event.Hold}}
}

func (s *Backend) handleKeyUp(key sdl.Keycode) []input.Event {
	act, ok := keyMapping[key]
	if !ok {
		return nil
	}
	switch act {
	case action.GBButtonA, action.GBButtonB, action.GBButtonStart, action.GBButtonSelect,
		action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight:
		return []input.Event{{Action: act, Type: event.Release}}
	}
	return nil
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for i, gbPixel := range pixels {
		r, g, b, a := gbColorToRGBA(gbPixel)
		dst := i * bytesPerPixel
		s.pixelBuffer[dst] = a
		s.pixelBuffer[dst+1] = b
		s.pixelBuffer[dst+2] = g
		s.pixelBuffer[dst+3] = r
	}

	s.texture.Update(nil, unsafe.Pointer(&s.pixelBuffer[0]), video.FramebufferWidth*bytesPerPixel)
	s.renderer.SetDrawColor(0, 0, 0, 255)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func gbColorToRGBA(c uint32) (r, g, b, a uint8) {
	switch video.GBColor(c) {
	case video.WhiteColor:
		return 0xFF, 0xFF, 0xFF, 0xFF
	case video.LightGreyColor:
		return 0x98, 0x98, 0x98, 0xFF
	case video.DarkGreyColor:
		return 0x4C, 0x4C, 0x4C, 0xFF
	default:
		return 0, 0, 0, 0xFF
	}
}

func (s *Backend) queueAudio() {
	samples := s.audioProvider.GetSamples(audioSampleCount)
	if len(samples) == 0 {
		return
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	if err := sdl.QueueAudio(s.audioDevice, buf); err != nil {
		slog.Warn("sdl2: queue audio failed", "error", err)
	}
}
