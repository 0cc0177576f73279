// Package terminal implements a backend.Backend that renders frames to
// any ANSI terminal using half-block glyphs, two Game Boy pixel rows per
// character cell, and reads keys through tcell.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/arlowood/lr35902/gbcore/backend"
	"github.com/arlowood/lr35902/gbcore/backend/terminal/render"
	"github.com/arlowood/lr35902/gbcore/input"
	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
	"github.com/arlowood/lr35902/gbcore/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// keyTimeout is how long a key stays "active" after its last reported
	// press, long enough to bridge the gap between a terminal's own key
	// repeat events.
	keyTimeout = 100 * time.Millisecond

	minTermWidth  = width
	minTermHeight = height/2 + 2
)

// Backend renders to the controlling terminal via tcell.
type Backend struct {
	screen  tcell.Screen
	running bool
	config  backend.Config

	eventQueue []input.Event

	keyStates  map[action.Action]time.Time
	activeKeys map[action.Action]bool
}

func New() *Backend {
	return &Backend{}
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}

	t.screen = screen
	t.running = true

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	slog.Info("terminal backend initialized", "title", config.Title)
	return nil
}

func (t *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	var events []input.Event
	now := time.Now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	currentlyActive := make(map[action.Action]bool)
	for act, lastPressed := range t.keyStates {
		if action.GetInfo(act).Category != action.CategoryGameInput {
			continue
		}
		if now.Sub(lastPressed) < keyTimeout {
			currentlyActive[act] = true
			if !t.activeKeys[act] {
				events = append(events, input.Event{Action: act, Type: event.Press})
			} else {
				events = append(events, input.Event{Action: act, Type: event.Hold})
			}
		} else {
			delete(t.keyStates, act)
		}
	}
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			events = append(events, input.Event{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	if len(t.eventQueue) > 0 {
		events = append(events, t.eventQueue...)
		t.eventQueue = nil
	}

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("terminal backend shutting down")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	<-signals
	t.running = false
	t.eventQueue = append(t.eventQueue, input.Event{Action: action.EmulatorQuit, Type: event.Press})
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if act, ok := keyMapping[ev.Key()]; ok {
		t.trackAction(act, now)
		return
	}
	if ev.Key() == tcell.KeyRune {
		if act, ok := runeMapping[ev.Rune()]; ok {
			t.trackAction(act, now)
		}
	}
}

func (t *Backend) trackAction(act action.Action, now time.Time) {
	info := action.GetInfo(act)
	if info.Category != action.CategoryGameInput {
		t.eventQueue = append(t.eventQueue, input.Event{Action: act, Type: event.Press})
		return
	}

	if isDPad(act) {
		delete(t.keyStates, action.GBDPadUp)
		delete(t.keyStates, action.GBDPadDown)
		delete(t.keyStates, action.GBDPadLeft)
		delete(t.keyStates, action.GBDPadRight)
	}
	t.keyStates[act] = now
}

func isDPad(act action.Action) bool {
	return act == action.GBDPadUp || act == action.GBDPadDown ||
		act == action.GBDPadLeft || act == action.GBDPadRight
}

var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF3:     "F3",
	tcell.KeyF4:     "F4",
}

var tcellRuneNameMap = map[rune]string{
	'z': "z", 'x': "x",
	'w': "w", 's': "s", 'a': "a", 'd': "d",
	'p': "p", 'o': "o", 'q': "q",
	' ': "Space",
	'1': "1", '2': "2", '3': "3", '4': "4",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, name := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for r, name := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[r] = act
		}
	}
	return mapping
}

var keyMapping = buildKeyMapping()
var runeMapping = buildRuneMapping()

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			if i < termWidth {
				t.screen.SetContent(i, termHeight/2, ch, nil, style)
			}
		}
		return
	}

	t.drawGameBoy(frame)
}

func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			topPixel := pixels[y*width+x]
			bottomPixel := uint32(0xFFFFFFFF)
			if y+1 < height {
				bottomPixel = pixels[(y+1)*width+x]
			}

			topShade := render.PixelToShade(topPixel)
			bottomShade := render.PixelToShade(bottomPixel)
			char, fg, bg := halfBlockStyle(topShade, bottomShade)

			t.screen.SetContent(x, y/2, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func halfBlockStyle(topShade, bottomShade int) (rune, tcell.Color, tcell.Color) {
	shadeColors := []tcell.Color{
		tcell.ColorBlack,
		tcell.ColorGray,
		tcell.ColorSilver,
		tcell.ColorWhite,
	}
	topColor := shadeColors[topShade]
	bottomColor := shadeColors[bottomShade]
	char := render.GetHalfBlockChar(topShade, bottomShade)

	switch {
	case topShade == bottomShade:
		return char, topColor, tcell.ColorDefault
	case topShade == 3 && bottomShade != 3:
		return char, bottomColor, topColor
	default:
		return char, topColor, bottomColor
	}
}
