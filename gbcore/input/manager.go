package input

import (
	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
	"github.com/arlowood/lr35902/gbcore/memory"
)

// Joypad is the subset of memory.Joypad the Manager drives.
type Joypad interface {
	Press(key memory.JoypadKey) bool
	Release(key memory.JoypadKey)
}

// Manager routes debounced Events either straight to the joypad (for
// Game Boy buttons) or to registered callbacks (for everything else).
type Manager struct {
	handler  *Handler
	joypad   Joypad
	handlers map[action.Action]map[event.Type][]func()
}

func NewManager(joypad Joypad) *Manager {
	return &Manager{
		handler:  NewHandler(),
		joypad:   joypad,
		handlers: make(map[action.Action]map[event.Type][]func()),
	}
}

// On registers a callback for a given action/event-type pair.
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Dispatch processes evt: debounces it, then either presses/releases the
// joypad (for Game Boy buttons) or invokes any registered callbacks.
func (m *Manager) Dispatch(evt Event) {
	if !m.handler.ProcessEvent(evt) {
		return
	}

	if key, ok := joypadKeyFor(evt.Action); ok {
		switch evt.Type {
		case event.Press:
			m.joypad.Press(key)
		case event.Release:
			m.joypad.Release(key)
		}
		return
	}

	for _, callback := range m.handlers[evt.Action][evt.Type] {
		callback()
	}
}

func joypadKeyFor(act action.Action) (memory.JoypadKey, bool) {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}
