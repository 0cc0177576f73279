// Package input turns backend-reported key events into Game Boy joypad
// edges and emulator-level actions, debouncing the ones that shouldn't
// repeat every frame a key is held.
package input

import (
	"time"

	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
)

// Event is a single action/type pair reported by a backend.
type Event struct {
	Action action.Action
	Type   event.Type
}

// debounceDelay is the minimum spacing between repeated Press/Release
// events for an action whose action.Info marks it debounced.
const debounceDelay = 300 * time.Millisecond

// Handler filters rapid repeats of debounced actions.
type Handler struct {
	lastTriggered map[action.Action]time.Time
}

func NewHandler() *Handler {
	return &Handler{lastTriggered: make(map[action.Action]time.Time)}
}

// ProcessEvent reports whether evt should be acted on, or was suppressed
// as a too-rapid repeat of a debounced action.
func (h *Handler) ProcessEvent(evt Event) bool {
	if evt.Type == event.Hold || !action.GetInfo(evt.Action).Debounce {
		return true
	}
	if evt.Type != event.Press && evt.Type != event.Release {
		return true
	}

	now := time.Now()
	if last, ok := h.lastTriggered[evt.Action]; ok && now.Sub(last) < debounceDelay {
		return false
	}
	h.lastTriggered[evt.Action] = now
	return true
}
