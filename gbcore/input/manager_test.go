package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
	"github.com/arlowood/lr35902/gbcore/memory"
)

func TestManagerDispatchesGameBoyButtonsToJoypad(t *testing.T) {
	j := memory.NewJoypad()
	m := NewManager(j)

	m.Dispatch(Event{Action: action.GBButtonA, Type: event.Press})
	before := j.Register()
	m.Dispatch(Event{Action: action.GBButtonA, Type: event.Release})
	after := j.Register()
	assert.NotEqual(t, before, after)
}

func TestManagerInvokesCallbackForNonGameBoyAction(t *testing.T) {
	j := memory.NewJoypad()
	m := NewManager(j)

	called := false
	m.On(action.EmulatorQuit, event.Press, func() { called = true })
	m.Dispatch(Event{Action: action.EmulatorQuit, Type: event.Press})

	assert.True(t, called)
}
