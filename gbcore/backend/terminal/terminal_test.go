package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
)

func newTestBackend() *Backend {
	return &Backend{
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
	}
}

func TestIsDPadIdentifiesAllFourDirections(t *testing.T) {
	assert.True(t, isDPad(action.GBDPadUp))
	assert.True(t, isDPad(action.GBDPadDown))
	assert.True(t, isDPad(action.GBDPadLeft))
	assert.True(t, isDPad(action.GBDPadRight))
	assert.False(t, isDPad(action.GBButtonA))
}

func TestTrackActionGameInputRecordsKeyState(t *testing.T) {
	b := newTestBackend()
	now := time.Now()

	b.trackAction(action.GBButtonA, now)

	assert.Equal(t, now, b.keyStates[action.GBButtonA])
	assert.Empty(t, b.eventQueue)
}

func TestTrackActionDPadClearsOtherDirections(t *testing.T) {
	b := newTestBackend()
	t0 := time.Now()
	b.trackAction(action.GBDPadUp, t0)

	t1 := t0.Add(10 * time.Millisecond)
	b.trackAction(action.GBDPadRight, t1)

	_, stillUp := b.keyStates[action.GBDPadUp]
	assert.False(t, stillUp)
	assert.Equal(t, t1, b.keyStates[action.GBDPadRight])
}

func TestTrackActionNonGameInputQueuesPressImmediately(t *testing.T) {
	b := newTestBackend()

	b.trackAction(action.EmulatorQuit, time.Now())

	assert.Len(t, b.eventQueue, 1)
	assert.Equal(t, event.Press, b.eventQueue[0].Type)
	assert.Equal(t, action.EmulatorQuit, b.eventQueue[0].Action)
	assert.Empty(t, b.keyStates)
}

func TestHalfBlockStyleSameShadeUsesDefaultBackground(t *testing.T) {
	ch, fg, bg := halfBlockStyle(2, 2)

	assert.Equal(t, '█', ch)
	assert.Equal(t, tcell.ColorSilver, fg)
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestHalfBlockStyleWhiteTopSwapsForegroundAndBackground(t *testing.T) {
	ch, fg, bg := halfBlockStyle(3, 0)

	assert.Equal(t, '▄', ch)
	assert.Equal(t, tcell.ColorBlack, fg)
	assert.Equal(t, tcell.ColorWhite, bg)
}
