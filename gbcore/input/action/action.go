// Package action enumerates the input actions a backend can trigger,
// independent of which physical key or button produced them.
package action

// Action identifies something the user can trigger, whether a Game Boy
// button or an emulator/host-level feature.
type Action int

const (
	// Game Boy hardware controls.
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator controls.
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorQuit

	// Audio debugging.
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	AudioSoloChannel1
	AudioSoloChannel2
	AudioSoloChannel3
	AudioSoloChannel4
)

// Category groups actions for routing purposes.
type Category int

const (
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryAudio
)

// Info carries metadata about an action, notably whether repeated Press
// events for it should be debounced.
type Info struct {
	Category    Category
	Debounce    bool
	Description string
}

var infoTable = map[Action]Info{
	GBButtonA:      {CategoryGameInput, false, "A button"},
	GBButtonB:      {CategoryGameInput, false, "B button"},
	GBButtonStart:  {CategoryGameInput, false, "Start button"},
	GBButtonSelect: {CategoryGameInput, false, "Select button"},
	GBDPadUp:       {CategoryGameInput, false, "D-Pad up"},
	GBDPadDown:     {CategoryGameInput, false, "D-Pad down"},
	GBDPadLeft:     {CategoryGameInput, false, "D-Pad left"},
	GBDPadRight:    {CategoryGameInput, false, "D-Pad right"},

	EmulatorPauseToggle: {CategoryEmulator, true, "Toggle pause"},
	EmulatorStepFrame:   {CategoryEmulator, true, "Step one instruction"},
	EmulatorQuit:        {CategoryEmulator, true, "Quit"},

	AudioToggleChannel1: {CategoryAudio, true, "Toggle audio channel 1"},
	AudioToggleChannel2: {CategoryAudio, true, "Toggle audio channel 2"},
	AudioToggleChannel3: {CategoryAudio, true, "Toggle audio channel 3"},
	AudioToggleChannel4: {CategoryAudio, true, "Toggle audio channel 4"},
	AudioSoloChannel1:   {CategoryAudio, true, "Solo audio channel 1"},
	AudioSoloChannel2:   {CategoryAudio, true, "Solo audio channel 2"},
	AudioSoloChannel3:   {CategoryAudio, true, "Solo audio channel 3"},
	AudioSoloChannel4:   {CategoryAudio, true, "Solo audio channel 4"},
}

// GetInfo returns metadata for a, falling back to a non-debounced
// emulator-category default for actions this table doesn't know about.
func GetInfo(a Action) Info {
	if info, ok := infoTable[a]; ok {
		return info
	}
	return Info{Category: CategoryEmulator, Debounce: false, Description: "unknown action"}
}
