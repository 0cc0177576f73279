// Command gbcore runs the DMG core against a ROM file, either interactively
// (terminal or SDL2 window) or headlessly for scripted test-ROM runs and
// throughput benchmarking.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/arlowood/lr35902/gbcore"
	"github.com/arlowood/lr35902/gbcore/backend"
	"github.com/arlowood/lr35902/gbcore/backend/sdl2"
	"github.com/arlowood/lr35902/gbcore/backend/terminal"
	"github.com/arlowood/lr35902/gbcore/input"
	"github.com/arlowood/lr35902/gbcore/input/action"
	"github.com/arlowood/lr35902/gbcore/input/event"
	"github.com/arlowood/lr35902/gbcore/memory"
	"github.com/arlowood/lr35902/gbcore/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "gbcore [options] <ROM file>"
	app.Description = "A cycle-driven Game Boy (DMG) emulator core"
	app.Version = "0.1.0"

	romFlag := cli.StringFlag{Name: "rom", Usage: "path to the ROM file"}
	sdlFlag := cli.BoolFlag{Name: "sdl2", Usage: "use the SDL2 backend instead of the terminal"}

	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run a ROM interactively",
			Flags: []cli.Flag{romFlag, sdlFlag},
			Action: func(c *cli.Context) error {
				return runInteractive(c)
			},
		},
		{
			Name:  "headless",
			Usage: "run a ROM for a fixed number of frames with no display",
			Flags: []cli.Flag{
				romFlag,
				cli.IntFlag{Name: "frames", Usage: "number of frames to run", Value: 60},
			},
			Action: func(c *cli.Context) error {
				return runHeadless(c)
			},
		},
		{
			Name:  "bench",
			Usage: "run a ROM for a fixed number of frames and report throughput",
			Flags: []cli.Flag{
				romFlag,
				cli.IntFlag{Name: "frames", Usage: "number of frames to run", Value: 600},
			},
			Action: func(c *cli.Context) error {
				return runBench(c)
			},
		},
	}

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func romPathFrom(c *cli.Context) (string, error) {
	if rom := c.String("rom"); rom != "" {
		return rom, nil
	}
	if c.NArg() > 0 {
		return c.Args().Get(0), nil
	}
	return "", errors.New("no ROM path provided, pass --rom or a positional argument")
}

// emulatorJoypad adapts gbcore.Emulator to input.Manager's Joypad interface.
type emulatorJoypad struct{ emu *gbcore.Emulator }

func (j emulatorJoypad) Press(key memory.JoypadKey) bool {
	j.emu.PressButton(key)
	return true
}

func (j emulatorJoypad) Release(key memory.JoypadKey) {
	j.emu.ReleaseButton(key)
}

func runInteractive(c *cli.Context) error {
	romPath, err := romPathFrom(c)
	if err != nil {
		return err
	}

	emu, err := gbcore.Load(romPath)
	if err != nil {
		return err
	}

	var be backend.Backend
	if c.Bool("sdl2") {
		be = sdl2.New()
	} else {
		be = terminal.New()
	}

	if err := be.Init(backend.Config{Title: "gbcore", AudioProvider: emu.AudioProvider()}); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer be.Cleanup()

	manager := input.NewManager(emulatorJoypad{emu})
	quit := false
	manager.On(action.EmulatorQuit, event.Press, func() { quit = true })
	manager.On(action.EmulatorPauseToggle, event.Press, func() {
		if emu.DebuggerState() == gbcore.DebuggerPaused {
			emu.Resume()
		} else {
			emu.Pause()
		}
	})
	manager.On(action.EmulatorStepFrame, event.Press, emu.StepInstruction)
	for ch, act := range map[int]action.Action{
		0: action.AudioToggleChannel1, 1: action.AudioToggleChannel2,
		2: action.AudioToggleChannel3, 3: action.AudioToggleChannel4,
	} {
		channel := ch
		manager.On(act, event.Press, func() { emu.AudioProvider().ToggleChannel(channel) })
	}

	limiter := timing.NewTickerLimiter()
	defer limiter.Stop()

	for !quit {
		emu.RunUntilNextFrame()
		if fault := emu.LastFault; fault != nil {
			return fault
		}

		events, err := be.Update(emu.FrameBuffer())
		if err != nil {
			return err
		}
		for _, evt := range events {
			manager.Dispatch(evt)
		}

		if emu.DebuggerState() == gbcore.DebuggerPaused {
			limiter.Reset()
			continue
		}
		limiter.WaitForNextFrame()
	}
	return nil
}

func runHeadless(c *cli.Context) error {
	romPath, err := romPathFrom(c)
	if err != nil {
		return err
	}
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless requires --frames > 0")
	}

	emu, err := gbcore.Load(romPath)
	if err != nil {
		return err
	}

	for i := 0; i < frames; i++ {
		emu.RunUntilNextFrame()
		if fault := emu.LastFault; fault != nil {
			return fault
		}
	}

	slog.Info("headless run completed", "frames", emu.FrameCount(), "instructions", emu.InstructionCount())
	return nil
}

func runBench(c *cli.Context) error {
	romPath, err := romPathFrom(c)
	if err != nil {
		return err
	}
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("bench requires --frames > 0")
	}

	emu, err := gbcore.Load(romPath)
	if err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		emu.RunUntilNextFrame()
		if fault := emu.LastFault; fault != nil {
			return fault
		}
	}
	elapsed := time.Since(start)

	instructionsPerSec := float64(emu.InstructionCount()) / elapsed.Seconds()
	framesPerSec := float64(emu.FrameCount()) / elapsed.Seconds()

	fmt.Printf("frames=%d instructions=%d elapsed=%s ips=%.0f fps=%.1f\n",
		emu.FrameCount(), emu.InstructionCount(), elapsed, instructionsPerSec, framesPerSec)
	return nil
}
