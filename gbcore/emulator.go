// Package gbcore wires the CPU, memory bus, PPU, APU and serial port into
// a runnable DMG: Load a ROM, Step it instruction-by-instruction or a
// frame at a time, and pull frames/samples/joypad state at the host
// boundary.
package gbcore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arlowood/lr35902/gbcore/addr"
	"github.com/arlowood/lr35902/gbcore/audio"
	"github.com/arlowood/lr35902/gbcore/cpu"
	"github.com/arlowood/lr35902/gbcore/memory"
	"github.com/arlowood/lr35902/gbcore/serial"
	"github.com/arlowood/lr35902/gbcore/video"
)

// cyclesPerFrame is the master-clock length of one 59.7Hz DMG frame:
// 154 scanlines * 456 cycles.
const cyclesPerFrame = 70224

// DebuggerState controls whether RunUntilNextFrame executes anything.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
)

// Emulator is a complete DMG: CPU, bus, PPU and APU wired together, plus
// the minimal pause/step control spec.md §7 asks of a host debugger.
type Emulator struct {
	cpu  *cpu.CPU
	ppu  *video.PPU
	mem  *memory.MMU
	apu  *audio.APU
	link *serial.LogSink

	cart *memory.Cartridge

	debuggerState DebuggerState
	stepRequested bool

	instructionCount uint64
	frameCount       uint64

	// LastFault is set by the CPU's OnFault hook instead of panicking,
	// so a host loop can report it and keep running other ROMs (tests).
	LastFault *Fault
}

// Fault records an invalid or unimplemented opcode the CPU refused to run.
type Fault struct {
	PC     uint16
	Opcode uint8
}

func (f *Fault) Error() string {
	return fmt.Sprintf("cpu fault at pc=0x%04X opcode=0x%02X", f.PC, f.Opcode)
}

// New returns an Emulator with no cartridge loaded, registers in their
// post-boot-ROM state, ready to run open-bus or to have Load called.
func New() *Emulator {
	e := &Emulator{}
	e.init(memory.NewCartridge())
	e.cpu.SetPostBootState()
	return e
}

// Load reads path as a ROM image and returns an Emulator primed to run it
// from 0x0100, registers already in their post-boot-ROM state.
func Load(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gbcore: load rom: %w", err)
	}

	e := &Emulator{}
	e.init(memory.NewCartridgeWithData(data))
	e.cpu.SetPostBootState()

	slog.Info("cartridge loaded", "title", e.cart.Title(), "bytes", len(data))
	return e, nil
}

// LoadBootROM installs boot overlaying img at 0x0000 and sets PC and SP to
// 0 so the CPU starts executing the boot ROM from 0x0000; the other
// registers keep the post-boot values New/Load gave them. Call before the
// first Step/RunUntilNextFrame.
func (e *Emulator) LoadBootROM(img []uint8) {
	e.mem.SetBootROM(img)
	e.cpu.SetPC(0)
	e.cpu.SetSP(0)
}

func (e *Emulator) init(cart *memory.Cartridge) {
	mem := memory.NewWithCartridge(cart)
	e.mem = mem
	e.cart = cart

	e.apu = audio.New()
	mem.SetAudio(e.apu)

	e.link = serial.NewLogSink(func() { mem.RequestInterrupt(addr.SerialInterrupt) })
	mem.SetSerial(e.link)

	e.cpu = cpu.New(mem)
	e.cpu.OnFault = func(pc uint16, opcode uint8) {
		e.LastFault = &Fault{PC: pc, Opcode: opcode}
	}

	e.ppu = video.NewPPU(mem)
	mem.SetPPU(e.ppu)
}

// Reset restarts the current cartridge from its initial state. If the
// boot ROM overlay was never disabled (0xFF50 unwritten), it stays
// installed and PC returns to 0; otherwise the CPU returns to its
// post-boot register state at 0x0100, matching a real DMG's power cycle.
func (e *Emulator) Reset() {
	bootActive := e.mem.BootROMActive()
	bootROM := e.mem.BootROM()

	e.init(e.cart)
	if bootActive {
		e.mem.SetBootROM(bootROM)
		e.cpu.SetPC(0)
		e.cpu.SetSP(0)
	} else {
		e.cpu.SetPostBootState()
	}

	e.instructionCount = 0
	e.frameCount = 0
	e.LastFault = nil
	slog.Info("emulator reset", "bootRomActive", bootActive)
}

// Step executes exactly one CPU instruction (or interrupt dispatch, or one
// HALT/STOP tick) and advances every peripheral by the cycles it took.
// Returns the number of master cycles consumed and whether a new frame
// completed (the PPU entered VBlank) during this Step. On a CPU fault it
// returns (0, false) with LastFault set.
func (e *Emulator) Step() (cycles int, frameReady bool) {
	// the CPU panics after its OnFault hook has recorded LastFault; that
	// panic stops here, any other one is passed on.
	prevFault := e.LastFault
	defer func() {
		if r := recover(); r != nil {
			if e.LastFault == prevFault {
				panic(r)
			}
		}
	}()

	cycles = e.cpu.Step()
	e.mem.Tick(cycles)
	e.ppu.Tick(cycles)
	e.instructionCount++
	frameReady = e.ppu.ConsumeImageReady()
	if frameReady {
		e.frameCount++
	}
	return cycles, frameReady
}

// RunUntilNextFrame executes instructions until the PPU signals a
// completed frame (image_ready pulses on VBlank entry), honoring
// DebuggerPaused/DebuggerStep. It returns the number of instructions
// executed, which is zero while paused. cyclesPerFrame bounds the loop as
// a safety net only: a frame completes within that many cycles of the
// previous one.
func (e *Emulator) RunUntilNextFrame() int {
	switch e.debuggerState {
	case DebuggerPaused:
		return 0
	case DebuggerStep:
		if !e.stepRequested {
			return 0
		}
		e.stepRequested = false
		e.Step()
		e.debuggerState = DebuggerPaused
		return 1
	}

	executed := 0
	total := 0
	for total < cyclesPerFrame {
		cycles, frameReady := e.Step()
		total += cycles
		executed++
		if frameReady || e.LastFault != nil {
			break
		}
	}
	return executed
}

// FrameBuffer returns the PPU's current frame, valid until the next Step.
func (e *Emulator) FrameBuffer() *video.FrameBuffer {
	return e.ppu.FrameBuffer()
}

// DrainAudio pulls count mono PCM samples rendered so far.
func (e *Emulator) DrainAudio(count int) []int16 {
	return e.apu.GetSamples(count)
}

// AudioProvider exposes the APU as a backend.Config.AudioProvider.
func (e *Emulator) AudioProvider() audio.Provider {
	return e.apu
}

func (e *Emulator) PressButton(key memory.JoypadKey)   { e.mem.HandleKeyPress(key) }
func (e *Emulator) ReleaseButton(key memory.JoypadKey) { e.mem.HandleKeyRelease(key) }

// SaveRAM returns the cartridge's battery-backed external RAM, or nil if
// the cartridge has no battery worth persisting.
func (e *Emulator) SaveRAM() []uint8 {
	ram, hasBattery := e.mem.BatteryRAM()
	if !hasBattery {
		return nil
	}
	return ram
}

// LoadSaveRAM restores a previously saved battery RAM image. It returns an
// error and leaves RAM untouched if data's length differs from the
// cartridge's external RAM size.
func (e *Emulator) LoadSaveRAM(data []uint8) error {
	ram, _ := e.mem.BatteryRAM()
	if len(data) != len(ram) {
		return fmt.Errorf("gbcore: load save ram: got %d bytes, cartridge RAM is %d bytes", len(data), len(ram))
	}
	e.mem.LoadBatteryRAM(data)
	return nil
}

func (e *Emulator) CPU() *cpu.CPU   { return e.cpu }
func (e *Emulator) MMU() *memory.MMU { return e.mem }

func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }
func (e *Emulator) FrameCount() uint64       { return e.frameCount }

// Debugger control, mirroring spec.md §7's pause/step-one-instruction model.
func (e *Emulator) Pause()  { e.debuggerState = DebuggerPaused; slog.Info("emulator paused") }
func (e *Emulator) Resume() { e.debuggerState = DebuggerRunning; slog.Info("emulator resumed") }
func (e *Emulator) StepInstruction() {
	e.debuggerState = DebuggerStep
	e.stepRequested = true
}
func (e *Emulator) DebuggerState() DebuggerState { return e.debuggerState }
