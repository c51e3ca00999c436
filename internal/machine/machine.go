// Package machine wires the bus, CPU, PPU and clock together and
// exposes the handful of operations a frontend drives a running
// system through: reset, run/pause/resume, frame handoff, button
// state, overclock, and battery persistence.
package machine

import (
	"fmt"

	"github.com/thelolagemann/gomeboy/internal/boot"
	"github.com/thelolagemann/gomeboy/internal/bus"
	"github.com/thelolagemann/gomeboy/internal/cartridge"
	"github.com/thelolagemann/gomeboy/internal/clock"
	"github.com/thelolagemann/gomeboy/internal/cpu"
	"github.com/thelolagemann/gomeboy/internal/interrupts"
	"github.com/thelolagemann/gomeboy/internal/log"
	"github.com/thelolagemann/gomeboy/internal/ppu"
)

// Loader supplies the frontend-owned file operations a reset needs.
// Implementations typically read from disk, but tests can substitute
// in-memory fakes.
type Loader interface {
	LoadROM() ([]byte, error)
	LoadBIOS() ([]byte, error) // empty, nil is fine: "no boot ROM, use fake boot"
	LoadBattery() ([]byte, error)
	SaveBattery([]byte) error
}

// Machine owns every emulated component and the clock driving them. A
// single Machine is meant to live on its own goroutine for the
// lifetime of a running game, per the two-thread model: this goroutine
// is "the emulator thread", and every other method documented as
// frontend-safe is the only surface the frontend thread may touch.
type Machine struct {
	Bus   *bus.Bus
	CPU   *cpu.CPU
	Clock *clock.Clock
	IRQ   *interrupts.Service

	loader Loader
	logger log.Logger

	notifyVBlank func()
}

// faultStepper wraps the CPU's Step with spec.md §7's fatal-error
// policy: an illegal opcode (caught inside cpu.CPU itself) or a bad MBC
// bank select (caught inside the cartridge's MBC) stops the clock dead
// with a post-mortem message, instead of either one silently limping
// along.
type faultStepper struct {
	cpu   *cpu.CPU
	cart  *cartridge.Cartridge
	clock *clock.Clock
}

func (s *faultStepper) Step() int {
	n := s.cpu.Step()
	if s.cpu.Dead() {
		s.clock.Break(s.cpu.PostMortem())
	} else if msg := s.cart.Fault(); msg != "" {
		s.clock.Break(msg)
	}
	return n
}

// New constructs a Machine around loader. Call Reset before running it.
func New(loader Loader, logger log.Logger) *Machine {
	if logger == nil {
		logger = log.NewNull()
	}
	return &Machine{loader: loader, logger: logger}
}

// SetNotifyVBlank installs the callback invoked once per completed
// frame, from the emulator thread, at the moment the PPU publishes a
// new framebuffer. The callback must not block and must not touch any
// Machine-owned state beyond what RequestNextFrame/ButtonStates/
// Overclock already allow from the frontend thread.
func (m *Machine) SetNotifyVBlank(fn func()) { m.notifyVBlank = fn }

// Reset loads the ROM (and optionally a boot ROM and battery save)
// through the installed Loader, and constructs a fresh Bus/CPU/Clock
// around them. It corresponds to spec.md's system_reset: any I/O or
// cartridge-header failure aborts the reset and is returned, leaving
// any previously-running Machine state untouched.
func (m *Machine) Reset() error {
	romData, err := m.loader.LoadROM()
	if err != nil {
		return fmt.Errorf("machine: load_rom: %w", err)
	}

	cart, err := cartridge.Load(romData)
	if err != nil {
		return fmt.Errorf("machine: cartridge: %w", err)
	}

	battery, err := m.loader.LoadBattery()
	if err != nil {
		return fmt.Errorf("machine: load_battery: %w", err)
	}
	if len(battery) > 0 {
		cart.LoadRAM(battery)
	}

	var bootROM *boot.ROM
	biosData, err := m.loader.LoadBIOS()
	if err != nil {
		return fmt.Errorf("machine: load_bios: %w", err)
	}
	if len(biosData) > 0 {
		bootROM = boot.LoadBootROM(biosData)
	}

	irq := interrupts.New()
	b := bus.New(cart, irq, bootROM)
	c := cpu.New(b, b.IO, irq)

	if bootROM == nil {
		c.Reset(b.IsCGB())
	} else {
		// the real boot ROM runs from 0x0000 and sets up its own
		// register/IO state as it executes; the CPU starts at the reset
		// vector with everything else zeroed.
		c.PC = 0x0000
	}

	m.Bus = b
	m.CPU = c
	m.IRQ = irq

	stepper := &faultStepper{cpu: c, cart: cart}
	m.Clock = clock.New(stepper)
	stepper.clock = m.Clock

	b.PPU.SetNotifyVBlank(func() {
		if m.notifyVBlank != nil {
			m.notifyVBlank()
		}
	})

	m.logger.Infof("reset: %s [%016x]", cart.Header.String(), cart.Fingerprint())
	return nil
}

// RunEventLoop drives the clock until stop is closed or the system
// dies (illegal opcode, bad MBC bank select). Meant to be the entire
// body of the emulator thread's goroutine.
func (m *Machine) RunEventLoop(stop <-chan struct{}) {
	m.Clock.RunEventLoop(stop)
	if msg := m.Clock.PostMortem(); msg != "" {
		m.logger.Errorf("post-mortem: %s", msg)
	}
}

// Pause/Resume are frontend-safe: they only flip the clock's state
// machine, which the emulator thread polls at sleep-cycle granularity.
func (m *Machine) Pause()  { m.Clock.Pause() }
func (m *Machine) Resume() { m.Clock.Resume() }

// RequestNextFrame returns the most recently completed framebuffer,
// swapping it in only if a newer one has been published since the
// last call -- otherwise the previous frame is returned again, so the
// frontend always has something to draw. Frontend-safe.
func (m *Machine) RequestNextFrame() ppu.Frame {
	frame, _ := m.Bus.PPU.ConsumeFrame()
	return frame
}

// ButtonStates publishes the frontend's 8-button state for the
// emulator thread to synchronize against on its next IO tick.
// Frontend-safe.
func (m *Machine) ButtonStates(v uint8) { m.Bus.IO.SetButtonState(v) }

// Overclock sets system_overclock: a nonzero value quadruples the
// clock's target frequency. Frontend-safe.
func (m *Machine) Overclock(v uint8) { m.Clock.SetOverclock(v) }

// WriteBattery flushes cartridge RAM through the Loader's
// save_battery hook, if the cartridge has one. Intended to run on
// cooperative shutdown, after the clock loop has stopped -- the design
// assumes the emulator thread is not concurrently ticking MBC RAM
// while this runs.
func (m *Machine) WriteBattery() error {
	if !m.Bus.Cart.Header.HasBattery() {
		return nil
	}
	return m.loader.SaveBattery(m.Bus.Cart.RAM())
}
