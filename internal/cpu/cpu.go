// Package cpu implements a table-driven Sharp LR35902 interpreter:
// fetch/decode/execute/progress over a 256-entry primary opcode table
// and a 256-entry 0xCB-prefixed secondary table, plus interrupt
// servicing and the classic HALT bug.
package cpu

import "github.com/thelolagemann/gomeboy/internal/interrupts"

// Bus is the subset of the address space the CPU needs.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Push16(sp *uint16, value uint16)
	Pop16(sp *uint16) uint16
}

// Ticker lets the CPU advance every other per-cycle component
// (PPU/timer/DMA/HDMA) in lockstep with instruction execution.
type Ticker interface {
	Tick(cycles int)
	DMAHalt() bool
}

// CPU is the Sharp LR35902 interpreter: registers, program counter,
// stack pointer, and the fetch/decode/execute loop.
type CPU struct {
	Registers
	PC, SP uint16

	bus    Bus
	ticker Ticker
	IRQ    *interrupts.Service

	halted         bool
	haltBugPending bool
	imeEnableDelay int // EI's one-instruction IME-enable delay, in Step() calls

	dead       bool   // set by fault(); per spec.md §7, illegal opcodes kill the CPU
	postMortem string
}

// New constructs a CPU. Reset must be called afterward to establish
// power-on register state (either via the real boot ROM overlay, or
// fake_bootrom if none is supplied).
func New(bus Bus, ticker Ticker, irq *interrupts.Service) *CPU {
	return &CPU{bus: bus, ticker: ticker, IRQ: irq}
}

// Reset seeds fake_bootrom register/IO state: the values the real boot
// ROM leaves behind, used whenever no real boot ROM is loaded. isCGB
// selects the CGB vs. DMG initial A value per spec.md.
func (c *CPU) Reset(isCGB bool) {
	if isCGB {
		c.SetAF(0x11B0)
	} else {
		c.SetAF(0x01B0)
	}
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.halted = false
	c.haltBugPending = false
	c.imeEnableDelay = 0
	c.dead = false
	c.postMortem = ""

	for _, io := range fakeBootromIO {
		c.bus.Write(io.addr, io.value)
	}
}

type ioSeed struct {
	addr  uint16
	value uint8
}

// fakeBootromIO is the ≈30 I/O register writes the real boot ROM
// leaves behind, per spec.md §6.
var fakeBootromIO = []ioSeed{
	{0xFF00, 0xCF},
	{0xFF01, 0x00},
	{0xFF02, 0x7E},
	{0xFF04, 0xAB},
	{0xFF05, 0x00},
	{0xFF06, 0x00},
	{0xFF07, 0xF8},
	{0xFF0F, 0xE1},
	{0xFF10, 0x80},
	{0xFF11, 0xBF},
	{0xFF12, 0xF3},
	{0xFF14, 0xBF},
	{0xFF16, 0x3F},
	{0xFF17, 0x00},
	{0xFF19, 0xBF},
	{0xFF1A, 0x7F},
	{0xFF1B, 0xFF},
	{0xFF1C, 0x9F},
	{0xFF1E, 0xBF},
	{0xFF20, 0xFF},
	{0xFF21, 0x00},
	{0xFF22, 0x00},
	{0xFF23, 0xBF},
	{0xFF24, 0x77},
	{0xFF25, 0xF3},
	{0xFF26, 0xF1},
	{0xFF40, 0x91},
	{0xFF41, 0x81},
	{0xFF42, 0x00},
	{0xFF43, 0x00},
	{0xFF45, 0x00},
	{0xFF47, 0xFC},
	{0xFF48, 0xFF},
	{0xFF49, 0xFF},
	{0xFF4A, 0x00},
	{0xFF4B, 0x00},
	{0xFF50, 0x01},
}

// Step executes exactly one instruction (or one HALT/DMA-stall tick),
// advancing every ticked peripheral in step, and returns the number of
// T-states consumed.
func (c *CPU) Step() int {
	if c.dead {
		return 0
	}

	if c.ticker.DMAHalt() {
		c.tick(4)
		return 4
	}

	if c.imeEnableDelay > 0 {
		c.imeEnableDelay--
		if c.imeEnableDelay == 0 {
			c.IRQ.IME = true
		}
	}

	if c.serviceInterrupt() {
		return 20
	}

	if c.halted {
		c.tick(4)
		if c.IRQ.Pending() {
			c.halted = false
		}
		return 4
	}

	opcode := c.fetch8()
	mCycles := execPrimary(c, opcode)
	if c.dead {
		return 0
	}
	cycles := mCycles * 4
	c.tick(cycles)
	return cycles
}

// fault marks the CPU dead with a post-mortem message and stops it from
// executing any further instructions -- spec.md §7's "illegal opcode ->
// mark CPU dead, log post-mortem" policy.
func (c *CPU) fault(msg string) { c.dead = true; c.postMortem = msg }

// Dead reports whether fault has been called since the last Reset.
func (c *CPU) Dead() bool { return c.dead }

// PostMortem returns the message fault recorded, or "" if the CPU is
// still alive.
func (c *CPU) PostMortem() string { return c.postMortem }

func (c *CPU) tick(tStates int) {
	c.ticker.Tick(tStates)
}

// fetch8 reads the byte at PC. Normally PC then advances; if the HALT
// bug is pending, this fetch re-reads the same byte next time instead
// (the byte after HALT is fetched/executed twice because PC fails to
// advance once).
func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.PC)
	if c.haltBugPending {
		c.haltBugPending = false
	} else {
		c.PC++
	}
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

// serviceInterrupt dispatches the highest-priority pending, enabled
// interrupt if IME is set, pushing PC and jumping to its vector.
func (c *CPU) serviceInterrupt() bool {
	if !c.IRQ.IME {
		return false
	}
	vector, flag, ok := c.IRQ.NextVector()
	if !ok {
		return false
	}
	c.IRQ.IME = false
	c.IRQ.Clear(flag)
	c.bus.Push16(&c.SP, c.PC)
	c.PC = vector
	c.tick(20)
	return true
}

// halt implements the HALT instruction, including the resolved Open
// Question behavior for the HALT bug: when IME is off and an interrupt
// is already pending, the CPU does not actually halt -- instead the
// byte after HALT is fetched twice.
func (c *CPU) halt() {
	if !c.IRQ.IME && c.IRQ.Pending() {
		c.haltBugPending = true
	} else {
		c.halted = true
	}
}

// ei schedules IME to become true after the instruction following EI
// has executed, per the hardware's one-instruction delay.
func (c *CPU) ei() {
	c.imeEnableDelay = 2
}

func (c *CPU) di() {
	c.IRQ.IME = false
	c.imeEnableDelay = 0
}
