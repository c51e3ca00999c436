// Package io implements the joypad, DIV/TIMA timer, OAM DMA and CGB
// HDMA/GDMA hardware spec.md groups together as "the IO block".
package io

import (
	"sync/atomic"

	"github.com/thelolagemann/gomeboy/internal/interrupts"
)

const (
	RegJoypad = 0xFF00
	RegDIV    = 0xFF04
	RegTIMA   = 0xFF05
	RegTMA    = 0xFF06
	RegTAC    = 0xFF07
	RegDMA    = 0xFF46
	RegHDMA1  = 0xFF51
	RegHDMA2  = 0xFF52
	RegHDMA3  = 0xFF53
	RegHDMA4  = 0xFF54
	RegHDMA5  = 0xFF55
)

// PPUTicker lets the IO block advance the PPU by the same T-state
// count as every other per-cycle component, since CPU.Ticker only
// drives one ticker (the IO block) per Step -- the PPU rides along
// through this rather than the CPU ticking it separately.
type PPUTicker interface {
	Tick(cycles int)
}

// Block aggregates the IO-block registers and their per-tick state
// machines.
type Block struct {
	Joypad *Joypad
	Timer  *Timer
	DMA    *OAMDMA
	HDMA   *HDMA

	ppu PPUTicker

	isCGB bool

	// buttonState is the frontend-writable, emulator-readable button
	// byte from spec.md §5 -- an atomic cell since it crosses threads.
	buttonState atomic.Uint32
}

// New constructs the IO block. oam and vram let OAM DMA and HDMA write
// into PPU-owned memory directly; bus lets them read their source
// bytes from anywhere in the address space; ppu is ticked alongside
// every other component on every Tick call.
func New(irq *interrupts.Service, bus BusReader, oam OAMWriter, vram VRAMWriter, ppu PPUTicker, isCGB bool) *Block {
	b := &Block{
		Joypad: NewJoypad(irq),
		Timer:  NewTimer(irq),
		DMA:    NewOAMDMA(bus, oam),
		ppu:    ppu,
		isCGB:  isCGB,
	}
	if isCGB {
		b.HDMA = NewHDMA(bus, vram)
	}
	return b
}

// SetButtonState is called by the frontend thread to publish the
// current 8-button state (bit layout per spec.md §6: A,B,Start,Select,
// Up,Down,Left,Right from LSB to MSB, 1 = pressed).
func (b *Block) SetButtonState(v uint8) { b.buttonState.Store(uint32(v)) }

// ButtonState is called by the emulator thread.
func (b *Block) ButtonState() uint8 { return uint8(b.buttonState.Load()) }

// Tick advances every per-cycle IO state machine by the given number of
// T-states, and synchronizes the joypad register against the
// frontend's button state.
func (b *Block) Tick(cycles int) {
	b.Timer.Tick(cycles)
	b.DMA.Tick(cycles)
	if b.HDMA != nil {
		b.HDMA.Tick(cycles)
	}
	b.ppu.Tick(cycles)
	b.Joypad.Sync(b.ButtonState())
}

// OAMDMAActive reports whether an OAM DMA transfer is in progress, used
// by the bus to force OAM reads to 0xFF.
func (b *Block) OAMDMAActive() bool { return b.DMA.Active() }

// DMAHalt reports whether CGB general-purpose/HBlank HDMA currently
// owns the bus, used by the CPU to suspend instruction execution.
func (b *Block) DMAHalt() bool {
	return b.HDMA != nil && b.HDMA.IsCPUHalted()
}

// EnterHBlank notifies an in-progress HBlank HDMA transfer that a new
// HBlank period has begun.
func (b *Block) EnterHBlank() {
	if b.HDMA != nil {
		b.HDMA.EnterHBlank()
	}
}

// InterceptRead handles a bus read of an IO-block-owned register.
func (b *Block) InterceptRead(address uint16) (uint8, bool) {
	switch address {
	case RegJoypad:
		return b.Joypad.Read(b.ButtonState()), true
	case RegDIV:
		return b.Timer.ReadDIV(), true
	case RegTIMA:
		return b.Timer.ReadTIMA(), true
	case RegTMA:
		return b.Timer.ReadTMA(), true
	case RegTAC:
		return b.Timer.ReadTAC(), true
	case RegDMA:
		return 0xFF, true // write-only on real hardware
	case RegHDMA5:
		if b.HDMA != nil {
			return b.HDMA.ReadHDMA5(), true
		}
		return 0xFF, true
	}
	return 0, false
}

// InterceptWrite handles a bus write to an IO-block-owned register.
func (b *Block) InterceptWrite(address uint16, value uint8) bool {
	switch address {
	case RegJoypad:
		b.Joypad.Write(value)
		return true
	case RegDIV:
		b.Timer.WriteDIV()
		return true
	case RegTIMA:
		b.Timer.WriteTIMA(value)
		return true
	case RegTMA:
		b.Timer.WriteTMA(value)
		return true
	case RegTAC:
		b.Timer.WriteTAC(value)
		return true
	case RegDMA:
		b.DMA.Write(value)
		return true
	case RegHDMA1:
		if b.HDMA != nil {
			b.HDMA.WriteSourceHi(value)
		}
		return b.HDMA != nil
	case RegHDMA2:
		if b.HDMA != nil {
			b.HDMA.WriteSourceLo(value)
		}
		return b.HDMA != nil
	case RegHDMA3:
		if b.HDMA != nil {
			b.HDMA.WriteDestHi(value)
		}
		return b.HDMA != nil
	case RegHDMA4:
		if b.HDMA != nil {
			b.HDMA.WriteDestLo(value)
		}
		return b.HDMA != nil
	case RegHDMA5:
		if b.HDMA != nil {
			b.HDMA.WriteHDMA5(value)
		}
		return b.HDMA != nil
	}
	return false
}
