// Package ppu implements the scanline-atomic picture processing unit:
// a mode FSM driving background/window/sprite compositing once per
// scanline rather than a pixel-FIFO, plus the triple-buffered
// framebuffer handoff to the frontend thread at VBlank.
package ppu

import (
	"sync"

	"github.com/thelolagemann/gomeboy/internal/interrupts"
	"github.com/thelolagemann/gomeboy/internal/ppu/colorcorrect"
	"github.com/thelolagemann/gomeboy/internal/ppu/palette"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	oamCycles   = 80
	vramCycles  = 172
	hblankCycles = 204 // oamCycles+vramCycles+hblankCycles == 456
	lineCycles  = 456
	vblankLines = 10
)

// Register addresses, as spec.md §4.4 lays them out.
const (
	RegLCDC = 0xFF40
	RegSTAT = 0xFF41
	RegSCY  = 0xFF42
	RegSCX  = 0xFF43
	RegLY   = 0xFF44
	RegLYC  = 0xFF45
	RegBGP  = 0xFF47
	RegOBP0 = 0xFF48
	RegOBP1 = 0xFF49
	RegWY   = 0xFF4A
	RegWX   = 0xFF4B
	RegVBK  = 0xFF4F
	RegBCPS = 0xFF68
	RegBCPD = 0xFF69
	RegOCPS = 0xFF6A
	RegOCPD = 0xFF6B
)

// Frame is one completed, fully-composited RGB888 framebuffer.
type Frame [ScreenHeight][ScreenWidth][3]uint8

// PPU owns LCD register state, VRAM/OAM, CGB palette RAM, and the
// triple framebuffer exchanged with the frontend thread at VBlank.
type PPU struct {
	LCDC LCDC
	STAT STAT
	SCY, SCX   uint8
	LY, LYC    uint8
	WY, WX     uint8
	BGP, OBP0, OBP1 uint8

	isCGB bool
	vbk   uint8 // VRAM bank select, CGB only
	vram  [2][0x2000]byte

	OAM OAM

	BGPalette  palette.CGBBank
	OBJPalette palette.CGBBank
	Tonemap    colorcorrect.Mode

	irq *interrupts.Service

	cycle           int
	windowLine      uint8 // internal window-line counter, per the resolved Open Question
	statLine        bool  // level of the STAT interrupt condition, edge-detected
	hblankNotify    func() // hook into io.Block.EnterHBlank for HDMA
	vblankNotify    func() // hook for the frontend's display_notify_vblank callback

	mu      sync.Mutex
	buffers [3]Frame
	front   int // index the frontend currently owns/reads
	back    int // index the PPU is currently drawing into
	ready   int // index of the most recently completed frame, -1 if none new
	working Frame
}

// New constructs a PPU. SetHBlankHook should be called once the owning
// io.Block exists, to let HDMA progress on every HBlank entry.
func New(irq *interrupts.Service, isCGB bool) *PPU {
	p := &PPU{irq: irq, isCGB: isCGB, ready: -1}
	p.LCDC.Write(0x91)
	p.BGP, p.OBP0, p.OBP1 = 0xFC, 0xFF, 0xFF
	return p
}

func (p *PPU) SetHBlankHook(fn func()) { p.hblankNotify = fn }

// SetNotifyVBlank installs the callback invoked once per completed
// frame, right after it is published to the triple buffer -- spec.md's
// display_notify_vblank.
func (p *PPU) SetNotifyVBlank(fn func()) { p.vblankNotify = fn }

// WriteOAMByte satisfies io.OAMWriter for OAM DMA.
func (p *PPU) WriteOAMByte(index uint8, value uint8) { p.OAM.WriteOAMByte(index, value) }

// WriteVRAMByte satisfies io.VRAMWriter for HDMA; always targets the
// currently-selected VRAM bank.
func (p *PPU) WriteVRAMByte(address uint16, value uint8) {
	p.vram[p.vbk][address-0x8000] = value
}

func (p *PPU) vramAccessible() bool  { return !p.LCDC.Enabled || p.STAT.Mode != ModeVRAM }
func (p *PPU) oamAccessible() bool   { return !p.LCDC.Enabled || (p.STAT.Mode != ModeOAM && p.STAT.Mode != ModeVRAM) }

// Read handles CPU-facing reads across VRAM, OAM and the LCD register
// block.
func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		if !p.vramAccessible() {
			return 0xFF
		}
		return p.vram[p.vbk][address-0x8000]
	case address >= 0xFE00 && address <= 0xFE9F:
		if !p.oamAccessible() {
			return 0xFF
		}
		return p.OAM.Read(address - 0xFE00)
	}
	return p.readRegister(address)
}

func (p *PPU) readRegister(address uint16) uint8 {
	switch address {
	case RegLCDC:
		return p.LCDC.Read()
	case RegSTAT:
		return p.STAT.Read()
	case RegSCY:
		return p.SCY
	case RegSCX:
		return p.SCX
	case RegLY:
		return p.LY
	case RegLYC:
		return p.LYC
	case RegBGP:
		return p.BGP
	case RegOBP0:
		return p.OBP0
	case RegOBP1:
		return p.OBP1
	case RegWY:
		return p.WY
	case RegWX:
		return p.WX
	case RegVBK:
		if p.isCGB {
			return p.vbk | 0xFE
		}
		return 0xFF
	case RegBCPS:
		return p.BGPalette.ReadIndex()
	case RegBCPD:
		if !p.vramAccessible() {
			return 0xFF
		}
		return p.BGPalette.ReadData()
	case RegOCPS:
		return p.OBJPalette.ReadIndex()
	case RegOCPD:
		if !p.vramAccessible() {
			return 0xFF
		}
		return p.OBJPalette.ReadData()
	}
	return 0xFF
}

// Write handles CPU-facing writes across VRAM, OAM and the LCD
// register block.
func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		if p.vramAccessible() {
			p.vram[p.vbk][address-0x8000] = value
		}
		return
	case address >= 0xFE00 && address <= 0xFE9F:
		if p.oamAccessible() {
			p.OAM.Write(address-0xFE00, value)
		}
		return
	}
	p.writeRegister(address, value)
}

func (p *PPU) writeRegister(address uint16, value uint8) {
	switch address {
	case RegLCDC:
		wasEnabled := p.LCDC.Enabled
		p.LCDC.Write(value)
		if wasEnabled && !p.LCDC.Enabled {
			p.disable()
		} else if !wasEnabled && p.LCDC.Enabled {
			p.enable()
		}
	case RegSTAT:
		p.STAT.Write(value)
		p.checkStatInterrupt()
	case RegSCY:
		p.SCY = value
	case RegSCX:
		p.SCX = value
	case RegLY:
		// read-only on hardware
	case RegLYC:
		p.LYC = value
		p.checkLYC()
		p.checkStatInterrupt()
	case RegBGP:
		p.BGP = value
	case RegOBP0:
		p.OBP0 = value
	case RegOBP1:
		p.OBP1 = value
	case RegWY:
		p.WY = value
	case RegWX:
		p.WX = value
	case RegVBK:
		if p.isCGB {
			p.vbk = value & 0x01
		}
	case RegBCPS:
		p.BGPalette.WriteIndex(value)
	case RegBCPD:
		if p.vramAccessible() {
			p.BGPalette.WriteData(value)
		}
	case RegOCPS:
		p.OBJPalette.WriteIndex(value)
	case RegOCPD:
		if p.vramAccessible() {
			p.OBJPalette.WriteData(value)
		}
	}
}

func (p *PPU) disable() {
	p.STAT.Mode = ModeHBlank
	p.LY = 0
	p.cycle = 0
	p.windowLine = 0
	p.clearToWhite()
}

func (p *PPU) enable() {
	p.checkLYC()
	p.checkStatInterrupt()
	p.cycle = 0
}

func (p *PPU) checkLYC() {
	p.STAT.LYCMatch = p.LY == p.LYC
}

// checkStatInterrupt re-derives the STAT interrupt condition and
// requests LCD-STAT on its rising edge. Per the resolved Open
// Question, only the LYC-match and HBlank sources are consulted here
// -- mode-1 (VBlank) and mode-2 (OAM) STAT sources are deliberately not
// wired, preserving the original's incompletely-implemented behavior
// rather than guessing at the "correct" four-source form.
func (p *PPU) checkStatInterrupt() {
	level := (p.STAT.LYCMatch && p.STAT.LYCInterruptEnabled) ||
		(p.STAT.Mode == ModeHBlank && p.STAT.HBlankInterruptEnabled)
	if level && !p.statLine {
		p.irq.Request(interrupts.LCDFlag)
	}
	p.statLine = level
}

// Tick advances the PPU by the given number of T-states, the same unit
// Timer/OAMDMA/HDMA use.
func (p *PPU) Tick(cycles int) {
	if !p.LCDC.Enabled {
		return
	}
	for i := 0; i < cycles; i++ {
		p.tickOne()
	}
}

func (p *PPU) tickOne() {
	p.cycle++
	switch p.STAT.Mode {
	case ModeOAM:
		if p.cycle == oamCycles {
			p.cycle = 0
			p.STAT.Mode = ModeVRAM
		}
	case ModeVRAM:
		if p.cycle == vramCycles {
			p.cycle = 0
			p.STAT.Mode = ModeHBlank
			p.STAT.LYCMatch = p.LY+1 == p.LYC
			p.checkStatInterrupt()
			p.renderScanline()
			if p.hblankNotify != nil {
				p.hblankNotify()
			}
		}
	case ModeHBlank:
		if p.cycle == hblankCycles {
			p.cycle = 0
			p.LY++
			// LY==LYC was already compared against LY+1 at mode-0 entry
			// above; re-checking after the increment gives the same result.
			p.checkLYC()
			if p.LY == 144 {
				p.STAT.Mode = ModeVBlank
				p.checkStatInterrupt()
				p.irq.Request(interrupts.VBlankFlag)
				p.publishFrame()
			} else {
				p.STAT.Mode = ModeOAM
				p.checkStatInterrupt()
			}
		}
	case ModeVBlank:
		if p.cycle == lineCycles {
			p.cycle = 0
			p.LY++
			p.checkLYC()
			p.checkStatInterrupt()
			if p.LY >= 144+vblankLines {
				p.LY = 0
				p.windowLine = 0
				p.checkLYC()
				p.STAT.Mode = ModeOAM
				p.checkStatInterrupt()
			}
		}
	}
}

func (p *PPU) clearToWhite() {
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			p.working[y][x] = [3]uint8{0xFF, 0xFF, 0xFF}
		}
	}
}

// publishFrame hands the just-completed working frame to the
// triple-buffer: it becomes "ready", and if the frontend had not yet
// consumed the previously-ready frame, that one is simply dropped
// (the frontend always sees the most recent complete frame).
func (p *PPU) publishFrame() {
	p.mu.Lock()
	p.buffers[p.back] = p.working
	p.ready = p.back
	// advance back to whichever buffer isn't front and isn't ready
	for i := 0; i < 3; i++ {
		if i != p.front && i != p.ready {
			p.back = i
			break
		}
	}
	p.mu.Unlock()
	if p.vblankNotify != nil {
		p.vblankNotify()
	}
}

// ConsumeFrame returns the most recently completed frame and whether a
// new one was available since the last call -- the frontend thread's
// half of the triple-buffer handoff.
func (p *PPU) ConsumeFrame() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready < 0 {
		return p.buffers[p.front], false
	}
	p.front = p.ready
	frame := p.buffers[p.front]
	p.ready = -1
	return frame, true
}
