// Package bus implements the 64KiB memory-mapped address space tying
// the cartridge, working RAM, PPU, IO block and interrupt registers
// together, with the exact interception order spec.md §4.1 specifies:
// IO block, then boot-ROM overlay, then PPU, then MBC for reads;
// IO block, then PPU, then MBC for writes.
package bus

import (
	"github.com/thelolagemann/gomeboy/internal/boot"
	"github.com/thelolagemann/gomeboy/internal/cartridge"
	"github.com/thelolagemann/gomeboy/internal/interrupts"
	"github.com/thelolagemann/gomeboy/internal/io"
	"github.com/thelolagemann/gomeboy/internal/ppu"
	"github.com/thelolagemann/gomeboy/internal/ram"
)

const (
	wramBankSize = 0x1000
	hramSize     = 0x80
)

// Bus is the shared address space every component reads and writes
// through. It holds no behavior of its own beyond dispatch: each
// owning component (Cart, PPU, IO) is authoritative for its own
// registers and memory.
type Bus struct {
	Cart *cartridge.Cartridge
	PPU  *ppu.PPU
	IO   *io.Block
	IRQ  *interrupts.Service

	isCGB bool

	wram     [8]*ram.RAM
	wramBank uint8 // SVBK, CGB only: 1-7 (0 reads back as 1)
	hram     *ram.RAM

	bootROM        *boot.ROM
	bootROMEnabled bool

	key0 uint8 // CGB speed-switch armed bit
	key1 uint8 // CGB speed-switch current/requested speed
}

// New constructs a Bus over an already-loaded cartridge. If bootROM is
// nil, the boot-ROM overlay is skipped entirely and the caller must
// apply fake_bootrom register seeding before running (see
// internal/cpu.Reset).
func New(cart *cartridge.Cartridge, irq *interrupts.Service, bootROM *boot.ROM) *Bus {
	isCGB := cart.Header.GameboyColor()
	b := &Bus{
		Cart:     cart,
		IRQ:      irq,
		isCGB:    isCGB,
		wramBank: 1,
		hram:     ram.New(hramSize),
		bootROM:  bootROM,
	}
	for i := range b.wram {
		b.wram[i] = ram.New(wramBankSize)
	}
	b.bootROMEnabled = bootROM != nil

	b.PPU = ppu.New(irq, isCGB)
	b.IO = io.New(irq, b, b.PPU, b.PPU, b.PPU, isCGB)
	b.PPU.SetHBlankHook(b.IO.EnterHBlank)
	return b
}

func (b *Bus) IsCGB() bool { return b.isCGB }

// Read resolves a CPU-facing memory read.
func (b *Bus) Read(address uint16) uint8 {
	if v, ok := b.IO.InterceptRead(address); ok {
		return v
	}
	if b.bootROMEnabled && b.inBootROMWindow(address) {
		return b.bootROM.Read(address)
	}
	switch {
	case address <= 0x7FFF:
		return b.Cart.Read(address)
	case address >= 0x8000 && address <= 0x9FFF:
		return b.PPU.Read(address)
	case address >= 0xA000 && address <= 0xBFFF:
		return b.Cart.Read(address)
	case address >= 0xC000 && address <= 0xCFFF:
		return b.wram[0].Read(address - 0xC000)
	case address >= 0xD000 && address <= 0xDFFF:
		return b.wram[b.effectiveWRAMBank()].Read(address - 0xD000)
	case address >= 0xE000 && address <= 0xEFFF: // echo of bank 0
		return b.wram[0].Read(address - 0xE000)
	case address >= 0xF000 && address <= 0xFDFF: // echo of switchable bank
		return b.wram[b.effectiveWRAMBank()].Read(address - 0xF000)
	case address >= 0xFE00 && address <= 0xFE9F:
		if b.IO.OAMDMAActive() {
			return 0xFF
		}
		return b.PPU.Read(address)
	case address >= 0xFEA0 && address <= 0xFEFF:
		return 0xFF // unusable
	case address == 0xFF4D:
		if b.isCGB {
			return b.key1 | 0x7E
		}
		return 0xFF
	case address == 0xFF4F, address >= 0xFF51 && address <= 0xFF55,
		address >= 0xFF68 && address <= 0xFF6B:
		return b.PPU.Read(address)
	case address == 0xFF50:
		return 0xFF
	case address == 0xFF70:
		if b.isCGB {
			return b.wramBank | 0xF8
		}
		return 0xFF
	case address >= 0xFF40 && address <= 0xFF4B:
		return b.PPU.Read(address)
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram.Read(address - 0xFF80)
	case address == 0xFF0F, address == 0xFFFF:
		return b.IRQ.Read(address)
	}
	return 0xFF
}

// Write resolves a CPU-facing memory write.
func (b *Bus) Write(address uint16, value uint8) {
	if b.IO.InterceptWrite(address, value) {
		return
	}
	switch {
	case address <= 0x7FFF:
		b.Cart.Write(address, value)
	case address >= 0x8000 && address <= 0x9FFF:
		b.PPU.Write(address, value)
	case address >= 0xA000 && address <= 0xBFFF:
		b.Cart.Write(address, value)
	case address >= 0xC000 && address <= 0xCFFF:
		b.wram[0].Write(address-0xC000, value)
	case address >= 0xD000 && address <= 0xDFFF:
		b.wram[b.effectiveWRAMBank()].Write(address-0xD000, value)
	case address >= 0xE000 && address <= 0xEFFF:
		b.wram[0].Write(address-0xE000, value)
	case address >= 0xF000 && address <= 0xFDFF:
		b.wram[b.effectiveWRAMBank()].Write(address-0xF000, value)
	case address >= 0xFE00 && address <= 0xFE9F:
		if !b.IO.OAMDMAActive() {
			b.PPU.Write(address, value)
		}
	case address >= 0xFEA0 && address <= 0xFEFF:
		// unusable, discard
	case address == 0xFF4D:
		if b.isCGB {
			b.key1 = value & 0x01
		}
	case address == 0xFF50:
		if value != 0 {
			b.bootROMEnabled = false
		}
	case address == 0xFF4F, address >= 0xFF51 && address <= 0xFF55,
		address >= 0xFF68 && address <= 0xFF6B:
		b.PPU.Write(address, value)
	case address == 0xFF70:
		if b.isCGB {
			v := value & 0x07
			if v == 0 {
				v = 1
			}
			b.wramBank = v
		}
	case address >= 0xFF40 && address <= 0xFF4B:
		b.PPU.Write(address, value)
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram.Write(address-0xFF80, value)
	case address == 0xFF0F, address == 0xFFFF:
		b.IRQ.Write(address, value)
	}
}

func (b *Bus) effectiveWRAMBank() uint8 {
	if b.isCGB {
		return b.wramBank
	}
	return 1
}

func (b *Bus) inBootROMWindow(address uint16) bool {
	if address < 0x100 {
		return true
	}
	return b.isCGB && address >= 0x200 && address < 0x900
}

// SpeedSwitchArmed reports whether a KEY1 speed-switch write has been
// latched, for the CPU's STOP-instruction handling to consult.
func (b *Bus) SpeedSwitchArmed() bool { return b.key1&0x01 != 0 }

// Push16/Pop16 are convenience helpers the CPU uses for CALL/PUSH/RET/POP.
func (b *Bus) Push16(sp *uint16, value uint16) {
	*sp--
	b.Write(*sp, uint8(value>>8))
	*sp--
	b.Write(*sp, uint8(value))
}

func (b *Bus) Pop16(sp *uint16) uint16 {
	lo := b.Read(*sp)
	*sp++
	hi := b.Read(*sp)
	*sp++
	return uint16(lo) | uint16(hi)<<8
}
