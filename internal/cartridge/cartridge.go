// Package cartridge parses Game Boy ROM headers and implements the two
// memory bank controllers this core supports (MBC3, MBC5), plus the
// no-MBC case. It is deliberately narrower than real hardware: any
// other cartridge type fails cartridge loading (spec.md's explicit
// unsupported-MBC non-goal).
package cartridge

import (
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash"
)

// Cartridge bundles the parsed header with the selected bank controller.
type Cartridge struct {
	Header Header
	MBC    MBC

	fingerprint uint64
}

// New parses rom's header and constructs the matching MBC. An
// unsupported or malformed cartridge returns an error; callers should
// treat this as a fatal system_reset failure per spec.md §7.
func New(rom []byte) (*Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	var mbc MBC
	switch header.Kind {
	case KindNone:
		mbc = NewNoMBC(rom, header.RAMSize)
	case KindMBC3:
		mbc = NewMBC3(rom, header)
	case KindMBC5:
		mbc = NewMBC5(rom, header)
	default:
		return nil, fmt.Errorf("cartridge: unsupported cartridge type 0x%02X", uint8(header.Type))
	}

	return &Cartridge{
		Header:      header,
		MBC:         mbc,
		fingerprint: xxhash.Sum64(rom),
	}, nil
}

// Read dispatches a bus read in the cartridge's address windows to the
// MBC. Address must already be within 0x0000-0x7FFF or 0xA000-0xBFFF.
func (c *Cartridge) Read(address uint16) uint8 {
	if address < 0x8000 {
		return c.MBC.ReadROM(address)
	}
	return c.MBC.ReadRAM(address)
}

// Write dispatches a bus write in the cartridge's address windows.
// Writes below 0x8000 are MBC commands; they never touch ROM bytes.
func (c *Cartridge) Write(address uint16, value uint8) {
	if address < 0x8000 {
		c.MBC.WriteROM(address, value)
		return
	}
	c.MBC.WriteRAM(address, value)
}

// Fault reports a sticky fatal condition raised by the MBC (an
// out-of-range bank select), or "" if none has occurred.
func (c *Cartridge) Fault() string {
	type faulter interface{ Fault() string }
	if f, ok := c.MBC.(faulter); ok {
		return f.Fault()
	}
	return ""
}

// Tick advances MBC-internal state that progresses with time (only
// MBC3's RTC needs this, and only indirectly -- its registers are
// derived lazily from wall-clock reads, so Tick is a no-op today but
// kept so future MBCs with per-cycle state have somewhere to hook in).
func (c *Cartridge) Tick(machineCycles uint64) {
	if t, ok := c.MBC.(Ticker); ok {
		t.Tick(machineCycles)
	}
}

// SaveFilename derives a stable save-file name from the cartridge
// title, hashed with xxhash the way the teacher hashed it with MD5 in
// Cartridge.Filename -- swapped here for the faster non-cryptographic
// hash already in the domain dependency set.
func (c *Cartridge) SaveFilename() string {
	sum := xxhash.Sum64String(c.Header.Title)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(sum >> (8 * i))
	}
	return hex.EncodeToString(b)
}

// Fingerprint is the xxhash of the whole ROM image, logged alongside
// the header on reset to disambiguate same-titled ROM hacks/patches.
func (c *Cartridge) Fingerprint() uint64 {
	return c.fingerprint
}

// RAM returns the external RAM banks for battery persistence.
func (c *Cartridge) RAM() []byte { return c.MBC.RAM() }

// LoadRAM restores a previously saved external RAM image.
func (c *Cartridge) LoadRAM(data []byte) { c.MBC.LoadRAM(data) }
