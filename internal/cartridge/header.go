package cartridge

import "fmt"

// Kind identifies which memory bank controller a cartridge type byte
// selects. Only the kinds this core emulates are named; everything else
// is reported as KindUnsupported and fails cartridge loading.
type Kind uint8

const (
	KindNone Kind = iota
	KindMBC3
	KindMBC5
	KindUnsupported
)

// Type is the raw cartridge type byte at header offset 0x147.
type Type uint8

const (
	typeROM               Type = 0x00
	typeMBC3TimerBatt     Type = 0x0F
	typeMBC3TimerRAMBatt  Type = 0x10
	typeMBC3              Type = 0x11
	typeMBC3RAM           Type = 0x12
	typeMBC3RAMBatt       Type = 0x13
	typeMBC5              Type = 0x19
	typeMBC5RAM           Type = 0x1A
	typeMBC5RAMBatt       Type = 0x1B
	typeMBC5Rumble        Type = 0x1C
	typeMBC5RumbleRAM     Type = 0x1D
	typeMBC5RumbleRAMBatt Type = 0x1E
)

func (t Type) kind() Kind {
	switch t {
	case typeROM:
		return KindNone
	case typeMBC3TimerBatt, typeMBC3TimerRAMBatt, typeMBC3, typeMBC3RAM, typeMBC3RAMBatt:
		return KindMBC3
	case typeMBC5, typeMBC5RAM, typeMBC5RAMBatt, typeMBC5Rumble, typeMBC5RumbleRAM, typeMBC5RumbleRAMBatt:
		return KindMBC5
	default:
		return KindUnsupported
	}
}

func (t Type) hasBattery() bool {
	switch t {
	case typeMBC3TimerBatt, typeMBC3TimerRAMBatt, typeMBC3RAMBatt,
		typeMBC5RAMBatt, typeMBC5RumbleRAMBatt:
		return true
	}
	return false
}

var ramSizeCodes = map[uint8]uint{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// GBMode captures the CGB-compatibility byte at 0x143.
type GBMode uint8

const (
	ModeDMGOnly GBMode = iota
	ModeSupportsCGB
	ModeCGBOnly
)

// Header is the parsed 0x100-0x14F cartridge header.
type Header struct {
	Title           string
	Mode            GBMode
	Type            Type
	Kind            Kind
	ROMBankCount    uint
	RAMSize         uint
	RAMBankCount    uint
	HeaderChecksum  uint8
	ComputedCheck   uint8
	ChecksumValid   bool
}

// ParseHeader parses the 0x100-0x14F header region of a ROM image.
// rom must be at least 0x150 bytes long.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("cartridge: rom too small to contain a header (%d bytes)", len(rom))
	}

	h := Header{}

	switch rom[0x143] {
	case 0x80:
		h.Mode = ModeSupportsCGB
	case 0xC0:
		h.Mode = ModeCGBOnly
	default:
		h.Mode = ModeDMGOnly
	}

	titleEnd := 0x144
	if h.Mode != ModeDMGOnly {
		titleEnd = 0x143
	}
	h.Title = trimTitle(rom[0x134:titleEnd])

	h.Type = Type(rom[0x147])
	h.Kind = h.Type.kind()

	romSizeCode := rom[0x148]
	h.ROMBankCount = 2 << romSizeCode // 32KiB * 2^n, in 16KiB banks

	h.RAMSize = ramSizeCodes[rom[0x149]]
	if h.RAMSize > 0 {
		h.RAMBankCount = h.RAMSize / 0x2000
	}

	h.HeaderChecksum = rom[0x14D]
	h.ComputedCheck = headerChecksum(rom)
	h.ChecksumValid = h.ComputedCheck == h.HeaderChecksum

	return h, nil
}

// headerChecksum reproduces the formula in spec.md §6: sum of bytes
// 0x134..0x14C, each negated and decremented, mod 256.
func headerChecksum(rom []byte) uint8 {
	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	return sum
}

func trimTitle(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

func (h Header) GameboyColor() bool {
	return h.Mode == ModeCGBOnly || h.Mode == ModeSupportsCGB
}

func (h Header) HasBattery() bool {
	return h.Type.hasBattery()
}

func (h Header) String() string {
	return fmt.Sprintf("%s (rom banks=%d ram=%dKiB checksum-ok=%v)", h.Title, h.ROMBankCount, h.RAMSize/1024, h.ChecksumValid)
}
