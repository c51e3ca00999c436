package cartridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeROM(cartType byte, romBanks int) []byte {
	rom := make([]byte, 0x4000*romBanks)
	for i := 0x134; i <= 0x14C; i++ {
		rom[i] = 0 // keep checksum simple; recomputed below
	}
	rom[0x147] = cartType
	romSizeCode := byte(0)
	for banks := 2; banks < romBanks; banks *= 2 {
		romSizeCode++
	}
	rom[0x148] = romSizeCode
	rom[0x149] = 0x03 // 32KiB RAM

	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	rom[0x14D] = sum
	return rom
}

func TestHeaderChecksum(t *testing.T) {
	rom := makeROM(0x00, 2)
	h, err := ParseHeader(rom)
	require.NoError(t, err)
	require.True(t, h.ChecksumValid)
}

func TestSelectingBank0MapsBank1(t *testing.T) {
	rom := makeROM(0x11, 8) // MBC3
	h, _ := ParseHeader(rom)
	// tag each bank with its index at offset 0 within the bank
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, h)
	m.WriteROM(0x2000, 0x00) // select bank 0 -> remapped to 1
	require.Equal(t, uint8(1), m.ReadROM(0x4000))
}

func TestMBC3RTCLatch(t *testing.T) {
	rom := makeROM(0x13, 2)
	h, _ := ParseHeader(rom)
	m := NewMBC3(rom, h)

	start := time.Unix(0, 0)
	cur := start
	m.SetClock(start, func() time.Time { return cur })

	m.WriteROM(0x6000, 0x00)
	m.WriteROM(0x6000, 0x01)
	m.WriteROM(0x4000, 0x08) // select seconds register
	require.Equal(t, uint8(0), m.ReadRAM(0xA000))

	cur = start.Add(65 * time.Second)
	m.WriteROM(0x6000, 0x00)
	m.WriteROM(0x6000, 0x01)
	m.WriteROM(0x4000, 0x08)
	require.Equal(t, uint8(5), m.ReadRAM(0xA000))

	m.WriteROM(0x4000, 0x09) // minutes
	require.Equal(t, uint8(1), m.ReadRAM(0xA000))
}

func TestMBC5RAMDisabledReadsFF(t *testing.T) {
	rom := makeROM(0x1B, 2)
	h, _ := ParseHeader(rom)
	m := NewMBC5(rom, h)
	require.Equal(t, uint8(0xFF), m.ReadRAM(0xA000))

	m.WriteROM(0x0000, 0x0A)
	m.WriteRAM(0xA000, 0x42)
	require.Equal(t, uint8(0x42), m.ReadRAM(0xA000))
}

func TestUnsupportedCartridgeTypeFails(t *testing.T) {
	rom := makeROM(0x01, 2) // MBC1, unsupported by this core
	_, err := New(rom)
	require.Error(t, err)
}

func TestBankOutOfRangeIsFatal(t *testing.T) {
	rom := makeROM(0x19, 2) // MBC5, only 2 banks
	h, _ := ParseHeader(rom)
	m := NewMBC5(rom, h)
	m.WriteROM(0x2000, 5) // select bank 5, out of range
	require.NotEmpty(t, m.Fault())
}
