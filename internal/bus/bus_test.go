package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gomeboy/internal/cartridge"
	"github.com/thelolagemann/gomeboy/internal/interrupts"
)

func makeROMOnlyCart(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, 0x8000) // 2 banks, no MBC
	rom[0x147] = 0x00           // ROM only
	rom[0x148] = 0x00           // 2 banks, matching len(rom)
	rom[0x149] = 0x00           // no RAM

	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	rom[0x14D] = sum

	cart, err := cartridge.New(rom)
	require.NoError(t, err)
	return cart
}

func TestWRAMEchoMirrorsBank0(t *testing.T) {
	b := New(makeROMOnlyCart(t), interrupts.New(), nil)
	b.Write(0xC010, 0x42)
	require.Equal(t, uint8(0x42), b.Read(0xE010))
}

func TestPush16Pop16RoundTrip(t *testing.T) {
	b := New(makeROMOnlyCart(t), interrupts.New(), nil)
	sp := uint16(0xFFFE)
	b.Push16(&sp, 0xBEEF)
	require.Equal(t, uint16(0xFFFC), sp)

	got := b.Pop16(&sp)
	require.Equal(t, uint16(0xBEEF), got)
	require.Equal(t, uint16(0xFFFE), sp)
}

func TestOAMUnreadableDuringActiveDMA(t *testing.T) {
	b := New(makeROMOnlyCart(t), interrupts.New(), nil)
	b.PPU.Write(0xFE00, 0x11) // seed a sprite byte directly while DMA is idle
	require.Equal(t, uint8(0x11), b.Read(0xFE00))

	b.Write(0xFF46, 0xC0) // kick off OAM DMA
	require.Equal(t, uint8(0xFF), b.Read(0xFE00), "OAM reads are blocked while a transfer is active")
}

func TestIEAndIFRegistersRouteToInterruptService(t *testing.T) {
	irq := interrupts.New()
	b := New(makeROMOnlyCart(t), irq, nil)
	b.Write(0xFFFF, 0x1F)
	require.Equal(t, uint8(0x1F), irq.Enable)
	require.Equal(t, uint8(0x1F), b.Read(0xFFFF))
}
