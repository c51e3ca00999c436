package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gomeboy/internal/interrupts"
)

func TestBackgroundIndexOneRendersMidGray(t *testing.T) {
	p := New(interrupts.New(), false)
	p.Write(RegBGP, 0xE4) // standard identity palette: index N -> shade N

	// tile 0, row 0: every pixel color index 1 (low-plane all-ones, high-plane all-zero)
	p.Write(0x8000, 0xFF)
	p.Write(0x8001, 0x00)

	p.LY = 0
	p.renderScanline()

	for x := 0; x < ScreenWidth; x++ {
		require.Equal(t, [3]uint8{0xAA, 0xAA, 0xAA}, p.working[0][x], "pixel %d", x)
	}
}

func TestTripleBufferHandoffReturnsMostRecentFrame(t *testing.T) {
	p := New(interrupts.New(), false)

	_, ok := p.ConsumeFrame()
	require.False(t, ok, "no frame published yet")

	p.working[0][0] = [3]uint8{1, 2, 3}
	p.publishFrame()
	frame, ok := p.ConsumeFrame()
	require.True(t, ok)
	require.Equal(t, [3]uint8{1, 2, 3}, frame[0][0])

	// consuming again with nothing new published returns false, not a
	// stale duplicate signal.
	_, ok = p.ConsumeFrame()
	require.False(t, ok)
}

func TestVBlankNotifyFiresAfterPublish(t *testing.T) {
	p := New(interrupts.New(), false)
	fired := false
	p.SetNotifyVBlank(func() { fired = true })
	p.publishFrame()
	require.True(t, fired)
}

func TestCGBPaletteDataIsANoOpDuringMode3(t *testing.T) {
	p := New(interrupts.New(), true)
	p.STAT.Mode = ModeVRAM

	p.Write(RegBCPS, 0x00) // index select always works, even locked
	p.Write(RegBCPD, 0x55) // blocked: PPU is in mode 3
	require.Equal(t, uint8(0xFF), p.Read(RegBCPD))

	p.Write(RegOCPS, 0x00)
	p.Write(RegOCPD, 0x55)
	require.Equal(t, uint8(0xFF), p.Read(RegOCPD))

	p.STAT.Mode = ModeHBlank
	p.Write(RegBCPD, 0x55)
	require.Equal(t, uint8(0x55), p.Read(RegBCPD))

	p.Write(RegOCPD, 0x66)
	require.Equal(t, uint8(0x66), p.Read(RegOCPD))
}

func TestSTATInterruptRequestsOnLYCRisingEdge(t *testing.T) {
	irq := interrupts.New()
	p := New(irq, false)
	p.Write(RegSTAT, 0x40) // enable LYC interrupt source
	p.LY = 5
	p.Write(RegLYC, 5) // triggers the match, rising edge

	require.NotEqual(t, uint8(0), irq.Flag&(1<<interrupts.LCDFlag))
}
