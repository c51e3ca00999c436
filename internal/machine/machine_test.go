package machine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gomeboy/internal/clock"
	"github.com/thelolagemann/gomeboy/internal/log"
)

// fakeLoader implements Loader entirely in memory, for tests.
type fakeLoader struct {
	rom     []byte
	bios    []byte
	battery []byte
	saved   []byte
}

func (l *fakeLoader) LoadROM() ([]byte, error)     { return l.rom, nil }
func (l *fakeLoader) LoadBIOS() ([]byte, error)    { return l.bios, nil }
func (l *fakeLoader) LoadBattery() ([]byte, error) { return l.battery, nil }
func (l *fakeLoader) SaveBattery(data []byte) error {
	l.saved = append([]byte(nil), data...)
	return nil
}

func makeROMOnlyImage(hasBattery bool) []byte {
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x00 // ROM only, no battery
	if hasBattery {
		rom[0x147] = 0x13 // MBC3+RAM+BATTERY
	}
	rom[0x148] = 0x00
	rom[0x149] = 0x03 // 32KiB RAM

	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	rom[0x14D] = sum
	return rom
}

func TestResetWithoutBootROMSeedsFakeBootState(t *testing.T) {
	loader := &fakeLoader{rom: makeROMOnlyImage(false)}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())

	require.Equal(t, uint16(0x0100), m.CPU.PC)
	require.Equal(t, uint16(0xFFFE), m.CPU.SP)
}

func TestRequestNextFrameReturnsSameFrameUntilNewOnePublished(t *testing.T) {
	loader := &fakeLoader{rom: makeROMOnlyImage(false)}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())

	first := m.RequestNextFrame()
	second := m.RequestNextFrame()
	require.Equal(t, first, second)
}

func TestWriteBatteryIsNoOpWithoutBatteryHeader(t *testing.T) {
	loader := &fakeLoader{rom: makeROMOnlyImage(false)}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())
	require.NoError(t, m.WriteBattery())
	require.Nil(t, loader.saved)
}

func TestWriteBatteryPersistsCartridgeRAMWhenHeaderHasBattery(t *testing.T) {
	loader := &fakeLoader{rom: makeROMOnlyImage(true)}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())

	m.Bus.Cart.MBC.WriteROM(0x0000, 0x0A) // enable external RAM
	m.Bus.Cart.MBC.WriteRAM(0xA000, 0x7A)
	require.NoError(t, m.WriteBattery())
	require.Equal(t, uint8(0x7A), loader.saved[0])
}

func TestIllegalOpcodeBreaksTheClockWithPostMortem(t *testing.T) {
	rom := makeROMOnlyImage(false)
	rom[0x0100] = 0xD3 // illegal opcode, right where PC starts
	loader := &fakeLoader{rom: rom}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())

	stop := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond) // comfortably past one sleep cycle
		close(stop)
	}()
	m.RunEventLoop(stop)

	require.Equal(t, clock.StateDead, m.Clock.State())
	require.NotEmpty(t, m.Clock.PostMortem())
	require.True(t, m.CPU.Dead())
}

func TestNotifyVBlankFiresThroughToMachine(t *testing.T) {
	loader := &fakeLoader{rom: makeROMOnlyImage(false)}
	m := New(loader, log.NewNull())
	require.NoError(t, m.Reset())

	fired := false
	m.SetNotifyVBlank(func() { fired = true })

	// drive enough T-states for one full frame (70224 T-states/frame).
	for i := 0; i < 70300; i++ {
		m.CPU.Step()
		if fired {
			break
		}
	}
	require.True(t, fired)
}
