package boot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBootROMRejectsInvalidLengths(t *testing.T) {
	require.Panics(t, func() { LoadBootROM(make([]byte, 100)) })
}

func TestLoadBootROMAcceptsDMGLength(t *testing.T) {
	raw := make([]byte, 256)
	rom := LoadBootROM(raw)
	require.NotEmpty(t, rom.Checksum())
	require.Equal(t, "unknown", rom.Model()) // all-zero bytes match no known boot ROM
}

func TestKnownChecksumResolvesToItsModelName(t *testing.T) {
	raw := make([]byte, 256)
	rom := LoadBootROM(raw)
	rom.checksum = DMG
	require.Equal(t, "Game Boy (DMG-01)", rom.Model())
}

func TestReadIndexesIntoRawBytes(t *testing.T) {
	raw := make([]byte, 256)
	raw[0x10] = 0x42
	rom := LoadBootROM(raw)
	require.Equal(t, uint8(0x42), rom.Read(0x10))
}

func TestNilROMReportsNoneModelAndEmptyChecksum(t *testing.T) {
	var rom *ROM
	require.Equal(t, "none", rom.Model())
	require.Equal(t, "", rom.Checksum())
}
