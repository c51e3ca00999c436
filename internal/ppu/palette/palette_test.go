package palette

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonochromeDecodesAllFourShadesFromOneRegister(t *testing.T) {
	// BGP = 0xE4 -> shade indices 3,2,1,0 for 2-bit-fields 3,2,1,0
	shades := Monochrome(0xE4)
	require.Equal(t, DMG[0], shades[0])
	require.Equal(t, DMG[1], shades[1])
	require.Equal(t, DMG[2], shades[2])
	require.Equal(t, DMG[3], shades[3])
}

func TestMonochromeAllZeroRegisterMapsEveryIndexToWhite(t *testing.T) {
	shades := Monochrome(0x00)
	for _, s := range shades {
		require.Equal(t, DMG[0], s)
	}
}

func TestCGBBankWriteIndexSetsAutoIncrementFlag(t *testing.T) {
	var bank CGBBank
	bank.WriteIndex(0x80)
	require.Equal(t, uint8(0x80|0x40), bank.ReadIndex())

	bank.WriteIndex(0x05)
	require.Equal(t, uint8(0x05|0x40), bank.ReadIndex())
}

func TestCGBBankWriteDataAutoIncrementsWhenArmed(t *testing.T) {
	var bank CGBBank
	bank.WriteIndex(0x80) // index 0, auto-increment armed
	bank.WriteData(0xAA)
	bank.WriteData(0xBB)

	require.Equal(t, uint8(0x02|0x80|0x40), bank.ReadIndex())
}

func TestCGBBankColorExpandsFifteenBitRGBToEightBitPerChannel(t *testing.T) {
	var bank CGBBank
	bank.WriteIndex(0x00) // palette 0, color 0, auto-increment off
	bank.WriteData(0x1F)  // low byte: R=0x1F (max), G bits 0-2 = 0
	bank.WriteIndex(0x01)
	bank.WriteData(0x00) // high byte: G bits 3-4 = 0, B = 0

	rgb := bank.Color(0, 0)
	require.Equal(t, uint8(0xFF), rgb[0]) // 0x1F expands to 0xFF
	require.Equal(t, uint8(0x00), rgb[1])
	require.Equal(t, uint8(0x00), rgb[2])
}

func TestCGBBankRaw15ReturnsThePackedValueUnexpanded(t *testing.T) {
	var bank CGBBank
	bank.WriteIndex(0x00)
	bank.WriteData(0xFF)
	bank.WriteIndex(0x01)
	bank.WriteData(0x7F)

	require.Equal(t, uint16(0x7FFF), bank.Raw15(0, 0))
}
