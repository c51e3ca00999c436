package interrupts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestAndClearToggleTheFlagBit(t *testing.T) {
	s := New()
	s.Request(TimerFlag)
	require.Equal(t, uint8(1<<TimerFlag), s.Flag)

	s.Clear(TimerFlag)
	require.Equal(t, uint8(0), s.Flag)
}

func TestPendingIgnoresRequestsNotAlsoEnabled(t *testing.T) {
	s := New()
	s.Request(VBlankFlag)
	require.False(t, s.Pending(), "VBlank requested but not enabled in IE")

	s.Enable = 1 << VBlankFlag
	require.True(t, s.Pending())
}

func TestNextVectorPicksLowestSetBitRegardlessOfRequestOrder(t *testing.T) {
	s := New()
	s.Enable = 0x1F
	s.Request(JoypadFlag)
	s.Request(TimerFlag)

	vector, flag, ok := s.NextVector()
	require.True(t, ok)
	require.Equal(t, TimerFlag, flag)
	require.Equal(t, TimerVector, vector)
}

func TestNextVectorReportsNoneWhenNothingPending(t *testing.T) {
	s := New()
	s.Enable = 0x1F
	_, _, ok := s.NextVector()
	require.False(t, ok)
}

func TestFlagRegisterReadsBackWithUpperBitsSet(t *testing.T) {
	s := New()
	s.Write(FlagRegister, 0xFF)
	require.Equal(t, uint8(0x1F), s.Flag)
	require.Equal(t, uint8(0xFF), s.Read(FlagRegister))
}

func TestEnableRegisterRoundTrips(t *testing.T) {
	s := New()
	s.Write(EnableRegister, 0xA5)
	require.Equal(t, uint8(0xA5), s.Read(EnableRegister))
}
