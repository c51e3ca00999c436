package colorcorrect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityModePassesColorUnchanged(t *testing.T) {
	r, g, b := Correct(Identity, 0x10, 0x20, 0x30)
	require.Equal(t, uint8(0x10), r)
	require.Equal(t, uint8(0x20), g)
	require.Equal(t, uint8(0x30), b)
}

func TestFastPandocsScalesAndOffsetsFullBrightness(t *testing.T) {
	r, _, _ := Correct(FastPandocs, 0xFF, 0, 0)
	require.Equal(t, uint8(199), r) // 255*0.75+8 = 199.25
}

func TestFastPandocsZeroInputStillAddsTheFlatOffset(t *testing.T) {
	r, _, _ := Correct(FastPandocs, 0, 0, 0)
	require.Equal(t, uint8(8), r)
}

func TestMatrixBlackStaysBlack(t *testing.T) {
	r, g, b := Correct(Matrix, 0, 0, 0)
	require.Equal(t, uint8(0), r)
	require.Equal(t, uint8(0), g)
	require.Equal(t, uint8(0), b)
}

func TestMatrixNegativeCoefficientClampsToZero(t *testing.T) {
	// pure red drives the blue output through its negative br coefficient
	// (255*-0.06 = -15.3), which must clamp to 0 rather than wrap.
	_, _, b := Correct(Matrix, 255, 0, 0)
	require.Equal(t, uint8(0), b)
}
