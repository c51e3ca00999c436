package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNullLoggerDiscardsEverythingWithoutPanicking(t *testing.T) {
	l := NewNull()
	l.Infof("reset: %s", "cartridge")
	l.Errorf("load failed: %s", "bad header")
	l.Debugf("tick %d", 4)
}

func TestNewReturnsALogrusBackedLoggerWithPlainFormatting(t *testing.T) {
	l := New()
	impl, ok := l.(*logger)
	require.True(t, ok)
	require.NotNil(t, impl.Logger)

	formatter, ok := impl.Logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	require.True(t, formatter.DisableColors)
	require.True(t, formatter.DisableTimestamp)
}
