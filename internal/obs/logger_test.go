package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{Level: "debug", App: "test"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger(LogConfig{Level: "bogus", Pretty: true})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestTokenFingerprint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", TokenFingerprint(""))
	assert.Equal(t, "abcdefgh", TokenFingerprint("h.p.abcdefghijk"))
	assert.Equal(t, "abc", TokenFingerprint("h.p.abc"))
	assert.Equal(t, "nodots", TokenFingerprint("nodots"))
}
