package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewParsesLevel(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New("chatty")
	assert.Error(t, err)
}

func TestTranscriptMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat.txt")
	tr := NewTranscript(path)
	tr.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	tr.Log("> a red cube")
	tr.Log("Here is a red cube.")

	assert.Equal(t, []string{"[2024-05-01 12:00:00] > a red cube", "[2024-05-01 12:00:00] Here is a red cube."}, tr.Lines())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 12:00:00] > a red cube\n[2024-05-01 12:00:00] Here is a red cube.\n", string(data))

	tr.Clear()
	assert.Empty(t, tr.Lines())
}
