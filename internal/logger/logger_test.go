package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warn", Format: "json", Out: &buf})
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Str("lab_id", "lab-1").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "lab-1", event["lab_id"])
	assert.Equal(t, "shown", event["message"])
	assert.Contains(t, event, "time")
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Out: &buf})
	require.NoError(t, err)

	l.Info().Int("periods", 22).Msg("starting")
	assert.Contains(t, buf.String(), "starting")
	assert.Contains(t, buf.String(), "periods=")
}

func TestNew_WritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	l, err := New(Options{Format: "json", File: path, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, path, l.GetLogPath())

	l.Info().Msg("to both")
	require.NoError(t, l.Close())
	assert.Empty(t, l.GetLogPath())
	assert.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestSessionFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "wfo_lab_7_2024-03-09.log"), SessionFileName("lab/7", at))
	assert.Equal(t, filepath.Join("logs", "wfo_session_2024-03-09.log"), SessionFileName("", at))
}
