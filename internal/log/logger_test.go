package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestConsoleHandlerText(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, &Config{Format: "text"}, slog.LevelInfo)
	logger := slog.New(h)

	logger.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestConsoleHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, &Config{Format: "json"}, slog.LevelInfo)
	logger := slog.New(h)

	logger.Warn("something happened", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "something happened", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, &Config{Format: "text"}, slog.LevelWarn)
	logger := slog.New(h)

	logger.Info("filtered out")
	assert.Empty(t, buf.String())

	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	h, err := NewFileHandler(&Config{Format: "text", FilePath: path}, slog.LevelInfo)
	require.NoError(t, err)

	slog.New(h).Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
