package logging

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
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "warn"}, &buf)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("account has activity", "account", "Rent")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "account has activity")
	assert.Contains(t, out, "account=Rent")
	assert.NotContains(t, out, "\x1b[", "no color when not a terminal")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "acctree.log")
	var stderr bytes.Buffer

	logger, closer := New(Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1}, &stderr)
	logger.Debug("deleted account", "account", "D")
	require.NoError(t, closer.Close())

	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "deleted account", rec["msg"])
	assert.Equal(t, "D", rec["account"])
}
