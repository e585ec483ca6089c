package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	orig := L
	origDefault := slog.Default()
	t.Cleanup(func() {
		L = orig
		slog.SetDefault(origDefault)
	})
}

func TestInitJSON(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(&buf, "debug", "JSON")

	assert.True(t, L.Enabled(context.Background(), slog.LevelDebug))
	L.Info("contact fetched", "vid", 42)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "contact fetched", rec["msg"])
	assert.Equal(t, float64(42), rec["vid"])
}

func TestInitTextFiltersBelowLevel(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(&buf, "warn", "text")

	L.Debug("hidden")
	L.Info("hidden")
	L.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestContextLogger(t *testing.T) {
	restoreGlobal(t)
	Init(&bytes.Buffer{}, "info", "text")

	assert.Same(t, L, FromContext(context.Background()))

	scoped := L.With("request_id", "12345")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}
