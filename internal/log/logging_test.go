package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestSetupLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, closers, err := SetupLogger(&buf, "warn", "")
	require.NoError(t, err)
	assert.Empty(t, closers)

	logger.Info("hidden")
	logger.Warn("shown", "pos", "a.go:1:2")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "pos=a.go:1:2")
}

func TestSetupLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := SetupLogger(&buf, "trace", "")
	require.NoError(t, err)
	logger.Log(context.Background(), LevelTrace, "very verbose")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestSetupLogger_File(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "stripgo.log")
	logger, closers, err := SetupLogger(&buf, "error", logFile)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug("only in file")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}
	assert.Empty(t, buf.String())
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"only in file"`)
}

func TestMultiHandler(t *testing.T) {
	var all, warn bytes.Buffer
	h := MultiHandler{hs: []slog.Handler{
		slog.NewTextHandler(&all, &slog.HandlerOptions{Level: LevelTrace}),
		LevelFilter{
			pass: func(l slog.Level) bool { return l >= slog.LevelWarn },
			h:    slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: LevelTrace}),
		},
	}}
	ctx := context.Background()
	assert.True(t, h.Enabled(ctx, slog.LevelDebug))
	assert.False(t, h.hs[1].Enabled(ctx, slog.LevelDebug))

	logger := slog.New(h).With("package", "example").WithGroup("decl")
	logger.Debug("checked", "name", "Event")
	logger.Warn("ignored", "name", "Rename")

	assert.Contains(t, all.String(), "msg=checked package=example decl.name=Event")
	assert.Contains(t, all.String(), "msg=ignored package=example decl.name=Rename")
	assert.NotContains(t, warn.String(), "checked")
	assert.Contains(t, warn.String(), "msg=ignored package=example decl.name=Rename")
}
