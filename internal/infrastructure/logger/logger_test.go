package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, cfg.TimeFormat, prod.TimeFormat)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("catalog loaded", zap.Int("products", 3))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"catalog loaded"`)
	assert.Contains(t, line, `"products":3`)
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)

	l.Info("forwarded")
	assert.Equal(t, 1, recorded.FilterMessage("forwarded").Len())
}
