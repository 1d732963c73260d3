package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/hivestore/configs"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.log")

	logger, level, err := New(configs.LogConfig{Level: "warn", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("cart snapshot discarded")
	level.SetLevel(zapcore.DebugLevel)
	logger.Debug("now visible")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "cart snapshot discarded")
	assert.Contains(t, string(data), "now visible")
	assert.Contains(t, string(data), `"logger":"hivestore"`)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []configs.LogConfig{
		{Level: "loud"},
		{Level: "info", Format: "xml"},
		{Level: "info", Format: "json", Output: "syslog"},
		{Level: "info", Format: "json", Output: "file"},
	}
	for _, cfg := range cases {
		_, _, err := New(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestNewConsole(t *testing.T) {
	logger, level, err := New(configs.LogConfig{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	assert.NotNil(t, logger)
}
