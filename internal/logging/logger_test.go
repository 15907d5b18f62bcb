package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewLogger(t *testing.T) {
	t.Run("JSON输出", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(cfgpkg.LoggingConfig{Level: "info", Format: "json"}, &buf)
		logger.Debug("hidden")
		logger.Info("frame sent", zap.String("hex", "0104004500490002"))
		require.NoError(t, logger.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "frame sent", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "0104004500490002", entry["hex"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("写入滚动文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timebox.log")
		var buf bytes.Buffer
		logger := newLogger(cfgpkg.LoggingConfig{
			Level:  "debug",
			Format: "console",
			File:   cfgpkg.LumberjackConfig{Filename: path, MaxSizeMB: 1},
		}, &buf)
		logger.Debug("to file")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
		assert.Contains(t, buf.String(), "to file")
	})
}
