package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghosthand/internal/config"
)

// syncBuffer adapts a bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitializeConsoleLoggerWithColors(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	cfg := config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "HandConsole",
		Colors:      config.ColorConfig{Info: "green"},
	}
	Initialize(cfg, &buf)

	GetLogger().Info("console sink check")

	output := buf.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "console sink check")
	assert.Contains(t, output, "HandConsole")
	assert.Contains(t, output, ansiColors["green"])
	assert.Contains(t, output, ansiReset)
}

func TestInitializeJSONLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	cfg := config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "HandJSON",
	}
	Initialize(cfg, &buf)

	GetLogger().Warn("structured sink check", zap.String("unit", "7"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "log output should be valid JSON")
	assert.Equal(t, "WARN", logEntry["level"])
	assert.Equal(t, "HandJSON", logEntry["logger"])
	assert.Equal(t, "structured sink check", logEntry["msg"])
	assert.Equal(t, "7", logEntry["unit"])
}

func TestInitializeWritesLogFile(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logPath := filepath.Join(t.TempDir(), "ghosthand-test.log")
	var buf syncBuffer
	cfg := config.LoggerConfig{
		Level:   "debug",
		Format:  "json",
		LogFile: logPath,
		MaxSize: 1,
	}
	Initialize(cfg, &buf)

	GetLogger().Info("file sink check")
	Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file sink check")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second syncBuffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}, &first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"}, &second)

	GetLogger().Info("who owns me")

	assert.Contains(t, first.String(), "who owns me")
	assert.Empty(t, second.String())
}

func TestGetLoggerFallsBackBeforeInit(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback must never be the shared global instance.
	assert.Nil(t, globalLogger.Load())
}
