package logger_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"catalog/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.log")
	l, closer, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	l.Debug("product_created", "product_id", "p-1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"product_created"`)
	assert.Contains(t, string(data), `"product_id":"p-1"`)
}

func TestNew_Rejects(t *testing.T) {
	_, _, err := logger.New(logger.Config{Output: "syslog"})
	assert.Error(t, err)

	_, _, err = logger.New(logger.Config{Output: "file"})
	assert.Error(t, err)
}
