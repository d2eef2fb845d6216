package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/shared/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestInit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.log")

	err := Init(&config.LoggerConfig{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	NewLogger().Named("sync").Infow("permission keys synced", "role_id", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"permission keys synced"`)
	assert.Contains(t, string(data), `"logger":"sync"`)
	assert.Contains(t, string(data), `"role_id":3`)
}
