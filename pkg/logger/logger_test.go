package logger

import (
	"context"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupFileJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "bot.log")
	logger, closer, err := Setup(config.Log{Level: "debug", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	logger.Debug("turn finished", "state", "displayed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"turn finished"`))
	assert.True(t, strings.Contains(string(data), `"state":"displayed"`))
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Log
	}{
		{name: "level", cfg: config.Log{Level: "loud"}},
		{name: "format", cfg: config.Log{Format: "xml"}},
		{name: "output", cfg: config.Log{Output: "syslog"}},
		{name: "file without path", cfg: config.Log{Output: "file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Setup(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := Discard()
	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
