package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Format: FormatJSON}, &buf)
	cl := ComponentLogger(l, "cache")
	cl.Debug().Str("repo", "my-plugin").Msg("hit")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cache", entry["component"])
	assert.Equal(t, "my-plugin", entry["repo"])
	assert.Equal(t, "hit", entry["message"])
}

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewLogger(Config{Level: tt.level, Format: FormatJSON}, &bytes.Buffer{})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gitupdater.log")
		result := NewLoggerWithPath(Config{Output: OutputFile, File: path})
		defer result.Close()

		assert.True(t, result.UsingFile)
		assert.Equal(t, path, result.FilePath)
		result.Logger.Info().Msg("written")
		require.NoError(t, result.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written")
	})

	t.Run("fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "gitupdater.log")
		result := NewLoggerWithPath(Config{Output: OutputFile, File: path})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: FormatJSON}, &buf)
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// A bare context yields a usable, silent logger.
	FromContext(context.Background()).Info().Msg("dropped")
}
