package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults when config nil", func(t *testing.T) {
		logger, err := NewLogger(nil)
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "xml"
		_, err := NewLogger(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "format")
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Level = "loud"
		_, err := NewLogger(cfg)
		require.Error(t, err)
	})

	t.Run("console format accepted", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "console"
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		got, err := LevelFromString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := LevelFromString("shout")
	assert.Error(t, err)
}

func TestContextFields(t *testing.T) {
	t.Run("empty context yields no fields", func(t *testing.T) {
		assert.Empty(t, ContextFields(context.Background()))
	})

	t.Run("carries user, conversation and request IDs", func(t *testing.T) {
		ctx := context.Background()
		ctx = ContextWithUserID(ctx, "user-1")
		ctx = ContextWithConversationID(ctx, "conv-9")
		ctx = ContextWithRequestID(ctx, "req-42")

		fields := ContextFields(ctx)
		assert.Len(t, fields, 3)
		assert.Equal(t, "user-1", UserIDFromContext(ctx))
		assert.Equal(t, "conv-9", ConversationIDFromContext(ctx))
		assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	})
}
