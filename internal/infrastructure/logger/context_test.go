package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)

		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns noop logger when absent", func(t *testing.T) {
		logger := FromContext(context.Background())

		assert.NotNil(t, logger)
		// Must be safe to use
		logger.Info("no-op")
	})
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	enriched.Info("hello")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithActorID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithActorID(context.Background(), logger, "user-9")
	enriched.Warn("acted")

	assert.Equal(t, "user-9", GetActorID(ctx))
	assert.Equal(t, "user-9", logs.All()[0].ContextMap()["actor_id"])
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetActorID(context.Background()))
}
