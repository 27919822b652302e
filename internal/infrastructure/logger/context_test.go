package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	require.NotNil(t, retrieved)
	// Should not panic
	retrieved.Info("test")
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not-a-logger")
	retrieved := FromContext(ctx)
	require.NotNil(t, retrieved)
	retrieved.Info("test")
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.NotNil(t, enriched)
	assert.Equal(t, enriched, FromContext(ctx))
}

func TestWithStoreID(t *testing.T) {
	logger := zap.NewNop()
	ctx, enriched := WithStoreID(context.Background(), logger, "store-abc")

	assert.Equal(t, "store-abc", GetStoreID(ctx))
	assert.NotNil(t, enriched)
}

func TestWithSessionID(t *testing.T) {
	logger := zap.NewNop()
	ctx, enriched := WithSessionID(context.Background(), logger, "sess-xyz")

	assert.Equal(t, "sess-xyz", GetSessionID(ctx))
	assert.NotNil(t, enriched)
}

func TestGetters_NotFound(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetStoreID(ctx))
	assert.Empty(t, GetSessionID(ctx))
}

func TestContextChaining(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, logger, "req-1")
	ctx, _ = WithStoreID(ctx, FromContext(ctx), "store-1")
	ctx, _ = WithSessionID(ctx, FromContext(ctx), "sess-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "store-1", GetStoreID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
}

func TestL_ReturnsContextLogger(t *testing.T) {
	cl := L(context.Background())
	require.NotNil(t, cl)
	// Should not panic on an empty context
	cl.Info("test")
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	cl := WithLogger(context.Background(), logger)
	cl.Info("hello")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "hello", recorded.All()[0].Message)
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, logger, "req-9")
	ctx = context.WithValue(ctx, StoreIDKey, "store-9")
	ctx = context.WithValue(ctx, SessionIDKey, "sess-9")

	WithLogger(ctx, logger).Info("enriched")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "store-9", fields["store_id"])
	assert.Equal(t, "sess-9", fields["session_id"])
}

func TestContextLogger_With(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithLogger(context.Background(), logger).
		With(zap.String("component", "cart")).
		Info("with fields")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "cart", recorded.All()[0].ContextMap()["component"])
}

func TestContextLogger_LogLevels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	cl := WithLogger(context.Background(), logger)

	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	assert.Equal(t, 4, recorded.Len())
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	// Should fall back to a no-op logger instead of panicking
	cl.Info("test")
}

func TestContextLogger_Zap(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), logger, "req-z")
	z := WithLogger(ctx, logger).Zap()
	z.Info("via zap")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-z", recorded.All()[0].ContextMap()["request_id"])
}
