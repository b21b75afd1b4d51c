package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GlobalLogger
	SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { GlobalLogger = prev })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, ExtractCorrelationID(context.Background()))

	id := GenerateCorrelationID()
	assert.Len(t, id, 36)
	ctx := WithCorrelationID(context.Background(), id)
	assert.Equal(t, id, ExtractCorrelationID(ctx))
}

func TestLogAsyncOperationErrorCarriesCorrelationID(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithCorrelationID(context.Background(), "req-1")

	LogAsyncOperationError(ctx, "posts/fetchPostByID", errors.New("offline"), map[string]interface{}{"id": "p1"})

	line := lastLine(t, buf)
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "posts/fetchPostByID", line["operation"])
	assert.Equal(t, "offline", line["error"])
	assert.Equal(t, "req-1", line["correlation_id"])
	assert.Equal(t, "p1", line["id"])
}

func TestThunkLoggingCanBeDisabled(t *testing.T) {
	buf := captureLogs(t)
	prev := Config
	Config.EnableThunkLogging = false
	t.Cleanup(func() { Config = prev })

	LogAsyncOperationStart(context.Background(), "posts/fetchAllPosts", nil)
	LogAsyncOperationEnd(context.Background(), "posts/fetchAllPosts", nil)
	assert.Zero(t, buf.Len())
}

func TestStoreLogger(t *testing.T) {
	buf := captureLogs(t)
	log := NewStoreLogger("profiles")

	log.LogSkipped("profiles/updateProfileFollowStatus/pending", "profile not loaded", map[string]interface{}{"followee": "p2"})
	line := lastLine(t, buf)
	assert.Equal(t, "profiles", line["slice"])
	assert.Equal(t, "profile not loaded", line["reason"])
	assert.Equal(t, "p2", line["followee"])

	log.LogReset(map[string]interface{}{"didRegisterFCMToken": true})
	line = lastLine(t, buf)
	assert.Equal(t, "store reset", line["msg"])
	assert.Equal(t, true, line["didRegisterFCMToken"])
}
