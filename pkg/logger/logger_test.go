package logger

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

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
}

func TestLogPurchaseReserved(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))

	l.LogPurchaseReserved(context.Background(), "AII123456", 7, 2, 300000)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Purchase Reserved", entry["msg"])
	assert.Equal(t, "AII123456", entry["order_id"])
	assert.EqualValues(t, 7, entry["match_id"])
	assert.EqualValues(t, 300000, entry["total_price"])
}

func TestErrorWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil)).WithRequestID("req-1")

	l.ErrorWithContext(context.Background(), "publish failed", errors.New("broker down"), map[string]interface{}{"topic": "n"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "broker down", entry["error"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "n", entry["topic"])
}
