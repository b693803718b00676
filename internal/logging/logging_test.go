package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestWithLogger_FromContext_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_DefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestLogOperation_EmitsInfoRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogOperation(logger, "stops_inserted", slog.Int("count", 42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "stops_inserted", record["msg"])
	assert.Equal(t, float64(42), record["count"])
	assert.Equal(t, "INFO", record["level"])
}

func TestLogError_IncludesErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogError(logger, "import failed", errors.New("disk full"), slog.String("component", "store"))

	out := buf.String()
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "import failed")
	assert.Contains(t, out, `"level":"ERROR"`)
}

func TestLogHTTPRequest_IncludesMethodPathStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogHTTPRequest(logger, "POST", "/journeys", 200, 12.5)

	out := buf.String()
	assert.True(t, strings.Contains(out, `"method":"POST"`))
	assert.True(t, strings.Contains(out, `"path":"/journeys"`))
	assert.True(t, strings.Contains(out, `"status":200`))
}

type fakeCloser struct{ err error }

func (f fakeCloser) Close() error { return f.err }

func TestSafeCloseWithLogging_LogsOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	SafeCloseWithLogging(fakeCloser{err: errors.New("boom")}, logger, "response_body")

	assert.Contains(t, buf.String(), "boom")
}

func TestSafeCloseWithLogging_SilentOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	SafeCloseWithLogging(fakeCloser{}, logger, "response_body")

	assert.Empty(t, buf.String())
}

type fakeTx struct{ err error }

func (f fakeTx) Rollback() error { return f.err }

func TestSafeRollbackWithLogging_LogsRealFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	SafeRollbackWithLogging(fakeTx{err: errors.New("disk error")}, logger, "bulk_insert_stops")

	assert.Contains(t, buf.String(), "disk error")
}

func TestSafeRollbackWithLogging_IgnoresAlreadyDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	SafeRollbackWithLogging(fakeTx{err: errors.New("sql: transaction has already been committed or rolled back")}, logger, "bulk_insert_stops")

	assert.Empty(t, buf.String())
}
