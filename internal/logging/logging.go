// Package logging centralizes the structured-logging conventions shared
// by the engine, the store, and the HTTP surface: a context-carried
// logger, one-line operation and error records, and safe-close helpers
// for resources whose Close error is worth knowing about but never worth
// failing a request over.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey int

const loggerKey contextKey = 0

// WithLogger returns a context carrying logger, retrievable with FromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stashed by WithLogger, or slog.Default()
// if none was stashed.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// LogOperation records that a named operation completed, at info level.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// LogError records a failure at error level, attaching err alongside any
// extra attrs.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("error", err.Error()))
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelError, message, all...)
}

// LogHTTPRequest records one completed HTTP request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+4)
	all = append(all,
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs))
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", all...)
}

// SafeCloseWithLogging closes c and logs a failure to do so instead of
// returning it, for use in defer statements where the close error has
// nowhere useful to propagate.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, resource string) {
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close "+resource, err)
	}
}

// rollbacker is satisfied by *sql.Tx without importing database/sql here,
// keeping this package usable from code that doesn't otherwise touch SQL.
type rollbacker interface {
	Rollback() error
}

// SafeRollbackWithLogging rolls back tx and logs a failure to do so. Call
// it deferred immediately after BEGIN; after a prior Commit, sql.Tx
// returns sql.ErrTxDone from Rollback, which this function recognizes by
// its message and does not log.
func SafeRollbackWithLogging(tx rollbacker, logger *slog.Logger, operation string) {
	if err := tx.Rollback(); err != nil && err.Error() != "sql: transaction has already been committed or rolled back" {
		LogError(logger, "failed to rollback "+operation, err)
	}
}
