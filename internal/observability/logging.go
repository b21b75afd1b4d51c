// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetLogger replaces the global logger, mainly for tests that capture output.
func SetLogger(l *slog.Logger) {
	GlobalLogger = &Logger{Logger: l}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	CorrelationID LogContextKey = "correlation_id"
)

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableDispatchLogging bool
	EnableThunkLogging    bool
}

var (
	// Config holds the current logging configuration.
	Config = LoggingConfig{
		EnableDispatchLogging: false,
		EnableThunkLogging:    true,
	}
)

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// StoreLogger provides structured logging for one slice of the client store.
type StoreLogger struct {
	slice  string
	logger *Logger
}

// NewStoreLogger creates a new StoreLogger for the given store slice.
func NewStoreLogger(slice string) *StoreLogger {
	return &StoreLogger{
		slice:  slice,
		logger: GlobalLogger,
	}
}

// LogDispatch logs an action reduced by the store.
func (l *StoreLogger) LogDispatch(action string) {
	if !Config.EnableDispatchLogging {
		return
	}
	l.logger.Debug("store dispatch",
		slog.String("slice", l.slice),
		slog.String("action", action),
	)
}

// LogSkipped logs a reducer step that was deliberately ignored.
func (l *StoreLogger) LogSkipped(action, reason string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("slice", l.slice),
		slog.String("action", action),
		slog.String("reason", reason),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.Warn("store mutation skipped", attrs...)
}

// LogReset logs a global reset applied to the slice.
func (l *StoreLogger) LogReset(preserved map[string]interface{}) {
	attrs := []any{
		slog.String("slice", l.slice),
	}
	for k, v := range preserved {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.Info("store reset", attrs...)
}

// LogAsyncOperationStart logs the start of an asynchronous operation.
func LogAsyncOperationStart(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableThunkLogging {
		return
	}
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", "async_start"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.InfoContext(ctx, "async operation started", attrs...)
}

// LogAsyncOperationEnd logs the completion of an asynchronous operation.
func LogAsyncOperationEnd(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableThunkLogging {
		return
	}
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", "async_end"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.InfoContext(ctx, "async operation completed", attrs...)
}

// LogAsyncOperationError logs an error in an asynchronous operation.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.ErrorContext(ctx, "async operation failed", attrs...)
}
