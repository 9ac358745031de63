// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
	logger    *Logger
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{
		tableName: tableName,
		logger:    GlobalLogger,
	}
}

// LogWrite logs a repository mutation (create, update, delete).
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "repository write", attrs...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// GenLogger provides structured logging for the story generation chain.
type GenLogger struct {
	logger *Logger
}

// NewGenLogger creates a logger for generation tier outcomes.
func NewGenLogger() *GenLogger {
	return &GenLogger{logger: GlobalLogger}
}

// LogTierResult records the outcome of one generation tier attempt.
func (l *GenLogger) LogTierResult(ctx context.Context, tier string, ok bool, reason string) {
	if ok {
		l.logger.InfoContext(ctx, "generation tier succeeded",
			slog.String("tier", tier),
		)
		return
	}
	l.logger.WarnContext(ctx, "generation tier failed",
		slog.String("tier", tier),
		slog.String("reason", reason),
	)
}
