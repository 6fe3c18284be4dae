// Package logger defines the structured logging contract for the Aegis
// pipeline. The concrete zap-backed implementation lives in
// internal/infrastructure/monitoring; this package only carries the interface
// so domain and application code never import a logging library directly.
package logger

import "context"

// Fields is a set of structured key-value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the pipeline-wide structured logging interface. Implementations
// extract request/trace identity from the context when present.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields returns a derived logger carrying additional base fields.
	WithFields(fields Fields) Logger

	// WithComponent returns a derived logger tagged with a component name.
	WithComponent(component string) Logger
}
