// Package logger builds configured slog.Logger instances: JSON or text
// output, static attributes, and context-based attribute injection for
// request-scoped values.
package logger
