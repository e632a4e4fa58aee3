// Package logger defines the logging contract used by the planning core.
// Adapters live in infra/logger.
package logger

// Logger exposes leveled logging. The *w variants attach structured fields.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
