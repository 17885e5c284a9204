// Package logger constructs the structured loggers passed into every value
// log subsystem via its Config.Logger field. It wraps go.uber.org/zap, the
// same logging library the rest of this codebase's subsystems were built
// around.
package logger

import "go.uber.org/zap"

// New builds a development-mode *zap.SugaredLogger named after service. It
// never returns nil: if zap's own initialization somehow fails, a no-op
// logger is returned instead so that callers never need a nil check.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}

// NewProduction builds a production-mode (JSON, sampled) *zap.SugaredLogger
// named after service, for callers that embed the value log in a long-running
// service rather than a CLI or test.
func NewProduction(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}

// Noop returns a logger that discards everything, for tests that don't care
// about log output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
