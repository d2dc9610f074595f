// Package logging builds the process logger: the logr API backed by zap.
package logging

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logr's V().
const (
	DEFAULT = 0
	DEBUG   = 1
)

// New returns a JSON logger writing to stderr at the given level
// (debug, info, warn or error). V(DEBUG) lines are emitted only at debug.
func New(level string) (logr.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return logr.Discard(), errors.Wrapf(err, "log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil

	z, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), errors.Wrap(err, "build zap logger")
	}
	return zapr.NewLogger(z), nil
}

// Sync flushes any buffered entries of a logger built by New.
func Sync(logger logr.Logger) {
	if u, ok := logger.GetSink().(zapr.Underlier); ok {
		_ = u.GetUnderlying().Sync()
	}
}
