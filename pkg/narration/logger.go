package narration

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a human-readable logger on stderr. Each -v enables one more logr V-level;
// with none, only errors get through, as the narration is on stdout.
func NewLogger(verbosity int) logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if verbosity <= 0 {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	} else {
		// logr's V(n) is zap's level -n
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	}

	zl, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return zapr.NewLogger(zl)
}
