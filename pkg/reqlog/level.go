package reqlog

import (
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
)

// LevelFunc maps a finished exchange to a level name such as "info" or
// "error". Empty or unknown names fall back to info.
type LevelFunc func(status int, err error, meta Fields) string

// DefaultLevel reports error for failed requests and server errors, warn for
// client errors and info otherwise.
func DefaultLevel(status int, err error, _ Fields) string {
	switch {
	case err != nil || status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}

func resolveLevel(fn LevelFunc, status int, err error, meta Fields) zapcore.Level {
	lvl, perr := logging.LevelFromString(fn(status, err, meta))
	if perr != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
