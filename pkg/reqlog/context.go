package reqlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
)

// RequestIDFromContext returns the id assigned to the request, or "".
func RequestIDFromContext(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// LoggerFromContext returns the request's logger. It carries the request id
// when ids are enabled. Outside a logged request it returns a no-op logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx).Underlying()
}
