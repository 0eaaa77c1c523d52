package logging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestIntegration_AccessLoggerPipeline(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Name = "http"
	cfg.Level = TraceLevel
	cfg.Format = "console"
	cfg.Output = OutputConfig{Stderr: true}
	cfg.Sampling.Enabled = false

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req_456")
	access := logger.With(zap.String("req_id", RequestIDFromContext(ctx)))

	for _, lvl := range []zapcore.Level{TraceLevel, zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel} {
		access.Log(ctx, lvl, "GET /items 200", zap.Duration("response-time", 45*time.Millisecond))
	}
	access.Log(ctx, zapcore.ErrorLevel, "POST /items 500", zap.Error(fmt.Errorf("boom")))
	access.Log(ctx, zapcore.FatalLevel, "POST /items 503")

	// the encoder hides this value
	access.Info(ctx, "auth", zap.String("authorization", "Bearer secret"))

	// stderr sync errors are environment dependent
	_ = logger.Sync()
}

func TestIntegration_ContextFieldInjection(t *testing.T) {
	tl := NewTestLogger()

	provider := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	ctx, span := provider.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	tl.Info(ctx, "request", zap.String("method", "GET"))

	tl.AssertLogged(t, zapcore.InfoLevel, "request")
	tl.AssertTraceCorrelation(t, "request")
	tl.AssertField(t, "request", "trace_sampled", true)
	tl.AssertField(t, "request", "method", "GET")
}

func TestIntegration_LoggerThroughContext(t *testing.T) {
	tl := NewTestLogger()

	ctx := WithLogger(context.Background(), tl.With(zap.String("req_id", "abc")))
	FromContext(ctx).Warn(ctx, "slow request")

	tl.AssertLogged(t, zapcore.WarnLevel, "slow request")
	tl.AssertField(t, "slow request", "req_id", "abc")
}
