// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Dual output (stdout/stderr + OpenTelemetry)
//   - Automatic trace correlation (trace_id, span_id)
//   - Encoder-level secret redaction
//   - Per-level sampling (errors never sampled)
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	cfg.Name = "http"
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	logger.Info(ctx, "request processed", zap.Duration("duration", d))
//
// Output includes trace correlation when ctx carries a span:
//
//	{
//	  "ts": "2026-03-02T10:15:30Z",
//	  "level": "info",
//	  "logger": "http",
//	  "msg": "request processed",
//	  "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
//	  "span_id": "00f067aa0ba902b7",
//	  "duration": "45ms"
//	}
//
// # Levels
//
// Emit and Logger.Log write at any level, including Fatal and Panic, without
// exiting or panicking. Access-log levels are chosen per request and must
// never take the process down.
//
// # Secret Redaction
//
// The redacting encoder hides top-level fields by name and string values by
// pattern. Path-based redaction of nested request data happens before a record
// reaches the logger.
//
// # Sampling
//
// Per-level sampling prevents log floods:
//   - Trace: first 1 per tick, drop rest
//   - Debug: first 10 per tick, drop rest
//   - Info: first 100, then 1 every 10
//   - Warn: first 100, then 1 every 100
//   - Error+: never sampled
//
// Disable for access logs, where every request should be recorded:
//
//	cfg.Sampling.Enabled = false
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
//
// # Concurrency Safety
//
// Logger is safe for concurrent use. Child loggers (With, Named) are
// independent and do not affect parent or siblings.
package logging
