package reqlog

import (
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/format"
)

// Option customizes a Middleware beyond what Config expresses.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	loggerConfig   *logging.Config
	loggerProvider log.LoggerProvider
	format         format.Func
	level          LevelFunc
	includes       IncludesFunc
	genReqID       GenReqIDFunc
	noReqID        bool
}

// WithLogger sets the sink. Without it New builds one from logging.NewLogger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLoggerConfig configures the default sink.
func WithLoggerConfig(cfg *logging.Config) Option {
	return func(o *options) {
		o.loggerConfig = cfg
	}
}

// WithLoggerProvider sends default sink output to OpenTelemetry as well,
// subject to the logger config's otel output flag.
func WithLoggerProvider(p log.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = p
	}
}

// WithFormatFunc replaces the template with a custom render function.
func WithFormatFunc(fn format.Func) Option {
	return func(o *options) {
		o.format = fn
	}
}

// WithLevelFunc overrides level selection.
func WithLevelFunc(fn LevelFunc) Option {
	return func(o *options) {
		o.level = fn
	}
}

// WithIncludesFunc adds fields to every structured record.
func WithIncludesFunc(fn IncludesFunc) Option {
	return func(o *options) {
		o.includes = fn
	}
}

// WithRequestIDGenerator overrides the configured generator.
func WithRequestIDGenerator(fn GenReqIDFunc) Option {
	return func(o *options) {
		o.genReqID = fn
	}
}

// WithoutRequestID disables request ids regardless of config.
func WithoutRequestID() Option {
	return func(o *options) {
		o.noReqID = true
	}
}
