package reqlog

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/format"
)

// Middleware logs one record per HTTP request. Build it with New.
type Middleware struct {
	cfg      Config
	sink     *zap.Logger
	owned    *logging.Logger
	format   format.Func
	level    LevelFunc
	filter   *Filter
	genReqID GenReqIDFunc
	skip     map[string]bool
}

// New validates cfg, compiles the template once and resolves the sink. A nil
// cfg means NewDefaultConfig.
func New(cfg *Config, opts ...Option) (*Middleware, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Middleware{
		cfg:    *cfg,
		format: o.format,
		level:  o.level,
		filter: NewFilter(cfg.Excludes, cfg.Obfuscate, cfg.ObfuscatePlaceholder, o.includes),
	}
	if m.format == nil {
		m.format = format.Compile(cfg.Format)
	}
	if m.level == nil {
		m.level = DefaultLevel
	}

	if cfg.RequestID.Enabled && !o.noReqID {
		m.genReqID = o.genReqID
		if m.genReqID == nil {
			m.genReqID = generatorFor(cfg.RequestID.Generator)
		}
	}

	if len(cfg.SkipPaths) > 0 {
		m.skip = make(map[string]bool, len(cfg.SkipPaths))
		for _, p := range cfg.SkipPaths {
			m.skip[p] = true
		}
	}

	m.sink = o.logger
	if m.sink == nil {
		owned, err := newDefaultSink(cfg.Name, o)
		if err != nil {
			return nil, err
		}
		m.owned = owned
		m.sink = owned.Underlying()
	}

	return m, nil
}

// newDefaultSink builds the sink used when none is injected. Sampling is off:
// every request is recorded.
func newDefaultSink(name string, o options) (*logging.Logger, error) {
	lcfg := logging.NewDefaultConfig()
	if o.loggerConfig != nil {
		copied := *o.loggerConfig
		lcfg = &copied
	} else {
		lcfg.Sampling.Enabled = false
	}
	if lcfg.Name == "" {
		lcfg.Name = name
	}
	if lcfg.Name == "" {
		lcfg.Name = DefaultName
	}

	l, err := logging.NewLogger(lcfg, o.loggerProvider)
	if err != nil {
		return nil, fmt.Errorf("creating default logger: %w", err)
	}
	return l, nil
}

// Logger returns the sink.
func (m *Middleware) Logger() *zap.Logger {
	return m.sink
}

// Sync flushes the default sink. It is a no-op for injected loggers, whose
// owner is responsible for flushing them.
func (m *Middleware) Sync() error {
	if m.owned == nil {
		return nil
	}
	return m.owned.Sync()
}

// Handler is HandlerWithError without an inflight error.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.HandlerWithError(nil, next)
}

// HandlerWithError wraps next and logs each request. A non-nil err is
// recorded on every request as the inflight error; it escalates the level
// and is not otherwise acted on.
func (m *Middleware) HandlerWithError(err error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipped(r) {
			next.ServeHTTP(w, r)
			return
		}

		x, r := m.begin(w.Header(), r, err)
		w = x.rec.wrap(w)

		if m.cfg.Immediate {
			m.emit(x, modeImmediate, w.Header(), err)
			next.ServeHTTP(w, r)
			return
		}

		d := arm(r.Context(), func() {
			m.emit(x, modeClose, nil, x.inflight)
		})
		defer d.finish(func() {
			m.emit(x, modeFinish, w.Header(), err)
		})
		next.ServeHTTP(w, r)
	})
}

// begin assigns the request id, binds the request logger and captures the
// request side of the exchange.
func (m *Middleware) begin(h http.Header, r *http.Request, inflight error) (*exchange, *http.Request) {
	logger := m.sink
	ctx := r.Context()

	if m.genReqID != nil {
		if id := m.genReqID(r); id != "" {
			logger = logger.With(zap.String(m.cfg.RequestID.Field, id))
			ctx = logging.WithRequestID(ctx, id)
			if m.cfg.RequestID.Header != "" {
				h.Set(m.cfg.RequestID.Header, id)
			}
		}
	}

	ctx = logging.WithLogger(ctx, logging.Wrap(logger))
	r = r.WithContext(ctx)

	return m.capture(r, logger, inflight), r
}

func (m *Middleware) skipped(r *http.Request) bool {
	return m.skip != nil && r.URL != nil && m.skip[r.URL.Path]
}
