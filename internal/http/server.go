// Package http is the reqlogd demo server: an echo application whose every
// request passes through the access-log middleware.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/internal/config"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

// ErrRequestedFailure is returned by /fail when no status is requested.
var ErrRequestedFailure = errors.New("requested failure")

const maxSlowDelay = 30 * time.Second

// Server provides the demo HTTP endpoints.
type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string          `koanf:"host"`
	Port            int             `koanf:"port"`
	ShutdownTimeout config.Duration `koanf:"shutdown_timeout"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
}

// NewDefaultConfig returns server defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		ShutdownTimeout: config.Duration(10 * time.Second),
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	if c.ShutdownTimeout.Duration() <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive when enabled")
	}
	return nil
}

// NewServer creates the server. access logs every request; metrics may be
// nil to skip OpenTelemetry instrumentation.
func NewServer(logger *zap.Logger, access *reqlog.Middleware, metrics *HTTPMetrics, cfg *Config) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if access == nil {
		return nil, fmt.Errorf("access log middleware is required")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(access.EchoError())
	if metrics != nil {
		e.Use(metrics.MetricsMiddleware())
	}
	if cfg.RateLimit.Enabled {
		e.Use(newIPLimiter(cfg.RateLimit).middleware())
	}

	s := &Server{
		echo:   e,
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/echo", s.handleEcho)
	s.echo.POST("/echo", s.handleEcho)
	s.echo.GET("/fail", s.handleFail)
	s.echo.GET("/slow", s.handleSlow)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// EchoResponse is the response body for /echo.
type EchoResponse struct {
	Method    string         `json:"method"`
	RequestID string         `json:"request_id,omitempty"`
	Query     map[string]any `json:"query,omitempty"`
	Body      map[string]any `json:"body,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleEcho returns the request's query and JSON body.
func (s *Server) handleEcho(c echo.Context) error {
	req := c.Request()
	resp := EchoResponse{
		Method:    req.Method,
		RequestID: reqlog.RequestIDFromContext(req.Context()),
	}

	if q := c.QueryParams(); len(q) > 0 {
		resp.Query = make(map[string]any, len(q))
		for k := range q {
			resp.Query[k] = q.Get(k)
		}
	}

	if req.Method == http.MethodPost {
		var body map[string]any
		if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
			reqlog.LoggerFromContext(req.Context()).Debug("invalid echo body", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		resp.Body = body
	}

	return c.JSON(http.StatusOK, resp)
}

// handleFail fails on purpose: with ?status=N as an HTTP error, otherwise as
// a plain error.
func (s *Server) handleFail(c echo.Context) error {
	raw := c.QueryParam("status")
	if raw == "" {
		return ErrRequestedFailure
	}
	code, err := strconv.Atoi(raw)
	if err != nil || code < 400 || code > 599 {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be between 400 and 599")
	}
	return echo.NewHTTPError(code, http.StatusText(code))
}

// handleSlow waits ?delay (a Go duration) or until the client goes away.
func (s *Server) handleSlow(c echo.Context) error {
	delay, err := time.ParseDuration(c.QueryParam("delay"))
	if err != nil || delay < 0 || delay > maxSlowDelay {
		return echo.NewHTTPError(http.StatusBadRequest, "delay must be a duration up to 30s")
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return c.JSON(http.StatusOK, map[string]string{"waited": delay.String()})
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
