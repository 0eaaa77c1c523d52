package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time
	limit       rate.Limit
	burst       int
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	return &ipLimiter{
		limiters:    make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
		limit:       rate.Limit(cfg.RPS),
		burst:       cfg.Burst,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop idle limiters every hour to bound memory
	if time.Since(l.lastCleanup) > time.Hour {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// middleware rejects requests over the client's budget with 429.
func (l *ipLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.get(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
