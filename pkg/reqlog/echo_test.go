package reqlog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestEchoError_RecordsHandlerError(t *testing.T) {
	m, tl := newTestMiddleware(t, nil)
	boom := errors.New("boom")

	var returned error
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			returned = next(c)
			return returned
		}
	})
	e.Use(m.EchoError())
	e.GET("/boom", func(c echo.Context) error { return boom })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Same(t, boom, returned)

	entry := onlyEntry(t, tl)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "boom", fields[FieldErr])
	assert.Equal(t, int64(http.StatusInternalServerError), fields[FieldStatusCode])
}

func TestEcho_HTTPErrorWithoutErrField(t *testing.T) {
	m, tl := newTestMiddleware(t, nil)

	e := echo.New()
	e.Use(m.Echo())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	entry := onlyEntry(t, tl)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.NotContains(t, entry.ContextMap(), FieldErr)
	assert.Equal(t, int64(http.StatusNotFound), entry.ContextMap()[FieldStatusCode])
}

func TestEcho_ContextAndHeaders(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.RequestID.Header = echo.HeaderXRequestID
	m, tl := newTestMiddleware(t, cfg)

	e := echo.New()
	e.Use(m.Echo())
	e.GET("/hello", func(c echo.Context) error {
		LoggerFromContext(c.Request().Context()).Info("handler")
		c.Response().Header().Set("X-Served-By", "test")
		return c.String(http.StatusOK, "hi")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

	id := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, id)

	entries := tl.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "handler", entries[0].Message)
	for _, entry := range entries {
		assert.Equal(t, id, entry.ContextMap()["req_id"])
	}

	record := entries[1].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	headers := record[FieldResHeaders].(Fields)
	assert.Equal(t, "test", headers["x-served-by"])
	assert.Equal(t, id, headers["x-request-id"])
}

func TestEcho_Immediate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Immediate = true
	cfg.Format = ":incoming :method :url"
	m, tl := newTestMiddleware(t, cfg)

	var before int
	e := echo.New()
	e.Use(m.EchoError())
	e.POST("/items", func(c echo.Context) error {
		before = tl.Len()
		return c.NoContent(http.StatusCreated)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/items", nil))

	assert.Equal(t, 1, before)
	assert.Equal(t, "--> POST /items", onlyEntry(t, tl).Message)
}

func TestEcho_SkipPaths(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SkipPaths = []string{"/health"}
	m, tl := newTestMiddleware(t, cfg)

	e := echo.New()
	e.Use(m.Echo())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Zero(t, tl.Len())
}

func TestEcho_ErrorHandlerCalls(t *testing.T) {
	tests := []struct {
		name      string
		handler   echo.HandlerFunc
		wantCalls int
		wantCode  int
	}{
		{
			name:      "uncommitted error is rendered before the record",
			handler:   func(c echo.Context) error { return errors.New("boom") },
			wantCalls: 2,
			wantCode:  http.StatusTeapot,
		},
		{
			name: "committed response is left to echo",
			handler: func(c echo.Context) error {
				if err := c.String(http.StatusAccepted, "ok"); err != nil {
					return err
				}
				return errors.New("late failure")
			},
			wantCalls: 1,
			wantCode:  http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tl := newTestMiddleware(t, nil)

			calls := 0
			e := echo.New()
			e.HTTPErrorHandler = func(err error, c echo.Context) {
				calls++
				if !c.Response().Committed {
					_ = c.NoContent(http.StatusTeapot)
				}
			}
			e.Use(m.EchoError())
			e.GET("/", tt.handler)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, int64(tt.wantCode), onlyEntry(t, tl).ContextMap()[FieldStatusCode])
		})
	}
}
