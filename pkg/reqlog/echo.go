package reqlog

import (
	"github.com/labstack/echo/v4"
)

// Echo returns echo middleware that logs every request. Handler errors are
// passed to the echo error handler first so the record shows the final
// status, then returned unchanged. The record carries no err field.
//
// Because the error is also returned, echo invokes HTTPErrorHandler a second
// time for it. The default handler ignores committed responses; a custom
// handler must check c.Response().Committed to avoid writing twice. When the
// handler already committed a response before failing, the middleware skips
// its own call.
func (m *Middleware) Echo() echo.MiddlewareFunc {
	return m.echo(false)
}

// EchoError is Echo plus error reporting: a handler error is recorded as the
// err field and raises the level to error. The error is returned unchanged.
func (m *Middleware) EchoError() echo.MiddlewareFunc {
	return m.echo(true)
}

func (m *Middleware) echo(recordErr bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.skipped(c.Request()) {
				return next(c)
			}

			res := c.Response()
			x, r := m.begin(res.Header(), c.Request(), nil)
			c.SetRequest(r)
			res.Writer = x.rec.wrap(res.Writer)

			if m.cfg.Immediate {
				m.emit(x, modeImmediate, res.Header(), nil)
				return next(c)
			}

			d := arm(r.Context(), func() {
				m.emit(x, modeClose, nil, nil)
			})

			err := next(c)
			if err != nil && !res.Committed {
				c.Error(err)
			}

			logged := err
			if !recordErr {
				logged = nil
			}
			d.finish(func() {
				m.emit(x, modeFinish, res.Header(), logged)
			})

			return err
		}
	}
}
