package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	applogger "StockX/pkg/logger"
)

// internalEnvelope mirrors the API error envelope so clients parse a
// recovered panic like any other ERR_INTERNAL.
var internalEnvelope = map[string]interface{}{
	"status":  http.StatusInternalServerError,
	"message": http.StatusText(http.StatusInternalServerError),
	"data": []map[string]string{
		{"code": "ERR_INTERNAL", "message": "internal error"},
	},
}

// Recover logs a handler panic with its stack and answers 500. Nothing is
// written when the handler already committed a response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				l.Error("panic recovered",
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("method", c.Request().Method),
					applogger.String("route", c.Path()),
					applogger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, internalEnvelope)
			}()
			return next(c)
		}
	}
}
