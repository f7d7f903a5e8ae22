package middleware

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/logger"
)

// Logger logs one line per request and tags it with a request id.
func Logger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.Must(uuid.NewV4()).String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			err := next(c)
			if err != nil {
				// Renders the error so the logged status is the one sent.
				c.Error(err)
			}

			l := log.WithField("request_id", id)
			if handler, ok := c.Get("handler_method").(string); ok {
				l = l.WithField("handler", handler)
			}
			l.Infof("%s %s %d %s %dB",
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status,
				time.Since(start),
				c.Response().Size,
			)
			return nil
		}
	}
}
