package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clouddrive/internal/webserver/weberror"
	"github.com/mdouchement/logger"
)

// NewHTTPErrorHandler is a middleware that formats rendered errors.
func NewHTTPErrorHandler(log logger.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			log.Errorf("HTTPErrorHandler: response already committed: %s", err)
			return
		}

		switch e := err.(type) {
		case *echo.HTTPError:
			err = weberror.New(e.Code, http.StatusText(e.Code))
		case *weberror.Error:
		default:
			err = weberror.Wrap(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
		}

		code := weberror.StatusCode(err)
		if code >= http.StatusInternalServerError {
			log.Error(err)
		} else {
			log.Debug(err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, err)
		}
		if err != nil {
			log.Errorf("HTTPErrorHandler: %s", err)
		}
	}
}
