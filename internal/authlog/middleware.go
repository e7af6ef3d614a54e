package authlog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	authmw "github.com/Skotchmaster/edu_platform/pkg/middleware/auth"
)

// Middleware records every 401 and 403 response. Recording failures are
// logged and never change the response.
func Middleware(rec Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			var typ string
			switch status {
			case http.StatusUnauthorized:
				typ = EventUnauthorized
			case http.StatusForbidden:
				typ = EventForbidden
			default:
				return err
			}

			req := c.Request()
			ev := models.AuthEvent{
				Type:              typ,
				Path:              req.URL.Path,
				Method:            req.Method,
				Status:            status,
				AuthHeaderPresent: req.Header.Get(echo.HeaderAuthorization) != "",
			}
			if id, ok := authmw.IdentityFrom(c); ok {
				ev.Username = id.Username
			}
			if rerr := rec.Record(req.Context(), ev); rerr != nil {
				logging.FromContext(req.Context()).Warn("authlog_record_failed", "type", typ, "error", rerr)
			}
			return err
		}
	}
}
