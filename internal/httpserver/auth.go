package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/edu_platform/internal/credentials"
	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/internal/service"
	"github.com/Skotchmaster/edu_platform/internal/transport"
	jwthelp "github.com/Skotchmaster/edu_platform/pkg/jwt"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	authmw "github.com/Skotchmaster/edu_platform/pkg/middleware/auth"
)

const (
	DefaultCookieName = "edu_refresh"
	cookiePath        = "/"
	tokenTypeBearer   = "bearer"
)

type EventLog interface {
	Recent(ctx context.Context, limit int) ([]models.AuthEvent, error)
}

type AuthHTTP struct {
	Svc          *service.AuthService
	Events       EventLog
	CookieName   string
	CookieSecure bool
}

func (h *AuthHTTP) cookieName() string {
	if h.CookieName != "" {
		return h.CookieName
	}
	return DefaultCookieName
}

func (h *AuthHTTP) setRefreshCookie(c echo.Context, pair *service.TokenPair) {
	ttl := pair.RefreshExp.Sub(h.Svc.Codec.Now())
	c.SetCookie(jwthelp.CreateCookie(h.cookieName(), pair.RefreshToken, cookiePath, ttl, h.CookieSecure))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginForm
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, credentials.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "incorrect username or password")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	h.setRefreshCookie(c, pair)
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: pair.AccessToken, TokenType: tokenTypeBearer})
}

// Refresh takes the refresh token from the JSON body, falling back to the cookie.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(h.cookieName()); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token required")
	}

	pair, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrRevokedToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or revoked refresh token")
		}
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	h.setRefreshCookie(c, pair)
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: pair.AccessToken, TokenType: tokenTypeBearer})
}

// LogOut always answers 200. A malformed body is ignored in favour of the cookie.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	var req transport.RefreshRequest
	_ = c.Bind(&req)

	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(h.cookieName()); err == nil {
			token = ck.Value
		}
	}

	h.Svc.LogOut(c.Request().Context(), token, authmw.BearerToken(c.Request()))
	c.SetCookie(jwthelp.DeleteCookie(h.cookieName(), cookiePath, h.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return authmw.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, id)
}

func (h *AuthHTTP) Hello(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return authmw.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": fmt.Sprintf("Hello, %s (%s)", id.Username, id.Role)})
}

func (h *AuthHTTP) AuthLogs(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	logs, err := h.Events.Recent(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error("auth_logs_error", "handler", "auth_logs", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(logs), "logs": logs})
}
