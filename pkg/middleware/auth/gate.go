package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/edu_platform/pkg/identity"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	"github.com/Skotchmaster/edu_platform/pkg/metrics"
	"github.com/Skotchmaster/edu_platform/pkg/tokens"
)

const (
	CtxIdentity = "identity"
	CtxClaims   = "claims"
)

var (
	ErrUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	ErrForbidden    = echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
)

// Denylist reports whether an access token id has been revoked.
type Denylist interface {
	IsDenied(ctx context.Context, jti string) (bool, error)
}

// Gate authenticates bearer access tokens and enforces role checks.
type Gate struct {
	Codec    *tokens.Codec
	Denylist Denylist
}

func NewGate(codec *tokens.Codec, denylist Denylist) *Gate {
	return &Gate{Codec: codec, Denylist: denylist}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Authenticate decodes an access token and checks it against the denylist.
// Every failure, including a denylist storage error, is ErrUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (identity.Identity, *tokens.Claims, error) {
	l := logging.FromContext(ctx).With("mw", "auth.gate")
	if bearer == "" {
		return identity.Identity{}, nil, ErrUnauthorized
	}

	claims, err := g.Codec.DecodeAccess(bearer)
	if err != nil {
		l.Debug("gate_rejected", "reason", "invalid_token", "error", err)
		return identity.Identity{}, nil, ErrUnauthorized
	}
	id, err := claims.Identity()
	if err != nil {
		l.Debug("gate_rejected", "reason", "bad_claims", "error", err)
		return identity.Identity{}, nil, ErrUnauthorized
	}

	if g.Denylist != nil {
		denied, err := g.Denylist.IsDenied(ctx, claims.ID)
		if err != nil {
			l.Error("ledger_error", "op", "is_denied", "error", err)
			metrics.RecordLedgerError("is_denied")
			return identity.Identity{}, nil, ErrUnauthorized
		}
		if denied {
			l.Info("gate_rejected", "reason", "denylisted", "username", id.Username)
			return identity.Identity{}, nil, ErrUnauthorized
		}
	}
	return id, claims, nil
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	metrics.RecordGateDenial("401")
	return ErrUnauthorized
}

func forbidden() error {
	metrics.RecordGateDenial("403")
	return ErrForbidden
}

// RequireAuth rejects requests without a valid bearer access token and
// stores the caller's identity in the echo context.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, claims, err := g.Authenticate(c.Request().Context(), BearerToken(c.Request()))
		if err != nil {
			return unauthorized(c)
		}
		c.Set(CtxIdentity, id)
		c.Set(CtxClaims, claims)
		return next(c)
	}
}

func IdentityFrom(c echo.Context) (identity.Identity, bool) {
	id, ok := c.Get(CtxIdentity).(identity.Identity)
	return id, ok
}

// CheckRole is an exact role match. There is no hierarchy between roles.
func CheckRole(id identity.Identity, role identity.Role) error {
	if id.Role != role {
		return ErrForbidden
	}
	return nil
}

// RequireRole must run after RequireAuth.
func RequireRole(role identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return unauthorized(c)
			}
			if err := CheckRole(id, role); err != nil {
				logging.FromContext(c.Request().Context()).Info("gate_forbidden",
					"username", id.Username, "role", id.Role, "required", role)
				return forbidden()
			}
			return next(c)
		}
	}
}

// RequireSelfOr lets through callers holding one of roles, and students whose
// student id equals the path parameter param.
func RequireSelfOr(param string, roles ...identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return unauthorized(c)
			}
			for _, r := range roles {
				if id.Role == r {
					return next(c)
				}
			}
			if id.Role == identity.RoleStudent && id.StudentID != "" && id.StudentID == c.Param(param) {
				return next(c)
			}
			logging.FromContext(c.Request().Context()).Info("gate_forbidden",
				"username", id.Username, "role", id.Role, "param", c.Param(param))
			return forbidden()
		}
	}
}
