package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/edu_platform/internal/authlog"
	"github.com/Skotchmaster/edu_platform/internal/credentials"
	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/internal/repo"
	"github.com/Skotchmaster/edu_platform/pkg/identity"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	"github.com/Skotchmaster/edu_platform/pkg/metrics"
	"github.com/Skotchmaster/edu_platform/pkg/tokens"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidOrRevokedToken = errors.New("invalid or revoked refresh token")

type Authenticator interface {
	Verify(username, password string) (identity.Identity, error)
}

type Ledger interface {
	Persist(ctx context.Context, rec models.RefreshToken) error
	FindActive(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	Rotate(ctx context.Context, old string, next models.RefreshToken) error
}

type AccessDenier interface {
	Deny(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthService struct {
	Credentials Authenticator
	Codec       *tokens.Codec
	Ledger      Ledger
	Denylist    AccessDenier
	Events      authlog.Recorder

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Identity     identity.Identity
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *AuthService) record(ctx context.Context, ev models.AuthEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Record(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("authlog_record_failed", "type", ev.Type, "error", err)
	}
}

func (s *AuthService) issuePair(id identity.Identity) (*TokenPair, *tokens.Claims, error) {
	access, accessClaims, err := s.Codec.IssueAccess(id, s.accessTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshClaims, err := s.Codec.IssueRefresh(id, s.refreshTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessClaims.ExpiresAt.Time,
		RefreshExp:   refreshClaims.ExpiresAt.Time,
		Identity:     id,
	}, refreshClaims, nil
}

func ledgerRecord(token string, c *tokens.Claims) models.RefreshToken {
	return models.RefreshToken{
		Token:     token,
		JTI:       c.ID,
		Username:  c.Subject,
		CreatedAt: c.IssuedAt.Time.UTC(),
		ExpiresAt: c.ExpiresAt.Time.Unix(),
	}
}

// Login verifies the credentials and mints a token pair. Persisting the
// refresh token is best-effort: on a storage failure the login still
// succeeds and that refresh token is never accepted later.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	id, err := s.Credentials.Verify(username, password)
	if err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid username or password")
		metrics.RecordLogin("invalid_credentials")
		s.record(ctx, models.AuthEvent{Type: authlog.EventLoginFailed, Username: username, Status: 400})
		return nil, credentials.ErrInvalidCredentials
	}

	pair, refreshClaims, err := s.issuePair(id)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		metrics.RecordLogin("error")
		return nil, err
	}

	if err := s.Ledger.Persist(ctx, ledgerRecord(pair.RefreshToken, refreshClaims)); err != nil {
		l.Error("ledger_error", "op", "persist", "error", err)
		metrics.RecordLedgerError("persist")
	}

	l.Info("login_successful", "role", id.Role)
	metrics.RecordLogin("success")
	s.record(ctx, models.AuthEvent{Type: authlog.EventLoginSuccess, Username: username, Status: 200})
	return pair, nil
}

// Refresh exchanges an active refresh token for a new pair and retires the
// old token. Every rejection is ErrInvalidOrRevokedToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	reject := func(reason string, err error) (*TokenPair, error) {
		l.Warn("refresh_failed", "status", 401, "reason", reason, "error", err)
		metrics.RecordRefresh("rejected")
		s.record(ctx, models.AuthEvent{Type: authlog.EventRefreshFailed, Status: 401})
		return nil, ErrInvalidOrRevokedToken
	}
	ledgerFailure := func(op string, err error) (*TokenPair, error) {
		l.Error("ledger_error", "op", op, "error", err)
		metrics.RecordLedgerError(op)
		return reject("ledger_unavailable", err)
	}

	claims, err := s.Codec.DecodeRefresh(refreshToken)
	if err != nil {
		return reject("invalid_token", err)
	}
	id, err := claims.Identity()
	if err != nil {
		return reject("invalid_claims", err)
	}
	l = l.With("username", id.Username)

	var se *repo.StorageError
	rec, err := s.Ledger.FindActive(ctx, refreshToken)
	switch {
	case errors.As(err, &se):
		return ledgerFailure("find_active", err)
	case err != nil:
		return reject("not_active", err)
	case rec.Username != id.Username:
		return reject("subject_mismatch", nil)
	}

	pair, next, err := s.issuePair(id)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		metrics.RecordRefresh("error")
		return nil, err
	}

	if err := s.Ledger.Rotate(ctx, refreshToken, ledgerRecord(pair.RefreshToken, next)); err != nil {
		if errors.As(err, &se) {
			return ledgerFailure("rotate", err)
		}
		return reject("already_rotated", err)
	}

	l.Info("refresh_successful")
	metrics.RecordRefresh("success")
	s.record(ctx, models.AuthEvent{Type: authlog.EventRefresh, Username: id.Username, Status: 200})
	return pair, nil
}

// LogOut revokes the refresh token and denylists the access token, for
// whichever of the two is given. It is idempotent and never fails.
func (s *AuthService) LogOut(ctx context.Context, refreshToken, accessToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	var username string

	if refreshToken != "" {
		if c, err := s.Codec.DecodeRefresh(refreshToken); err == nil {
			username = c.Subject
		}
		if err := s.Ledger.Revoke(ctx, refreshToken); err != nil {
			l.Error("ledger_error", "op", "revoke", "error", err)
			metrics.RecordLedgerError("revoke")
		}
	}

	if accessToken != "" && s.Denylist != nil {
		if c, err := s.Codec.DecodeAccess(accessToken); err == nil {
			username = c.Subject
			if err := s.Denylist.Deny(ctx, c.ID, c.ExpiresAt.Time); err != nil {
				l.Error("ledger_error", "op", "deny", "error", err)
				metrics.RecordLedgerError("deny")
			}
		}
	}

	l.Info("logout", "username", username, "had_refresh", refreshToken != "", "had_access", accessToken != "")
	metrics.RecordLogout()
	s.record(ctx, models.AuthEvent{Type: authlog.EventLogout, Username: username, Status: 200})
}
