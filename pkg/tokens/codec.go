package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/edu_platform/pkg/identity"
)

// ErrInvalidToken covers every decode failure: bad signature, malformed
// structure, expiry and wrong token kind are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid token")

type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

// NewCodec returns an HS256 codec. An empty refreshSecret falls back to the
// access secret.
func NewCodec(accessSecret, refreshSecret []byte) *Codec {
	if len(refreshSecret) == 0 {
		refreshSecret = accessSecret
	}
	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		now:           time.Now,
	}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) Now() time.Time { return c.now() }

func (c *Codec) secret(kind Kind) ([]byte, error) {
	switch kind {
	case KindAccess:
		return c.accessSecret, nil
	case KindRefresh:
		return c.refreshSecret, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}

// Issue signs the identity as a token of the given kind valid for ttl. Every
// token carries a fresh jti, so two tokens for the same subject minted in the
// same second still differ.
func (c *Codec) Issue(kind Kind, id identity.Identity, ttl time.Duration) (string, *Claims, error) {
	secret, err := c.secret(kind)
	if err != nil {
		return "", nil, err
	}
	if ttl <= 0 {
		return "", nil, fmt.Errorf("non-positive ttl %s", ttl)
	}

	now := c.now()
	claims := newClaims(kind, id)
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

func (c *Codec) IssueAccess(id identity.Identity, ttl time.Duration) (string, *Claims, error) {
	return c.Issue(KindAccess, id, ttl)
}

func (c *Codec) IssueRefresh(id identity.Identity, ttl time.Duration) (string, *Claims, error) {
	return c.Issue(KindRefresh, id, ttl)
}

// Decode verifies signature, algorithm, expiry and kind. It does not consult
// any revocation state.
func (c *Codec) Decode(kind Kind, tokenStr string) (*Claims, error) {
	secret, err := c.secret(kind)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	return &claims, nil
}

func (c *Codec) DecodeAccess(tokenStr string) (*Claims, error) {
	return c.Decode(KindAccess, tokenStr)
}

func (c *Codec) DecodeRefresh(tokenStr string) (*Claims, error) {
	return c.Decode(KindRefresh, tokenStr)
}
