package tokens

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/edu_platform/pkg/identity"
)

// Kind separates access tokens from refresh tokens so that one can never be
// presented in place of the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Claims struct {
	Role      identity.Role `json:"role"`
	StudentID string        `json:"student_id,omitempty"`
	TeacherID string        `json:"teacher_id,omitempty"`
	Kind      Kind          `json:"typ"`
	jwt.RegisteredClaims
}

func newClaims(kind Kind, id identity.Identity) *Claims {
	return &Claims{
		Role:      id.Role,
		StudentID: id.StudentID,
		TeacherID: id.TeacherID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: id.Username,
		},
	}
}

// Identity rebuilds the caller identity carried by the token. Subject and a
// known role are required.
func (c *Claims) Identity() (identity.Identity, error) {
	if c.Subject == "" {
		return identity.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	role, err := identity.ParseRole(string(c.Role))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identity.Identity{
		Username:  c.Subject,
		Role:      role,
		StudentID: c.StudentID,
		TeacherID: c.TeacherID,
	}, nil
}
