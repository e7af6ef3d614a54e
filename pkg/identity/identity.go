package identity

import (
	"errors"
	"fmt"
)

// Role is one of the closed set of platform roles. There is no hierarchy
// between them: admin does not satisfy a teacher check.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var ErrUnknownRole = errors.New("unknown role")

var ErrInconsistentIdentity = errors.New("identity ids do not match role")

// Valid returns true when r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Identity is the caller as established from a credential or an access token.
type Identity struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	StudentID string `json:"student_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// Validate checks that the domain ids are consistent with the role:
// students carry only a student id, teachers only a teacher id, admins neither.
func (id Identity) Validate() error {
	if id.Username == "" {
		return errors.New("empty username")
	}
	if !id.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, id.Role)
	}

	var ok bool
	switch id.Role {
	case RoleStudent:
		ok = id.StudentID != "" && id.TeacherID == ""
	case RoleTeacher:
		ok = id.TeacherID != "" && id.StudentID == ""
	case RoleAdmin:
		ok = id.StudentID == "" && id.TeacherID == ""
	}
	if !ok {
		return fmt.Errorf("%w: user %q role %q", ErrInconsistentIdentity, id.Username, id.Role)
	}
	return nil
}

func (id Identity) Is(role Role) bool { return id.Role == role }
