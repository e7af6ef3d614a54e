package credentials

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	pkg_hash "github.com/Skotchmaster/edu_platform/pkg/hash"
	"github.com/Skotchmaster/edu_platform/pkg/identity"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Entry is one row of the credential table. Either Password (plain, hashed
// when the store is built) or PasswordHash (bcrypt) must be set.
type Entry struct {
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password,omitempty"`
	PasswordHash string        `yaml:"password_hash,omitempty"`
	Role         identity.Role `yaml:"role"`
	StudentID    string        `yaml:"student_id,omitempty"`
	TeacherID    string        `yaml:"teacher_id,omitempty"`
}

type file struct {
	Users []Entry `yaml:"users"`
}

type account struct {
	hash string
	id   identity.Identity
}

// Store is the immutable username to credential table.
type Store struct {
	accounts  map[string]account
	dummyHash string
}

// DefaultEntries is the built-in prototype table.
func DefaultEntries() []Entry {
	return []Entry{
		{Username: "admin", Password: "adminpass", Role: identity.RoleAdmin},
		{Username: "teacher", Password: "teacherpass", Role: identity.RoleTeacher, TeacherID: "t1"},
		{Username: "student", Password: "studentpass", Role: identity.RoleStudent, StudentID: "s1"},
		{Username: "student2", Password: "student2pass", Role: identity.RoleStudent, StudentID: "s2"},
	}
}

// New validates entries and hashes plain passwords with the given bcrypt cost.
func New(entries []Entry, cost int) (*Store, error) {
	if len(entries) == 0 {
		return nil, errors.New("credentials: empty table")
	}

	s := &Store{accounts: make(map[string]account, len(entries))}
	for _, e := range entries {
		id := identity.Identity{
			Username:  e.Username,
			Role:      e.Role,
			StudentID: e.StudentID,
			TeacherID: e.TeacherID,
		}
		if err := id.Validate(); err != nil {
			return nil, fmt.Errorf("credentials: %w", err)
		}
		if _, dup := s.accounts[e.Username]; dup {
			return nil, fmt.Errorf("credentials: duplicate user %q", e.Username)
		}

		h := e.PasswordHash
		switch {
		case h != "":
			if _, err := bcrypt.Cost([]byte(h)); err != nil {
				return nil, fmt.Errorf("credentials: user %q: %w", e.Username, err)
			}
		case e.Password != "":
			var err error
			if h, err = pkg_hash.HashPasswordCost(e.Password, cost); err != nil {
				return nil, fmt.Errorf("credentials: hash %q: %w", e.Username, err)
			}
		default:
			return nil, fmt.Errorf("credentials: user %q has no password", e.Username)
		}
		s.accounts[e.Username] = account{hash: h, id: id}
	}

	dummy, err := pkg_hash.HashPasswordCost("edu-platform-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("credentials: dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Default builds the store from the built-in table.
func Default() (*Store, error) {
	return New(DefaultEntries(), bcrypt.DefaultCost)
}

// LoadFile reads a YAML table of the form `users: [{username, password_hash, role, ...}]`.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: read %s: %w", path, err)
	}
	return Parse(raw, bcrypt.DefaultCost)
}

func Parse(raw []byte, cost int) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("credentials: parse: %w", err)
	}
	return New(f.Users, cost)
}

// Verify returns the identity for a matching username and password. An
// unknown user still costs one bcrypt comparison and yields the same error
// as a wrong password.
func (s *Store) Verify(username, password string) (identity.Identity, error) {
	acc, ok := s.accounts[username]
	if !ok {
		pkg_hash.CheckPassword(s.dummyHash, password)
		return identity.Identity{}, ErrInvalidCredentials
	}
	if !pkg_hash.CheckPassword(acc.hash, password) {
		return identity.Identity{}, ErrInvalidCredentials
	}
	return acc.id, nil
}

func (s *Store) Len() int { return len(s.accounts) }
