package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/edu_platform/internal/authlog"
	"github.com/Skotchmaster/edu_platform/internal/credentials"
	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/internal/repo"
	"github.com/Skotchmaster/edu_platform/pkg/db"
	"github.com/Skotchmaster/edu_platform/pkg/identity"
	"github.com/Skotchmaster/edu_platform/pkg/tokens"
)

var (
	credsOnce sync.Once
	creds     *credentials.Store
	credsErr  error
)

func testCredentials(t *testing.T) *credentials.Store {
	t.Helper()
	credsOnce.Do(func() {
		creds, credsErr = credentials.New(credentials.DefaultEntries(), bcrypt.MinCost)
	})
	require.NoError(t, credsErr)
	return creds
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type memEvents struct {
	mu     sync.Mutex
	events []models.AuthEvent
}

func (m *memEvents) Record(_ context.Context, ev models.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	svc    *AuthService
	repo   *repo.GormRepo
	clock  *testClock
	events *memEvents
}

func newTestAuthService(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	clock := &testClock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	r := repo.NewGormRepo(gdb)
	r.Now = clock.Now
	events := &memEvents{}

	svc := &AuthService{
		Credentials: testCredentials(t),
		Codec:       tokens.NewCodec([]byte("test-jwt-secret"), []byte("test-refresh-secret")).WithClock(clock.Now),
		Ledger:      r,
		Denylist:    r,
		Events:      events,
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  7 * 24 * time.Hour,
	}
	return &testEnv{svc: svc, repo: r, clock: clock, events: events}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "teacher", "teacherpass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.True(t, env.clock.Now().Add(15*time.Minute).Equal(pair.AccessExp))
	assert.True(t, env.clock.Now().Add(7*24*time.Hour).Equal(pair.RefreshExp))

	claims, err := env.svc.Codec.DecodeAccess(pair.AccessToken)
	require.NoError(t, err)
	id, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, identity.Identity{Username: "teacher", Role: identity.RoleTeacher, TeacherID: "t1"}, id)

	rec, err := env.repo.FindActive(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "teacher", rec.Username)

	assert.Equal(t, []string{authlog.EventLoginSuccess}, env.events.types())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name, username, password string
	}{
		{"wrong password", "teacher", "wrong"},
		{"unknown user", "nobody", "teacherpass"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		pair, err := env.svc.Login(ctx, tt.username, tt.password)
		assert.Nil(t, pair, tt.name)
		assert.ErrorIs(t, err, credentials.ErrInvalidCredentials, tt.name)
	}

	var n int64
	require.NoError(t, env.repo.DB.Model(&models.RefreshToken{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAuthService_Refresh_RotatesAndIsSingleUse(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	first, err := env.svc.Login(ctx, "student", "studentpass")
	require.NoError(t, err)

	second, err := env.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.Identity, second.Identity)
	assert.Equal(t, "s1", second.Identity.StudentID)

	_, err = env.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrRevokedToken)

	third, err := env.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken, third.RefreshToken)

	assert.Equal(t, []string{
		authlog.EventLoginSuccess,
		authlog.EventRefresh,
		authlog.EventRefreshFailed,
		authlog.EventRefresh,
	}, env.events.types())
}

func TestAuthService_Refresh_Rejections(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "admin", "adminpass")
	require.NoError(t, err)

	unpersisted, _, err := env.svc.Codec.IssueRefresh(pair.Identity, time.Hour)
	require.NoError(t, err)

	foreign, _, err := tokens.NewCodec([]byte("other"), nil).IssueRefresh(pair.Identity, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "garbage"},
		{name: "access token", token: pair.AccessToken},
		{name: "never persisted", token: unpersisted},
		{name: "foreign signature", token: foreign},
	}
	for _, tt := range tests {
		_, err := env.svc.Refresh(ctx, tt.token)
		assert.ErrorIs(t, err, ErrInvalidOrRevokedToken, tt.name)
	}

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err, "rejected attempts must not consume the real token")
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "teacher", "teacherpass")
	require.NoError(t, err)

	env.clock.Advance(7 * 24 * time.Hour)
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrRevokedToken)
}

func TestAuthService_Refresh_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "student2", "student2pass")
	require.NoError(t, err)

	const callers = 10
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.svc.Refresh(ctx, pair.RefreshToken)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrInvalidOrRevokedToken):
				losses.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, callers-1, losses.Load())
}

func TestAuthService_LogOut(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "teacher", "teacherpass")
	require.NoError(t, err)

	env.svc.LogOut(ctx, pair.RefreshToken, pair.AccessToken)
	env.svc.LogOut(ctx, pair.RefreshToken, pair.AccessToken)
	env.svc.LogOut(ctx, "", "")
	env.svc.LogOut(ctx, "garbage", "garbage")

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrRevokedToken)

	claims, err := env.svc.Codec.DecodeAccess(pair.AccessToken)
	require.NoError(t, err)
	denied, err := env.repo.IsDenied(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, denied)
}

type failingLedger struct {
	persistErr error
	findErr    error
}

func (f *failingLedger) Persist(context.Context, models.RefreshToken) error { return f.persistErr }

func (f *failingLedger) FindActive(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return nil, repo.ErrTokenNotActive
}

func (f *failingLedger) Revoke(context.Context, string) error { return f.persistErr }

func (f *failingLedger) Rotate(context.Context, string, models.RefreshToken) error {
	return f.persistErr
}

func TestAuthService_PersistFailure_LoginSucceedsRefreshFails(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()
	env.svc.Ledger = &failingLedger{persistErr: &repo.StorageError{Op: "persist", Err: errors.New("disk full")}}

	pair, err := env.svc.Login(ctx, "teacher", "teacherpass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrRevokedToken)

	env.svc.LogOut(ctx, pair.RefreshToken, "")
}

func TestAuthService_LookupFailureFailsClosed(t *testing.T) {
	t.Parallel()

	env := newTestAuthService(t)
	ctx := context.Background()

	pair, err := env.svc.Login(ctx, "teacher", "teacherpass")
	require.NoError(t, err)

	env.svc.Ledger = &failingLedger{findErr: &repo.StorageError{Op: "find_active", Err: errors.New("connection reset")}}
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrRevokedToken)
}
