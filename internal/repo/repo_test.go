package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/pkg/db"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
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

func newTestRepo(t *testing.T) (*GormRepo, *testClock) {
	t.Helper()

	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewGormRepo(initTestDB(t))
	r.Now = clock.Now
	return r, clock
}

func record(token, jti, username string, exp time.Time) models.RefreshToken {
	return models.RefreshToken{Token: token, JTI: jti, Username: username, ExpiresAt: exp.Unix()}
}
