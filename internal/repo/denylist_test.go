package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenylist(t *testing.T) {
	t.Parallel()

	r, clock := newTestRepo(t)
	ctx := context.Background()

	denied, err := r.IsDenied(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, denied)

	require.NoError(t, r.Deny(ctx, "jti-1", clock.Now().Add(time.Hour)))
	require.NoError(t, r.Deny(ctx, "jti-1", clock.Now().Add(time.Hour)))

	denied, err = r.IsDenied(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, denied)

	denied, err = r.IsDenied(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, denied)
}
