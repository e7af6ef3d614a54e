package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	l := New("debug")
	ctx := IntoContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, New("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, New("info").Enabled(ctx, slog.LevelDebug))
	assert.False(t, New("WARN").Enabled(ctx, slog.LevelInfo))
	assert.True(t, New("error").Enabled(ctx, slog.LevelError))
	assert.False(t, New("").Enabled(ctx, slog.LevelDebug))
}

func TestNewTo_WritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewTo(&buf, "warning").With("service", "edu-auth")
	l.Info("dropped")
	l.Warn("login_failed", "status", 400)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "login_failed", line["msg"])
	assert.Equal(t, "edu-auth", line["service"])
	assert.EqualValues(t, 400, line["status"])
}
