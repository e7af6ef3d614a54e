package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateCookie(t *testing.T) {
	t.Parallel()

	c := CreateCookie("edu_refresh", "tok", "/", 7*24*time.Hour, false)
	assert.Equal(t, "edu_refresh", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestDeleteCookie(t *testing.T) {
	t.Parallel()

	c := DeleteCookie("edu_refresh", "/", true)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Contains(t, c.String(), "Max-Age=0")
}
