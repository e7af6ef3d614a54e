package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("EDU_CFG_STR", "value")
	t.Setenv("EDU_CFG_INT", "42")
	t.Setenv("EDU_CFG_BAD_INT", "x")
	t.Setenv("EDU_CFG_BOOL", "true")
	t.Setenv("EDU_CFG_DUR", "15m")
	t.Setenv("EDU_CFG_SECS", "90")
	t.Setenv("EDU_CFG_BAD_DUR", "-5s")

	assert.Equal(t, "value", EnvDefault("EDU_CFG_STR", "def"))
	assert.Equal(t, "def", EnvDefault("EDU_CFG_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("EDU_CFG_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("EDU_CFG_BAD_INT", 1))
	assert.True(t, EnvBoolDefault("EDU_CFG_BOOL", false))
	assert.True(t, EnvBoolDefault("EDU_CFG_MISSING", true))
	assert.Equal(t, 15*time.Minute, EnvDurationDefault("EDU_CFG_DUR", time.Hour))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("EDU_CFG_SECS", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("EDU_CFG_BAD_DUR", time.Hour))
}
