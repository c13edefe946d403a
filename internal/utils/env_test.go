package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MZ_STR", " x ")
	t.Setenv("MZ_INT", "12")
	t.Setenv("MZ_BAD_INT", "-3")
	t.Setenv("MZ_FLOAT", "2.5")
	t.Setenv("MZ_BOOL", "Yes")
	t.Setenv("MZ_SECS", "7")

	require.Equal(t, "x", Env("MZ_STR", "d"))
	require.Equal(t, "d", Env("MZ_MISSING", "d"))
	require.Equal(t, 12, EnvInt("MZ_INT", 1))
	require.Equal(t, 1, EnvInt("MZ_BAD_INT", 1))
	require.Equal(t, 2.5, EnvFloat("MZ_FLOAT", 1))
	require.True(t, EnvBool("MZ_BOOL", false))
	require.True(t, EnvBool("MZ_MISSING", true))
	require.Equal(t, 7*time.Second, EnvSeconds("MZ_SECS", time.Second))
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "mz")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DB", "")
	dsn := BuildPostgresDSNFromEnv()
	require.True(t, strings.HasPrefix(dsn, "postgres://mz:secret@db:5432/medzone?"))

	t.Setenv("PG_DSN", "postgres://other")
	require.Equal(t, "postgres://other", BuildPostgresDSNFromEnv())
}

func TestOpenRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLE", "false")
	require.Nil(t, OpenRedisFromEnv())
}
