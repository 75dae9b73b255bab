package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("DEV_USER_EMAIL", "me@localhost")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("DATABASE_DSN", "memory://")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.True(t, c.Debug)
	assert.Equal(t, "me@localhost", c.DevUserEmail)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "memory://", c.DatabaseDSN)
	assert.Equal(t, ":8000", c.EndpointAddrHTTP, "unset variables keep defaults")
}

func TestParseEnv_InvalidValuePanics(t *testing.T) {
	t.Setenv("PAGE_SIZE", "twenty")

	c := &Config{}
	require.Panics(t, func() { parseEnv(c) })
}

func TestLoadDotEnv(t *testing.T) {
	const key = "ACCOUNTS_DOTENV_CHECK"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	loadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	require.NotPanics(t, func() { loadDotEnv(filepath.Join(t.TempDir(), "absent.env")) })
}
