package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps godotenv from picking up a stray .env in the package dir.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, PlatformInstagram, cfg.Platform)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, SourceFiles, cfg.Source.Backend)
	assert.Equal(t, "session.txt", cfg.Source.CredentialFile)
	assert.Equal(t, "gc.txt", cfg.Source.DestinationFile)
	assert.Equal(t, "msg.txt", cfg.Source.MessageFile)
	assert.Equal(t, 60*time.Second, cfg.DelayMin)
	assert.Equal(t, 120*time.Second, cfg.DelayMax)
	assert.Equal(t, 300*time.Second, cfg.CycleDelay)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 120*time.Second, cfg.RateLimitBackoff)
	assert.Equal(t, 10*time.Second, cfg.ClientErrorBackoff)
	assert.Equal(t, 1000, cfg.MaxMessageLength)
	assert.Equal(t, StoreFile, cfg.SessionStore.Driver)
	assert.Equal(t, "session.json", cfg.SessionStore.FilePath)
	assert.True(t, cfg.HealthEnabled)
	assert.Equal(t, 10000, cfg.Port)
	assert.Empty(t, cfg.KeepAliveURL)
	assert.Equal(t, "@every 300s", cfg.KeepAliveSpec)
}

func TestLoad_Overrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLATFORM", "Telegram")
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DELAY_MIN", "100")
	t.Setenv("DELAY_MAX", "5m")
	t.Setenv("CYCLE_DELAY", "500")
	t.Setenv("PORT", "8080")
	t.Setenv("KEEPALIVE_URL", "https://example.onrender.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PlatformTelegram, cfg.Platform)
	assert.Equal(t, SourceEnv, cfg.Source.Backend)
	assert.Equal(t, 100*time.Second, cfg.DelayMin)
	assert.Equal(t, 5*time.Minute, cfg.DelayMax)
	assert.Equal(t, 500*time.Second, cfg.CycleDelay)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://example.onrender.com", cfg.KeepAliveURL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("MAX_RETRIES=5\n"), 0o600))
	t.Setenv("MAX_RETRIES", "")
	require.NoError(t, os.Unsetenv("MAX_RETRIES"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoad_ZeroRetriesAccepted(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MAX_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"platform":       {"PLATFORM": "myspace"},
		"source":         {"CONFIG_SOURCE": "ftp"},
		"delay range":    {"DELAY_MIN": "200", "DELAY_MAX": "100"},
		"delay garbage":  {"DELAY_MIN": "soon"},
		"retries":        {"MAX_RETRIES": "-1"},
		"message length": {"MAX_MESSAGE_LENGTH": "0"},
		"store":          {"SESSION_STORE": "floppy"},
		"postgres url":   {"SESSION_STORE": "postgres", "DATABASE_URL": ""},
		"health flag":    {"HEALTH_ENABLED": "maybe"},
		"port":           {"PORT": "http"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
