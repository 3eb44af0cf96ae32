package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no .env file is picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, "websites", cfg.Extensions.Interviewer)
	assert.Equal(t, 1, cfg.Extensions.FinalRetryAttempts)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_AUDIENCE", "mathops, advising ,")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("ENABLE_CACHE", "true")
	t.Setenv("RECOMPUTE_RETRY_DELAY", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"mathops", "advising"}, cfg.JWT.Audience)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Second, cfg.Jobs.RetryDelay)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	inTempDir(t)
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be changed in production")

	t.Setenv("JWT_SECRET", "rotated-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &Config{Port: 0, Jobs: JobsConfig{Workers: 0}, Extensions: ExtensionsConfig{FinalRetryAttempts: -1}}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT 0", "JWT_SECRET is required", "RECOMPUTE_WORKERS", "EXTENSION_F1_ATTEMPTS"} {
		assert.Contains(t, err.Error(), want)
	}
}
