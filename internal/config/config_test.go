package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "hard", cfg.Guard.Mode)
	assert.False(t, cfg.Guard.Enabled)
	assert.Equal(t, 30, cfg.Memory.RetentionDays)
	assert.Equal(t, 2, cfg.Memory.MaxRejections)
	assert.Equal(t, 5, cfg.Memory.MaxSubjects)
	assert.Equal(t, 10, cfg.Memory.MaxFingerprints)
	assert.Equal(t, 5, cfg.Memory.MaxFeedback)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
guard:
  enabled: true
  mode: soft
memory:
  retention_days: 7
  max_rejections: 3
storage:
  redis_addr: localhost:6379
  data_dir: /var/lib/guard
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Guard.Enabled)
	assert.Equal(t, "soft", cfg.Guard.Mode)
	assert.Equal(t, 7, cfg.Memory.RetentionDays)
	assert.Equal(t, 3, cfg.Memory.MaxRejections)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "/var/lib/guard", cfg.Storage.DataDir)
	// Unset fields still receive defaults
	assert.Equal(t, 5, cfg.Memory.MaxSubjects)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GUARD_ENABLED", "true")
	t.Setenv("GUARD_MODE", "soft")
	t.Setenv("MAX_REJECTIONS", "4")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DATABASE_URL", "postgres://guard@db/guard")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.True(t, cfg.Guard.Enabled)
	assert.Equal(t, "soft", cfg.Guard.Mode)
	assert.Equal(t, 4, cfg.Memory.MaxRejections)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "postgres://guard@db/guard", cfg.Storage.DatabaseURL)
}

func TestRetentionDuration(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*24.0, cfg.Memory.Retention().Hours())
}
