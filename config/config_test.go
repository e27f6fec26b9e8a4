package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	os.Unsetenv("DB_DRIVER")

	cfg := FromEnv()
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DSN", "file:tracker.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := FromEnv()
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file:tracker.db", cfg.DB.DSN)
	assert.Equal(t, 4, cfg.DB.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadOverlaysFileThenParameter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  driver: postgres\n  dsn: host=db\nmail:\n  from: noreply@example.com\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CONFIG_SSM_PARAM", "/tracker/config")
	t.Setenv("DB_DRIVER", "sqlite")

	var asked string
	params := func(ctx context.Context, name string) ([]byte, error) {
		asked = name
		return []byte("slack:\n  token: xoxb-1\n  infoChannelId: C1\n"), nil
	}

	cfg, err := Load(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "/tracker/config", asked)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "host=db", cfg.DB.DSN)
	assert.Equal(t, "noreply@example.com", cfg.Mail.From)
	assert.Equal(t, "xoxb-1", cfg.Slack.Token)
	assert.Equal(t, "C1", cfg.Slack.InfoChannelID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "Defaults", mutate: func(c *Config) {}, ok: true},
		{name: "Unknown driver", mutate: func(c *Config) { c.DB.Driver = "oracle" }},
		{name: "Secret not base64", mutate: func(c *Config) { c.JWT.Secret = "not base64!" }},
		{name: "Empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }},
		{name: "Dev secret in production", mutate: func(c *Config) { c.Env = "production" }},
		{name: "Real secret in production", mutate: func(c *Config) { c.Env = "production"; c.JWT.Secret = "c2VjcmV0" }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			cfg.DB.Driver = "mysql"
			cfg.Env = "development"
			cfg.JWT.Secret = devSecret
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
