package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"drivequest/internal/auth"
	"drivequest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, CatalogFromFile, cfg.Catalog.Source)
	assert.Equal(t, 40.0, cfg.License.RequiredHours)
	assert.True(t, cfg.Location.Simulate)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
catalog:
  ttl: 30s
auth:
  credentials:
    - username: teen
      password: pw
      role: student
location:
  route:
    - {latitude: 33.1, longitude: -84.2, speed: 3}
`)
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "defaults survive partial files")
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, TTLDuration(cfg.Catalog.TTL, time.Minute))
	require.Len(t, cfg.Auth.Credentials, 1)
	assert.Equal(t, domain.RoleStudent, cfg.Auth.Credentials[0].Role)
	require.Len(t, cfg.Location.Route, 1)
	assert.Equal(t, 33.1, cfg.Location.Route[0].Latitude)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]func(*Config){
		"log level":        func(c *Config) { c.Log.Level = "loud" },
		"catalog source":   func(c *Config) { c.Catalog.Source = "s3" },
		"postgres needed":  func(c *Config) { c.Catalog.Source = CatalogFromPostgres },
		"credential role":  func(c *Config) { c.Auth.Credentials = []auth.Credential{{Username: "a", Password: "b", Role: "admin"}} },
		"negative hours":   func(c *Config) { c.License.RequiredHours = -1 },
		"bad duration":     func(c *Config) { c.Auth.Delay = "soon" },
		"non-numeric port": func(c *Config) { c.Server.Port = "http" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Log.Level = "loud"
	assert.True(t, errors.Is(cfg.Validate(), domain.ErrValidation))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [1, 2"))
	assert.Error(t, err)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("nonsense", time.Minute))
	assert.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
}
