package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "snapfeed.db", cfg.Database.DSN)
	assert.Equal(t, SessionStoreSQL, cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "snapfeed_session", cfg.Session.CookieName)
	assert.Equal(t, "/uploads/", cfg.Uploads.PublicPrefix)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFileKeepsValues(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: "3000"
database:
  driver: postgres
  dsn: postgres://feed@localhost/feed
session:
  store: memory
  ttl: 2h
uploads:
  dir: /var/lib/snapfeed
cors:
  allowed_origins:
    - https://example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "/var/lib/snapfeed", cfg.Uploads.Dir)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
	// unset in the file, so the default fills in
	assert.Equal(t, "/uploads/", cfg.Uploads.PublicPrefix)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"3000\"\nsession:\n  store: sql\n")
	t.Setenv("SNAPFEED_SESSION_STORE", "redis")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Session.Store = "file"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Session.TTL = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Session.PurgeInterval = 0
	assert.Error(t, bad.Validate())
	bad.Session.Store = SessionStoreMemory
	assert.NoError(t, bad.Validate())
}
