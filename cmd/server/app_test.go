package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"snapfeed/internal/config"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, store string) *config.Config {
	t.Helper()
	t.Setenv("SNAPFEED_DB_DSN", filepath.Join(t.TempDir(), "snapfeed.db"))
	t.Setenv("SNAPFEED_UPLOAD_DIR", filepath.Join(t.TempDir(), "uploads"))
	t.Setenv("SNAPFEED_SESSION_STORE", store)
	t.Setenv("SNAPFEED_BCRYPT_COST", "4")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewApp(t *testing.T) {
	for _, store := range []string{config.SessionStoreSQL, config.SessionStoreMemory} {
		t.Run(store, func(t *testing.T) {
			a, err := newApp(context.Background(), testConfig(t, store))
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, store == config.SessionStoreSQL, a.scheduler != nil)

			rec := httptest.NewRecorder()
			a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = httptest.NewRecorder()
			a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestNewAppPurgeJobRuns(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t, config.SessionStoreSQL))
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.scheduler.RunNow(purgeJob))
}

func TestNewAppBadDatabase(t *testing.T) {
	cfg := testConfig(t, config.SessionStoreMemory)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "missing", "dir", "snapfeed.db")

	_, err := newApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	testConfig(t, config.SessionStoreSQL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"migrate", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Database migrations completed successfully!")
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.InfoLevel) })

	setLogLevel("debug")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	setLogLevel("error")
	assert.Equal(t, log.ErrorLevel, log.GetLevel())
	setLogLevel("loud")
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
