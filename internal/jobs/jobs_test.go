package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"snapfeed/internal/db"
	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunNow(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every("count", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.RunNow("count"))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsBadJobs(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	assert.Error(t, s.Every("never", 0, func(context.Context) error { return nil }))
	assert.Error(t, s.RunNow("missing"))
}

func TestSchedulerSurvivesFailingJob(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every("flaky", time.Hour, func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}))
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.RunNow("flaky"))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.RunNow("flaky"))
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestPurgeSessions(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(ctx, "sqlite3", filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer database.Close()

	user, err := database.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, database.CreateSession(ctx, &models.Session{ID: "old", UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, database.CreateSession(ctx, &models.Session{ID: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}))

	require.NoError(t, PurgeSessions(database)(ctx))

	_, err = database.GetSession(ctx, "old")
	assert.ErrorIs(t, err, db.ErrNotFound)
	live, err := database.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "alice", live.Username)
}
