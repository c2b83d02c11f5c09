package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"snapfeed/internal/accounts"
	"snapfeed/internal/config"
	"snapfeed/internal/db"
	"snapfeed/internal/feed"
	"snapfeed/internal/http/router"
	"snapfeed/internal/jobs"
	"snapfeed/internal/security"
	"snapfeed/internal/storage"
	"snapfeed/internal/web"

	"github.com/charmbracelet/log"
)

const purgeJob = "purge-expired-sessions"

// app owns every long-lived resource the server needs.
type app struct {
	handler   http.Handler
	db        *db.DB
	store     security.Store
	scheduler *jobs.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	var err error
	a.db, err = db.Init(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize database: %w", err))
	}

	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		a.store = security.NewMemoryStore()
	case config.SessionStoreRedis:
		a.store = security.NewRedisStore(cfg.Session.RedisAddr)
	default:
		a.store = security.NewSQLStore(a.db)

		a.scheduler, err = jobs.New()
		if err != nil {
			return fail(err)
		}
		if err := a.scheduler.Every(purgeJob, cfg.Session.PurgeInterval, jobs.PurgeSessions(a.db)); err != nil {
			return fail(err)
		}
		a.scheduler.Start()
	}

	views, err := web.NewRenderer()
	if err != nil {
		return fail(fmt.Errorf("failed to parse templates: %w", err))
	}

	var secret []byte
	if cfg.Session.Secret != "" {
		secret = []byte(cfg.Session.Secret)
	}

	a.handler = router.Setup(router.Deps{
		DB:       a.db,
		Accounts: accounts.NewService(a.db, cfg.Security.BcryptCost),
		Feed:     feed.NewService(a.db),
		Sessions: security.NewSessionManager(a.store, security.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secret:     secret,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		}),
		Intake:         storage.NewDisk(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix),
		Views:          views,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	return a, nil
}

func (a *app) Close() {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("failed to close session store", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
}
