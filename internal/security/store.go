package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"snapfeed/internal/db"
	"snapfeed/internal/models"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned by a Store when a token is unknown or expired.
var ErrNoSession = errors.New("no such session")

// Store keeps sessions server-side, keyed by their opaque token.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

type sessionDB interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// SQLStore keeps sessions in the sessions table. Expired rows are rejected on
// load and removed by the purge job.
type SQLStore struct {
	db  sessionDB
	now func() time.Time
}

func NewSQLStore(database sessionDB) *SQLStore {
	return &SQLStore{db: database, now: time.Now}
}

func (s *SQLStore) Save(ctx context.Context, session *models.Session) error {
	return s.db.CreateSession(ctx, session)
}

func (s *SQLStore) Load(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.db.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.db.DeleteSession(ctx, token); err != nil {
			log.Warn("failed to delete expired session", "error", err)
		}
		return nil, ErrNoSession
	}
	return session, nil
}

func (s *SQLStore) Delete(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

// CacheStore keeps sessions in a gocache backend, either in process memory or
// in redis. Entries expire with the session.
type CacheStore struct {
	cache  cache.CacheInterface[string]
	prefix string
	now    func() time.Time
	close  func() error
}

// NewMemoryStore returns a CacheStore backed by an in-process go-cache.
func NewMemoryStore() *CacheStore {
	client := gocache.New(gocache.NoExpiration, 10*time.Minute)
	return &CacheStore{
		cache:  cache.New[string](go_store.NewGoCache(client)),
		prefix: "session:",
		now:    time.Now,
	}
}

// NewRedisStore returns a CacheStore backed by redis at addr.
func NewRedisStore(addr string) *CacheStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &CacheStore{
		cache:  cache.New[string](redis_store.NewRedis(client)),
		prefix: "snapfeed:session:",
		now:    time.Now,
		close:  client.Close,
	}
}

func (s *CacheStore) Save(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", session.ExpiresAt)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.prefix+session.ID, string(data), store.WithExpiration(ttl))
}

func (s *CacheStore) Load(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.cache.Get(ctx, s.prefix+token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == "" {
		return nil, ErrNoSession
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, s.prefix+token)
}

func isNotFound(err error) bool {
	var notFound *store.NotFound
	return errors.As(err, &notFound) || errors.Is(err, store.NotFound{})
}

// Close releases the redis connection, if any.
func (s *CacheStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
