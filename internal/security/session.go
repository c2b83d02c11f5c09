package security

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"snapfeed/internal/models"

	"github.com/charmbracelet/log"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const tokenKey = "token"

type SessionOptions struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Secure     bool
}

// SessionManager issues opaque session tokens and resolves them back to an
// identity. The cookie only carries the signed token; everything else lives
// in the Store, so deleting the record invalidates every copy of the cookie.
type SessionManager struct {
	cookies *sessions.CookieStore
	store   Store
	name    string
	ttl     time.Duration
	now     func() time.Time
}

func NewSessionManager(store Store, opts SessionOptions) *SessionManager {
	secret := opts.Secret
	if len(secret) == 0 {
		log.Warn("no session secret configured, sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "snapfeed_session"
	}

	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(int(opts.TTL / time.Second))

	return &SessionManager{
		cookies: cookies,
		store:   store,
		name:    opts.CookieName,
		ttl:     opts.TTL,
		now:     time.Now,
	}
}

// Begin creates a session for identity and writes its cookie. A session the
// request already carried is discarded first.
func (m *SessionManager) Begin(w http.ResponseWriter, r *http.Request, identity models.Identity) (*models.Session, error) {
	if old, ok := m.token(r); ok {
		if err := m.store.Delete(r.Context(), old); err != nil {
			log.Warn("failed to discard previous session", "error", err)
		}
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        token,
		UserID:    identity.UserID,
		Username:  identity.Username,
		ExpiresAt: m.now().Add(m.ttl).UTC(),
	}
	if err := m.store.Save(r.Context(), session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	cookie, _ := m.cookies.New(r, m.name)
	cookie.Values = map[interface{}]interface{}{tokenKey: token}
	if err := cookie.Save(r, w); err != nil {
		return nil, fmt.Errorf("write session cookie: %w", err)
	}

	log.Debug("session started", "user", identity.Username)
	return session, nil
}

// Current returns the identity bound to the request's session, or nil when
// the request is anonymous. Errors are reserved for store failures.
func (m *SessionManager) Current(r *http.Request) (*models.Identity, error) {
	token, ok := m.token(r)
	if !ok {
		return nil, nil
	}

	session, err := m.store.Load(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}

	identity := session.Identity()
	return &identity, nil
}

// End destroys the request's session, if any, and expires the cookie. It
// always succeeds from the client's point of view; a store error is returned
// for logging only.
func (m *SessionManager) End(w http.ResponseWriter, r *http.Request) error {
	var storeErr error
	if token, ok := m.token(r); ok {
		storeErr = m.store.Delete(r.Context(), token)
	}

	cookie, _ := m.cookies.New(r, m.name)
	cookie.Values = map[interface{}]interface{}{}
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		return err
	}
	return storeErr
}

// token extracts the session token from a validly signed cookie.
func (m *SessionManager) token(r *http.Request) (string, bool) {
	cookie, err := m.cookies.New(r, m.name)
	if err != nil || cookie.IsNew {
		return "", false
	}
	token, ok := cookie.Values[tokenKey].(string)
	return token, ok && token != ""
}

func newToken() (string, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", errors.New("failed to generate session token")
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}
