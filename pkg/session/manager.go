package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/altstack/sessionkit/pkg/cookie"
)

// Manager is the session service: it owns the store handle, the transport,
// and the idle-timeout policy, and it constructs the per-request Session
// entities. Build one at process start and share it across requests.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	log           *slog.Logger
	cookieManager *cookie.Manager
}

// New creates a session manager. A store is required; the transport
// defaults to a cookie transport built from the configuration.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config: DefaultConfig(),
		log:    slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		return nil, ErrNoStore
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			m.cookieManager = cookie.New()
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config)
	}

	return m, nil
}

// LoadToken builds the Session for a client-presented token.
//
// A missing, malformed, unknown, revoked, or idle-expired token is not an
// error: the client silently gets a fresh empty session and the outcome is
// logged. Only store faults surface as errors, so handler code always sees
// a usable session when err is nil.
func (m *Manager) LoadToken(ctx context.Context, token string) (*Session, error) {
	sess := &Session{store: m.store, log: m.log}

	if token == "" {
		m.log.Debug("no session token presented")
		return resetSession(sess)
	}

	// Lexical validation runs before any store access so malformed or
	// attacker-supplied values never become lookup keys.
	if !ValidToken(token) {
		m.log.Debug("malformed session token presented")
		return resetSession(sess)
	}

	doc, err := m.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.log.Debug("no session matches presented token")
			return resetSession(sess)
		}
		return nil, err
	}

	if doc.Expired {
		m.log.Warn("attempt to use revoked session", slog.String("session_id", token))
		return resetSession(sess)
	}

	// Idle age is computed once, here; it is never re-checked mid-request.
	if time.Since(doc.LastUpdate) > m.config.IdleTimeout {
		m.log.Debug("session idle too long", slog.String("session_id", token))
		sess.id = token
		if err := sess.Expire(ctx); err != nil {
			return nil, err
		}
		return resetSession(sess)
	}

	sess.id = token
	sess.data = doc.Data
	if sess.data == nil {
		sess.data = make(map[string]any)
	}
	sess.lastUpdate = doc.LastUpdate
	sess.modified = false
	sess.isNew = false
	return sess, nil
}

// Load builds the Session for an incoming request by extracting the token
// from the transport. An absent token behaves like an empty one.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		token = ""
	}
	return m.LoadToken(ctx, token)
}

// Save persists the session and (re)issues the session cookie with the
// current token. The cookie is sent even for unmodified sessions so the
// sliding idle window is reflected client-side, and so a rotated or reset
// token always reaches the client.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if err := sess.Save(ctx); err != nil {
		return err
	}
	return m.transport.SetToken(w, sess.ID())
}

// ExpireMatching revokes every stored session matching the filter without
// needing an in-flight entity, e.g. kill all of one user's sessions from an
// admin job. Returns the number of documents revoked.
func (m *Manager) ExpireMatching(ctx context.Context, filter Filter) (int64, error) {
	return m.store.MarkExpired(ctx, filter)
}

// PurgeExpired deletes revoked documents idle longer than olderThan.
// Intended to be called periodically to bound collection growth.
func (m *Manager) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return m.store.PurgeExpired(ctx, time.Now().Add(-olderThan))
}

// IdleTimeout returns the configured idle timeout.
func (m *Manager) IdleTimeout() time.Duration {
	return m.config.IdleTimeout
}

func resetSession(sess *Session) (*Session, error) {
	if err := sess.Reset(); err != nil {
		return nil, err
	}
	return sess, nil
}
