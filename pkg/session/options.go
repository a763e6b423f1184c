package session

import (
	"log/slog"
	"time"

	"github.com/altstack/sessionkit/pkg/cookie"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets the session store. Required.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets a custom token transport, replacing the default
// cookie transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithCookieManager sets the cookie manager backing the default cookie
// transport.
func WithCookieManager(cookieMgr *cookie.Manager) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithIdleTimeout sets the idle timeout for sessions.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.config.IdleTimeout = timeout
	}
}
