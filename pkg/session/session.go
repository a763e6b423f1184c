package session

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

// Session is one user's in-memory session state for the lifetime of a
// single request. It owns the key/value payload; the store document is the
// durable mirror, read at most once (on load) and written at most once
// (on save).
//
// A Session is never shared between requests and performs no internal
// locking. Concurrent requests presenting the same token save independently
// and the store's last write wins.
type Session struct {
	id         string
	data       map[string]any
	modified   bool
	isNew      bool
	expired    bool
	lastUpdate time.Time

	store Store
	log   *slog.Logger
}

// ID returns the current session token.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session was created during this request, i.e.
// no prior document backed it.
func (s *Session) IsNew() bool { return s.isNew }

// IsModified reports whether the payload changed since load.
func (s *Session) IsModified() bool { return s.modified }

// IsExpired reports whether the session was revoked during this request.
func (s *Session) IsExpired() bool { return s.expired }

// LastUpdate returns the time the session was last saved or created.
func (s *Session) LastUpdate() time.Time { return s.lastUpdate }

// Get retrieves a payload value. Reads never mark the session modified.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString retrieves a string payload value.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt retrieves an int payload value, tolerating the numeric type drift
// of a JSON/BSON round-trip.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.data[key]
	if !ok {
		return 0, false
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// GetBool retrieves a bool payload value.
func (s *Session) GetBool(key string) (bool, bool) {
	v, ok := s.data[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether the payload contains the key.
func (s *Session) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Set stores a payload value and marks the session modified, whether or not
// the value actually changed.
func (s *Session) Set(key string, value any) {
	if s.data == nil {
		s.data = make(map[string]any)
	}
	s.data[key] = value
	s.modified = true
}

// Delete removes a payload key and marks the session modified.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.modified = true
}

// Clear removes all payload data and marks the session modified.
func (s *Session) Clear() {
	s.data = make(map[string]any)
	s.modified = true
}

// Len returns the number of payload keys.
func (s *Session) Len() int { return len(s.data) }

// Keys returns the payload keys.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Values returns a copy of the payload mapping. Mutating the copy does not
// affect the session.
func (s *Session) Values() map[string]any {
	cp := make(map[string]any, len(s.data))
	maps.Copy(cp, s.data)
	return cp
}

// Reset replaces the session with a brand-new one: fresh token, empty
// payload, modified set, last update now.
//
// Reset does NOT revoke the previous token. Callers wanting the old token
// dead must call Expire first.
func (s *Session) Reset() error {
	token, err := NewToken()
	if err != nil {
		return err
	}

	s.id = token
	s.data = make(map[string]any)
	s.modified = true
	s.isNew = true
	s.expired = false
	s.lastUpdate = time.Now()

	s.log.Debug("issued new session token", slog.String("session_id", s.id))
	return nil
}

// Expire permanently revokes the current token: the store document is
// flagged expired and the entity is marked expired so Save becomes a no-op.
//
// The in-memory payload is retained so the caller can still read it during
// this request, e.g. to carry data across a Rotate.
func (s *Session) Expire(ctx context.Context) error {
	s.log.Debug("expiring session", slog.String("session_id", s.id))

	if _, err := s.store.MarkExpired(ctx, ByToken(s.id)); err != nil {
		return err
	}
	s.expired = true
	return nil
}

// ExpireMatching revokes every stored session matching the filter, e.g.
// Filter{"data.user_id": id} after a password change. The entity itself is
// marked expired only when its own document matches the filter; otherwise
// only stored documents are affected and this session stays live.
func (s *Session) ExpireMatching(ctx context.Context, filter Filter) error {
	n, err := s.store.MarkExpired(ctx, filter)
	if err != nil {
		return err
	}
	s.log.Debug("expired matching sessions", slog.Int64("count", n))

	if filter.Matches(s.document()) {
		s.expired = true
	}
	return nil
}

// Rotate revokes the current token and mints a fresh one while keeping the
// payload, used when the session crosses a privilege boundary such as login.
// The rotated session is live again; the new token is not persisted until
// Save runs at the end of the request.
func (s *Session) Rotate(ctx context.Context) error {
	s.log.Debug("rotating session out", slog.String("session_id", s.id))

	if err := s.Expire(ctx); err != nil {
		return err
	}

	token, err := NewToken()
	if err != nil {
		return err
	}

	s.id = token
	s.modified = true
	s.expired = false
	return nil
}

// Save writes the session document to the store and advances the idle
// timer. It runs unconditionally at response time, even when the payload is
// unmodified, so any request activity keeps the session alive.
//
// Saving an expired session is a no-op: a revoked token is never persisted
// as live and its data is not flushed.
func (s *Session) Save(ctx context.Context) error {
	if s.expired {
		s.log.Debug("not saving expired session", slog.String("session_id", s.id))
		return nil
	}

	s.lastUpdate = time.Now()
	return s.store.Upsert(ctx, s.document())
}

func (s *Session) document() *Document {
	return &Document{
		Token:      s.id,
		LastUpdate: s.lastUpdate,
		Expired:    s.expired,
		Data:       s.data,
	}
}
