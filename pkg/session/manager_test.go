package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altstack/sessionkit/pkg/session"
)

// recordingStore counts store calls so tests can assert that certain inputs
// never reach the backing store.
type recordingStore struct {
	inner     session.Store
	findCalls int
}

func (s *recordingStore) FindByToken(ctx context.Context, token string) (*session.Document, error) {
	s.findCalls++
	return s.inner.FindByToken(ctx, token)
}

func (s *recordingStore) Upsert(ctx context.Context, doc *session.Document) error {
	return s.inner.Upsert(ctx, doc)
}

func (s *recordingStore) MarkExpired(ctx context.Context, filter session.Filter) (int64, error) {
	return s.inner.MarkExpired(ctx, filter)
}

func (s *recordingStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.inner.PurgeExpired(ctx, before)
}

// failingStore simulates an unavailable backend.
type failingStore struct{ err error }

func (s *failingStore) FindByToken(ctx context.Context, token string) (*session.Document, error) {
	return nil, s.err
}

func (s *failingStore) Upsert(ctx context.Context, doc *session.Document) error {
	return s.err
}

func (s *failingStore) MarkExpired(ctx context.Context, filter session.Filter) (int64, error) {
	return 0, s.err
}

func (s *failingStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, s.err
}

func seedDocument(t *testing.T, store session.Store, doc *session.Document) {
	t.Helper()
	require.NoError(t, store.Upsert(context.Background(), doc))
}

func mustToken(t *testing.T) string {
	t.Helper()
	token, err := session.NewToken()
	require.NoError(t, err)
	return token
}

func TestManager_New(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := session.New()
		assert.ErrorIs(t, err, session.ErrNoStore)
	})
}

func TestManager_LoadToken(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token yields fresh session", func(t *testing.T) {
		mgr := newTestManager(t, session.NewMemoryStore())

		sess, err := mgr.LoadToken(ctx, "")
		require.NoError(t, err)

		assert.True(t, sess.IsNew())
		assert.True(t, sess.IsModified())
		assert.False(t, sess.IsExpired())
		assert.True(t, session.ValidToken(sess.ID()))
		assert.Equal(t, 0, sess.Len())
	})

	t.Run("malformed token never reaches the store", func(t *testing.T) {
		store := &recordingStore{inner: session.NewMemoryStore()}
		mgr := newTestManager(t, store)

		badChar := strings.Repeat("a", session.TokenLength-1) + "!"
		for _, tok := range []string{"short", `{"$gt": ""}`, badChar} {
			sess, err := mgr.LoadToken(ctx, tok)
			require.NoError(t, err)
			assert.True(t, sess.IsNew())
			assert.NotEqual(t, tok, sess.ID())
		}

		assert.Equal(t, 0, store.findCalls)
	})

	t.Run("unknown token yields fresh session", func(t *testing.T) {
		store := &recordingStore{inner: session.NewMemoryStore()}
		mgr := newTestManager(t, store)

		tok := mustToken(t)
		sess, err := mgr.LoadToken(ctx, tok)
		require.NoError(t, err)

		assert.True(t, sess.IsNew())
		assert.NotEqual(t, tok, sess.ID())
		assert.Equal(t, 1, store.findCalls)
	})

	t.Run("revoked token yields fresh session and stays revoked", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		tok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      tok,
			LastUpdate: time.Now(),
			Data:       map[string]any{"user_id": "u1"},
		})
		_, err := store.MarkExpired(ctx, session.ByToken(tok))
		require.NoError(t, err)

		sess, err := mgr.LoadToken(ctx, tok)
		require.NoError(t, err)
		assert.True(t, sess.IsNew())
		assert.NotEqual(t, tok, sess.ID())
		assert.Equal(t, 0, sess.Len())

		doc, err := store.FindByToken(ctx, tok)
		require.NoError(t, err)
		assert.True(t, doc.Expired)
	})

	t.Run("active session within idle window loads", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store, session.WithIdleTimeout(600*time.Second))

		tok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      tok,
			LastUpdate: time.Now().Add(-599 * time.Second),
			Data:       map[string]any{"theme": "dark"},
		})

		sess, err := mgr.LoadToken(ctx, tok)
		require.NoError(t, err)

		assert.Equal(t, tok, sess.ID())
		assert.False(t, sess.IsNew())
		assert.False(t, sess.IsModified())
		theme, _ := sess.GetString("theme")
		assert.Equal(t, "dark", theme)
	})

	t.Run("idle session is force-expired and replaced", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store, session.WithIdleTimeout(600*time.Second))

		tok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      tok,
			LastUpdate: time.Now().Add(-601 * time.Second),
			Data:       map[string]any{"theme": "dark"},
		})

		sess, err := mgr.LoadToken(ctx, tok)
		require.NoError(t, err)

		assert.True(t, sess.IsNew())
		assert.NotEqual(t, tok, sess.ID())
		assert.Equal(t, 0, sess.Len())

		// The old token must be permanently unusable.
		doc, err := store.FindByToken(ctx, tok)
		require.NoError(t, err)
		assert.True(t, doc.Expired)
	})

	t.Run("store fault propagates", func(t *testing.T) {
		storeErr := errors.New("store down")
		mgr := newTestManager(t, &failingStore{err: storeErr})

		_, err := mgr.LoadToken(ctx, mustToken(t))
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestManager_RoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("saved payload is reproduced on next load", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		sess, err := mgr.LoadToken(ctx, "")
		require.NoError(t, err)

		userID := uuid.New().String()
		sess.Set("user_id", userID)
		sess.Set("visits", 4)
		sess.Set("admin", false)
		require.NoError(t, sess.Save(ctx))

		loaded, err := mgr.LoadToken(ctx, sess.ID())
		require.NoError(t, err)

		assert.False(t, loaded.IsNew())
		gotUser, _ := loaded.GetString("user_id")
		assert.Equal(t, userID, gotUser)
		gotVisits, _ := loaded.GetInt("visits")
		assert.Equal(t, 4, gotVisits)
		gotAdmin, ok := loaded.GetBool("admin")
		assert.True(t, ok)
		assert.False(t, gotAdmin)
	})

	t.Run("save advances the idle timer even when unmodified", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		sess, err := mgr.LoadToken(ctx, "")
		require.NoError(t, err)
		require.NoError(t, sess.Save(ctx))

		first, err := store.FindByToken(ctx, sess.ID())
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		loaded, err := mgr.LoadToken(ctx, sess.ID())
		require.NoError(t, err)
		require.False(t, loaded.IsModified())
		require.NoError(t, loaded.Save(ctx))

		second, err := store.FindByToken(ctx, sess.ID())
		require.NoError(t, err)
		assert.True(t, second.LastUpdate.After(first.LastUpdate))
	})
}

func TestManager_Revocation(t *testing.T) {
	ctx := context.Background()

	t.Run("revocation is permanent", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		sess, err := mgr.LoadToken(ctx, "")
		require.NoError(t, err)
		sess.Set("user_id", "u1")
		require.NoError(t, sess.Save(ctx))
		tok := sess.ID()

		require.NoError(t, sess.Expire(ctx))

		// Later construction with the dead token yields a different one.
		replacement, err := mgr.LoadToken(ctx, tok)
		require.NoError(t, err)
		assert.True(t, replacement.IsNew())
		assert.NotEqual(t, tok, replacement.ID())

		doc, err := store.FindByToken(ctx, tok)
		require.NoError(t, err)
		assert.True(t, doc.Expired)
	})

	t.Run("group revocation touches only matching documents", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		var u1Tokens, u2Tokens []string
		for range 3 {
			sess, err := mgr.LoadToken(ctx, "")
			require.NoError(t, err)
			sess.Set("user_id", "u1")
			require.NoError(t, sess.Save(ctx))
			u1Tokens = append(u1Tokens, sess.ID())
		}
		for range 2 {
			sess, err := mgr.LoadToken(ctx, "")
			require.NoError(t, err)
			sess.Set("user_id", "u2")
			require.NoError(t, sess.Save(ctx))
			u2Tokens = append(u2Tokens, sess.ID())
		}

		n, err := mgr.ExpireMatching(ctx, session.Filter{"data.user_id": "u1"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		for _, tok := range u1Tokens {
			doc, err := store.FindByToken(ctx, tok)
			require.NoError(t, err)
			assert.True(t, doc.Expired)
		}
		for _, tok := range u2Tokens {
			doc, err := store.FindByToken(ctx, tok)
			require.NoError(t, err)
			assert.False(t, doc.Expired)
		}
	})
}

func TestManager_PurgeExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes only stale revoked documents", func(t *testing.T) {
		store := session.NewMemoryStore()
		mgr := newTestManager(t, store)

		staleTok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      staleTok,
			LastUpdate: time.Now().Add(-48 * time.Hour),
		})
		_, err := store.MarkExpired(ctx, session.ByToken(staleTok))
		require.NoError(t, err)

		freshRevokedTok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      freshRevokedTok,
			LastUpdate: time.Now(),
		})
		_, err = store.MarkExpired(ctx, session.ByToken(freshRevokedTok))
		require.NoError(t, err)

		liveTok := mustToken(t)
		seedDocument(t, store, &session.Document{
			Token:      liveTok,
			LastUpdate: time.Now().Add(-48 * time.Hour),
		})

		n, err := mgr.PurgeExpired(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = store.FindByToken(ctx, staleTok)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		_, err = store.FindByToken(ctx, freshRevokedTok)
		assert.NoError(t, err)
		_, err = store.FindByToken(ctx, liveTok)
		assert.NoError(t, err)
	})
}
