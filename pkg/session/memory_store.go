package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It is intended for
// tests and single-process development setups; production deployments use
// MongoStore so revocation survives restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// FindByToken returns a copy of the stored document for the token.
func (m *MemoryStore) FindByToken(ctx context.Context, token string) (*Document, error) {
	m.mu.RLock()
	doc, ok := m.docs[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyDocument(doc), nil
}

// Upsert replaces the document for doc.Token in full. Last write wins;
// concurrent saves for the same token are not coordinated.
func (m *MemoryStore) Upsert(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Token == "" {
		return ErrInvalidDocument
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.docs[doc.Token]; ok && existing.Expired {
		return ErrSessionRevoked
	}

	m.docs[doc.Token] = copyDocument(doc)
	return nil
}

// MarkExpired flags every matching document as expired.
func (m *MemoryStore) MarkExpired(ctx context.Context, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, doc := range m.docs {
		if filter.Matches(doc) && !doc.Expired {
			doc.Expired = true
			n++
		}
	}
	return n, nil
}

// PurgeExpired deletes expired documents untouched since before the cutoff.
func (m *MemoryStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, doc := range m.docs {
		if doc.Expired && doc.LastUpdate.Before(before) {
			delete(m.docs, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored documents, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func copyDocument(doc *Document) *Document {
	cp := *doc
	if doc.Data != nil {
		cp.Data = make(map[string]any, len(doc.Data))
		maps.Copy(cp.Data, doc.Data)
	}
	return &cp
}
