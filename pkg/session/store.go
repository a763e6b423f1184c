package session

import (
	"context"
	"reflect"
	"strings"
	"time"
)

// Document is the persisted form of one session, keyed by token.
// The store holds one document per active-or-formerly-active session.
type Document struct {
	Token      string         `bson:"session_id" json:"session_id"`
	LastUpdate time.Time      `bson:"last_update" json:"last_update"`
	Expired    bool           `bson:"expired" json:"expired"`
	Data       map[string]any `bson:"data" json:"data"`
}

// Filter is a Mongo-style field match used for bulk revocation.
// Keys address top-level document fields ("session_id", "expired") or
// payload fields via dotted paths ("data.user_id").
type Filter map[string]any

// ByToken returns a filter matching exactly one session document.
func ByToken(token string) Filter {
	return Filter{"session_id": token}
}

// Matches evaluates the filter against a document in memory. It mirrors the
// equality semantics the Mongo adapter gets for free from the server, and is
// used by the in-memory store and by the entity's bulk-revocation self-check.
func (f Filter) Matches(doc *Document) bool {
	if doc == nil {
		return false
	}
	for key, want := range f {
		var got any
		switch {
		case key == "session_id":
			got = doc.Token
		case key == "expired":
			got = doc.Expired
		case key == "last_update":
			got = doc.LastUpdate
		case strings.HasPrefix(key, "data."):
			v, ok := doc.Data[strings.TrimPrefix(key, "data.")]
			if !ok {
				return false
			}
			got = v
		default:
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares values across the numeric type drift introduced by
// JSON/BSON round-trips (int written, int32/int64/float64 read back).
func looseEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Store is the persistence contract for session documents. It is the only
// component that reads or writes the backing collection.
//
// Implementations propagate backend failures to the caller as-is and perform
// no retries themselves; retry policy belongs to the host.
type Store interface {
	// FindByToken returns the document for a token, or ErrSessionNotFound.
	FindByToken(ctx context.Context, token string) (*Document, error)

	// Upsert persists a full document keyed by its token, replacing any
	// prior value (last-write-wins, no merge). It refuses to replace a
	// document already marked expired with ErrSessionRevoked.
	Upsert(ctx context.Context, doc *Document) error

	// MarkExpired sets the expired flag on every document matching the
	// filter and returns the number of documents touched. The flag is
	// monotonic: no store operation ever resets it.
	MarkExpired(ctx context.Context, filter Filter) (int64, error)

	// PurgeExpired deletes documents that are expired and whose last
	// update is older than the cutoff. Maintenance only; live and
	// recently revoked documents are never touched.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
