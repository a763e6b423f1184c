package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store over a MongoDB collection. The underlying
// client and its connection pool are process-wide and shared across
// requests; the store itself holds no per-session state.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a session store over the named collection.
// Call EnsureIndexes once at startup before serving traffic.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique index on session_id. The index backs
// token lookups and makes the expired-document write guard in Upsert
// effective.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByToken returns the document for a token, or ErrSessionNotFound.
func (s *MongoStore) FindByToken(ctx context.Context, token string) (*Document, error) {
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"session_id": token}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Upsert replaces the document for doc.Token in full (last-write-wins).
//
// The replace filter excludes expired documents, so a write against a
// revoked token falls through to an insert and trips the unique session_id
// index instead of resurrecting the document.
func (s *MongoStore) Upsert(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Token == "" {
		return ErrInvalidDocument
	}

	filter := bson.M{
		"session_id": doc.Token,
		"expired":    bson.M{"$ne": true},
	}
	_, err := s.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSessionRevoked
		}
		return err
	}
	return nil
}

// MarkExpired flags every document matching the filter as expired and
// returns the number of documents modified.
func (s *MongoStore) MarkExpired(ctx context.Context, filter Filter) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, bson.M(filter), bson.M{"$set": bson.M{"expired": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PurgeExpired deletes expired documents whose last update is older than
// the cutoff. Intended for a periodic maintenance job.
func (s *MongoStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"expired":     true,
		"last_update": bson.M{"$lt": before},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
