package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// New creates a MongoDB client and verifies connectivity with a ping.
// Connection attempts are retried per the config to ride out cold starts
// and brief network interruptions; the context aborts the whole sequence.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	var lastErr error

	for attempt := 0; attempt < cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnect, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(cfg.RetryWrites).
				SetRetryReads(cfg.RetryReads),
		)
		if err != nil {
			lastErr = err
			continue
		}

		if err := client.Ping(ctx, nil); err != nil {
			lastErr = err
			_ = client.Disconnect(ctx)
			continue
		}

		return client, nil
	}

	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

// NewWithDatabase creates a client and returns a handle to the named
// database.
func NewWithDatabase(ctx context.Context, cfg Config, database string) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(database), nil
}
