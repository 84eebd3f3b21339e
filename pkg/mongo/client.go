package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect creates a client and waits until the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(true).
		SetRetryReads(true)

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		client, err := mongo.Connect(opts)
		if err != nil {
			lastErr = err
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		_ = client.Disconnect(context.Background())
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// ConnectDatabase connects and returns the configured database.
func ConnectDatabase(ctx context.Context, cfg Config) (*mongo.Database, error) {
	if cfg.Database == "" {
		return nil, ErrEmptyDatabaseName
	}
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}
