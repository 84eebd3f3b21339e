package app

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/drip/mongostore"
	"github.com/dmitrymomot/dripfeed/pkg/drip/pgstore"
	"github.com/dmitrymomot/dripfeed/pkg/httpserver"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/mongo"
	"github.com/dmitrymomot/dripfeed/pkg/pg"
)

// Backend is a connected queue store.
type Backend interface {
	drip.MasterSource
	drip.StoreProvider
	UpsertMaster(ctx context.Context, rec drip.MasterRecord) error
}

// Store is an open backend with its readiness probe and cleanup.
type Store struct {
	Backend Backend
	Check   httpserver.Check
	Close   func(context.Context) error
}

// OpenStore connects the configured driver and prepares its schema:
// indexes on Mongo, goose migrations on Postgres.
func OpenStore(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	log = log.With(logger.Component("store"), slog.String("driver", cfg.StoreDriver))

	if cfg.StoreDriver == StorePostgres {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg.Postgres, pgstore.Migrations, "migrations", log); err != nil {
			pool.Close()
			return nil, err
		}
		log.InfoContext(ctx, "store ready")
		return &Store{
			Backend: pgstore.New(pool),
			Check:   httpserver.Check{Name: "postgres", Func: pg.Healthcheck(pool)},
			Close:   func(context.Context) error { pool.Close(); return nil },
		}, nil
	}

	client, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	backend := mongostore.New(client.Database(cfg.Mongo.Database))
	if err := backend.EnsureAllIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	log.InfoContext(ctx, "store ready", slog.String("database", cfg.Mongo.Database))
	return &Store{
		Backend: backend,
		Check:   httpserver.Check{Name: "mongodb", Func: mongo.Healthcheck(client)},
		Close:   client.Disconnect,
	}, nil
}
