package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/pg"
)

// Migrations holds the goose migrations of the schema under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	selectQueues = `SELECT randomlevel, target, timezone, starthour, startminute, collectionname, deliverymethod, frequency
		FROM queues ORDER BY created_at, collectionname`

	upsertQueue = `INSERT INTO queues (collectionname, randomlevel, target, timezone, starthour, startminute, deliverymethod, frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (collectionname) DO UPDATE SET
			randomlevel = EXCLUDED.randomlevel,
			target = EXCLUDED.target,
			timezone = EXCLUDED.timezone,
			starthour = EXCLUDED.starthour,
			startminute = EXCLUDED.startminute,
			deliverymethod = EXCLUDED.deliverymethod,
			frequency = EXCLUDED.frequency`

	hasPeriod = `SELECT EXISTS (SELECT 1 FROM messages WHERE collection = $1 AND (sent = $2 OR claim = $2))`

	nextPending = `SELECT orderid, id, text, COALESCE(mediaurl, ''), COALESCE(sent, '')
		FROM messages WHERE collection = $1 AND sent IS NULL ORDER BY orderid LIMIT 1`

	claimMessage = `UPDATE messages SET claim = $3
		WHERE collection = $1 AND id = $2 AND sent IS NULL AND claim IS DISTINCT FROM $3`

	markSent = `UPDATE messages SET sent = $3 WHERE collection = $1 AND id = $2 AND claim = $3 AND sent IS NULL`

	releaseClaim = `UPDATE messages SET claim = NULL WHERE collection = $1 AND id = $2 AND claim = $3 AND sent IS NULL`

	insertMessage = `INSERT INTO messages (collection, id, orderid, text, mediaurl) VALUES ($1, $2, $3, $4, NULLIF($5, ''))`
)

// Backend serves master records and message stores from PostgreSQL.
type Backend struct {
	db DB
}

// New creates a backend over db.
func New(db DB) *Backend {
	return &Backend{db: db}
}

// Records iterates the queues table.
func (b *Backend) Records(ctx context.Context) iter.Seq2[drip.MasterRecord, error] {
	return func(yield func(drip.MasterRecord, error) bool) {
		rows, err := b.db.Query(ctx, selectQueues)
		if err != nil {
			yield(drip.MasterRecord{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r drip.MasterRecord
			if err := rows.Scan(&r.RandomLevel, &r.Target, &r.TimeZone, &r.StartHour, &r.StartMinute,
				&r.CollectionName, &r.DeliveryMethod, &r.Frequency); err != nil {
				yield(drip.MasterRecord{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(drip.MasterRecord{}, err)
		}
	}
}

// UpsertMaster inserts or replaces a queue definition.
func (b *Backend) UpsertMaster(ctx context.Context, rec drip.MasterRecord) error {
	_, err := b.db.Exec(ctx, upsertQueue, rec.CollectionName, rec.RandomLevel, rec.Target, rec.TimeZone,
		rec.StartHour, rec.StartMinute, rec.DeliveryMethod, rec.Frequency)
	if err != nil {
		return fmt.Errorf("%w: upsert master %q: %w", drip.ErrStorage, rec.CollectionName, err)
	}
	return nil
}

// MessageStore returns the store of one queue.
func (b *Backend) MessageStore(collection string) drip.MessageStore {
	return &Store{db: b.db, collection: collection}
}

// Store is the MessageStore of one queue.
type Store struct {
	db         DB
	collection string
}

func (s *Store) HasPeriod(ctx context.Context, periodKey string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, hasPeriod, s.collection, periodKey).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) NextPending(ctx context.Context) (drip.Message, error) {
	var m drip.Message
	err := s.db.QueryRow(ctx, nextPending, s.collection).Scan(&m.OrderID, &m.ID, &m.Text, &m.MediaURL, &m.Sent)
	if pg.IsNotFoundError(err) {
		return drip.Message{}, drip.ErrNoPendingMessage
	}
	if err != nil {
		return drip.Message{}, err
	}
	return m, nil
}

func (s *Store) Claim(ctx context.Context, id, periodKey string) error {
	tag, err := s.db.Exec(ctx, claimMessage, s.collection, id, periodKey)
	if pg.IsDuplicateKeyError(err) {
		return drip.ErrPeriodClaimed
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return drip.ErrPeriodClaimed
	}
	return nil
}

func (s *Store) MarkSent(ctx context.Context, id, periodKey string) error {
	tag, err := s.db.Exec(ctx, markSent, s.collection, id, periodKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return drip.ErrMessageNotFound
	}
	return nil
}

func (s *Store) Release(ctx context.Context, id, periodKey string) error {
	_, err := s.db.Exec(ctx, releaseClaim, s.collection, id, periodKey)
	return err
}

func (s *Store) Insert(ctx context.Context, msgs ...drip.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(insertMessage, s.collection, m.ID, m.OrderID, m.Text, m.MediaURL)
	}
	br := s.db.SendBatch(ctx, batch)
	var errs []error
	for range msgs {
		if _, err := br.Exec(); err != nil {
			errs = append(errs, err)
			break
		}
	}
	errs = append(errs, br.Close())
	return errors.Join(errs...)
}
