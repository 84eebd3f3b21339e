package mongostore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
)

// DefaultMasterCollection holds the queue definitions.
const DefaultMasterCollection = "master"

// Backend serves master records and per-queue message stores from one database.
type Backend struct {
	db      *mongo.Database
	master  string
	indexed sync.Map // collection name -> struct{}
}

// Option configures a Backend.
type Option func(*Backend)

// WithMasterCollection overrides the master collection name.
func WithMasterCollection(name string) Option {
	return func(b *Backend) {
		if name != "" {
			b.master = name
		}
	}
}

// New creates a backend over db.
func New(db *mongo.Database, opts ...Option) *Backend {
	b := &Backend{db: db, master: DefaultMasterCollection}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Records iterates the master collection in storage order.
func (b *Backend) Records(ctx context.Context) iter.Seq2[drip.MasterRecord, error] {
	return func(yield func(drip.MasterRecord, error) bool) {
		cur, err := b.db.Collection(b.master).Find(ctx, bson.D{})
		if err != nil {
			yield(drip.MasterRecord{}, err)
			return
		}
		defer cur.Close(context.WithoutCancel(ctx))

		for cur.Next(ctx) {
			var doc bson.M
			if err := cur.Decode(&doc); err != nil {
				yield(drip.MasterRecord{}, err)
				return
			}
			if !yield(recordFromDoc(doc), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(drip.MasterRecord{}, err)
		}
	}
}

// UpsertMaster inserts or replaces the definition keyed by its collection name.
func (b *Backend) UpsertMaster(ctx context.Context, rec drip.MasterRecord) error {
	_, err := b.db.Collection(b.master).ReplaceOne(ctx,
		bson.D{{Key: "collectionname", Value: rec.CollectionName}},
		docFromRecord(rec),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert master %q: %w", drip.ErrStorage, rec.CollectionName, err)
	}
	return nil
}

// MessageStore returns the store of one queue collection.
func (b *Backend) MessageStore(collection string) drip.MessageStore {
	return &Store{backend: b, coll: b.db.Collection(collection)}
}

// ensureIndexesOnce runs EnsureIndexes the first time a collection is claimed
// from, so queues added while the service runs get the unique claim index.
func (b *Backend) ensureIndexesOnce(ctx context.Context, collection string) error {
	if _, ok := b.indexed.Load(collection); ok {
		return nil
	}
	return b.EnsureIndexes(ctx, collection)
}

// EnsureIndexes creates the ordering index and the unique claim index on a queue collection.
func (b *Backend) EnsureIndexes(ctx context.Context, collection string) error {
	_, err := b.db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderid", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "claim", Value: 1}},
			Options: options.Index().
				SetName("claim_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "claim", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: ensure indexes on %q: %w", drip.ErrStorage, collection, err)
	}
	b.indexed.Store(collection, struct{}{})
	return nil
}

// EnsureAllIndexes runs EnsureIndexes for every collection named in the master collection.
func (b *Backend) EnsureAllIndexes(ctx context.Context) error {
	for rec, err := range b.Records(ctx) {
		if err != nil {
			return fmt.Errorf("%w: %w", drip.ErrStorage, err)
		}
		if rec.CollectionName == "" {
			continue
		}
		if err := b.EnsureIndexes(ctx, rec.CollectionName); err != nil {
			return err
		}
	}
	return nil
}

// Store is the MessageStore of one queue collection.
type Store struct {
	backend *Backend
	coll    *mongo.Collection
}

func (s *Store) HasPeriod(ctx context.Context, periodKey string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, periodFilter(periodKey), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) NextPending(ctx context.Context) (drip.Message, error) {
	var doc messageDoc
	err := s.coll.FindOne(ctx, pendingFilter(), options.FindOne().SetSort(bson.D{{Key: "orderid", Value: 1}})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return drip.Message{}, drip.ErrNoPendingMessage
	}
	if err != nil {
		return drip.Message{}, err
	}
	return doc.message(), nil
}

func (s *Store) Claim(ctx context.Context, id, periodKey string) error {
	if err := s.backend.ensureIndexesOnce(ctx, s.coll.Name()); err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, claimFilter(id, periodKey), bson.D{{Key: "$set", Value: bson.D{{Key: "claim", Value: periodKey}}}})
	if mongo.IsDuplicateKeyError(err) {
		return drip.ErrPeriodClaimed
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return drip.ErrPeriodClaimed
	}
	return nil
}

func (s *Store) MarkSent(ctx context.Context, id, periodKey string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}, {Key: "claim", Value: periodKey}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "sent", Value: periodKey}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return drip.ErrMessageNotFound
	}
	return nil
}

func (s *Store) Release(ctx context.Context, id, periodKey string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}, {Key: "claim", Value: periodKey}, {Key: "sent", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "claim", Value: ""}}}},
	)
	return err
}

func (s *Store) Insert(ctx context.Context, msgs ...drip.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, toDoc(m))
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

func periodFilter(periodKey string) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sent", Value: periodKey}},
		bson.D{{Key: "claim", Value: periodKey}},
	}}}
}

func pendingFilter() bson.D {
	return bson.D{{Key: "sent", Value: bson.D{{Key: "$exists", Value: false}}}}
}

// claimFilter matches the message only while it is pending and not yet
// claimed for periodKey. Sibling exclusion comes from the unique claim index.
func claimFilter(id, periodKey string) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "sent", Value: bson.D{{Key: "$exists", Value: false}}},
		{Key: "claim", Value: bson.D{{Key: "$ne", Value: periodKey}}},
	}
}
