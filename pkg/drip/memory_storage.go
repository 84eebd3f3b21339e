package drip

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"
	"time"
)

// MemoryBackend keeps master records and message collections in memory.
// Suitable for development and testing.
type MemoryBackend struct {
	mu          sync.RWMutex
	masters     []MasterRecord
	collections map[string]*MemoryStore
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]*MemoryStore)}
}

// AddMaster appends queue definitions.
func (b *MemoryBackend) AddMaster(recs ...MasterRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.masters = append(b.masters, recs...)
}

// UpsertMaster replaces the record with the same collection name or appends it.
func (b *MemoryBackend) UpsertMaster(_ context.Context, rec MasterRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.masters {
		if b.masters[i].CollectionName == rec.CollectionName {
			b.masters[i] = rec
			return nil
		}
	}
	b.masters = append(b.masters, rec)
	return nil
}

// Records yields a snapshot of the master records.
func (b *MemoryBackend) Records(ctx context.Context) iter.Seq2[MasterRecord, error] {
	b.mu.RLock()
	snapshot := slices.Clone(b.masters)
	b.mu.RUnlock()

	return func(yield func(MasterRecord, error) bool) {
		for _, rec := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(MasterRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// MessageStore returns the collection named name, creating it on first use.
func (b *MemoryBackend) MessageStore(name string) MessageStore {
	return b.Collection(name)
}

// Collection is MessageStore with the concrete type, handy in tests.
func (b *MemoryBackend) Collection(name string) *MemoryStore {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.collections[name]
	if !ok {
		s = NewMemoryStore()
		b.collections[name] = s
	}
	return s
}

type memoryMessage struct {
	Message
	claim string
}

// MemoryStore is an in-memory MessageStore.
type MemoryStore struct {
	mu   sync.Mutex
	msgs []*memoryMessage
}

// NewMemoryStore creates an empty message collection.
func NewMemoryStore(msgs ...Message) *MemoryStore {
	s := &MemoryStore{}
	_ = s.Insert(context.Background(), msgs...)
	return s
}

func (s *MemoryStore) HasPeriod(_ context.Context, periodKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.periodTaken(periodKey), nil
}

func (s *MemoryStore) periodTaken(periodKey string) bool {
	return slices.ContainsFunc(s.msgs, func(m *memoryMessage) bool {
		return m.Sent == periodKey || m.claim == periodKey
	})
}

func (s *MemoryStore) NextPending(_ context.Context) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next *memoryMessage
	for _, m := range s.msgs {
		if m.Pending() && (next == nil || m.OrderID < next.OrderID) {
			next = m
		}
	}
	if next == nil {
		return Message{}, ErrNoPendingMessage
	}
	return next.Message, nil
}

func (s *MemoryStore) Claim(_ context.Context, id, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.find(id)
	if m == nil {
		return ErrMessageNotFound
	}
	if !m.Pending() || s.periodTaken(periodKey) {
		return ErrPeriodClaimed
	}
	m.claim = periodKey
	return nil
}

func (s *MemoryStore) MarkSent(_ context.Context, id, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.find(id)
	if m == nil || m.claim != periodKey || !m.Pending() {
		return ErrMessageNotFound
	}
	m.Sent = periodKey
	return nil
}

func (s *MemoryStore) Release(_ context.Context, id, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m := s.find(id); m != nil && m.claim == periodKey && m.Pending() {
		m.claim = ""
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.msgs = append(s.msgs, &memoryMessage{Message: m})
	}
	return nil
}

// Messages returns a copy of the collection ordered by OrderID.
func (s *MemoryStore) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Message)
	}
	slices.SortStableFunc(out, func(a, b Message) int { return cmp.Compare(a.OrderID, b.OrderID) })
	return out
}

func (s *MemoryStore) find(id string) *memoryMessage {
	for _, m := range s.msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewMemoryLocker creates a process-local locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]time.Time), clock: time.Now}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.held[key] = exp

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(exp) {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}
