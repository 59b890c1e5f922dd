package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

// DefaultTTL is how long an abandoned session survives. Completed sessions
// expire the same way; the calendar service is the system of record.
const DefaultTTL = 2 * time.Hour

// Store keeps in-progress sessions between widget requests.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore is the default single-instance store, a TTL cache.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.cache.SetDefault(s.ID.String(), s)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	v, ok := m.cache.Get(id.String())
	if !ok {
		return nil, errors.NewNotFound("session")
	}
	return v.(*Session), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.cache.Delete(id.String())
	return nil
}
