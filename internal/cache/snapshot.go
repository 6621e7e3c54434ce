// Package cache holds the admin console's read-through view of the four
// stored collections.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
)

// Snapshot is a full copy of every collection taken at one point in time.
type Snapshot struct {
	Users     []domain.User
	Helpers   []domain.Helper
	Bookings  []domain.Booking
	Contacts  []domain.ContactMessage
	FetchedAt time.Time
}

// SnapshotCache serves Snapshots until a mutation invalidates them. It never
// patches cached data; the next Load refetches from the store.
type SnapshotCache struct {
	store  repository.Store
	logger *zap.Logger

	mu         sync.Mutex
	current    *Snapshot
	generation uint64
}

// NewSnapshotCache builds an empty cache.
func NewSnapshotCache(store repository.Store, logger *zap.Logger) *SnapshotCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{store: store, logger: logger}
}

// Load returns the cached snapshot, fetching a new one when none is held.
func (c *SnapshotCache) Load(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.current != nil {
		snap := c.current
		c.mu.Unlock()
		return snap, nil
	}
	gen := c.generation
	c.mu.Unlock()

	snap, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// An invalidation during the fetch means snap may predate a write.
	if c.generation == gen {
		c.current = snap
	}
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.generation++
}

// Reload invalidates and immediately refetches.
func (c *SnapshotCache) Reload(ctx context.Context) (*Snapshot, error) {
	c.Invalidate()
	return c.Load(ctx)
}

// Subscribe invalidates the cache on every mutation event.
func (c *SnapshotCache) Subscribe(dispatcher events.Dispatcher) {
	for _, eventType := range events.MutationEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, ev events.Event) error {
			c.Invalidate()
			c.logger.Debug("snapshot invalidated", zap.String("event", string(ev.Type)), zap.String("subject_id", ev.SubjectID))
			return nil
		})
	}
}

func (c *SnapshotCache) fetch(ctx context.Context) (*Snapshot, error) {
	users, err := c.store.Users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	helpers, err := c.store.Helpers.List(ctx, repository.HelperFilter{})
	if err != nil {
		return nil, fmt.Errorf("load helpers: %w", err)
	}
	bookings, err := c.store.Bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	contacts, err := c.store.Contacts.List(ctx, repository.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return &Snapshot{
		Users:     users,
		Helpers:   helpers,
		Bookings:  bookings,
		Contacts:  contacts,
		FetchedAt: time.Now().UTC(),
	}, nil
}
