package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
)

// countingUsers counts List calls and can run a hook mid-fetch.
type countingUsers struct {
	repository.UserRepository
	lists  int
	during func()
	err    error
}

func (c *countingUsers) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	c.lists++
	if c.during != nil {
		c.during()
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.UserRepository.List(ctx, f)
}

func newTestCache() (*SnapshotCache, *countingUsers, repository.Store) {
	store := repository.NewMemoryStore()
	users := &countingUsers{UserRepository: store.Users}
	wrapped := store
	wrapped.Users = users
	return NewSnapshotCache(wrapped, nil), users, store
}

func TestLoadServesCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	c, users, _ := newTestCache()

	first, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || users.lists != 1 {
		t.Fatalf("expected one fetch, got %d", users.lists)
	}
}

func TestMutationEventInvalidates(t *testing.T) {
	ctx := context.Background()
	c, users, store := newTestCache()
	dispatcher := events.NewInMemoryDispatcher()
	c.Subscribe(dispatcher)

	if _, err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Users.Create(ctx, &domain.User{Username: "asha", Email: "asha@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.Publish(ctx, events.New(events.EventUserChanged, "u", nil, events.ChangedPayload{Action: events.ActionCreated})); err != nil {
		t.Fatal(err)
	}

	snap, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Users) != 1 || users.lists != 2 {
		t.Fatalf("users=%d lists=%d", len(snap.Users), users.lists)
	}

	if err := dispatcher.Publish(ctx, events.New(events.EventPasswordResetRequested, "u", nil, nil)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(ctx); err != nil || users.lists != 2 {
		t.Fatalf("non-mutation event refetched: lists=%d err=%v", users.lists, err)
	}
}

func TestInvalidateDuringFetchDiscardsResult(t *testing.T) {
	ctx := context.Background()
	c, users, _ := newTestCache()
	users.during = func() {
		users.during = nil
		c.Invalidate()
	}

	if _, err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if users.lists != 2 {
		t.Fatalf("stale snapshot was cached: lists=%d", users.lists)
	}
}

func TestLoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, users, _ := newTestCache()
	users.err = errors.New("timeout")

	if _, err := c.Load(ctx); err == nil {
		t.Fatal("expected error")
	}
	users.err = nil
	if _, err := c.Load(ctx); err != nil {
		t.Fatalf("Load after recovery: %v", err)
	}
}
