package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, ev events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ev.Type)
	}
	return out
}

// failingHelpers fails every call with err.
type failingHelpers struct {
	repository.HelperRepository
	err error
}

func (f failingHelpers) GetByID(context.Context, string) (*domain.Helper, error) { return nil, f.err }

func (f failingHelpers) List(context.Context, repository.HelperFilter) ([]domain.Helper, error) {
	return nil, f.err
}

// countingBookings counts writes and can inject a failure into them.
type countingBookings struct {
	repository.BookingRepository
	creates   int
	updates   int
	createErr error
	// beforeUpdate runs ahead of the wrapped UpdateStatus.
	beforeUpdate func()
}

func (c *countingBookings) Create(ctx context.Context, b *domain.Booking) error {
	c.creates++
	if c.createErr != nil {
		return c.createErr
	}
	return c.BookingRepository.Create(ctx, b)
}

func (c *countingBookings) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, completedAt *time.Time) error {
	c.updates++
	if c.beforeUpdate != nil {
		c.beforeUpdate()
	}
	return c.BookingRepository.UpdateStatus(ctx, id, from, to, completedAt)
}

func seedHelper(t *testing.T, store repository.Store, h domain.Helper) *domain.Helper {
	t.Helper()
	if err := store.Helpers.Create(context.Background(), &h); err != nil {
		t.Fatalf("seed helper: %v", err)
	}
	return &h
}

func seedUser(t *testing.T, store repository.Store, u domain.User) *domain.User {
	t.Helper()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := store.Users.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError %s, got %T: %v", code, err, err)
	}
	if de.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, de.Code, de.Message)
	}
	return de
}
