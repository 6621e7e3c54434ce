package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

// memTable is a mutex-guarded map of records. Values are copied in and out
// so callers never share memory with the table.
type memTable[T any] struct {
	mu     sync.RWMutex
	rows   map[string]T
	copyFn func(T) T
}

func newMemTable[T any](copyFn func(T) T) *memTable[T] {
	if copyFn == nil {
		copyFn = func(v T) T { return v }
	}
	return &memTable[T]{rows: make(map[string]T), copyFn: copyFn}
}

func (t *memTable[T]) get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return t.copyFn(row), nil
}

func (t *memTable[T]) find(match func(T) bool) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if match(row) {
			return t.copyFn(row), nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (t *memTable[T]) list(match func(T) bool, orders []Order, cmps map[string]func(a, b T) int, fallback []Order) ([]T, error) {
	if len(orders) == 0 {
		orders = fallback
	}
	for _, o := range orders {
		if cmps[o.Field] == nil {
			return nil, fmt.Errorf("cannot sort by %q", o.Field)
		}
	}
	t.mu.RLock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if match(row) {
			out = append(out, t.copyFn(row))
		}
	}
	t.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b T) int {
		for _, o := range orders {
			c := cmps[o.Field](a, b)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out, nil
}

func (t *memTable[T]) delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// NewMemoryStore returns a process-local Store. Data is lost on restart.
func NewMemoryStore() Store {
	users := &memUserRepository{table: newMemTable[domain.User](nil)}
	return Store{
		Users:    users,
		Helpers:  &memHelperRepository{table: newMemTable(copyHelper)},
		Bookings: &memBookingRepository{table: newMemTable[domain.Booking](nil)},
		Contacts: &memContactRepository{table: newMemTable[domain.ContactMessage](nil)},
	}
}

var (
	clockMu  sync.Mutex
	lastTick time.Time
)

// memNow is strictly increasing so created_at ordering is total.
func memNow() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	now := time.Now().UTC()
	if !now.After(lastTick) {
		now = lastTick.Add(time.Microsecond)
	}
	lastTick = now
	return now
}

func copyHelper(h domain.Helper) domain.Helper {
	h.Skills = slices.Clone(h.Skills)
	return h
}

func byTime(a, b time.Time) int { return a.Compare(b) }

func byFold(a, b string) int { return cmp.Compare(strings.ToLower(a), strings.ToLower(b)) }

func byBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

var createdAsc = []Order{{Field: FieldCreatedAt}}
var createdDesc = []Order{{Field: FieldCreatedAt, Desc: true}}

type memUserRepository struct {
	table *memTable[domain.User]
}

var memUserCmps = map[string]func(a, b domain.User) int{
	FieldFullName:  func(a, b domain.User) int { return byFold(a.FullName, b.FullName) },
	FieldCreatedAt: func(a, b domain.User) int { return byTime(a.CreatedAt, b.CreatedAt) },
	FieldRole:      func(a, b domain.User) int { return cmp.Compare(a.Role, b.Role) },
}

func (r *memUserRepository) Create(_ context.Context, user *domain.User) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	for _, u := range r.table.rows {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username", ErrDuplicate)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email", ErrDuplicate)
		}
	}
	now := memNow()
	user.ID = uuid.NewString()
	user.Status = activeIfUnset(user.Status)
	user.CreatedAt, user.UpdatedAt = now, now
	r.table.rows[user.ID] = *user
	return nil
}

func (r *memUserRepository) Update(_ context.Context, user *domain.User) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	existing, ok := r.table.rows[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.table.rows {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return fmt.Errorf("%w: username", ErrDuplicate)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email", ErrDuplicate)
		}
	}
	user.Provider = existing.Provider
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = memNow()
	r.table.rows[user.ID] = *user
	return nil
}

func (r *memUserRepository) Delete(_ context.Context, id string) error {
	return r.table.delete(id)
}

func (r *memUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *memUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, err := r.table.find(func(u domain.User) bool { return u.Email == email })
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *memUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, err := r.table.find(func(u domain.User) bool { return u.Username == username })
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *memUserRepository) List(_ context.Context, filter UserFilter) ([]domain.User, error) {
	return r.table.list(func(u domain.User) bool {
		return filter.Role == nil || u.Role == *filter.Role
	}, filter.OrderBy, memUserCmps, createdAsc)
}

type memHelperRepository struct {
	table *memTable[domain.Helper]
}

var memHelperCmps = map[string]func(a, b domain.Helper) int{
	FieldName:        func(a, b domain.Helper) int { return byFold(a.Name, b.Name) },
	FieldRating:      func(a, b domain.Helper) int { return cmp.Compare(a.Rating, b.Rating) },
	FieldServiceType: func(a, b domain.Helper) int { return byFold(a.ServiceType, b.ServiceType) },
	FieldIsAvailable: func(a, b domain.Helper) int { return byBool(a.IsAvailable, b.IsAvailable) },
	FieldCreatedAt:   func(a, b domain.Helper) int { return byTime(a.CreatedAt, b.CreatedAt) },
}

func (r *memHelperRepository) Create(_ context.Context, helper *domain.Helper) error {
	now := memNow()
	helper.ID = uuid.NewString()
	helper.CreatedAt, helper.UpdatedAt = now, now
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	r.table.rows[helper.ID] = copyHelper(*helper)
	return nil
}

func (r *memHelperRepository) Update(_ context.Context, helper *domain.Helper) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	existing, ok := r.table.rows[helper.ID]
	if !ok {
		return ErrNotFound
	}
	helper.CreatedAt = existing.CreatedAt
	helper.UpdatedAt = memNow()
	r.table.rows[helper.ID] = copyHelper(*helper)
	return nil
}

func (r *memHelperRepository) Delete(_ context.Context, id string) error {
	return r.table.delete(id)
}

func (r *memHelperRepository) GetByID(_ context.Context, id string) (*domain.Helper, error) {
	h, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *memHelperRepository) List(_ context.Context, filter HelperFilter) ([]domain.Helper, error) {
	return r.table.list(func(h domain.Helper) bool {
		if filter.Available != nil && h.IsAvailable != *filter.Available {
			return false
		}
		return filter.ServiceType == nil || h.ServiceType == *filter.ServiceType
	}, filter.OrderBy, memHelperCmps, createdAsc)
}

type memBookingRepository struct {
	table *memTable[domain.Booking]
}

var memBookingCmps = map[string]func(a, b domain.Booking) int{
	FieldCreatedAt:   func(a, b domain.Booking) int { return byTime(a.CreatedAt, b.CreatedAt) },
	FieldScheduledAt: func(a, b domain.Booking) int { return byTime(a.ScheduledAt, b.ScheduledAt) },
	FieldStatus:      func(a, b domain.Booking) int { return cmp.Compare(a.Status, b.Status) },
}

func (r *memBookingRepository) Create(_ context.Context, b *domain.Booking) error {
	now := memNow()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	r.table.rows[b.ID] = *b
	return nil
}

func (r *memBookingRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *memBookingRepository) List(_ context.Context, filter BookingFilter) ([]domain.Booking, error) {
	out, err := r.table.list(func(b domain.Booking) bool {
		switch {
		case filter.UserID != nil && b.UserID != *filter.UserID:
			return false
		case filter.HelperID != nil && b.HelperID != *filter.HelperID:
			return false
		case filter.Status != nil && b.Status != *filter.Status:
			return false
		}
		return true
	}, filter.OrderBy, memBookingCmps, createdDesc)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memBookingRepository) UpdateStatus(_ context.Context, id string, from, to domain.BookingStatus, completedAt *time.Time) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	b, ok := r.table.rows[id]
	if !ok {
		return ErrNotFound
	}
	if b.Status != from {
		return ErrStale
	}
	b.Status = to
	if completedAt != nil {
		t := *completedAt
		b.CompletedAt = &t
	}
	b.UpdatedAt = memNow()
	r.table.rows[id] = b
	return nil
}

type memContactRepository struct {
	table *memTable[domain.ContactMessage]
}

var memContactCmps = map[string]func(a, b domain.ContactMessage) int{
	FieldCreatedAt: func(a, b domain.ContactMessage) int { return byTime(a.CreatedAt, b.CreatedAt) },
	FieldStatus:    func(a, b domain.ContactMessage) int { return cmp.Compare(a.Status, b.Status) },
}

func (r *memContactRepository) Create(_ context.Context, msg *domain.ContactMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = memNow()
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	r.table.rows[msg.ID] = *msg
	return nil
}

func (r *memContactRepository) GetByID(_ context.Context, id string) (*domain.ContactMessage, error) {
	m, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memContactRepository) List(_ context.Context, filter ContactFilter) ([]domain.ContactMessage, error) {
	return r.table.list(func(m domain.ContactMessage) bool {
		return filter.Status == nil || m.Status == *filter.Status
	}, filter.OrderBy, memContactCmps, createdDesc)
}

func (r *memContactRepository) UpdateStatus(_ context.Context, id string, from, to domain.ContactStatus) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	m, ok := r.table.rows[id]
	if !ok {
		return ErrNotFound
	}
	if m.Status != from {
		return ErrStale
	}
	m.Status = to
	r.table.rows[id] = m
	return nil
}

func (r *memContactRepository) Delete(_ context.Context, id string) error {
	return r.table.delete(id)
}
