package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

func TestWhereBuilderNumbersPlaceholders(t *testing.T) {
	var w whereBuilder
	if w.String() != "" {
		t.Fatal("empty builder should render nothing")
	}
	w.eq("is_available", true)
	w.eq("service_type", "Cleaning")
	if got := w.String(); got != " WHERE is_available=$1 AND service_type=$2" {
		t.Fatalf("where = %q", got)
	}
	if len(w.args) != 2 {
		t.Fatalf("args = %v", w.args)
	}
}

func TestPgOrderBy(t *testing.T) {
	got, err := pgOrderBy(nil, bookingSortable, "created_at DESC")
	if err != nil || got != " ORDER BY created_at DESC" {
		t.Fatalf("fallback = %q, %v", got, err)
	}
	got, err = pgOrderBy([]Order{{Field: FieldRating, Desc: true}, {Field: FieldName}}, helperSortable, "")
	if err != nil || got != " ORDER BY rating DESC, name ASC" {
		t.Fatalf("order = %q, %v", got, err)
	}
	if _, err := pgOrderBy([]Order{{Field: "id; DROP TABLE users"}}, helperSortable, ""); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestTranslatePgError(t *testing.T) {
	if !errors.Is(translatePgError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound) {
		t.Fatal("no rows should map to ErrNotFound")
	}
	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"}
	if !errors.Is(translatePgError(dup), ErrDuplicate) {
		t.Fatal("unique violation should map to ErrDuplicate")
	}
	other := errors.New("connection reset")
	if translatePgError(other) != other {
		t.Fatal("unknown errors pass through")
	}
}

func TestTranslatePgErrorInvalidTextIsNotFound(t *testing.T) {
	bad := &pgconn.PgError{Code: pgInvalidTextFormat, Message: `invalid input syntax for type uuid: "abc"`}
	if !errors.Is(translatePgError(bad), ErrNotFound) {
		t.Fatal("invalid uuid text should map to ErrNotFound")
	}
}

func TestPgIDCanonicalizes(t *testing.T) {
	id, ok := pgID("{6BA7B810-9DAD-11D1-80B4-00C04FD430C8}")
	if !ok || id != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Fatalf("pgID = %q, %v", id, ok)
	}
	for _, bad := range []string{"", "abc", "xyz-123", "6ba7b810-9dad-11d1-80b4"} {
		if _, ok := pgID(bad); ok {
			t.Errorf("pgID(%q) should be rejected", bad)
		}
	}
}

// A nil pool proves the malformed id is rejected before any query is sent.
func TestPgRepositoriesTreatMalformedIDsAsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewPostgresStore(nil)

	checks := map[string]error{
		"users.GetByID":         func() error { _, err := store.Users.GetByID(ctx, "abc"); return err }(),
		"users.Update":          store.Users.Update(ctx, &domain.User{ID: "abc"}),
		"users.Delete":          store.Users.Delete(ctx, "abc"),
		"helpers.GetByID":       func() error { _, err := store.Helpers.GetByID(ctx, "xyz"); return err }(),
		"helpers.Update":        store.Helpers.Update(ctx, &domain.Helper{ID: "xyz"}),
		"helpers.Delete":        store.Helpers.Delete(ctx, "xyz"),
		"bookings.GetByID":      func() error { _, err := store.Bookings.GetByID(ctx, "abc"); return err }(),
		"bookings.UpdateStatus": store.Bookings.UpdateStatus(ctx, "abc", domain.BookingStatusPending, domain.BookingStatusActive, nil),
		"contacts.GetByID":      func() error { _, err := store.Contacts.GetByID(ctx, "abc"); return err }(),
		"contacts.UpdateStatus": store.Contacts.UpdateStatus(ctx, "abc", domain.ContactStatusNew, domain.ContactStatusRead),
		"contacts.Delete":       store.Contacts.Delete(ctx, "abc"),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: got %v, want ErrNotFound", name, err)
		}
	}

	userID := "abc"
	items, err := store.Bookings.List(ctx, BookingFilter{UserID: &userID})
	if err != nil || len(items) != 0 {
		t.Fatalf("List with malformed user id = %v, %v", items, err)
	}
}
