package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
)

// pgID returns id in canonical UUID form. Ids that are not UUIDs cannot
// name a row, so callers report ErrNotFound for them.
func pgID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgInvalidTextFormat:
			return ErrNotFound
		}
	}
	return err
}

// whereBuilder collects equality clauses with positional placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) eq(column string, value any) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf("%s=$%d", column, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func pgOrderBy(orders []Order, allowed map[string]bool, fallback string) (string, error) {
	if len(orders) == 0 {
		return " ORDER BY " + fallback, nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if !allowed[o.Field] {
			return "", fmt.Errorf("cannot sort by %q", o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, o.Field+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func expectOneRow(cmd pgconn.CommandTag, err error) error {
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NewPostgresStore wires the pgx-backed repositories.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return Store{
		Users:    &pgUserRepository{pool: pool},
		Helpers:  &pgHelperRepository{pool: pool},
		Bookings: &pgBookingRepository{pool: pool},
		Contacts: &pgContactRepository{pool: pool},
	}
}
