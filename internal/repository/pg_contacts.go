package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

const contactColumns = `id, full_name, email, phone, message, status, created_at`

var contactSortable = map[string]bool{FieldCreatedAt: true, FieldStatus: true}

type pgContactRepository struct {
	pool *pgxpool.Pool
}

func (r *pgContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	const query = `
        INSERT INTO contact_messages (full_name, email, phone, message, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		msg.FullName,
		msg.Email,
		msg.Phone,
		msg.Message,
		msg.Status,
	).Scan(&msg.ID, &msg.CreatedAt)
	return translatePgError(err)
}

func (r *pgContactRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	id, ok := pgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	msg, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id=$1`, id))
	if err != nil {
		return nil, translatePgError(err)
	}
	return msg, nil
}

func (r *pgContactRepository) List(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error) {
	var where whereBuilder
	if filter.Status != nil {
		where.eq("status", *filter.Status)
	}
	order, err := pgOrderBy(filter.OrderBy, contactSortable, "created_at DESC")
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contact_messages`+where.String()+order, where.args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var msgs []domain.ContactMessage
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func (r *pgContactRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ContactStatus) error {
	id, ok := pgID(id)
	if !ok {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE contact_messages SET status=$1 WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStale
}

func (r *pgContactRepository) Delete(ctx context.Context, id string) error {
	id, ok := pgID(id)
	if !ok {
		return ErrNotFound
	}
	return expectOneRow(r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id=$1`, id))
}

func scanContact(row pgx.Row) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := row.Scan(
		&msg.ID,
		&msg.FullName,
		&msg.Email,
		&msg.Phone,
		&msg.Message,
		&msg.Status,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
