package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

const bookingColumns = `id, user_id, helper_id, helper_name, helper_rating, helper_job_count,
               helper_employee_id, helper_image_url, service_name, service_id, status,
               customer_name, customer_phone, customer_email, address, scheduled_at,
               special_instructions, payment_mode, payment_status, transaction_id,
               total_amount, completed_at, created_at, updated_at`

var bookingSortable = map[string]bool{FieldCreatedAt: true, FieldScheduledAt: true, FieldStatus: true}

type pgBookingRepository struct {
	pool *pgxpool.Pool
}

func (r *pgBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	const query = `
        INSERT INTO bookings (user_id, helper_id, helper_name, helper_rating, helper_job_count,
            helper_employee_id, helper_image_url, service_name, service_id, status,
            customer_name, customer_phone, customer_email, address, scheduled_at,
            special_instructions, payment_mode, payment_status, transaction_id, total_amount)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		b.UserID,
		b.HelperID,
		b.Helper.Name,
		b.Helper.Rating,
		b.Helper.JobCount,
		b.Helper.EmployeeID,
		b.Helper.ImageURL,
		b.ServiceName,
		b.ServiceID,
		b.Status,
		b.CustomerName,
		b.CustomerPhone,
		b.CustomerEmail,
		b.Address,
		b.ScheduledAt,
		b.SpecialInstructions,
		b.PaymentMode,
		b.PaymentStatus,
		b.TransactionID,
		b.TotalAmount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return translatePgError(err)
}

func (r *pgBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	id, ok := pgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, translatePgError(err)
	}
	return b, nil
}

func (r *pgBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	var where whereBuilder
	if filter.UserID != nil {
		id, ok := pgID(*filter.UserID)
		if !ok {
			return nil, nil
		}
		where.eq("user_id", id)
	}
	if filter.HelperID != nil {
		id, ok := pgID(*filter.HelperID)
		if !ok {
			return nil, nil
		}
		where.eq("helper_id", id)
	}
	if filter.Status != nil {
		where.eq("status", *filter.Status)
	}
	order, err := pgOrderBy(filter.OrderBy, bookingSortable, "created_at DESC")
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where.String() + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *pgBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, completedAt *time.Time) error {
	const query = `
        UPDATE bookings SET status=$1, completed_at=COALESCE($2, completed_at), updated_at=NOW()
        WHERE id=$3 AND status=$4`

	id, ok := pgID(id)
	if !ok {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, query, to, completedAt, id, from)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id=$1)`, id).Scan(&exists); err != nil {
		return translatePgError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStale
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.HelperID,
		&b.Helper.Name,
		&b.Helper.Rating,
		&b.Helper.JobCount,
		&b.Helper.EmployeeID,
		&b.Helper.ImageURL,
		&b.ServiceName,
		&b.ServiceID,
		&b.Status,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.Address,
		&b.ScheduledAt,
		&b.SpecialInstructions,
		&b.PaymentMode,
		&b.PaymentStatus,
		&b.TransactionID,
		&b.TotalAmount,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
