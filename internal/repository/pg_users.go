package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

const userColumns = `id, full_name, username, email, phone, password_hash, provider, role, status,
               profile_complete, photo_url, created_at, updated_at`

var userSortable = map[string]bool{FieldFullName: true, FieldCreatedAt: true, FieldRole: true}

type pgUserRepository struct {
	pool *pgxpool.Pool
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (full_name, username, email, phone, password_hash, provider, role, status, profile_complete, photo_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	user.Status = activeIfUnset(user.Status)
	err := r.pool.QueryRow(ctx, query,
		user.FullName,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Provider,
		user.Role,
		user.Status,
		user.ProfileComplete,
		user.PhotoURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translatePgError(err)
}

func (r *pgUserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET full_name=$1, username=$2, email=$3, phone=$4, password_hash=$5, role=$6,
            status=$7, profile_complete=$8, photo_url=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`

	id, ok := pgID(user.ID)
	if !ok {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx, query,
		user.FullName,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.ProfileComplete,
		user.PhotoURL,
		id,
	).Scan(&user.UpdatedAt)
	return translatePgError(err)
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	id, ok := pgID(id)
	if !ok {
		return ErrNotFound
	}
	return expectOneRow(r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	id, ok := pgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *pgUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	var where whereBuilder
	if filter.Role != nil {
		where.eq("role", *filter.Role)
	}
	order, err := pgOrderBy(filter.OrderBy, userSortable, "created_at ASC")
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+where.String()+order, where.args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translatePgError(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Provider,
		&user.Role,
		&user.Status,
		&user.ProfileComplete,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
