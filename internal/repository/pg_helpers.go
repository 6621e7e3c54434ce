package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

const helperColumns = `id, name, phone, email, service_type, location, experience, is_available,
               price_per_hour, rating, completed_jobs, skills, employee_id, description,
               profile_image_url, created_at, updated_at`

var helperSortable = map[string]bool{
	FieldName:        true,
	FieldRating:      true,
	FieldServiceType: true,
	FieldIsAvailable: true,
	FieldCreatedAt:   true,
}

type pgHelperRepository struct {
	pool *pgxpool.Pool
}

func (r *pgHelperRepository) Create(ctx context.Context, helper *domain.Helper) error {
	const query = `
        INSERT INTO helpers (name, phone, email, service_type, location, experience, is_available,
            price_per_hour, rating, completed_jobs, skills, employee_id, description, profile_image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		helper.Name,
		helper.Phone,
		helper.Email,
		helper.ServiceType,
		helper.Location,
		helper.Experience,
		helper.IsAvailable,
		helper.PricePerHour,
		helper.Rating,
		helper.CompletedJobs,
		skillsOrEmpty(helper.Skills),
		helper.EmployeeID,
		helper.Description,
		helper.ProfileImageURL,
	).Scan(&helper.ID, &helper.CreatedAt, &helper.UpdatedAt)
	return translatePgError(err)
}

func (r *pgHelperRepository) Update(ctx context.Context, helper *domain.Helper) error {
	const query = `
        UPDATE helpers SET name=$1, phone=$2, email=$3, service_type=$4, location=$5, experience=$6,
            is_available=$7, price_per_hour=$8, rating=$9, completed_jobs=$10, skills=$11,
            employee_id=$12, description=$13, profile_image_url=$14, updated_at=NOW()
        WHERE id=$15
        RETURNING updated_at`

	id, ok := pgID(helper.ID)
	if !ok {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx, query,
		helper.Name,
		helper.Phone,
		helper.Email,
		helper.ServiceType,
		helper.Location,
		helper.Experience,
		helper.IsAvailable,
		helper.PricePerHour,
		helper.Rating,
		helper.CompletedJobs,
		skillsOrEmpty(helper.Skills),
		helper.EmployeeID,
		helper.Description,
		helper.ProfileImageURL,
		id,
	).Scan(&helper.UpdatedAt)
	return translatePgError(err)
}

func (r *pgHelperRepository) Delete(ctx context.Context, id string) error {
	id, ok := pgID(id)
	if !ok {
		return ErrNotFound
	}
	return expectOneRow(r.pool.Exec(ctx, `DELETE FROM helpers WHERE id=$1`, id))
}

func (r *pgHelperRepository) GetByID(ctx context.Context, id string) (*domain.Helper, error) {
	id, ok := pgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	helper, err := scanHelper(r.pool.QueryRow(ctx, `SELECT `+helperColumns+` FROM helpers WHERE id=$1`, id))
	if err != nil {
		return nil, translatePgError(err)
	}
	return helper, nil
}

func (r *pgHelperRepository) List(ctx context.Context, filter HelperFilter) ([]domain.Helper, error) {
	var where whereBuilder
	if filter.Available != nil {
		where.eq("is_available", *filter.Available)
	}
	if filter.ServiceType != nil {
		where.eq("service_type", *filter.ServiceType)
	}
	order, err := pgOrderBy(filter.OrderBy, helperSortable, "created_at ASC")
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+helperColumns+` FROM helpers`+where.String()+order, where.args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var helpers []domain.Helper
	for rows.Next() {
		helper, err := scanHelper(rows)
		if err != nil {
			return nil, err
		}
		helpers = append(helpers, *helper)
	}
	return helpers, rows.Err()
}

func scanHelper(row pgx.Row) (*domain.Helper, error) {
	var helper domain.Helper
	if err := row.Scan(
		&helper.ID,
		&helper.Name,
		&helper.Phone,
		&helper.Email,
		&helper.ServiceType,
		&helper.Location,
		&helper.Experience,
		&helper.IsAvailable,
		&helper.PricePerHour,
		&helper.Rating,
		&helper.CompletedJobs,
		&helper.Skills,
		&helper.EmployeeID,
		&helper.Description,
		&helper.ProfileImageURL,
		&helper.CreatedAt,
		&helper.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &helper, nil
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
