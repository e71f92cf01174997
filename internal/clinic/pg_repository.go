package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.PlanStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}

	return &c, nil
}

func scanStaff(row pgx.Row) (*StaffUser, error) {
	var s StaffUser

	err := row.Scan(
		&s.ID,
		&s.ClinicID,
		&s.Name,
		&s.Email,
		&s.Role,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *PgRepository) GetClinicByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, plan_status, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`, id)
	return scanClinic(row)
}

func (r *PgRepository) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status PlanStatus) (*Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clinics
		SET plan_status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, plan_status, created_at, updated_at
	`, id, status)
	return scanClinic(row)
}

func (r *PgRepository) GetStaffByID(ctx context.Context, clinicID, id uuid.UUID) (*StaffUser, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, name, email, role, created_at, updated_at
		FROM staff_users
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID)
	return scanStaff(row)
}

func (r *PgRepository) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]StaffUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, clinic_id, name, email, role, created_at, updated_at
		FROM staff_users
		WHERE clinic_id = $1
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StaffUser
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
