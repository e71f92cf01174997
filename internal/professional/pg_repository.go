package professional

import (
	"context"
	"errors"
	"time"

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

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	var specialty *string
	var startWeekday, endWeekday, startMinutes, endMinutes int

	err := row.Scan(
		&p.ID,
		&p.ClinicID,
		&p.Name,
		&specialty,
		&startWeekday,
		&endWeekday,
		&startMinutes,
		&endMinutes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	p.Specialty = specialty
	p.Window = WeeklyWindow{
		StartWeekday: time.Weekday(startWeekday),
		EndWeekday:   time.Weekday(endWeekday),
		StartTime:    DayTime(startMinutes),
		EndTime:      DayTime(endMinutes),
	}
	return &p, nil
}

func (r *PgRepository) Create(ctx context.Context, p *Professional) (*Professional, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO professionals
			(id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at
	`, id, p.ClinicID, p.Name, p.Specialty,
		int(p.Window.StartWeekday), int(p.Window.EndWeekday),
		int(p.Window.StartTime), int(p.Window.EndTime))

	return scanProfessional(row)
}

func (r *PgRepository) Update(ctx context.Context, p *Professional) (*Professional, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE professionals
		SET name = $3,
		    specialty = $4,
		    start_weekday = $5,
		    end_weekday = $6,
		    start_minutes = $7,
		    end_minutes = $8,
		    updated_at = now()
		WHERE id = $1 AND clinic_id = $2
		RETURNING id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at
	`, p.ID, p.ClinicID, p.Name, p.Specialty,
		int(p.Window.StartWeekday), int(p.Window.EndWeekday),
		int(p.Window.StartTime), int(p.Window.EndTime))

	return scanProfessional(row)
}

func (r *PgRepository) GetForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at
		FROM professionals
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID)
	return scanProfessional(row)
}

func (r *PgRepository) ListForClinic(ctx context.Context, clinicID uuid.UUID) ([]Professional, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at
		FROM professionals
		WHERE clinic_id = $1
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
