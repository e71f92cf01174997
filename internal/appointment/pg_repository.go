package appointment

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

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email, phone *string

	err := row.Scan(
		&p.ID,
		&p.ClinicID,
		&p.Name,
		&email,
		&phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	p.Phone = phone
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.ClinicID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.StartsAt,
		&a.Status,
		&a.PriceCents,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

const appointmentCols = `id, clinic_id, patient_id, professional_id, starts_at, status, price_cents, created_at, updated_at`

// Interface methods

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, clinic_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, clinic_id, name, email, phone, created_at, updated_at
	`, id, p.ClinicID, p.Name, p.Email, p.Phone)

	return scanPatient(row)
}

func (r *PgRepository) GetPatientForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, name, email, phone, created_at, updated_at
		FROM patients
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID)
	return scanPatient(row)
}

func (r *PgRepository) GetOccupyingAt(ctx context.Context, professionalID uuid.UUID, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE professional_id = $1
		  AND starts_at = $2
		  AND status <> 'cancelled'
	`, professionalID, at)
	return scanAppointment(row)
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, clinic_id, patient_id, professional_id, starts_at, status, price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'active', $6, now(), now())
		RETURNING `+appointmentCols+`
	`, id, a.ClinicID, a.PatientID, a.ProfessionalID, a.StartsAt, a.PriceCents)

	return scanAppointment(row)
}

func (r *PgRepository) GetForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID)
	return scanAppointment(row)
}

func (r *PgRepository) ListForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE clinic_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
		ORDER BY starts_at
	`, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3,
		    updated_at = now()
		WHERE id = $1
		  AND clinic_id = $2
		  AND status = $4
		RETURNING `+appointmentCols+`
	`, id, clinicID, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) ListActiveForProfessional(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE professional_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
		  AND status = 'active'
		ORDER BY starts_at
	`, professionalID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) FindRemindable(ctx context.Context, from, to time.Time) ([]ReminderCandidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.clinic_id, a.patient_id, a.professional_id, a.starts_at, a.status, a.price_cents, a.created_at, a.updated_at,
		       pa.name, pr.name
		FROM appointments a
		JOIN patients pa ON pa.id = a.patient_id
		JOIN professionals pr ON pr.id = a.professional_id
		WHERE a.status = 'active'
		  AND a.starts_at >= $1
		  AND a.starts_at <= $2
		ORDER BY a.starts_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		err := rows.Scan(
			&c.ID,
			&c.ClinicID,
			&c.PatientID,
			&c.ProfessionalID,
			&c.StartsAt,
			&c.Status,
			&c.PriceCents,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.PatientName,
			&c.ProfessionalName,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) FindActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE status = 'active'
		  AND starts_at < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
