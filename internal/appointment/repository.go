package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service. Queries are
// clinic-scoped unless they back a cross-clinic job (reminders, expiry).
type Repository interface {
	CreatePatient(ctx context.Context, p *Patient) (*Patient, error)
	GetPatientForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error)

	// For conflict checks inside the booking critical section.
	GetOccupyingAt(ctx context.Context, professionalID uuid.UUID, at time.Time) (*Appointment, error)

	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error)
	ListForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// Compare-and-set status update; ErrAppointmentNotFound when no row is in
	// the expected source state.
	UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, from, to Status) (*Appointment, error)

	// For the availability calculator.
	ListActiveForProfessional(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// For the reminder job: active appointments starting inside the window,
	// any clinic, with names joined in.
	FindRemindable(ctx context.Context, from, to time.Time) ([]ReminderCandidate, error)

	// For the expiry job.
	FindActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error)
}
