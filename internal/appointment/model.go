package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Occupies reports whether an appointment in this status blocks its
// (professional, timestamp) slot. Only cancellation frees the slot.
func (s Status) Occupies() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusExpired:
		return true
	case StatusCancelled:
		return false
	default:
		return true
	}
}

type Patient struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is a point-in-time booking: a single absolute timestamp, not a
// range. StartsAt is stored in UTC.
type Appointment struct {
	ID             uuid.UUID
	ClinicID       uuid.UUID
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	StartsAt       time.Time
	Status         Status
	PriceCents     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReminderCandidate is an active appointment hydrated with the names the
// reminder templates need.
type ReminderCandidate struct {
	Appointment
	PatientName      string
	ProfessionalName string
}
