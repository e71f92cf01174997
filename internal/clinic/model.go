package clinic

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus is derived from the payment-provider webhook; it gates which
// features a clinic may use.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanTrial     PlanStatus = "trial"
	PlanCancelled PlanStatus = "cancelled"
	PlanExpired   PlanStatus = "expired"
)

// Feature names gated by plan status.
type Feature string

const (
	FeatureBooking Feature = "booking"
	FeatureChat    Feature = "chat"
)

type Clinic struct {
	ID         uuid.UUID
	Name       string
	PlanStatus PlanStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StaffUser is a clinic-side user: receptionists and administrators. Staff
// are the recipients of appointment reminders and lifecycle notifications.
type StaffUser struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
