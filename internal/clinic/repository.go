package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrClinicNotFound = errors.New("clinic not found")
	ErrStaffNotFound  = errors.New("staff user not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetClinicByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status PlanStatus) (*Clinic, error)

	GetStaffByID(ctx context.Context, clinicID, id uuid.UUID) (*StaffUser, error)
	ListStaff(ctx context.Context, clinicID uuid.UUID) ([]StaffUser, error)
}
