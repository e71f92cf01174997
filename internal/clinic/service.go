package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrPlanForbids = errors.New("clinic plan does not allow this feature")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	c, err := s.repo.GetClinicByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrClinicNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load clinic: %w", err)
	}
	return c, nil
}

func (s *Service) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]StaffUser, error) {
	staff, err := s.repo.ListStaff(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (s *Service) SetPlanStatus(ctx context.Context, clinicID uuid.UUID, status PlanStatus) (*Clinic, error) {
	switch status {
	case PlanActive, PlanTrial, PlanCancelled, PlanExpired:
	default:
		return nil, fmt.Errorf("unknown plan status %q", status)
	}

	c, err := s.repo.UpdatePlanStatus(ctx, clinicID, status)
	if err != nil {
		if errors.Is(err, ErrClinicNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update plan status: %w", err)
	}
	return c, nil
}

// RequireFeature rejects write-side features for clinics whose plan lapsed.
// Cancelled and expired plans keep read access only.
func (s *Service) RequireFeature(ctx context.Context, clinicID uuid.UUID, f Feature) error {
	c, err := s.GetClinic(ctx, clinicID)
	if err != nil {
		return err
	}

	switch c.PlanStatus {
	case PlanActive, PlanTrial:
		return nil
	case PlanCancelled, PlanExpired:
		return fmt.Errorf("%w: %s requires an active plan", ErrPlanForbids, f)
	default:
		return fmt.Errorf("unknown plan status %q on clinic %s", c.PlanStatus, c.ID)
	}
}
