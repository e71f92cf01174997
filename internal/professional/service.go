package professional

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, clinicID uuid.UUID, name string, specialty *string, window WeeklyWindow) (*Professional, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("invalid availability window: %w", err)
	}

	p := &Professional{
		ClinicID:  clinicID,
		Name:      name,
		Specialty: specialty,
		Window:    window,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create professional: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, clinicID, id uuid.UUID, name string, specialty *string, window WeeklyWindow) (*Professional, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("invalid availability window: %w", err)
	}

	existing, err := s.Get(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Specialty = specialty
	existing.Window = window

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrProfessionalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update professional: %w", err)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Professional, error) {
	p, err := s.repo.GetForClinic(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, ErrProfessionalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load professional: %w", err)
	}
	return p, nil
}

// Exists checks clinic-scoped ownership without loading the caller a copy.
func (s *Service) Exists(ctx context.Context, clinicID, id uuid.UUID) error {
	_, err := s.Get(ctx, clinicID, id)
	return err
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID) ([]Professional, error) {
	ps, err := s.repo.ListForClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return ps, nil
}
