package professional

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProfessionalNotFound = errors.New("professional not found")

// Repository contains all DB interactions needed by the service. Every query
// is clinic-scoped; an id owned by another clinic behaves as not found.
type Repository interface {
	Create(ctx context.Context, p *Professional) (*Professional, error)
	Update(ctx context.Context, p *Professional) (*Professional, error)
	GetForClinic(ctx context.Context, clinicID, id uuid.UUID) (*Professional, error)
	ListForClinic(ctx context.Context, clinicID uuid.UUID) ([]Professional, error)
}
