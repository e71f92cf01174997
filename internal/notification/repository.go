package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Repository contains all DB interactions needed by the dispatcher, the
// reminder job, and the owner-facing operations.
type Repository interface {
	Insert(ctx context.Context, n *Notification) (*Notification, error)

	ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) (*Notification, error)
	Delete(ctx context.Context, recipientID, id uuid.UUID) error

	// ExistingTargetIDs returns which of the given target ids already have a
	// notification of the given type. The reminder job's dedup check.
	ExistingTargetIDs(ctx context.Context, typ Type, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// ListStaffRecipients returns the staff user ids of a clinic, the fan-out
	// audience for clinic-wide events.
	ListStaffRecipients(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error)
}
