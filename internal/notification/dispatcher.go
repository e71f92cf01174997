package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Dispatcher receives domain events and turns them into notifications.
// Domain services depend on this interface rather than inserting rows
// themselves, so tests can swap in a recording fake.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// StaffDispatcher fans each event out to every staff user of the clinic it
// belongs to.
type StaffDispatcher struct {
	repo Repository
	log  zerolog.Logger
}

func NewStaffDispatcher(repo Repository, log zerolog.Logger) *StaffDispatcher {
	return &StaffDispatcher{repo: repo, log: log}
}

func (d *StaffDispatcher) Dispatch(ctx context.Context, ev Event) error {
	recipients, err := d.repo.ListStaffRecipients(ctx, ev.ClinicID)
	if err != nil {
		return fmt.Errorf("list staff recipients: %w", err)
	}

	for _, rid := range recipients {
		n := &Notification{
			RecipientID: rid,
			Type:        ev.Type,
			Title:       ev.Title,
			Body:        ev.Body,
			TargetID:    ev.TargetID,
			TargetType:  ev.TargetType,
		}
		if _, err := d.repo.Insert(ctx, n); err != nil {
			// One failed insert must not starve the rest of the fan-out.
			d.log.Error().Err(err).
				Str("type", string(ev.Type)).
				Str("recipient_id", rid.String()).
				Msg("notification insert failed")
		}
	}

	return nil
}
