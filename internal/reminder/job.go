package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/mailer"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/observability/metrics"
)

// Class selects the reminder lookahead window.
type Class string

const (
	Class24h Class = "24h"
	Class2h  Class = "2h"
)

// Window returns the selection bounds for a run at now. The windows are
// wider than the worker interval so no appointment slips between runs; the
// dedup check absorbs the overlap.
func (c Class) Window(now time.Time) (from, to time.Time) {
	switch c {
	case Class24h:
		return now.Add(23 * time.Hour), now.Add(25 * time.Hour)
	case Class2h:
		return now.Add(110 * time.Minute), now.Add(130 * time.Minute)
	default:
		return now, now
	}
}

func (c Class) NotificationType() notification.Type {
	if c == Class2h {
		return notification.TypeReminder2h
	}
	return notification.TypeReminder24h
}

func (c Class) title() string {
	if c == Class2h {
		return "Appointment in 2 hours"
	}
	return "Appointment tomorrow"
}

// AppointmentSource yields the active appointments inside a window.
type AppointmentSource interface {
	FindRemindable(ctx context.Context, from, to time.Time) ([]appointment.ReminderCandidate, error)
}

// NotificationStore is the slice of the notification repository the job
// needs: the dedup lookup and the insert.
type NotificationStore interface {
	Insert(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
	ExistingTargetIDs(ctx context.Context, typ notification.Type, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// StaffDirectory lists the staff users of a clinic, the reminder audience.
type StaffDirectory interface {
	ListStaff(ctx context.Context, clinicID uuid.UUID) ([]clinic.StaffUser, error)
}

type Job struct {
	appointments  AppointmentSource
	notifications NotificationStore
	staff         StaffDirectory
	mail          mailer.Sender
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

func NewJob(appointments AppointmentSource, notifications NotificationStore, staff StaffDirectory, mail mailer.Sender, m *metrics.Metrics, log zerolog.Logger) *Job {
	return &Job{
		appointments:  appointments,
		notifications: notifications,
		staff:         staff,
		mail:          mail,
		metrics:       m,
		log:           log,
	}
}

// Run dispatches one reminder class. Appointments that already carry a
// notification of the class's type are skipped, so re-running inside the
// same window creates nothing new. Returns how many notifications were
// created; per-item failures are logged and skipped, never aborting the
// batch.
func (j *Job) Run(ctx context.Context, class Class, now time.Time) (int, error) {
	from, to := class.Window(now)

	candidates, err := j.appointments.FindRemindable(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("find remindable appointments: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	existing, err := j.notifications.ExistingTargetIDs(ctx, class.NotificationType(), ids)
	if err != nil {
		return 0, fmt.Errorf("load existing reminder targets: %w", err)
	}

	staffByClinic := make(map[uuid.UUID][]clinic.StaffUser)

	sent := 0
	for _, c := range candidates {
		if existing[c.ID] {
			continue
		}

		staff, ok := staffByClinic[c.ClinicID]
		if !ok {
			staff, err = j.staff.ListStaff(ctx, c.ClinicID)
			if err != nil {
				j.log.Error().Err(err).Str("clinic_id", c.ClinicID.String()).Msg("staff lookup failed, skipping appointment")
				continue
			}
			staffByClinic[c.ClinicID] = staff
		}

		local := c.StartsAt
		body := fmt.Sprintf("%s with %s on %s at %s",
			c.PatientName, c.ProfessionalName,
			local.Format("2006-01-02"), local.Format("15:04:05"))

		apptID := c.ID
		for _, su := range staff {
			n := &notification.Notification{
				RecipientID: su.ID,
				Type:        class.NotificationType(),
				Title:       class.title(),
				Body:        body,
				TargetID:    &apptID,
				TargetType:  "appointment",
			}
			if _, err := j.notifications.Insert(ctx, n); err != nil {
				j.log.Error().Err(err).
					Str("appointment_id", c.ID.String()).
					Str("recipient_id", su.ID.String()).
					Msg("reminder insert failed")
				continue
			}
			sent++

			if err := j.sendMail(ctx, su, c); err != nil {
				j.log.Error().Err(err).Str("to", su.Email).Msg("reminder mail failed")
			}
		}
	}

	j.metrics.ObserveReminders(string(class), sent)
	return sent, nil
}

func (j *Job) sendMail(ctx context.Context, su clinic.StaffUser, c appointment.ReminderCandidate) error {
	if j.mail == nil || su.Email == "" {
		return nil
	}
	return j.mail.Send(ctx, mailer.Message{
		To:       su.Email,
		ToName:   su.Name,
		Template: "appointment-reminder",
		Vars: map[string]string{
			"PatientName":      c.PatientName,
			"ProfessionalName": c.ProfessionalName,
			"Date":             c.StartsAt.Format("2006-01-02"),
			"Time":             c.StartsAt.Format("15:04:05"),
		},
	})
}
