package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/mailer"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
)

var (
	ErrSlotTaken           = errors.New("professional already has an appointment at this time")
	ErrSlotBeingBooked     = errors.New("slot is currently being booked, please retry")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrStartsInPast        = errors.New("appointment must start in the future")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrProfessionalMissing = errors.New("professional not found")
)

// ProfessionalDirectory is the slice of the professional service booking
// needs: ownership validation only.
type ProfessionalDirectory interface {
	Exists(ctx context.Context, clinicID, id uuid.UUID) error
}

// ClinicDirectory resolves clinic display data for the welcome mail.
type ClinicDirectory interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
}

type Service struct {
	repo          Repository
	professionals ProfessionalDirectory
	clinics       ClinicDirectory
	locker        redisclient.Locker
	events        notification.Dispatcher
	mail          mailer.Sender
	log           zerolog.Logger
}

func NewService(repo Repository, professionals ProfessionalDirectory, clinics ClinicDirectory, locker redisclient.Locker, events notification.Dispatcher, mail mailer.Sender, log zerolog.Logger) *Service {
	if mail == nil {
		mail = mailer.Noop{}
	}
	return &Service{
		repo:          repo,
		professionals: professionals,
		clinics:       clinics,
		locker:        locker,
		events:        events,
		mail:          mail,
		log:           log,
	}
}

// CreatePatient registers a patient and announces them to the clinic staff.
func (s *Service) CreatePatient(ctx context.Context, clinicID uuid.UUID, name string, email, phone *string) (*Patient, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	created, err := s.repo.CreatePatient(ctx, &Patient{
		ClinicID: clinicID,
		Name:     name,
		Email:    email,
		Phone:    phone,
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.dispatch(ctx, notification.Event{
		ClinicID:   clinicID,
		Type:       notification.TypeNewPatient,
		Title:      "New patient",
		Body:       fmt.Sprintf("%s was registered", created.Name),
		TargetID:   &created.ID,
		TargetType: "patient",
	})

	s.sendWelcome(ctx, clinicID, created)

	return created, nil
}

// sendWelcome mails the new patient when an address is on file. Mail failure
// never fails the registration.
func (s *Service) sendWelcome(ctx context.Context, clinicID uuid.UUID, p *Patient) {
	if p.Email == nil || *p.Email == "" {
		return
	}

	c, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		s.log.Error().Err(err).Str("clinic_id", clinicID.String()).Msg("welcome mail: clinic lookup failed")
		return
	}

	err = s.mail.Send(ctx, mailer.Message{
		To:       *p.Email,
		ToName:   p.Name,
		Template: "welcome-patient",
		Vars: map[string]string{
			"PatientName": p.Name,
			"ClinicName":  c.Name,
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("patient_id", p.ID.String()).Msg("welcome mail failed")
	}
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetPatientForClinic(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	return p, nil
}

// Book reserves a (professional, timestamp) slot for a patient. A
// distributed lock keyed on professional and timestamp keeps concurrent
// requests for the same slot from both passing the conflict check.
func (s *Service) Book(ctx context.Context, clinicID, patientID, professionalID uuid.UUID, startsAt time.Time, priceCents int64) (*Appointment, error) {
	if priceCents < 0 {
		return nil, ErrInvalidPrice
	}
	if !startsAt.After(time.Now()) {
		return nil, ErrStartsInPast
	}

	if _, err := s.GetPatient(ctx, clinicID, patientID); err != nil {
		return nil, err
	}
	if err := s.professionals.Exists(ctx, clinicID, professionalID); err != nil {
		return nil, err
	}

	startsAt = startsAt.UTC().Truncate(time.Minute)

	var created *Appointment

	lockKey := fmt.Sprintf("lock:booking:%s:%d", professionalID, startsAt.Unix())
	err := s.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
		// Inside the critical section re-check for an occupying appointment.
		existing, err := s.repo.GetOccupyingAt(lockCtx, professionalID, startsAt)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check occupying appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		appt, err := s.repo.Create(lockCtx, &Appointment{
			ClinicID:       clinicID,
			PatientID:      patientID,
			ProfessionalID: professionalID,
			StartsAt:       startsAt,
			PriceCents:     priceCents,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.dispatch(ctx, notification.Event{
		ClinicID:   clinicID,
		Type:       notification.TypeAppointmentCreated,
		Title:      "Appointment booked",
		Body:       fmt.Sprintf("New appointment on %s", created.StartsAt.Format("2006-01-02 15:04")),
		TargetID:   &created.ID,
		TargetType: "appointment",
	})

	return created, nil
}

// Cancel moves an active appointment to cancelled. Cancelled, completed and
// expired are terminal.
func (s *Service) Cancel(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, clinicID, id, StatusCancelled, notification.TypeAppointmentCancelled, "Appointment cancelled")
}

// Complete moves an active appointment to completed.
func (s *Service) Complete(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, clinicID, id, StatusCompleted, notification.TypeAppointmentCompleted, "Appointment completed")
}

func (s *Service) transition(ctx context.Context, clinicID, id uuid.UUID, to Status, evType notification.Type, title string) (*Appointment, error) {
	appt, err := s.repo.GetForClinic(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	switch appt.Status {
	case StatusActive:
		// The only state transitions may start from.
	case StatusCancelled, StatusCompleted, StatusExpired:
		return nil, ErrInvalidTransition
	default:
		return nil, fmt.Errorf("unknown appointment status %q", appt.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, clinicID, id, StatusActive, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race with another transition.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.dispatch(ctx, notification.Event{
		ClinicID:   clinicID,
		Type:       evType,
		Title:      title,
		Body:       fmt.Sprintf("Appointment on %s is now %s", updated.StartsAt.Format("2006-01-02 15:04"), updated.Status),
		TargetID:   &updated.ID,
		TargetType: "appointment",
	})

	return updated, nil
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetForClinic(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	appts, err := s.repo.ListForClinic(ctx, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// ExpireOverdue is the worker pass that retires active appointments whose
// start time is further in the past than the grace period. Returns how many
// were expired; per-item failures are logged and skipped.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	candidates, err := s.repo.FindActiveStartedBefore(ctx, now.Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	expired := 0
	for _, appt := range candidates {
		_, err := s.repo.UpdateStatus(ctx, appt.ClinicID, appt.ID, StatusActive, StatusExpired)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to expire appointment")
			}
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *Service) dispatch(ctx context.Context, ev notification.Event) {
	if err := s.events.Dispatch(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("type", string(ev.Type)).Msg("event dispatch failed")
	}
}
