package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
)

// ProfessionalSource loads a professional, clinic-scoped.
type ProfessionalSource interface {
	Get(ctx context.Context, clinicID, id uuid.UUID) (*professional.Professional, error)
}

// AppointmentSource lists a professional's active appointments in a range.
type AppointmentSource interface {
	ListActiveForProfessional(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]appointment.Appointment, error)
}

type Service struct {
	professionals ProfessionalSource
	appointments  AppointmentSource
	calc          Calculator
}

func NewService(professionals ProfessionalSource, appointments AppointmentSource, calc Calculator) *Service {
	return &Service{
		professionals: professionals,
		appointments:  appointments,
		calc:          calc,
	}
}

// ForProfessional computes the free slots of one professional over the
// configured horizon. A professional owned by another clinic surfaces as not
// found; no partial result is returned.
func (s *Service) ForProfessional(ctx context.Context, clinicID, professionalID uuid.UUID, now time.Time) ([]DaySlots, error) {
	p, err := s.professionals.Get(ctx, clinicID, professionalID)
	if err != nil {
		return nil, err
	}

	from := now.AddDate(0, 0, -1) // generous lower bound; exact matching filters the rest
	to := now.AddDate(0, 0, s.calc.HorizonDays+1)

	appts, err := s.appointments.ListActiveForProfessional(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	booked := make([]time.Time, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, a.StartsAt)
	}

	return s.calc.Compute(p.Window, now, booked), nil
}
