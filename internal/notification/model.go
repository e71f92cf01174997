package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type is the closed set of domain events a notification can record.
type Type string

const (
	TypeAppointmentCreated   Type = "appointment_created"
	TypeAppointmentCancelled Type = "appointment_cancelled"
	TypeAppointmentCompleted Type = "appointment_completed"
	TypeReminder24h          Type = "appointment_reminder_24h"
	TypeReminder2h           Type = "appointment_reminder_2h"
	TypeNewPatient           Type = "new_patient"
	TypeNewMessage           Type = "new_message"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        Type
	Title       string
	Body        string
	TargetID    *uuid.UUID
	TargetType  string
	Read        bool
	CreatedAt   time.Time
}

// Event is what domain services report. The dispatcher decides who gets
// told; callers only say what happened.
type Event struct {
	ClinicID   uuid.UUID
	Type       Type
	Title      string
	Body       string
	TargetID   *uuid.UUID
	TargetType string
}
