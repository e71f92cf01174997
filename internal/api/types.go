package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/chat"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
)

type CreateProfessionalRequest struct {
	Name         string  `json:"name"`
	Specialty    *string `json:"specialty,omitempty"`
	StartWeekday int     `json:"start_weekday"`
	EndWeekday   int     `json:"end_weekday"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
}

type ProfessionalResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Specialty    *string   `json:"specialty,omitempty"`
	StartWeekday int       `json:"start_weekday"`
	EndWeekday   int       `json:"end_weekday"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
}

func toProfessionalResponse(p *professional.Professional) ProfessionalResponse {
	return ProfessionalResponse{
		ID:           p.ID,
		Name:         p.Name,
		Specialty:    p.Specialty,
		StartWeekday: int(p.Window.StartWeekday),
		EndWeekday:   int(p.Window.EndWeekday),
		StartTime:    p.Window.StartTime.String(),
		EndTime:      p.Window.EndTime.String(),
	}
}

type CreatePatientRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type PatientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

type BookAppointmentRequest struct {
	PatientID      string `json:"patient_id"`
	ProfessionalID string `json:"professional_id"`
	StartsAt       string `json:"starts_at"` // RFC 3339
	PriceCents     int64  `json:"price_cents"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	StartsAt       time.Time `json:"starts_at"`
	Status         string    `json:"status"`
	PriceCents     int64     `json:"price_cents"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		PatientID:      a.PatientID,
		ProfessionalID: a.ProfessionalID,
		StartsAt:       a.StartsAt,
		Status:         string(a.Status),
		PriceCents:     a.PriceCents,
	}
}

type StartConversationRequest struct {
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
}

type SendMessageRequest struct {
	Sender   string `json:"sender"` // patient or receptionist
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
}

type MarkReadRequest struct {
	Reader   string  `json:"reader"`
	ReaderID *string `json:"reader_id,omitempty"`
}

type ConversationResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	Status        string     `json:"status"`
	Priority      int        `json:"priority"`
	LastMessageAt time.Time  `json:"last_message_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

func toConversationResponse(c *chat.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:            c.ID,
		PatientID:     c.PatientID,
		Status:        string(c.Status),
		Priority:      c.Priority,
		LastMessageAt: c.LastMessageAt,
		ResolvedAt:    c.ResolvedAt,
	}
}

type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	Sender    string     `json:"sender"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toMessageResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Sender:    string(m.Sender),
		SenderID:  m.SenderID,
		Body:      m.Body,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
	TargetType string     `json:"target_type,omitempty"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Body:       n.Body,
		TargetID:   n.TargetID,
		TargetType: n.TargetType,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

// JobResultResponse is the scheduled-trigger output contract.
type JobResultResponse struct {
	Success       bool `json:"success"`
	SentCount     *int `json:"sentCount,omitempty"`
	ArchivedCount *int `json:"archivedCount,omitempty"`
	ExpiredCount  *int `json:"expiredCount,omitempty"`
}

type JobFailureResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
