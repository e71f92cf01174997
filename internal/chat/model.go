package chat

import (
	"time"

	"github.com/google/uuid"
)

// Party is one side of the two-party conversation.
type Party string

const (
	PartyPatient      Party = "patient"
	PartyReceptionist Party = "receptionist"
)

// Opposite returns the recipient party for a message sent by p.
func (p Party) Opposite() Party {
	if p == PartyPatient {
		return PartyReceptionist
	}
	return PartyPatient
}

func (p Party) Valid() bool {
	return p == PartyPatient || p == PartyReceptionist
}

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// ResolvedReasonIdle marks conversations the maintenance job archived for
// inactivity.
const ResolvedReasonIdle = "auto_idle"

type Conversation struct {
	ID             uuid.UUID
	ClinicID       uuid.UUID
	PatientID      uuid.UUID
	Status         ConversationStatus
	Priority       int
	LastMessageAt  time.Time
	ResolvedReason *string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Sender         Party
	SenderID       uuid.UUID
	Body           string
	ReadAt         *time.Time
	CreatedAt      time.Time
}

// UnreadCounter holds one party's unread count for a conversation. Exactly
// one row per (conversation, party) once the conversation exists.
type UnreadCounter struct {
	ConversationID uuid.UUID
	Party          Party
	Count          int
	LastReadAt     *time.Time
}
