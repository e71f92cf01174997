package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrCounterNotFound      = errors.New("unread counter not found")
)

// Repository contains all DB interactions needed by the service.
// AppendMessage is a single transaction: the message row, the recipient's
// counter bump, and the conversation stamp either all land or none do.
type Repository interface {
	CreateConversation(ctx context.Context, c *Conversation) (*Conversation, error)
	GetConversation(ctx context.Context, clinicID, id uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context, clinicID uuid.UUID, status *ConversationStatus) ([]Conversation, error)

	AppendMessage(ctx context.Context, clinicID, conversationID uuid.UUID, sender Party, senderID uuid.UUID, body string, at time.Time) (*Message, error)
	ListMessages(ctx context.Context, clinicID, conversationID uuid.UUID, limit, offset int) ([]Message, error)

	ResetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party, readerID *uuid.UUID, at time.Time) error
	GetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party) (*UnreadCounter, error)

	// ArchiveIdle transitions active conversations whose last message is older
	// than cutoff, returning how many rows changed.
	ArchiveIdle(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error)
}
