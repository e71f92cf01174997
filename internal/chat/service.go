package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/observability/metrics"
)

var ErrEmptyMessage = errors.New("message body is required")
var ErrBadParty = errors.New("unknown conversation party")

type Service struct {
	repo    Repository
	events  notification.Dispatcher
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewService(repo Repository, events notification.Dispatcher, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		metrics: m,
		log:     log,
	}
}

// Start opens a conversation for a patient, with both unread counters at
// zero, and delivers the opening message through the normal send path.
func (s *Service) Start(ctx context.Context, clinicID, patientID uuid.UUID, openedBy Party, openerID uuid.UUID, firstMessage string) (*Conversation, error) {
	if !openedBy.Valid() {
		return nil, ErrBadParty
	}
	if firstMessage == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.repo.CreateConversation(ctx, &Conversation{
		ClinicID:  clinicID,
		PatientID: patientID,
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	if _, err := s.SendMessage(ctx, clinicID, conv.ID, openedBy, openerID, firstMessage); err != nil {
		return nil, err
	}

	return conv, nil
}

// SendMessage appends a message and bumps the recipient party's unread
// counter. The write is transactional in the repository: no message without
// its counter bump.
func (s *Service) SendMessage(ctx context.Context, clinicID, conversationID uuid.UUID, sender Party, senderID uuid.UUID, body string) (*Message, error) {
	if !sender.Valid() {
		return nil, ErrBadParty
	}
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := s.repo.AppendMessage(ctx, clinicID, conversationID, sender, senderID, body, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.metrics.ObserveMessage(string(sender))

	if sender == PartyPatient {
		s.dispatch(ctx, notification.Event{
			ClinicID:   clinicID,
			Type:       notification.TypeNewMessage,
			Title:      "New message",
			Body:       "A patient sent a new chat message",
			TargetID:   &msg.ConversationID,
			TargetType: "conversation",
		})
	}

	return msg, nil
}

// MarkRead zeroes the reader party's unread counter. readerID narrows the
// reset to one identity when provided.
func (s *Service) MarkRead(ctx context.Context, clinicID, conversationID uuid.UUID, reader Party, readerID *uuid.UUID) error {
	if !reader.Valid() {
		return ErrBadParty
	}

	err := s.repo.ResetUnread(ctx, clinicID, conversationID, reader, readerID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrCounterNotFound) || errors.Is(err, ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("reset unread: %w", err)
	}
	return nil
}

func (s *Service) Unread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party) (*UnreadCounter, error) {
	if !party.Valid() {
		return nil, ErrBadParty
	}

	uc, err := s.repo.GetUnread(ctx, clinicID, conversationID, party)
	if err != nil {
		if errors.Is(err, ErrCounterNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("get unread: %w", err)
	}
	return uc, nil
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return conv, nil
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, status *ConversationStatus) ([]Conversation, error) {
	convs, err := s.repo.ListConversations(ctx, clinicID, status)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

func (s *Service) ListMessages(ctx context.Context, clinicID, conversationID uuid.UUID, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = 50 // default
	}
	if limit > 200 {
		limit = 200 // max
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.repo.ListMessages(ctx, clinicID, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// ArchiveIdle is the maintenance pass: active conversations quiet for longer
// than idleAfter move to archived with an auto_idle resolution.
func (s *Service) ArchiveIdle(ctx context.Context, now time.Time, idleAfter time.Duration) (int, error) {
	n, err := s.repo.ArchiveIdle(ctx, now.Add(-idleAfter), ResolvedReasonIdle, now)
	if err != nil {
		return 0, fmt.Errorf("archive idle conversations: %w", err)
	}

	s.metrics.ObserveArchived(n)
	return n, nil
}

func (s *Service) dispatch(ctx context.Context, ev notification.Event) {
	if err := s.events.Dispatch(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("type", string(ev.Type)).Msg("event dispatch failed")
	}
}
