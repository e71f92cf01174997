package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/notification"
)

type counterKey struct {
	conversationID uuid.UUID
	party          Party
}

// fakeRepo keeps conversations, messages, and counters in memory with the
// same semantics the pg repository implements in SQL.
type fakeRepo struct {
	conversations map[uuid.UUID]*Conversation
	messages      []Message
	counters      map[counterKey]*UnreadCounter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		conversations: make(map[uuid.UUID]*Conversation),
		counters:      make(map[counterKey]*UnreadCounter),
	}
}

func (f *fakeRepo) CreateConversation(ctx context.Context, c *Conversation) (*Conversation, error) {
	conv := *c
	conv.ID = uuid.New()
	conv.Status = ConversationActive
	conv.LastMessageAt = time.Now().UTC()
	f.conversations[conv.ID] = &conv

	for _, party := range []Party{PartyPatient, PartyReceptionist} {
		f.counters[counterKey{conv.ID, party}] = &UnreadCounter{ConversationID: conv.ID, Party: party}
	}
	return &conv, nil
}

func (f *fakeRepo) find(clinicID, id uuid.UUID) (*Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok || conv.ClinicID != clinicID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (f *fakeRepo) GetConversation(ctx context.Context, clinicID, id uuid.UUID) (*Conversation, error) {
	return f.find(clinicID, id)
}

func (f *fakeRepo) ListConversations(ctx context.Context, clinicID uuid.UUID, status *ConversationStatus) ([]Conversation, error) {
	var out []Conversation
	for _, c := range f.conversations {
		if c.ClinicID != clinicID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) AppendMessage(ctx context.Context, clinicID, conversationID uuid.UUID, sender Party, senderID uuid.UUID, body string, at time.Time) (*Message, error) {
	conv, err := f.find(clinicID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      at,
	}
	f.messages = append(f.messages, msg)

	key := counterKey{conversationID, sender.Opposite()}
	if c, ok := f.counters[key]; ok {
		c.Count++
	} else {
		f.counters[key] = &UnreadCounter{ConversationID: conversationID, Party: sender.Opposite(), Count: 1}
	}

	conv.LastMessageAt = at
	if conv.Status == ConversationArchived && sender == PartyPatient {
		conv.Status = ConversationActive
	}
	return &msg, nil
}

func (f *fakeRepo) ListMessages(ctx context.Context, clinicID, conversationID uuid.UUID, limit, offset int) ([]Message, error) {
	if _, err := f.find(clinicID, conversationID); err != nil {
		return nil, err
	}
	var out []Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) ResetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party, readerID *uuid.UUID, at time.Time) error {
	if _, err := f.find(clinicID, conversationID); err != nil {
		return ErrCounterNotFound
	}
	c, ok := f.counters[counterKey{conversationID, party}]
	if !ok {
		return ErrCounterNotFound
	}
	c.Count = 0
	t := at
	c.LastReadAt = &t
	return nil
}

func (f *fakeRepo) GetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party) (*UnreadCounter, error) {
	if _, err := f.find(clinicID, conversationID); err != nil {
		return nil, ErrCounterNotFound
	}
	c, ok := f.counters[counterKey{conversationID, party}]
	if !ok {
		return nil, ErrCounterNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeRepo) ArchiveIdle(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error) {
	n := 0
	for _, c := range f.conversations {
		if c.Status == ConversationActive && c.LastMessageAt.Before(cutoff) {
			c.Status = ConversationArchived
			r := reason
			c.ResolvedReason = &r
			t := at
			c.ResolvedAt = &t
			n++
		}
	}
	return n, nil
}

// fakeDispatcher records dispatched events.
type fakeDispatcher struct {
	events []notification.Event
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, ev notification.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeDispatcher) {
	repo := newFakeRepo()
	disp := &fakeDispatcher{}
	svc := NewService(repo, disp, nil, zerolog.Nop())
	return svc, repo, disp
}

func TestStartInitializesBothCountersAndDeliversFirstMessage(t *testing.T) {
	svc, repo, _ := newTestService()
	clinicID, patientID := uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "hello")
	require.NoError(t, err)

	// The patient opened with one message: staff side has one unread, the
	// patient side none.
	staff, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyReceptionist)
	require.NoError(t, err)
	assert.Equal(t, 1, staff.Count)

	patient, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyPatient)
	require.NoError(t, err)
	assert.Equal(t, 0, patient.Count)

	require.Len(t, repo.messages, 1)
	assert.Equal(t, "hello", repo.messages[0].Body)
}

func TestSendMessageIncrementsRecipientOnly(t *testing.T) {
	svc, _, _ := newTestService()
	clinicID, patientID, staffID := uuid.New(), uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "hi")
	require.NoError(t, err)

	before, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyPatient)
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), clinicID, conv.ID, PartyReceptionist, staffID, "hello back")
	require.NoError(t, err)

	after, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyPatient)
	require.NoError(t, err)
	assert.Equal(t, before.Count+1, after.Count)

	// Sender's own counter is untouched.
	staff, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyReceptionist)
	require.NoError(t, err)
	assert.Equal(t, 1, staff.Count)
}

func TestMarkReadZeroesReaderCounter(t *testing.T) {
	svc, _, _ := newTestService()
	clinicID, patientID := uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), clinicID, conv.ID, PartyPatient, patientID, "two")
	require.NoError(t, err)

	staff, err := svc.Unread(context.Background(), clinicID, conv.ID, PartyReceptionist)
	require.NoError(t, err)
	require.Equal(t, 2, staff.Count)

	require.NoError(t, svc.MarkRead(context.Background(), clinicID, conv.ID, PartyReceptionist, nil))

	staff, err = svc.Unread(context.Background(), clinicID, conv.ID, PartyReceptionist)
	require.NoError(t, err)
	assert.Equal(t, 0, staff.Count)
	assert.NotNil(t, staff.LastReadAt)
}

func TestSendMessageFailsOnMissingConversation(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.SendMessage(context.Background(), uuid.New(), uuid.New(), PartyPatient, uuid.New(), "ghost")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Empty(t, repo.messages)
}

func TestSendMessageRejectsCrossClinicConversation(t *testing.T) {
	svc, _, _ := newTestService()
	clinicID, patientID := uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "hi")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), uuid.New(), conv.ID, PartyPatient, patientID, "wrong tenant")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestPatientMessageNotifiesStaff(t *testing.T) {
	svc, _, disp := newTestService()
	clinicID, patientID, staffID := uuid.New(), uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "hi")
	require.NoError(t, err)

	require.Len(t, disp.events, 1)
	assert.Equal(t, notification.TypeNewMessage, disp.events[0].Type)

	// Staff replies do not notify staff.
	_, err = svc.SendMessage(context.Background(), clinicID, conv.ID, PartyReceptionist, staffID, "hello")
	require.NoError(t, err)
	assert.Len(t, disp.events, 1)
}

func TestArchiveIdleOnlyTouchesStaleActiveConversations(t *testing.T) {
	svc, repo, _ := newTestService()
	clinicID := uuid.New()
	now := time.Now().UTC()

	fresh, err := svc.Start(context.Background(), clinicID, uuid.New(), PartyPatient, uuid.New(), "fresh")
	require.NoError(t, err)
	stale, err := svc.Start(context.Background(), clinicID, uuid.New(), PartyPatient, uuid.New(), "stale")
	require.NoError(t, err)
	done, err := svc.Start(context.Background(), clinicID, uuid.New(), PartyPatient, uuid.New(), "done")
	require.NoError(t, err)

	repo.conversations[fresh.ID].LastMessageAt = now.Add(-23 * time.Hour)
	repo.conversations[stale.ID].LastMessageAt = now.Add(-25 * time.Hour)
	repo.conversations[done.ID].LastMessageAt = now.Add(-48 * time.Hour)
	repo.conversations[done.ID].Status = ConversationArchived

	n, err := svc.ArchiveIdle(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, ConversationActive, repo.conversations[fresh.ID].Status)
	assert.Equal(t, ConversationArchived, repo.conversations[stale.ID].Status)
	require.NotNil(t, repo.conversations[stale.ID].ResolvedReason)
	assert.Equal(t, ResolvedReasonIdle, *repo.conversations[stale.ID].ResolvedReason)
}

func TestPatientMessageReopensArchivedConversation(t *testing.T) {
	svc, repo, _ := newTestService()
	clinicID, patientID := uuid.New(), uuid.New()

	conv, err := svc.Start(context.Background(), clinicID, patientID, PartyPatient, patientID, "hi")
	require.NoError(t, err)
	repo.conversations[conv.ID].Status = ConversationArchived

	_, err = svc.SendMessage(context.Background(), clinicID, conv.ID, PartyPatient, patientID, "anyone there?")
	require.NoError(t, err)

	assert.Equal(t, ConversationActive, repo.conversations[conv.ID].Status)
}
