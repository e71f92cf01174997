package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/db"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var resolvedReason *string
	var resolvedAt *time.Time

	err := row.Scan(
		&c.ID,
		&c.ClinicID,
		&c.PatientID,
		&c.Status,
		&c.Priority,
		&c.LastMessageAt,
		&resolvedReason,
		&resolvedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	c.ResolvedReason = resolvedReason
	c.ResolvedAt = resolvedAt
	return &c, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	var readAt *time.Time

	err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.Sender,
		&m.SenderID,
		&m.Body,
		&readAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.ReadAt = readAt
	return &m, nil
}

const conversationCols = `id, clinic_id, patient_id, status, priority, last_message_at, resolved_reason, resolved_at, created_at, updated_at`

// CreateConversation inserts the conversation and both zeroed counters in
// one transaction.
func (r *PgRepository) CreateConversation(ctx context.Context, c *Conversation) (*Conversation, error) {
	id := uuid.New()
	var created *Conversation

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO conversations (id, clinic_id, patient_id, status, priority, last_message_at, created_at, updated_at)
			VALUES ($1, $2, $3, 'active', $4, now(), now(), now())
			RETURNING `+conversationCols+`
		`, id, c.ClinicID, c.PatientID, c.Priority)

		conv, err := scanConversation(row)
		if err != nil {
			return err
		}

		for _, party := range []Party{PartyPatient, PartyReceptionist} {
			if _, err := tx.Exec(ctx, `
				INSERT INTO unread_counters (conversation_id, party, count)
				VALUES ($1, $2, 0)
			`, conv.ID, party); err != nil {
				return err
			}
		}

		created = conv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetConversation(ctx context.Context, clinicID, id uuid.UUID) (*Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationCols+`
		FROM conversations
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID)
	return scanConversation(row)
}

func (r *PgRepository) ListConversations(ctx context.Context, clinicID uuid.UUID, status *ConversationStatus) ([]Conversation, error) {
	query := `
		SELECT ` + conversationCols + `
		FROM conversations
		WHERE clinic_id = $1`
	args := []any{clinicID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY priority DESC, last_message_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// AppendMessage inserts the message, bumps the recipient's unread counter
// atomically, and stamps the conversation, all in one transaction. A patient
// message reopens an archived conversation.
func (r *PgRepository) AppendMessage(ctx context.Context, clinicID, conversationID uuid.UUID, sender Party, senderID uuid.UUID, body string, at time.Time) (*Message, error) {
	var created *Message

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+conversationCols+`
			FROM conversations
			WHERE id = $1 AND clinic_id = $2
			FOR UPDATE
		`, conversationID, clinicID)

		conv, err := scanConversation(row)
		if err != nil {
			return err
		}

		msgRow := tx.QueryRow(ctx, `
			INSERT INTO messages (id, conversation_id, sender, sender_id, body, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, conversation_id, sender, sender_id, body, read_at, created_at
		`, uuid.New(), conversationID, sender, senderID, body, at)

		msg, err := scanMessage(msgRow)
		if err != nil {
			return err
		}

		// Atomic increment at the storage layer; concurrent sends in the same
		// conversation must not lose updates.
		if _, err := tx.Exec(ctx, `
			INSERT INTO unread_counters (conversation_id, party, count)
			VALUES ($1, $2, 1)
			ON CONFLICT (conversation_id, party)
			DO UPDATE SET count = unread_counters.count + 1
		`, conversationID, sender.Opposite()); err != nil {
			return err
		}

		status := conv.Status
		if status == ConversationArchived && sender == PartyPatient {
			status = ConversationActive
		}

		if _, err := tx.Exec(ctx, `
			UPDATE conversations
			SET last_message_at = $2,
			    status = $3,
			    updated_at = now()
			WHERE id = $1
		`, conversationID, at, status); err != nil {
			return err
		}

		created = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) ListMessages(ctx context.Context, clinicID, conversationID uuid.UUID, limit, offset int) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.conversation_id, m.sender, m.sender_id, m.body, m.read_at, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.conversation_id = $1 AND c.clinic_id = $2
		ORDER BY m.created_at
		LIMIT $3 OFFSET $4
	`, conversationID, clinicID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ResetUnread zeroes the reader's counter. The identity filter only applies
// when a reader id is provided, allowing role-level resets.
func (r *PgRepository) ResetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party, readerID *uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE unread_counters uc
		SET count = 0,
		    last_read_at = $4
		FROM conversations c
		WHERE uc.conversation_id = $1
		  AND uc.party = $2
		  AND c.id = uc.conversation_id
		  AND c.clinic_id = $3
	`, conversationID, party, clinicID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCounterNotFound
	}

	if readerID != nil {
		_, err = r.pool.Exec(ctx, `
			UPDATE messages
			SET read_at = $3
			WHERE conversation_id = $1
			  AND sender <> $2
			  AND read_at IS NULL
		`, conversationID, party, at)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PgRepository) GetUnread(ctx context.Context, clinicID, conversationID uuid.UUID, party Party) (*UnreadCounter, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT uc.conversation_id, uc.party, uc.count, uc.last_read_at
		FROM unread_counters uc
		JOIN conversations c ON c.id = uc.conversation_id
		WHERE uc.conversation_id = $1
		  AND uc.party = $2
		  AND c.clinic_id = $3
	`, conversationID, party, clinicID)

	var uc UnreadCounter
	var lastReadAt *time.Time

	err := row.Scan(&uc.ConversationID, &uc.Party, &uc.Count, &lastReadAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCounterNotFound
		}
		return nil, err
	}

	uc.LastReadAt = lastReadAt
	return &uc, nil
}

func (r *PgRepository) ArchiveIdle(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations
		SET status = 'archived',
		    resolved_reason = $2,
		    resolved_at = $3,
		    updated_at = now()
		WHERE status = 'active'
		  AND last_message_at < $1
	`, cutoff, reason, at)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}
