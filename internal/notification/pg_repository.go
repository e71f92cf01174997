package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the slice of pgxpool.Pool this repository needs. Tests swap in
// a pgxmock pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool querier
}

func NewPgRepository(pool querier) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var targetID *uuid.UUID

	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Title,
		&n.Body,
		&targetID,
		&n.TargetType,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	n.TargetID = targetID
	return &n, nil
}

const notificationCols = `id, recipient_id, type, title, body, target_id, target_type, read, created_at`

func (r *PgRepository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, type, title, body, target_id, target_type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, now())
		RETURNING `+notificationCols+`
	`, id, n.RecipientID, n.Type, n.Title, n.Body, n.TargetID, n.TargetType)

	return scanNotification(row)
}

func (r *PgRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationCols+`
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, recipientID, id uuid.UUID) (*Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND recipient_id = $2
		RETURNING `+notificationCols+`
	`, id, recipientID)
	return scanNotification(row)
}

func (r *PgRepository) Delete(ctx context.Context, recipientID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) ExistingTargetIDs(ctx context.Context, typ Type, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(targetIDs) == 0 {
		return map[uuid.UUID]bool{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT target_id
		FROM notifications
		WHERE type = $1
		  AND target_id = ANY($2)
	`, typ, targetIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[uuid.UUID]bool, len(targetIDs))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *PgRepository) ListStaffRecipients(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM staff_users
		WHERE clinic_id = $1
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
