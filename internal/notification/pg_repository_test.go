package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgRepositoryExistingTargetIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)

	reminded := uuid.New()
	fresh := uuid.New()

	mock.ExpectQuery("SELECT DISTINCT target_id").
		WithArgs(TypeReminder24h, []uuid.UUID{reminded, fresh}).
		WillReturnRows(pgxmock.NewRows([]string{"target_id"}).AddRow(reminded))

	existing, err := repo.ExistingTargetIDs(context.Background(), TypeReminder24h, []uuid.UUID{reminded, fresh})
	require.NoError(t, err)

	assert.True(t, existing[reminded])
	assert.False(t, existing[fresh])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryExistingTargetIDsEmptyInput(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)

	// No query should be issued for an empty id list.
	existing, err := repo.ExistingTargetIDs(context.Background(), TypeReminder2h, nil)
	require.NoError(t, err)
	assert.Empty(t, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)

	recipientID := uuid.New()
	id := uuid.New()

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(id, recipientID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), recipientID, id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryMarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)

	recipientID := uuid.New()
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("UPDATE notifications").
		WithArgs(id, recipientID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "recipient_id", "type", "title", "body", "target_id", "target_type", "read", "created_at",
		}).AddRow(id, recipientID, TypeNewMessage, "New message", "body", (*uuid.UUID)(nil), "", true, now))

	n, err := repo.MarkRead(context.Background(), recipientID, id)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, TypeNewMessage, n.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
