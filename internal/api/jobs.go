package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/reminder"
)

// ReminderRunner triggers one reminder sweep for a window class.
type ReminderRunner interface {
	Run(ctx context.Context, class reminder.Class, now time.Time) (int, error)
}

// ConversationArchiver closes conversations that have gone quiet.
type ConversationArchiver interface {
	ArchiveIdle(ctx context.Context, now time.Time, idleAfter time.Duration) (int, error)
}

// AppointmentExpirer marks overdue active appointments as expired.
type AppointmentExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time, grace time.Duration) (int, error)
}

func reminderJobHandler(runner ReminderRunner, class reminder.Class, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent, err := runner.Run(r.Context(), class, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Str("class", string(class)).Msg("reminder job failed")
			writeJobFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, JobResultResponse{Success: true, SentCount: &sent})
	}
}

func archiveJobHandler(archiver ConversationArchiver, idleAfter time.Duration, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archived, err := archiver.ArchiveIdle(r.Context(), time.Now().UTC(), idleAfter)
		if err != nil {
			log.Error().Err(err).Msg("archive job failed")
			writeJobFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, JobResultResponse{Success: true, ArchivedCount: &archived})
	}
}

func expireJobHandler(expirer AppointmentExpirer, grace time.Duration, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expired, err := expirer.ExpireOverdue(r.Context(), time.Now().UTC(), grace)
		if err != nil {
			log.Error().Err(err).Msg("expire job failed")
			writeJobFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, JobResultResponse{Success: true, ExpiredCount: &expired})
	}
}

// writeJobFailure reports the error message without internals so schedulers
// can log it verbatim.
func writeJobFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, JobFailureResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}
