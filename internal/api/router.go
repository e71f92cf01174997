package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/billing"
	"github.com/clinicdesk/clinic-scheduling/internal/chat"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
	"github.com/clinicdesk/clinic-scheduling/internal/reminder"
)

type RouterConfig struct {
	Clinics       *clinic.Service
	Professionals *professional.Service
	Appointments  *appointment.Service
	Availability  *availability.Service
	Chat          *chat.Service
	Notifications *notification.Service
	Reminders     ReminderRunner

	PgPool *pgxpool.Pool
	Redis  *redis.Client

	JWTSecret            string
	JobToken             string
	BillingWebhookSecret string
	ArchiveIdleAfter     time.Duration
	ExpireGrace          time.Duration

	Metrics *metrics.Metrics
	Log     zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log, cfg.Metrics))

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Billing provider callback, authenticated by HMAC signature
	r.Method(http.MethodPost, "/webhooks/billing",
		billing.NewWebhookHandler(cfg.BillingWebhookSecret, cfg.Clinics, cfg.Log))

	// Session-scoped clinic API
	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.JWTSecret))

		r.Post("/professionals", createProfessionalHandler(cfg.Professionals))
		r.Get("/professionals", listProfessionalsHandler(cfg.Professionals))
		r.Put("/professionals/{id}", updateProfessionalHandler(cfg.Professionals))
		r.Get("/professionals/{id}/availability", availabilityHandler(cfg.Availability))

		r.Post("/patients", createPatientHandler(cfg.Appointments))

		r.Post("/appointments", bookAppointmentHandler(cfg.Appointments, cfg.Clinics))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Appointments))

		r.Post("/conversations", startConversationHandler(cfg.Chat, cfg.Clinics))
		r.Get("/conversations", listConversationsHandler(cfg.Chat))
		r.Get("/conversations/{id}", getConversationHandler(cfg.Chat))
		r.Post("/conversations/{id}/messages", sendMessageHandler(cfg.Chat, cfg.Clinics))
		r.Get("/conversations/{id}/messages", listMessagesHandler(cfg.Chat))
		r.Post("/conversations/{id}/read", markReadHandler(cfg.Chat))
		r.Get("/conversations/{id}/unread", unreadHandler(cfg.Chat))

		r.Get("/notifications", listNotificationsHandler(cfg.Notifications))
		r.Post("/notifications/{id}/read", readNotificationHandler(cfg.Notifications))
		r.Delete("/notifications/{id}", deleteNotificationHandler(cfg.Notifications))
	})

	// Scheduled triggers, authenticated by a shared token
	r.Group(func(r chi.Router) {
		r.Use(JobTokenMiddleware(cfg.JobToken))

		r.Post("/jobs/reminders/24h", reminderJobHandler(cfg.Reminders, reminder.Class24h, cfg.Log))
		r.Post("/jobs/reminders/2h", reminderJobHandler(cfg.Reminders, reminder.Class2h, cfg.Log))
		r.Post("/jobs/archive-conversations", archiveJobHandler(cfg.Chat, cfg.ArchiveIdleAfter, cfg.Log))
		r.Post("/jobs/expire-appointments", expireJobHandler(cfg.Appointments, cfg.ExpireGrace, cfg.Log))
	})

	return r
}
