package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinicdesk/clinic-scheduling/internal/api"
	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/chat"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/mailer"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicdesk/clinic-scheduling/internal/platform/logging"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
	"github.com/clinicdesk/clinic-scheduling/internal/reminder"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("dev", "api-server")
		l.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New(cfg.Env, "api-server")
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	clinicRepo := clinic.NewPgRepository(pgPool)
	clinics := clinic.NewService(clinicRepo)

	professionals := professional.NewService(professional.NewPgRepository(pgPool))

	notifRepo := notification.NewPgRepository(pgPool)
	notifications := notification.NewService(notifRepo)
	dispatcher := notification.NewStaffDispatcher(notifRepo, log)

	var mail mailer.Sender = mailer.Noop{}
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgridSender(mailer.SendgridConfig{
			APIKey:    cfg.SendgridAPIKey,
			FromEmail: cfg.MailFrom,
			FromName:  cfg.MailFromName,
		}, log)
	}

	apptRepo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	appointments := appointment.NewService(apptRepo, professionals, clinics, locker, dispatcher, mail, log)

	calc := availability.Calculator{
		HorizonDays:   cfg.HorizonDays,
		Step:          cfg.SlotStep,
		ClinicOffset:  cfg.ClinicTZOffset,
		DisplayOffset: cfg.DisplayTZOffset,
	}
	slots := availability.NewService(professionals, apptRepo, calc)

	chats := chat.NewService(chat.NewPgRepository(pgPool), dispatcher, m, log)

	reminders := reminder.NewJob(apptRepo, notifRepo, clinics, mail, m, log)

	handler := api.NewRouter(api.RouterConfig{
		Clinics:       clinics,
		Professionals: professionals,
		Appointments:  appointments,
		Availability:  slots,
		Chat:          chats,
		Notifications: notifications,
		Reminders:     reminders,

		PgPool: pgPool,
		Redis:  rdb,

		JWTSecret:            cfg.JWTSecret,
		JobToken:             cfg.JobToken,
		BillingWebhookSecret: cfg.BillingWebhookSecret,
		ArchiveIdleAfter:     cfg.ArchiveIdleAfter,
		ExpireGrace:          cfg.ExpireGrace,

		Metrics: m,
		Log:     log,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("api-server stopped")
}
