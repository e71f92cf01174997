package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/chat"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/mailer"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
	"github.com/clinicdesk/clinic-scheduling/internal/platform/logging"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
	"github.com/clinicdesk/clinic-scheduling/internal/reminder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("dev", "jobs-worker")
		l.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New(cfg.Env, "jobs-worker")
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("jobs-worker starting up")

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

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	// Job locks outlive booking locks; a sweep may take well over LockTTL.
	jobLocker := redisclient.NewRedisLocker(rdb, time.Minute)

	clinics := clinic.NewService(clinic.NewPgRepository(pgPool))
	professionals := professional.NewService(professional.NewPgRepository(pgPool))

	notifRepo := notification.NewPgRepository(pgPool)
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
	appointments := appointment.NewService(apptRepo, professionals, clinics, locker, dispatcher, mail, log)

	chats := chat.NewService(chat.NewPgRepository(pgPool), dispatcher, nil, log)

	reminders := reminder.NewJob(apptRepo, notifRepo, clinics, mail, nil, log)

	w := worker{
		cfg:       cfg,
		locker:    jobLocker,
		reminders: reminders,
		chats:     chats,
		appts:     appointments,
		log:       log,
	}

	// Run once at startup
	w.runOnce(rootCtx)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping jobs-worker")
			return
		case <-ticker.C:
			w.runOnce(rootCtx)
		}
	}
}

type worker struct {
	cfg       config.Config
	locker    redisclient.Locker
	reminders *reminder.Job
	chats     *chat.Service
	appts     *appointment.Service
	log       zerolog.Logger
}

// runOnce takes a per-job Redis lock so overlapping worker replicas do not
// double-send.
func (w worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	now := time.Now().UTC()

	w.withLock(runCtx, "lock:job:reminders-24h", func(ctx context.Context) error {
		sent, err := w.reminders.Run(ctx, reminder.Class24h, now)
		if err != nil {
			return err
		}
		w.log.Info().Int("sent", sent).Msg("24h reminder sweep complete")
		return nil
	})

	w.withLock(runCtx, "lock:job:reminders-2h", func(ctx context.Context) error {
		sent, err := w.reminders.Run(ctx, reminder.Class2h, now)
		if err != nil {
			return err
		}
		w.log.Info().Int("sent", sent).Msg("2h reminder sweep complete")
		return nil
	})

	w.withLock(runCtx, "lock:job:archive-conversations", func(ctx context.Context) error {
		archived, err := w.chats.ArchiveIdle(ctx, now, w.cfg.ArchiveIdleAfter)
		if err != nil {
			return err
		}
		w.log.Info().Int("archived", archived).Msg("idle conversation sweep complete")
		return nil
	})

	w.withLock(runCtx, "lock:job:expire-appointments", func(ctx context.Context) error {
		expired, err := w.appts.ExpireOverdue(ctx, now, w.cfg.ExpireGrace)
		if err != nil {
			return err
		}
		w.log.Info().Int("expired", expired).Msg("overdue appointment sweep complete")
		return nil
	})
}

func (w worker) withLock(ctx context.Context, key string, fn func(context.Context) error) {
	err := w.locker.WithLock(ctx, key, func(ctx context.Context) error {
		return fn(ctx)
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		w.log.Debug().Str("key", key).Msg("job held by another worker, skipping")
		return
	}
	if err != nil {
		w.log.Error().Err(err).Str("key", key).Msg("job run failed")
	}
}
