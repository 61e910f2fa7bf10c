package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/dialogue"
	v1 "github.com/dmehra2102/prod-golang-projects/medibook/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/intent"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/worker"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode records err and flushes the logger before the process exits,
// since os.Exit skips deferred calls.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("medibook-api exited with error", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector("medibook", reg)

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return fmt.Errorf("loading reminder timezone: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)
	slotRepo := postgres.NewTimeSlotRepository(db)
	apptRepo := postgres.NewAppointmentRepository(db)
	rxRepo := postgres.NewPrescriptionRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	auditSvc := service.NewAuditService(postgres.NewAuditRepository(db), m, log.Named("audit"))
	tokens := auth.NewJWTManager(cfg.JWT)

	authSvc := service.NewAuthService(userRepo, tokens, auditSvc, log.Named("auth"))
	userSvc := service.NewUserService(userRepo, auditSvc, log.Named("users"))
	schedSvc := service.NewSchedulingService(slotRepo, auditSvc, log.Named("scheduling"))
	apptSvc := service.NewAppointmentService(apptRepo, userRepo, auditSvc, m, log.Named("appointments"))
	rxSvc := service.NewPrescriptionService(rxRepo, userRepo, auditSvc, m, log.Named("prescriptions"))
	reminderSvc := service.NewReminderService(reminderRepo, rxRepo, auditSvc, m, loc, log.Named("reminders"))

	var classifier intent.Classifier = intent.NewKeywordClassifier()
	if cfg.LLM.Enabled {
		classifier = intent.NewOpenAIClassifier(classifier, openai.NewClient(cfg.LLM.APIKey), cfg.LLM, m, log.Named("llm"))
		log.Info("llm small talk enabled", zap.String("model", cfg.LLM.Model))
	}

	controller := dialogue.NewController(dialogue.Dependencies{
		Classifier:    classifier,
		Doctors:       userSvc,
		Slots:         schedSvc,
		Appointments:  apptSvc,
		Prescriptions: rxSvc,
		Reminders:     reminderSvc,
	}, cfg.Chat.MaxHops, log.Named("dialogue"))

	health := map[string]v1.HealthCheck{"database": pingDB(db)}

	store, closeStore, err := newSessionStore(ctx, cfg.Chat, log, health)
	if err != nil {
		return err
	}
	defer closeStore()

	chat := dialogue.NewManager(store, controller, m, log.Named("chat"))

	inbox := worker.NewReminderQueue(cfg.Reminder.QueueCapacity, m, log.Named("reminder-queue"))
	dispatcher := worker.NewDispatcher(reminderRepo, inbox, worker.DispatcherConfig{
		Interval:  cfg.Reminder.PollInterval,
		BatchSize: cfg.Reminder.BatchSize,
		Location:  loc,
	}, m, log.Named("dispatcher"))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go dispatcher.Run(workerCtx)

	router := v1.NewRouter(v1.RouterDeps{
		Config:        cfg,
		Logger:        log,
		Metrics:       m,
		Gatherer:      reg,
		Health:        health,
		Tokens:        tokens,
		Auth:          authSvc,
		Users:         userSvc,
		Scheduling:    schedSvc,
		Appointments:  apptSvc,
		Prescriptions: rxSvc,
		Reminders:     reminderSvc,
		Chat:          chat,
		Inbox:         inbox,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("address", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	stopWorkers()
	select {
	case <-dispatcher.Done():
	case <-shutdownCtx.Done():
		log.Warn("reminder dispatcher did not stop in time")
	}

	auditSvc.Shutdown()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("shutdown complete")
	return nil
}

// newSessionStore builds the configured chat session store and registers
// its health check. The returned func releases the store's resources.
func newSessionStore(ctx context.Context, cfg config.ChatConfig, log *zap.Logger, health map[string]v1.HealthCheck) (dialogue.SessionStore, func(), error) {
	switch cfg.SessionStore {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing CHAT_REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info("chat sessions stored in redis", zap.Duration("ttl", cfg.SessionTTL))
		return dialogue.NewRedisStore(client, cfg.SessionTTL, log.Named("sessions")), func() { _ = client.Close() }, nil

	default:
		store := dialogue.NewMemoryStore(cfg.SessionTTL)
		sweepCtx, cancel := context.WithCancel(context.Background())
		go store.Run(sweepCtx, time.Minute)
		log.Info("chat sessions stored in memory", zap.Duration("ttl", cfg.SessionTTL))
		return store, cancel, nil
	}
}

func pingDB(db *gorm.DB) v1.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
