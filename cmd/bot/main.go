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

	"ivf_stage_bot/internal/app"
	"ivf_stage_bot/internal/domain/stage"
	"ivf_stage_bot/internal/infra/config"
	idb "ivf_stage_bot/internal/infra/database"
	"ivf_stage_bot/internal/infra/httpapi"
	"ivf_stage_bot/internal/infra/logger"
	"ivf_stage_bot/internal/infra/referencedata"
	"ivf_stage_bot/internal/infra/scheduler"
	"ivf_stage_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("IVF Stage Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	mainLogger := logger.Component(log, "main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":        cfg.LogLevel,
		"environment":      cfg.Environment,
		"admin_id":         cfg.AdminTelegramID,
		"reference_source": cfg.ReferenceDataSource,
		"timezone":         cfg.Location.String(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database schema")
	}
	mainLogger.Info("Database connection established and schema ensured")

	// Initialize Repositories
	patientRepo := idb.NewPostgresPatientRepository(db)
	cycleRepo := idb.NewPostgresCycleRepository(db)
	milestoneRepo := idb.NewPostgresMilestoneRepository(db)

	// Reference data
	source, err := referenceSource(ctx, cfg, idb.NewPostgresReferenceRepository(db), logger.Component(log, "reference_seed"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not set up reference data source")
	}
	referenceCache := referencedata.NewCache(source, logger.Component(log, "reference_cache"))
	if cat, err := referenceCache.Catalog(ctx); err != nil {
		// Not fatal: stages resolve as pending until a refresh succeeds.
		mainLogger.WithError(err).Error("Initial reference data load failed")
	} else {
		mainLogger.WithField("entries", cat.Len()).Info("Reference data loaded")
	}

	resolver := stage.NewResolver(
		stage.WithRecencyWindow(cfg.StageRecencyDays),
		stage.WithLogger(logger.Component(log, "stage_resolver")),
	)
	clock := func() time.Time { return time.Now().In(cfg.Location) }

	// Services
	trackingService := app.NewTrackingService(patientRepo, cycleRepo, milestoneRepo, resolver.Timeline(), clock, logger.Component(log, "tracking_service"))
	stageService := app.NewStageService(patientRepo, cycleRepo, milestoneRepo, referenceCache, resolver, clock, logger.Component(log, "stage_service"))
	adminService := app.NewAdminService(cycleRepo, referenceCache, cfg.AdminTelegramID)

	// Initialize Telegram Bot
	telebotLogger := logger.Component(log, "telebot")
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := telebotLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID, "text": c.Text()})
			}
			entry.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	digestService := app.NewDigestService(patientRepo, cycleRepo, stageService, telegram.NewTelebotAdapter(bot), logger.Component(log, "digest_service"))

	// Register Handlers
	handlerLogger := logger.Component(log, "telegram_handlers")
	telegram.RegisterBotCommands(ctx, bot, trackingService, adminService, handlerLogger)
	telegram.RegisterStageHandlers(ctx, bot, stageService, handlerLogger)
	telegram.RegisterMilestoneHandlers(ctx, bot, trackingService, stageService, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
	mainLogger.Info("Telegram handlers registered")

	stageScheduler := scheduler.NewStageScheduler(
		digestService,
		referenceCache,
		logger.Component(log, "scheduler"),
		cfg.Location,
		cfg.CronSpecDailyDigest,
		cfg.CronSpecReferenceRefresh,
	)
	if err := stageScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = httpapi.New(
			httpapi.Config{Address: cfg.HTTPAddr, AdminToken: cfg.HTTPAdminToken},
			stageService,
			referenceCache,
			logger.Component(log, "http"),
		)
		go func() {
			mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("HTTP API stopped unexpectedly")
			}
		}()
	}

	mainLogger.Info("Application setup complete. Bot and Scheduler are running")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	stageScheduler.Stop()
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP API did not shut down cleanly")
		}
	}
	mainLogger.Info("Application shut down gracefully")
}

// referenceSource picks the configured source. The database table is seeded
// from the bundled dataset while it is empty.
func referenceSource(ctx context.Context, cfg *config.AppConfig, repo *idb.PostgresReferenceRepository, log *logrus.Entry) (referencedata.Source, error) {
	switch cfg.ReferenceDataSource {
	case config.ReferenceSourceFile:
		return referencedata.NewFileSource(cfg.ReferenceDataPath), nil
	case config.ReferenceSourceDatabase:
		existing, err := repo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read stage_reference: %w", err)
		}
		if len(existing) == 0 {
			bundled, err := referencedata.NewBundledSource().Load(ctx)
			if err != nil {
				return nil, err
			}
			if err := repo.Upsert(ctx, bundled); err != nil {
				return nil, fmt.Errorf("failed to seed stage_reference: %w", err)
			}
			log.WithField("entries", len(bundled)).Info("Seeded stage_reference from bundled data")
		}
		return repo, nil
	default:
		return referencedata.NewBundledSource(), nil
	}
}
