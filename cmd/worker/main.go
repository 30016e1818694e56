package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/artisan-erp/artisan-erp/internal/app"
	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/contrats"
	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/factures"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
	"github.com/artisan-erp/artisan-erp/internal/notifications"
	"github.com/artisan-erp/artisan-erp/internal/observability"
	"github.com/artisan-erp/artisan-erp/internal/platform/cache"
	"github.com/artisan-erp/artisan-erp/internal/platform/db"
	"github.com/artisan-erp/artisan-erp/internal/relances"
	"github.com/artisan-erp/artisan-erp/internal/signature"
	"github.com/artisan-erp/artisan-erp/jobs"
	"github.com/artisan-erp/artisan-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	// Le worker écoule la file mail, il envoie donc en direct via SMTP.
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, logger)
	metrics := observability.NewMetrics()

	notificationsService := notifications.NewService(logger, notifications.NewRepository(pool))

	clientsRepo := clients.NewRepository(pool)
	devisRepo := devis.NewRepository(pool)
	codeStore := signature.NewCodeStore(redisClient)
	signatureService := signature.NewService(logger, signature.NewRepository(pool), devisRepo, codeStore,
		&signature.LogSMSSender{Logger: logger}, smtpMailer, notificationsService, cfg.PublicBaseURL, cfg.IsDevelopment())

	devisService := devis.NewService(logger, devisRepo, clientsRepo, smtpMailer, signatureService, metrics)
	relancesService := relances.NewService(logger, relances.NewRepository(pool), devisService, notificationsService)

	facturesRepo := factures.NewRepository(pool)
	facturesService := factures.NewService(facturesRepo, clientsRepo, devisRepo, smtpMailer)
	reportClient := report.NewClient(cfg.GotenbergURL)
	contratsService := contrats.NewService(logger, contrats.NewRepository(pool), clientsRepo, facturesService, reportClient)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: jobs.Handlers{
			Logger:        logger,
			Mailer:        smtpMailer,
			Relances:      relancesService,
			Contrats:      contratsService,
			Notifications: notificationsService,
			Retards:       facturesRepo,
			Metrics:       metrics,
		},
		Cron: jobs.DefaultCron(),
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker démarré", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
