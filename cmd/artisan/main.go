package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/artisan-erp/artisan-erp/internal/app"
	"github.com/artisan-erp/artisan-erp/internal/assistant"
	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/chantiers"
	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/comptabilite"
	"github.com/artisan-erp/artisan-erp/internal/contrats"
	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/factures"
	"github.com/artisan-erp/artisan-erp/internal/fournisseurs"
	"github.com/artisan-erp/artisan-erp/internal/geolocalisation"
	"github.com/artisan-erp/artisan-erp/internal/interventions"
	"github.com/artisan-erp/artisan-erp/internal/notifications"
	"github.com/artisan-erp/artisan-erp/internal/observability"
	"github.com/artisan-erp/artisan-erp/internal/platform/cache"
	"github.com/artisan-erp/artisan-erp/internal/platform/db"
	"github.com/artisan-erp/artisan-erp/internal/rapports"
	"github.com/artisan-erp/artisan-erp/internal/relances"
	"github.com/artisan-erp/artisan-erp/internal/shared"
	"github.com/artisan-erp/artisan-erp/internal/signature"
	"github.com/artisan-erp/artisan-erp/internal/stocks"
	"github.com/artisan-erp/artisan-erp/internal/techniciens"
	"github.com/artisan-erp/artisan-erp/jobs"
	"github.com/artisan-erp/artisan-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "artisan_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	// Les emails partent par la file Asynq, jamais en direct depuis un
	// handler HTTP.
	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	mail := jobs.NewEnqueueMailer(jobsClient)

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	notificationsService := notifications.NewService(logger, notifications.NewRepository(dbpool))
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	fournisseursService := fournisseurs.NewService(fournisseurs.NewRepository(dbpool))
	fournisseursHandler := fournisseurs.NewHandler(logger, fournisseursService)

	stocksRepo := stocks.NewRepository(dbpool)
	stocksService := stocks.NewService(stocksRepo, notificationsService)
	stocksHandler := stocks.NewHandler(logger, stocksService)

	devisRepo := devis.NewRepository(dbpool)
	codeStore := signature.NewCodeStore(redisClient)
	smsSender := &signature.LogSMSSender{Logger: logger}
	signatureService := signature.NewService(logger, signature.NewRepository(dbpool), devisRepo, codeStore,
		smsSender, mail, notificationsService, cfg.PublicBaseURL, cfg.IsDevelopment())
	signatureHandler := signature.NewHandler(logger, signatureService)

	devisService := devis.NewService(logger, devisRepo, clientsRepo, mail, signatureService, metrics)
	devisHandler := devis.NewHandler(logger, devisService)

	facturesRepo := factures.NewRepository(dbpool)
	facturesService := factures.NewService(facturesRepo, clientsRepo, devisRepo, mail)
	facturesHandler := factures.NewHandler(logger, facturesService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	contratsService := contrats.NewService(logger, contrats.NewRepository(dbpool), clientsRepo, facturesService, reportClient)
	contratsHandler := contrats.NewHandler(logger, contratsService)

	chantiersService := chantiers.NewService(chantiers.NewRepository(dbpool), clientsRepo)
	chantiersHandler := chantiers.NewHandler(logger, chantiersService)

	interventionsRepo := interventions.NewRepository(dbpool)
	interventionsService := interventions.NewService(interventionsRepo)
	interventionsHandler := interventions.NewHandler(logger, interventionsService)

	techniciensService := techniciens.NewService(techniciens.NewRepository(dbpool))
	techniciensHandler := techniciens.NewHandler(logger, techniciensService)

	rapportsService := rapports.NewService(rapports.NewRepository(dbpool), interventionsRepo, stocksService)
	rapportsHandler := rapports.NewHandler(logger, rapportsService)

	comptabiliteService := comptabilite.NewService(comptabilite.NewRepository(dbpool))
	comptabiliteHandler := comptabilite.NewHandler(logger, comptabiliteService)

	geolocStore := geolocalisation.NewStore(redisClient)
	geolocHandler := geolocalisation.NewHandler(logger, geolocStore)

	relancesService := relances.NewService(logger, relances.NewRepository(dbpool), devisService, notificationsService)
	relancesHandler := relances.NewHandler(logger, relancesService)

	var generateur assistant.Generateur
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiGenerateur(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			logger.Warn("init gemini, suggestions sur catalogue seul", slog.Any("error", err))
		} else {
			generateur = gemini
		}
	}
	assistantService := assistant.NewService(logger, generateur, stocksRepo)
	assistantHandler := assistant.NewHandler(logger, assistantService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		AuthHandler:            authHandler,
		ClientsHandler:         clientsHandler,
		FournisseursHandler:    fournisseursHandler,
		StocksHandler:          stocksHandler,
		DevisHandler:           devisHandler,
		FacturesHandler:        facturesHandler,
		ContratsHandler:        contratsHandler,
		ChantiersHandler:       chantiersHandler,
		InterventionsHandler:   interventionsHandler,
		TechniciensHandler:     techniciensHandler,
		RapportsHandler:        rapportsHandler,
		ComptabiliteHandler:    comptabiliteHandler,
		GeolocalisationHandler: geolocHandler,
		NotificationsHandler:   notificationsHandler,
		RelancesHandler:        relancesHandler,
		AssistantHandler:       assistantHandler,
		SignatureHandler:       signatureHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
