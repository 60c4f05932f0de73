package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	// github.com/alexbrainman/odbc (legacy directory driver) requires cgo,
	// which is disabled in this build; the "odbc" database/sql driver is
	// therefore not registered.
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/presence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	directory, err := identity.OpenDirectory(cfg.Directory)
	if err != nil {
		logger.Fatal("failed to open identity directory", zap.Error(err))
	}
	codec, err := identity.NewPasswordCodec(cfg.Directory.CipherKey, cfg.Directory.CipherIV)
	if err != nil {
		logger.Fatal("invalid directory cipher configuration", zap.Error(err))
	}

	files, err := storage.NewFileStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}
	sounds, err := storage.NewSoundStore(cfg.Uploads.SoundsDir)
	if err != nil {
		logger.Fatal("failed to init sound storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	registry := presence.NewRegistry()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)
	pendingRepo := repository.NewPendingNotificationRepository(redis.Client)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(directory, codec, tokens, logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Directory:  directory,
		TicketRepo: ticketRepo,
		Timeout:    cfg.Assignment.SnapshotTimeout(),
		Metrics:    metrics,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(registry, pendingRepo, cfg.Notification, metrics, logger)
	notificationService.RegisterHandlers(dispatcher)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		InteractionRepo: interactionRepo,
		Assignments:     assignmentService,
		Notifier:        notificationService,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketRepo, files, cfg.Uploads.MaxSizeBytes, logger)
	soundService := service.NewSoundService(sounds, cfg.Uploads.SoundMaxSizeBytes, logger)

	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Uploads.MaxSizeBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Files:          handlers.NewFilesHandler(attachmentService),
		Sounds:         handlers.NewSoundsHandler(soundService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService, registry),
		Realtime:       handlers.NewRealtimeHandler(registry, notificationService, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
