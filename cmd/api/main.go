package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pass-service/internal/api/http"
	"github.com/spec-kit/pass-service/internal/api/http/handlers"
	"github.com/spec-kit/pass-service/internal/auth"
	"github.com/spec-kit/pass-service/internal/config"
	"github.com/spec-kit/pass-service/internal/events"
	"github.com/spec-kit/pass-service/internal/notification"
	"github.com/spec-kit/pass-service/internal/observability"
	"github.com/spec-kit/pass-service/internal/persistence"
	"github.com/spec-kit/pass-service/internal/repository"
	"github.com/spec-kit/pass-service/internal/service"
	"github.com/spec-kit/pass-service/internal/storage"
	"github.com/spec-kit/pass-service/internal/worker"
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

	mailer, err := notification.NewSMTPMailer(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	documents, err := storage.NewS3Store(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init document store", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	denylist := auth.NewTokenDenylist(redis.Client, logger)
	dispatcher := events.NewInMemoryDispatcher()

	lifecycle := service.NewLifecycleService(*cfg, service.LifecycleDependencies{
		UserRepo:      userRepo,
		DocumentStore: documents,
		Mailer:        mailer,
		Dispatcher:    dispatcher,
		Denylist:      denylist,
		Logger:        logger,
	})

	notificationService := service.NewNotificationService(dispatcher, mailer, documents, logger, cfg.App)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(lifecycle.TokenManager(), userRepo, denylist)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(lifecycle, cfg.Auth.CookieSecure),
		Users:          handlers.NewUsersHandler(lifecycle),
		Upload:         handlers.NewUploadHandler(lifecycle),
		Pass:           handlers.NewPassHandler(lifecycle),
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
