package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/niklvrr/TicketBoard/internal/config"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/auth"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/db"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/ratelimit"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/realtime"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/redisclient"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/storage"
	"github.com/niklvrr/TicketBoard/internal/transport"
	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"github.com/niklvrr/TicketBoard/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("application stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewDatabase(ctx, cfg.Database.URL, db.DefaultMigrationsPath, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	// redis нужен лимитеру и рассылке событий между инстансами
	rc, err := redisclient.NewRedisClient(ctx, &cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rc.Close()

	var objectStorage service.ObjectStorage
	if st, err := storage.NewStorage(ctx, &cfg.Storage, log); err != nil {
		log.Warn("object storage unavailable, profile images disabled",
			zap.String("provider", cfg.Storage.Provider),
			zap.Error(err),
		)
	} else {
		objectStorage = st
	}

	var google service.GoogleVerifier
	if cfg.Auth.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(cfg.Auth.GoogleJWKSURL, cfg.Auth.GoogleClientID)
		if err != nil {
			return err
		}
		defer verifier.Close()
		google = verifier
	} else {
		log.Info("GOOGLE_CLIENT_ID is empty, google sign-in disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool, log)
	boardRepo := repository.NewBoardRepository(pool, log)
	ticketRepo := repository.NewTicketRepository(pool, log)
	commentRepo := repository.NewCommentRepository(pool, log)
	notificationRepo := repository.NewNotificationRepository(pool, log)

	// Realtime
	hub := realtime.NewHub(log)
	broker := realtime.NewBroker(rc, hub, realtime.DefaultChannel, log)
	go broker.Run(ctx)

	// Services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(
		userRepo,
		tokens,
		google,
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
		objectStorage,
		cfg.Storage.MaxImageSize,
		log,
	)
	boardService := service.NewBoardService(boardRepo, ticketRepo, userRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, broker, log)
	ticketService := service.NewTicketService(ticketRepo, commentRepo, boardRepo, notificationService, log)

	// Handlers
	handlers := &transport.Handlers{
		Auth:          handler.NewAuthHandler(authService, cfg.Storage.MaxImageSize, log),
		Board:         handler.NewBoardHandler(boardService, log),
		Ticket:        handler.NewTicketHandler(ticketService, log),
		Notification:  handler.NewNotificationHandler(notificationService, log),
		Events:        handler.NewEventsHandler(hub, log),
		Health:        handler.NewHealthHandler(pool, log),
		Authenticator: authService,
		RateLimiter:   ratelimit.NewLimiter(rc, cfg.RateLimit.Points, cfg.RateLimit.Window),
	}

	router := transport.NewRouter(handlers, transport.RouterConfig{
		CorsOrigins:    cfg.App.CorsOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
	}, log)

	server := transport.NewServer(cfg.App.Port, router, log)
	// SSE потоки не завершатся сами, закрываем их вместе с сервером
	server.RegisterOnShutdown(hub.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
