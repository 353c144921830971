package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/handler"
	"task-tracker/internal/middleware"
	"task-tracker/internal/provider"
	"task-tracker/internal/repository"
	"task-tracker/internal/router"
	"task-tracker/internal/service"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	todoRepo := repository.NewTodoRepository(pool)
	slog.Info("database ready")

	tokenIssuer := service.NewTokenIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authService := service.NewAuthService(userRepo, service.NewPasswordHasher(), tokenIssuer)
	todoService := service.NewTodoService(todoRepo)

	var google *provider.GoogleProvider
	if cfg.GoogleEnabled() {
		google = provider.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		slog.Info("google login enabled", "callback_url", cfg.GoogleCallbackURL)
	} else {
		slog.Info("google login disabled: no oauth credentials configured")
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// handler.NewAuthHandler takes the interface; a typed nil would pass the
	// nil check inside the handler, so only assign when configured.
	authHandler := handler.NewAuthHandler(authService, nil, cfg.JWTRefreshTTL, cfg.FrontendURL)
	if google != nil {
		authHandler = handler.NewAuthHandler(authService, google, cfg.JWTRefreshTTL, cfg.FrontendURL)
	}
	todoHandler := handler.NewTodoHandler(todoService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth: authHandler,
		Todo: todoHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.db.Close()
	slog.Info("server stopped")
	return nil
}
