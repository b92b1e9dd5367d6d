package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/billing"
	"hotel-frontdesk/config"
	"hotel-frontdesk/events"
	"hotel-frontdesk/logger"
	"hotel-frontdesk/monitoring"
	"hotel-frontdesk/routes"
	"hotel-frontdesk/services"
	"hotel-frontdesk/session"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		logger.Info(".env not found, continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetDefault(logger.New(cfg.LogLevel))
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := newBackend(cfg)
	if err != nil {
		logger.Error("backend setup failed", "mode", cfg.Backend.Mode, "error", err)
		os.Exit(1)
	}
	logger.Info("rooms backend ready", "mode", cfg.Backend.Mode)

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Error("session store setup failed", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}

	publisher := events.Publisher(events.NopPublisher{})
	if cfg.NATS.URL != "" {
		p, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("nats connect failed, room events disabled", "error", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	desk := services.NewFrontDesk(api, sessions, billing.NewCalculator(cfg.Billing.Location),
		services.WithPublisher(publisher))

	go monitoring.NewMonitor(sessions, 30*time.Second).Run(ctx)

	router := routes.New(desk, routes.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Auth.JWTSecret,
	})
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, staff ids are taken from request bodies")
	}

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}

func newBackend(cfg *config.Config) (backend.API, error) {
	if cfg.Backend.Mode == config.BackendHTTP {
		return backend.NewClient(backend.ClientConfig{
			BaseURL: cfg.Backend.URL,
			Token:   cfg.Backend.Token,
			Timeout: cfg.Backend.Timeout,
		}), nil
	}

	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	return services.NewLocalBackend(db, cfg.Email), nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Store != config.SessionRedis {
		return session.NewMemoryStore(), nil
	}
	rdb, err := session.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	return session.NewRedisStore(rdb), nil
}
