package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/vet-tarapaca/booking-api/internal/config"
	"github.com/vet-tarapaca/booking-api/internal/email"
	"github.com/vet-tarapaca/booking-api/internal/gateway"
	"github.com/vet-tarapaca/booking-api/internal/handler"
	bookingHandler "github.com/vet-tarapaca/booking-api/internal/handler/booking"
	"github.com/vet-tarapaca/booking-api/internal/middleware"
	"github.com/vet-tarapaca/booking-api/internal/remote"
	"github.com/vet-tarapaca/booking-api/internal/router"
	"github.com/vet-tarapaca/booking-api/internal/schedule"
	bookingService "github.com/vet-tarapaca/booking-api/internal/service/booking"
	"github.com/vet-tarapaca/booking-api/internal/session"
	"github.com/vet-tarapaca/booking-api/internal/submitter"
	"github.com/vet-tarapaca/booking-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := newLogger(cfg.Logging)

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid scheduling timezone")
	}
	catalog, err := cfg.Scheduling.Catalog()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid consultation catalog")
	}
	week, err := cfg.Scheduling.WeeklySchedule()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid weekly schedule")
	}

	// Session store: in-memory by default, redis when configured
	store, err := newSessionStore(cfg.SessionStore)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize session store")
	}

	// Upstream scheduling client and availability gateway
	calc := schedule.NewCalculator(week, loc)
	client := remote.NewClient(
		cfg.Remote.ScriptURL,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		appLogger,
	)
	limiter := rate.NewLimiter(
		rate.Every(time.Minute/time.Duration(cfg.RateLimit.PerMinute)),
		cfg.RateLimit.Burst,
	)
	gw := gateway.New(calc, catalog, client, limiter, appLogger)
	sub := submitter.New(client, catalog, appLogger)

	// Confirmation emails are optional; without SMTP we just log
	var emailSvc email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.Config{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			ClinicCopy: cfg.SMTP.ClinicCopy,
		}, appLogger)
	}

	bookingSvc := bookingService.NewService(store, gw, sub, emailSvc, catalog, week, loc, appLogger)

	// Handlers and router
	h := handler.NewHandler()
	bookingH := bookingHandler.NewHandler(bookingSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(bookingH, h, router.RouterConfig{
		RateLimit:     rate.Every(time.Minute / time.Duration(cfg.RateLimit.PerMinute)),
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    corsConfig,
		MetricsPrefix: "booking_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			appLogger.Warn().Err(err).Msg("failed to close session store")
		}
	}

	appLogger.Info().Msg("server exited properly")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	l := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Pretty,
	})
	return *l.Zerolog()
}

func newSessionStore(cfg config.SessionStoreConfig) (session.Store, error) {
	ttl := session.DefaultTTL
	if cfg.TTLMinutes > 0 {
		ttl = time.Duration(cfg.TTLMinutes) * time.Minute
	}

	switch cfg.Backend {
	case "", "memory":
		return session.NewMemoryStore(ttl), nil
	case "redis":
		return session.NewRedisStore(session.RedisConfig{
			URL:          cfg.RedisURL,
			TTL:          ttl,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
	default:
		return nil, fmt.Errorf("unknown session store backend %q", cfg.Backend)
	}
}
