// Package app wires together the account service's dependencies.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnaLR27/cs11-backend/internal/auth"
	"github.com/AnaLR27/cs11-backend/internal/config"
	"github.com/AnaLR27/cs11-backend/internal/event"
	handler "github.com/AnaLR27/cs11-backend/internal/handler/http"
	"github.com/AnaLR27/cs11-backend/internal/mailer"
	"github.com/AnaLR27/cs11-backend/internal/ratelimit"
	"github.com/AnaLR27/cs11-backend/internal/repository/postgres"
	"github.com/AnaLR27/cs11-backend/internal/service"
	"github.com/AnaLR27/cs11-backend/migrations"
	"github.com/AnaLR27/cs11-backend/pkg/database"
	"github.com/AnaLR27/cs11-backend/pkg/health"
	pkgkafka "github.com/AnaLR27/cs11-backend/pkg/kafka"
)

// limiterCleanupInterval is how often expired login-attempt counters are swept.
const limiterCleanupInterval = 5 * time.Minute

// App wires together all dependencies and runs the account service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	producer    *pkgkafka.Producer
	httpServer  *http.Server
	stopCleanup chan struct{}
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,

		MaxConns:        20,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	tokenManager := auth.NewTokenManager(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.ResetTokenSecret,
		cfg.AccessTTL(),
		cfg.RefreshTTL(),
		cfg.ResetTTL(),
	)

	limiter := ratelimit.NewLoginLimiter(cfg.LoginMaxAttempts, cfg.LoginRateWindow())
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(limiterCleanupInterval, stopCleanup)

	credRepo := postgres.NewCredentialRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	watchRepo := postgres.NewWatchlistRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	mail := mailer.New(mailer.Config{
		Addr:     cfg.SMTPAddr,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	authService := service.NewAuthService(credRepo, profileRepo, tokenManager, limiter, eventProducer, logger)
	resetService := service.NewResetService(credRepo, tokenManager, mail, eventProducer, cfg.PublicBaseURL, logger)
	watchlistService := service.NewWatchlistService(watchRepo, profileRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:      authService,
		ResetService:     resetService,
		WatchlistService: watchlistService,
		TokenManager:     tokenManager,
		HealthHandler:    healthHandler,
		Logger:           logger,
		CORS: handler.CORSConfig{
			AllowedOrigins:     cfg.CORSAllowedOrigins,
			Environment:        cfg.Environment,
			RefreshTokenHeader: cfg.RefreshTokenHeader,
		},
		RefreshTokenHeader: cfg.RefreshTokenHeader,
		RateLimitRPS:       cfg.HTTPRateLimitRPS,
		RateLimitBurst:     cfg.HTTPRateLimitBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		producer:    producer,
		httpServer:  httpServer,
		stopCleanup: stopCleanup,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains
// in-flight requests first, then the producer and pool are closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	close(a.stopCleanup)

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
