// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/membership/internal/admin"
	"github.com/carterperez-dev/membership/internal/agecategory"
	"github.com/carterperez-dev/membership/internal/auth"
	"github.com/carterperez-dev/membership/internal/config"
	"github.com/carterperez-dev/membership/internal/contact"
	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/email"
	"github.com/carterperez-dev/membership/internal/health"
	"github.com/carterperez-dev/membership/internal/membership"
	"github.com/carterperez-dev/membership/internal/middleware"
	"github.com/carterperez-dev/membership/internal/server"
	"github.com/carterperez-dev/membership/internal/user"
	"github.com/carterperez-dev/membership/internal/worker"
	"github.com/carterperez-dev/membership/migrations"
)

const (
	drainDelay = 5 * time.Second

	authRequestsPerMinute = 20
	authBurst             = 5
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool(
		"generate-keys",
		false,
		"write a new ES256 key pair to the configured JWT key paths and exit",
	)
	flag.Parse()

	if err := run(*configPath, *generateKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, generateKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if generateKeys {
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return fmt.Errorf("generate keys: %w", err)
		}
		slog.Info("JWT key pair written",
			"private", cfg.JWT.PrivateKeyPath,
			"public", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	core.ExposeErrorDetails(!cfg.IsProduction())

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if telemetry.Enabled() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db.SQL()); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	var sender email.Sender
	if cfg.Email.APIKey != "" {
		sender = email.NewResendSender(cfg.Email)
	} else {
		logger.Warn("email API key not set, outgoing mail will only be logged")
		sender = email.NewLogSender(logger)
	}

	mailer, err := email.NewMailer(sender, email.MailerConfig{
		AppName:         cfg.App.Name,
		ContactInbox:    cfg.Email.ContactInbox,
		Frontend:        cfg.Frontend,
		VerificationTTL: cfg.Auth.VerificationTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
	}, logger)
	if err != nil {
		return err
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	emailLimiter := auth.NewEmailLimiter(
		middleware.NewRateLimiter(ctx, redis, middleware.RateLimitConfig{
			Limit: middleware.LimitFromConfig(config.RateLimitConfig{
				Requests: cfg.Auth.EmailRequestLimit,
				Window:   cfg.Auth.EmailRequestEvery,
			}),
			FailOpen: true,
		}),
	)
	authSvc := auth.NewService(jwtManager, userSvc, mailer, emailLimiter, cfg.Auth)
	authHandler := auth.NewHandler(authSvc)

	membershipSvc := membership.NewService(
		userSvc,
		membership.NewStripeProvider(cfg.Stripe, nil),
		membership.NewRedisLedger(redis),
		cfg.Frontend,
	)
	membershipHandler := membership.NewHandler(membershipSvc)

	contactHandler := contact.NewHandler(mailer)

	ageHandler := agecategory.NewHandler(agecategory.NewService(
		agecategory.NewRepository(db.DB),
		cfg.AgeCategory,
	))

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Users:      userSvc,
	})

	healthHandler := health.NewHandler(
		cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	webhookPath := cfg.Server.APIPrefix + "/webhook"

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(ctx, redis, middleware.RateLimitConfig{
			Limit:    middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen: true,
			BypassFunc: func(r *http.Request) bool {
				return r.URL.Path == webhookPath
			},
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)
	authLimiter := middleware.NewRateLimiter(ctx, redis, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(authRequestsPerMinute, authBurst),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	})

	router.Route(cfg.Server.APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			authHandler.RegisterRoutes(r, optionalAuth)
		})

		userHandler.RegisterRoutes(r, authenticator)
		membershipHandler.RegisterRoutes(r, authenticator)
		contactHandler.RegisterRoutes(r)

		if cfg.Internal.APIKey == "" {
			logger.Warn("internal API key not set, internal routes disabled")
			return
		}

		r.Route("/internal", func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(cfg.Internal.APIKey))
			adminHandler.RegisterRoutes(r)
			ageHandler.RegisterRoutes(r)
		})
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	cleaner := worker.NewTokenCleaner(userSvc, cfg.Worker.TokenCleanupInterval, logger)
	go cleaner.Run(workerCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
