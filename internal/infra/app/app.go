package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/infra/database"
	"github.com/arklim/social-platform-auth/internal/infra/email"
	kafkainfra "github.com/arklim/social-platform-auth/internal/infra/kafka"
	"github.com/arklim/social-platform-auth/internal/infra/logger"
	redisinfra "github.com/arklim/social-platform-auth/internal/infra/redis"
	"github.com/arklim/social-platform-auth/internal/infra/security"
	postgresrepo "github.com/arklim/social-platform-auth/internal/repository/postgres"
	redisrepo "github.com/arklim/social-platform-auth/internal/repository/redis"
	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/social-platform-auth/internal/transport/http/routes"
	"github.com/arklim/social-platform-auth/internal/usecase"
)

type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	sweeper *usecase.Sweeper
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := database.RunMigrations(ctx, cfg.Postgres, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "auth:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	hasher := security.NewPasswordHasher(security.DefaultArgon2Params())
	notifier := email.NewNotifier(cfg.SMTP, log)

	otpService := usecase.NewOtpService(repos.Otps, cfg.Otp, log)
	authService := usecase.NewAuthService(
		repos.Accounts,
		repos.Pending,
		otpService,
		hasher,
		tokenManager,
		notifier,
		eventPublisher,
		log,
	)
	sweeper := usecase.NewSweeper(otpService, repos.Pending, cfg.Sweep, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Auth:        authService,
		Tokens:      tokenManager,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		sweeper: sweeper,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		a.sweeper.Run(sweepCtx)
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		stopSweeps()
		<-sweeperDone

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		stopSweeps()
		return err
	}
}
