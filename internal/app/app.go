package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SpyBeast07/lms-system/internal/auth"
	"github.com/SpyBeast07/lms-system/internal/config"
	"github.com/SpyBeast07/lms-system/internal/event"
	handler "github.com/SpyBeast07/lms-system/internal/handler/http"
	"github.com/SpyBeast07/lms-system/internal/repository/postgres"
	redisrepo "github.com/SpyBeast07/lms-system/internal/repository/redis"
	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/internal/storage"
	"github.com/SpyBeast07/lms-system/migrations"
	"github.com/SpyBeast07/lms-system/pkg/database"
	"github.com/SpyBeast07/lms-system/pkg/health"
	pkgkafka "github.com/SpyBeast07/lms-system/pkg/kafka"
	"github.com/SpyBeast07/lms-system/pkg/middleware"
	"github.com/SpyBeast07/lms-system/pkg/tracing"
)

// statsCacheTTL bounds how stale the dashboard counts can get.
const statsCacheTTL = 30 * time.Second

// App wires together all dependencies and runs the LMS service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	authService    *service.AuthService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "lms",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "lms")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for the stats cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Object storage for submission files.
	store, err := storage.NewS3Storage(storage.S3Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry)
	hasher := auth.NewHasher()

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	requestRepo := postgres.NewPasswordRequestRepository(pool)
	signupRepo := postgres.NewSignupRequestRepository(pool)
	schoolRepo := postgres.NewSchoolRepository(pool)
	courseRepo := postgres.NewCourseRepository(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	enrollmentRepo := postgres.NewEnrollmentRepository(pool)
	submissionRepo := postgres.NewSubmissionRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	statsCache := redisrepo.NewStatsCache(redisClient, statsCacheTTL)

	eventProducer := event.NewProducer(producer, logger)
	activityService := service.NewActivityService(activityRepo, eventProducer, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	authService := service.NewAuthService(userRepo, tokenRepo, requestRepo, jwtManager, hasher,
		notificationService, activityService, cfg.RefreshTokenTTL, logger)
	signupService := service.NewSignupService(signupRepo, userRepo, schoolRepo, hasher,
		notificationService, activityService, logger)
	userService := service.NewUserService(userRepo, schoolRepo, tokenRepo, hasher, activityService, logger)
	schoolService := service.NewSchoolService(schoolRepo, userRepo, logger)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, activityService, logger)
	materialService := service.NewMaterialService(materialRepo, courseRepo, enrollmentRepo,
		notificationService, activityService, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, userRepo,
		notificationService, activityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, materialRepo, courseRepo,
		enrollmentRepo, notificationService, activityService, store, logger)
	statsService := service.NewStatsService(statsRepo, statsCache, logger)
	fileService := service.NewFileService(store, logger)

	// Kafka consumers for the activity log pipeline.
	consumerHandler := event.NewConsumerHandler(activityRepo, logger)
	consumers := event.NewConsumers(cfg.KafkaBrokers, consumerHandler, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(handler.Services{
		Auth:          authService,
		Signup:        signupService,
		Users:         userService,
		Schools:       schoolService,
		Courses:       courseService,
		Materials:     materialService,
		Enrollments:   enrollmentService,
		Submissions:   submissionService,
		Files:         fileService,
		Notifications: notificationService,
		Activity:      activityService,
		Stats:         statsService,
	}, jwtManager, healthHandler, logger, corsConfig)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		consumers:      consumers,
		authService:    authService,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server, Kafka consumers, and the token sweeper, and
// blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	for _, consumer := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("kafka consumer stopped", slog.String("error", err.Error()))
			}
		}(consumer)
	}

	go a.runTokenSweeper(ctx)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
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

// runTokenSweeper periodically deletes expired refresh token rows.
func (a *App) runTokenSweeper(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.TokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := a.authService.SweepExpiredTokens(sweepCtx); err != nil {
				a.logger.Error("token sweep failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// Shutdown gracefully stops all components: drain HTTP, flush spans, close
// consumers, producer, redis, and finally the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	for _, consumer := range a.consumers {
		if err := consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
