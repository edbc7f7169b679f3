package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medbook/config"
	deliveryHttp "medbook/internal/delivery/http"
	"medbook/internal/delivery/http/handler"
	"medbook/internal/delivery/http/middleware"
	"medbook/internal/infrastructure/cache"
	"medbook/internal/infrastructure/database"
	"medbook/internal/infrastructure/gateway"
	"medbook/internal/infrastructure/messaging"
	"medbook/internal/infrastructure/tracing"
	"medbook/internal/repository"
	"medbook/internal/service"
	"medbook/internal/usecase"
	"medbook/pkg/jwt"
	"medbook/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config          *config.Config
	Log             *logrus.Logger
	DB              *gorm.DB
	RedisClient     *redis.Client
	KafkaWriter     *kafka.Writer
	PollGuard       *service.PollGuard
	OutboxPublisher *service.OutboxPublisher
	Server          *http.Server

	shutdownTracing func(context.Context) error
	stopPublisher   context.CancelFunc
	publisherDone   chan struct{}
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	app.shutdownTracing = shutdownTracing

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB.MigrationURL(), log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	loc, err := cfg.App.Location()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.PollGuard = service.NewPollGuard(service.PollPolicy{
		MinInterval: cfg.Gateway.PollMinInterval,
		Window:      cfg.Gateway.PollWindow,
		MaxRequests: cfg.Gateway.PollMaxRequests,
		Cooldown:    cfg.Gateway.PollCooldown,
	}, log)

	// Kafka is optional; without brokers events accumulate in the outbox
	var writer service.MessageWriter
	if kw := messaging.NewKafkaWriter(cfg.Kafka); kw != nil {
		app.KafkaWriter = kw
		writer = kw
	}
	app.OutboxPublisher = service.NewOutboxPublisher(db, log, repository.NewOutboxRepository(), writer, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize)

	app.Server = initializeServer(cfg, log, loc, db, redisClient, app.PollGuard)

	return app, nil
}

// setupLogger configures a JSON logrus logger at the configured level
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// initializeServer wires repositories, services, usecases and handlers into the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, loc *time.Location, db *gorm.DB, redisClient *redis.Client, pollGuard *service.PollGuard) *http.Server {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	orgRepo := repository.NewOrganizationRepository()
	memberRepo := repository.NewMemberRepository()
	scheduleRepo := repository.NewWeeklyScheduleRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	serviceRepo := repository.NewMedicalServiceRepository()
	auditRepo := repository.NewAuditLogRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Services
	auditService := service.NewAuditService(log, auditRepo)
	eventService := service.NewEventService(log, outboxRepo)
	scheduleCache := service.NewScheduleCacheService(redisClient, log, cfg.Availability.ScheduleCacheTTL)
	slotLocks := service.NewSlotLockService(redisClient, log, cfg.Availability.SlotHoldTTL)
	evolutionClient := gateway.NewEvolutionClient(cfg.Gateway)

	// Usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, cfg.Availability, loc, cfg.App.Locale,
		orgRepo, memberRepo, scheduleRepo, appointmentRepo, serviceRepo, scheduleCache)
	weeklyScheduleUsecase := usecase.NewWeeklyScheduleUsecase(db, log, scheduleRepo, auditService, scheduleCache)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, orgRepo, appointmentRepo, availabilityUsecase, slotLocks, auditService, eventService)
	medicalServiceUsecase := usecase.NewMedicalServiceUsecase(db, log, serviceRepo)
	whatsAppUsecase := usecase.NewWhatsAppUsecase(db, log, orgRepo, evolutionClient, pollGuard)

	// Handlers
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator)
	weeklyScheduleHandler := handler.NewWeeklyScheduleHandler(weeklyScheduleUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	medicalServiceHandler := handler.NewMedicalServiceHandler(medicalServiceUsecase)
	whatsAppHandler := handler.NewWhatsAppHandler(whatsAppUsecase)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	orgRoleMiddleware := middleware.NewOrgRoleMiddleware(db, log, memberRepo)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	router := deliveryHttp.NewRouter(
		availabilityHandler,
		weeklyScheduleHandler,
		appointmentHandler,
		medicalServiceHandler,
		whatsAppHandler,
		authMiddleware,
		orgRoleMiddleware,
		corsMiddleware,
		loggingMiddleware,
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           otelhttp.NewHandler(router.Setup(), cfg.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the outbox publisher and the HTTP server, then handles graceful shutdown
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	app.stopPublisher = cancel
	app.publisherDone = make(chan struct{})
	go func() {
		defer close(app.publisherDone)
		app.OutboxPublisher.Run(ctx)
	}()

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.App.ShutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers, flushes traces and closes Kafka, Redis and database connections
func (app *App) Close() {
	if app.stopPublisher != nil {
		app.stopPublisher()
		<-app.publisherDone
	}

	if app.PollGuard != nil {
		app.PollGuard.Stop()
	}

	if app.KafkaWriter != nil {
		if err := app.KafkaWriter.Close(); err != nil {
			app.Log.Warnf("Failed to close Kafka writer: %+v", err)
		}
	}

	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.shutdownTracing(ctx); err != nil {
			app.Log.Warnf("Failed to flush traces: %+v", err)
		}
	}

	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Log.Warnf("Failed to close Redis: %+v", err)
		}
	}

	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
