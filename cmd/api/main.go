package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/ai"
	"github.com/RangerDjanger/BetterDay/internal/api/handlers"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/RangerDjanger/BetterDay/internal/api/routes"
	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/RangerDjanger/BetterDay/internal/domain/milestones"
	"github.com/RangerDjanger/BetterDay/internal/domain/reminders"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/cache"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/connection"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/migrations"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/scheduler"
	"github.com/RangerDjanger/BetterDay/pkg/config"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/RangerDjanger/BetterDay/pkg/security/auth"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const responseCacheTTL = 5 * time.Minute

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdlog.Printf("Failed to read .env file: %v", err)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	defer log.Sync()

	loc := cfg.App.Location()
	log.Info("Configuration loaded successfully",
		zap.String("mode", cfg.Server.Mode),
		zap.String("timezone", loc.String()),
	)
	if cfg.Auth.JWTSecret == "" && !cfg.Auth.AllowClientPrincipal {
		log.Fatal("No identity source configured: set JWT_SECRET or enable the client principal header")
	}

	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(cache.NewConfigFromEnv(cfg))
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Streak engine and milestones
	engine := streaks.NewEngine(streaks.NewSystemClock(loc))
	var milestoneStore milestones.Store
	switch cfg.App.MilestoneStore {
	case "redis":
		milestoneStore = milestones.NewRedisStore(redisClient)
	default:
		milestoneStore = habits.NewMilestoneStore(db)
	}
	tracker := milestones.NewTracker(engine, milestoneStore)

	// Repositories and services
	journalService := journal.NewService(journal.NewRepository(db), log.Logger)
	settingsService := settings.NewService(settings.NewRepository(db), redisClient, log.Logger)
	habitsService := habits.NewService(habits.NewRepository(db), engine, tracker, redisClient, log.Logger,
		habits.WithStatsTTL(cfg.App.StatsCacheTTL))
	coachService := coach.NewService(ai.NewGenerator(cfg.Coach, log.Logger), cfg.Coach.Timeout, log.Logger)
	checkInService := coach.NewCheckInService(journalService, habitsService, settingsService,
		coachService, redisClient, log.Logger)

	// Reminders
	reminderScheduler := reminders.NewScheduler(reminders.NewRedisNotifier(redisClient),
		cfg.App.ReminderInterval, loc, log.Logger)
	reminderJob := scheduler.NewScheduler(settingsService, habitsService, reminderScheduler, loc, log)
	reminderJob.Start(ctx)
	reminderScheduler.Start(ctx)
	log.Info("Reminder scheduler started", zap.Duration("interval", cfg.App.ReminderInterval))

	go listenForEvents(ctx, redisClient, reminderJob, log)

	// HTTP
	router := routes.NewRouter(cfg, log)
	routes.SetupHealthRoutes(router, map[string]routes.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
		"cache":    redisClient.HealthCheck,
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth)
	responseCache := middleware.NewCacheMiddleware(redisClient, responseCacheTTL)
	breaker := middleware.NewCircuitBreaker(middleware.CircuitBreakerConfig{
		Name:                "habits",
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 3,
	})
	var coachLimiter auth.RateLimiter
	if cfg.Limits.CoachRequests > 0 {
		coachLimiter = auth.NewRedisRateLimiter(redisClient.GetClient(), cache.DefaultConfig().KeyPrefix,
			cfg.Limits.CoachWindow, int64(cfg.Limits.CoachRequests))
	}

	habitsHandler := handlers.NewHabitsHandler(habitsService)
	journalHandler := handlers.NewJournalHandler(journalService, checkInService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, reminderJob)
	userHandler := handlers.NewUserHandler(reminderJob, habitsService, journalService, settingsService)

	routes.NewHabitsRoutes(habitsHandler, authMiddleware).RegisterRoutes(router, breaker)
	routes.NewJournalRoutes(journalHandler, authMiddleware, coachLimiter).RegisterRoutes(router, responseCache)
	routes.NewSettingsRoutes(settingsHandler, userHandler, authMiddleware).RegisterRoutes(router, responseCache)

	for _, route := range router.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	reminderScheduler.Stop()
	reminderJob.Stop()
	cancel()

	log.Info("Server exited properly")
}

// listenForEvents feeds domain events from Redis to the reminder job until
// ctx is cancelled, resubscribing after transient failures.
func listenForEvents(ctx context.Context, redisClient *cache.RedisClient, job *scheduler.Scheduler, log *logger.Logger) {
	for {
		err := redisClient.SubscribeToEvents(ctx, func(event *events.Event) error {
			log.Debug("Domain event received",
				zap.String("event_type", event.EventType),
				zap.String("user_id", event.UserID),
			)
			return job.HandleEvent(ctx, event)
		})
		if ctx.Err() != nil {
			return
		}
		log.Warn("Event subscription ended, retrying", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
