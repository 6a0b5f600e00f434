package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/learnhub/backend/docs"
	authmw "github.com/learnhub/backend/internal/auth/middleware"
	"github.com/learnhub/backend/internal/auth/service"
	"github.com/learnhub/backend/internal/cache"
	"github.com/learnhub/backend/internal/certificate"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/handlers"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
	"github.com/learnhub/backend/internal/repositories/mongostore"
	"github.com/learnhub/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// storage groups the repositories of the selected driver
type storage struct {
	courses     services.CourseRepository
	lessons     services.LessonRepository
	enrollments services.EnrollmentRepository
	attempts    services.QuizAttemptRepository
	ping        handlers.Pinger
	close       func()
}

// @title LearnHub API
// @version 1.0
// @description Course catalog, enrollment, final quiz gating and completion certificates.

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting LearnHub API", zap.String("driver", cfg.Database.Driver))

	store, err := openStorage(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.close()

	// Catalog cache is optional
	var catalogCache services.CatalogCache
	if cfg.CacheEnabled() {
		redisClient, err := connectRedis(cfg)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		catalogCache = cache.NewCatalogCache(redisClient, cfg.Redis.CacheTTL)
	} else {
		logger.Logger.Info("Catalog cache disabled")
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize services
	lessonResolver := services.NewLessonResolver(store.lessons)
	catalogService := services.NewCatalogService(store.courses, store.lessons, lessonResolver, catalogCache, logger.Logger)
	ledger := services.NewEnrollmentLedger(store.enrollments, store.courses, lessonResolver, logger.Logger)
	workflow := services.NewCompletionWorkflow(ledger, store.courses, lessonResolver, store.attempts, logger.Logger)
	certificateService := services.NewCertificateService(
		ledger,
		store.courses,
		lessonResolver,
		certificate.NewPDFRenderer(),
		cfg.PlatformName,
		logger.Logger,
	)
	reportService := services.NewReportService(store.courses, store.enrollments, lessonResolver, store.attempts)
	quizGrader := services.NewQuizGrader()

	// Initialize handlers
	courseHandler := handlers.NewCourseHandler(catalogService, logger.Logger)
	lessonHandler := handlers.NewLessonHandler(catalogService, logger.Logger)
	enrollmentHandler := handlers.NewEnrollmentHandler(ledger, workflow, logger.Logger)
	certificateHandler := handlers.NewCertificateHandler(certificateService, logger.Logger)
	reportHandler := handlers.NewReportHandler(reportService, quizGrader, logger.Logger)
	healthHandler := handlers.NewHealthHandler(store.ping, logger.Logger)

	// Initialize auth middleware
	authMiddleware := authmw.AuthMiddleware(tokenGenerator)
	teacherMiddleware := authmw.RoleMiddleware(tokenGenerator, models.RoleTeacher)
	studentMiddleware := authmw.RoleMiddleware(tokenGenerator, models.RoleStudent)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		courseHandler.RegisterRoutes(r, teacherMiddleware)
		lessonHandler.RegisterRoutes(r, authMiddleware, teacherMiddleware)
		enrollmentHandler.RegisterRoutes(r, studentMiddleware)
		certificateHandler.RegisterRoutes(r, authMiddleware)
		reportHandler.RegisterRoutes(r, studentMiddleware, teacherMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// openStorage connects the configured driver and builds its repositories
func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		return &storage{
			courses:     mongostore.NewCourseStore(db),
			lessons:     mongostore.NewLessonStore(db),
			enrollments: mongostore.NewEnrollmentStore(db),
			attempts:    mongostore.NewQuizAttemptStore(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil
	default:
		db, err := connectDB(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, err
		}

		return &storage{
			courses:     repositories.NewCourseRepository(db),
			lessons:     repositories.NewLessonRepository(db),
			enrollments: repositories.NewEnrollmentRepository(db),
			attempts:    repositories.NewQuizAttemptRepository(db),
			ping:        db.PingContext,
			close:       func() { db.Close() },
		}, nil
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "learnhub_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// connectRedis connects to the catalog cache
func connectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
