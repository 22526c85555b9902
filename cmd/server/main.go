package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/resume-scanner/internal/logger"
	"github.com/fadilmartias/resume-scanner/internal/middleware"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	appConfig := config.LoadAppConfig()
	slog.SetDefault(applogger.New(os.Stdout, appConfig.Env, appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: appConfig.AllowOrigins,
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig())
	if err != nil {
		slog.Error("gemini client", "error", err)
		os.Exit(1)
	}
	openRouter := service.NewOpenRouterService(config.LoadOpenRouterConfig())
	github := service.NewGitHubService(config.LoadGitHubConfig())
	mailConfig := config.LoadMailConfig()
	storage := config.LoadStorageConfig()
	authConfig := config.LoadAuthConfig()
	if authConfig.Enabled && authConfig.JWTSecret == "" {
		slog.Error("AUTH_ENABLED requires AUTH_JWT_SECRET")
		os.Exit(1)
	}

	resumes := usecase.NewResumeUsecase(repository.NewResumeRepository(db), gemini, storage)
	ranking := usecase.NewRankingUsecase(resumes, repository.NewRankingRepository(db), gemini, openRouter, storage.AnalysisConcurrency)
	auth := usecase.NewAuthUsecase(repository.NewUserRepository(db), authConfig)

	handler.RegisterRoutes(app, &handler.Handlers{
		Resume:    handler.NewResumeHandler(resumes, storage),
		File:      handler.NewFileHandler(resumes),
		Ranking:   handler.NewRankingHandler(ranking),
		Candidate: handler.NewCandidateHandler(usecase.NewCandidateUsecase(resumes, ranking)),
		Analytics: handler.NewAnalyticsHandler(usecase.NewAnalyticsUsecase(resumes)),
		Personnel: handler.NewPersonnelHandler(usecase.NewPersonnelUsecase(repository.NewPersonnelRepository(db), gemini)),
		Email: handler.NewEmailHandler(usecase.NewEmailUsecase(
			repository.NewAssignmentRepository(db), gemini, service.NewSMTPMailer(mailConfig), mailConfig)),
		Interview: handler.NewInterviewHandler(usecase.NewInterviewUsecase(repository.NewChatRepository(db), gemini)),
		Project:   handler.NewProjectHandler(usecase.NewProjectUsecase(github, gemini)),
		Auth:      handler.NewAuthHandler(auth),
	}, authConfig, auth)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				slog.Debug("runtime", "goroutines", runtime.NumGoroutine())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("server running", "port", appConfig.Port, "auth", authConfig.Enabled, "openrouter", openRouter.Enabled())
	if err := app.Listen(appConfig.Port); err != nil {
		slog.Error("listen", "error", err)
		os.Exit(1)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
		dbConfig.TimeZone,
	)

	logLevel := gormlogger.Warn
	if appConfig.IsProduction() {
		logLevel = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		slog.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	pgDB, err := db.DB()
	if err != nil {
		slog.Error("could not get database instance", "error", err)
		os.Exit(1)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		slog.Error("enabling pgvector failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	return db
}
