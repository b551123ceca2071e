// @title Quizly API
// @version 1.0
// @description Generates multiple-choice quizzes from YouTube videos and manages them per user.
// @host localhost:8000
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize, or rely on the access_token cookie.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizly/internal/adapter"
	"quizly/internal/adapter/audio"
	"quizly/internal/adapter/quizgen"
	"quizly/internal/adapter/transcriber"
	"quizly/internal/cache"
	"quizly/internal/config"
	"quizly/internal/database"
	"quizly/internal/handler"
	"quizly/internal/logger"
	"quizly/internal/middleware"
	"quizly/internal/repository"
	"quizly/internal/service"

	_ "quizly/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Successfully connected to Redis")

	// Repositories
	txManager := repository.NewTransactionManagerAdapter(db)
	quizRepository := repository.NewQuizDatabaseAdapter(db, txManager)
	userRepository := repository.NewSQLXUserRepository(db)

	// Pipeline adapters
	acquirer, err := audio.NewAcquirer(cfg.Pipeline)
	if err != nil {
		appLogger.Fatal("Failed to create audio acquirer", zap.Error(err))
	}
	whisper := transcriber.NewWhisperTranscriber(cfg.Transcriber)
	model, err := quizgen.NewModel(ctx, cfg.Generator)
	if err != nil {
		appLogger.Fatal("Failed to create generative model", zap.Error(err))
	}
	generator := quizgen.NewLLMQuizGenerator(model, cfg.Generator)
	appLogger.Info("Quiz pipeline initialized",
		zap.String("audio_backend", cfg.Pipeline.AudioBackend),
		zap.String("generator_provider", cfg.Generator.Provider),
		zap.String("generator_model", cfg.Generator.Model),
		zap.Bool("generator_ready", model != nil))

	// Services
	generationService := service.NewQuizGenerationService(acquirer, whisper, generator, quizRepository, cacheAdapter, cfg.Pipeline)
	quizService := service.NewQuizService(quizRepository)
	authService, err := service.NewAuthService(userRepository, cacheAdapter, cfg.JWT)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg)
	quizHandler := handler.NewQuizHandler(generationService, quizService)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": db,
		"redis":    handler.PingFunc(cacheAdapter.Ping),
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(cfg.Server.ExposeErrorDetails),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5500,http://127.0.0.1:5500",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", healthHandler.Health)

	protected := middleware.Protected(authService)
	handler.RegisterRoutes(app, authHandler, quizHandler, protected)
	handler.RegisterRoutes(app.Group("/api"), authHandler, quizHandler, protected)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
