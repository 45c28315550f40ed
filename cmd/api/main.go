// @title Wikipedia Quiz Generator API
// @version 1.0.0
// @description Generates multiple-choice quizzes from Wikipedia articles and keeps a history of them.
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wiki-quiz/internal/adapter"
	"wiki-quiz/internal/adapter/quizgen"
	"wiki-quiz/internal/adapter/scraper"
	"wiki-quiz/internal/cache"
	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/repository"
	"wiki-quiz/internal/router"
	"wiki-quiz/internal/service"
	"wiki-quiz/internal/validation"

	_ "wiki-quiz/cmd/api/docs"

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

	db, err := database.NewSQLXDB(ctx, cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db.DB, cfg.DB.Driver); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	var quizRepository domain.QuizRepository = repository.NewQuizDatabaseAdapter(db, cfg.DB.Driver, cfg.DB.QueryTimeout)

	var cacheAdapter domain.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, serving without record cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			quizRepository = repository.NewCachedQuizRepository(quizRepository, cacheAdapter, cfg.Redis.RecordTTL)
			appLogger.Info("Record cache enabled", zap.String("address", cfg.Redis.Address), zap.Duration("ttl", cfg.Redis.RecordTTL))
		}
	}

	fetcher := scraper.NewWikipediaScraper(cfg.Scraper, &http.Client{Timeout: cfg.Scraper.Timeout})

	llm, err := quizgen.NewModel(cfg.LLM, &http.Client{Timeout: cfg.LLM.Timeout})
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	generator := quizgen.NewLLMQuizGenerator(llm, cfg.LLM)
	appLogger.Info("Quiz generator initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	quizService := service.NewQuizService(validation.NewValidator(), fetcher, generator, quizRepository, cacheAdapter)
	app := router.New(cfg.Server, quizService)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
