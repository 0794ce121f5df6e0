package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"teamfit/internal/config"
	"teamfit/internal/db"
	apihttp "teamfit/internal/http"
	"teamfit/internal/llm"
	"teamfit/internal/repository"
	"teamfit/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
	limiter := service.NewRateLimiter(cfg.RequestsPerSecond, logger)
	logger.Info("rate limiter initialized", zap.Float64("requests_per_second", cfg.RequestsPerSecond))

	extractor := service.NewPersonalityTraitsExtractor(llmClient, limiter, cfg.LLMModel, logger)
	scorer := service.NewCompatibilityScorer(llmClient, limiter, cfg.LLMModel, logger)
	analysisSvc := service.NewAnalysisService(scorer, extractor, limiter, logger)
	resultStore := service.NewResultStore(cfg.ResultsFile, logger)

	// El asistente RAG es opcional: sin DATABASE_URL el servicio arranca en
	// modo degradado (analisis disponible, query no).
	var assistantSvc *service.AssistantService
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("db connect failed, assistant disabled", zap.Error(err))
		} else {
			defer pool.Close()
			if err := db.Ping(ctx, pool); err != nil {
				logger.Warn("db ping failed, assistant disabled", zap.Error(err))
			} else {
				var cache service.QueryCache
				if cfg.RedisAddr != "" {
					redisClient := redis.NewClient(&redis.Options{
						Addr:     cfg.RedisAddr,
						Password: cfg.RedisPassword,
						DB:       cfg.RedisDB,
					})
					ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
					if err := redisClient.Ping(ctxPing).Err(); err != nil {
						logger.Warn("redis ping failed, query cache disabled", zap.Error(err))
					} else {
						cache = service.NewRedisQueryCache(redisClient, time.Duration(cfg.QueryCacheTTL)*time.Second)
					}
					cancel()
				}

				indexRepo := repository.NewPgCandidateIndexRepository(pool)
				assistantSvc = service.NewAssistantService(
					logger, llmClient, indexRepo, limiter, cache,
					cfg.LLMModel, cfg.LLMEmbeddingModel, cfg.CollectionName, cfg.AssistantMaxResults,
				)
			}
		}
	} else {
		logger.Warn("DATABASE_URL not configured, assistant disabled")
	}

	analysisHandler := apihttp.NewAnalysisHandler(logger, analysisSvc, extractor, resultStore, assistantSvc, limiter, cfg.AssistantAutoSync)
	assistantHandler := apihttp.NewAssistantHandler(logger, assistantSvc, resultStore)
	router := apihttp.NewRouter(logger, analysisHandler, assistantHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
