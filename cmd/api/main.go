package main

// @title Nearby Places API
// @version 1.0.0
// @description Сервис поиска мест рядом с пользователем. Клиент открывает сессию, сообщает разрешение на геолокацию и позицию устройства, сервис ищет места вокруг позиции через Mapbox Geocoding API.
// @description
// @description Основные возможности:
// @description - Сессии с состоянием позиции и результатов поиска
// @description - Поиск мест по категории с сортировкой по расстоянию
// @description - Подробная информация о месте

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	_ "github.com/nearby-places/docs"
	"github.com/nearby-places/internal/config"
	httpDelivery "github.com/nearby-places/internal/delivery/http"
	"github.com/nearby-places/internal/delivery/http/handler"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/infrastructure/location"
	"github.com/nearby-places/internal/infrastructure/mapbox"
	"github.com/nearby-places/internal/infrastructure/transport"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/logger"
	"github.com/nearby-places/internal/repository/cache"
	"github.com/nearby-places/internal/usecase"
	"github.com/nearby-places/internal/worker"
	"github.com/nearby-places/internal/worker/session"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Nearby Places service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	// 3. Cache: Redis, если включён, иначе in-memory LRU
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Health(ctx); err != nil {
			cancel()
			log.Fatal("Redis health check failed", zap.Error(err))
		}
		cancel()

		cacheRepo = cache.NewCacheRepository(redisClient)
		log.Info("Redis connected")
	} else {
		cacheRepo = cache.NewMemoryCache(clock, cfg.Cache.MaxEntries)
	}

	// 4. Initialize Repositories
	mapboxTransport := transport.NewHTTPTransport(cfg.Mapbox.BaseURL, cfg.Mapbox.Debug, log)
	placeRepo, err := mapbox.NewPlaceRepository(
		mapboxTransport,
		cfg.Mapbox.AccessToken,
		cfg.Mapbox.RequestTimeout,
		metrics,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize place repository", zap.Error(err))
	}

	log.Info("Repositories initialized")

	// 5. Initialize Use Cases
	searchUC := usecase.NewPlacesSearchUseCase(
		placeRepo,
		cacheRepo,
		usecase.SearchPolicy{
			CacheTTL:      cfg.Cache.SearchCacheTTL,
			Precision:     cfg.Cache.Precision,
			MaxRetries:    cfg.Search.MaxRetries,
			RetryInterval: cfg.Search.RetryInterval,
		},
		metrics,
		log,
	)

	sessions := usecase.NewSessionManager(
		searchUC,
		placeRepo,
		func() usecase.Device {
			return location.NewDevice(clock, cfg.Location.Timeout, metrics, log)
		},
		cfg.Search.AutoSearch,
		cfg.Session.IdleTTL,
		clock,
		metrics,
		log,
	)

	log.Info("Use cases initialized")

	// 6. Background workers
	workers := worker.NewWorkerManager(worker.DefaultShutdownTimeout, log)
	workers.Register(session.NewJanitor(sessions, cfg.Session.SweepInterval, clock, log))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if err := workers.Start(workerCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 7. Initialize HTTP Server
	sessionHandler := handler.NewSessionHandler(sessions, log)
	server := httpDelivery.NewServer(cfg, log, sessionHandler)

	log.Info("HTTP server initialized")

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := workers.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}
	stopWorkers()

	// Прерываем ожидающие определения позиции
	sessions.Close()

	log.Info("Server stopped successfully")
}
