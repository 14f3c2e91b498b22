package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/internal/repository"
	"github.com/sakashimaa/product-catalog/internal/service"
	"github.com/sakashimaa/product-catalog/internal/transport/http"
	"github.com/sakashimaa/product-catalog/internal/transport/http/handler"
	"github.com/sakashimaa/product-catalog/pkg/config"
	"github.com/sakashimaa/product-catalog/pkg/db"
	"github.com/sakashimaa/product-catalog/pkg/kafka"
	limiterStorage "github.com/sakashimaa/product-catalog/pkg/limiter"
	"github.com/sakashimaa/product-catalog/pkg/metrics"
	outbox "github.com/sakashimaa/product-catalog/pkg/outbox/repository"
	"github.com/sakashimaa/product-catalog/pkg/outbox/worker"
	"github.com/sakashimaa/product-catalog/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tp, err := utils.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Env, cfg.Tracing.Enabled)
	if err != nil {
		logger.Fatal("Error init tracer", zap.Error(err))
	}

	if err := db.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.URL); err != nil {
		logger.Fatal("Error running migrations", zap.Error(err))
	}

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("Error creating new postgres DB", zap.Error(err))
	}

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Fatal("error creating kafka producer", zap.Error(err))
	}

	productRepository := repository.NewProductRepository(pool, logger)
	outboxRepository := outbox.NewOutboxRepository()
	productService := service.NewProductService(productRepository, outboxRepository, pool, logger)

	breaker := utils.NewBreaker(utils.BreakerSettings{
		Name:         "ProductStore",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
		Ignored:      []error{repository.ErrProductNotFound, domain.ErrInvalidRequest},
		Logger:       logger,
	})

	handlers := &http.Handlers{
		Product: handler.NewProductHandler(productService, breaker, logger, cfg.HTTP.Timeout),
		Health:  handler.NewHealthHandler(pool, logger),
	}

	outboxProcessor := worker.NewOutboxProcessor(
		pool,
		outboxRepository,
		kafkaProducer,
		logger,
		cfg.Outbox.BatchSize,
		cfg.Outbox.Interval,
	)

	var (
		appMetrics      *metrics.Metrics
		shutdownMetrics func(ctx context.Context) error
	)
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New("product_catalog")
		outboxProcessor.WithRecorder(appMetrics)
		shutdownMetrics = appMetrics.Serve(cfg.Metrics.Port, logger)
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		outboxProcessor.Start(workerCtx)
	}()

	limiterCfg := limiter.Config{
		Max:          cfg.Limiter.Max,
		Expiration:   cfg.Limiter.Expiration,
		KeyGenerator: limiterStorage.KeyGenerator("product-catalog:limiter:"),
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}

	if cfg.Redis.Enabled {
		storage, err := limiterStorage.NewRedisStorage(ctx, cfg.Redis.Addr, cfg.Redis.PoolSize)
		if err != nil {
			logger.Warn("redis unavailable, limiter falls back to memory", zap.Error(err))
		} else {
			limiterCfg.Storage = storage
		}
	}

	app := fiber.New(fiber.Config{
		JSONDecoder: utils.DecodeJSON,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(otelfiber.Middleware())
	if appMetrics != nil {
		app.Use(appMetrics.Middleware())
	}
	app.Use(limiter.New(limiterCfg))

	http.RegisterRoutes(app, handlers)

	logger.Info("product catalog started", zap.String("env", cfg.Env))

	go func() {
		logger.Info("HTTP service listening", zap.String("port", cfg.HTTP.Port))
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Error("Error listening HTTP", zap.String("port", cfg.HTTP.Port), zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	} else {
		logger.Info("Stopped HTTP server successfully")
	}

	stopWorker()
	<-workerDone

	if shutdownMetrics != nil {
		if err := shutdownMetrics(shutdownCtx); err != nil {
			logger.Error("Error shutting down metrics server", zap.Error(err))
		}
	}

	if err := kafkaProducer.Close(); err != nil {
		logger.Error("Error closing kafka producer", zap.Error(err))
	}

	if limiterCfg.Storage != nil {
		if err := limiterCfg.Storage.Close(); err != nil {
			logger.Error("Error closing limiter storage", zap.Error(err))
		}
	}

	pool.Close()
	logger.Info("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error stopping telemetry", zap.Error(err))
	} else {
		logger.Info("Telemetry closed correctly")
	}
}
