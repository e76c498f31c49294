package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SparshM8/Farm-Technology/config"
	"github.com/SparshM8/Farm-Technology/internal/chatbot"
	"github.com/SparshM8/Farm-Technology/internal/clients"
	"github.com/SparshM8/Farm-Technology/internal/delivery"
	grpcHandler "github.com/SparshM8/Farm-Technology/internal/delivery/grpc"
	"github.com/SparshM8/Farm-Technology/internal/middleware"
	"github.com/SparshM8/Farm-Technology/internal/pricing"
	"github.com/SparshM8/Farm-Technology/internal/ratelimit"
	"github.com/SparshM8/Farm-Technology/internal/realtime"
	"github.com/SparshM8/Farm-Technology/internal/repository"
	"github.com/SparshM8/Farm-Technology/internal/usecase"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	if logLevel < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting Farm storefront...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Infof("Database connection established (%s).", cfg.DBDriver)

	if err := db.Migrate(ctx, database, logger); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	// --- Fan-out ---
	var sinks []realtime.Sink
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := clients.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Fatalf("Failed to create Kafka sink: %v", err)
		}
		sinks = append(sinks, sink)
	}
	hub := realtime.NewHub(realtime.DefaultBufferSize, logger, sinks...)

	mailer, err := clients.NewAdminNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to configure admin mailer: %v", err)
	}

	// --- Dependency Injection ---
	productRepo := repository.NewProductRepository(database, logger)
	orderRepo := repository.NewOrderRepository(database, logger)
	contactRepo := repository.NewContactRepository(database, logger)
	newsRepo := repository.NewNewsRepository(database, logger)
	logger.Info("Repositories initialized.")

	pricingOpts := pricing.Options{Strict: cfg.StrictPricing, CurrencySymbol: cfg.CurrencySymbol}
	checkoutUseCase := usecase.NewCheckoutUseCase(productRepo, orderRepo, hub, mailer, pricingOpts, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, hub, mailer, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, hub, logger)
	importUseCase := usecase.NewImportUseCase(productRepo, hub, usecase.ImportConfig{
		ManifestPath:   cfg.ProductsManifest,
		USDRate:        decimal.NewFromFloat(cfg.USDConversionRate),
		CurrencySymbol: cfg.CurrencySymbol,
	}, logger)
	newsUseCase := usecase.NewNewsUseCase(newsRepo, hub, logger)
	contactUseCase := usecase.NewContactUseCase(contactRepo, hub, logger)
	authUseCase, err := usecase.NewAdminAuthUseCase(cfg.AdminPasswordHash, cfg.AdminPassword, logger)
	if err != nil {
		logger.Fatalf("Failed to configure admin authentication: %v", err)
	}
	logger.Info("Use cases initialized.")

	if err := importUseCase.SeedIfEmpty(ctx); err != nil {
		logger.Errorf("Failed to seed products from %s: %v", cfg.ProductsManifest, err)
	}
	if cfg.NewsManifest != "" {
		if _, err := newsUseCase.SeedFromFile(ctx, cfg.NewsManifest); err != nil {
			logger.Errorf("Failed to seed news from %s: %v", cfg.NewsManifest, err)
		}
	}

	checkoutLimiter, loginLimiter := newLimiters(ctx, cfg, logger)

	// --- HTTP ---
	router := delivery.NewRouter(delivery.RouterConfig{
		APIPrefix:     cfg.APIPrefix,
		SessionSecret: cfg.SessionSecret,
		StaticDir:     cfg.StaticDir,
	}, logger)
	router.Register(
		delivery.NewCheckoutHandler(checkoutUseCase, middleware.RateLimit(checkoutLimiter, "checkout", logger), logger),
		delivery.NewOrderHandler(orderUseCase, logger),
		delivery.NewProductHandler(productUseCase, logger),
		delivery.NewAdminHandler(authUseCase, importUseCase, middleware.RateLimit(loginLimiter, "login", logger), logger),
		delivery.NewContactHandler(contactUseCase, logger),
		delivery.NewNewsHandler(newsUseCase, logger),
	)
	realtime.NewHandler(hub, productUseCase, newsUseCase, chatbot.New(logger), cfg.WSOriginPatterns, logger).RegisterRoutes(router.Engine)
	delivery.NewHealthHandler(database, logger).RegisterRoutes(router.Engine)
	logger.Info("Routes registered.")

	httpServer := &http.Server{
		Addr:              cfg.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting HTTP server on %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server on %s: %v", cfg.Port, err)
		}
	}()

	// --- gRPC health ---
	var grpcServer *grpc.Server
	if cfg.GrpcPort != "" {
		healthServer := health.NewServer()
		grpcServer = grpcHandler.NewServer(healthServer, logger)
		go grpcHandler.NewHealthReporter(healthServer, database, logger).Run(ctx, 15*time.Second)

		lis, err := net.Listen("tcp", cfg.GrpcPort)
		if err != nil {
			logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
		}
		go func() {
			logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Errorf("Failed to serve gRPC: %v", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("gRPC server gracefully stopped.")
	}
	hub.Close()
	logger.Info("Farm storefront shut down gracefully.")
}

// newLimiters shares counters through redis when REDIS_ADDR is set and
// falls back to in-process windows otherwise.
func newLimiters(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (checkout, login ratelimit.Limiter) {
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, logger)
		if err == nil {
			return ratelimit.NewRedis(client, "checkout", cfg.CheckoutRateLimit, cfg.RateLimitWindow),
				ratelimit.NewRedis(client, "login", cfg.LoginRateLimit, cfg.RateLimitWindow)
		}
		logger.Errorf("Falling back to in-memory rate limiting: %v", err)
	}
	return ratelimit.NewMemory(cfg.CheckoutRateLimit, cfg.RateLimitWindow),
		ratelimit.NewMemory(cfg.LoginRateLimit, cfg.RateLimitWindow)
}
