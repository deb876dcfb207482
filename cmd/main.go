package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Adapters
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/marketplace"
	natsAdapter "github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/messaging/nats"
	mongoRepo "github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/rest"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/mailer"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/usecase"

	// Platform
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const metricsNamespace = "car_listing"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Logger
	appLogger := logger.New(cfg.Logger())
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("database", cfg.MongoDatabase),
		zap.Bool("marketplace_enabled", cfg.MarketplaceEnabled()),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.Bool("smtp_enabled", cfg.SMTPEnabled()),
	)

	// 3. Tracing
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 4. MongoDB. The client connects lazily, so the service starts while the server is
	// down and each request reports the store as unavailable until it comes back.
	var repo domain.ListingRepository
	mongoClient, err := mongoRepo.NewMongoDBConnection(cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		appLogger.Error("MongoDB client could not be created", zap.Error(err))
	} else {
		defer func() {
			appLogger.Info("Disconnecting from MongoDB...")
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}()
		if err := mongoRepo.PingMongoDB(mongoClient, 5*time.Second); err != nil {
			appLogger.Warn("MongoDB not reachable yet", zap.Error(err))
		} else {
			appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		}
		repo = mongoRepo.NewListingRepository(mongoClient.Database(cfg.MongoDatabase), appLogger)
	}

	metricsManager := metrics.NewMetricsManager(metricsNamespace)
	opts := []usecase.Option{usecase.WithMetrics(metricsManager)}

	// 5. NATS events (optional)
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Warn("NATS unavailable, car events disabled", zap.Error(err))
		} else {
			defer natsPublisher.Close()
			opts = append(opts, usecase.WithEventPublisher(natsPublisher))
		}
	}

	// 6. Seller notifications (optional)
	if cfg.SMTPEnabled() {
		opts = append(opts, usecase.WithMailer(mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			SenderEmail: cfg.SMTPSenderEmail,
		}, appLogger)))
	}

	// 7. Usecase and HTTP surface
	publisher := marketplace.NewPlaceholderClient(marketplace.Config{
		APIKey: cfg.MarketplaceAPIKey,
		APIURL: cfg.MarketplaceAPIURL,
	}, appLogger)
	listingService := usecase.NewListingService(repo, publisher, appLogger, opts...)
	handler := rest.NewListingHandler(listingService, metricsManager, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           rest.NewRouter(handler, metricsManager, appLogger, cfg.HTTPRequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	listingService.Wait()
	appLogger.Info("Application shutting down...")
}
