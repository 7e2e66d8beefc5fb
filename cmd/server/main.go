package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/infrastructure/config"
	"freight-tracking-service/internal/infrastructure/persistence"
	"freight-tracking-service/internal/interface/httpapi"
	"freight-tracking-service/internal/interface/repository"
	"freight-tracking-service/internal/usecase"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/metrics"
	"freight-tracking-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zoobzio/clockz"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Freight Tracking Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up repositories
	operationRepo := repository.NewGormOperationRepository(gormDB)
	railRepo := repository.NewGormRailOperationRepository(gormDB)
	eventRepo, err := repository.NewMongoTransitionEventRepository(ctx, db)
	if err != nil {
		log.Fatal("Failed to prepare transition events", "error", err)
	}

	// Set up services
	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	parser := utils.NewDateParser(cfg.Location)
	clock := clockz.RealClock

	dashboardService := usecase.NewDashboardService(
		operationRepo,
		usecase.NewOperationNormalizer(parser, log),
		parser,
		delay.NewEngine(clock),
		m,
		log,
		cfg.TopN,
	)
	railService := usecase.NewRailPipelineService(
		railRepo,
		eventRepo,
		pipeline.NewDefaultMachine(),
		clock,
		m,
		log,
	)

	// Start KPI refresh in a goroutine
	go func() {
		refreshTicker := time.NewTicker(cfg.KPIRefreshInterval)
		defer refreshTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("KPI refresh stopped")
				return
			case <-refreshTicker.C:
				if err := dashboardService.RefreshMetrics(ctx); err != nil {
					log.Error("Error refreshing KPIs", "error", err)
				}
				if err := railService.RefreshMetrics(ctx); err != nil {
					log.Error("Error refreshing rail counts", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server
	mux := http.NewServeMux()
	httpapi.NewHandler(dashboardService, railService, parser, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Freight Tracking Service stopped")
}
