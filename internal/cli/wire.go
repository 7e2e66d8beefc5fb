package cli

import (
	"context"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/clockz"

	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/infrastructure/config"
	"freight-tracking-service/internal/infrastructure/persistence"
	"freight-tracking-service/internal/interface/repository"
	"freight-tracking-service/internal/usecase"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/metrics"
	"freight-tracking-service/pkg/utils"
)

var (
	dashboardService *usecase.DashboardService
	railService      *usecase.RailPipelineService
	dateParser       *utils.DateParser
	once             sync.Once
)

// DashboardService returns the singleton dashboard service
func DashboardService() *usecase.DashboardService {
	once.Do(initServices)
	return dashboardService
}

// RailService returns the singleton rail pipeline service
func RailService() *usecase.RailPipelineService {
	once.Do(initServices)
	return railService
}

// DateParser returns the parser bound to the configured timezone
func DateParser() *utils.DateParser {
	once.Do(initServices)
	return dateParser
}

// initServices connects to both stores and builds the services.
// This is called once via sync.Once.
func initServices() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	gormDB, err := persistence.NewPostgresDB(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}

	eventRepo, err := repository.NewMongoTransitionEventRepository(ctx, persistence.GetDatabase(mongoClient, cfg.MongoDB))
	if err != nil {
		log.Fatalf("failed to prepare transition events: %v", err)
	}

	// CLI output is the report; keep service logs to warnings
	lg := logger.NewLogger("warn")
	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.NewRegistry())
	dateParser = utils.NewDateParser(cfg.Location)

	dashboardService = usecase.NewDashboardService(
		repository.NewGormOperationRepository(gormDB),
		usecase.NewOperationNormalizer(dateParser, lg),
		dateParser,
		delay.NewEngine(clockz.RealClock),
		m,
		lg,
		cfg.TopN,
	)
	railService = usecase.NewRailPipelineService(
		repository.NewGormRailOperationRepository(gormDB),
		eventRepo,
		pipeline.NewDefaultMachine(),
		clockz.RealClock,
		m,
		lg,
	)
}
