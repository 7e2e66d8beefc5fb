package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freight-tracking-service/internal/domain/analytics"
	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/repository"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/metrics"
	"freight-tracking-service/pkg/utils"
)

// Dashboard is the punctuality overview handed to presentation
type Dashboard struct {
	KPIs         analytics.KPIs          `json:"kpis"`
	LateByClient []analytics.ClientCount `json:"lateByClient"`
	DelayReasons []analytics.ReasonCount `json:"delayReasons"`
	Rows         []DashboardRow          `json:"rows"`
	GeneratedAt  time.Time               `json:"generatedAt"`
}

// DashboardRow is one operation ready for display
type DashboardRow struct {
	Booking        string       `json:"booking"`
	Container      string       `json:"container"`
	Client         string       `json:"client"`
	Status         delay.Status `json:"status"`
	DelayMinutes   int          `json:"delayMinutes"`
	Delay          string       `json:"delay"`
	StartsIn       string       `json:"startsIn,omitempty"`
	ScheduledStart string       `json:"scheduledStart"`
	ActualStart    string       `json:"actualStart"`
	ActualEnd      string       `json:"actualEnd"`
	DelayReason    string       `json:"delayReason"`
}

// DashboardService computes punctuality dashboards from stored operations
type DashboardService struct {
	operationRepo repository.OperationRepository
	normalizer    *OperationNormalizer
	parser        *utils.DateParser
	engine        *delay.Engine
	metrics       *metrics.Metrics
	logger        logger.Logger
	topN          int
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	operationRepo repository.OperationRepository,
	normalizer *OperationNormalizer,
	parser *utils.DateParser,
	engine *delay.Engine,
	metrics *metrics.Metrics,
	logger logger.Logger,
	topN int,
) *DashboardService {
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	return &DashboardService{
		operationRepo: operationRepo,
		normalizer:    normalizer,
		parser:        parser,
		engine:        engine,
		metrics:       metrics,
		logger:        logger,
		topN:          topN,
	}
}

// GetDashboard evaluates every stored operation and aggregates the rows matching filter
func (s *DashboardService) GetDashboard(ctx context.Context, filter analytics.Filter) (*Dashboard, error) {
	start := time.Now()
	defer func() {
		s.metrics.ProcessingTime.WithLabelValues("dashboard").Observe(time.Since(start).Seconds())
	}()

	now := s.engine.Now()
	rows, err := s.loadRows(ctx, strings.TrimSpace(filter.Booking), now)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("dashboard").Inc()
		return nil, err
	}

	filtered := filter.Apply(rows, now)

	dashboard := &Dashboard{
		KPIs:         analytics.BuildKPIs(filtered),
		LateByClient: analytics.GroupLateByClient(filtered, s.topN),
		DelayReasons: analytics.GroupDelayReasons(filtered, s.topN),
		Rows:         make([]DashboardRow, 0, len(filtered)),
		GeneratedAt:  now,
	}
	for _, r := range filtered {
		dashboard.Rows = append(dashboard.Rows, s.toRow(r, now))
	}

	s.logger.Debug("Dashboard computed",
		"operations", len(rows),
		"matching", len(filtered),
		"late", dashboard.KPIs.LateCount)

	return dashboard, nil
}

// RefreshMetrics publishes the unfiltered KPIs as gauges
func (s *DashboardService) RefreshMetrics(ctx context.Context) error {
	rows, err := s.loadRows(ctx, "", s.engine.Now())
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("refresh_kpis").Inc()
		return err
	}

	kpis := analytics.BuildKPIs(rows)
	s.metrics.OperationsByDelay.WithLabelValues(string(delay.StatusLate)).Set(float64(kpis.LateCount))
	s.metrics.OperationsByDelay.WithLabelValues(string(delay.StatusOnTime)).Set(float64(kpis.OnTimeCount))
	s.metrics.OperationsByDelay.WithLabelValues(string(delay.StatusPending)).Set(float64(kpis.PendingCount))
	s.metrics.PctLate.Set(kpis.PctLate)

	s.logger.Info("KPIs refreshed",
		"total", kpis.Total,
		"late", kpis.LateCount,
		"pctLate", kpis.PctLate)
	return nil
}

// loadRows reads one booking when booking is set, every operation otherwise
func (s *DashboardService) loadRows(ctx context.Context, booking string, now time.Time) ([]analytics.Row, error) {
	var raws []*entity.RawOperation
	var err error
	if booking != "" {
		raws, err = s.operationRepo.FindByBooking(ctx, booking)
	} else {
		raws, err = s.operationRepo.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("Failed to load operations", "error", err)
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}
	return analytics.Evaluate(s.normalizer.NormalizeAll(raws), now), nil
}

func (s *DashboardService) toRow(r analytics.Row, now time.Time) DashboardRow {
	op := r.Operation
	row := DashboardRow{
		Booking:        op.Booking,
		Container:      op.Container,
		Client:         op.Client,
		Status:         r.Result.Status,
		DelayMinutes:   r.Result.Minutes,
		Delay:          utils.FormatMinutes(r.Result.Minutes),
		ScheduledStart: s.parser.FormatDisplayPtr(op.EffectiveScheduled()),
		ActualStart:    s.parser.FormatDisplayPtr(op.ActualStart),
		ActualEnd:      s.parser.FormatDisplayPtr(op.ActualEnd),
		DelayReason:    op.DelayReason,
	}

	switch r.Result.Status {
	case delay.StatusPending:
		row.Delay = "-"
	case delay.StatusOnTime:
		if signed, ok := delay.SignedMinutes(op, now); ok && signed < 0 {
			row.StartsIn = utils.FormatMinutes(-signed)
		}
	}
	return row
}
