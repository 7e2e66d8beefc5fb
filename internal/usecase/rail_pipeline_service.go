package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/clockz"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/domain/repository"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/metrics"
)

// ErrCanceled is returned when a transition or edit targets a canceled rail operation
var ErrCanceled = repository.ErrCanceled

// DefaultEventLimit caps the audit trail returned per rail operation
const DefaultEventLimit = 50

// TransitionRequest asks for one pipeline transition on one rail operation
type TransitionRequest struct {
	ID              int64
	ExpectedVersion int64
	Action          pipeline.Action
	ScheduledAt     *time.Time
	Target          entity.RailStatus
	Operator        string
}

// EditRequest overwrites milestones directly
type EditRequest struct {
	ID              int64
	ExpectedVersion int64
	Milestones      entity.Milestones
	Operator        string
}

// BulkRequest applies one action to every selected rail operation.
// With DryRun set every record is checked but nothing is written and the
// selection is kept.
type BulkRequest struct {
	Action      pipeline.Action
	ScheduledAt *time.Time
	Target      entity.RailStatus
	DryRun      bool
	Operator    string
}

// BulkFailure records one rail operation a bulk transition could not update
type BulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// BulkResult summarizes a bulk transition
type BulkResult struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failures  []BulkFailure `json:"failures"`
	DryRun    bool          `json:"dryRun"`
}

// RailList is one view of the rail pipeline with per-view counts
type RailList struct {
	View       pipeline.View          `json:"view"`
	Operations []entity.RailOperation `json:"operations"`
	Counts     map[pipeline.View]int  `json:"counts"`
}

// RailPipelineService applies transitions to stored rail operations
type RailPipelineService struct {
	railRepo  repository.RailOperationRepository
	eventRepo repository.TransitionEventRepository
	machine   *pipeline.Machine
	clock     clockz.Clock
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewRailPipelineService creates a new rail pipeline service
func NewRailPipelineService(
	railRepo repository.RailOperationRepository,
	eventRepo repository.TransitionEventRepository,
	machine *pipeline.Machine,
	clock clockz.Clock,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *RailPipelineService {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &RailPipelineService{
		railRepo:  railRepo,
		eventRepo: eventRepo,
		machine:   machine,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns the non-canceled rail operations under view
func (s *RailPipelineService) List(ctx context.Context, view pipeline.View) (*RailList, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &RailList{
		View:       view,
		Operations: pipeline.FilterByView(all, view),
		Counts:     pipeline.CountByView(all),
	}, nil
}

// Transition applies one action. ExpectedVersion must match the stored
// version, otherwise ErrVersionConflict is returned and nothing is written.
func (s *RailPipelineService) Transition(ctx context.Context, req TransitionRequest) (*entity.RailOperation, error) {
	start := time.Now()
	defer func() {
		s.metrics.ProcessingTime.WithLabelValues("transition").Observe(time.Since(start).Seconds())
	}()

	op, err := s.railRepo.FindByID(ctx, req.ID)
	if err != nil {
		s.recordTransition(req.Action, "not_found")
		return nil, fmt.Errorf("rail operation %d: %w", req.ID, err)
	}

	return s.apply(ctx, op, req, false)
}

// EditMilestones overwrites the given milestones and re-infers status.
// No ordering checks are made; this is the operator correction path.
func (s *RailPipelineService) EditMilestones(ctx context.Context, req EditRequest) (*entity.RailOperation, error) {
	op, err := s.railRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("rail operation %d: %w", req.ID, err)
	}
	if op.Canceled {
		return nil, fmt.Errorf("rail operation %d: %w", op.ID, ErrCanceled)
	}
	if op.Version != req.ExpectedVersion {
		return nil, fmt.Errorf("rail operation %d at version %d, got %d: %w",
			op.ID, op.Version, req.ExpectedVersion, repository.ErrVersionConflict)
	}

	next := pipeline.EditMilestones(*op, req.Milestones)
	if err := s.persist(ctx, op, &next); err != nil {
		return nil, err
	}

	s.audit(ctx, op, &next, "edit_milestones", req.Operator, false)
	s.logger.Info("Rail milestones edited",
		"id", next.ID,
		"status", next.Status,
		"version", next.Version,
		"operator", req.Operator)
	return &next, nil
}

// BulkTransition applies req to every id in sel, one at a time. Each
// record is checked against its own state at the moment it is processed,
// and a failure does not stop the rest. The selection is cleared afterwards
// unless req is a dry run.
func (s *RailPipelineService) BulkTransition(ctx context.Context, sel *pipeline.Selection, req BulkRequest) BulkResult {
	ids := sel.IDs()
	result := BulkResult{
		Requested: len(ids),
		Failures:  make([]BulkFailure, 0),
		DryRun:    req.DryRun,
	}

	s.logger.Info("Bulk transition started",
		"action", req.Action,
		"view", sel.View(),
		"count", len(ids),
		"dryRun", req.DryRun)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Error: err.Error()})
			s.recordBulk(req, "failed")
			continue
		}

		op, err := s.railRepo.FindByID(ctx, id)
		if err == nil {
			treq := TransitionRequest{
				ID:              id,
				ExpectedVersion: op.Version,
				Action:          req.Action,
				ScheduledAt:     req.ScheduledAt,
				Target:          req.Target,
				Operator:        req.Operator,
			}
			if req.DryRun {
				err = s.check(op, treq)
			} else {
				_, err = s.apply(ctx, op, treq, true)
			}
		}

		if err != nil {
			s.logger.Warn("Bulk transition skipped record",
				"id", id,
				"action", req.Action,
				"error", err)
			result.Failures = append(result.Failures, BulkFailure{ID: id, Error: err.Error()})
			s.recordBulk(req, "failed")
			continue
		}

		result.Succeeded++
		s.recordBulk(req, "succeeded")
	}

	if !req.DryRun {
		sel.Clear()
	}

	s.logger.Info("Bulk transition finished",
		"action", req.Action,
		"requested", result.Requested,
		"succeeded", result.Succeeded,
		"failed", len(result.Failures))
	return result
}

// Events returns the most recent audit events for a rail operation
func (s *RailPipelineService) Events(ctx context.Context, id int64) ([]*entity.TransitionEvent, error) {
	events, err := s.eventRepo.FindByRailOperationID(ctx, id, DefaultEventLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for rail operation %d: %w", id, err)
	}
	return events, nil
}

// RefreshMetrics publishes per-view counts as gauges
func (s *RailPipelineService) RefreshMetrics(ctx context.Context) error {
	all, err := s.loadAll(ctx)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("refresh_rail").Inc()
		return err
	}
	for view, n := range pipeline.CountByView(all) {
		s.metrics.RailByView.WithLabelValues(string(view)).Set(float64(n))
	}
	return nil
}

func (s *RailPipelineService) apply(ctx context.Context, op *entity.RailOperation, req TransitionRequest, bulk bool) (*entity.RailOperation, error) {
	if op.Canceled {
		s.recordTransition(req.Action, "canceled")
		return nil, fmt.Errorf("rail operation %d: %w", op.ID, ErrCanceled)
	}
	if op.Version != req.ExpectedVersion {
		s.recordTransition(req.Action, "conflict")
		return nil, fmt.Errorf("rail operation %d at version %d, got %d: %w",
			op.ID, op.Version, req.ExpectedVersion, repository.ErrVersionConflict)
	}

	next, err := s.machine.Apply(*op, pipeline.Command{
		Action:      req.Action,
		ScheduledAt: req.ScheduledAt,
		Target:      req.Target,
	}, s.clock.Now())
	if err != nil {
		s.recordTransition(req.Action, "rejected")
		return nil, err
	}

	if err := s.persist(ctx, op, &next); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.recordTransition(req.Action, "conflict")
		} else {
			s.recordTransition(req.Action, "error")
		}
		return nil, err
	}

	s.recordTransition(req.Action, "applied")
	s.audit(ctx, op, &next, string(req.Action), req.Operator, bulk)

	s.logger.Info("Rail transition applied",
		"id", next.ID,
		"action", req.Action,
		"from", op.Status,
		"to", next.Status,
		"version", next.Version)
	return &next, nil
}

// check runs the same preconditions as apply without writing anything
func (s *RailPipelineService) check(op *entity.RailOperation, req TransitionRequest) error {
	if op.Canceled {
		return fmt.Errorf("rail operation %d: %w", op.ID, ErrCanceled)
	}
	return s.machine.Check(*op, pipeline.Command{
		Action:      req.Action,
		ScheduledAt: req.ScheduledAt,
		Target:      req.Target,
	})
}

func (s *RailPipelineService) persist(ctx context.Context, prev, next *entity.RailOperation) error {
	next.Version = prev.Version + 1
	next.UpdatedAt = s.clock.Now()

	if err := s.railRepo.UpdatePipeline(ctx, next, prev.Version); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("update_rail").Inc()
		return fmt.Errorf("failed to update rail operation %d: %w", prev.ID, err)
	}
	return nil
}

// audit failures never undo a committed transition
func (s *RailPipelineService) audit(ctx context.Context, prev, next *entity.RailOperation, action, operator string, bulk bool) {
	event := &entity.TransitionEvent{
		RailOperationID: next.ID,
		Booking:         next.Booking,
		Action:          action,
		FromStatus:      prev.Status,
		ToStatus:        next.Status,
		Version:         next.Version,
		Operator:        operator,
		Bulk:            bulk,
		OccurredAt:      next.UpdatedAt,
	}
	if err := s.eventRepo.Save(ctx, event); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("audit").Inc()
		s.logger.Error("Failed to record transition event",
			"id", next.ID,
			"action", action,
			"error", err)
	}
}

func (s *RailPipelineService) recordTransition(action pipeline.Action, result string) {
	s.metrics.TransitionsTotal.WithLabelValues(string(action), result).Inc()
}

// dry runs are not counted
func (s *RailPipelineService) recordBulk(req BulkRequest, result string) {
	if req.DryRun {
		return
	}
	s.metrics.BulkRecordsTotal.WithLabelValues(string(req.Action), result).Inc()
}

func (s *RailPipelineService) loadAll(ctx context.Context) ([]entity.RailOperation, error) {
	ptrs, err := s.railRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load rail operations", "error", err)
		return nil, fmt.Errorf("failed to load rail operations: %w", err)
	}
	ops := make([]entity.RailOperation, 0, len(ptrs))
	for _, p := range ptrs {
		if p != nil {
			ops = append(ops, *p)
		}
	}
	return ops, nil
}
