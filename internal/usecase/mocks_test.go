package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/repository"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/metrics"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockOperationRepository struct {
	ops            []*entity.RawOperation
	findErr        error
	bookingQueries []string
}

func (m *mockOperationRepository) FindAll(ctx context.Context) ([]*entity.RawOperation, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.ops, nil
}

func (m *mockOperationRepository) FindByBooking(ctx context.Context, booking string) ([]*entity.RawOperation, error) {
	m.bookingQueries = append(m.bookingQueries, booking)
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*entity.RawOperation
	for _, op := range m.ops {
		if op.Booking == booking {
			out = append(out, op)
		}
	}
	return out, nil
}

// mockRailRepository stores copies so callers never alias stored records.
type mockRailRepository struct {
	ops       map[int64]entity.RailOperation
	updateErr error
	updates   int
}

func newMockRailRepository(ops ...entity.RailOperation) *mockRailRepository {
	m := &mockRailRepository{ops: make(map[int64]entity.RailOperation)}
	for _, op := range ops {
		m.ops[op.ID] = op
	}
	return m
}

func (m *mockRailRepository) FindByID(ctx context.Context, id int64) (*entity.RailOperation, error) {
	op, ok := m.ops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &op, nil
}

func (m *mockRailRepository) FindAll(ctx context.Context) ([]*entity.RailOperation, error) {
	ids := make([]int64, 0, len(m.ops))
	for id := range m.ops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*entity.RailOperation, 0, len(ids))
	for _, id := range ids {
		op := m.ops[id]
		out = append(out, &op)
	}
	return out, nil
}

func (m *mockRailRepository) UpdatePipeline(ctx context.Context, op *entity.RailOperation, expectedVersion int64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.ops[op.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Canceled {
		return repository.ErrCanceled
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	m.ops[op.ID] = *op
	m.updates++
	return nil
}

type mockEventRepository struct {
	events  []*entity.TransitionEvent
	saveErr error
}

func (m *mockEventRepository) Save(ctx context.Context, event *entity.TransitionEvent) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepository) FindByRailOperationID(ctx context.Context, id int64, limit int) ([]*entity.TransitionEvent, error) {
	var out []*entity.TransitionEvent
	for _, e := range m.events {
		if e.RailOperationID == id {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var errStorage = errors.New("storage unavailable")

// ============================================================================
// Test Helpers
// ============================================================================

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestLogger() logger.Logger {
	return logger.NewNopLogger()
}

func strPtr(s string) *string {
	return &s
}
