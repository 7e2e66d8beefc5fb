package repository

import (
	"context"
	"errors"
	"time"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRailOperationRepository implements the RailOperationRepository interface
type GormRailOperationRepository struct {
	db *gorm.DB
}

// NewGormRailOperationRepository creates a new GORM rail operation repository
func NewGormRailOperationRepository(db *gorm.DB) repository.RailOperationRepository {
	return &GormRailOperationRepository{
		db: db,
	}
}

// RailOperations GORM model for database mapping
type RailOperations struct {
	ID                 int64      `gorm:"primaryKey"`
	Booking            string     `gorm:"column:booking;index"`
	Container          string     `gorm:"column:container"`
	EmbarcadorNome     string     `gorm:"column:embarcador_nome"`
	Status             string     `gorm:"column:status"`
	PortArrivalAt      *time.Time `gorm:"column:port_arrival_at"`
	TerminalEntryAt    *time.Time `gorm:"column:terminal_entry_at"`
	DeliveryScheduleAt *time.Time `gorm:"column:delivery_scheduled_at"`
	DispatchedAt       *time.Time `gorm:"column:delivery_dispatched_at"`
	DeliveredAt        *time.Time `gorm:"column:delivered_at"`
	SituationFlag      string     `gorm:"column:situation_flag"`
	Version            int64      `gorm:"column:version;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the default table name
func (RailOperations) TableName() string {
	return "rail_operations"
}

// FindByID finds a rail operation by id
func (r *GormRailOperationRepository) FindByID(ctx context.Context, id int64) (*entity.RailOperation, error) {
	var row RailOperations
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&row)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	op := row.toEntity()
	return &op, nil
}

// FindAll returns every rail operation ordered by id
func (r *GormRailOperationRepository) FindAll(ctx context.Context) ([]*entity.RailOperation, error) {
	var rows []RailOperations
	result := r.db.WithContext(ctx).Order("id").Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.RailOperation, 0, len(rows))
	for _, row := range rows {
		op := row.toEntity()
		entities = append(entities, &op)
	}
	return entities, nil
}

// notCanceled matches rows without a cancellation marker in status or situation_flag
const notCanceled = "LOWER(COALESCE(status, '')) NOT LIKE '%cancel%' AND LOWER(COALESCE(situation_flag, '')) NOT LIKE '%cancel%'"

// UpdatePipeline writes status, milestones and version in one statement
// guarded by the expected version. Canceled rows are never written, so the
// status column keeps its cancellation marker.
func (r *GormRailOperationRepository) UpdatePipeline(ctx context.Context, op *entity.RailOperation, expectedVersion int64) error {
	// Updates with a map so cleared milestones are written as NULL
	result := r.db.WithContext(ctx).
		Model(&RailOperations{}).
		Where("id = ? AND version = ?", op.ID, expectedVersion).
		Where(notCanceled).
		Updates(map[string]interface{}{
			"status":                 string(op.Status),
			"port_arrival_at":        op.Milestones.PortArrival,
			"terminal_entry_at":      op.Milestones.TerminalEntry,
			"delivery_scheduled_at":  op.Milestones.DeliveryScheduled,
			"delivery_dispatched_at": op.Milestones.DeliveryDispatched,
			"delivered_at":           op.Milestones.Delivery,
			"version":                op.Version,
			"updated_at":             op.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var row RailOperations
	if err := r.db.WithContext(ctx).Select("id", "status", "situation_flag").Where("id = ?", op.ID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		return err
	}
	if entity.HasCancellationSignal(row.Status, row.SituationFlag) {
		return repository.ErrCanceled
	}
	return repository.ErrVersionConflict
}

// toEntity converts the GORM model to a domain entity
func (m RailOperations) toEntity() entity.RailOperation {
	milestones := entity.Milestones{
		PortArrival:        m.PortArrivalAt,
		TerminalEntry:      m.TerminalEntryAt,
		DeliveryScheduled:  m.DeliveryScheduleAt,
		DeliveryDispatched: m.DispatchedAt,
		Delivery:           m.DeliveredAt,
	}
	op := entity.RailOperation{
		ID:             m.ID,
		Booking:        m.Booking,
		Container:      m.Container,
		EmbarcadorNome: m.EmbarcadorNome,
		Status:         pipeline.StoredStatus(m.Status, milestones),
		Milestones:     milestones,
		Canceled:       entity.HasCancellationSignal(m.Status, m.SituationFlag),
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	return op
}
