package repository

import (
	"context"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormOperationRepository implements the OperationRepository interface
type GormOperationRepository struct {
	db *gorm.DB
}

// NewGormOperationRepository creates a new GORM operation repository
func NewGormOperationRepository(db *gorm.DB) repository.OperationRepository {
	return &GormOperationRepository{
		db: db,
	}
}

// Operations GORM model for database mapping.
// Dates are stored as entered by the import, so they stay text here.
type Operations struct {
	ID                         uint    `gorm:"primaryKey"`
	Booking                    string  `gorm:"column:booking;index"`
	Container                  string  `gorm:"column:container"`
	Client                     string  `gorm:"column:client"`
	ScheduledStart             *string `gorm:"column:scheduled_start"`
	RecalculatedScheduledStart *string `gorm:"column:recalculated_scheduled_start"`
	ActualStart                *string `gorm:"column:actual_start"`
	ActualEnd                  *string `gorm:"column:actual_end"`
	DelayReason                *string `gorm:"column:delay_reason"`
	OperationStatus            string  `gorm:"column:operation_status"`
	SituationFlag              string  `gorm:"column:situation_flag"`
}

// TableName overrides the default table name
func (Operations) TableName() string {
	return "operations"
}

// FindAll returns every operation ordered by id
func (r *GormOperationRepository) FindAll(ctx context.Context) ([]*entity.RawOperation, error) {
	var rows []Operations
	result := r.db.WithContext(ctx).Order("id").Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	return toRawOperations(rows), nil
}

// FindByBooking returns the operations of one booking
func (r *GormOperationRepository) FindByBooking(ctx context.Context, booking string) ([]*entity.RawOperation, error) {
	var rows []Operations
	result := r.db.WithContext(ctx).
		Where("booking = ?", booking).
		Order("id").
		Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	return toRawOperations(rows), nil
}

func toRawOperations(rows []Operations) []*entity.RawOperation {
	entities := make([]*entity.RawOperation, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, &entity.RawOperation{
			ID:                         row.ID,
			Booking:                    row.Booking,
			Container:                  row.Container,
			Client:                     row.Client,
			ScheduledStart:             row.ScheduledStart,
			RecalculatedScheduledStart: row.RecalculatedScheduledStart,
			ActualStart:                row.ActualStart,
			ActualEnd:                  row.ActualEnd,
			DelayReason:                row.DelayReason,
			OperationStatus:            row.OperationStatus,
			SituationFlag:              row.SituationFlag,
		})
	}
	return entities
}
