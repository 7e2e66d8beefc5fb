package repository

import (
	"context"

	"freight-tracking-service/internal/domain/entity"
)

// RailOperationRepository defines the interface for rail operation storage
type RailOperationRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.RailOperation, error)
	FindAll(ctx context.Context) ([]*entity.RailOperation, error)

	// UpdatePipeline writes status, milestones and version in one statement.
	// It returns ErrVersionConflict when the stored version is not expectedVersion.
	UpdatePipeline(ctx context.Context, op *entity.RailOperation, expectedVersion int64) error
}
