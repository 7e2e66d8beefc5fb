package repository

import (
	"context"

	"freight-tracking-service/internal/domain/entity"
)

// OperationRepository defines the interface for reading freight operations
type OperationRepository interface {
	FindAll(ctx context.Context) ([]*entity.RawOperation, error)
	FindByBooking(ctx context.Context, booking string) ([]*entity.RawOperation, error)
}
