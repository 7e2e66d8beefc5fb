package repository

import (
	"context"

	"freight-tracking-service/internal/domain/entity"
)

// TransitionEventRepository defines the interface for the rail transition audit trail
type TransitionEventRepository interface {
	Save(ctx context.Context, event *entity.TransitionEvent) error
	FindByRailOperationID(ctx context.Context, railOperationID int64, limit int) ([]*entity.TransitionEvent, error)
}
