package repository

import (
	"context"
	"fmt"
	"time"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransitionEventRepository implements the TransitionEventRepository interface
type MongoTransitionEventRepository struct {
	collection *mongo.Collection
}

// NewMongoTransitionEventRepository creates a new MongoDB transition event
// repository and makes sure its indexes exist
func NewMongoTransitionEventRepository(ctx context.Context, db *mongo.Database) (repository.TransitionEventRepository, error) {
	collection := db.Collection("rail_transition_events")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Audit trail per rail operation, newest first
	trailIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "railOperationId", Value: 1},
			{Key: "occurredAt", Value: -1},
		},
	}

	// Index on booking for lookups from the dashboard
	bookingIndex := mongo.IndexModel{
		Keys: bson.M{"booking": 1},
	}

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		trailIndex,
		bookingIndex,
	}); err != nil {
		return nil, fmt.Errorf("failed to create transition event indexes: %w", err)
	}

	return &MongoTransitionEventRepository{
		collection: collection,
	}, nil
}

// Save inserts one transition event
func (r *MongoTransitionEventRepository) Save(ctx context.Context, event *entity.TransitionEvent) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FindByRailOperationID returns the latest events of one rail operation
func (r *MongoTransitionEventRepository) FindByRailOperationID(ctx context.Context, railOperationID int64, limit int) ([]*entity.TransitionEvent, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"railOperationId": railOperationID}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "occurredAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.TransitionEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
