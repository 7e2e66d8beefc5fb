package entity

import (
	"time"
)

// TransitionEvent records one applied rail pipeline transition
type TransitionEvent struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	RailOperationID int64      `bson:"railOperationId" json:"railOperationId"`
	Booking         string     `bson:"booking" json:"booking"`
	Action          string     `bson:"action" json:"action"`
	FromStatus      RailStatus `bson:"fromStatus" json:"fromStatus"`
	ToStatus        RailStatus `bson:"toStatus" json:"toStatus"`
	Version         int64      `bson:"version" json:"version"`
	Operator        string     `bson:"operator,omitempty" json:"operator,omitempty"`
	Bulk            bool       `bson:"bulk" json:"bulk"`
	OccurredAt      time.Time  `bson:"occurredAt" json:"occurredAt"`
}
