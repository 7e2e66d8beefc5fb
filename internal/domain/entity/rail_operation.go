package entity

import (
	"time"
)

// RailStatus is the lifecycle stage of a rail operation
type RailStatus string

// Rail operation statuses
const (
	RailStatusAwaitingArrival   RailStatus = "awaiting_arrival"
	RailStatusAtPort            RailStatus = "at_port"
	RailStatusAtSupportTerminal RailStatus = "at_support_terminal"
	RailStatusScheduled         RailStatus = "scheduled"
	RailStatusInTransit         RailStatus = "in_transit" // legacy, only read from stored data
	RailStatusAwaitingDelivery  RailStatus = "awaiting_delivery"
	RailStatusDelivered         RailStatus = "delivered"
)

// Milestones holds the timestamps that drive a rail operation's status
type Milestones struct {
	PortArrival        *time.Time `json:"portArrival"`
	TerminalEntry      *time.Time `json:"terminalEntry"`
	DeliveryScheduled  *time.Time `json:"deliveryScheduled"`
	DeliveryDispatched *time.Time `json:"deliveryDispatched"`
	Delivery           *time.Time `json:"delivery"`
}

// RailOperation represents a shipment moving through the rail pipeline
type RailOperation struct {
	ID             int64      `json:"id"`
	Booking        string     `json:"booking"`
	Container      string     `json:"container"`
	EmbarcadorNome string     `json:"embarcadorNome"`
	Status         RailStatus `json:"status"`
	Milestones     Milestones `json:"milestones"`
	Canceled       bool       `json:"canceled"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
