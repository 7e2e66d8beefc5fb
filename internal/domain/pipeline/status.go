// Package pipeline contains the rail operation state machine.
// Status is always inferred from milestones; transitions only write milestones.
package pipeline

import (
	"freight-tracking-service/internal/domain/entity"
)

// InferStatus derives the status from the populated milestones.
// Priority: delivery, dispatch, scheduled delivery, terminal entry, port arrival.
func InferStatus(m entity.Milestones) entity.RailStatus {
	switch {
	case m.Delivery != nil:
		return entity.RailStatusDelivered
	case m.DeliveryDispatched != nil:
		return entity.RailStatusAwaitingDelivery
	case m.DeliveryScheduled != nil:
		return entity.RailStatusScheduled
	case m.TerminalEntry != nil:
		return entity.RailStatusAtSupportTerminal
	case m.PortArrival != nil:
		return entity.RailStatusAtPort
	default:
		return entity.RailStatusAwaitingArrival
	}
}

// StoredStatus resolves the status of a record loaded from storage. Milestones
// win, except that legacy in_transit rows carry no dispatch milestone and keep
// their stored status until delivered.
func StoredStatus(stored string, m entity.Milestones) entity.RailStatus {
	inferred := InferStatus(m)
	if entity.RailStatus(stored) == entity.RailStatusInTransit && Rank(inferred) < Rank(entity.RailStatusInTransit) {
		return entity.RailStatusInTransit
	}
	return inferred
}

// Rank orders statuses along the pipeline. Statuses sharing the delivery-flow
// bucket after scheduling share a rank. Unknown statuses rank -1.
func Rank(s entity.RailStatus) int {
	switch s {
	case entity.RailStatusAwaitingArrival:
		return 0
	case entity.RailStatusAtPort:
		return 1
	case entity.RailStatusAtSupportTerminal:
		return 2
	case entity.RailStatusScheduled:
		return 3
	case entity.RailStatusInTransit, entity.RailStatusAwaitingDelivery:
		return 4
	case entity.RailStatusDelivered:
		return 5
	default:
		return -1
	}
}

// InDeliveryFlow reports whether s belongs to the delivery-flow bucket
func InDeliveryFlow(s entity.RailStatus) bool {
	switch s {
	case entity.RailStatusScheduled, entity.RailStatusInTransit, entity.RailStatusAwaitingDelivery:
		return true
	}
	return false
}

// Label returns the operator-facing name of a status
func Label(s entity.RailStatus) string {
	switch s {
	case entity.RailStatusAwaitingArrival:
		return "Awaiting arrival"
	case entity.RailStatusAtPort:
		return "At port"
	case entity.RailStatusAtSupportTerminal:
		return "At support terminal"
	case entity.RailStatusScheduled:
		return "Delivery scheduled"
	case entity.RailStatusInTransit:
		return "In transit"
	case entity.RailStatusAwaitingDelivery:
		return "Awaiting delivery"
	case entity.RailStatusDelivered:
		return "Delivered"
	default:
		return string(s)
	}
}

// ParseStatus validates a stored or user supplied status
func ParseStatus(s string) (entity.RailStatus, bool) {
	status := entity.RailStatus(s)
	return status, Rank(status) >= 0
}
