package pipeline

import (
	"fmt"
	"strings"

	"freight-tracking-service/internal/domain/entity"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error wrapping ErrInvalidTransition.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransition, r.Reason)
}

func allowed() GuardResult {
	return GuardResult{Allowed: true}
}

// requireStatus allows the transition only from one of the given statuses
func requireStatus(op entity.RailOperation, action Action, from ...entity.RailStatus) GuardResult {
	for _, s := range from {
		if op.Status == s {
			return allowed()
		}
	}

	names := make([]string, len(from))
	for i, s := range from {
		names[i] = string(s)
	}
	return GuardResult{
		Allowed: false,
		Reason: fmt.Sprintf("%s requires status %s (rail operation %d is %s)",
			action, strings.Join(names, " or "), op.ID, op.Status),
	}
}

// CanConfirmPortArrival rules:
// - Status must be awaiting_arrival
func CanConfirmPortArrival(op entity.RailOperation) GuardResult {
	return requireStatus(op, ActionConfirmPortArrival, entity.RailStatusAwaitingArrival)
}

// CanMoveToTerminal rules:
// - Status must be at_port
func CanMoveToTerminal(op entity.RailOperation) GuardResult {
	return requireStatus(op, ActionMoveToTerminal, entity.RailStatusAtPort)
}

// CanScheduleDelivery rules:
// - Status must be at_port or at_support_terminal (terminal stage may be skipped)
// - A delivery date must be supplied
func CanScheduleDelivery(op entity.RailOperation, cmd Command) GuardResult {
	if r := requireStatus(op, ActionScheduleDelivery, entity.RailStatusAtPort, entity.RailStatusAtSupportTerminal); !r.Allowed {
		return r
	}
	if cmd.ScheduledAt == nil || cmd.ScheduledAt.IsZero() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s requires a delivery date", ActionScheduleDelivery),
		}
	}
	return allowed()
}

// CanMoveToDelivery rules:
// - Status must be at_support_terminal or scheduled
func CanMoveToDelivery(op entity.RailOperation) GuardResult {
	return requireStatus(op, ActionMoveToDelivery, entity.RailStatusAtSupportTerminal, entity.RailStatusScheduled)
}

// CanFinalizeDelivery rules:
// - Status must be in the delivery-flow bucket (scheduled, in_transit, awaiting_delivery)
func CanFinalizeDelivery(op entity.RailOperation) GuardResult {
	return requireStatus(op, ActionFinalizeDelivery,
		entity.RailStatusScheduled, entity.RailStatusInTransit, entity.RailStatusAwaitingDelivery)
}

// CanRevert rules:
// - Target must be a known status
// - Target must be strictly earlier than the current status
// - The milestone that defines the target must already be recorded
func CanRevert(op entity.RailOperation, target entity.RailStatus) GuardResult {
	targetRank := Rank(target)
	if targetRank < 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown target status %q", target),
		}
	}

	if targetRank >= Rank(op.Status) {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("cannot revert rail operation %d from %s to %s: target is not an earlier step",
				op.ID, op.Status, target),
		}
	}

	if !hasMilestoneFor(op.Milestones, target) {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("cannot revert rail operation %d to %s: step was never recorded",
				op.ID, target),
		}
	}

	return allowed()
}

func hasMilestoneFor(m entity.Milestones, s entity.RailStatus) bool {
	switch s {
	case entity.RailStatusAwaitingArrival:
		return true
	case entity.RailStatusAtPort:
		return m.PortArrival != nil
	case entity.RailStatusAtSupportTerminal:
		return m.TerminalEntry != nil
	case entity.RailStatusScheduled:
		return m.DeliveryScheduled != nil
	case entity.RailStatusInTransit, entity.RailStatusAwaitingDelivery:
		return m.DeliveryDispatched != nil
	default:
		return false
	}
}
