package pipeline

import (
	"errors"
	"fmt"
	"time"

	"freight-tracking-service/internal/domain/entity"
)

// ErrInvalidTransition is wrapped by every rejected transition
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnknownAction is returned when no handler accepts an action
var ErrUnknownAction = errors.New("unknown action")

// Action names a pipeline transition
type Action string

const (
	ActionConfirmPortArrival Action = "confirm_port_arrival"
	ActionMoveToTerminal     Action = "move_to_terminal"
	ActionScheduleDelivery   Action = "schedule_delivery"
	ActionMoveToDelivery     Action = "move_to_delivery"
	ActionFinalizeDelivery   Action = "finalize_delivery"
	ActionRevertStep         Action = "revert_step"
)

// Command is one requested transition.
// ScheduledAt is used by schedule_delivery, Target by revert_step.
type Command struct {
	Action      Action
	ScheduledAt *time.Time
	Target      entity.RailStatus
}

// Handler applies one kind of transition
type Handler interface {
	// CanHandle determines if this handler processes the given action
	CanHandle(action Action) bool

	// Check evaluates the transition preconditions
	Check(op entity.RailOperation, cmd Command) GuardResult

	// Mutate writes the milestones for the transition
	Mutate(m *entity.Milestones, cmd Command, now time.Time)
}

// Machine routes commands to registered handlers
type Machine struct {
	handlers []Handler
}

// NewMachine creates a machine with no handlers
func NewMachine() *Machine {
	return &Machine{handlers: make([]Handler, 0)}
}

// NewDefaultMachine creates a machine with every rail transition registered
func NewDefaultMachine() *Machine {
	m := NewMachine()
	m.Register(confirmPortArrival{})
	m.Register(moveToTerminal{})
	m.Register(scheduleDelivery{})
	m.Register(moveToDelivery{})
	m.Register(finalizeDelivery{})
	m.Register(revertStep{})
	return m
}

// Register registers a handler
func (m *Machine) Register(handler Handler) {
	m.handlers = append(m.handlers, handler)
}

// GetHandler returns the first handler accepting the action
func (m *Machine) GetHandler(action Action) Handler {
	for _, handler := range m.handlers {
		if handler.CanHandle(action) {
			return handler
		}
	}
	return nil
}

// Check evaluates whether cmd may be applied to op without changing anything
func (m *Machine) Check(op entity.RailOperation, cmd Command) error {
	handler := m.GetHandler(cmd.Action)
	if handler == nil {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return handler.Check(op, cmd).Error()
}

// Apply returns op after the transition. Status is re-inferred from the
// resulting milestones; op itself is not modified.
func (m *Machine) Apply(op entity.RailOperation, cmd Command, now time.Time) (entity.RailOperation, error) {
	handler := m.GetHandler(cmd.Action)
	if handler == nil {
		return op, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	if err := handler.Check(op, cmd).Error(); err != nil {
		return op, err
	}

	next := op
	handler.Mutate(&next.Milestones, cmd, now)
	next.Status = InferStatus(next.Milestones)
	return next, nil
}

// EditMilestones is the manual edit path: every non-nil field in edit
// overwrites the stored milestone, then status is re-inferred.
func EditMilestones(op entity.RailOperation, edit entity.Milestones) entity.RailOperation {
	next := op
	if edit.PortArrival != nil {
		next.Milestones.PortArrival = edit.PortArrival
	}
	if edit.TerminalEntry != nil {
		next.Milestones.TerminalEntry = edit.TerminalEntry
	}
	if edit.DeliveryScheduled != nil {
		next.Milestones.DeliveryScheduled = edit.DeliveryScheduled
	}
	if edit.DeliveryDispatched != nil {
		next.Milestones.DeliveryDispatched = edit.DeliveryDispatched
	}
	if edit.Delivery != nil {
		next.Milestones.Delivery = edit.Delivery
	}
	next.Status = InferStatus(next.Milestones)
	return next
}

func stamp(t time.Time) *time.Time {
	return &t
}

type confirmPortArrival struct{}

func (confirmPortArrival) CanHandle(a Action) bool { return a == ActionConfirmPortArrival }

func (confirmPortArrival) Check(op entity.RailOperation, _ Command) GuardResult {
	return CanConfirmPortArrival(op)
}

func (confirmPortArrival) Mutate(m *entity.Milestones, _ Command, now time.Time) {
	m.PortArrival = stamp(now)
}

type moveToTerminal struct{}

func (moveToTerminal) CanHandle(a Action) bool { return a == ActionMoveToTerminal }

func (moveToTerminal) Check(op entity.RailOperation, _ Command) GuardResult {
	return CanMoveToTerminal(op)
}

func (moveToTerminal) Mutate(m *entity.Milestones, _ Command, now time.Time) {
	m.TerminalEntry = stamp(now)
}

type scheduleDelivery struct{}

func (scheduleDelivery) CanHandle(a Action) bool { return a == ActionScheduleDelivery }

func (scheduleDelivery) Check(op entity.RailOperation, cmd Command) GuardResult {
	return CanScheduleDelivery(op, cmd)
}

// Mutate uses the operator-supplied date, not the clock
func (scheduleDelivery) Mutate(m *entity.Milestones, cmd Command, _ time.Time) {
	m.DeliveryScheduled = stamp(*cmd.ScheduledAt)
}

type moveToDelivery struct{}

func (moveToDelivery) CanHandle(a Action) bool { return a == ActionMoveToDelivery }

func (moveToDelivery) Check(op entity.RailOperation, _ Command) GuardResult {
	return CanMoveToDelivery(op)
}

func (moveToDelivery) Mutate(m *entity.Milestones, _ Command, now time.Time) {
	if m.DeliveryScheduled == nil {
		m.DeliveryScheduled = stamp(now)
	}
	m.DeliveryDispatched = stamp(now)
}

type finalizeDelivery struct{}

func (finalizeDelivery) CanHandle(a Action) bool { return a == ActionFinalizeDelivery }

func (finalizeDelivery) Check(op entity.RailOperation, _ Command) GuardResult {
	return CanFinalizeDelivery(op)
}

func (finalizeDelivery) Mutate(m *entity.Milestones, _ Command, now time.Time) {
	m.Delivery = stamp(now)
}

type revertStep struct{}

func (revertStep) CanHandle(a Action) bool { return a == ActionRevertStep }

func (revertStep) Check(op entity.RailOperation, cmd Command) GuardResult {
	return CanRevert(op, cmd.Target)
}

// Mutate clears every milestone recorded after the target step
func (revertStep) Mutate(m *entity.Milestones, cmd Command, _ time.Time) {
	rank := Rank(cmd.Target)
	if rank < Rank(entity.RailStatusDelivered) {
		m.Delivery = nil
	}
	if rank < Rank(entity.RailStatusAwaitingDelivery) {
		m.DeliveryDispatched = nil
	}
	if rank < Rank(entity.RailStatusScheduled) {
		m.DeliveryScheduled = nil
	}
	if rank < Rank(entity.RailStatusAtSupportTerminal) {
		m.TerminalEntry = nil
	}
	if rank < Rank(entity.RailStatusAtPort) {
		m.PortArrival = nil
	}
}
