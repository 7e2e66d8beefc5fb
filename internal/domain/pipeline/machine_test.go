package pipeline

import (
	"errors"
	"testing"
	"time"

	"freight-tracking-service/internal/domain/entity"
)

var base = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestInferStatus(t *testing.T) {
	tests := []struct {
		name string
		m    entity.Milestones
		want entity.RailStatus
	}{
		{"no milestones", entity.Milestones{}, entity.RailStatusAwaitingArrival},
		{"port arrival", entity.Milestones{PortArrival: ptr(base)}, entity.RailStatusAtPort},
		{"terminal entry", entity.Milestones{PortArrival: ptr(base), TerminalEntry: ptr(base)}, entity.RailStatusAtSupportTerminal},
		{"terminal entry alone", entity.Milestones{TerminalEntry: ptr(base)}, entity.RailStatusAtSupportTerminal},
		{"delivery scheduled", entity.Milestones{TerminalEntry: ptr(base), DeliveryScheduled: ptr(base)}, entity.RailStatusScheduled},
		{"dispatched", entity.Milestones{DeliveryScheduled: ptr(base), DeliveryDispatched: ptr(base)}, entity.RailStatusAwaitingDelivery},
		{"delivery wins over everything", entity.Milestones{PortArrival: ptr(base), Delivery: ptr(base)}, entity.RailStatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferStatus(tt.m); got != tt.want {
				t.Errorf("InferStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMachine_ForwardPath(t *testing.T) {
	m := NewDefaultMachine()
	op := entity.RailOperation{ID: 1, Status: entity.RailStatusAwaitingArrival}

	steps := []struct {
		action Action
		want   entity.RailStatus
	}{
		{ActionConfirmPortArrival, entity.RailStatusAtPort},
		{ActionMoveToTerminal, entity.RailStatusAtSupportTerminal},
		{ActionMoveToDelivery, entity.RailStatusAwaitingDelivery},
		{ActionFinalizeDelivery, entity.RailStatusDelivered},
	}

	now := base
	for _, step := range steps {
		var err error
		op, err = m.Apply(op, Command{Action: step.action}, now)
		if err != nil {
			t.Fatalf("Apply(%s) error = %v", step.action, err)
		}
		if op.Status != step.want {
			t.Fatalf("after %s status = %q, want %q", step.action, op.Status, step.want)
		}
		now = now.Add(time.Hour)
	}

	ms := op.Milestones
	chain := []*time.Time{ms.PortArrival, ms.TerminalEntry, ms.DeliveryScheduled, ms.Delivery}
	for i, ts := range chain {
		if ts == nil {
			t.Fatalf("milestone %d is nil", i)
		}
		if i > 0 && ts.Before(*chain[i-1]) {
			t.Errorf("milestone %d (%v) before milestone %d (%v)", i, ts, i-1, chain[i-1])
		}
	}
}

func TestMachine_ScheduleDelivery(t *testing.T) {
	m := NewDefaultMachine()
	when := base.Add(48 * time.Hour)

	t.Run("from port skipping the terminal", func(t *testing.T) {
		op := entity.RailOperation{ID: 2, Status: entity.RailStatusAtPort, Milestones: entity.Milestones{PortArrival: ptr(base)}}

		got, err := m.Apply(op, Command{Action: ActionScheduleDelivery, ScheduledAt: &when}, base)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if got.Status != entity.RailStatusScheduled {
			t.Errorf("Status = %q, want scheduled", got.Status)
		}
		if got.Milestones.DeliveryScheduled == nil || !got.Milestones.DeliveryScheduled.Equal(when) {
			t.Errorf("DeliveryScheduled = %v, want operator date %v", got.Milestones.DeliveryScheduled, when)
		}
		if op.Milestones.DeliveryScheduled != nil {
			t.Error("Apply() modified its input")
		}
	})

	t.Run("requires a date", func(t *testing.T) {
		op := entity.RailOperation{ID: 2, Status: entity.RailStatusAtSupportTerminal}
		_, err := m.Apply(op, Command{Action: ActionScheduleDelivery}, base)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Apply() error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("scheduled then dispatched keeps the operator date", func(t *testing.T) {
		op := entity.RailOperation{ID: 2, Status: entity.RailStatusScheduled, Milestones: entity.Milestones{DeliveryScheduled: &when}}
		got, err := m.Apply(op, Command{Action: ActionMoveToDelivery}, base)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !got.Milestones.DeliveryScheduled.Equal(when) {
			t.Errorf("DeliveryScheduled = %v, want %v", got.Milestones.DeliveryScheduled, when)
		}
		if got.Status != entity.RailStatusAwaitingDelivery {
			t.Errorf("Status = %q, want awaiting_delivery", got.Status)
		}
	})
}

func TestMachine_RejectsInvalidTransitions(t *testing.T) {
	m := NewDefaultMachine()

	tests := []struct {
		name   string
		status entity.RailStatus
		action Action
		reason string
	}{
		{
			name:   "finalize while awaiting arrival",
			status: entity.RailStatusAwaitingArrival,
			action: ActionFinalizeDelivery,
			reason: "finalize_delivery requires status scheduled or in_transit or awaiting_delivery (rail operation 7 is awaiting_arrival)",
		},
		{
			name:   "confirm arrival twice",
			status: entity.RailStatusAtPort,
			action: ActionConfirmPortArrival,
			reason: "confirm_port_arrival requires status awaiting_arrival (rail operation 7 is at_port)",
		},
		{
			name:   "terminal from awaiting arrival",
			status: entity.RailStatusAwaitingArrival,
			action: ActionMoveToTerminal,
			reason: "move_to_terminal requires status at_port (rail operation 7 is awaiting_arrival)",
		},
		{
			name:   "delivery from port",
			status: entity.RailStatusAtPort,
			action: ActionMoveToDelivery,
			reason: "move_to_delivery requires status at_support_terminal or scheduled (rail operation 7 is at_port)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := entity.RailOperation{ID: 7, Status: tt.status}

			handler := m.GetHandler(tt.action)
			result := handler.Check(op, Command{Action: tt.action})
			if result.Allowed {
				t.Fatal("Check().Allowed = true, want false")
			}
			if result.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.reason)
			}

			got, err := m.Apply(op, Command{Action: tt.action}, base)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Apply() error = %v, want ErrInvalidTransition", err)
			}
			if got.Status != tt.status {
				t.Errorf("Apply() changed status to %q on rejection", got.Status)
			}
		})
	}
}

func TestMachine_UnknownAction(t *testing.T) {
	m := NewDefaultMachine()
	_, err := m.Apply(entity.RailOperation{}, Command{Action: "teleport"}, base)
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Apply() error = %v, want ErrUnknownAction", err)
	}
	if err := m.Check(entity.RailOperation{}, Command{Action: "teleport"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Check() error = %v, want ErrUnknownAction", err)
	}
}

func TestMachine_FinalizeLegacyInTransit(t *testing.T) {
	m := NewDefaultMachine()
	op := entity.RailOperation{ID: 3, Status: entity.RailStatusInTransit}

	got, err := m.Apply(op, Command{Action: ActionFinalizeDelivery}, base)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Status != entity.RailStatusDelivered {
		t.Errorf("Status = %q, want delivered", got.Status)
	}
}

func TestMachine_Revert(t *testing.T) {
	m := NewDefaultMachine()

	full := entity.Milestones{
		PortArrival:        ptr(base),
		TerminalEntry:      ptr(base.Add(time.Hour)),
		DeliveryScheduled:  ptr(base.Add(2 * time.Hour)),
		DeliveryDispatched: ptr(base.Add(3 * time.Hour)),
		Delivery:           ptr(base.Add(4 * time.Hour)),
	}
	delivered := entity.RailOperation{ID: 9, Status: entity.RailStatusDelivered, Milestones: full}

	tests := []struct {
		name   string
		target entity.RailStatus
		check  func(t *testing.T, m entity.Milestones)
	}{
		{
			name:   "back to delivery flow",
			target: entity.RailStatusAwaitingDelivery,
			check: func(t *testing.T, m entity.Milestones) {
				if m.Delivery != nil || m.DeliveryDispatched == nil {
					t.Errorf("milestones = %+v", m)
				}
			},
		},
		{
			name:   "back to scheduled",
			target: entity.RailStatusScheduled,
			check: func(t *testing.T, m entity.Milestones) {
				if m.DeliveryDispatched != nil || m.DeliveryScheduled == nil {
					t.Errorf("milestones = %+v", m)
				}
			},
		},
		{
			name:   "back to terminal",
			target: entity.RailStatusAtSupportTerminal,
			check: func(t *testing.T, m entity.Milestones) {
				if m.DeliveryScheduled != nil || m.TerminalEntry == nil {
					t.Errorf("milestones = %+v", m)
				}
			},
		},
		{
			name:   "back to port",
			target: entity.RailStatusAtPort,
			check: func(t *testing.T, m entity.Milestones) {
				if m.TerminalEntry != nil || m.PortArrival == nil {
					t.Errorf("milestones = %+v", m)
				}
			},
		},
		{
			name:   "back to the start",
			target: entity.RailStatusAwaitingArrival,
			check: func(t *testing.T, m entity.Milestones) {
				if m != (entity.Milestones{}) {
					t.Errorf("milestones = %+v, want all cleared", m)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Apply(delivered, Command{Action: ActionRevertStep, Target: tt.target}, base)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if Rank(got.Status) != Rank(tt.target) {
				t.Errorf("Status = %q, want %q", got.Status, tt.target)
			}
			tt.check(t, got.Milestones)
		})
	}
}

func TestCanRevert(t *testing.T) {
	tests := []struct {
		name        string
		op          entity.RailOperation
		target      entity.RailStatus
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "forward target rejected",
			op:          entity.RailOperation{ID: 4, Status: entity.RailStatusAtPort, Milestones: entity.Milestones{PortArrival: ptr(base)}},
			target:      entity.RailStatusDelivered,
			wantAllowed: false,
			wantReason:  "cannot revert rail operation 4 from at_port to delivered: target is not an earlier step",
		},
		{
			name:        "same step rejected",
			op:          entity.RailOperation{ID: 4, Status: entity.RailStatusAtPort, Milestones: entity.Milestones{PortArrival: ptr(base)}},
			target:      entity.RailStatusAtPort,
			wantAllowed: false,
			wantReason:  "cannot revert rail operation 4 from at_port to at_port: target is not an earlier step",
		},
		{
			name:        "skipped terminal cannot be restored",
			op:          entity.RailOperation{ID: 4, Status: entity.RailStatusScheduled, Milestones: entity.Milestones{PortArrival: ptr(base), DeliveryScheduled: ptr(base)}},
			target:      entity.RailStatusAtSupportTerminal,
			wantAllowed: false,
			wantReason:  "cannot revert rail operation 4 to at_support_terminal: step was never recorded",
		},
		{
			name:        "unknown target",
			op:          entity.RailOperation{ID: 4, Status: entity.RailStatusDelivered},
			target:      "lost",
			wantAllowed: false,
			wantReason:  `unknown target status "lost"`,
		},
		{
			name:        "earlier recorded step allowed",
			op:          entity.RailOperation{ID: 4, Status: entity.RailStatusScheduled, Milestones: entity.Milestones{PortArrival: ptr(base), DeliveryScheduled: ptr(base)}},
			target:      entity.RailStatusAtPort,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanRevert(tt.op, tt.target)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestEditMilestones(t *testing.T) {
	op := entity.RailOperation{ID: 5, Status: entity.RailStatusAwaitingArrival}

	got := EditMilestones(op, entity.Milestones{TerminalEntry: ptr(base)})
	if got.Status != entity.RailStatusAtSupportTerminal {
		t.Errorf("Status = %q, want at_support_terminal", got.Status)
	}

	got = EditMilestones(got, entity.Milestones{Delivery: ptr(base)})
	if got.Status != entity.RailStatusDelivered {
		t.Errorf("Status = %q, want delivered", got.Status)
	}
	if got.Milestones.TerminalEntry == nil {
		t.Error("EditMilestones() dropped an existing milestone")
	}
}

func TestGuardResult_Error(t *testing.T) {
	t.Run("allowed result returns nil error", func(t *testing.T) {
		if err := (GuardResult{Allowed: true}).Error(); err != nil {
			t.Errorf("Error() = %v, want nil", err)
		}
	})

	t.Run("rejected result wraps ErrInvalidTransition", func(t *testing.T) {
		err := GuardResult{Allowed: false, Reason: "nope"}.Error()
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Error() = %v, want wrapped ErrInvalidTransition", err)
		}
		if err.Error() != "invalid transition: nope" {
			t.Errorf("Error() message = %q", err.Error())
		}
	})
}

func TestStoredStatus(t *testing.T) {
	scheduled := entity.Milestones{PortArrival: ptr(base), DeliveryScheduled: ptr(base)}
	delivered := entity.Milestones{PortArrival: ptr(base), Delivery: ptr(base)}

	tests := []struct {
		name   string
		stored string
		m      entity.Milestones
		want   entity.RailStatus
	}{
		{"milestones win", "awaiting_arrival", scheduled, entity.RailStatusScheduled},
		{"legacy in transit", "in_transit", scheduled, entity.RailStatusInTransit},
		{"legacy without milestones", "in_transit", entity.Milestones{}, entity.RailStatusInTransit},
		{"legacy delivered", "in_transit", delivered, entity.RailStatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StoredStatus(tt.stored, tt.m); got != tt.want {
				t.Errorf("StoredStatus(%q) = %s, want %s", tt.stored, got, tt.want)
			}
		})
	}
}
