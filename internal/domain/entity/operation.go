package entity

import (
	"strings"
	"time"
)

// NoJustification replaces empty or placeholder delay reasons
const NoJustification = "no justification"

// RawOperation is an operation row as supplied by storage/import.
// Date columns hold either ISO-8601 or "dd/mm/yyyy HH:mm" strings.
type RawOperation struct {
	ID                         uint
	Booking                    string
	Container                  string
	Client                     string
	ScheduledStart             *string
	RecalculatedScheduledStart *string
	ActualStart                *string
	ActualEnd                  *string
	DelayReason                *string
	OperationStatus            string
	SituationFlag              string
}

// Operation is one shipment leg with typed timestamps
type Operation struct {
	ID                         uint
	Booking                    string
	Container                  string // may hold several comma-joined containers
	Client                     string
	ScheduledStart             *time.Time
	RecalculatedScheduledStart *time.Time
	ActualStart                *time.Time
	ActualEnd                  *time.Time
	DelayReason                string
	OperationStatus            string
	SituationFlag              string
	Canceled                   bool
}

// EffectiveScheduled returns the recalculated promise date when present,
// otherwise the originally programmed start.
func (o Operation) EffectiveScheduled() *time.Time {
	if o.RecalculatedScheduledStart != nil {
		return o.RecalculatedScheduledStart
	}
	return o.ScheduledStart
}

// HasCancellationSignal reports whether any free-text status field marks the
// record as canceled ("Cancelado", "CANCELED", "cancelled", ...).
func HasCancellationSignal(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "cancel") {
			return true
		}
	}
	return false
}
