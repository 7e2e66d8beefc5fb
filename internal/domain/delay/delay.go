// Package delay computes punctuality for freight operations.
// Functions take the evaluation time from the caller; Engine binds a clock.
package delay

import (
	"math"
	"time"

	"freight-tracking-service/internal/domain/entity"

	"github.com/zoobzio/clockz"
)

// Status classifies an operation's punctuality
type Status string

const (
	StatusPending Status = "pending"
	StatusOnTime  Status = "on_time"
	StatusLate    Status = "late"
)

// Result is the delay classification of one operation.
// Minutes is zero unless Status is StatusLate.
type Result struct {
	Status  Status
	Minutes int
}

// IsLate reports whether the operation started after its effective schedule
func (r Result) IsLate() bool {
	return r.Status == StatusLate
}

// Evaluate classifies op as of now.
// Without an effective scheduled date the result is pending. Without an
// actual start the operation is measured against now.
func Evaluate(op entity.Operation, now time.Time) Result {
	scheduled := op.EffectiveScheduled()
	if scheduled == nil {
		return Result{Status: StatusPending}
	}

	diff := diffMinutes(*scheduled, actualOrNow(op, now))
	if diff <= 0 {
		return Result{Status: StatusOnTime}
	}
	return Result{Status: StatusLate, Minutes: diff}
}

// Minutes returns the clamped delay in minutes. Zero covers both on time and
// no scheduled date; use Evaluate to tell them apart.
func Minutes(op entity.Operation, now time.Time) int {
	return Evaluate(op, now).Minutes
}

// SignedMinutes is the non-clamping variant used for "scheduled in the future"
// displays. A negative value means the effective schedule is still ahead.
func SignedMinutes(op entity.Operation, now time.Time) (int, bool) {
	scheduled := op.EffectiveScheduled()
	if scheduled == nil {
		return 0, false
	}
	return diffMinutes(*scheduled, actualOrNow(op, now)), true
}

func actualOrNow(op entity.Operation, now time.Time) time.Time {
	if op.ActualStart != nil {
		return *op.ActualStart
	}
	return now
}

// diffMinutes rounds half up, matching the dashboard's historical figures
func diffMinutes(scheduled, actual time.Time) int {
	return int(math.Floor(actual.Sub(scheduled).Minutes() + 0.5))
}

// Engine evaluates operations against a clock
type Engine struct {
	clock clockz.Clock
}

// NewEngine creates an engine; a nil clock uses the real wall clock
func NewEngine(clock clockz.Clock) *Engine {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Engine{clock: clock}
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Evaluate classifies op as of the engine clock
func (e *Engine) Evaluate(op entity.Operation) Result {
	return Evaluate(op, e.clock.Now())
}

// Minutes returns the clamped delay of op as of the engine clock
func (e *Engine) Minutes(op entity.Operation) int {
	return Minutes(op, e.clock.Now())
}
