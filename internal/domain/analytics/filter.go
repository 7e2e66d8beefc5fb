package analytics

import (
	"strings"
	"time"

	"freight-tracking-service/internal/domain/delay"
)

// StatusFilter restricts rows to one classification
type StatusFilter string

const (
	StatusAll     StatusFilter = ""
	StatusLate    StatusFilter = "late"
	StatusOnTime  StatusFilter = "on_time"
	StatusPending StatusFilter = "pending"
)

// RangeFilter restricts rows by effective scheduled date relative to now
type RangeFilter string

const (
	RangeAll        RangeFilter = ""
	RangeLast7Days  RangeFilter = "last_7_days"
	RangeLast30Days RangeFilter = "last_30_days"
)

// Filter combines dashboard predicates with logical AND.
// Zero values match everything; blank client entries are ignored.
type Filter struct {
	Status  StatusFilter
	Range   RangeFilter
	Search  string
	Clients []string
	Booking string
}

// Apply returns the rows matching f as of now
func (f Filter) Apply(rows []Row, now time.Time) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r, now) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single row satisfies every predicate of f
func (f Filter) Match(r Row, now time.Time) bool {
	if r.Operation.Canceled {
		return false
	}
	return f.matchStatus(r) && f.matchRange(r, now) && f.matchSearch(r) && f.matchClients(r) && f.matchBooking(r)
}

func (f Filter) matchStatus(r Row) bool {
	switch f.Status {
	case StatusLate:
		return r.Result.Status == delay.StatusLate
	case StatusOnTime:
		return r.Result.Status == delay.StatusOnTime
	case StatusPending:
		return r.Result.Status == delay.StatusPending
	default:
		return true
	}
}

// matchRange keeps rows without a scheduled date so data-quality gaps stay visible
func (f Filter) matchRange(r Row, now time.Time) bool {
	var window time.Duration
	switch f.Range {
	case RangeLast7Days:
		window = 7 * 24 * time.Hour
	case RangeLast30Days:
		window = 30 * 24 * time.Hour
	default:
		return true
	}

	scheduled := r.Operation.EffectiveScheduled()
	if scheduled == nil {
		return true
	}
	return !scheduled.Before(now.Add(-window))
}

func (f Filter) matchSearch(r Row) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	op := r.Operation
	for _, field := range []string{op.Booking, op.Container, op.Client} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (f Filter) matchClients(r Row) bool {
	clients := f.SelectedClients()
	if len(clients) == 0 {
		return true
	}
	for _, c := range clients {
		if c == r.Operation.Client {
			return true
		}
	}
	return false
}

func (f Filter) matchBooking(r Row) bool {
	booking := strings.TrimSpace(f.Booking)
	return booking == "" || r.Operation.Booking == booking
}

// SelectedClients returns the client entries that are not blank
func (f Filter) SelectedClients() []string {
	clients := make([]string, 0, len(f.Clients))
	for _, c := range f.Clients {
		if c = strings.TrimSpace(c); c != "" {
			clients = append(clients, c)
		}
	}
	return clients
}
