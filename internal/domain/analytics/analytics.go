// Package analytics aggregates delay results across operations for KPIs and charts.
// Canceled operations are dropped by every function here.
package analytics

import (
	"sort"
	"strings"
	"time"

	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/domain/entity"
)

// DefaultTopN is the ranking size used when callers pass a non-positive topN
const DefaultTopN = 5

// Row pairs an operation with its delay result
type Row struct {
	Operation entity.Operation
	Result    delay.Result
}

// KPIs summarises punctuality for a set of operations
type KPIs struct {
	Total          int     `json:"total"`
	LateCount      int     `json:"lateCount"`
	OnTimeCount    int     `json:"onTimeCount"`
	PendingCount   int     `json:"pendingCount"`
	PctLate        float64 `json:"pctLate"`
	AvgLateMinutes float64 `json:"avgLateMinutes"`
	MaxLateMinutes int     `json:"maxLateMinutes"`
}

// ClientCount is one entry of the late-by-client ranking
type ClientCount struct {
	Client string `json:"client"`
	Count  int    `json:"count"`
}

// ReasonCount is one entry of the delay-reason ranking
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Evaluate classifies every non-canceled operation as of now
func Evaluate(ops []entity.Operation, now time.Time) []Row {
	rows := make([]Row, 0, len(ops))
	for _, op := range ops {
		if op.Canceled {
			continue
		}
		rows = append(rows, Row{Operation: op, Result: delay.Evaluate(op, now)})
	}
	return rows
}

// BuildKPIs counts rows per classification. Percentages are zero for an empty set.
func BuildKPIs(rows []Row) KPIs {
	var k KPIs
	lateMinutes := 0

	for _, r := range rows {
		if r.Operation.Canceled {
			continue
		}
		k.Total++

		switch r.Result.Status {
		case delay.StatusLate:
			k.LateCount++
			lateMinutes += r.Result.Minutes
			if r.Result.Minutes > k.MaxLateMinutes {
				k.MaxLateMinutes = r.Result.Minutes
			}
		case delay.StatusOnTime:
			k.OnTimeCount++
		case delay.StatusPending:
			k.PendingCount++
		}
	}

	k.PctLate = percentage(k.LateCount, k.Total)
	if k.LateCount > 0 {
		k.AvgLateMinutes = float64(lateMinutes) / float64(k.LateCount)
	}
	return k
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// GroupLateByClient ranks clients by number of late operations.
// Ties keep first-encountered order.
func GroupLateByClient(rows []Row, topN int) []ClientCount {
	keys, counts := countLate(rows, func(op entity.Operation) string {
		return op.Client
	})

	out := make([]ClientCount, len(keys))
	for i, k := range keys {
		out[i] = ClientCount{Client: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out[:limit(len(out), topN)]
}

// GroupDelayReasons ranks normalized delay reasons among late operations.
// Ties keep first-encountered order.
func GroupDelayReasons(rows []Row, topN int) []ReasonCount {
	keys, counts := countLate(rows, func(op entity.Operation) string {
		return ReasonKey(op.DelayReason)
	})

	out := make([]ReasonCount, len(keys))
	for i, k := range keys {
		out[i] = ReasonCount{Reason: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out[:limit(len(out), topN)]
}

// countLate returns keys in first-encountered order together with their counts
func countLate(rows []Row, key func(entity.Operation) string) ([]string, map[string]int) {
	var keys []string
	counts := make(map[string]int)

	for _, r := range rows {
		if r.Operation.Canceled || !r.Result.IsLate() {
			continue
		}
		k := key(r.Operation)
		if _, seen := counts[k]; !seen {
			keys = append(keys, k)
		}
		counts[k]++
	}
	return keys, counts
}

func limit(n, topN int) int {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if n < topN {
		return n
	}
	return topN
}

// NormalizeDelayReason substitutes the sentinel for empty and placeholder reasons
func NormalizeDelayReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" || trimmed == "-" {
		return entity.NoJustification
	}
	return trimmed
}

// ReasonKey is the grouping key for a delay reason
func ReasonKey(reason string) string {
	return strings.ToLower(NormalizeDelayReason(reason))
}
