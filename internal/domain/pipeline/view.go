package pipeline

import (
	"sort"

	"freight-tracking-service/internal/domain/entity"
)

// View is a list filter over rail operations
type View string

const (
	ViewAll               View = "all"
	ViewAwaitingArrival   View = "awaiting_arrival"
	ViewAtPort            View = "at_port"
	ViewAtSupportTerminal View = "at_support_terminal"
	ViewDeliveryFlow      View = "delivery_flow"
	ViewDelivered         View = "delivered"
)

// Views lists every view in pipeline order
var Views = []View{
	ViewAll,
	ViewAwaitingArrival,
	ViewAtPort,
	ViewAtSupportTerminal,
	ViewDeliveryFlow,
	ViewDelivered,
}

// ParseView maps a query value to a view; empty means all
func ParseView(s string) (View, bool) {
	if s == "" {
		return ViewAll, true
	}
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Includes reports whether a status is listed under the view
func (v View) Includes(s entity.RailStatus) bool {
	switch v {
	case ViewAll:
		return true
	case ViewDeliveryFlow:
		return InDeliveryFlow(s)
	default:
		return string(v) == string(s)
	}
}

// FilterByView returns the non-canceled operations listed under v
func FilterByView(ops []entity.RailOperation, v View) []entity.RailOperation {
	out := make([]entity.RailOperation, 0, len(ops))
	for _, op := range ops {
		if op.Canceled || !v.Includes(op.Status) {
			continue
		}
		out = append(out, op)
	}
	return out
}

// CountByView counts non-canceled operations per view
func CountByView(ops []entity.RailOperation) map[View]int {
	counts := make(map[View]int, len(Views))
	for _, v := range Views {
		counts[v] = 0
	}
	for _, op := range ops {
		if op.Canceled {
			continue
		}
		for _, v := range Views {
			if v.Includes(op.Status) {
				counts[v]++
			}
		}
	}
	return counts
}

// Selection is the set of rail operations picked for a bulk transition.
// It is bound to the view it was made in; another view starts a new, empty
// selection.
type Selection struct {
	view View
	ids  map[int64]struct{}
}

// NewSelection creates an empty selection for a view
func NewSelection(view View) *Selection {
	return &Selection{view: view, ids: make(map[int64]struct{})}
}

// View returns the view the selection belongs to
func (s *Selection) View() View {
	return s.view
}

// Add selects ids
func (s *Selection) Add(ids ...int64) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Len returns the number of selected ids
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[int64]struct{})
}

// IDs returns the selected ids in ascending order
func (s *Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
