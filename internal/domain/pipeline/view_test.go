package pipeline

import (
	"testing"

	"freight-tracking-service/internal/domain/entity"
)

func TestView_Includes(t *testing.T) {
	tests := []struct {
		view   View
		status entity.RailStatus
		want   bool
	}{
		{ViewAll, entity.RailStatusDelivered, true},
		{ViewDeliveryFlow, entity.RailStatusScheduled, true},
		{ViewDeliveryFlow, entity.RailStatusInTransit, true},
		{ViewDeliveryFlow, entity.RailStatusAwaitingDelivery, true},
		{ViewDeliveryFlow, entity.RailStatusAtSupportTerminal, false},
		{ViewAtPort, entity.RailStatusAtPort, true},
		{ViewAtPort, entity.RailStatusAwaitingArrival, false},
		{ViewDelivered, entity.RailStatusDelivered, true},
	}

	for _, tt := range tests {
		if got := tt.view.Includes(tt.status); got != tt.want {
			t.Errorf("%s.Includes(%s) = %v, want %v", tt.view, tt.status, got, tt.want)
		}
	}
}

func TestCountByView(t *testing.T) {
	ops := []entity.RailOperation{
		{ID: 1, Status: entity.RailStatusAwaitingArrival},
		{ID: 2, Status: entity.RailStatusAtPort},
		{ID: 3, Status: entity.RailStatusScheduled},
		{ID: 4, Status: entity.RailStatusInTransit},
		{ID: 5, Status: entity.RailStatusDelivered},
		{ID: 6, Status: entity.RailStatusAtPort, Canceled: true},
	}

	got := CountByView(ops)

	want := map[View]int{
		ViewAll:               5,
		ViewAwaitingArrival:   1,
		ViewAtPort:            1,
		ViewAtSupportTerminal: 0,
		ViewDeliveryFlow:      2,
		ViewDelivered:         1,
	}
	for v, n := range want {
		if got[v] != n {
			t.Errorf("CountByView()[%s] = %d, want %d", v, got[v], n)
		}
	}

	flow := FilterByView(ops, ViewDeliveryFlow)
	if len(flow) != 2 || flow[0].ID != 3 || flow[1].ID != 4 {
		t.Errorf("FilterByView(delivery_flow) = %+v", flow)
	}
	if port := FilterByView(ops, ViewAtPort); len(port) != 1 {
		t.Errorf("FilterByView(at_port) returned %d, want canceled excluded", len(port))
	}
}

func TestParseView(t *testing.T) {
	if v, ok := ParseView(""); !ok || v != ViewAll {
		t.Errorf("ParseView(\"\") = %q, %v", v, ok)
	}
	if v, ok := ParseView("delivery_flow"); !ok || v != ViewDeliveryFlow {
		t.Errorf("ParseView(delivery_flow) = %q, %v", v, ok)
	}
	if _, ok := ParseView("somewhere"); ok {
		t.Error("ParseView(somewhere) ok = true")
	}
}

func TestParseStatusAndLabel(t *testing.T) {
	s, ok := ParseStatus("in_transit")
	if !ok {
		t.Fatal("ParseStatus(in_transit) ok = false")
	}
	if Label(s) != "In transit" {
		t.Errorf("Label(in_transit) = %q", Label(s))
	}
	if _, ok := ParseStatus("lost"); ok {
		t.Error("ParseStatus(lost) ok = true")
	}
}

func TestSelection(t *testing.T) {
	sel := NewSelection(ViewAtPort)
	sel.Add(3, 1, 2, 2)

	if sel.Len() != 3 {
		t.Errorf("Len() = %d, want 3", sel.Len())
	}
	ids := sel.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("IDs() = %v, want [1 2 3]", ids)
	}

	sel.Clear()
	if sel.Len() != 0 {
		t.Errorf("Clear() left %d ids selected", sel.Len())
	}
	if sel.View() != ViewAtPort {
		t.Errorf("View() = %q", sel.View())
	}
}
