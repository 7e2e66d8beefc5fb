package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"freight-tracking-service/internal/domain/analytics"
	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/usecase"
	"freight-tracking-service/pkg/utils"
)

func init() {
	color.NoColor = true
}

func TestPrintDashboard(t *testing.T) {
	var buf bytes.Buffer
	d := &usecase.Dashboard{
		KPIs:         analytics.KPIs{Total: 4, LateCount: 2, OnTimeCount: 1, PendingCount: 1, PctLate: 50, AvgLateMinutes: 45, MaxLateMinutes: 60},
		LateByClient: []analytics.ClientCount{{Client: "Acme", Count: 2}},
		DelayReasons: []analytics.ReasonCount{{Reason: "port congestion", Count: 2}},
		Rows: []usecase.DashboardRow{
			{Booking: "BK1", Client: "Acme", Status: delay.StatusLate, Delay: "01:00"},
		},
	}

	printDashboard(&buf, d, true)
	out := buf.String()

	for _, want := range []string{"Operations: 4", "Late: 50.0%", "1. Acme (2)", "1. port congestion (2)", "BK1", "01:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDashboard_NoRows(t *testing.T) {
	var buf bytes.Buffer

	printDashboard(&buf, &usecase.Dashboard{Rows: []usecase.DashboardRow{{Booking: "BK1"}}}, false)

	if strings.Contains(buf.String(), "BOOKING") {
		t.Error("expected no row table without --rows")
	}
}

func TestPrintRailOperations(t *testing.T) {
	var buf bytes.Buffer
	arrived := time.Date(2026, 1, 20, 9, 30, 0, 0, time.UTC)

	printRailOperations(&buf, []entity.RailOperation{
		{ID: 7, Booking: "BK7", Status: entity.RailStatusAtPort, Milestones: entity.Milestones{PortArrival: &arrived}, Version: 2},
	}, utils.NewDateParser(time.UTC))
	out := buf.String()

	for _, want := range []string{"BK7", "At port", "20/01/2026 09:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintBulkResult(t *testing.T) {
	var buf bytes.Buffer

	printBulkResult(&buf, usecase.BulkResult{
		Requested: 3,
		Succeeded: 2,
		Failures:  []usecase.BulkFailure{{ID: 9, Error: "record not found"}},
	})
	out := buf.String()

	if !strings.Contains(out, "2 of 3") || !strings.Contains(out, "9: record not found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintBulkResult_DryRun(t *testing.T) {
	var buf bytes.Buffer

	printBulkResult(&buf, usecase.BulkResult{Requested: 2, Succeeded: 2, DryRun: true})

	if !strings.Contains(buf.String(), "2 of 2 rail operation(s) would be updated (dry run)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintViewCounts(t *testing.T) {
	var buf bytes.Buffer

	printViewCounts(&buf, map[pipeline.View]int{pipeline.ViewAll: 5, pipeline.ViewDeliveryFlow: 2})

	if !strings.Contains(buf.String(), "all: 5") || !strings.Contains(buf.String(), "delivery_flow: 2") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
