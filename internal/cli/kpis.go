package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"freight-tracking-service/internal/domain/analytics"
	"freight-tracking-service/internal/domain/delay"
	"freight-tracking-service/internal/usecase"
)

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Show punctuality KPIs",
	Long:  "Compute the punctuality dashboard for stored operations and print KPIs, rankings and rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		status, _ := cmd.Flags().GetString("status")
		rng, _ := cmd.Flags().GetString("range")
		search, _ := cmd.Flags().GetString("search")
		clients, _ := cmd.Flags().GetStringSlice("client")
		booking, _ := cmd.Flags().GetString("booking")
		showRows, _ := cmd.Flags().GetBool("rows")

		dashboard, err := DashboardService().GetDashboard(ctx, analytics.Filter{
			Status:  analytics.StatusFilter(status),
			Range:   analytics.RangeFilter(rng),
			Search:  search,
			Clients: clients,
			Booking: booking,
		})
		if err != nil {
			return fmt.Errorf("failed to compute dashboard: %w", err)
		}

		printDashboard(os.Stdout, dashboard, showRows)
		return nil
	},
}

func printDashboard(out io.Writer, d *usecase.Dashboard, showRows bool) {
	k := d.KPIs
	fmt.Fprintf(out, "Operations: %d\n", k.Total)
	fmt.Fprintf(out, "  %s %d   %s %d   %s %d\n",
		color.New(color.FgRed).Sprint("late"), k.LateCount,
		color.New(color.FgGreen).Sprint("on time"), k.OnTimeCount,
		color.New(color.FgYellow).Sprint("pending"), k.PendingCount)
	fmt.Fprintf(out, "Late: %.1f%%  avg %.1f min  max %d min\n", k.PctLate, k.AvgLateMinutes, k.MaxLateMinutes)

	if len(d.LateByClient) > 0 {
		fmt.Fprintln(out, "\nLate by client:")
		for i, c := range d.LateByClient {
			fmt.Fprintf(out, "  %d. %s (%d)\n", i+1, c.Client, c.Count)
		}
	}
	if len(d.DelayReasons) > 0 {
		fmt.Fprintln(out, "\nDelay reasons:")
		for i, r := range d.DelayReasons {
			fmt.Fprintf(out, "  %d. %s (%d)\n", i+1, r.Reason, r.Count)
		}
	}

	if !showRows || len(d.Rows) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOOKING\tCONTAINER\tCLIENT\tSCHEDULED\tSTARTED\tSTATUS\tDELAY")
	fmt.Fprintln(w, "-------\t---------\t------\t---------\t-------\t------\t-----")
	for _, row := range d.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Booking,
			row.Container,
			row.Client,
			row.ScheduledStart,
			row.ActualStart,
			delayLabel(row.Status),
			row.Delay,
		)
	}
	w.Flush()
}

func delayLabel(s delay.Status) string {
	switch s {
	case delay.StatusLate:
		return color.New(color.FgRed).Sprint("late")
	case delay.StatusOnTime:
		return color.New(color.FgGreen).Sprint("on time")
	default:
		return color.New(color.FgYellow).Sprint("pending")
	}
}

func init() {
	kpisCmd.Flags().String("status", "", "Filter by delay status (late, on_time, pending)")
	kpisCmd.Flags().String("range", "", "Filter by scheduled date (last_7_days, last_30_days)")
	kpisCmd.Flags().StringP("search", "s", "", "Match booking, container or client")
	kpisCmd.Flags().StringSlice("client", nil, "Restrict to clients (repeatable)")
	kpisCmd.Flags().String("booking", "", "Restrict to one booking")
	kpisCmd.Flags().Bool("rows", false, "Print every matching operation")
}

// KPIsCmd returns the kpis command
func KPIsCmd() *cobra.Command {
	return kpisCmd
}
