package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/usecase"
	"freight-tracking-service/pkg/utils"
)

var railCmd = &cobra.Command{
	Use:   "rail",
	Short: "Manage rail operations",
	Long:  "List rail operations and move them through the pipeline",
}

var railListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rail operations in a view",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		viewName, _ := cmd.Flags().GetString("view")

		view, ok := pipeline.ParseView(viewName)
		if !ok {
			return fmt.Errorf("unknown view %q", viewName)
		}

		list, err := RailService().List(ctx, view)
		if err != nil {
			return fmt.Errorf("failed to list rail operations: %w", err)
		}

		printViewCounts(os.Stdout, list.Counts)
		if len(list.Operations) == 0 {
			fmt.Println("No rail operations found")
			return nil
		}
		printRailOperations(os.Stdout, list.Operations, DateParser())
		return nil
	},
}

var railTransitionCmd = &cobra.Command{
	Use:   "transition [id] [action]",
	Short: "Apply a transition to one rail operation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		version, _ := cmd.Flags().GetInt64("version")
		target, _ := cmd.Flags().GetString("target")
		operator, _ := cmd.Flags().GetString("operator")

		scheduledAt, err := scheduledAtFlag(cmd)
		if err != nil {
			return err
		}

		op, err := RailService().Transition(ctx, usecase.TransitionRequest{
			ID:              id,
			ExpectedVersion: version,
			Action:          pipeline.Action(args[1]),
			ScheduledAt:     scheduledAt,
			Target:          entity.RailStatus(target),
			Operator:        operator,
		})
		if err != nil {
			return fmt.Errorf("transition failed: %w", err)
		}

		fmt.Printf("✓ Rail operation %d is now %s (version %d)\n", op.ID, pipeline.Label(op.Status), op.Version)
		return nil
	},
}

var railBulkCmd = &cobra.Command{
	Use:   "bulk [action] [id...]",
	Short: "Apply one transition to several rail operations",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		viewName, _ := cmd.Flags().GetString("view")
		target, _ := cmd.Flags().GetString("target")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		operator, _ := cmd.Flags().GetString("operator")

		view, ok := pipeline.ParseView(viewName)
		if !ok {
			return fmt.Errorf("unknown view %q", viewName)
		}
		scheduledAt, err := scheduledAtFlag(cmd)
		if err != nil {
			return err
		}

		sel := pipeline.NewSelection(view)
		for _, raw := range args[1:] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", raw)
			}
			sel.Add(id)
		}

		result := RailService().BulkTransition(ctx, sel, usecase.BulkRequest{
			Action:      pipeline.Action(args[0]),
			ScheduledAt: scheduledAt,
			Target:      entity.RailStatus(target),
			DryRun:      dryRun,
			Operator:    operator,
		})

		printBulkResult(os.Stdout, result)
		return nil
	},
}

var railEventsCmd = &cobra.Command{
	Use:   "events [id]",
	Short: "Show the transition history of a rail operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		events, err := RailService().Events(ctx, id)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events recorded")
			return nil
		}

		parser := DateParser()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tACTION\tFROM\tTO\tVERSION\tOPERATOR")
		for _, e := range events {
			operator := e.Operator
			if e.Bulk {
				operator += " (bulk)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				parser.FormatDisplay(e.OccurredAt), e.Action, e.FromStatus, e.ToStatus, e.Version, operator)
		}
		w.Flush()
		return nil
	},
}

func scheduledAtFlag(cmd *cobra.Command) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString("scheduled-at")
	if raw == "" {
		return nil, nil
	}
	t, ok := DateParser().Parse(raw)
	if !ok {
		return nil, fmt.Errorf("invalid --scheduled-at %q (use dd/mm/yyyy HH:MM)", raw)
	}
	return &t, nil
}

func printViewCounts(out io.Writer, counts map[pipeline.View]int) {
	for _, v := range pipeline.Views {
		fmt.Fprintf(out, "%s: %d  ", v, counts[v])
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
}

func printRailOperations(out io.Writer, ops []entity.RailOperation, parser *utils.DateParser) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBOOKING\tCONTAINER\tSHIPPER\tSTATUS\tPORT\tTERMINAL\tDELIVERY\tVERSION")
	fmt.Fprintln(w, "--\t-------\t---------\t-------\t------\t----\t--------\t--------\t-------")
	for _, op := range ops {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			op.ID,
			op.Booking,
			op.Container,
			op.EmbarcadorNome,
			statusLabel(op.Status),
			parser.FormatDisplayPtr(op.Milestones.PortArrival),
			parser.FormatDisplayPtr(op.Milestones.TerminalEntry),
			parser.FormatDisplayPtr(op.Milestones.DeliveryScheduled),
			op.Version,
		)
	}
	w.Flush()
}

func printBulkResult(out io.Writer, result usecase.BulkResult) {
	verb := "updated"
	if result.DryRun {
		verb = "would be updated (dry run)"
	}
	fmt.Fprintf(out, "%s %d of %d rail operation(s) %s\n",
		color.New(color.FgGreen).Sprint("✓"), result.Succeeded, result.Requested, verb)
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  %s %d: %s\n", color.New(color.FgRed).Sprint("✗"), f.ID, f.Error)
	}
}

func statusLabel(s entity.RailStatus) string {
	label := pipeline.Label(s)
	switch {
	case s == entity.RailStatusDelivered:
		return color.New(color.FgGreen).Sprint(label)
	case pipeline.InDeliveryFlow(s):
		return color.New(color.FgCyan).Sprint(label)
	default:
		return label
	}
}

func init() {
	railListCmd.Flags().String("view", "all", "View to list (all, awaiting_arrival, at_port, at_support_terminal, delivery_flow, delivered)")

	railTransitionCmd.Flags().Int64("version", 0, "Version the operation was read at")
	railTransitionCmd.Flags().String("scheduled-at", "", "Delivery date for schedule_delivery")
	railTransitionCmd.Flags().String("target", "", "Target status for revert_step")
	railTransitionCmd.Flags().String("operator", os.Getenv("USER"), "Operator recorded in the audit trail")
	railTransitionCmd.MarkFlagRequired("version")

	railBulkCmd.Flags().String("view", "all", "View the selection was made in")
	railBulkCmd.Flags().String("scheduled-at", "", "Delivery date for schedule_delivery")
	railBulkCmd.Flags().String("target", "", "Target status for revert_step")
	railBulkCmd.Flags().Bool("dry-run", false, "Check every record without writing")
	railBulkCmd.Flags().String("operator", os.Getenv("USER"), "Operator recorded in the audit trail")

	// Register subcommands
	railCmd.AddCommand(railListCmd)
	railCmd.AddCommand(railTransitionCmd)
	railCmd.AddCommand(railBulkCmd)
	railCmd.AddCommand(railEventsCmd)
}

// RailCmd returns the rail command
func RailCmd() *cobra.Command {
	return railCmd
}
