package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freight-tracking-service/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "freightctl",
		Short: "freightctl - operator tool for freight punctuality and rail pipeline",
		Long: `freightctl reads the same stores as the freight tracking service.
It prints punctuality KPIs and moves rail operations through the pipeline.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.KPIsCmd())
	rootCmd.AddCommand(cli.RailCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
