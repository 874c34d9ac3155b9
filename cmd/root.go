package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicegate/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicegate",
	Short: "Invoicegate - normalize and score extracted invoice records",
	Long: `Invoicegate takes semi-structured invoice records produced by an
extraction step, completes the fields a compliance validator requires
with auditable placeholder values, and scores each record's
completeness.

Every synthetic value is tracked in a provenance ledger so that
downstream consumers can always tell genuinely supplied data from
fallback data.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Invoicegate executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
