package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"invoicegate/internal/logger"
	"invoicegate/internal/normalize"
	"invoicegate/pkg/models"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [record.json]",
	Short: "Complete missing required fields in an extracted invoice record",
	Long: `Normalize a raw candidate invoice record: detect missing required
fields, inject standards-compliant placeholder values, repair
inconsistent scheme codes and derive the financial totals from the line
items.

The output contains the normalized record together with its provenance
ledger: which fields were missing on input, which received synthetic
values, and any advisory warnings. Records missing the invoice number,
issue date, a party name or all line items are rejected, since no
legally-safe placeholder exists for those.`,
	Example: `  # Normalize a record to stdout (JSON format)
  invoicegate normalize record.json

  # Save the normalized record and ledger to a file
  invoicegate normalize record.json -o normalized.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

// NormalizeOutput represents the JSON output structure for normalization
type NormalizeOutput struct {
	Record   *models.InvoiceRecord `json:"record"`
	Ledger   *models.Ledger        `json:"ledger"`
	Metadata RunMetadata           `json:"metadata"`
}

// RunMetadata contains information about the processing operation
type RunMetadata struct {
	FileName    string        `json:"file_name"`
	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("normalize-cmd")
	outputPath, _ := cmd.Flags().GetString("output")

	rec, err := readRecord(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	normalized, ledger, err := normalize.New().Normalize(rec)
	if err != nil {
		log.Error().
			Str("file", args[0]).
			Err(err).
			Msg("Normalization failed")
		return err
	}

	log.Info().
		Str("invoice_number", normalized.Header.Number).
		Int("synthetic_fields", len(ledger.SyntheticFields)).
		Int("warnings", len(ledger.Warnings)).
		Msg("Record normalized")

	return writeOutput(NormalizeOutput{
		Record: normalized,
		Ledger: ledger,
		Metadata: RunMetadata{
			FileName:    args[0],
			ProcessedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}, outputPath)
}
