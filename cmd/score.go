package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"invoicegate/internal/logger"
	"invoicegate/internal/normalize"
	"invoicegate/internal/score"
	"invoicegate/pkg/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score [record.json]",
	Short: "Normalize a record and compute its completeness score",
	Long: `Run the full pipeline for one record: normalization followed by
weighted completeness scoring per section (header, seller, buyer,
lines, payment) and an overall score.

The output includes the provenance ledger and the advisory B2B/B2C
classification of both parties.`,
	Example: `  # Score a record to stdout
  invoicegate score record.json

  # Include the normalized record in the output
  invoicegate score record.json --record -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

// ScoreOutput represents the JSON output structure for scoring
type ScoreOutput struct {
	Score  score.RecordScore     `json:"score"`
	Ledger *models.Ledger        `json:"ledger"`
	Record *models.InvoiceRecord `json:"record,omitempty"`

	// Advisory business-party classification of the two parties.
	SellerIsBusiness bool `json:"sellerIsBusiness"`
	BuyerIsBusiness  bool `json:"buyerIsBusiness"`

	Metadata RunMetadata `json:"metadata"`
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().Bool("record", false, "Include the normalized record in the output")
}

func runScore(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("score-cmd")
	outputPath, _ := cmd.Flags().GetString("output")
	includeRecord, _ := cmd.Flags().GetBool("record")

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
			Msg("Normalization failed, record not scored")
		return err
	}

	rs := score.NewEngine().ScoreRecord(normalized, ledger)

	log.Info().
		Str("record_id", rs.RecordID).
		Float64("overall", rs.Overall).
		Msg("Record scored")

	out := ScoreOutput{
		Score:            rs,
		Ledger:           ledger,
		SellerIsBusiness: normalize.IsBusinessParty(&normalized.Seller),
		BuyerIsBusiness:  normalize.IsBusinessParty(&normalized.Buyer),
		Metadata: RunMetadata{
			FileName:    args[0],
			ProcessedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}
	if includeRecord {
		out.Record = normalized
	}

	return writeOutput(out, outputPath)
}
