package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"invoicegate/internal/batch"
	"invoicegate/internal/config"
	"invoicegate/internal/logger"
	"invoicegate/internal/report"
	"invoicegate/internal/score"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Normalize and score a batch of invoice records concurrently",
	Long: `Process every record JSON file in a directory (or the files listed
in a YAML manifest) through the normalize and score pipeline, then
aggregate the per-record results into a batch report.

Records that fail normalization are reported with their error and
excluded from scoring; they never abort the batch.`,
	Example: `  # Process all .json files in a directory
  invoicegate batch ./records

  # Process the files listed in a manifest, with 8 workers
  invoicegate batch --manifest batch.yaml --workers 8

  # Render the report as a markdown table instead of JSON
  invoicegate batch ./records --format table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

// Manifest is the YAML batch description accepted by --manifest.
type Manifest struct {
	Files   []string `yaml:"files"`
	Workers int      `yaml:"workers"`
}

// BatchOutput represents the JSON output structure for batch processing
type BatchOutput struct {
	Report   score.BatchReport   `json:"report"`
	Scores   []score.RecordScore `json:"scores"`
	Failures []BatchFailure      `json:"failures,omitempty"`
	Metadata RunMetadata         `json:"metadata"`
}

// BatchFailure describes one record excluded from the batch.
type BatchFailure struct {
	RecordID string `json:"recordId"`
	Source   string `json:"source"`
	Error    string `json:"error"`
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().String("manifest", "", "YAML manifest listing the record files")
	batchCmd.Flags().Int("workers", 0, "Worker count (default: BATCH_WORKERS or 4)")
	batchCmd.Flags().String("format", "json", "Output format: json or table")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch-cmd")
	outputPath, _ := cmd.Flags().GetString("output")
	manifestPath, _ := cmd.Flags().GetString("manifest")
	workers, _ := cmd.Flags().GetInt("workers")
	format, _ := cmd.Flags().GetString("format")

	files, manifestWorkers, err := collectFiles(args, manifestPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no record files to process")
	}

	if workers == 0 {
		workers = manifestWorkers
	}
	if workers == 0 {
		if cfg, err := config.Load(); err == nil {
			workers = cfg.BatchWorkers
		} else {
			workers = 4
		}
	}

	log.Info().
		Int("files", len(files)).
		Int("workers", workers).
		Msg("Starting batch run")

	start := time.Now()
	inputs := make([]batch.Input, 0, len(files))
	var failures []BatchFailure
	for _, file := range files {
		rec, err := readRecord(file)
		if err != nil {
			failures = append(failures, BatchFailure{Source: file, Error: err.Error()})
			log.Warn().Str("file", file).Err(err).Msg("Record file skipped")
			continue
		}
		inputs = append(inputs, batch.Input{Label: file, Record: rec})
	}

	results := batch.NewRunner(workers).Run(cmd.Context(), inputs)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, BatchFailure{RecordID: res.ID, Source: res.Label, Error: res.Err.Error()})
		}
	}

	scores := batch.Scores(results)
	rep := score.Aggregate(scores)

	log.Info().
		Int("scored", len(scores)).
		Int("failed", len(failures)).
		Float64("mean_score", rep.MeanScore).
		Dur("elapsed", time.Since(start)).
		Msg("Batch run completed")

	if format == "table" {
		out := report.RenderBatch(rep)
		if failed := report.RenderFailures(results); failed != "" {
			out += "\n" + failed
		}
		if outputPath == "" {
			fmt.Print(out)
			return nil
		}
		return os.WriteFile(outputPath, []byte(out), 0644)
	}

	return writeOutput(BatchOutput{
		Report:   rep,
		Scores:   scores,
		Failures: failures,
		Metadata: RunMetadata{
			ProcessedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}, outputPath)
}

// collectFiles resolves the record file list from either a manifest or
// a directory argument.
func collectFiles(args []string, manifestPath string) ([]string, int, error) {
	if manifestPath != "" {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read manifest: %w", err)
		}
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, 0, fmt.Errorf("failed to parse manifest: %w", err)
		}
		return m.Files, m.Workers, nil
	}

	if len(args) == 0 {
		return nil, 0, fmt.Errorf("provide a directory argument or --manifest")
	}

	matches, err := filepath.Glob(filepath.Join(args[0], "*.json"))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list record files: %w", err)
	}
	sort.Strings(matches)
	return matches, 0, nil
}
