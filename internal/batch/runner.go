// Package batch drives the normalize→score pipeline over a set of
// records. Each record's pipeline is independent, so the runner fans
// work out across a bounded pool of workers; per-record failures are
// captured in the result and never abort the batch.
package batch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicegate/internal/logger"
	"invoicegate/internal/normalize"
	"invoicegate/internal/score"
	"invoicegate/pkg/models"
)

// Input is one raw record queued for processing, with a caller-supplied
// label (typically the source file name) used in error reporting.
type Input struct {
	Label  string
	Record *models.InvoiceRecord
}

// Result is the outcome of one record's pipeline run. Exactly one of
// Score or Err is meaningful.
type Result struct {
	// ID identifies the record: the invoice number when normalization
	// got far enough to trust one, otherwise a generated identifier.
	ID    string
	Label string

	Record *models.InvoiceRecord
	Ledger *models.Ledger
	Score  *score.RecordScore
	Err    error
}

// Runner executes the pipeline with a fixed worker count.
type Runner struct {
	workers int
	norm    *normalize.Normalizer
	engine  *score.Engine
	log     zerolog.Logger
}

// NewRunner creates a Runner. A worker count below 1 is raised to 1.
func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		norm:    normalize.New(),
		engine:  score.NewEngine(),
		log:     logger.WithComponent("batch-runner"),
	}
}

// Run processes every input and returns one result per input, in input
// order. Records that fail normalization carry their error; the rest
// carry a normalized record, ledger and score. Cancelling the context
// stops unstarted work; results for unprocessed inputs carry the
// context error.
func (r *Runner) Run(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.process(inputs[i])
			}
		}()
	}

	for i := range inputs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{ID: uuid.NewString(), Label: inputs[i].Label, Err: err}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (r *Runner) process(in Input) Result {
	res := Result{Label: in.Label}

	rec, ledger, err := r.norm.Normalize(in.Record)
	if err != nil {
		res.Err = err
		res.ID = recordID(in.Record)
		r.log.Warn().
			Str("record_id", res.ID).
			Str("source", in.Label).
			Err(err).
			Msg("Record excluded from batch")
		return res
	}

	rs := r.engine.ScoreRecord(rec, ledger)
	res.ID = rs.RecordID
	res.Record = rec
	res.Ledger = ledger
	res.Score = &rs
	return res
}

// Scores collects the scores of the successful results, preserving
// order, for aggregation.
func Scores(results []Result) []score.RecordScore {
	out := make([]score.RecordScore, 0, len(results))
	for _, res := range results {
		if res.Err == nil && res.Score != nil {
			out = append(out, *res.Score)
		}
	}
	return out
}

// recordID falls back to a generated identifier so failed records can
// still be reported against something stable.
func recordID(rec *models.InvoiceRecord) string {
	if rec != nil && rec.Header.Number != "" {
		return rec.Header.Number
	}
	return uuid.NewString()
}
