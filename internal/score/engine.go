// Package score computes deterministic, explainable completeness scores
// for normalized invoice records, and aggregates them into batch-level
// statistics.
package score

import (
	"math"

	"github.com/rs/zerolog"

	"invoicegate/internal/logger"
	"invoicegate/pkg/models"
)

// Tier weights on a section's 100-point scale. When a section configures
// no fields for a tier, the remaining tier weights are renormalized so a
// complete section always reaches 100.
const (
	weightCritical  = 60.0
	weightImportant = 30.0
	weightOptional  = 10.0
)

// Overall weights per section. Buyer data dominates because it is the
// most frequently incomplete and the most consequential for compliance.
const (
	overallHeader  = 0.15
	overallSeller  = 0.25
	overallBuyer   = 0.30
	overallLines   = 0.20
	overallPayment = 0.10
)

// SectionScore is the completeness score of one logical section.
// Missing lists the absent critical and important fields as dotted paths
// prefixed with the section name; optional fields are never reported.
type SectionScore struct {
	Name    string   `json:"name"`
	Score   float64  `json:"score"`
	Missing []string `json:"missing,omitempty"`
}

// RecordScore is the full scoring result for one record.
type RecordScore struct {
	RecordID string       `json:"recordId"`
	Header   SectionScore `json:"header"`
	Seller   SectionScore `json:"seller"`
	Buyer    SectionScore `json:"buyer"`
	Lines    SectionScore `json:"lines"`
	Payment  SectionScore `json:"payment"`

	// Overall is the weighted sum of the section scores, rounded to one
	// decimal place.
	Overall float64 `json:"overall"`

	// Missing is the concatenation of the section missing lists.
	Missing []string `json:"missing,omitempty"`

	// SyntheticFields is carried over from the record's provenance
	// ledger for batch aggregation.
	SyntheticFields []string `json:"syntheticFields,omitempty"`
}

// Engine scores normalized records. Scoring is total: any structurally
// valid normalized record gets a score, there are no error paths.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a score engine.
func NewEngine() *Engine {
	return &Engine{log: logger.WithComponent("score-engine")}
}

// ScoreRecord computes the five section scores and the weighted overall
// score for a normalized record and its ledger.
func (e *Engine) ScoreRecord(rec *models.InvoiceRecord, ledger *models.Ledger) RecordScore {
	rs := RecordScore{
		RecordID: rec.Header.Number,
		Header:   scoreSection(headerSection, rec),
		Seller:   scoreSection(sellerSection, rec),
		Buyer:    scoreSection(buyerSection, rec),
		Lines:    scoreLines(rec),
		Payment:  scoreSection(paymentSection, rec),
	}
	if ledger != nil {
		rs.SyntheticFields = ledger.SyntheticFields
	}

	for _, s := range []SectionScore{rs.Header, rs.Seller, rs.Buyer, rs.Lines, rs.Payment} {
		rs.Missing = append(rs.Missing, s.Missing...)
	}

	rs.Overall = round1(overallHeader*rs.Header.Score +
		overallSeller*rs.Seller.Score +
		overallBuyer*rs.Buyer.Score +
		overallLines*rs.Lines.Score +
		overallPayment*rs.Payment.Score)

	e.log.Debug().
		Str("record_id", rs.RecordID).
		Float64("overall", rs.Overall).
		Strs("missing", rs.Missing).
		Msg("Record scored")

	return rs
}

// scoreSection applies the tiered weighting to one configured section.
// Empty tiers contribute no term; with every tier empty the section
// passes vacuously at 100.
func scoreSection(spec sectionSpec, rec *models.InvoiceRecord) SectionScore {
	out := SectionScore{Name: spec.name}

	num, den := 0.0, 0.0
	count := func(weight float64, probes []fieldProbe, report bool) {
		if len(probes) == 0 {
			return
		}
		present := 0
		for _, p := range probes {
			if p.present(rec) {
				present++
			} else if report {
				out.Missing = append(out.Missing, spec.name+"."+p.name)
			}
		}
		num += weight * float64(present) / float64(len(probes))
		den += weight
	}

	count(weightCritical, spec.critical, true)
	count(weightImportant, spec.important, true)
	count(weightOptional, spec.optional, false)

	if den == 0 {
		out.Score = 100
		return out
	}
	out.Score = clamp(100 * num / den)
	return out
}

// scoreLines applies the non-tiered lines heuristic: itemization,
// descriptions, and complete pricing each earn a fixed band.
func scoreLines(rec *models.InvoiceRecord) SectionScore {
	out := SectionScore{Name: "lines"}
	if len(rec.Lines) == 0 {
		out.Missing = []string{"lines"}
		return out
	}

	score := 20.0
	if len(rec.Lines) > 1 {
		score = 40
	}

	described := false
	allPriced := true
	for i := range rec.Lines {
		if rec.Lines[i].Description != "" {
			described = true
		}
		if rec.Lines[i].Quantity.IsZero() || rec.Lines[i].Price.IsZero() {
			allPriced = false
		}
	}

	if described {
		score += 30
	} else {
		score += 10
	}
	if allPriced {
		score += 30
	} else {
		score += 15
	}

	out.Score = clamp(score)
	return out
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
