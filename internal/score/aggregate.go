package score

import "sort"

// FieldCount is one row of the missing-field frequency table.
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// BatchReport aggregates per-record scores into batch-level statistics.
type BatchReport struct {
	Records   int     `json:"records"`
	MeanScore float64 `json:"meanScore"`

	// SyntheticRecords counts records carrying at least one synthetic
	// field; SyntheticPct is the same as a percentage of the batch.
	SyntheticRecords    int     `json:"syntheticRecords"`
	SyntheticPct        float64 `json:"syntheticPct"`
	MeanSyntheticFields float64 `json:"meanSyntheticFields"`

	// TopMissing is the frequency table truncated for summary display;
	// MissingFrequency is the full table. Both are sorted descending by
	// count, ties in first-seen order.
	TopMissing       []FieldCount `json:"topMissing,omitempty"`
	MissingFrequency []FieldCount `json:"missingFrequency,omitempty"`
}

// topMissingLimit caps the summary view of the frequency table.
const topMissingLimit = 5

// Aggregate computes batch statistics over the complete set of
// per-record scores. It must not be called until every record's result
// is available; there is no streaming accumulation.
func Aggregate(records []RecordScore) BatchReport {
	rep := BatchReport{Records: len(records)}
	if len(records) == 0 {
		return rep
	}

	var scoreSum float64
	var syntheticSum int
	counts := make(map[string]int)
	var order []string

	for _, rs := range records {
		scoreSum += rs.Overall
		if len(rs.SyntheticFields) > 0 {
			rep.SyntheticRecords++
		}
		syntheticSum += len(rs.SyntheticFields)

		for _, path := range rs.Missing {
			if _, seen := counts[path]; !seen {
				order = append(order, path)
			}
			counts[path]++
		}
	}

	n := float64(len(records))
	rep.MeanScore = round1(scoreSum / n)
	rep.SyntheticPct = round1(100 * float64(rep.SyntheticRecords) / n)
	rep.MeanSyntheticFields = round1(float64(syntheticSum) / n)

	rep.MissingFrequency = make([]FieldCount, 0, len(order))
	for _, path := range order {
		rep.MissingFrequency = append(rep.MissingFrequency, FieldCount{Field: path, Count: counts[path]})
	}
	sort.SliceStable(rep.MissingFrequency, func(i, j int) bool {
		return rep.MissingFrequency[i].Count > rep.MissingFrequency[j].Count
	})

	limit := topMissingLimit
	if len(rep.MissingFrequency) < limit {
		limit = len(rep.MissingFrequency)
	}
	rep.TopMissing = rep.MissingFrequency[:limit]

	return rep
}
