// Package report renders batch results for human consumption. The
// structured JSON report stays the machine contract; this is only the
// console view.
package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"invoicegate/internal/batch"
	"invoicegate/internal/score"
)

// RenderBatch formats a batch report as aligned markdown tables: a
// summary block and the top missing-field frequencies.
func RenderBatch(rep score.BatchReport) string {
	var b strings.Builder

	b.WriteString("## Batch summary\n\n")
	writeTable(&b, [][]string{
		{"Metric", "Value"},
		{"Records scored", fmt.Sprintf("%d", rep.Records)},
		{"Mean score", fmt.Sprintf("%.1f", rep.MeanScore)},
		{"Records with synthetic fields", fmt.Sprintf("%d (%.1f%%)", rep.SyntheticRecords, rep.SyntheticPct)},
		{"Mean synthetic fields per record", fmt.Sprintf("%.1f", rep.MeanSyntheticFields)},
	})

	if len(rep.TopMissing) > 0 {
		b.WriteString("\n## Most frequent missing fields\n\n")
		rows := [][]string{{"Field", "Count"}}
		for _, fc := range rep.TopMissing {
			rows = append(rows, []string{fc.Field, fmt.Sprintf("%d", fc.Count)})
		}
		writeTable(&b, rows)
	}

	return b.String()
}

// RenderFailures lists the records excluded from the batch with their
// errors.
func RenderFailures(results []batch.Result) string {
	var failed [][]string
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, []string{res.ID, res.Label, res.Err.Error()})
		}
	}
	if len(failed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Failed records\n\n")
	writeTable(&b, append([][]string{{"Record", "Source", "Error"}}, failed...))
	return b.String()
}

// writeTable writes rows as a markdown table with width-aware cell
// padding; the first row is the header.
func writeTable(b *strings.Builder, rows [][]string) {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString(strings.Repeat("-", widths[i]+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
}
