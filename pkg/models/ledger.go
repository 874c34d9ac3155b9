package models

import "fmt"

// Ledger is the per-record provenance trail produced by normalization.
// MissingFields lists dotted field paths detected absent before any
// fallback ran; SyntheticFields lists the paths that actually received a
// generated value. A path never appears in SyntheticFields without also
// appearing in MissingFields. Warnings is an append-only sequence of
// human-readable advisories.
type Ledger struct {
	MissingFields   []string `json:"missingFields"`
	SyntheticFields []string `json:"syntheticFields"`
	Warnings        []string `json:"warnings"`
}

// NewLedger returns an empty ledger. The slices are initialized so an
// untouched ledger serializes as empty arrays rather than null, keeping
// the JSON output uniform across records.
func NewLedger() *Ledger {
	return &Ledger{
		MissingFields:   []string{},
		SyntheticFields: []string{},
		Warnings:        []string{},
	}
}

// MarkMissing records a field path as absent on input. Duplicate marks
// are ignored.
func (l *Ledger) MarkMissing(path string) {
	if !containsString(l.MissingFields, path) {
		l.MissingFields = append(l.MissingFields, path)
	}
}

// MarkSynthetic records that a fallback rule generated a value for the
// path. The path is recorded as missing first, so SyntheticFields stays
// a subset of MissingFields.
func (l *Ledger) MarkSynthetic(path string) {
	l.MarkMissing(path)
	if !containsString(l.SyntheticFields, path) {
		l.SyntheticFields = append(l.SyntheticFields, path)
	}
}

// Warnf appends a formatted advisory warning.
func (l *Ledger) Warnf(format string, args ...any) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

// HasSynthetic reports whether any field value was generated.
func (l *Ledger) HasSynthetic() bool {
	return len(l.SyntheticFields) > 0
}

func containsString(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
