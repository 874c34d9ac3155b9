// Package normalize implements the fallback-injection engine that turns
// a raw candidate invoice record into one satisfying the mandatory-field
// constraints of the downstream compliance validator.
//
// Every substitution is tracked in a provenance ledger returned next to
// the normalized record: fields that were absent on input, fields that
// received a synthetic value, and free-text advisory warnings. The input
// record is never mutated; normalization is idempotent, so re-running it
// on its own output changes nothing.
package normalize

import (
	"strconv"

	"github.com/rs/zerolog"

	"invoicegate/internal/logger"
	"invoicegate/pkg/models"
)

// rule is one fallback pass over the record. Rules run in a fixed order;
// later rules may depend on earlier rules' output.
type rule struct {
	name  string
	apply func(n *Normalizer, rec *models.InvoiceRecord, ledger *models.Ledger)
}

// Normalizer detects missing-but-required fields, injects compliant
// placeholder values, repairs inconsistent sub-fields and derives the
// financial totals from the line items.
type Normalizer struct {
	log   zerolog.Logger
	rules []rule
}

// New creates a Normalizer with the standard rule pipeline.
func New() *Normalizer {
	return &Normalizer{
		log: logger.WithComponent("normalizer"),
		rules: []rule{
			{name: "buyer-address", apply: (*Normalizer).completeBuyerAddress},
			{name: "electronic-address", apply: (*Normalizer).completeElectronicAddress},
			{name: "company-id-scheme", apply: (*Normalizer).completeCompanyIDScheme},
			{name: "buyer-reference", apply: (*Normalizer).completeBuyerReference},
			{name: "payment", apply: (*Normalizer).completePayment},
			{name: "totals", apply: (*Normalizer).reconcileTotals},
		},
	}
}

// Normalize transforms a raw candidate record into a normalized record
// plus its provenance ledger. The input is left untouched.
//
// A MandatoryFieldError is returned when the invoice number, issue
// date, seller name, buyer name or the line sequence is absent; an
// InputShapeError when the record violates the input contract. Both are
// fatal for this record only.
func (n *Normalizer) Normalize(rec *models.InvoiceRecord) (*models.InvoiceRecord, *models.Ledger, error) {
	if rec == nil {
		return nil, nil, NewInputShapeError("record", "invoice record")
	}
	if err := checkMandatory(rec); err != nil {
		return nil, nil, err
	}
	if err := checkShape(rec); err != nil {
		return nil, nil, err
	}

	out := rec.Clone()
	ledger := models.NewLedger()

	assignLineIDs(out)

	for _, r := range n.rules {
		r.apply(n, out, ledger)
	}

	n.log.Debug().
		Str("invoice_number", out.Header.Number).
		Strs("missing_fields", ledger.MissingFields).
		Strs("synthetic_fields", ledger.SyntheticFields).
		Int("warnings", len(ledger.Warnings)).
		Msg("Record normalized")

	return out, ledger, nil
}

// checkMandatory rejects records whose identity cannot be completed by
// any fallback rule.
func checkMandatory(rec *models.InvoiceRecord) error {
	if rec.Header.Number == "" {
		return NewMandatoryFieldError("header.number")
	}
	if rec.Header.IssueDate == "" {
		return NewMandatoryFieldError("header.issueDate")
	}
	if rec.Seller.Name == "" {
		return NewMandatoryFieldError("seller.name")
	}
	if rec.Buyer.Name == "" {
		return NewMandatoryFieldError("buyer.name")
	}
	if len(rec.Lines) == 0 {
		return NewMandatoryFieldError("lines")
	}
	return nil
}

// checkShape enforces the numeric and uniqueness preconditions of the
// input contract. Violations are caller errors, never coerced.
func checkShape(rec *models.InvoiceRecord) error {
	seen := make(map[string]struct{}, len(rec.Lines))
	for i, li := range rec.Lines {
		if li.Quantity.Sign() <= 0 {
			return NewInputShapeError(linePath(i, "quantity"), "positive number")
		}
		if li.VATRate.Sign() < 0 {
			return NewInputShapeError(linePath(i, "vatRate"), "non-negative number")
		}
		if li.BaseQuantity != nil && li.BaseQuantity.Sign() <= 0 {
			return NewInputShapeError(linePath(i, "baseQuantity"), "positive number")
		}
		if li.ID != "" {
			if _, dup := seen[li.ID]; dup {
				return NewInputShapeError(linePath(i, "id"), "unique line identifier")
			}
			seen[li.ID] = struct{}{}
		}
	}
	return nil
}

// assignLineIDs gives lines without an identifier a sequential one,
// starting at 1 in input order. Supplied identifiers are kept.
func assignLineIDs(rec *models.InvoiceRecord) {
	next := 1
	taken := make(map[string]struct{}, len(rec.Lines))
	for _, li := range rec.Lines {
		if li.ID != "" {
			taken[li.ID] = struct{}{}
		}
	}
	for i := range rec.Lines {
		if rec.Lines[i].ID != "" {
			continue
		}
		for {
			candidate := strconv.Itoa(next)
			next++
			if _, used := taken[candidate]; !used {
				rec.Lines[i].ID = candidate
				break
			}
		}
	}
}

func linePath(i int, field string) string {
	return "lines[" + strconv.Itoa(i) + "]." + field
}
