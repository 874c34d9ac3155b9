package normalize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"invoicegate/pkg/models"
)

// minimalRecord is the smallest record that passes the mandatory-input
// gate: identifiers, both party names, one line.
func minimalRecord() *models.InvoiceRecord {
	return &models.InvoiceRecord{
		Header: models.Header{Number: "INV-1", IssueDate: "2025-01-01", Currency: "EUR"},
		Seller: models.Party{Name: "Verkoop B.V."},
		Buyer:  models.Party{Name: "Jan Jansen"},
		Lines: []models.LineItem{{
			Name:     "Consultancy",
			Quantity: decimal.NewFromInt(1),
			Price:    decimal.NewFromInt(100),
			VATRate:  decimal.NewFromInt(21),
		}},
	}
}

func TestNormalize_MinimalTerminalRecord(t *testing.T) {
	rec, ledger, err := New().Normalize(minimalRecord())
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	// Buyer address fallback
	if rec.Buyer.Address.Street != PlaceholderStreet {
		t.Errorf("expected placeholder street %q, got %q", PlaceholderStreet, rec.Buyer.Address.Street)
	}
	if rec.Buyer.Address.City != PlaceholderCity || rec.Buyer.Address.PostalCode != PlaceholderPostalCode {
		t.Errorf("expected placeholder city/postal code, got %q %q", rec.Buyer.Address.City, rec.Buyer.Address.PostalCode)
	}

	// Electronic address fallback
	if rec.Buyer.ElectronicAddress != PlaceholderEmail {
		t.Errorf("expected placeholder electronic address, got %q", rec.Buyer.ElectronicAddress)
	}
	if rec.Buyer.ElectronicAddressScheme != SchemeEmail {
		t.Errorf("expected email scheme %q, got %q", SchemeEmail, rec.Buyer.ElectronicAddressScheme)
	}

	// Buyer reference falls back to the invoice number
	if rec.Header.BuyerReference != "INV-1" {
		t.Errorf("expected buyer reference INV-1, got %q", rec.Header.BuyerReference)
	}

	// No due date means terminal, so payment placeholders are injected
	if rec.Payment == nil {
		t.Fatal("expected payment placeholder for terminal record")
	}
	if rec.Payment.IBAN != PlaceholderIBAN || rec.Payment.BIC != PlaceholderBIC {
		t.Errorf("expected placeholder IBAN/BIC, got %q %q", rec.Payment.IBAN, rec.Payment.BIC)
	}
	if rec.Payment.MeansCode != MeansCreditTransfer {
		t.Errorf("expected means code %q, got %q", MeansCreditTransfer, rec.Payment.MeansCode)
	}

	// Derived totals
	assertDecimal(t, "taxExclusive", rec.Totals.TaxExclusive, "100")
	assertDecimal(t, "taxAmount", rec.Totals.TaxAmount, "21")
	assertDecimal(t, "taxInclusive", rec.Totals.TaxInclusive, "121")
	assertDecimal(t, "payable", rec.Totals.Payable, "121")

	wantMissing := []string{"buyer.address", "buyer.electronicAddress", "header.buyerReference", "payment"}
	if !reflect.DeepEqual(ledger.MissingFields, wantMissing) {
		t.Errorf("missing fields = %v, want %v", ledger.MissingFields, wantMissing)
	}
	if !reflect.DeepEqual(ledger.SyntheticFields, wantMissing) {
		t.Errorf("synthetic fields = %v, want %v", ledger.SyntheticFields, wantMissing)
	}
}

func TestNormalize_NonTerminalSkipsPaymentFallback(t *testing.T) {
	raw := minimalRecord()
	raw.Header.DueDate = "2025-02-01"

	rec, ledger, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	if rec.Payment != nil {
		t.Errorf("non-terminal record received payment fallback: %+v", rec.Payment)
	}
	for _, path := range ledger.SyntheticFields {
		if path == "payment" {
			t.Error("payment marked synthetic for non-terminal record")
		}
	}
}

func TestNormalize_StatedTotalMismatchWarnsOnly(t *testing.T) {
	raw := minimalRecord()
	stated := decimal.RequireFromString("105.00")
	raw.Totals.TaxExclusive = &stated

	rec, ledger, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("mismatched total should not be an error: %v", err)
	}

	assertDecimal(t, "taxExclusive", rec.Totals.TaxExclusive, "105")
	// Tax amount still derived from the lines, gross from the stated net.
	assertDecimal(t, "taxAmount", rec.Totals.TaxAmount, "21")
	assertDecimal(t, "taxInclusive", rec.Totals.TaxInclusive, "126")

	found := false
	for _, w := range ledger.Warnings {
		if w == "stated net total 105.00 differs from line sum 100.00 by 5.00" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected totals mismatch warning, got %v", ledger.Warnings)
	}
}

func TestNormalize_MissingMandatoryFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *models.InvoiceRecord)
		wantPath string
	}{
		{"missing number", func(r *models.InvoiceRecord) { r.Header.Number = "" }, "header.number"},
		{"missing issue date", func(r *models.InvoiceRecord) { r.Header.IssueDate = "" }, "header.issueDate"},
		{"missing seller name", func(r *models.InvoiceRecord) { r.Seller.Name = "" }, "seller.name"},
		{"missing buyer name", func(r *models.InvoiceRecord) { r.Buyer.Name = "" }, "buyer.name"},
		{"no lines", func(r *models.InvoiceRecord) { r.Lines = nil }, "lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimalRecord()
			tt.mutate(raw)

			rec, ledger, err := New().Normalize(raw)
			if rec != nil || ledger != nil {
				t.Error("failed normalization must not produce a record or ledger")
			}
			if !errors.Is(err, ErrMissingMandatoryField) {
				t.Fatalf("expected ErrMissingMandatoryField, got %v", err)
			}
			var mfe *MandatoryFieldError
			if !errors.As(err, &mfe) || mfe.Path != tt.wantPath {
				t.Errorf("expected path %q, got %v", tt.wantPath, err)
			}
		})
	}
}

func TestNormalize_InvalidInputShape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.InvoiceRecord)
	}{
		{"zero quantity", func(r *models.InvoiceRecord) { r.Lines[0].Quantity = decimal.Zero }},
		{"negative quantity", func(r *models.InvoiceRecord) { r.Lines[0].Quantity = decimal.NewFromInt(-1) }},
		{"negative vat rate", func(r *models.InvoiceRecord) { r.Lines[0].VATRate = decimal.NewFromInt(-21) }},
		{"duplicate line ids", func(r *models.InvoiceRecord) {
			r.Lines[0].ID = "1"
			r.Lines = append(r.Lines, models.LineItem{
				ID: "1", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(5),
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimalRecord()
			tt.mutate(raw)

			_, _, err := New().Normalize(raw)
			if !errors.Is(err, ErrInvalidInputShape) {
				t.Fatalf("expected ErrInvalidInputShape, got %v", err)
			}
		})
	}
}

func TestNormalize_NilRecord(t *testing.T) {
	_, _, err := New().Normalize(nil)
	if !errors.Is(err, ErrInvalidInputShape) {
		t.Fatalf("expected ErrInvalidInputShape for nil record, got %v", err)
	}
}

func TestNormalize_AssignsLineIDs(t *testing.T) {
	raw := minimalRecord()
	raw.Lines = append(raw.Lines, models.LineItem{
		Name: "Second", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10), VATRate: decimal.NewFromInt(21),
	})
	raw.Lines = append(raw.Lines, models.LineItem{
		ID: "2", Name: "Keeps its id", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(5), VATRate: decimal.NewFromInt(21),
	})

	rec, _, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	if rec.Lines[0].ID != "1" {
		t.Errorf("first line id = %q, want 1", rec.Lines[0].ID)
	}
	// "2" is taken by the third line, so the second gets the next free one.
	if rec.Lines[1].ID != "3" {
		t.Errorf("second line id = %q, want 3", rec.Lines[1].ID)
	}
	if rec.Lines[2].ID != "2" {
		t.Errorf("third line id = %q, want 2 (supplied)", rec.Lines[2].ID)
	}
}

func TestNormalize_InputNotMutated(t *testing.T) {
	raw := minimalRecord()

	_, _, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	if raw.Buyer.Address.Street != "" || raw.Payment != nil || raw.Totals.TaxExclusive != nil {
		t.Error("Normalize mutated its input record")
	}
	if raw.Lines[0].ID != "" {
		t.Error("Normalize assigned line ids on the input record")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first, ledger1, err := New().Normalize(minimalRecord())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	second, ledger2, err := New().Normalize(first)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass changed values:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(ledger2.MissingFields) != 0 || len(ledger2.SyntheticFields) != 0 || len(ledger2.Warnings) != 0 {
		t.Errorf("second pass added ledger entries: %+v", ledger2)
	}
	if len(ledger1.SyntheticFields) == 0 {
		t.Error("first pass should have synthesized fields")
	}
}

func TestNormalize_IdempotentWithHalfCentPrices(t *testing.T) {
	raw := minimalRecord()
	raw.Lines = nil
	for i := 0; i < 6; i++ {
		raw.Lines = append(raw.Lines, models.LineItem{
			Name:     "Verzendkosten",
			Quantity: decimal.NewFromInt(1),
			Price:    decimal.RequireFromString("10.005"),
			VATRate:  decimal.NewFromInt(21),
		})
	}

	first, _, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	// The recorded total must equal the sum of the persisted line nets,
	// not a differently-rounded parallel computation.
	lineSum := decimal.Zero
	for _, li := range first.Lines {
		lineSum = lineSum.Add(*li.NetAmount)
	}
	assertDecimal(t, "taxExclusive", first.Totals.TaxExclusive, lineSum.String())

	second, ledger2, err := New().Normalize(first)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass changed values:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	for _, w := range ledger2.Warnings {
		t.Errorf("second pass emitted warning: %q", w)
	}
}

func TestNormalize_ProvenanceMonotonicity(t *testing.T) {
	records := []*models.InvoiceRecord{
		minimalRecord(),
		func() *models.InvoiceRecord {
			r := minimalRecord()
			r.Header.DueDate = "2025-03-01"
			r.Buyer.Address = models.Address{Street: "Keizersgracht 1", City: "Amsterdam", PostalCode: "1015CJ", Country: "NL"}
			return r
		}(),
	}

	for _, raw := range records {
		_, ledger, err := New().Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize returned unexpected error: %v", err)
		}
		missing := make(map[string]bool, len(ledger.MissingFields))
		for _, m := range ledger.MissingFields {
			missing[m] = true
		}
		for _, s := range ledger.SyntheticFields {
			if !missing[s] {
				t.Errorf("synthetic field %q missing from MissingFields %v", s, ledger.MissingFields)
			}
		}
	}
}

func TestNormalize_TotalsClosure(t *testing.T) {
	raw := minimalRecord()
	raw.Lines = append(raw.Lines, models.LineItem{
		Name: "Hosting", Quantity: decimal.RequireFromString("3"), Price: decimal.RequireFromString("19.99"),
		VATRate: decimal.NewFromInt(21),
	})

	rec, _, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	lineSum := decimal.Zero
	for _, li := range rec.Lines {
		lineSum = lineSum.Add(li.Quantity.Mul(li.Price))
	}
	diff := rec.Totals.TaxExclusive.Sub(lineSum).Abs()
	if diff.GreaterThan(TotalsTolerance) {
		t.Errorf("taxExclusive %s deviates from line sum %s by %s", rec.Totals.TaxExclusive, lineSum, diff)
	}

	gross := rec.Totals.TaxExclusive.Add(*rec.Totals.TaxAmount)
	if !rec.Totals.TaxInclusive.Equal(gross) {
		t.Errorf("taxInclusive %s != taxExclusive + taxAmount %s", rec.Totals.TaxInclusive, gross)
	}
	if !rec.Totals.Payable.Equal(gross) {
		t.Errorf("payable %s != taxExclusive + taxAmount %s", rec.Totals.Payable, gross)
	}
}

func TestNormalize_TaxBreakdownDerived(t *testing.T) {
	raw := minimalRecord()
	raw.Lines = append(raw.Lines,
		models.LineItem{Name: "Books", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10), VATRate: decimal.NewFromInt(9)},
		models.LineItem{Name: "More consultancy", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(50), VATRate: decimal.NewFromInt(21)},
	)

	rec, _, err := New().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned unexpected error: %v", err)
	}

	if len(rec.TaxBreakdown) != 2 {
		t.Fatalf("expected 2 tax subtotals, got %d", len(rec.TaxBreakdown))
	}
	// First-seen order: 21% before 9%.
	assertDecimalValue(t, "subtotal[0].taxable", rec.TaxBreakdown[0].TaxableAmount, "150")
	assertDecimalValue(t, "subtotal[0].tax", rec.TaxBreakdown[0].TaxAmount, "31.5")
	assertDecimalValue(t, "subtotal[1].taxable", rec.TaxBreakdown[1].TaxableAmount, "20")
	assertDecimalValue(t, "subtotal[1].tax", rec.TaxBreakdown[1].TaxAmount, "1.8")
}

func assertDecimal(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s is nil, want %s", name, want)
	}
	assertDecimalValue(t, name, *got, want)
}

func assertDecimalValue(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
