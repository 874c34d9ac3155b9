package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"invoicegate/internal/normalize"
	"invoicegate/pkg/models"
)

func validRecord(number string) *models.InvoiceRecord {
	return &models.InvoiceRecord{
		Header: models.Header{Number: number, IssueDate: "2025-01-01", Currency: "EUR"},
		Seller: models.Party{Name: "Verkoop B.V."},
		Buyer:  models.Party{Name: "Jan Jansen"},
		Lines: []models.LineItem{{
			Quantity: decimal.NewFromInt(1),
			Price:    decimal.NewFromInt(100),
			VATRate:  decimal.NewFromInt(21),
		}},
	}
}

func TestRunner_MixedBatch(t *testing.T) {
	broken := validRecord("INV-2")
	broken.Seller.Name = ""

	inputs := []Input{
		{Label: "a.json", Record: validRecord("INV-1")},
		{Label: "b.json", Record: broken},
		{Label: "c.json", Record: validRecord("INV-3")},
	}

	results := NewRunner(2).Run(context.Background(), inputs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Results come back in input order regardless of worker scheduling.
	if results[0].ID != "INV-1" || results[2].ID != "INV-3" {
		t.Errorf("result order not preserved: %q, %q", results[0].ID, results[2].ID)
	}

	if results[1].Err == nil {
		t.Fatal("broken record did not carry an error")
	}
	if !errors.Is(results[1].Err, normalize.ErrMissingMandatoryField) {
		t.Errorf("expected mandatory-field error, got %v", results[1].Err)
	}
	if results[1].Score != nil || results[1].Ledger != nil {
		t.Error("failed record must not carry a score or ledger")
	}
	if results[1].ID != "INV-2" {
		t.Errorf("failed record should keep its invoice number as ID, got %q", results[1].ID)
	}

	for _, i := range []int{0, 2} {
		if results[i].Err != nil {
			t.Errorf("result %d unexpectedly failed: %v", i, results[i].Err)
		}
		if results[i].Score == nil || results[i].Ledger == nil || results[i].Record == nil {
			t.Errorf("result %d missing pipeline output", i)
		}
	}

	scores := Scores(results)
	if len(scores) != 2 {
		t.Errorf("expected 2 scores, got %d", len(scores))
	}
}

func TestRunner_MoreWorkersThanInputs(t *testing.T) {
	inputs := []Input{{Label: "a.json", Record: validRecord("INV-1")}}

	results := NewRunner(16).Run(context.Background(), inputs)

	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunner_FailedRecordWithoutNumberGetsGeneratedID(t *testing.T) {
	broken := validRecord("")

	results := NewRunner(1).Run(context.Background(), []Input{{Label: "x.json", Record: broken}})

	if results[0].Err == nil {
		t.Fatal("record without number should fail normalization")
	}
	if results[0].ID == "" {
		t.Error("failed record should still get a generated ID")
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []Input{
		{Label: "a.json", Record: validRecord("INV-1")},
		{Label: "b.json", Record: validRecord("INV-2")},
	}

	results := NewRunner(2).Run(ctx, inputs)

	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("result %d: expected context.Canceled, got %v", i, res.Err)
		}
	}
}

func TestRunner_ZeroWorkersRaisedToOne(t *testing.T) {
	results := NewRunner(0).Run(context.Background(), []Input{{Label: "a.json", Record: validRecord("INV-1")}})
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
}
