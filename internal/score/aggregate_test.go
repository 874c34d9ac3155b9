package score

import (
	"reflect"
	"testing"
)

func TestAggregate_Empty(t *testing.T) {
	rep := Aggregate(nil)
	if rep.Records != 0 || rep.MeanScore != 0 || rep.SyntheticRecords != 0 {
		t.Errorf("empty batch produced non-zero report: %+v", rep)
	}
}

func TestAggregate_Statistics(t *testing.T) {
	records := []RecordScore{
		{RecordID: "a", Overall: 80, SyntheticFields: []string{"buyer.address", "payment"}, Missing: []string{"buyer.country", "header.notes"}},
		{RecordID: "b", Overall: 90, Missing: []string{"header.notes"}},
		{RecordID: "c", Overall: 100, SyntheticFields: []string{"payment"}, Missing: []string{"payment.accountName"}},
	}

	rep := Aggregate(records)

	if rep.Records != 3 {
		t.Errorf("records = %d, want 3", rep.Records)
	}
	if rep.MeanScore != 90 {
		t.Errorf("mean score = %v, want 90", rep.MeanScore)
	}
	if rep.SyntheticRecords != 2 {
		t.Errorf("synthetic records = %d, want 2", rep.SyntheticRecords)
	}
	if rep.SyntheticPct != 66.7 {
		t.Errorf("synthetic pct = %v, want 66.7", rep.SyntheticPct)
	}
	if rep.MeanSyntheticFields != 1 {
		t.Errorf("mean synthetic fields = %v, want 1", rep.MeanSyntheticFields)
	}

	// header.notes appears twice; ties in first-seen order after it.
	want := []FieldCount{
		{"header.notes", 2},
		{"buyer.country", 1},
		{"payment.accountName", 1},
	}
	if !reflect.DeepEqual(rep.MissingFrequency, want) {
		t.Errorf("frequency = %v, want %v", rep.MissingFrequency, want)
	}
	if !reflect.DeepEqual(rep.TopMissing, want) {
		t.Errorf("top missing = %v, want %v", rep.TopMissing, want)
	}
}

func TestAggregate_TopMissingTruncated(t *testing.T) {
	records := []RecordScore{{
		RecordID: "a",
		Overall:  50,
		Missing:  []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7"},
	}}

	rep := Aggregate(records)

	if len(rep.TopMissing) != 5 {
		t.Errorf("top missing length = %d, want 5", len(rep.TopMissing))
	}
	if len(rep.MissingFrequency) != 7 {
		t.Errorf("full frequency length = %d, want 7", len(rep.MissingFrequency))
	}
	// Equal counts keep first-seen order.
	if rep.TopMissing[0].Field != "f1" || rep.TopMissing[4].Field != "f5" {
		t.Errorf("unexpected truncation order: %v", rep.TopMissing)
	}
}

func TestAggregate_DuplicatePathsWithinRecord(t *testing.T) {
	records := []RecordScore{
		{RecordID: "a", Overall: 10, Missing: []string{"x", "x"}},
	}
	rep := Aggregate(records)
	if rep.MissingFrequency[0].Count != 2 {
		t.Errorf("duplicate paths should each count: %v", rep.MissingFrequency)
	}
}
