package core

import "testing"

func TestFilterRecords(t *testing.T) {
	records := []TimesheetRecord{
		{ID: "a", Team: "Legal", Month: "2025/01", DealCategory: "IPO", Hours: 2},
		{ID: "b", Team: "Legal", Month: "2025/02", DealCategory: "M&A Deal", Hours: 3},
		{ID: "c", Team: "Tax", Month: "2025/02", DealCategory: "IPO", Hours: 1},
		{ID: "d", Team: "Legal", Month: "broken", DealCategory: "IPO", Hours: 4},
		{ID: "e", Team: "Legal", Month: "2025/05", DealCategory: "IPO", Hours: 5},
	}
	q1 := PeriodSelection{Kind: Quarterly, Year: 2025, Value: 0}.Resolve(records, periodNow)

	got := FilterRecords(records, q1, FilterOptions{})
	wantIDs := []string{"a", "b", "c"} // d unparseable, e outside Q1; order preserved
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d records, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("index %d: got %q, want %q", i, got[i].ID, id)
		}
	}

	got = FilterRecords(records, q1, FilterOptions{Team: "legal"})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("team filter: got %v", got)
	}

	// Category matching goes through the comparison key.
	got = FilterRecords(records, q1, FilterOptions{DealCategory: "m&a   deal"})
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("category filter: got %v", got)
	}

	if got := FilterRecords(nil, q1, FilterOptions{}); len(got) != 0 {
		t.Fatalf("empty input: got %v", got)
	}
}
