package core

import "testing"

// rec builds a minimal record for classifier tests.
func rec(month, name, category string, hours float64) TimesheetRecord {
	return TimesheetRecord{Month: month, DealName: name, DealCategory: category, Name: "p", Hours: hours}
}

func findActivity(t *testing.T, list []CompanyActivity, name string) CompanyActivity {
	t.Helper()
	for _, a := range list {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("company %q not found in %v", name, list)
	return CompanyActivity{}
}

func TestClassifyEmptyDataset(t *testing.T) {
	if got := ClassifyActivity(nil); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestClassifyNewCompany(t *testing.T) {
	// Dataset spans Jan..Jun; recent window is Apr..Jun. Acme only ever
	// appears in June, so it is new.
	records := []TimesheetRecord{
		rec("2025/01", "Baseline", "Corporate", 10),
		rec("2025/02", "Baseline", "Corporate", 10),
		rec("2025/03", "Baseline", "Corporate", 10),
		rec("2025/04", "Baseline", "Corporate", 10),
		rec("2025/05", "Baseline", "Corporate", 10),
		rec("2025/06", "Baseline", "Corporate", 10),
		rec("2025/06", "Acme", "IPO", 50),
	}
	got := findActivity(t, ClassifyActivity(records), "Acme")
	if got.Status != StatusNew {
		t.Fatalf("status %q, want new", got.Status)
	}
	if !almostEqual(got.GrowthRate, 100) {
		t.Fatalf("growth %v, want 100", got.GrowthRate)
	}
	if got.FirstAppearance != (Month{2025, 6}) || got.LastActivity != (Month{2025, 6}) {
		t.Fatalf("appearance %v..%v", got.FirstAppearance, got.LastActivity)
	}
}

func TestClassifyHotCompany(t *testing.T) {
	// Acme has an older baseline in January, then a June spike: large
	// positive growth, first appearance outside the recent window -> hot.
	records := []TimesheetRecord{
		rec("2025/01", "Baseline", "Corporate", 10),
		rec("2025/02", "Baseline", "Corporate", 10),
		rec("2025/03", "Baseline", "Corporate", 10),
		rec("2025/04", "Baseline", "Corporate", 10),
		rec("2025/05", "Baseline", "Corporate", 10),
		rec("2025/06", "Baseline", "Corporate", 10),
		rec("2025/01", "Acme", "IPO", 10),
		rec("2025/06", "Acme", "IPO", 50),
	}
	got := findActivity(t, ClassifyActivity(records), "Acme")
	if got.Status != StatusHot {
		t.Fatalf("status %q, want hot", got.Status)
	}
	// recentAvg=50 over one active month, olderAvg=10: +400%.
	if !almostEqual(got.GrowthRate, 400) {
		t.Fatalf("growth %v, want 400", got.GrowthRate)
	}
}

func TestClassifyInactiveBeatsHistory(t *testing.T) {
	// Zero hours in the recent window with nonzero history must be
	// inactive, never new and never hot.
	records := []TimesheetRecord{
		rec("2025/01", "Ghost", "IPO", 30),
		rec("2025/02", "Ghost", "IPO", 20),
		rec("2025/04", "Other", "IPO", 5),
		rec("2025/05", "Other", "IPO", 5),
		rec("2025/06", "Other", "IPO", 5),
	}
	got := findActivity(t, ClassifyActivity(records), "Ghost")
	if got.Status != StatusInactive {
		t.Fatalf("status %q, want inactive", got.Status)
	}
	if got.RecentHours != 0 {
		t.Fatalf("recent hours %v, want 0", got.RecentHours)
	}
}

func TestClassifyStatusThresholds(t *testing.T) {
	// Six distinct months; recent = Apr..Jun, older = Jan..Mar. Every
	// company is active in all six months so growth comes out exactly at
	// the chosen averages.
	build := func(name string, olderPerMonth, recentPerMonth float64) []TimesheetRecord {
		var out []TimesheetRecord
		for m := 1; m <= 3; m++ {
			out = append(out, rec((Month{2025, m}).String(), name, "Corporate", olderPerMonth))
		}
		for m := 4; m <= 6; m++ {
			out = append(out, rec((Month{2025, m}).String(), name, "Corporate", recentPerMonth))
		}
		return out
	}

	var records []TimesheetRecord
	records = append(records, build("Hot", 10, 20)...)      // +100%
	records = append(records, build("Rising", 10, 13)...)   // +30%
	records = append(records, build("Stable", 10, 11)...)   // +10%
	records = append(records, build("Declining", 10, 5)...) // -50%
	records = append(records, build("Edge", 10, 12)...)     // +20% exactly: stable

	list := ClassifyActivity(records)
	want := map[string]ActivityStatus{
		"Hot":       StatusHot,
		"Rising":    StatusRising,
		"Stable":    StatusStable,
		"Declining": StatusDeclining,
		"Edge":      StatusStable,
	}
	for name, status := range want {
		if got := findActivity(t, list, name); got.Status != status {
			t.Fatalf("%s: status %q, want %q", name, got.Status, status)
		}
	}
}

func TestClassifyMergesCompanySpellings(t *testing.T) {
	records := []TimesheetRecord{
		rec("2025/01", "Acme Corp", "IPO", 5),
		rec("2025/02", "acme   corp", "IPO", 7),
	}
	list := ClassifyActivity(records)
	if len(list) != 1 {
		t.Fatalf("got %d companies, want 1: %v", len(list), list)
	}
	if list[0].Name != "Acme Corp" { // first-seen display form
		t.Fatalf("name %q", list[0].Name)
	}
	if !almostEqual(list[0].TotalHours, 12) {
		t.Fatalf("total %v", list[0].TotalHours)
	}
}

func TestClassifyDropsBadRows(t *testing.T) {
	records := []TimesheetRecord{
		rec("garbage", "Acme", "IPO", 10),
		rec("2025/06", "Acme", "IPO", -3),
		rec("2025/06", "", "IPO", 8),
	}
	if got := ClassifyActivity(records); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestRankByMomentum(t *testing.T) {
	// Big: growth 60 (capped contribution 24) and max recent hours ->
	// score 24+60=84. Small: growth 300 capped at 100 (40) plus 6 -> 46.
	list := []CompanyActivity{
		{Name: "Big", Status: StatusRising, GrowthRate: 60, RecentHours: 100},
		{Name: "Small", Status: StatusRising, GrowthRate: 300, RecentHours: 10},
		{Name: "Off", Status: StatusDeclining, GrowthRate: -90, RecentHours: 50},
	}
	got := RankByMomentum(list, StatusRising)
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	if got[0].Name != "Big" || got[1].Name != "Small" {
		t.Fatalf("order: %v, %v", got[0].Name, got[1].Name)
	}

	// Declining ranking uses the growth magnitude.
	got = RankByMomentum(list, StatusDeclining)
	if len(got) != 1 || got[0].Name != "Off" {
		t.Fatalf("declining: %v", got)
	}

	if got := RankByMomentum(nil, StatusRising); len(got) != 0 {
		t.Fatalf("empty input: %v", got)
	}
}
