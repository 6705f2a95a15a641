package core

import "sort"

// GroupTotal is summed hours for one normalized bucket. Label is the
// first-seen display form of the raw strings that merged into the bucket.
type GroupTotal struct {
	Key   string
	Label string
	Hours float64
	Count int
}

// MonthTotal is summed hours for one calendar month.
type MonthTotal struct {
	Month Month
	Hours float64
	Count int
}

// TrendPoint extends a month total with its month-over-month change.
type TrendPoint struct {
	Month  Month
	Hours  float64
	Change float64
}

// sumBy groups records by the comparison key of keyOf(record) and sums
// hours. Buckets appear in first-seen order; records with an empty key or
// non-positive hours are skipped.
func sumBy(records []TimesheetRecord, keyOf func(TimesheetRecord) string) []GroupTotal {
	index := map[string]int{}
	var out []GroupTotal
	for _, r := range records {
		raw := keyOf(r)
		key := Key(raw)
		if key == "" || r.Hours <= 0 {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, GroupTotal{Key: key, Label: Display(raw)})
		}
		out[i].Hours += r.Hours
		out[i].Count++
	}
	return out
}

// SumByDealCategory groups hours by deal/matter category.
func SumByDealCategory(records []TimesheetRecord) []GroupTotal {
	return sumBy(records, func(r TimesheetRecord) string { return r.DealCategory })
}

// SumByWorkCategory groups hours by work category.
func SumByWorkCategory(records []TimesheetRecord) []GroupTotal {
	return sumBy(records, func(r TimesheetRecord) string { return r.WorkCategory })
}

// SumByCompany groups hours by deal/matter name.
func SumByCompany(records []TimesheetRecord) []GroupTotal {
	return sumBy(records, func(r TimesheetRecord) string { return r.DealName })
}

// SumByTeam groups hours by team.
func SumByTeam(records []TimesheetRecord) []GroupTotal {
	return sumBy(records, func(r TimesheetRecord) string { return r.Team })
}

// SumByMonth sums hours per calendar month, sorted chronologically.
// Records with unparseable months or non-positive hours are skipped.
func SumByMonth(records []TimesheetRecord) []MonthTotal {
	totals := map[Month]*MonthTotal{}
	for _, r := range records {
		m, err := ParseMonth(r.Month)
		if err != nil || r.Hours <= 0 {
			continue
		}
		t, ok := totals[m]
		if !ok {
			t = &MonthTotal{Month: m}
			totals[m] = t
		}
		t.Hours += r.Hours
		t.Count++
	}
	out := make([]MonthTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// MonthlyTrend turns per-month totals into a series with month-over-month
// change. The first point, and any point following a zero month, reports 0.
func MonthlyTrend(records []TimesheetRecord) []TrendPoint {
	totals := SumByMonth(records)
	out := make([]TrendPoint, len(totals))
	for i, t := range totals {
		p := TrendPoint{Month: t.Month, Hours: t.Hours}
		if i > 0 {
			p.Change = MoMChange(t.Hours, totals[i-1].Hours)
		}
		out[i] = p
	}
	return out
}

// MoMChange is the month-over-month percentage change. A zero previous
// month yields 0; the "new entrant is +100%" rule belongs to the activity
// classifier only.
func MoMChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the upper-middle element of the sorted values: for even
// lengths this is sorted[n/2], not the average of the two middle elements.
// Median(10, 20) is therefore 20. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	tmp := make([]float64, len(values))
	copy(tmp, values)
	sort.Float64s(tmp)
	return tmp[len(tmp)/2]
}

// TotalHours sums positive hours over parseable records, matching what the
// grouped aggregations count.
func TotalHours(records []TimesheetRecord) float64 {
	var sum float64
	for _, r := range records {
		if r.Hours <= 0 {
			continue
		}
		sum += r.Hours
	}
	return sum
}

// ParticipantCount counts distinct normalized person names with any
// positive hours.
func ParticipantCount(records []TimesheetRecord) int {
	seen := map[string]struct{}{}
	for _, r := range records {
		key := Key(r.Name)
		if key == "" || r.Hours <= 0 {
			continue
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}
