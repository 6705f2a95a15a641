package core

import "sort"

type ActivityStatus string

const (
	StatusHot       ActivityStatus = "hot"
	StatusRising    ActivityStatus = "rising"
	StatusStable    ActivityStatus = "stable"
	StatusDeclining ActivityStatus = "declining"
	StatusInactive  ActivityStatus = "inactive"
	StatusNew       ActivityStatus = "new"
)

// Thresholds for the growth-rate classification, in percent.
const (
	hotGrowth       = 50
	risingGrowth    = 20
	decliningGrowth = -30
)

// recentWindowMonths is the size of the "recent" window: the most recent
// distinct months present in the dataset, not calendar months from today.
const recentWindowMonths = 3

// trendMonths is how many trailing months the per-company trend covers.
const trendMonths = 6

// CompanyActivity is the derived trend record for one company/deal,
// recomputed from scratch on every call; it is never persisted.
type CompanyActivity struct {
	Name             string
	Category         string
	TotalHours       float64
	RecentHours      float64
	MonthlyTrend     []MonthTotal
	GrowthRate       float64
	ParticipantCount int
	Status           ActivityStatus
	FirstAppearance  Month
	LastActivity     Month
}

type companyAccum struct {
	name      string
	category  string
	monthly   map[Month]float64
	people    map[string]struct{}
	first     Month
	last      Month
	total     float64
	seenFirst bool
}

// ClassifyActivity derives one CompanyActivity per distinct normalized
// deal/matter name from the full, unfiltered record set. Records with
// unparseable months or non-positive hours are silently dropped. Results
// are ordered by total hours descending, name ascending on ties.
func ClassifyActivity(records []TimesheetRecord) []CompanyActivity {
	months := activityMonths(records)
	if len(months) == 0 {
		return nil
	}
	recent := months
	if len(recent) > recentWindowMonths {
		recent = recent[len(recent)-recentWindowMonths:]
	}
	recentSet := map[Month]struct{}{}
	for _, m := range recent {
		recentSet[m] = struct{}{}
	}
	trend := months
	if len(trend) > trendMonths {
		trend = trend[len(trend)-trendMonths:]
	}

	index := map[string]int{}
	var accums []*companyAccum
	for _, r := range records {
		key := Key(r.DealName)
		if key == "" || r.Hours <= 0 {
			continue
		}
		m, err := ParseMonth(r.Month)
		if err != nil {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(accums)
			index[key] = i
			accums = append(accums, &companyAccum{
				name:    Display(r.DealName),
				monthly: map[Month]float64{},
				people:  map[string]struct{}{},
			})
		}
		a := accums[i]
		if a.category == "" {
			a.category = Display(r.DealCategory)
		}
		a.monthly[m] += r.Hours
		a.total += r.Hours
		if pk := Key(r.Name); pk != "" {
			a.people[pk] = struct{}{}
		}
		if !a.seenFirst || m.Before(a.first) {
			a.first = m
			a.seenFirst = true
		}
		if m.After(a.last) {
			a.last = m
		}
	}

	out := make([]CompanyActivity, 0, len(accums))
	for _, a := range accums {
		var recentHours, olderHours float64
		var recentActive, olderActive int
		for m, h := range a.monthly {
			if _, ok := recentSet[m]; ok {
				recentHours += h
				recentActive++
			} else {
				olderHours += h
				olderActive++
			}
		}

		var recentAvg, olderAvg float64
		if recentActive > 0 {
			recentAvg = recentHours / float64(recentActive)
		}
		if olderActive > 0 {
			olderAvg = olderHours / float64(olderActive)
		}

		var growth float64
		switch {
		case olderAvg > 0:
			growth = (recentAvg - olderAvg) / olderAvg * 100
		case recentHours > 0:
			growth = 100
		}

		_, firstIsRecent := recentSet[a.first]

		var status ActivityStatus
		switch {
		case firstIsRecent && olderHours == 0:
			status = StatusNew
		case recentHours == 0:
			status = StatusInactive
		case growth > hotGrowth:
			status = StatusHot
		case growth > risingGrowth:
			status = StatusRising
		case growth < decliningGrowth:
			status = StatusDeclining
		default:
			status = StatusStable
		}

		trendTotals := make([]MonthTotal, len(trend))
		for i, m := range trend {
			trendTotals[i] = MonthTotal{Month: m, Hours: a.monthly[m]}
		}

		out = append(out, CompanyActivity{
			Name:             a.name,
			Category:         a.category,
			TotalHours:       a.total,
			RecentHours:      recentHours,
			MonthlyTrend:     trendTotals,
			GrowthRate:       growth,
			ParticipantCount: len(a.people),
			Status:           status,
			FirstAppearance:  a.first,
			LastActivity:     a.last,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RankByMomentum filters activities to the given status and orders them by
// the composite score 0.4*growth-magnitude (capped at 100) plus
// 0.6*recent-hours normalized against the largest recent-hours value in
// the candidate set, descending.
func RankByMomentum(activities []CompanyActivity, status ActivityStatus) []CompanyActivity {
	var candidates []CompanyActivity
	var maxRecent float64
	for _, a := range activities {
		if a.Status != status {
			continue
		}
		candidates = append(candidates, a)
		if a.RecentHours > maxRecent {
			maxRecent = a.RecentHours
		}
	}
	score := func(a CompanyActivity) float64 {
		g := a.GrowthRate
		if g < 0 {
			g = -g
		}
		if g > 100 {
			g = 100
		}
		var rel float64
		if maxRecent > 0 {
			rel = a.RecentHours / maxRecent * 100
		}
		return 0.4*g + 0.6*rel
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := score(candidates[i]), score(candidates[j])
		if si != sj {
			return si > sj
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates
}

// activityMonths is DistinctMonths restricted to rows the classifier
// actually counts (positive hours).
func activityMonths(records []TimesheetRecord) []Month {
	var usable []TimesheetRecord
	for _, r := range records {
		if r.Hours > 0 {
			usable = append(usable, r)
		}
	}
	return DistinctMonths(usable)
}
