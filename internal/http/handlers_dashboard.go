package http

import (
	"net/http"
	"time"

	"worklens/internal/core"
	"worklens/internal/log"
)

// groupPayload is one aggregation bucket on the wire.
type groupPayload struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
	Count int     `json:"count"`
}

func groupPayloads(totals []core.GroupTotal) []groupPayload {
	out := make([]groupPayload, 0, len(totals))
	for _, t := range totals {
		out = append(out, groupPayload{Label: t.Label, Hours: t.Hours, Count: t.Count})
	}
	return out
}

// periodRecords loads the record set and narrows it to the requested
// period and filters. Read errors degrade to an empty set so dashboards
// render with zeros instead of failing.
func (s *Server) periodRecords(w http.ResponseWriter, r *http.Request) ([]core.TimesheetRecord, core.Range, bool) {
	sel, err := ParsePeriodSelection(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil, core.Range{}, false
	}
	opts := ParseFilterOptions(r.URL.Query())

	records, err := s.loadRecords(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard read error",
			log.FieldError, err, log.FieldPath, r.URL.Path)
		records = nil
	}

	rng := sel.Resolve(records, time.Now())
	return core.FilterRecords(records, rng, opts), rng, true
}

// handleDashboardCategories returns hours grouped by deal and work
// category for the resolved period.
func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	records, rng, ok := s.periodRecords(w, r)
	if !ok {
		return
	}

	OKResponse(map[string]interface{}{
		"period":          rng.String(),
		"total_hours":     core.TotalHours(records),
		"participants":    core.ParticipantCount(records),
		"deal_categories": groupPayloads(core.SumByDealCategory(records)),
		"work_categories": groupPayloads(core.SumByWorkCategory(records)),
		"companies":       groupPayloads(core.SumByCompany(records)),
	}).Write(w)
}

type trendPointPayload struct {
	Month  string  `json:"month"`
	Hours  float64 `json:"hours"`
	Change float64 `json:"change"`
}

// handleDashboardTrend returns the monthly hour series with
// month-over-month change for the resolved period.
func (s *Server) handleDashboardTrend(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	records, rng, ok := s.periodRecords(w, r)
	if !ok {
		return
	}

	trend := core.MonthlyTrend(records)
	points := make([]trendPointPayload, 0, len(trend))
	for _, p := range trend {
		points = append(points, trendPointPayload{
			Month:  p.Month.String(),
			Hours:  p.Hours,
			Change: p.Change,
		})
	}

	OKResponse(map[string]interface{}{
		"period": rng.String(),
		"points": points,
	}).Write(w)
}

type heatmapRowPayload struct {
	Team  string    `json:"team"`
	Hours []float64 `json:"hours"`
	Total float64   `json:"total"`
}

// handleDashboardHeatmap returns the team-by-month hour matrix for the
// resolved period. Rows follow the team aggregation order (first seen),
// columns are the period's distinct months in chronological order.
func (s *Server) handleDashboardHeatmap(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	records, rng, ok := s.periodRecords(w, r)
	if !ok {
		return
	}

	months := core.DistinctMonths(records)
	monthIndex := map[core.Month]int{}
	labels := make([]string, len(months))
	for i, m := range months {
		monthIndex[m] = i
		labels[i] = m.String()
	}

	teams := core.SumByTeam(records)
	rows := make([]heatmapRowPayload, len(teams))
	rowIndex := map[string]int{}
	for i, t := range teams {
		rows[i] = heatmapRowPayload{Team: t.Label, Hours: make([]float64, len(months)), Total: t.Hours}
		rowIndex[t.Key] = i
	}

	for _, rec := range records {
		key := core.Key(rec.Team)
		if key == "" || rec.Hours <= 0 {
			continue
		}
		m, err := core.ParseMonth(rec.Month)
		if err != nil {
			continue
		}
		ri, ok := rowIndex[key]
		if !ok {
			continue
		}
		ci, ok := monthIndex[m]
		if !ok {
			continue
		}
		rows[ri].Hours[ci] += rec.Hours
	}

	OKResponse(map[string]interface{}{
		"period": rng.String(),
		"months": labels,
		"teams":  rows,
	}).Write(w)
}

type activityPayload struct {
	Name             string              `json:"name"`
	Category         string              `json:"category"`
	TotalHours       float64             `json:"total_hours"`
	RecentHours      float64             `json:"recent_hours"`
	GrowthRate       float64             `json:"growth_rate"`
	ParticipantCount int                 `json:"participant_count"`
	Status           string              `json:"status"`
	FirstAppearance  string              `json:"first_appearance"`
	LastActivity     string              `json:"last_activity"`
	MonthlyTrend     []trendPointPayload `json:"monthly_trend"`
}

func activityPayloads(activities []core.CompanyActivity) []activityPayload {
	out := make([]activityPayload, 0, len(activities))
	for _, a := range activities {
		trend := make([]trendPointPayload, 0, len(a.MonthlyTrend))
		for _, t := range a.MonthlyTrend {
			trend = append(trend, trendPointPayload{Month: t.Month.String(), Hours: t.Hours})
		}
		out = append(out, activityPayload{
			Name:             a.Name,
			Category:         a.Category,
			TotalHours:       a.TotalHours,
			RecentHours:      a.RecentHours,
			GrowthRate:       a.GrowthRate,
			ParticipantCount: a.ParticipantCount,
			Status:           string(a.Status),
			FirstAppearance:  a.FirstAppearance.String(),
			LastActivity:     a.LastActivity.String(),
			MonthlyTrend:     trend,
		})
	}
	return out
}

// handleDashboardActivity returns the company activity classification.
// Classification always runs over the full record set; the recent window
// is defined by the dataset's own months, not the selected period.
func (s *Server) handleDashboardActivity(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	records, err := s.loadRecords(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Activity read error", log.FieldError, err)
		records = nil
	}

	activities := core.ClassifyActivity(records)

	OKResponse(map[string]interface{}{
		"companies": activityPayloads(activities),
		"rising":    activityPayloads(core.RankByMomentum(activities, core.StatusRising)),
		"declining": activityPayloads(core.RankByMomentum(activities, core.StatusDeclining)),
	}).Write(w)
}
