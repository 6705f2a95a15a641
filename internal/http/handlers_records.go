package http

import (
	"net/http"
	"time"

	"worklens/internal/core"
	"worklens/internal/log"
)

// handleRecords dispatches /api/records by method: GET lists records for
// the selected period and filters, POST creates one record, PUT replaces
// a record identified by its original field values.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	case http.MethodPut:
		s.handleReplaceRecord(w, r)
	default:
		MethodNotAllowedError("GET, POST, PUT").Write(w)
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	sel, err := ParsePeriodSelection(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	opts := ParseFilterOptions(r.URL.Query())

	records, err := s.loadRecords(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List records error", log.FieldError, err)
		InternalServerError("failed to load records").Write(w)
		return
	}

	rng := sel.Resolve(records, time.Now())
	filtered := core.FilterRecords(records, rng, opts)

	payloads := make([]recordPayload, 0, len(filtered))
	for _, rec := range filtered {
		payloads = append(payloads, payloadFromRecord(rec))
	}

	OKResponse(map[string]interface{}{
		"period":  rng.String(),
		"count":   len(payloads),
		"records": payloads,
	}).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if err := decodeJSON(r, &payload); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	rec := payload.toRecord()
	if err := rec.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.backend.Append(r.Context(), rec)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Record append error",
			log.FieldError, err,
			log.FieldDealName, rec.DealName,
			log.FieldMonth, rec.Month,
			log.FieldHours, rec.Hours)
		InternalServerError("failed to save record").Write(w)
		return
	}

	s.httpLog.LogRecordCreated(r.Context(), id, rec.Month, rec.DealName, rec.Hours)
	s.invalidateCaches()
	CreatedResponse(map[string]string{"id": id}).Write(w)
}

// replaceRequest carries the detail-dialog edit: the row to change is
// identified by its original values and overwritten wholesale.
type replaceRequest struct {
	Original recordPayload `json:"original"`
	Updated  recordPayload `json:"updated"`
}

func (s *Server) handleReplaceRecord(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	updated := req.Updated.toRecord()
	if err := updated.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.backend.ReplaceRecord(r.Context(), req.Original.toRecord(), updated); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Record replace error",
			log.FieldError, err,
			log.FieldDealName, updated.DealName,
			log.FieldMonth, updated.Month)
		NotFoundError("no record matches the original values").Write(w)
		return
	}

	s.invalidateCaches()
	OKResponse(nil).Message("record replaced").Write(w)
}

type batchImportRequest struct {
	Records []recordPayload `json:"records"`
}

func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	var req batchImportRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if len(req.Records) == 0 {
		BadRequestError("no records to import").Write(w)
		return
	}

	records := make([]core.TimesheetRecord, 0, len(req.Records))
	for _, p := range req.Records {
		records = append(records, p.toRecord())
	}

	inserted, err := s.backend.BatchImport(r.Context(), records)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Batch import error", err, log.OpImport,
			log.LogFields{log.FieldRecordCount: len(records)})
		InternalServerError("failed to import records").Write(w)
		return
	}

	s.invalidateCaches()
	OKResponse(map[string]int{
		"submitted": len(records),
		"imported":  inserted,
		"skipped":   len(records) - inserted,
	}).Write(w)
}

type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	var req batchDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if len(req.IDs) == 0 {
		BadRequestError("no record ids to delete").Write(w)
		return
	}

	deleted, err := s.backend.DeleteRecords(r.Context(), req.IDs)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Batch delete error", err, log.OpDelete,
			log.LogFields{log.FieldRecordCount: len(req.IDs)})
		InternalServerError("failed to delete records").Write(w)
		return
	}

	s.invalidateCaches()
	OKResponse(map[string]int{
		"requested": len(req.IDs),
		"deleted":   deleted,
	}).Write(w)
}

// statsPayload summarizes the dataset around its most recent month.
// Records carry month granularity only, so day and week windows collapse
// to the month that contains them.
type statsPayload struct {
	RecordCount    int     `json:"record_count"`
	TotalHours     float64 `json:"total_hours"`
	MeanHours      float64 `json:"mean_hours"`
	MedianHours    float64 `json:"median_hours"`
	Participants   int     `json:"participants"`
	CurrentMonth   string  `json:"current_month"`
	MonthHours     float64 `json:"month_hours"`
	PrevMonthHours float64 `json:"prev_month_hours"`
	MoMChange      float64 `json:"mom_change"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	records, err := s.loadRecords(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Stats error", log.FieldError, err)
		InternalServerError("failed to load records").Write(w)
		return
	}

	hours := make([]float64, 0, len(records))
	for _, rec := range records {
		hours = append(hours, rec.Hours)
	}

	stats := statsPayload{
		RecordCount:  len(records),
		TotalHours:   core.TotalHours(records),
		MeanHours:    core.Mean(hours),
		MedianHours:  core.Median(hours),
		Participants: core.ParticipantCount(records),
	}

	latest, ok := core.LatestMonth(records)
	if !ok {
		latest = core.MonthOf(time.Now())
	}
	stats.CurrentMonth = latest.String()

	for _, t := range core.SumByMonth(records) {
		switch t.Month {
		case latest:
			stats.MonthHours = t.Hours
		case latest.AddMonths(-1):
			stats.PrevMonthHours = t.Hours
		}
	}
	stats.MoMChange = core.MoMChange(stats.MonthHours, stats.PrevMonthHours)

	OKResponse(stats).Write(w)
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	tax, err := s.loadTaxonomy(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Taxonomy error", log.FieldError, err)
		// Degrade to empty lists; the category dropdowns just come up
		// empty instead of failing the page.
		tax = taxonomy{}
	}
	OKResponse(tax).Write(w)
}
