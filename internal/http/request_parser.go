// Package http provides the JSON API server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: the period selector query parameters, record filters, and JSON
// request bodies.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"worklens/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// ParsePeriodSelection extracts the period selector from query parameters.
// Missing pieces stay absent; core.PeriodSelection.Resolve applies the
// dataset fallbacks.
func ParsePeriodSelection(query url.Values) (core.PeriodSelection, error) {
	sel := core.PeriodSelection{
		Kind:  core.Monthly,
		Value: core.ValueAbsent,
	}

	if v := strings.TrimSpace(query.Get("kind")); v != "" {
		switch core.PeriodKind(v) {
		case core.Monthly, core.Quarterly, core.Semiannually, core.Annually, core.Custom:
			sel.Kind = core.PeriodKind(v)
		default:
			return sel, fmt.Errorf("unknown period kind %q", v)
		}
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return sel, fmt.Errorf("invalid year %q", v)
		}
		sel.Year = y
	}

	if v := strings.TrimSpace(query.Get("value")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return sel, fmt.Errorf("invalid period value %q", v)
		}
		sel.Value = n
	}

	if v := strings.TrimSpace(query.Get("start")); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			return sel, fmt.Errorf("invalid start month %q", v)
		}
		sel.Start = m
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			return sel, fmt.Errorf("invalid end month %q", v)
		}
		sel.End = m
	}

	return sel, nil
}

// ParseFilterOptions extracts the record filters from query parameters.
// Empty values mean "no filter on this dimension".
func ParseFilterOptions(query url.Values) core.FilterOptions {
	return core.FilterOptions{
		Team:         strings.TrimSpace(query.Get("team")),
		DealCategory: strings.TrimSpace(query.Get("category")),
		WorkCategory: strings.TrimSpace(query.Get("work_category")),
	}
}

// recordPayload is the JSON shape of a timesheet record on the wire.
type recordPayload struct {
	ID           string  `json:"id,omitempty"`
	Team         string  `json:"team"`
	Month        string  `json:"month"`
	Name         string  `json:"name"`
	DealCategory string  `json:"deal_category"`
	DealName     string  `json:"deal_name"`
	Hours        float64 `json:"hours"`
	WorkCategory string  `json:"work_category"`
	OKRTag       string  `json:"okr_tag,omitempty"`
	OKRItem      string  `json:"okr_item,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
}

func (p recordPayload) toRecord() core.TimesheetRecord {
	return core.TimesheetRecord{
		ID:           strings.TrimSpace(p.ID),
		Team:         sanitizeInput(p.Team),
		Month:        sanitizeInput(p.Month),
		Name:         sanitizeInput(p.Name),
		DealCategory: sanitizeInput(p.DealCategory),
		DealName:     sanitizeInput(p.DealName),
		Hours:        p.Hours,
		WorkCategory: sanitizeInput(p.WorkCategory),
		OKRTag:       sanitizeInput(p.OKRTag),
		OKRItem:      sanitizeInput(p.OKRItem),
		SourcePath:   sanitizeInput(p.SourcePath),
	}
}

func payloadFromRecord(r core.TimesheetRecord) recordPayload {
	return recordPayload{
		ID:           r.ID,
		Team:         r.Team,
		Month:        r.Month,
		Name:         r.Name,
		DealCategory: r.DealCategory,
		DealName:     r.DealName,
		Hours:        r.Hours,
		WorkCategory: r.WorkCategory,
		OKRTag:       r.OKRTag,
		OKRItem:      r.OKRItem,
		SourcePath:   r.SourcePath,
	}
}

// decodeJSON parses the request body into dst, rejecting unknown fields
// and oversized bodies.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
