package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyMonth   = errors.New("empty month")
	ErrInvalidHours = errors.New("invalid hours")
	ErrEmptyName    = errors.New("empty name")
)

// TimesheetRecord is one imported timesheet row. Month keeps the raw
// spreadsheet value (either a "yyyy/MM"-style string or a date serial);
// ParseMonth resolves it when a computation needs a calendar month.
type TimesheetRecord struct {
	ID           string
	Team         string
	Month        string
	Name         string
	DealCategory string
	DealName     string
	Hours        float64
	WorkCategory string
	OKRTag       string
	OKRItem      string
	SourcePath   string
}

// NewRecord assigns a fresh identifier to a record at the ingestion boundary.
func NewRecord(r TimesheetRecord) TimesheetRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

// Validate rejects records that cannot participate in any aggregation.
// Analytics functions additionally skip invalid rows defensively, so a
// failed validation only matters at the ingestion boundary.
func (r TimesheetRecord) Validate() error {
	if strings.TrimSpace(r.Month) == "" {
		return ErrEmptyMonth
	}
	if _, err := ParseMonth(r.Month); err != nil {
		return err
	}
	if r.Hours <= 0 {
		return ErrInvalidHours
	}
	if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.DealName) == "" {
		return ErrEmptyName
	}
	return nil
}

// FieldsEqual reports whether two records carry the same field values,
// using the fuzzy comparison key for every free-text field. Hours are
// compared exactly. The ID is deliberately ignored: detail-dialog edits
// identify the row to replace by its original values.
func (r TimesheetRecord) FieldsEqual(other TimesheetRecord) bool {
	return FieldsMatch(r.Team, other.Team) &&
		strings.TrimSpace(r.Month) == strings.TrimSpace(other.Month) &&
		FieldsMatch(r.Name, other.Name) &&
		FieldsMatch(r.DealCategory, other.DealCategory) &&
		FieldsMatch(r.DealName, other.DealName) &&
		r.Hours == other.Hours &&
		FieldsMatch(r.WorkCategory, other.WorkCategory)
}

// ReplaceRecord returns a new slice in which the first record matching
// original (by field values) is replaced with updated. The input slice is
// never mutated; callers swap the whole array, they do not edit in place.
// The second return value reports whether a match was found.
func ReplaceRecord(records []TimesheetRecord, original, updated TimesheetRecord) ([]TimesheetRecord, bool) {
	out := make([]TimesheetRecord, len(records))
	copy(out, records)
	for i, r := range out {
		if r.FieldsEqual(original) {
			if updated.ID == "" {
				updated.ID = r.ID
			}
			out[i] = updated
			return out, true
		}
	}
	return out, false
}
