package adapters

import (
	"context"
	"errors"

	"worklens/internal/core"
	gsheet "worklens/internal/sheets/google"
)

// ErrReadOnlyBackend is returned for write operations on the sheets
// backend. The workbook is maintained by the teams that fill it in;
// writes only happen against local storage.
var ErrReadOnlyBackend = errors.New("sheets backend is read-only")

// SheetsAdapter exposes the read-only Google Sheets client through the
// full backend surface so handlers stay backend-agnostic.
type SheetsAdapter struct {
	client *gsheet.Client
}

func NewSheetsAdapter(client *gsheet.Client) *SheetsAdapter {
	return &SheetsAdapter{client: client}
}

// ListRecords implements sheets.RecordSource
func (a *SheetsAdapter) ListRecords(ctx context.Context) ([]core.TimesheetRecord, error) {
	return a.client.ListRecords(ctx)
}

// ListCategories implements sheets.TaxonomyReader
func (a *SheetsAdapter) ListCategories(ctx context.Context) ([]string, []string, error) {
	return a.client.ListCategories(ctx)
}

// Append implements sheets.RecordWriter
func (a *SheetsAdapter) Append(ctx context.Context, r core.TimesheetRecord) (string, error) {
	return "", ErrReadOnlyBackend
}

// ReplaceRecord implements sheets.RecordEditor
func (a *SheetsAdapter) ReplaceRecord(ctx context.Context, original, updated core.TimesheetRecord) error {
	return ErrReadOnlyBackend
}

// DeleteRecords implements sheets.RecordDeleter
func (a *SheetsAdapter) DeleteRecords(ctx context.Context, ids []string) (int, error) {
	return 0, ErrReadOnlyBackend
}

// BatchImport implements the batch write surface.
func (a *SheetsAdapter) BatchImport(ctx context.Context, records []core.TimesheetRecord) (int, error) {
	return 0, ErrReadOnlyBackend
}
