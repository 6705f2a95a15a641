package adapters

import (
	"context"

	"worklens/internal/core"
	"worklens/internal/services"
	"worklens/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and RecordService to the sheets.*
// interfaces, so the HTTP handlers work unchanged on the SQLite + AMQP
// backend. Reads go straight to storage; writes go through the service so
// sync messages get published.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements sheets.RecordWriter
func (a *SQLiteAdapter) Append(ctx context.Context, r core.TimesheetRecord) (string, error) {
	return a.service.CreateRecord(ctx, r)
}

// ListRecords implements sheets.RecordSource
func (a *SQLiteAdapter) ListRecords(ctx context.Context) ([]core.TimesheetRecord, error) {
	return a.storage.ListRecords(ctx)
}

// ReplaceRecord implements sheets.RecordEditor
func (a *SQLiteAdapter) ReplaceRecord(ctx context.Context, original, updated core.TimesheetRecord) error {
	return a.service.UpdateRecord(ctx, original, updated)
}

// DeleteRecords implements sheets.RecordDeleter
func (a *SQLiteAdapter) DeleteRecords(ctx context.Context, ids []string) (int, error) {
	return a.service.BatchDelete(ctx, ids)
}

// BatchImport inserts many records through the service in one transaction.
func (a *SQLiteAdapter) BatchImport(ctx context.Context, records []core.TimesheetRecord) (int, error) {
	return a.service.BatchImport(ctx, records)
}

// ListCategories implements sheets.TaxonomyReader
func (a *SQLiteAdapter) ListCategories(ctx context.Context) ([]string, []string, error) {
	return a.storage.ListCategories(ctx)
}
