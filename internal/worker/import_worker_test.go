package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"worklens/internal/amqp"
	"worklens/internal/core"
	"worklens/internal/storage"
)

type stubSource struct {
	records []core.TimesheetRecord
	err     error
}

func (s *stubSource) ListRecords(context.Context) ([]core.TimesheetRecord, error) {
	return s.records, s.err
}

func (s *stubSource) SourcePath() string { return "Timesheet" }

func testStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worklens.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sheetRecord(month, name string, hours float64) core.TimesheetRecord {
	return core.TimesheetRecord{
		Team:     "Legal",
		Month:    month,
		Name:     name,
		DealName: "Acme",
		Hours:    hours,
	}
}

func TestImportFromSheet(t *testing.T) {
	ctx := context.Background()
	repo := testStorage(t)
	source := &stubSource{records: []core.TimesheetRecord{
		sheetRecord("2025/01", "Alice", 2),
		sheetRecord("2025/02", "Bob", 3),
	}}
	w := NewImportWorker(repo, source, time.Minute)

	if err := w.ImportFromSheet(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	count, _ := repo.CountRecords(ctx)
	if count != 2 {
		t.Fatalf("count %d, want 2", count)
	}

	// A second import replaces the sheet rows instead of duplicating them.
	source.records = []core.TimesheetRecord{sheetRecord("2025/03", "Carol", 4)}
	if err := w.ImportFromSheet(ctx); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	records, _ := repo.ListRecords(ctx)
	if len(records) != 1 || records[0].Name != "Carol" {
		t.Fatalf("got %v", records)
	}
}

func TestImportFromSheetReadError(t *testing.T) {
	repo := testStorage(t)
	wantErr := errors.New("sheet unavailable")
	w := NewImportWorker(repo, &stubSource{err: wantErr}, time.Minute)

	err := w.ImportFromSheet(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v", err)
	}
}

func TestStartupImportCheck(t *testing.T) {
	ctx := context.Background()
	repo := testStorage(t)
	source := &stubSource{records: []core.TimesheetRecord{sheetRecord("2025/01", "Alice", 2)}}
	w := NewImportWorker(repo, source, time.Minute)

	// Empty storage triggers an immediate import.
	if err := w.StartupImportCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	count, _ := repo.CountRecords(ctx)
	if count != 1 {
		t.Fatalf("count %d, want 1", count)
	}

	// With records present the check leaves storage alone.
	source.records = nil
	if err := w.StartupImportCheck(ctx); err != nil {
		t.Fatalf("second check: %v", err)
	}
	count, _ = repo.CountRecords(ctx)
	if count != 1 {
		t.Fatalf("count %d after second check", count)
	}
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	repo := testStorage(t)
	w := NewImportWorker(repo, &stubSource{}, time.Minute)

	id, err := repo.Append(ctx, sheetRecord("2025/01", "Alice", 2))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id, 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// A missing record is an error so the delivery gets requeued.
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage("missing", 2)); err == nil {
		t.Fatalf("expected error for unknown record")
	}

	// Batch markers carry no record ID.
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage("batch", 3)); err != nil {
		t.Fatalf("batch marker: %v", err)
	}
}
