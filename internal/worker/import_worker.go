package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"worklens/internal/amqp"
	"worklens/internal/sheets"
	"worklens/internal/storage"
)

// sheetSource is the import side of the Google Sheets client.
type sheetSource interface {
	sheets.RecordSource
	SourcePath() string
}

// ImportWorker keeps local storage populated from the shared timesheet
// workbook. It runs a full import on a fixed interval and reacts to
// record sync messages from the API process.
type ImportWorker struct {
	storage  *storage.SQLiteRepository
	source   sheetSource
	interval time.Duration
}

func NewImportWorker(storage *storage.SQLiteRepository, source sheetSource, interval time.Duration) *ImportWorker {
	return &ImportWorker{
		storage:  storage,
		source:   source,
		interval: interval,
	}
}

// Run drives the worker loops until the context is cancelled. The AMQP
// consumer and the periodic import run concurrently; a failure in either
// stops both.
func (w *ImportWorker) Run(ctx context.Context, client *amqp.Client) error {
	if err := w.StartupImportCheck(ctx); err != nil {
		return fmt.Errorf("startup import check: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeRecordSync(ctx, func(msg *amqp.RecordSyncMessage) error {
			return w.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		return w.runPeriodicImport(ctx)
	})

	return g.Wait()
}

// HandleSyncMessage processes a single record sync message. The message
// only announces that a local write happened; the worker verifies the
// record is readable so a broken write gets requeued and surfaced.
func (w *ImportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	// Batch operations publish a single marker message with no record ID.
	if msg.ID == "" || msg.ID == "batch" {
		count, err := w.storage.CountRecords(ctx)
		if err != nil {
			return fmt.Errorf("count records after batch write: %w", err)
		}
		slog.InfoContext(ctx, "Batch write acknowledged", "records", count)
		return nil
	}

	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	slog.InfoContext(ctx, "Record write acknowledged",
		"id", rec.ID,
		"month", rec.Month,
		"hours", rec.Hours)
	return nil
}

// StartupImportCheck runs a full import when local storage is empty.
// This recovers a fresh or wiped database without waiting for the first
// tick.
func (w *ImportWorker) StartupImportCheck(ctx context.Context) error {
	count, err := w.storage.CountRecords(ctx)
	if err != nil {
		return fmt.Errorf("count records for startup check: %w", err)
	}

	if count > 0 {
		slog.InfoContext(ctx, "Local records present on startup", "count", count)
		return nil
	}

	slog.InfoContext(ctx, "No local records found on startup, importing...")
	return w.ImportFromSheet(ctx)
}

func (w *ImportWorker) runPeriodicImport(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic import started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic import", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ImportFromSheet(ctx); err != nil {
				// Transient sheet errors should not kill the worker.
				slog.ErrorContext(ctx, "Periodic import failed", "error", err)
			}
		}
	}
}

// ImportFromSheet reads the whole workbook and swaps the sheet-sourced
// rows in local storage. Rows created through the API keep their own
// source path and are left alone.
func (w *ImportWorker) ImportFromSheet(ctx context.Context) error {
	started := time.Now()

	records, err := w.source.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	inserted, err := w.storage.ReplaceImported(ctx, w.source.SourcePath(), records)
	if err != nil {
		return fmt.Errorf("store imported records: %w", err)
	}

	slog.InfoContext(ctx, "Sheet import completed",
		"source", w.source.SourcePath(),
		"imported", inserted,
		"duration", time.Since(started).Round(time.Millisecond))
	return nil
}
