package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"worklens/internal/amqp"
	"worklens/internal/core"
	"worklens/internal/storage"
)

// RecordService orchestrates record writes across SQLite and AMQP. Writes
// land in SQLite first; sync messages are fire-and-forget so a broker
// outage never fails a request.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	version    atomic.Int64
}

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateRecord saves a record locally and publishes a sync message.
func (s *RecordService) CreateRecord(ctx context.Context, rec core.TimesheetRecord) (string, error) {
	id, err := s.storage.Append(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	if err := s.publishSyncMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
		// Don't fail the request - record is saved locally
	}

	return id, nil
}

// UpdateRecord replaces a stored record located by its original field
// values with the updated one.
func (s *RecordService) UpdateRecord(ctx context.Context, original, updated core.TimesheetRecord) error {
	if err := s.storage.ReplaceRecord(ctx, original, updated); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}

	if err := s.publishSyncMessage(ctx, updated.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", updated.ID, "error", err)
	}

	return nil
}

// BatchImport inserts many records in one transaction and publishes a
// single sync message for the batch.
func (s *RecordService) BatchImport(ctx context.Context, records []core.TimesheetRecord) (int, error) {
	inserted, err := s.storage.BatchInsert(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("batch import: %w", err)
	}

	if inserted > 0 {
		if err := s.publishSyncMessage(ctx, "batch"); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "error", err)
		}
	}

	return inserted, nil
}

// BatchDelete removes the records with the given IDs.
func (s *RecordService) BatchDelete(ctx context.Context, ids []string) (int, error) {
	deleted, err := s.storage.DeleteRecords(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("batch delete: %w", err)
	}

	if deleted > 0 {
		if err := s.publishSyncMessage(ctx, "batch"); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "error", err)
		}
	}

	return deleted, nil
}

func (s *RecordService) publishSyncMessage(ctx context.Context, id string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishRecordSync(ctx, id, s.version.Add(1))
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
