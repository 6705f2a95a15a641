package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"worklens/internal/core"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, team, month, name, deal_category, deal_name, hours, work_category, okr_tag, okr_item, source_path`

// SQLiteRepository persists imported timesheet records. It is the durable
// backing for the analytics record set; all aggregation still happens in
// core over the full list.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements sheets.RecordWriter.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.TimesheetRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec = core.NewRecord(rec)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timesheet_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Team, rec.Month, rec.Name, rec.DealCategory, rec.DealName,
		rec.Hours, rec.WorkCategory, rec.OKRTag, rec.OKRItem, rec.SourcePath)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Timesheet record saved",
		"id", rec.ID, "month", rec.Month, "deal", rec.DealName, "hours", rec.Hours)
	return rec.ID, nil
}

// BatchInsert inserts many records in one transaction, skipping rows that
// fail validation. Returns the number inserted.
func (r *SQLiteRepository) BatchInsert(ctx context.Context, records []core.TimesheetRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timesheet_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	skipped := 0
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			skipped++
			continue
		}
		rec = core.NewRecord(rec)
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Team, rec.Month, rec.Name, rec.DealCategory, rec.DealName,
			rec.Hours, rec.WorkCategory, rec.OKRTag, rec.OKRItem, rec.SourcePath); err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch insert: %w", err)
	}

	slog.InfoContext(ctx, "Batch import completed", "inserted", inserted, "skipped", skipped)
	return inserted, nil
}

// ListRecords implements sheets.RecordSource, returning records in
// insertion order.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.TimesheetRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM timesheet_records ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByTeam returns records whose team matches via the comparison key.
// The normalization lives in Go, not SQL, so the match rules stay in one
// place.
func (r *SQLiteRepository) ListByTeam(ctx context.Context, team string) ([]core.TimesheetRecord, error) {
	records, err := r.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.TimesheetRecord
	for _, rec := range records {
		if core.FieldsMatch(rec.Team, team) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// GetRecord fetches one record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (*core.TimesheetRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM timesheet_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return &rec, nil
}

// ReplaceRecord implements sheets.RecordEditor: the row is located by its
// original field values and overwritten with the updated values.
func (r *SQLiteRepository) ReplaceRecord(ctx context.Context, original, updated core.TimesheetRecord) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	records, err := r.ListRecords(ctx)
	if err != nil {
		return err
	}
	var id string
	for _, rec := range records {
		if rec.FieldsEqual(original) {
			id = rec.ID
			break
		}
	}
	if id == "" {
		return sql.ErrNoRows
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE timesheet_records SET team = ?, month = ?, name = ?, deal_category = ?,
		 deal_name = ?, hours = ?, work_category = ?, okr_tag = ?, okr_item = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		updated.Team, updated.Month, updated.Name, updated.DealCategory,
		updated.DealName, updated.Hours, updated.WorkCategory, updated.OKRTag, updated.OKRItem, id)
	if err != nil {
		return fmt.Errorf("replace record %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Timesheet record replaced", "id", id, "hours", updated.Hours)
	return nil
}

// DeleteRecords implements sheets.RecordDeleter.
func (r *SQLiteRepository) DeleteRecords(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM timesheet_records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted records: %w", err)
	}

	slog.InfoContext(ctx, "Timesheet records deleted", "requested", len(ids), "deleted", n)
	return int(n), nil
}

// ReplaceImported swaps the stored rows that came from the given source
// for a fresh import. Rows written through the API carry a different
// source path and survive re-imports untouched.
func (r *SQLiteRepository) ReplaceImported(ctx context.Context, sourcePath string, records []core.TimesheetRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM timesheet_records WHERE source_path = ?`, sourcePath); err != nil {
		return 0, fmt.Errorf("clear imported records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timesheet_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare replace import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			continue
		}
		rec = core.NewRecord(rec)
		rec.SourcePath = sourcePath
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Team, rec.Month, rec.Name, rec.DealCategory, rec.DealName,
			rec.Hours, rec.WorkCategory, rec.OKRTag, rec.OKRItem, rec.SourcePath); err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace import: %w", err)
	}

	slog.InfoContext(ctx, "Imported records replaced", "source", sourcePath, "count", inserted)
	return inserted, nil
}

// CountRecords returns the stored record count.
func (r *SQLiteRepository) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timesheet_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// ListCategories implements sheets.TaxonomyReader over the stored set.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, []string, error) {
	records, err := r.ListRecords(ctx)
	if err != nil {
		return nil, nil, err
	}
	deal := map[string]struct{}{}
	work := map[string]struct{}{}
	var deals, works []string
	for _, rec := range records {
		if key := core.Key(rec.DealCategory); key != "" {
			if _, ok := deal[key]; !ok {
				deal[key] = struct{}{}
				deals = append(deals, core.Display(rec.DealCategory))
			}
		}
		if key := core.Key(rec.WorkCategory); key != "" {
			if _, ok := work[key]; !ok {
				work[key] = struct{}{}
				works = append(works, core.Display(rec.WorkCategory))
			}
		}
	}
	return deals, works, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (core.TimesheetRecord, error) {
	var rec core.TimesheetRecord
	err := row.Scan(&rec.ID, &rec.Team, &rec.Month, &rec.Name, &rec.DealCategory,
		&rec.DealName, &rec.Hours, &rec.WorkCategory, &rec.OKRTag, &rec.OKRItem, &rec.SourcePath)
	return rec, err
}

func scanRecords(rows *sql.Rows) ([]core.TimesheetRecord, error) {
	var out []core.TimesheetRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
