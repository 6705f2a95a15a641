package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"worklens/internal/core"
)

var ErrNoMatch = errors.New("no record matches the original values")

// Store is the in-memory backend: the whole record array lives behind one
// mutex and is swapped wholesale on edits, never mutated in place.
type Store struct {
	mu      sync.Mutex
	records []core.TimesheetRecord
}

func New(seed []core.TimesheetRecord) *Store {
	s := &Store{}
	for _, r := range seed {
		if err := r.Validate(); err != nil {
			continue
		}
		s.records = append(s.records, core.NewRecord(r))
	}
	return s
}

// NewFromFile loads the seed record set from a JSON file. A missing or
// unreadable file yields an empty store, not an error; the memory backend
// is for local runs and demos.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.TimesheetRecord
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return New(seed), nil
}

// Append validates and stores the record, returning its assigned ID.
func (s *Store) Append(_ context.Context, r core.TimesheetRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	r = core.NewRecord(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.TimesheetRecord, len(s.records), len(s.records)+1)
	copy(next, s.records)
	s.records = append(next, r)
	return r.ID, nil
}

// BatchImport appends many records at once, skipping rows that fail
// validation, and reports how many were stored.
func (s *Store) BatchImport(_ context.Context, records []core.TimesheetRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.TimesheetRecord, len(s.records), len(s.records)+len(records))
	copy(next, s.records)
	inserted := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			continue
		}
		next = append(next, core.NewRecord(r))
		inserted++
	}
	s.records = next
	return inserted, nil
}

// ListRecords returns a copy of the current record set.
func (s *Store) ListRecords(_ context.Context) ([]core.TimesheetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TimesheetRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// ReplaceRecord swaps in a new array with the first record matching
// original replaced by updated.
func (s *Store) ReplaceRecord(_ context.Context, original, updated core.TimesheetRecord) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := core.ReplaceRecord(s.records, original, updated)
	if !ok {
		return ErrNoMatch
	}
	s.records = next
	return nil
}

// DeleteRecords removes records by ID and reports how many were dropped.
func (s *Store) DeleteRecords(_ context.Context, ids []string) (int, error) {
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []core.TimesheetRecord
	deleted := 0
	for _, r := range s.records {
		if _, ok := drop[r.ID]; ok {
			deleted++
			continue
		}
		next = append(next, r)
	}
	s.records = next
	return deleted, nil
}

// ListCategories returns distinct deal and work categories in first-seen
// order, merged through the comparison key.
func (s *Store) ListCategories(ctx context.Context) ([]string, []string, error) {
	records, err := s.ListRecords(ctx)
	if err != nil {
		return nil, nil, err
	}
	return distinctLabels(records, func(r core.TimesheetRecord) string { return r.DealCategory }),
		distinctLabels(records, func(r core.TimesheetRecord) string { return r.WorkCategory }),
		nil
}

func distinctLabels(records []core.TimesheetRecord, field func(core.TimesheetRecord) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		raw := field(r)
		key := core.Key(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, core.Display(raw))
	}
	return out
}
