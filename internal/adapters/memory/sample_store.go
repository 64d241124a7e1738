package memory

import (
	"context"
	"fmt"
	"ocean-query-service/internal/domain"
	"slices"
	"sync"
	"time"
)

// Row is one sample with readings for any subset of parameters.
type Row struct {
	ID          int64
	Coordinates domain.Coordinates
	Date        time.Time
	Values      map[domain.Parameter]float64
}

// SampleStore is an in-memory RecordStore. It backs tests and small demo
// datasets. Rows keep insertion order.
type SampleStore struct {
	mu   sync.RWMutex
	rows []Row

	// Err, when set, is returned by every read.
	Err error
}

func NewSampleStore(rows []Row) *SampleStore {
	return &SampleStore{rows: slices.Clone(rows)}
}

// Add appends rows.
func (s *SampleStore) Add(rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

func (s *SampleStore) DistinctLocations(ctx context.Context) ([]domain.Coordinates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	seen := make(map[domain.Coordinates]struct{}, len(s.rows))
	out := make([]domain.Coordinates, 0, len(s.rows))
	for _, r := range s.rows {
		if _, ok := seen[r.Coordinates]; ok {
			continue
		}
		seen[r.Coordinates] = struct{}{}
		out = append(out, r.Coordinates)
	}
	return out, nil
}

func (s *SampleStore) DistinctYears(ctx context.Context, param domain.Parameter) ([]int, error) {
	if !param.Valid() {
		return nil, fmt.Errorf("distinct years: %w", domain.ErrUnknownParameter)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var years []int
	for _, r := range s.rows {
		if _, ok := r.Values[param]; !ok {
			continue
		}
		if y := r.Date.Year(); !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	slices.Sort(years)
	return years, nil
}

func (s *SampleStore) RowsFor(ctx context.Context, param domain.Parameter, year *int) ([]domain.SampleRecord, error) {
	if !param.Valid() {
		return nil, fmt.Errorf("rows for: %w", domain.ErrUnknownParameter)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []domain.SampleRecord
	for _, r := range s.rows {
		if _, ok := r.Values[param]; !ok {
			continue
		}
		if year != nil && r.Date.Year() != *year {
			continue
		}
		out = append(out, r.record(param))
	}
	return out, nil
}

func (s *SampleStore) RowsByIDs(ctx context.Context, param domain.Parameter, ids []int64) ([]domain.SampleRecord, error) {
	if !param.Valid() {
		return nil, fmt.Errorf("rows by ids: %w", domain.ErrUnknownParameter)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []domain.SampleRecord
	for _, r := range s.rows {
		if slices.Contains(ids, r.ID) {
			out = append(out, r.record(param))
		}
	}
	return out, nil
}

// Snapshot of every row, used to build vector indexes.
func (s *SampleStore) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

func (r Row) record(param domain.Parameter) domain.SampleRecord {
	rec := domain.SampleRecord{ID: r.ID, Coordinates: r.Coordinates, Date: r.Date}
	if v, ok := r.Values[param]; ok {
		rec.Value = &v
	}
	return rec
}
