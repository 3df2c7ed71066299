package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"revgrid/internal/core"
)

// Store keeps records in insertion order behind a mutex.
type Store struct {
	mu    sync.Mutex
	items []core.Record
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store holding the demonstration dataset.
func NewSeeded() *Store {
	s := New()
	_, _ = s.ReplaceAll(context.Background(), core.SeedRecords())
	return s
}

// ListRecords returns copies of the records matching q.
func (s *Store) ListRecords(_ context.Context, q core.Query) ([]core.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, 0, len(s.items))
	for _, r := range s.items {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// DeleteRecord removes the record with id if present.
func (s *Store) DeleteRecord(_ context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

// ReplaceAll drops every record and stores recs with fresh ids.
func (s *Store) ReplaceAll(_ context.Context, recs []core.Record) ([]core.Record, error) {
	stored := make([]core.Record, 0, len(recs))
	for _, r := range recs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Location, err)
		}
		r.ID = ulid.Make().String()
		stored = append(stored, r)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = stored
	return append([]core.Record(nil), stored...), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
