package services

import (
	"context"
	"fmt"
	"log/slog"

	"revgrid/internal/core"
	"revgrid/internal/store"
)

// EventPublisher announces store changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev core.RecordEvent) error
}

// RecordService answers list, delete and reseed requests against a store
// and publishes change events when a publisher is configured.
type RecordService struct {
	store     store.RecordStore
	publisher EventPublisher
	closers   []func() error
}

// NewRecordService wires a store and an optional publisher. A nil
// publisher disables events.
func NewRecordService(s store.RecordStore, publisher EventPublisher) *RecordService {
	return &RecordService{
		store:     s,
		publisher: publisher,
	}
}

// ListRecords returns the records selected by q.
func (s *RecordService) ListRecords(ctx context.Context, q core.Query) ([]core.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list records (view=%s, parent=%q): %w", q.View, q.ParentLocation, err)
	}
	return records, nil
}

// DeleteRecord removes the record with id. Unknown ids succeed.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	s.publish(ctx, core.NewDeletedEvent(id))
	return nil
}

// Reseed replaces the whole dataset with the demonstration records and
// returns how many were inserted.
func (s *RecordService) Reseed(ctx context.Context) (int, error) {
	stored, err := s.store.ReplaceAll(ctx, core.SeedRecords())
	if err != nil {
		return 0, fmt.Errorf("reseed: %w", err)
	}
	s.publish(ctx, core.NewReseededEvent(len(stored)))
	return len(stored), nil
}

// Ping checks that the store is reachable.
func (s *RecordService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// AddCloser registers an extra resource released by Close.
func (s *RecordService) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// publish never fails the caller; the store change already happened.
func (s *RecordService) publish(ctx context.Context, ev core.RecordEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"kind", ev.Kind,
			"record_id", ev.RecordID,
			"error", err)
	}
}

// Close releases the store and any registered resources.
func (s *RecordService) Close() error {
	var errs []error

	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
