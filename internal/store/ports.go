package store

import (
	"context"

	"revgrid/internal/core"
)

// Ports for record persistence.
type (
	RecordLister interface {
		// ListRecords returns every record matching q in store-native order.
		ListRecords(ctx context.Context, q core.Query) ([]core.Record, error)
	}

	RecordDeleter interface {
		// DeleteRecord removes the record with the given id. Unknown ids are
		// not an error.
		DeleteRecord(ctx context.Context, id string) error
	}

	RecordReplacer interface {
		// ReplaceAll clears the store, inserts recs with fresh ids and returns
		// the stored copies.
		ReplaceAll(ctx context.Context, recs []core.Record) ([]core.Record, error)
	}

	// Pinger reports whether the store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// RecordStore is everything the query service needs from a store.
	RecordStore interface {
		RecordLister
		RecordDeleter
		RecordReplacer
		Pinger
		Close() error
	}
)
