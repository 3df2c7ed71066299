package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"revgrid/internal/core"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, location,
	potential_revenue_value, potential_revenue_percentage,
	competitor_processing_volume_value, competitor_processing_volume_percentage,
	competitor_merchant, revenue_per_account, market_share_by_revenue, commercial_ddas,
	type, parent_location`

const (
	listRecordsSQL  = `SELECT ` + recordColumns + ` FROM records WHERE type = ?`
	parentFilterSQL = ` AND parent_location = ?`
	nativeOrderSQL  = ` ORDER BY rowid`

	deleteRecordSQL     = `DELETE FROM records WHERE id = ?`
	deleteAllRecordsSQL = `DELETE FROM records`
	insertRecordSQL     = `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertEventSQL = `INSERT INTO record_events (kind, record_id, count, occurred_at) VALUES (?, ?, ?, ?)`
	listEventsSQL  = `SELECT kind, record_id, count, occurred_at FROM record_events ORDER BY id DESC LIMIT ?`
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dbPath, verifies it is
// reachable and applies pending migrations. Any failure here is a
// connectivity failure and wraps core.ErrStoreUnavailable.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", core.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", core.ErrStoreUnavailable, err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY on reseed.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrStoreUnavailable, err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	slog.Info("SQLite store ready", "db_path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db}, nil
}

// NewSQLiteRepositoryFromDB wraps an already open database. The schema is
// assumed to exist.
func NewSQLiteRepositoryFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.NewStoreError("ping", r.db.PingContext(ctx))
}

// ListRecords implements store.RecordLister
func (r *SQLiteRepository) ListRecords(ctx context.Context, q core.Query) ([]core.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(listRecordsSQL)
	args := []any{string(q.View)}
	if q.HasParent() {
		sb.WriteString(parentFilterSQL)
		args = append(args, q.ParentLocation)
	}
	sb.WriteString(nativeOrderSQL)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, core.NewStoreError("list", fmt.Errorf("query records: %w", err))
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, core.NewStoreError("list", fmt.Errorf("scan record: %w", err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list", fmt.Errorf("iterate records: %w", err))
	}

	return records, nil
}

// DeleteRecord implements store.RecordDeleter
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	res, err := r.db.ExecContext(ctx, deleteRecordSQL, id)
	if err != nil {
		return core.NewStoreError("delete", fmt.Errorf("delete record %s: %w", id, err))
	}

	affected, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Record delete applied", "id", id, "rows_affected", affected)
	return nil
}

// ReplaceAll implements store.RecordReplacer. The clear and the inserts run
// in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, recs []core.Record) ([]core.Record, error) {
	stored := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.Location, err)
		}
		rec.ID = ulid.Make().String()
		stored = append(stored, rec)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.NewStoreError("reseed", fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteAllRecordsSQL); err != nil {
		return nil, core.NewStoreError("reseed", fmt.Errorf("clear records: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return nil, core.NewStoreError("reseed", fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	for _, rec := range stored {
		if _, err := stmt.ExecContext(ctx, recordArgs(rec)...); err != nil {
			return nil, core.NewStoreError("reseed", fmt.Errorf("insert record %q: %w", rec.Location, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, core.NewStoreError("reseed", fmt.Errorf("commit: %w", err))
	}

	slog.InfoContext(ctx, "Records replaced", "count", len(stored))
	return stored, nil
}

// AppendEvent stores a change event in the audit table.
func (r *SQLiteRepository) AppendEvent(ctx context.Context, ev core.RecordEvent) error {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	var recordID sql.NullString
	if ev.RecordID != "" {
		recordID = sql.NullString{String: ev.RecordID, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, insertEventSQL, string(ev.Kind), recordID, ev.Count, occurred.UTC()); err != nil {
		return core.NewStoreError("append_event", fmt.Errorf("insert event: %w", err))
	}
	return nil
}

// ListEvents returns the most recent audit events, newest first.
func (r *SQLiteRepository) ListEvents(ctx context.Context, limit int) ([]core.RecordEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listEventsSQL, limit)
	if err != nil {
		return nil, core.NewStoreError("list_events", fmt.Errorf("query events: %w", err))
	}
	defer rows.Close()

	var events []core.RecordEvent
	for rows.Next() {
		var (
			ev       core.RecordEvent
			kind     string
			recordID sql.NullString
		)
		if err := rows.Scan(&kind, &recordID, &ev.Count, &ev.OccurredAt); err != nil {
			return nil, core.NewStoreError("list_events", fmt.Errorf("scan event: %w", err))
		}
		ev.Kind = core.EventKind(kind)
		ev.RecordID = recordID.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list_events", fmt.Errorf("iterate events: %w", err))
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.Record, error) {
	var (
		rec    core.Record
		typ    string
		parent sql.NullString
	)
	err := s.Scan(
		&rec.ID,
		&rec.Location,
		&rec.PotentialRevenue.Value,
		&rec.PotentialRevenue.Percentage,
		&rec.CompetitorProcessingVolume.Value,
		&rec.CompetitorProcessingVolume.Percentage,
		&rec.CompetitorMerchant,
		&rec.RevenuePerAccount,
		&rec.MarketShareByRevenue,
		&rec.CommercialDDAs,
		&typ,
		&parent,
	)
	if err != nil {
		return core.Record{}, err
	}
	rec.Type = core.RecordType(typ)
	rec.ParentLocation = parent.String
	return rec, nil
}

func recordArgs(rec core.Record) []any {
	var parent sql.NullString
	if rec.ParentLocation != "" {
		parent = sql.NullString{String: rec.ParentLocation, Valid: true}
	}
	return []any{
		rec.ID,
		rec.Location,
		rec.PotentialRevenue.Value,
		rec.PotentialRevenue.Percentage,
		rec.CompetitorProcessingVolume.Value,
		rec.CompetitorProcessingVolume.Percentage,
		rec.CompetitorMerchant,
		rec.RevenuePerAccount,
		rec.MarketShareByRevenue,
		rec.CommercialDDAs,
		string(rec.Type),
		parent,
	}
}
