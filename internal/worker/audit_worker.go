package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"revgrid/internal/amqp"
	"revgrid/internal/core"
)

// EventAppender persists audit entries. *storage.SQLiteRepository
// implements it.
type EventAppender interface {
	AppendEvent(ctx context.Context, ev core.RecordEvent) error
}

// AuditWorker records every change event it receives.
type AuditWorker struct {
	events EventAppender
	now    func() time.Time
}

func NewAuditWorker(events EventAppender) *AuditWorker {
	return &AuditWorker{
		events: events,
		now:    time.Now,
	}
}

// HandleRecordEvent appends msg to the audit table. Returning an error
// makes the broker redeliver the message.
func (w *AuditWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error {
	ev := msg.RecordEvent
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = w.now().UTC()
	}

	slog.InfoContext(ctx, "Processing record event",
		"kind", ev.Kind,
		"record_id", ev.RecordID,
		"count", ev.Count)

	if err := w.events.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("append audit event %s: %w", ev.Kind, err)
	}
	return nil
}
