package core

import "time"

const (
	EventRecordDeleted   EventKind = "record.deleted"
	EventDatasetReseeded EventKind = "dataset.reseeded"
)

type (
	EventKind string

	// RecordEvent describes a change applied to the store.
	RecordEvent struct {
		Kind       EventKind `json:"kind"`
		RecordID   string    `json:"record_id,omitempty"`
		Count      int       `json:"count,omitempty"`
		OccurredAt time.Time `json:"occurred_at"`
	}
)

func NewDeletedEvent(id string) RecordEvent {
	return RecordEvent{Kind: EventRecordDeleted, RecordID: id, OccurredAt: time.Now().UTC()}
}

func NewReseededEvent(count int) RecordEvent {
	return RecordEvent{Kind: EventDatasetReseeded, Count: count, OccurredAt: time.Now().UTC()}
}

// IsKnown reports whether the event kind is one this service emits.
func (k EventKind) IsKnown() bool {
	return k == EventRecordDeleted || k == EventDatasetReseeded
}
