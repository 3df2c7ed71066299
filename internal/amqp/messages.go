package amqp

import (
	"encoding/json"
	"fmt"

	"revgrid/internal/core"
)

// RecordEventMessage is the wire form of a core.RecordEvent.
type RecordEventMessage struct {
	core.RecordEvent
}

// NewRecordEventMessage wraps ev for publishing.
func NewRecordEventMessage(ev core.RecordEvent) *RecordEventMessage {
	return &RecordEventMessage{RecordEvent: ev}
}

// ToJSON converts the message to JSON bytes
func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventMessageFromJSON decodes a message and rejects unknown kinds.
func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsKnown() {
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}

// RoutingKey returns the routing key the message is published under.
func (m *RecordEventMessage) RoutingKey() string {
	return string(m.Kind)
}
