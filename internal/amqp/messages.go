package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ExportRequestMessage asks the worker to export the transactions matching a
// table view with the given columns.
type ExportRequestMessage struct {
	RequestID     string    `json:"request_id"`
	Search        string    `json:"search,omitempty"`
	Status        string    `json:"status,omitempty"`
	Category      string    `json:"category,omitempty"`
	SortField     string    `json:"sort_field,omitempty"`
	SortDirection string    `json:"sort_direction,omitempty"`
	Columns       []string  `json:"columns"`
	RequestedAt   time.Time `json:"requested_at"`
}

// NewExportRequestMessage creates a message stamped with the current time.
func NewExportRequestMessage(requestID string) *ExportRequestMessage {
	return &ExportRequestMessage{
		RequestID:   requestID,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON decodes a message. A message without a
// request id is malformed.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestID == "" {
		return nil, errors.New("missing request_id")
	}
	return &msg, nil
}
