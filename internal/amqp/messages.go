package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEvent tells the export worker a transaction needs attention.
// It carries only the id; the worker fetches the full record from storage so
// a stale message body can never overwrite fresher data.
type TransactionEvent struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event for the given transaction id.
func NewTransactionEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
