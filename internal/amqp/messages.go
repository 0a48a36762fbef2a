package amqp

import (
	"encoding/json"
	"time"
)

// Event types published on every successful mutation.
const (
	EventCreated      = "expense.created"
	EventUpdated      = "expense.updated"
	EventDeleted      = "expense.deleted"
	EventRangeDeleted = "expense.range_deleted"
	EventAllDeleted   = "expense.all_deleted"
)

// ExpenseEvent is a lightweight change notification. Consumers fetch the
// record itself if they need more than the id.
type ExpenseEvent struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Field         string    `json:"field,omitempty"`
	Affected      int64     `json:"affected"`
	StartDay      string    `json:"start_day,omitempty"`
	EndDay        string    `json:"end_day,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewExpenseEvent stamps an event of the given type with the current time.
func NewExpenseEvent(eventType string, affected int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:       eventType,
		Affected:   affected,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
