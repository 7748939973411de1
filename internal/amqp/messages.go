package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fintrack/internal/core"
)

// EventTransactionCreated is the event name carried by TransactionCreatedMessage.
const EventTransactionCreated = "transaction.created"

// ErrDiscard marks a handler failure that retrying cannot fix. Such
// deliveries are rejected without requeue.
var ErrDiscard = errors.New("discard message")

// TransactionCreatedMessage announces a stored transaction. It carries the
// full record so consumers need no database access.
type TransactionCreatedMessage struct {
	Event       string           `json:"event"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionCreatedMessage(t core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		Event:       EventTransactionCreated,
		Transaction: t,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
