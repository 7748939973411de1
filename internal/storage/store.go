package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// DefaultCollection is the collection transactions are stored in unless configured otherwise.
const DefaultCollection = "transactions"

// TransactionStore lists and creates transactions in one collection of the
// connector's database.
type TransactionStore struct {
	conn       *Connector
	collection string
	now        func() time.Time
}

func NewTransactionStore(conn *Connector, collection string) *TransactionStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &TransactionStore{conn: conn, collection: collection, now: time.Now}
}

// ListAll returns every stored transaction ordered by creation time, newest first.
func (s *TransactionStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := db.Collection(s.collection).FindNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Create stores d with createdAt and updatedAt set to the current time and
// returns the stored record including its id.
func (s *TransactionStore) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	// Millisecond precision is what every driver round-trips.
	created := s.now().UTC().Truncate(time.Millisecond)
	t, err := db.Collection(s.collection).Insert(ctx, d.Transaction(created))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert into %s: %w", s.collection, err)
	}
	return t, nil
}
