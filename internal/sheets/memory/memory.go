// Package memory is an in-process TransactionExporter, used by tests and by
// the exporter when no spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
	seen map[string]int
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{seen: map[string]int{}}
}

// Export records t once per id; exporting the same id again returns the
// reference from the first export.
func (e *Exporter) Export(_ context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", errors.New("transaction has no id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if n, ok := e.seen[t.ID]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	e.rows = append(e.rows, t)
	e.seen[t.ID] = len(e.rows)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of the exported transactions in export order.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}
