// Package view holds the state behind the transactions page and the
// formatting used to render it.
package view

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// FormValues is the in-progress create form.
type FormValues struct {
	Amount      string
	Description string
	Category    string
	Type        string
	Date        string
}

// DefaultForm is the empty form; new entries default to expenses.
func DefaultForm() FormValues {
	return FormValues{Type: string(core.Expense)}
}

// Ledger is the page state: the loaded list, request flags and the form.
//
// The list only changes through Loaded and Acknowledge, so nothing the
// server has not confirmed is ever shown.
type Ledger struct {
	Transactions []core.Transaction
	Loading      bool
	Error        string
	Submitting   bool
	Form         FormValues
}

// NewLedger returns the state before the first list request completes.
func NewLedger() *Ledger {
	return &Ledger{Loading: true, Form: DefaultForm()}
}

// Loaded replaces the list with txs and clears any error.
func (l *Ledger) Loaded(txs []core.Transaction) {
	l.Transactions = txs
	l.Error = ""
	l.Loading = false
}

// Failed records a list failure. The list is left empty.
func (l *Ledger) Failed(message string) {
	l.Transactions = nil
	l.Error = message
	l.Loading = false
}

// BeginSubmit enters the submitting state and clears the previous error.
func (l *Ledger) BeginSubmit() {
	l.Submitting = true
	l.Error = ""
}

// Acknowledge applies a create the server confirmed: t goes to the front
// of the list and the form resets.
func (l *Ledger) Acknowledge(t core.Transaction) {
	l.Transactions = append([]core.Transaction{t}, l.Transactions...)
	l.Form = DefaultForm()
	l.Submitting = false
}

// Reject records a failed create. The list and form are untouched.
func (l *Ledger) Reject(message string) {
	l.Error = message
	l.Submitting = false
}

func (l *Ledger) TotalBalance() decimal.Decimal {
	return core.TotalBalance(l.Transactions)
}

// Balance is TotalBalance formatted for display.
func (l *Ledger) Balance() string {
	return core.FormatMoney(l.TotalBalance())
}

// BalanceClass is the css class of the balance figure.
func (l *Ledger) BalanceClass() string {
	if l.TotalBalance().IsNegative() {
		return "balance-negative"
	}
	return "balance-positive"
}

// ShowEmptyState reports whether the "no transactions" message is shown.
func (l *Ledger) ShowEmptyState() bool {
	return !l.Loading && len(l.Transactions) == 0 && l.Error == ""
}

// Rows returns the display rows in list order.
func (l *Ledger) Rows() []Row {
	rows := make([]Row, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		rows = append(rows, NewRow(t))
	}
	return rows
}

// Row is one rendered transaction.
type Row struct {
	ID          string
	Description string
	Category    string
	Date        string
	Amount      string
	// Signed is the signed amount as a plain number, read back by the page script.
	Signed string
	Class  string
}

func NewRow(t core.Transaction) Row {
	category := t.Category
	if category == "" {
		category = "Uncategorized"
	}
	return Row{
		ID:          t.ID,
		Description: t.Description,
		Category:    category,
		Date:        FormatDate(t.Date),
		Amount:      FormatSigned(t),
		Signed:      t.Signed().StringFixed(2),
		Class:       TypeClass(t.Type),
	}
}

// FormatDate renders a stored date as M/D/YYYY in UTC, or "No date" when
// there is none. Values that do not parse are shown as stored.
func FormatDate(s string) string {
	if s == "" {
		return "No date"
	}
	d, ok := core.ParseDate(s)
	if !ok {
		return s
	}
	d = d.UTC()
	return fmt.Sprintf("%d/%d/%d", int(d.Month()), d.Day(), d.Year())
}

// FormatSigned renders the amount with two decimals, "+" for income and
// "-" otherwise, e.g. "+$12.34".
func FormatSigned(t core.Transaction) string {
	sign := "-"
	if t.Type == core.Income {
		sign = "+"
	}
	return sign + "$" + decimal.NewFromFloat(t.Amount).Abs().StringFixed(2)
}

// TypeClass is the css class coloring a row by type.
func TypeClass(t core.Type) string {
	if t == core.Income {
		return "transaction-income"
	}
	return "transaction-expense"
}
