package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// DefaultCategory is stored when a transaction is created without a category.
const DefaultCategory = "uncategorized"

// isoMillis matches the layout of JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

type (
	// Type is the direction of a transaction.
	Type string

	// Transaction is one recorded financial event as stored and returned by the API.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Type        Type      `json:"type"`
		Date        string    `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Field is a raw request value. Set is false for missing, empty, null,
	// false and numeric zero values.
	Field struct {
		Value string
		Set   bool
	}

	// Candidate is an unvalidated create request.
	Candidate struct {
		Amount      Field
		Description Field
		Category    Field
		Type        Field
		Date        Field
	}

	// Draft is a validated transaction that has not been stored yet.
	Draft struct {
		Amount      float64
		Description string
		Category    string
		Type        Type
		Date        string
	}
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid type")
)

// ValidationError is a client error with a message safe to show to the user.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// Valid reports whether t is one of the two known types.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Normalize applies the create policy: amount, description and type must be
// set; amount is coerced to a number; category and date get defaults.
// With strict set, amounts that are not positive numbers and unknown types
// are rejected instead of stored.
func (c Candidate) Normalize(now time.Time, strict bool) (Draft, error) {
	if !c.Amount.Set || !c.Description.Set || !c.Type.Set {
		return Draft{}, &ValidationError{
			Message: "Missing required fields: amount, description, and type are required",
			Err:     ErrMissingFields,
		}
	}

	amount := ParseAmount(c.Amount.Value)
	if strict {
		v, err := ParseStrictAmount(c.Amount.Value)
		if err != nil {
			return Draft{}, &ValidationError{Message: "amount must be a positive number", Err: err}
		}
		amount = v
		if !Type(c.Type.Value).Valid() {
			return Draft{}, &ValidationError{Message: "type must be one of: income, expense", Err: ErrInvalidType}
		}
	}

	d := Draft{
		Amount:      amount,
		Description: c.Description.Value,
		Category:    DefaultCategory,
		Type:        Type(c.Type.Value),
		Date:        now.UTC().Format(isoMillis),
	}
	if c.Category.Set {
		d.Category = c.Category.Value
	}
	if c.Date.Set {
		d.Date = c.Date.Value
	}
	return d, nil
}

// Transaction builds the stored form of the draft stamped with created.
func (d Draft) Transaction(created time.Time) Transaction {
	return Transaction{
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Type:        d.Type,
		Date:        d.Date,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// ParseDate interprets a stored date value. It accepts RFC 3339 timestamps
// and plain YYYY-MM-DD dates as produced by the HTML date input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
