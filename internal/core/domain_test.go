package core

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func set(v string) Field { return Field{Value: v, Set: true} }

func TestCandidateNormalize(t *testing.T) {
	c := Candidate{
		Amount:      set("12.50"),
		Description: set("Groceries"),
		Type:        set("expense"),
	}
	d, err := c.Normalize(fixedNow, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 12.5 || d.Description != "Groceries" || d.Type != Expense {
		t.Fatalf("unexpected draft: %+v", d)
	}
	if d.Category != DefaultCategory {
		t.Fatalf("category = %q, want %q", d.Category, DefaultCategory)
	}
	if d.Date != "2025-03-14T09:26:53.589Z" {
		t.Fatalf("date = %q", d.Date)
	}

	c.Category = set("Food")
	c.Date = set("2025-03-01")
	d, err = c.Normalize(fixedNow, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Category != "Food" || d.Date != "2025-03-01" {
		t.Fatalf("submitted values not kept: %+v", d)
	}
}

func TestCandidateNormalizeMissingFields(t *testing.T) {
	full := Candidate{Amount: set("1"), Description: set("x"), Type: set("income")}
	cases := map[string]Candidate{
		"amount":      {Description: full.Description, Type: full.Type},
		"description": {Amount: full.Amount, Type: full.Type},
		"type":        {Amount: full.Amount, Description: full.Description},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Normalize(fixedNow, false)
			var verr *ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected missing fields validation error, got %v", err)
			}
		})
	}
}

func TestCandidateNormalizeLooseAndStrict(t *testing.T) {
	c := Candidate{Amount: set("abc"), Description: set("x"), Type: set("gift")}

	d, err := c.Normalize(fixedNow, false)
	if err != nil {
		t.Fatalf("loose mode should accept, got %v", err)
	}
	if d.Amount != 0 || d.Type != "gift" {
		t.Fatalf("unexpected loose draft: %+v", d)
	}

	if _, err := c.Normalize(fixedNow, true); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("strict mode expected ErrInvalidAmount, got %v", err)
	}
	c.Amount = set("5")
	if _, err := c.Normalize(fixedNow, true); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("strict mode expected ErrInvalidType, got %v", err)
	}
	c.Type = set("income")
	if _, err := c.Normalize(fixedNow, true); err != nil {
		t.Fatalf("strict mode valid candidate: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-03-01", "2025-03-01T10:00:00.000Z", "2025-03-01T10:00"} {
		got, ok := ParseDate(s)
		if !ok || got.Year() != 2025 || got.Month() != time.March || got.Day() != 1 {
			t.Fatalf("ParseDate(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := ParseDate("yesterday"); ok {
		t.Fatalf("expected unparseable date")
	}
}
