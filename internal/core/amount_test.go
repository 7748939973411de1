package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"1", 1},
		{"12.34", 12.34},
		{"  7.5", 7.5},
		{"7abc", 7},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"-3", -3},
		{"0", 0},
		{"abc", 0},
		{"", 0},
		{"Infinity", 0},
		{"1,50", 1},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestParseStrictAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"12.34", 12.34, true},
		{" 3 ", 3, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"7abc", 0, false},
		{"Infinity", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseStrictAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestTotalBalance(t *testing.T) {
	if got := TotalBalance(nil); !got.IsZero() {
		t.Fatalf("empty balance = %s, want 0", got)
	}

	txs := []Transaction{
		{Type: Income, Amount: 100},
		{Type: Expense, Amount: 40},
	}
	if got := TotalBalance(txs).String(); got != "60" {
		t.Fatalf("balance = %s, want 60", got)
	}

	// Unknown types reduce the balance like expenses.
	txs = append(txs, Transaction{Type: "refund", Amount: 0.1}, Transaction{Type: Income, Amount: 0.2})
	if got := TotalBalance(txs).StringFixed(2); got != "60.10" {
		t.Fatalf("balance = %s, want 60.10", got)
	}
}

func TestFormatMoney(t *testing.T) {
	txs := []Transaction{{Type: Expense, Amount: 40.5}}
	if got := FormatMoney(TotalBalance(txs)); got != "-$40.50" {
		t.Fatalf("FormatMoney = %q", got)
	}
	if got := FormatMoney(TotalBalance(nil)); got != "$0.00" {
		t.Fatalf("FormatMoney = %q", got)
	}
}
