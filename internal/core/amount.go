// Package core provides the transaction model and its money helpers.
//
// This file contains the amount coercion used by the create endpoint and the
// signed aggregation shown as the running balance.
package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	leadingNumber = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	wholeNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// ParseAmount coerces a raw amount to a number the way a browser's
// parseFloat does: leading whitespace is skipped and the longest numeric
// prefix is used. Values with no numeric prefix, and non-finite values,
// become zero.
//
// Examples:
//
//	ParseAmount("12.5")     -> 12.5
//	ParseAmount(" 7abc")    -> 7
//	ParseAmount("1e3")      -> 1000
//	ParseAmount("abc")      -> 0
//	ParseAmount("Infinity") -> 0
func ParseAmount(s string) float64 {
	m := leadingNumber.FindString(strings.TrimLeft(s, " \t\n\r\f\v"))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ParseStrictAmount accepts only a complete, finite, positive decimal number.
func ParseStrictAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !wholeNumber.MatchString(s) {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Signed returns the amount with the sign of its effect on the balance:
// positive for income, negative for everything else.
func (t Transaction) Signed() decimal.Decimal {
	d := decimal.NewFromFloat(t.Amount)
	if t.Type == Income {
		return d
	}
	return d.Neg()
}

// TotalBalance folds the signed amounts left to right. An empty slice sums to zero.
func TotalBalance(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Signed())
	}
	return sum
}

// FormatMoney renders d with two decimals and a dollar sign, e.g. "$60.00" or "-$40.00".
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
