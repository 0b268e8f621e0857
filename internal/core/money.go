// Package core holds the ledger domain model: accounts, categories,
// transactions, monetary amounts and the balance fold.
//
// All monetary math happens in integer cents. Decimal input is parsed
// once at the boundary; conversion back to display units happens only in
// the presentation layer.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (cents).
type Money struct {
	Cents int64
}

var centFactor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to cents, rounding half away
// from zero on the third decimal place. Both dot and comma separators
// are accepted. Only strictly positive amounts are valid: the sign of a
// transaction is carried by its kind, never by the stored amount.
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235 (rounds up)
//	ParseAmount("-5")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centFactor).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	v := cents.IntPart()
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: v}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Units returns the amount in major currency units for display purposes.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}
