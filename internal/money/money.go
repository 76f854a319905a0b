package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Exponent is the number of decimal places of the minor currency unit.
const Exponent = 2

// Money is a fixed-point decimal amount. All monetary fields in the system
// use this type; float64 is never used for money.
type Money struct {
	decimal.Decimal
}

func Zero() Money {
	return Money{decimal.Zero}
}

// FromMinorUnits builds an amount from minor currency units (e.g. cents).
func FromMinorUnits(units int64) Money {
	return Money{decimal.New(units, -Exponent)}
}

func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -Exponent {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d decimal places", s, Exponent)
	}
	return Money{d.Round(Exponent)}, nil
}

func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

func (m Money) IsPositive() bool {
	return m.Decimal.IsPositive()
}

// Split divides the amount into a platform fee and a remainder. The fee is
// feeBPS basis points of the amount, rounded half-even on the minor unit;
// the remainder is the exact difference, so fee + rest always equals m.
func (m Money) Split(feeBPS int) (fee, rest Money) {
	f := m.Decimal.Mul(decimal.New(int64(feeBPS), -4)).RoundBank(Exponent)
	fee = Money{f}
	rest = Money{m.Decimal.Sub(f)}
	return fee, rest
}

// MinorUnits returns the amount expressed in minor currency units.
func (m Money) MinorUnits() int64 {
	return m.Decimal.Shift(Exponent).IntPart()
}
