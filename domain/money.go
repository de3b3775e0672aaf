package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"commission-fees/shared"
)

const DefaultPrecision int32 = 2

var minorPerMajor = decimal.NewFromInt(100)

// Money holds an amount in minor units. The amount may carry a fraction
// of a minor unit until it is formatted.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency shared.Currency `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency shared.Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, fmt.Errorf("currency mismatch: cannot compare %s and %s", m.Currency, other.Currency)
	}
	return m.Amount.GreaterThan(other.Amount), nil
}

func (m Money) LessThanOrEqual(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, fmt.Errorf("currency mismatch: cannot compare %s and %s", m.Currency, other.Currency)
	}
	return m.Amount.LessThanOrEqual(other.Amount), nil
}

// Format renders the amount in major units with the given number of
// decimal places, rounding half away from zero.
func (m Money) Format(precision int32) string {
	return m.Amount.Div(minorPerMajor).StringFixed(precision)
}

// ToMajor expresses a minor unit amount in major units.
func ToMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Div(minorPerMajor)
}

// ToMinor expresses a major unit amount in minor units, without rounding.
func ToMinor(major decimal.Decimal) decimal.Decimal {
	return major.Mul(minorPerMajor)
}

// CeilCents rounds a major unit amount up to the next cent.
func CeilCents(major decimal.Decimal) decimal.Decimal {
	return major.RoundCeil(2)
}

// ParseMinorUnits parses a major unit amount such as "1200.00" into
// integer minor units. Fractions below one minor unit are rejected.
func ParseMinorUnits(s string) (int64, error) {
	major, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %q: %w", s, err)
	}
	if major.IsNegative() {
		return 0, NewDomainError("amount cannot be negative: %s", s)
	}
	minor := ToMinor(major)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, NewDomainError("amount %s has more than two decimal places", s)
	}
	return minor.IntPart(), nil
}

// PrecisionTable maps a currency to the number of decimal places it is
// conventionally displayed with.
type PrecisionTable map[shared.Currency]int32

func (p PrecisionTable) For(currency shared.Currency) int32 {
	if places, ok := p[currency]; ok {
		return places
	}
	return DefaultPrecision
}

func decimalFromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor)
}
