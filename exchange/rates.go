package exchange

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"commission-fees/domain"
	"commission-fees/shared"
)

// Rates expresses how many units of a currency one unit of the base
// currency buys.
type Rates interface {
	Rate(currency shared.Currency) (decimal.Decimal, error)
	BaseCurrency() shared.Currency
}

// FixedRates is an immutable rate table.
type FixedRates struct {
	base  shared.Currency
	rates map[shared.Currency]decimal.Decimal
}

func NewFixedRates(base shared.Currency, rates map[shared.Currency]decimal.Decimal) (*FixedRates, error) {
	if base == "" {
		return nil, domain.NewDomainError("base currency cannot be empty")
	}

	copied := make(map[shared.Currency]decimal.Decimal, len(rates)+1)
	for cur, rate := range rates {
		if !rate.IsPositive() {
			return nil, domain.NewDomainError("exchange rate for %s must be positive: %s", cur, rate.String())
		}
		copied[cur] = rate
	}

	baseRate, ok := copied[base]
	if !ok {
		copied[base] = decimal.NewFromInt(1)
	} else if !baseRate.Equal(decimal.NewFromInt(1)) {
		return nil, domain.NewDomainError("base currency %s must have rate 1, got %s", base, baseRate.String())
	}

	return &FixedRates{base: base, rates: copied}, nil
}

// DefaultRates returns the reference table: EUR base, USD 1.1497, JPY 129.53.
func DefaultRates() *FixedRates {
	return &FixedRates{
		base: shared.EUR,
		rates: map[shared.Currency]decimal.Decimal{
			shared.EUR: decimal.NewFromInt(1),
			shared.USD: decimal.RequireFromString("1.1497"),
			shared.JPY: decimal.RequireFromString("129.53"),
		},
	}
}

func (r *FixedRates) Rate(currency shared.Currency) (decimal.Decimal, error) {
	rate, ok := r.rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no exchange rate for %s", domain.ErrUnknownCurrency, currency)
	}
	return rate, nil
}

func (r *FixedRates) BaseCurrency() shared.Currency {
	return r.base
}

// Currencies lists the known currencies, base first, the rest sorted.
func (r *FixedRates) Currencies() []shared.Currency {
	others := make([]shared.Currency, 0, len(r.rates))
	for cur := range r.rates {
		if cur != r.base {
			others = append(others, cur)
		}
	}
	slices.Sort(others)
	return append([]shared.Currency{r.base}, others...)
}
