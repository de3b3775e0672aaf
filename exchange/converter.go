package exchange

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"commission-fees/shared"
)

// Converter moves amounts between currencies. Every conversion goes
// through the base currency; cross rates are never used. No rounding is
// applied, callers decide on it.
type Converter struct {
	rates Rates
}

func NewConverter(rates Rates) *Converter {
	if rates == nil {
		log.Fatal("FATAL: Rates must not be nil")
	}
	return &Converter{rates: rates}
}

func (c *Converter) BaseCurrency() shared.Currency {
	return c.rates.BaseCurrency()
}

func (c *Converter) Convert(amount decimal.Decimal, to, from shared.Currency) (decimal.Decimal, error) {
	base := c.rates.BaseCurrency()

	if from != base {
		rate, err := c.rates.Rate(from)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot convert from %s: %w", from, err)
		}
		amount = amount.Div(rate)
	}

	if to == base {
		return amount, nil
	}

	rate, err := c.rates.Rate(to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot convert to %s: %w", to, err)
	}
	return amount.Mul(rate), nil
}

// ConvertFromBase converts an amount expressed in the base currency.
func (c *Converter) ConvertFromBase(amount decimal.Decimal, to shared.Currency) (decimal.Decimal, error) {
	return c.Convert(amount, to, c.rates.BaseCurrency())
}

// ToBase converts an amount into the base currency.
func (c *Converter) ToBase(amount decimal.Decimal, from shared.Currency) (decimal.Decimal, error) {
	return c.Convert(amount, c.rates.BaseCurrency(), from)
}
