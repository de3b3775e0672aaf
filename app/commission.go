package app

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"commission-fees/domain"
	"commission-fees/exchange"
	"commission-fees/shared"
)

var hundred = decimal.NewFromInt(100)

// FeePolicy holds the commission rules. Percentages are plain percents
// (0.3 means 0.3 %). Limits are minor units of the base currency.
type FeePolicy struct {
	CashInPercent        decimal.Decimal
	CashInMax            int64
	CashOutPercent       decimal.Decimal
	CashOutLegalMin      int64
	WeeklyFreeOperations int
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		CashInPercent:        decimal.RequireFromString("0.03"),
		CashInMax:            50000,
		CashOutPercent:       decimal.RequireFromString("0.3"),
		CashOutLegalMin:      5000,
		WeeklyFreeOperations: 3,
	}
}

func (p FeePolicy) cashInRate() decimal.Decimal {
	return p.CashInPercent.Div(hundred)
}

func (p FeePolicy) cashOutRate() decimal.Decimal {
	return p.CashOutPercent.Div(hundred)
}

// CommissionEngine decides the commission of a single operation. Weekly
// counts and allowance balances carry over between calls, so operations
// must be passed in sequence order.
type CommissionEngine struct {
	converter *exchange.Converter
	counter   WeeklyCounter
	discounts AllowanceLedger
	policy    FeePolicy
}

func NewCommissionEngine(converter *exchange.Converter, counter WeeklyCounter, discounts AllowanceLedger, policy FeePolicy) *CommissionEngine {
	if converter == nil || counter == nil || discounts == nil {
		log.Fatal("FATAL: Converter, WeeklyCounter and AllowanceLedger must not be nil")
	}
	return &CommissionEngine{
		converter: converter,
		counter:   counter,
		discounts: discounts,
		policy:    policy,
	}
}

// Calculate returns the commission in the operation's currency, in minor
// units and not yet rounded.
func (e *CommissionEngine) Calculate(op *domain.Operation) (domain.Money, error) {
	if err := op.Validate(); err != nil {
		return domain.Money{}, err
	}

	var (
		commission domain.Money
		err        error
	)
	switch op.Kind {
	case shared.CashIn:
		commission, err = e.cashIn(op)
	case shared.CashOut:
		commission, err = e.cashOut(op)
	default:
		return domain.Money{}, fmt.Errorf("%w: unhandled operation kind %s", domain.ErrInvalidOperation, op.Kind)
	}
	if err != nil {
		return domain.Money{}, fmt.Errorf("commission calculation failed for operation %d: %w", op.Sequence, err)
	}

	log.Printf("Operation %d (%s, %s user %d, %d %s): commission %s",
		op.Sequence, op.Kind, op.User.Class, op.User.ID, op.Amount, op.Currency, commission.Amount.String())
	return commission, nil
}

func (e *CommissionEngine) cashIn(op *domain.Operation) (domain.Money, error) {
	base := e.converter.BaseCurrency()
	fee := decimal.NewFromInt(op.Amount).Mul(e.policy.cashInRate())

	feeBase, err := e.converter.ToBase(fee, op.Currency)
	if err != nil {
		return domain.Money{}, err
	}

	maxFee := domain.NewMoney(decimal.NewFromInt(e.policy.CashInMax), base)
	exceeds, err := domain.NewMoney(feeBase, base).GreaterThan(maxFee)
	if err != nil {
		return domain.Money{}, err
	}
	if exceeds {
		fee, err = e.converter.ConvertFromBase(maxFee.Amount, op.Currency)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return domain.NewMoney(fee, op.Currency), nil
}

func (e *CommissionEngine) cashOut(op *domain.Operation) (domain.Money, error) {
	switch op.User.Class {
	case shared.Legal:
		return e.cashOutLegal(op)
	case shared.Natural:
		return e.cashOutNatural(op)
	default:
		return domain.Money{}, fmt.Errorf("%w: unhandled user class %s", domain.ErrInvalidOperation, op.User.Class)
	}
}

func (e *CommissionEngine) cashOutLegal(op *domain.Operation) (domain.Money, error) {
	base := e.converter.BaseCurrency()
	fee := decimal.NewFromInt(op.Amount).Mul(e.policy.cashOutRate())

	feeBase, err := e.converter.ToBase(fee, op.Currency)
	if err != nil {
		return domain.Money{}, err
	}

	minFee := domain.NewMoney(decimal.NewFromInt(e.policy.CashOutLegalMin), base)
	below, err := domain.NewMoney(feeBase, base).LessThanOrEqual(minFee)
	if err != nil {
		return domain.Money{}, err
	}
	if below {
		fee, err = e.converter.ConvertFromBase(minFee.Amount, op.Currency)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return domain.NewMoney(fee, op.Currency), nil
}

func (e *CommissionEngine) cashOutNatural(op *domain.Operation) (domain.Money, error) {
	count := e.counter.CountSoFar(op.Date, op.User.ID, op.Sequence)
	if count > e.policy.WeeklyFreeOperations {
		return e.regularCashOut(op)
	}

	allowance := e.discounts.FindActive(op.User.ID, op.Date)
	if allowance == nil {
		return e.regularCashOut(op)
	}
	return e.discountedCashOut(op, allowance)
}

// regularCashOut charges the full cash-out percentage. The amount is
// treated as base currency and converted into the operation currency, the
// same conversion the weekly allowance path applies to its uncovered part.
func (e *CommissionEngine) regularCashOut(op *domain.Operation) (domain.Money, error) {
	amount, err := e.converter.ConvertFromBase(decimal.NewFromInt(op.Amount), op.Currency)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(amount.Mul(e.policy.cashOutRate()), op.Currency), nil
}

func (e *CommissionEngine) discountedCashOut(op *domain.Operation, allowance *domain.DiscountAllowance) (domain.Money, error) {
	amountBase, err := e.converter.ToBase(domain.ToMajor(decimal.NewFromInt(op.Amount)), op.Currency)
	if err != nil {
		return domain.Money{}, err
	}
	requested := domain.ToMinor(domain.CeilCents(amountBase)).IntPart()

	uncovered, err := allowance.Consume(requested)
	if err != nil {
		return domain.Money{}, err
	}
	if err := e.discounts.Commit(allowance); err != nil {
		return domain.Money{}, err
	}

	if uncovered == 0 {
		return domain.NewMoney(decimal.Zero, op.Currency), nil
	}

	uncoveredInCurrency, err := e.converter.ConvertFromBase(decimal.NewFromInt(uncovered), op.Currency)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(uncoveredInCurrency.Mul(e.policy.cashOutRate()), op.Currency), nil
}
