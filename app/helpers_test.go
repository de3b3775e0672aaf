package app_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"commission-fees/app"
	"commission-fees/domain"
	"commission-fees/exchange"
	"commission-fees/shared"
	"commission-fees/store"
)

// Helper to create decimals in tests
func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	users      *app.UserRepository
	operations *app.OperationRepository
	discounts  *app.DiscountRepository
	counter    *app.WeeklyOperationCounter
	engine     *app.CommissionEngine
	journal    *store.InMemoryEventStore
	converter  *exchange.Converter
}

func setup() *fixture {
	persistence := store.NewMemoryStore()
	journal := store.NewInMemoryEventStore()
	operations := app.NewOperationRepository(persistence)
	discounts := app.NewDiscountRepository(persistence, journal)
	counter := app.NewWeeklyOperationCounter(operations)
	converter := exchange.NewConverter(exchange.DefaultRates())

	return &fixture{
		users:      app.NewUserRepository(persistence),
		operations: operations,
		discounts:  discounts,
		counter:    counter,
		engine:     app.NewCommissionEngine(converter, counter, discounts, app.DefaultFeePolicy()),
		journal:    journal,
		converter:  converter,
	}
}

func record(date string, userID int, class shared.UserClass, kind shared.OperationKind, amount int64, currency shared.Currency) app.OperationRecord {
	return app.OperationRecord{
		Date:      day(date),
		UserID:    userID,
		UserClass: class,
		Kind:      kind,
		Amount:    amount,
		Currency:  currency,
	}
}

func (f *fixture) add(t *testing.T, rec app.OperationRecord) *domain.Operation {
	t.Helper()
	user, err := f.users.FindOrCreate(rec)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	op, err := f.operations.Append(rec, user)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return op
}

func (f *fixture) calculate(t *testing.T, op *domain.Operation) domain.Money {
	t.Helper()
	commission, err := f.engine.Calculate(op)
	if err != nil {
		t.Fatalf("Calculate failed for operation %d: %v", op.Sequence, err)
	}
	return commission
}
