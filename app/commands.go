package app

import (
	"time"

	"commission-fees/domain"
	"commission-fees/shared"
)

// OperationRecord is one row of the input batch. Amount is in minor units.
type OperationRecord struct {
	Date      time.Time
	UserID    int
	UserClass shared.UserClass
	Kind      shared.OperationKind
	Amount    int64
	Currency  shared.Currency
}

type GrantAllowanceCommand struct {
	UserID      int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Amount      int64 // minor units of the base currency
}

// CommissionResult is the outcome for one operation of the batch.
type CommissionResult struct {
	Sequence   int
	Commission domain.Money
	Formatted  string
}
