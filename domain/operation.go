package domain

import (
	"fmt"
	"time"

	"commission-fees/shared"
)

type User struct {
	ID    int              `json:"id"`
	Class shared.UserClass `json:"class"`
}

func NewUser(id int, class shared.UserClass) *User {
	return &User{ID: id, Class: class}
}

// Operation is a single cash-in or cash-out. Sequence reflects the
// position of the operation in the input batch, starting at 1.
type Operation struct {
	Sequence int                  `json:"sequence"`
	Date     time.Time            `json:"date"`
	Kind     shared.OperationKind `json:"kind"`
	Amount   int64                `json:"amount"`
	Currency shared.Currency      `json:"currency"`
	User     *User                `json:"user"`
}

func (o *Operation) Money() Money {
	return NewMoney(decimalFromMinor(o.Amount), o.Currency)
}

func (o *Operation) Validate() error {
	if o == nil {
		return fmt.Errorf("%w: nil operation", ErrInvalidOperation)
	}
	if o.User == nil {
		return fmt.Errorf("%w: operation %d has no user", ErrInvalidOperation, o.Sequence)
	}
	if o.Date.IsZero() {
		return fmt.Errorf("%w: operation %d has no date", ErrInvalidOperation, o.Sequence)
	}
	if o.Currency == "" {
		return fmt.Errorf("%w: operation %d has no currency", ErrInvalidOperation, o.Sequence)
	}
	if o.Amount < 0 {
		return fmt.Errorf("%w: operation %d has negative amount %d", ErrInvalidOperation, o.Sequence, o.Amount)
	}
	if o.Kind != shared.CashIn && o.Kind != shared.CashOut {
		return fmt.Errorf("%w: operation %d has unknown kind %s", ErrInvalidOperation, o.Sequence, o.Kind)
	}
	if o.User.Class != shared.Natural && o.User.Class != shared.Legal {
		return fmt.Errorf("%w: user %d has unknown class %s", ErrInvalidOperation, o.User.ID, o.User.Class)
	}
	return nil
}
