package shared

import (
	"fmt"
	"strings"
)

type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	JPY Currency = "JPY"
)

// ParseCurrency normalizes a three letter currency code.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code: %q", s)
	}
	return Currency(code), nil
}

type OperationKind int

const (
	CashIn OperationKind = iota + 1
	CashOut
)

func (k OperationKind) String() string {
	switch k {
	case CashIn:
		return "cash_in"
	case CashOut:
		return "cash_out"
	default:
		return fmt.Sprintf("OperationKind(%d)", int(k))
	}
}

func ParseOperationKind(s string) (OperationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash_in":
		return CashIn, nil
	case "cash_out":
		return CashOut, nil
	default:
		return 0, fmt.Errorf("unknown operation type: %q", s)
	}
}

type UserClass int

const (
	Natural UserClass = iota + 1
	Legal
)

func (c UserClass) String() string {
	switch c {
	case Natural:
		return "natural"
	case Legal:
		return "legal"
	default:
		return fmt.Sprintf("UserClass(%d)", int(c))
	}
}

func ParseUserClass(s string) (UserClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural":
		return Natural, nil
	case "legal":
		return Legal, nil
	default:
		return 0, fmt.Errorf("unknown user type: %q", s)
	}
}
