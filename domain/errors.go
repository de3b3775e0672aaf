package domain

import "fmt"

type DomainError struct {
	message string
}

func NewDomainError(format string, args ...interface{}) *DomainError {
	return &DomainError{message: fmt.Sprintf(format, args...)}
}

func (e *DomainError) Error() string {
	return e.message
}

var (
	ErrUnknownCurrency         = NewDomainError("unknown currency")
	ErrMalformedAllowanceState = NewDomainError("malformed allowance state")
	ErrInvalidOperation        = NewDomainError("invalid operation")
	ErrOverlappingAllowance    = NewDomainError("overlapping allowance period")
)
