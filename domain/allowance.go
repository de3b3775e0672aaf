package domain

import (
	"fmt"
	"log"
	"sync"
	"time"

	"commission-fees/events"
)

// DiscountAllowance is a time-bounded quota of fee-free withdrawals owned
// by a single user. Amounts are minor units of the base currency. The
// period is inclusive on both ends at day granularity.
type DiscountAllowance struct {
	ID          string    `json:"id"`
	UserID      int       `json:"userId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Total       int64     `json:"total"`
	Remaining   int64     `json:"remaining"`
	Version     int       `json:"version"`

	mu      sync.Mutex
	changes []events.Event
}

func GrantAllowance(id string, userID int, periodStart, periodEnd time.Time, total int64) (*DiscountAllowance, error) {
	if id == "" {
		return nil, NewDomainError("allowance ID cannot be empty")
	}
	if total < 0 {
		return nil, NewDomainError("allowance total cannot be negative: %d", total)
	}
	start, end := TruncateDay(periodStart), TruncateDay(periodEnd)
	if end.Before(start) {
		return nil, NewDomainError("allowance period ends (%s) before it starts (%s)",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	a := &DiscountAllowance{ID: id}
	event := events.AllowanceGrantedEvent{
		BaseEvent:   events.NewBaseEvent(id, 1, events.AllowanceGrantedType),
		UserID:      userID,
		PeriodStart: start,
		PeriodEnd:   end,
		Total:       total,
	}
	if err := a.handleChange(event); err != nil {
		return nil, err
	}
	return a, nil
}

// Covers reports whether date falls inside the allowance period.
func (a *DiscountAllowance) Covers(date time.Time) bool {
	day := TruncateDay(date)
	return !day.Before(a.PeriodStart) && !day.After(a.PeriodEnd)
}

func (a *DiscountAllowance) Overlaps(start, end time.Time) bool {
	return !TruncateDay(end).Before(a.PeriodStart) && !TruncateDay(start).After(a.PeriodEnd)
}

// Consume deducts amount from the remaining balance and returns the part
// of amount the balance could not cover.
func (a *DiscountAllowance) Consume(amount int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if amount < 0 {
		return 0, fmt.Errorf("%w: cannot consume negative amount %d from allowance %s", ErrInvalidOperation, amount, a.ID)
	}
	if err := a.checkInvariant(a.Remaining); err != nil {
		return 0, err
	}

	covered := min(amount, a.Remaining)
	event := events.AllowanceConsumedEvent{
		BaseEvent: events.NewBaseEvent(a.ID, a.Version+1, events.AllowanceConsumedType),
		Requested: amount,
		Covered:   covered,
		Uncovered: amount - covered,
		Remaining: a.Remaining - covered,
	}
	if err := a.handleChange(event); err != nil {
		return 0, err
	}
	return event.Uncovered, nil
}

func (a *DiscountAllowance) GetUncommitedChanges() []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	unCommittedChanges := a.changes
	a.changes = make([]events.Event, 0)
	return unCommittedChanges
}

func (a *DiscountAllowance) handleChange(event events.Event) error {
	if err := a.ApplyEvent(event); err != nil {
		log.Printf("ERROR: Internal Apply failed for event %T on allowance %s: %v", event, a.ID, err)
		return fmt.Errorf("internal error applying event %T: %w", event, err)
	}
	a.changes = append(a.changes, event)
	return nil
}

func (a *DiscountAllowance) ApplyEvent(event events.Event) error {
	base := event.GetBase()

	if base.Version != a.Version+1 {
		return fmt.Errorf("apply failed: event version mismatch for allowance %s: expected %d, got %d for event %T (%s)",
			a.ID, a.Version+1, base.Version, event, base.EventID)
	}

	switch e := event.(type) {
	case events.AllowanceGrantedEvent:
		a.ID = e.AggregateID
		a.UserID = e.UserID
		a.PeriodStart = e.PeriodStart
		a.PeriodEnd = e.PeriodEnd
		a.Total = e.Total
		a.Remaining = e.Total
	case events.AllowanceConsumedEvent:
		if e.Covered < 0 || e.Covered+e.Uncovered != e.Requested || a.Remaining-e.Covered != e.Remaining {
			log.Printf("CRITICAL: Invariant Violation! Allowance %s consumption does not add up (v%d): remaining %d, requested %d, covered %d, uncovered %d, new remaining %d",
				a.ID, base.Version, a.Remaining, e.Requested, e.Covered, e.Uncovered, e.Remaining)
			return fmt.Errorf("%w: inconsistent consumption applying %T (v%d)", ErrMalformedAllowanceState, event, base.Version)
		}
		if err := a.checkInvariant(e.Remaining); err != nil {
			return err
		}
		a.Remaining = e.Remaining
	default:
		return fmt.Errorf("apply failed: unknown event type %T for allowance %s", event, a.ID)
	}

	a.Version = base.Version
	return nil
}

func (a *DiscountAllowance) ApplyEvents(history []events.Event) error {
	for _, event := range history {
		if err := a.ApplyEvent(event); err != nil {
			base := event.GetBase()
			return fmt.Errorf("failed to apply event %s (%T) at version %d during reconstruction: %w", base.EventID, event, base.Version, err)
		}
	}
	return nil
}

func (a *DiscountAllowance) checkInvariant(remaining int64) error {
	if remaining < 0 || remaining > a.Total {
		log.Printf("CRITICAL: Invariant Violation! Allowance %s remaining balance %d outside [0, %d]", a.ID, remaining, a.Total)
		return fmt.Errorf("%w: allowance %s remaining %d outside [0, %d]", ErrMalformedAllowanceState, a.ID, remaining, a.Total)
	}
	return nil
}

// TruncateDay drops the clock part of t, keeping its calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
