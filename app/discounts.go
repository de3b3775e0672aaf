package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"commission-fees/domain"
	"commission-fees/store"
)

// AllowanceLedger finds and persists discount allowances for the engine.
type AllowanceLedger interface {
	FindActive(userID int, date time.Time) *domain.DiscountAllowance
	Commit(allowance *domain.DiscountAllowance) error
}

// DiscountRepository keeps allowances in the discount collection and their
// history in the event store. The stored aggregate is the live state; the
// journal is the audit trail and can rebuild any allowance through Replay.
type DiscountRepository struct {
	persistence store.Persistence
	journal     store.EventStore

	mu sync.Mutex
}

func NewDiscountRepository(p store.Persistence, journal store.EventStore) *DiscountRepository {
	if p == nil || journal == nil {
		log.Fatal("FATAL: Persistence and EventStore must not be nil")
	}
	return &DiscountRepository{persistence: p, journal: journal}
}

// --- Command Handlers ---
// Grant and Commit change allowance state. Each one:
// 1. Lets the aggregate validate the change and raise events.
// 2. Saves the uncommitted events with the version they were based on.
// 3. Fails with store.ErrOptimisticLock if the journal moved meanwhile.

// Grant creates a new allowance. Periods of one user may not overlap, which
// keeps FindActive unambiguous.
func (r *DiscountRepository) Grant(user *domain.User, periodStart, periodEnd time.Time, total int64) (*domain.DiscountAllowance, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: cannot grant allowance without a user", domain.ErrInvalidOperation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.All() {
		if existing.UserID == user.ID && existing.Overlaps(periodStart, periodEnd) {
			return nil, fmt.Errorf("%w: user %d already has allowance %s for %s..%s",
				domain.ErrOverlappingAllowance, user.ID, existing.ID,
				existing.PeriodStart.Format(time.DateOnly), existing.PeriodEnd.Format(time.DateOnly))
		}
	}

	allowance, err := domain.GrantAllowance(uuid.NewString(), user.ID, periodStart, periodEnd, total)
	if err != nil {
		return nil, fmt.Errorf("allowance grant failed validation: %w", err)
	}
	if err := r.Commit(allowance); err != nil {
		return nil, err
	}
	r.persistence.Save(discountsCollection, allowance)

	log.Printf("Allowance %s granted to user %d: %d for %s..%s", allowance.ID, user.ID, total,
		allowance.PeriodStart.Format(time.DateOnly), allowance.PeriodEnd.Format(time.DateOnly))
	return allowance, nil
}

// Commit appends the allowance's pending events to the journal. It is a
// no-op when nothing changed since the last commit.
func (r *DiscountRepository) Commit(allowance *domain.DiscountAllowance) error {
	changes := allowance.GetUncommitedChanges()
	if len(changes) == 0 {
		return nil
	}
	expectedVersion := allowance.Version - len(changes)
	if err := r.journal.SaveEvents(allowance.ID, expectedVersion, changes); err != nil {
		return fmt.Errorf("failed to save events for allowance %s: %w", allowance.ID, err)
	}
	return nil
}

// --- Query Handlers ---

// FindActive returns the allowance of userID covering date, or nil.
func (r *DiscountRepository) FindActive(userID int, date time.Time) *domain.DiscountAllowance {
	for _, allowance := range r.All() {
		if allowance.UserID == userID && allowance.Covers(date) {
			return allowance
		}
	}
	return nil
}

// All returns the allowances in grant order.
func (r *DiscountRepository) All() []*domain.DiscountAllowance {
	entities := r.persistence.FindAll(discountsCollection)
	allowances := make([]*domain.DiscountAllowance, 0, len(entities))
	for _, entity := range entities {
		if allowance, ok := entity.(*domain.DiscountAllowance); ok {
			allowances = append(allowances, allowance)
		}
	}
	return allowances
}

// Replay rebuilds an allowance from its journal alone, without touching
// the stored aggregate. A mismatch with the stored state points at a
// consumption that was never committed.
func (r *DiscountRepository) Replay(id string) (*domain.DiscountAllowance, error) {
	history, err := r.journal.GetEvents(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of allowance %s: %w", id, err)
	}
	allowance := &domain.DiscountAllowance{}
	if err := allowance.ApplyEvents(history); err != nil {
		return nil, fmt.Errorf("failed to replay allowance %s: %w", id, err)
	}
	return allowance, nil
}
