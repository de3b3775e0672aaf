package app

import (
	"errors"
	"fmt"
	"log"

	"commission-fees/domain"
	"commission-fees/exchange"
	"commission-fees/shared"
	"commission-fees/store"
)

// BatchOptions tunes a BatchService run. The zero value charges the
// default policy with no weekly allowance and two decimal places everywhere.
type BatchOptions struct {
	Policy    FeePolicy
	Precision domain.PrecisionTable
	// WeeklyAllowance is granted to a natural user for any ISO week in which
	// they cash out without an allowance. Zero disables it.
	WeeklyAllowance int64
}

// DefaultBatchOptions returns the reference policy: JPY printed without
// decimals and a 1000.00 EUR weekly allowance for natural users.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Policy:          DefaultFeePolicy(),
		Precision:       domain.PrecisionTable{shared.JPY: 0},
		WeeklyAllowance: 100000,
	}
}

// BatchService acts as the application layer for a batch run, orchestrating
// the interaction between incoming records and grant commands, the
// repositories (users, operations, allowances), and the CommissionEngine.
// A batch is always ingested in full before any commission is calculated,
// so weekly counts see every operation of the batch.
type BatchService struct {
	users      *UserRepository
	operations *OperationRepository
	discounts  *DiscountRepository
	counter    *WeeklyOperationCounter
	engine     *CommissionEngine
	opts       BatchOptions
}

func NewBatchService(p store.Persistence, journal store.EventStore, converter *exchange.Converter, opts BatchOptions) *BatchService {
	if p == nil || journal == nil || converter == nil {
		log.Fatal("FATAL: Persistence, EventStore and Converter must not be nil")
	}

	operations := NewOperationRepository(p)
	discounts := NewDiscountRepository(p, journal)
	counter := NewWeeklyOperationCounter(operations)

	return &BatchService{
		users:      NewUserRepository(p),
		operations: operations,
		discounts:  discounts,
		counter:    counter,
		engine:     NewCommissionEngine(converter, counter, discounts, opts.Policy),
		opts:       opts,
	}
}

// Discounts exposes the allowance repository, e.g. for journal inspection
// after a run.
func (s *BatchService) Discounts() *DiscountRepository {
	return s.discounts
}

// --- Command Handlers ---
// These methods change the state of the batch. They typically involve:
// 1. Resolving the user the command refers to (find-or-create on ingest).
// 2. Validating and storing the new entity (operation or allowance).
// 3. Persisting allowance events to the journal.
// A failing record or grant aborts the command; nothing after it is stored.

// Ingest stores the records as operations, numbering them after any
// operations already stored. Users are registered on first sight and keep
// the class they were first seen with.
func (s *BatchService) Ingest(records []OperationRecord) ([]*domain.Operation, error) {
	ops := make([]*domain.Operation, 0, len(records))
	for i, rec := range records {
		user, err := s.users.FindOrCreate(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		op, err := s.operations.Append(rec, user)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	log.Printf("Ingested %d operations, %d stored in total", len(ops), s.operations.Len())
	return ops, nil
}

// Grant creates an allowance for an already known user. Allowances of one
// user may not overlap, so granting before Calculate replaces the weekly
// allowance for the covered days.
func (s *BatchService) Grant(cmd GrantAllowanceCommand) (*domain.DiscountAllowance, error) {
	user, ok := s.users.Find(cmd.UserID)
	if !ok {
		return nil, fmt.Errorf("cannot grant allowance: %w: user %d", store.ErrNotFound, cmd.UserID)
	}
	return s.discounts.Grant(user, cmd.PeriodStart, cmd.PeriodEnd, cmd.Amount)
}

// --- Calculation ---
// Commissions depend on earlier operations of the same user (weekly counts
// and allowance balances), so they are computed strictly in sequence order.

// Calculate runs the engine over ops in order, granting the weekly
// allowance where one is due, and formats each commission with its
// currency's precision. The first failure aborts the batch.
func (s *BatchService) Calculate(ops []*domain.Operation) ([]CommissionResult, error) {
	results := make([]CommissionResult, 0, len(ops))
	for _, op := range ops {
		if err := s.ensureWeeklyAllowance(op); err != nil {
			return nil, err
		}

		commission, err := s.engine.Calculate(op)
		if err != nil {
			return nil, err
		}
		results = append(results, CommissionResult{
			Sequence:   op.Sequence,
			Commission: commission,
			Formatted:  commission.Format(s.opts.Precision.For(op.Currency)),
		})
	}
	return results, nil
}

// Process ingests records and calculates them in one go.
func (s *BatchService) Process(records []OperationRecord) ([]CommissionResult, error) {
	ops, err := s.Ingest(records)
	if err != nil {
		return nil, err
	}
	return s.Calculate(ops)
}

// ensureWeeklyAllowance grants the configured weekly allowance to a natural
// user cashing out in an ISO week that no allowance covers yet. A collision
// with a partial explicit grant is logged and skipped; the operation then
// pays the regular commission.
func (s *BatchService) ensureWeeklyAllowance(op *domain.Operation) error {
	if s.opts.WeeklyAllowance <= 0 || op == nil || op.User == nil {
		return nil
	}
	if op.Kind != shared.CashOut || op.User.Class != shared.Natural {
		return nil
	}
	if s.discounts.FindActive(op.User.ID, op.Date) != nil {
		return nil
	}

	monday, sunday := WeekBounds(op.Date)
	_, err := s.discounts.Grant(op.User, monday, sunday, s.opts.WeeklyAllowance)
	if errors.Is(err, domain.ErrOverlappingAllowance) {
		log.Printf("Warning: weekly allowance for user %d not granted: %v", op.User.ID, err)
		return nil
	}
	return err
}
