package app

import (
	"fmt"
	"log"
	"sync"

	"commission-fees/domain"
	"commission-fees/store"
)

const (
	usersCollection      = "user"
	operationsCollection = "operation"
	discountsCollection  = "discount"
)

type UserRepository struct {
	persistence store.Persistence
}

func NewUserRepository(p store.Persistence) *UserRepository {
	return &UserRepository{persistence: p}
}

func (r *UserRepository) Find(id int) (*domain.User, bool) {
	entity, ok := r.persistence.Find(usersCollection, id)
	if !ok {
		return nil, false
	}
	user, ok := entity.(*domain.User)
	return user, ok
}

// FindOrCreate returns the stored user or stores a new one. A user keeps
// the class it was first seen with.
func (r *UserRepository) FindOrCreate(rec OperationRecord) (*domain.User, error) {
	if user, ok := r.Find(rec.UserID); ok {
		if user.Class != rec.UserClass {
			return nil, fmt.Errorf("%w: user %d is %s but a record marks it %s",
				domain.ErrInvalidOperation, rec.UserID, user.Class, rec.UserClass)
		}
		return user, nil
	}

	user := domain.NewUser(rec.UserID, rec.UserClass)
	if err := r.persistence.SaveAt(usersCollection, rec.UserID, user); err != nil {
		return nil, fmt.Errorf("failed to save user %d: %w", rec.UserID, err)
	}
	log.Printf("Registered %s user %d", user.Class, user.ID)
	return user, nil
}

// OperationRepository stores operations keyed by their sequence index.
type OperationRepository struct {
	persistence store.Persistence

	mu      sync.RWMutex
	version uint64
	last    int
}

func NewOperationRepository(p store.Persistence) *OperationRepository {
	return &OperationRepository{persistence: p}
}

// Append stores the record as the next operation of the batch.
func (r *OperationRepository) Append(rec OperationRecord, user *domain.User) (*domain.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op := &domain.Operation{
		Sequence: r.last + 1,
		Date:     domain.TruncateDay(rec.Date),
		Kind:     rec.Kind,
		Amount:   rec.Amount,
		Currency: rec.Currency,
		User:     user,
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	if err := r.persistence.SaveAt(operationsCollection, op.Sequence, op); err != nil {
		return nil, fmt.Errorf("failed to save operation %d: %w", op.Sequence, err)
	}
	r.last = op.Sequence
	r.version++
	return op, nil
}

func (r *OperationRepository) Find(sequence int) (*domain.Operation, bool) {
	entity, ok := r.persistence.Find(operationsCollection, sequence)
	if !ok {
		return nil, false
	}
	op, ok := entity.(*domain.Operation)
	return op, ok
}

// All returns the operations in sequence order.
func (r *OperationRepository) All() []*domain.Operation {
	entities := r.persistence.FindAll(operationsCollection)
	ops := make([]*domain.Operation, 0, len(entities))
	for _, entity := range entities {
		if op, ok := entity.(*domain.Operation); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Len returns the number of stored operations.
func (r *OperationRepository) Len() int {
	return r.persistence.Len(operationsCollection)
}

// Version changes every time an operation is stored.
func (r *OperationRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
