package store

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"commission-fees/events"
)

var (
	ErrOptimisticLock = errors.New("optimistic lock error: version conflict")
	ErrNotFound       = errors.New("aggregate not found")
)

// EventStore keeps the append-only history of allowance aggregates.
type EventStore interface {
	SaveEvents(aggregateID string, expectedVersion int, eventsToSave []events.Event) error

	GetEvents(aggregateID string) ([]events.Event, error)

	// AggregateIDs lists aggregates in the order their first event was saved.
	AggregateIDs() []string
}

type InMemoryEventStore struct {
	sync.RWMutex
	streams map[string][]events.Event
	order   []string
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		streams: make(map[string][]events.Event),
	}
}

func (s *InMemoryEventStore) SaveEvents(aggregateID string, expectedVersion int, newEvents []events.Event) error {
	s.Lock()
	defer s.Unlock()

	if len(newEvents) == 0 {
		log.Printf("Warning: SaveEvents called with zero events for aggregate %s", aggregateID)
		return nil
	}

	stream, streamExists := s.streams[aggregateID]
	currentVersion := 0
	if streamExists && len(stream) > 0 {
		currentVersion = stream[len(stream)-1].GetBase().Version
	}

	if currentVersion != expectedVersion {
		return fmt.Errorf("%w: expected version %d, but current version is %d for aggregate %s",
			ErrOptimisticLock, expectedVersion, currentVersion, aggregateID)
	}

	nextVersion := expectedVersion
	for _, event := range newEvents {
		base := event.GetBase()
		nextVersion++
		if base.Version != nextVersion {
			return fmt.Errorf("event sequence error for aggregate %s: expected version %d for event %T (%s), but got %d",
				aggregateID, nextVersion, event, base.EventID, base.Version)
		}
		if base.AggregateID != aggregateID {
			return fmt.Errorf("event aggregate ID mismatch: stream is for %s, but event %T (%s) has ID %s",
				aggregateID, event, base.EventID, base.AggregateID)
		}
	}

	if !streamExists {
		s.order = append(s.order, aggregateID)
	}
	s.streams[aggregateID] = append(s.streams[aggregateID], newEvents...)

	return nil
}

func (s *InMemoryEventStore) GetEvents(aggregateID string) ([]events.Event, error) {
	s.RLock()
	defer s.RUnlock()

	streamData, ok := s.streams[aggregateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, aggregateID)
	}

	copiedStream := make([]events.Event, len(streamData))
	copy(copiedStream, streamData)
	return copiedStream, nil
}

func (s *InMemoryEventStore) AggregateIDs() []string {
	s.RLock()
	defer s.RUnlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}
