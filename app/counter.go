package app

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"commission-fees/shared"
)

// WeeklyCounter counts a user's cash-out operations in the ISO week of
// date whose sequence is at or before the given one.
type WeeklyCounter interface {
	CountSoFar(date time.Time, userID, sequence int) int
}

// WeeklyOperationCounter answers from a (user, ISO week) index of
// cash-out sequences. The index is rebuilt whenever the operation
// repository has changed since it was last built.
type WeeklyOperationCounter struct {
	operations *OperationRepository

	mu      sync.Mutex
	index   *cache.Cache
	indexed uint64
	built   bool
}

func NewWeeklyOperationCounter(operations *OperationRepository) *WeeklyOperationCounter {
	return &WeeklyOperationCounter{
		operations: operations,
		index:      cache.New(cache.NoExpiration, 0),
	}
}

func (c *WeeklyOperationCounter) CountSoFar(date time.Time, userID, sequence int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refresh()

	entry, ok := c.index.Get(weekKey(userID, date))
	if !ok {
		return 0
	}
	sequences := entry.([]int)
	return sort.SearchInts(sequences, sequence+1)
}

func (c *WeeklyOperationCounter) refresh() {
	version := c.operations.Version()
	if c.built && version == c.indexed {
		return
	}

	c.index.Flush()
	grouped := make(map[string][]int)
	for _, op := range c.operations.All() {
		if op.Kind != shared.CashOut {
			continue
		}
		key := weekKey(op.User.ID, op.Date)
		grouped[key] = append(grouped[key], op.Sequence)
	}
	for key, sequences := range grouped {
		sort.Ints(sequences)
		c.index.Set(key, sequences, cache.NoExpiration)
	}

	c.indexed = version
	c.built = true
	log.Printf("Weekly operation index rebuilt: %d user-weeks at repository version %d", len(grouped), version)
}

func weekKey(userID int, date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%d:%04d-W%02d", userID, year, week)
}

// WeekBounds returns Monday and Sunday of the ISO week containing date.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
