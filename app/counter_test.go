package app_test

import (
	"testing"

	"commission-fees/app"
	"commission-fees/domain"
	"commission-fees/shared"
)

// countByScan counts the cash-outs of op's user in op's ISO week up to and
// including op, straight from the operation list.
func countByScan(all []*domain.Operation, op *domain.Operation) int {
	year, week := op.Date.ISOWeek()
	count := 0
	for _, other := range all {
		if other.Sequence > op.Sequence || other.Kind != shared.CashOut || other.User.ID != op.User.ID {
			continue
		}
		y, w := other.Date.ISOWeek()
		if y == year && w == week {
			count++
		}
	}
	return count
}

func TestWeeklyOperationCounter_MatchesScan(t *testing.T) {
	f := setup()
	records := []struct {
		date  string
		user  int
		class shared.UserClass
		kind  shared.OperationKind
	}{
		{"2014-12-29", 1, shared.Natural, shared.CashOut},
		{"2014-12-31", 1, shared.Natural, shared.CashOut},
		{"2015-01-01", 1, shared.Natural, shared.CashOut},
		{"2015-01-01", 2, shared.Legal, shared.CashOut},
		{"2015-01-02", 1, shared.Natural, shared.CashIn},
		{"2015-01-04", 1, shared.Natural, shared.CashOut},
		{"2015-01-05", 1, shared.Natural, shared.CashOut},
		{"2015-01-05", 2, shared.Legal, shared.CashOut},
		{"2014-12-30", 1, shared.Natural, shared.CashOut},
	}
	for _, r := range records {
		f.add(t, record(r.date, r.user, r.class, r.kind, 100, shared.EUR))
	}

	all := f.operations.All()
	for _, op := range all {
		if op.Kind == shared.CashIn {
			continue
		}
		want := countByScan(all, op)
		got := f.counter.CountSoFar(op.Date, op.User.ID, op.Sequence)
		if got != want {
			t.Errorf("Operation %d (%s, user %d): expected count %d, got %d",
				op.Sequence, op.Date.Format("2006-01-02"), op.User.ID, want, got)
		}
	}

	// 2014-12-29..2015-01-04 is one ISO week, so the cash-out on 2015-01-04
	// is the fourth of user 1 and the late 2014-12-30 record the fifth.
	if got := f.counter.CountSoFar(day("2015-01-04"), 1, 6); got != 4 {
		t.Errorf("Expected 4 cash-outs across the year boundary, got %d", got)
	}
	if got := f.counter.CountSoFar(day("2014-12-30"), 1, 9); got != 5 {
		t.Errorf("Expected 5 cash-outs including out-of-order date, got %d", got)
	}
	if got := f.counter.CountSoFar(day("2015-01-05"), 1, 7); got != 1 {
		t.Errorf("Expected count to reset on Monday, got %d", got)
	}
}

func TestWeeklyOperationCounter_SeesNewOperations(t *testing.T) {
	f := setup()
	f.add(t, record("2016-01-04", 1, shared.Natural, shared.CashOut, 100, shared.EUR))

	if got := f.counter.CountSoFar(day("2016-01-04"), 1, 10); got != 1 {
		t.Fatalf("Expected count 1, got %d", got)
	}

	f.add(t, record("2016-01-05", 1, shared.Natural, shared.CashOut, 100, shared.EUR))
	if got := f.counter.CountSoFar(day("2016-01-05"), 1, 10); got != 2 {
		t.Errorf("Expected count 2 after append, got %d", got)
	}
}

func TestWeeklyOperationCounter_UnknownUser(t *testing.T) {
	f := setup()
	f.add(t, record("2016-01-04", 1, shared.Natural, shared.CashOut, 100, shared.EUR))

	if got := f.counter.CountSoFar(day("2016-01-04"), 99, 1); got != 0 {
		t.Errorf("Expected 0 for unknown user, got %d", got)
	}
}

func TestWeekBounds(t *testing.T) {
	testCases := []struct {
		date, monday, sunday string
	}{
		{"2016-01-04", "2016-01-04", "2016-01-10"},
		{"2016-01-10", "2016-01-04", "2016-01-10"},
		{"2014-12-31", "2014-12-29", "2015-01-04"},
		{"2016-02-29", "2016-02-29", "2016-03-06"},
	}

	for _, tc := range testCases {
		t.Run(tc.date, func(t *testing.T) {
			monday, sunday := app.WeekBounds(day(tc.date))
			if !monday.Equal(day(tc.monday)) || !sunday.Equal(day(tc.sunday)) {
				t.Errorf("Expected %s..%s, got %s..%s", tc.monday, tc.sunday,
					monday.Format("2006-01-02"), sunday.Format("2006-01-02"))
			}
		})
	}
}
