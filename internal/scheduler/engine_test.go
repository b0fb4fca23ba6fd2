package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink is an in-memory Sink keyed by order ID.
type memSink struct {
	byOrder   map[string]*domain.PlanningEntry
	existing  map[string]bool
	failOn    map[string]error
	existsErr map[string]error
	reserves  int
}

func newMemSink() *memSink {
	return &memSink{
		byOrder:   make(map[string]*domain.PlanningEntry),
		existing:  make(map[string]bool),
		failOn:    make(map[string]error),
		existsErr: make(map[string]error),
	}
}

func (s *memSink) ExistsForOrder(_ context.Context, orderID string) (bool, error) {
	if err := s.existsErr[orderID]; err != nil {
		return false, err
	}
	_, planned := s.byOrder[orderID]
	return planned || s.existing[orderID], nil
}

func (s *memSink) Reserve(_ context.Context, e *domain.PlanningEntry) error {
	s.reserves++
	if err := s.failOn[e.OrderID]; err != nil {
		return err
	}
	if _, ok := s.byOrder[e.OrderID]; ok {
		return fmt.Errorf("order %s: %w", e.OrderID, domain.ErrDuplicateAssignment)
	}
	s.byOrder[e.OrderID] = e
	return nil
}

func testConfig(policy string) Config {
	return Config{TimePerCard: 3, Slots: DefaultSlotRules(), Policy: policy}
}

func newTestEngine(t *testing.T, cfg Config, sink Sink) *Engine {
	t.Helper()
	n := 0
	e, err := NewEngine(cfg, sink, nil,
		WithClock(func() time.Time { return at(7, 0) }),
		WithIDSource(func() string { n++; return fmt.Sprintf("entry-%03d", n) }),
	)
	require.NoError(t, err)
	return e
}

func entryFor(res *RunResult, orderID string) *domain.PlanningEntry {
	for _, e := range res.Entries {
		if e.OrderID == orderID {
			return e
		}
	}
	return nil
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	_, err := NewEngine(Config{TimePerCard: 0, Slots: DefaultSlotRules()}, newMemSink(), nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{TimePerCard: 3, Slots: DefaultSlotRules(), Policy: "random"}, newMemSink(), nil)
	assert.Error(t, err)
}

// Three orders of 10, 5 and 20 cards over two employees: each step picks
// the currently least-loaded employee.
func TestEngine_LeastLoadedPicksPerStep(t *testing.T) {
	sink := newMemSink()
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480), makeEmployee("B", 480)})

	orders := []*domain.Order{
		makeOrder("o1", 10, domain.PriorityNormal, base.Add(-3*time.Hour)),
		makeOrder("o2", 5, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("o3", 20, domain.PriorityNormal, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Empty(t, res.Failures)

	o1, o2, o3 := entryFor(res, "o1"), entryFor(res, "o2"), entryFor(res, "o3")
	assert.Equal(t, "A", o1.EmployeeID)
	assert.Equal(t, 30, o1.DurationMin)
	assert.True(t, at(9, 0).Equal(o1.StartTime))

	assert.Equal(t, "B", o2.EmployeeID)
	assert.Equal(t, 15, o2.DurationMin)
	assert.True(t, at(9, 0).Equal(o2.StartTime))

	assert.Equal(t, "B", o3.EmployeeID)
	assert.Equal(t, 60, o3.DurationMin)
	assert.True(t, at(9, 30).Equal(o3.StartTime), "15 min buffer after 09:15")

	assert.Equal(t, 30, tr.Assigned("A"))
	assert.Equal(t, 75, tr.Assigned("B"))
	assert.Equal(t, PolicyLeastLoaded, res.Policy)
}

func TestEngine_RoundRobinIgnoresLoad(t *testing.T) {
	sink := newMemSink()
	eng := newTestEngine(t, testConfig(PolicyRoundRobin), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480), makeEmployee("B", 480)})

	orders := []*domain.Order{
		makeOrder("o1", 100, domain.PriorityNormal, base.Add(-4*time.Hour)),
		makeOrder("o2", 1, domain.PriorityNormal, base.Add(-3*time.Hour)),
		makeOrder("o3", 1, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("o4", 1, domain.PriorityNormal, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)

	var got []string
	for _, e := range res.Entries {
		got = append(got, e.EmployeeID)
	}
	assert.Equal(t, []string{"A", "B", "A", "B"}, got)
	assert.Equal(t, 303, tr.Assigned("A"))
}

func TestEngine_PlansInPriorityOrder(t *testing.T) {
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), newMemSink())
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	orders := []*domain.Order{
		makeOrder("low", 5, domain.PriorityLow, base.Add(-5*time.Hour)),
		makeOrder("high", 5, domain.PriorityHigh, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "high", res.Entries[0].OrderID)
	assert.True(t, res.Entries[0].StartTime.Before(res.Entries[1].StartTime))
}

func TestEngine_InvalidOrderIsValidationFailure(t *testing.T) {
	sink := newMemSink()
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	orders := []*domain.Order{
		makeOrder("empty", 0, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("ok", 5, domain.PriorityNormal, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.Len(t, res.Failures, 1)

	f := res.Failures[0]
	assert.Equal(t, "empty", f.OrderID)
	assert.Equal(t, FailureValidation, f.Kind)
	var ve *ValidationError
	assert.ErrorAs(t, f.Err, &ve)
	assert.Equal(t, 1, sink.reserves)
}

func TestEngine_PersistenceFailureContinues(t *testing.T) {
	sink := newMemSink()
	sink.failOn["o2"] = errors.New("database is locked")
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480), makeEmployee("B", 480)})

	orders := []*domain.Order{
		makeOrder("o1", 10, domain.PriorityNormal, base.Add(-3*time.Hour)),
		makeOrder("o2", 10, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("o3", 10, domain.PriorityNormal, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, FailurePersistence, res.Failures[0].Kind)

	var pe *PersistenceError
	require.ErrorAs(t, res.Failures[0].Err, &pe)
	assert.Equal(t, "B", pe.EmployeeID)

	// The failed reservation books nothing, so B takes o3.
	assert.Equal(t, "B", entryFor(res, "o3").EmployeeID)
	assert.True(t, at(9, 0).Equal(entryFor(res, "o3").StartTime))
}

func TestEngine_AllItemsFailing(t *testing.T) {
	sink := newMemSink()
	boom := errors.New("read-only database")
	sink.failOn["o1"] = boom
	sink.failOn["o2"] = boom
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	res, err := eng.Run(context.Background(), base, []*domain.Order{
		makeOrder("o1", 1, domain.PriorityNormal, base),
		makeOrder("o2", 1, domain.PriorityNormal, base),
	}, tr)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Len(t, res.Failures, 2)
}

func TestEngine_ExistenceCheckErrorIsPersistenceFailure(t *testing.T) {
	sink := newMemSink()
	sink.existsErr["o1"] = errors.New("io error")
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	res, err := eng.Run(context.Background(), base, []*domain.Order{makeOrder("o1", 1, domain.PriorityNormal, base)}, tr)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, FailurePersistence, res.Failures[0].Kind)
	assert.Zero(t, sink.reserves)
}

func TestEngine_DuplicatesAreSkippedNotFailed(t *testing.T) {
	sink := newMemSink()
	sink.existing["stored"] = true
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	orders := []*domain.Order{
		makeOrder("stored", 5, domain.PriorityNormal, base.Add(-3*time.Hour)),
		makeOrder("twice", 5, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("twice", 5, domain.PriorityNormal, base.Add(-2*time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 1)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "stored", res.Skipped[0].OrderID)
	assert.Equal(t, "twice", res.Skipped[1].OrderID)
	assert.Equal(t, 1, sink.reserves)
}

// A reservation conflict caught by the store after the guard passed is a skip.
type racingSink struct {
	*memSink
}

func (s racingSink) ExistsForOrder(context.Context, string) (bool, error) { return false, nil }

func TestEngine_ReserveConflictIsSkip(t *testing.T) {
	inner := newMemSink()
	inner.failOn["o1"] = fmt.Errorf("reserving: %w", domain.ErrDuplicateAssignment)
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), racingSink{inner})
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	res, err := eng.Run(context.Background(), base, []*domain.Order{makeOrder("o1", 5, domain.PriorityNormal, base)}, tr)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, "reserve")
	assert.Zero(t, tr.Assigned("A"))
}

func TestEngine_UrgentOrderUsesMorningGap(t *testing.T) {
	sink := newMemSink()
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})
	tr.Seed([]*domain.PlanningEntry{
		{EmployeeID: "A", StartTime: at(10, 0), DurationMin: 60, Status: domain.StatusInProgress},
	})

	orders := []*domain.Order{
		makeOrder("normal", 30, domain.PriorityNormal, base.Add(-2*time.Hour)),
		makeOrder("urgent", 10, domain.PriorityUrgent, base.Add(-time.Hour)),
	}

	res, err := eng.Run(context.Background(), base, orders, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	urgent := entryFor(res, "urgent")
	normal := entryFor(res, "normal")
	assert.True(t, at(9, 0).Equal(urgent.StartTime), "got %s", urgent.TimeRange())
	assert.True(t, at(11, 15).Equal(normal.StartTime), "got %s", normal.TimeRange())
	assert.False(t, urgent.Overlaps(normal))
}

func TestEngine_LateEntryWarnsButIsPlanned(t *testing.T) {
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), newMemSink())
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	res, err := eng.Run(context.Background(), base, []*domain.Order{makeOrder("big", 200, domain.PriorityNormal, base)}, tr)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "19:00")

	require.Len(t, res.Loads, 1)
	assert.True(t, res.Loads[0].OverCapacity)
}

func TestEngine_EmptyRosterIsError(t *testing.T) {
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), newMemSink())
	_, err := eng.Run(context.Background(), base, []*domain.Order{makeOrder("o", 1, domain.PriorityNormal, base)}, NewTracker(nil))
	assert.Error(t, err)
}

func TestEngine_CancelledContextStops(t *testing.T) {
	sink := newMemSink()
	eng := newTestEngine(t, testConfig(PolicyLeastLoaded), sink)
	tr := NewTracker([]*domain.Employee{makeEmployee("A", 480)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := eng.Run(ctx, base, []*domain.Order{makeOrder("o", 1, domain.PriorityNormal, base)}, tr)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Entries)
	assert.Zero(t, sink.reserves)
}

var tiers = []domain.PriorityTier{domain.PriorityUrgent, domain.PriorityHigh, domain.PriorityNormal, domain.PriorityLow}

// TestEngine_Invariants property-tests the allocation laws over random
// rosters and order books: duration law, one entry per order, no overlap
// per employee, and the least-loaded balance bound.
func TestEngine_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		timePerCard := rng.Intn(5) + 1
		cfg := testConfig(PolicyLeastLoaded)
		cfg.TimePerCard = timePerCard
		cfg.Slots.BufferMin = rng.Intn(20)

		numEmp := rng.Intn(5) + 1
		roster := make([]*domain.Employee, numEmp)
		for i := range roster {
			roster[i] = makeEmployee(fmt.Sprintf("e%d", i), 240+rng.Intn(300))
		}

		numOrders := rng.Intn(30) + 1
		orders := make([]*domain.Order, numOrders)
		maxDur := 0
		for i := range orders {
			cards := rng.Intn(60) + 1
			if d := cards * timePerCard; d > maxDur {
				maxDur = d
			}
			orders[i] = makeOrder(fmt.Sprintf("o%02d", i), cards, tiers[rng.Intn(len(tiers))],
				base.Add(-time.Duration(rng.Intn(1000))*time.Minute))
		}

		sink := newMemSink()
		eng := newTestEngine(t, cfg, sink)
		tr := NewTracker(roster)
		res, err := eng.Run(context.Background(), base, orders, tr)
		require.NoError(t, err)

		require.Len(t, res.Entries, numOrders, "trial %d", trial)
		assert.Empty(t, res.Failures)

		seen := make(map[string]bool)
		cards := make(map[string]int)
		for _, o := range orders {
			cards[o.ID] = o.CardCount
		}
		for i, a := range res.Entries {
			assert.False(t, seen[a.OrderID], "trial %d: order %s planned twice", trial, a.OrderID)
			seen[a.OrderID] = true
			assert.Equal(t, cards[a.OrderID]*timePerCard, a.DurationMin, "trial %d: duration law", trial)
			assert.Equal(t, a.StartTime.Add(time.Duration(a.DurationMin)*time.Minute), a.EndTime)
			assert.False(t, a.StartTime.Before(at(9, 0)), "trial %d: starts before workday", trial)
			for _, b := range res.Entries[i+1:] {
				assert.False(t, a.Overlaps(b), "trial %d: %s overlaps %s", trial, a.TimeRange(), b.TimeRange())
			}
		}

		stats := ComputeLoadStats(res.Loads)
		assert.LessOrEqual(t, stats.Spread, float64(maxDur), "trial %d: balance bound", trial)
	}
}

func TestEngine_RoundRobinNeverOverlaps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 100; trial++ {
		roster := []*domain.Employee{makeEmployee("a", 480), makeEmployee("b", 480), makeEmployee("c", 480)}
		orders := make([]*domain.Order, rng.Intn(20)+1)
		for i := range orders {
			orders[i] = makeOrder(fmt.Sprintf("o%02d", i), rng.Intn(40)+1, tiers[rng.Intn(len(tiers))], base.Add(-time.Duration(i)*time.Minute))
		}

		eng := newTestEngine(t, testConfig(PolicyRoundRobin), newMemSink())
		res, err := eng.Run(context.Background(), base, orders, NewTracker(roster))
		require.NoError(t, err)

		for i, a := range res.Entries {
			assert.Equal(t, roster[i%3].ID, a.EmployeeID)
			for _, b := range res.Entries[i+1:] {
				assert.False(t, a.Overlaps(b), "trial %d", trial)
			}
		}
	}
}
