package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/logger"
)

// Sink persists planning entries. Reserve must fail with
// domain.ErrDuplicateAssignment when the order already holds a live entry.
type Sink interface {
	ExistenceChecker
	Reserve(ctx context.Context, e *domain.PlanningEntry) error
}

// Config holds the knobs of one allocation run.
type Config struct {
	TimePerCard int
	Slots       SlotRules
	Policy      string
}

func (c Config) Validate() error {
	if c.TimePerCard < 1 {
		return fmt.Errorf("time per card must be positive, got %d", c.TimePerCard)
	}
	if err := c.Slots.Validate(); err != nil {
		return err
	}
	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// Engine assigns orders to employees one at a time.
type Engine struct {
	cfg   Config
	sink  Sink
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

type EngineOption func(*Engine)

// WithClock fixes the timestamp source for created entries.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDSource replaces uuid generation for entry IDs.
func WithIDSource(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(cfg Config, sink Sink, log logger.Logger, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	e := &Engine{
		cfg:   cfg,
		sink:  sink,
		log:   logger.OrNop(log),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunResult is everything one run produced.
type RunResult struct {
	Policy   string
	Entries  []*domain.PlanningEntry
	Failures []Failure
	Skipped  []Skip
	Warnings []string
	Loads    []Load
}

// Run plans orders for date against the employees in tracker. Per-order
// problems land in the result; the error is non-nil only when ctx ends,
// in which case the partial result is returned with it.
func (e *Engine) Run(ctx context.Context, date time.Time, orders []*domain.Order, tracker *Tracker) (*RunResult, error) {
	policy, err := ParsePolicy(e.cfg.Policy)
	if err != nil {
		return nil, err
	}
	res := &RunResult{Policy: policy.Name()}
	if len(tracker.Roster()) == 0 {
		return res, fmt.Errorf("no employees to plan for")
	}

	sorted := make([]*domain.Order, len(orders))
	copy(sorted, orders)
	SortOrders(sorted)

	guard := NewGuard(e.sink)
	for _, o := range sorted {
		if err := ctx.Err(); err != nil {
			res.Loads = tracker.Loads()
			return res, err
		}
		e.plan(ctx, date, o, policy, tracker, guard, res)
	}
	res.Loads = tracker.Loads()
	return res, nil
}

func (e *Engine) plan(ctx context.Context, date time.Time, o *domain.Order, policy Policy, tracker *Tracker, guard *Guard, res *RunResult) {
	if err := o.Validate(); err != nil {
		e.log.Warnf("skipping invalid order %s: %v", o.DisplayNumber(), err)
		res.Failures = append(res.Failures, Failure{
			OrderID: o.ID, OrderNumber: o.OrderNumber, Kind: FailureValidation,
			Err: &ValidationError{OrderID: o.ID, Err: err},
		})
		return
	}

	if err := guard.Check(ctx, o.ID); err != nil {
		var dup *DuplicateAssignmentError
		if errors.As(err, &dup) {
			e.skip(res, o, dup)
			return
		}
		e.log.Errorf("checking order %s: %v", o.DisplayNumber(), err)
		res.Failures = append(res.Failures, Failure{
			OrderID: o.ID, OrderNumber: o.OrderNumber, Kind: FailurePersistence,
			Err: &PersistenceError{OrderID: o.ID, Err: err},
		})
		return
	}

	emp := policy.Select(tracker)
	duration := o.CardCount * e.cfg.TimePerCard
	start := e.cfg.Slots.Start(tracker, emp.ID, date, duration, o.Priority)
	entry := domain.NewPlanningEntry(e.newID(), o, emp.ID, At(date, 0), start, duration, e.now())

	if err := e.sink.Reserve(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateAssignment) {
			guard.Mark(o.ID)
			e.skip(res, o, &DuplicateAssignmentError{OrderID: o.ID, Source: "reserve"})
			return
		}
		e.log.Errorf("reserving order %s for %s: %v", o.DisplayNumber(), emp.FullName(), err)
		res.Failures = append(res.Failures, Failure{
			OrderID: o.ID, OrderNumber: o.OrderNumber, Kind: FailurePersistence,
			Err: &PersistenceError{OrderID: o.ID, EmployeeID: emp.ID, Err: err},
		})
		return
	}

	tracker.Record(emp.ID, duration, start)
	guard.Mark(o.ID)
	res.Entries = append(res.Entries, entry)
	e.log.Debugw("order planned", map[string]any{
		"order":    o.DisplayNumber(),
		"employee": emp.ID,
		"start":    start.Format("15:04"),
		"minutes":  duration,
		"policy":   policy.Name(),
	})

	if e.cfg.Slots.EndsLate(entry) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"order %s for %s ends at %s, after the workday",
			o.DisplayNumber(), emp.FullName(), entry.EndTime.Format("15:04")))
	}
}

func (e *Engine) skip(res *RunResult, o *domain.Order, dup *DuplicateAssignmentError) {
	e.log.Infof("skipping order %s: %v", o.DisplayNumber(), dup)
	res.Skipped = append(res.Skipped, Skip{OrderID: o.ID, OrderNumber: o.OrderNumber, Reason: dup.Error()})
}
