package domain

import (
	"fmt"
	"time"
)

// PlanningEntry assigns one order to one employee for a time slot on a date.
type PlanningEntry struct {
	ID          string
	OrderID     string
	EmployeeID  string
	Date        time.Time
	StartTime   time.Time
	EndTime     time.Time
	DurationMin int
	Priority    PriorityTier
	Status      PlanningStatus
	ProgressPct int
	CardCount   int
	ActualStart *time.Time
	ActualEnd   *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlanningEntry builds a scheduled entry for order starting at start.
func NewPlanningEntry(id string, order *Order, employeeID string, date, start time.Time, durationMin int, now time.Time) *PlanningEntry {
	return &PlanningEntry{
		ID:          id,
		OrderID:     order.ID,
		EmployeeID:  employeeID,
		Date:        date,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(durationMin) * time.Minute),
		DurationMin: durationMin,
		Priority:    order.Priority,
		Status:      StatusScheduled,
		CardCount:   order.CardCount,
		Notes:       fmt.Sprintf("Auto-generated planning for %d cards", order.CardCount),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Stored status transitions. Terminal statuses have no row.
var validTransitions = map[PlanningStatus]map[PlanningStatus]bool{
	StatusScheduled: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusPaused:    true,
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusPaused: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
}

// ValidateTransition reports whether from -> to is allowed.
func ValidateTransition(from, to PlanningStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: cannot move %s entry to %s", ErrTerminalState, from, to)
	}
	if !validTransitions[from][to] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func (p *PlanningEntry) moveTo(to PlanningStatus, now time.Time) error {
	if err := ValidateTransition(p.Status, to); err != nil {
		return err
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

// MarkStarted moves a scheduled entry to in_progress and records the actual start.
func (p *PlanningEntry) MarkStarted(now time.Time) error {
	if p.Status == StatusPaused {
		return fmt.Errorf("%w: paused entry must be resumed, not started", ErrInvalidTransition)
	}
	if err := p.moveTo(StatusInProgress, now); err != nil {
		return err
	}
	if p.ActualStart == nil {
		p.ActualStart = &now
	}
	return nil
}

func (p *PlanningEntry) Pause(now time.Time) error {
	return p.moveTo(StatusPaused, now)
}

func (p *PlanningEntry) Resume(now time.Time) error {
	if p.Status == StatusScheduled {
		return fmt.Errorf("%w: scheduled entry must be started, not resumed", ErrInvalidTransition)
	}
	return p.moveTo(StatusInProgress, now)
}

// MarkCompleted finishes an in-progress entry and forces progress to 100.
func (p *PlanningEntry) MarkCompleted(now time.Time) error {
	if err := p.moveTo(StatusCompleted, now); err != nil {
		return err
	}
	p.complete(now)
	return nil
}

func (p *PlanningEntry) complete(now time.Time) {
	p.Status = StatusCompleted
	p.ProgressPct = 100
	if p.ActualEnd == nil {
		p.ActualEnd = &now
	}
	p.UpdatedAt = now
}

func (p *PlanningEntry) MarkCancelled(now time.Time) error {
	return p.moveTo(StatusCancelled, now)
}

// UpdateProgress sets the progress percentage. Progress on a scheduled entry
// starts it; reaching 100 completes it from any non-terminal status.
func (p *PlanningEntry) UpdateProgress(pct int, now time.Time) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, pct)
	}
	if p.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot update progress of %s entry", ErrTerminalState, p.Status)
	}

	if p.Status == StatusScheduled && pct > 0 {
		if err := p.MarkStarted(now); err != nil {
			return err
		}
	}
	if pct == 100 {
		if p.ActualStart == nil {
			p.ActualStart = &now
		}
		p.complete(now)
		return nil
	}
	p.ProgressPct = pct
	p.UpdatedAt = now
	return nil
}

// Apply performs the named lifecycle action.
func (p *PlanningEntry) Apply(action LifecycleAction, now time.Time) error {
	switch action {
	case ActionStart:
		return p.MarkStarted(now)
	case ActionPause:
		return p.Pause(now)
	case ActionResume:
		return p.Resume(now)
	case ActionComplete:
		return p.MarkCompleted(now)
	case ActionCancel:
		return p.MarkCancelled(now)
	default:
		return fmt.Errorf("unknown lifecycle action %q", action)
	}
}

// IsOverdue reports whether the slot has ended without the entry finishing.
func (p *PlanningEntry) IsOverdue(now time.Time) bool {
	return !p.Status.IsTerminal() && now.After(p.EndTime)
}

// EffectiveStatus is the status shown to readers: the stored status, or
// StatusOverdue when IsOverdue holds.
func (p *PlanningEntry) EffectiveStatus(now time.Time) PlanningStatus {
	if p.IsOverdue(now) {
		return StatusOverdue
	}
	return p.Status
}

// Overlaps reports whether both entries hold the same employee at the same time.
func (p *PlanningEntry) Overlaps(other *PlanningEntry) bool {
	if p.EmployeeID != other.EmployeeID {
		return false
	}
	return p.StartTime.Before(other.EndTime) && other.StartTime.Before(p.EndTime)
}

// TimeRange formats the slot as "09:00 - 10:30".
func (p *PlanningEntry) TimeRange() string {
	return p.StartTime.Format("15:04") + " - " + p.EndTime.Format("15:04")
}
