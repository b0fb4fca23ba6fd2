package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parsing clock %q: expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// SlotRules decides where in the workday a new assignment starts.
type SlotRules struct {
	WorkStart time.Duration
	WorkEnd   time.Duration
	BufferMin int

	// Urgent orders whose computed start falls after LateMorning move to
	// the earliest free gap of the day when one exists.
	UrgentReanchor bool
	LateMorning    time.Duration
}

// DefaultSlotRules is a 09:00-17:00 day with a 15 minute buffer and the
// urgent re-anchor at 10:00.
func DefaultSlotRules() SlotRules {
	return SlotRules{
		WorkStart:      9 * time.Hour,
		WorkEnd:        17 * time.Hour,
		BufferMin:      15,
		UrgentReanchor: true,
		LateMorning:    10 * time.Hour,
	}
}

func (r SlotRules) Validate() error {
	if r.WorkStart < 0 || r.WorkEnd > 24*time.Hour {
		return fmt.Errorf("workday must lie within one day")
	}
	if r.WorkEnd <= r.WorkStart {
		return fmt.Errorf("workday end must be after start")
	}
	if r.BufferMin < 0 {
		return fmt.Errorf("buffer minutes must be non-negative, got %d", r.BufferMin)
	}
	return nil
}

func (r SlotRules) buffer() time.Duration {
	return time.Duration(r.BufferMin) * time.Minute
}

// At returns date's midnight plus offset, in date's location.
func At(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(offset)
}

// Start computes the start of a durationMin slot for employeeID on date.
func (r SlotRules) Start(t *Tracker, employeeID string, date time.Time, durationMin int, priority domain.PriorityTier) time.Time {
	dayStart := At(date, r.WorkStart)

	start := dayStart
	if last, ok := t.LastEnd(employeeID); ok {
		if next := last.Add(r.buffer()); next.After(start) {
			start = next
		}
	}

	if priority == domain.PriorityUrgent && r.UrgentReanchor && start.After(At(date, r.LateMorning)) {
		gap := t.FreeSlot(employeeID, dayStart, durationMin, r.BufferMin)
		if gap.Before(start) {
			return gap
		}
	}
	return start
}

// EndsLate reports whether an entry runs past the end of the workday.
func (r SlotRules) EndsLate(e *domain.PlanningEntry) bool {
	return e.EndTime.After(At(e.Date, r.WorkEnd))
}
