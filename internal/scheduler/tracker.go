package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

type interval struct {
	start, end time.Time
}

type workload struct {
	employee    *domain.Employee
	assignedMin int
	entries     int
	lastEnd     time.Time
	busy        []interval
}

// Tracker holds one run's view of each employee's day. It is not safe for
// concurrent use; a run owns its tracker.
type Tracker struct {
	roster []*domain.Employee
	loads  map[string]*workload
}

// NewTracker starts every employee in roster at zero. Roster order breaks
// ties in LeastLoaded.
func NewTracker(roster []*domain.Employee) *Tracker {
	t := &Tracker{
		roster: roster,
		loads:  make(map[string]*workload, len(roster)),
	}
	for _, e := range roster {
		t.loads[e.ID] = &workload{employee: e}
	}
	return t
}

// Seed records existing entries so new slots avoid them. Cancelled entries
// and employees outside the roster are ignored.
func (t *Tracker) Seed(entries []*domain.PlanningEntry) {
	for _, e := range entries {
		if e.Status == domain.StatusCancelled {
			continue
		}
		if _, ok := t.loads[e.EmployeeID]; !ok {
			continue
		}
		t.Record(e.EmployeeID, e.DurationMin, e.StartTime)
	}
}

func (t *Tracker) Roster() []*domain.Employee {
	return t.roster
}

// LeastLoaded returns the employee with the fewest assigned minutes, the
// earliest in roster order on ties. Nil for an empty roster.
func (t *Tracker) LeastLoaded() *domain.Employee {
	var best *domain.Employee
	bestMin := 0
	for _, e := range t.roster {
		m := t.loads[e.ID].assignedMin
		if best == nil || m < bestMin {
			best, bestMin = e, m
		}
	}
	return best
}

// Record books durationMin minutes for employeeID starting at start.
func (t *Tracker) Record(employeeID string, durationMin int, start time.Time) {
	w, ok := t.loads[employeeID]
	if !ok {
		return
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)
	w.assignedMin += durationMin
	w.entries++
	if end.After(w.lastEnd) {
		w.lastEnd = end
	}
	i := sort.Search(len(w.busy), func(i int) bool { return w.busy[i].start.After(start) })
	w.busy = append(w.busy, interval{})
	copy(w.busy[i+1:], w.busy[i:])
	w.busy[i] = interval{start: start, end: end}
}

func (t *Tracker) Assigned(employeeID string) int {
	if w, ok := t.loads[employeeID]; ok {
		return w.assignedMin
	}
	return 0
}

// LastEnd returns the latest end of any booked interval; false when the
// employee has nothing booked.
func (t *Tracker) LastEnd(employeeID string) (time.Time, bool) {
	w, ok := t.loads[employeeID]
	if !ok || w.entries == 0 {
		return time.Time{}, false
	}
	return w.lastEnd, true
}

// FreeSlot returns the earliest start at or after from where durationMin
// minutes fit with bufferMin minutes clear of every booked interval. When
// no gap exists it returns the first instant after the last interval.
func (t *Tracker) FreeSlot(employeeID string, from time.Time, durationMin, bufferMin int) time.Time {
	w, ok := t.loads[employeeID]
	if !ok {
		return from
	}
	dur := time.Duration(durationMin) * time.Minute
	buf := time.Duration(bufferMin) * time.Minute

	cursor := from
	for _, b := range w.busy {
		if !cursor.Add(dur + buf).After(b.start) {
			return cursor
		}
		if next := b.end.Add(buf); next.After(cursor) {
			cursor = next
		}
	}
	return cursor
}

// Load is one employee's booked time for the run's date.
type Load struct {
	EmployeeID   string
	Name         string
	AssignedMin  int
	CapacityMin  int
	Entries      int
	Ratio        float64
	OverCapacity bool
}

// Loads reports every roster employee in roster order.
func (t *Tracker) Loads() []Load {
	out := make([]Load, 0, len(t.roster))
	for _, e := range t.roster {
		w := t.loads[e.ID]
		capMin := e.CapacityMin()
		ratio := float64(w.assignedMin) / float64(capMin)
		out = append(out, Load{
			EmployeeID:   e.ID,
			Name:         e.FullName(),
			AssignedMin:  w.assignedMin,
			CapacityMin:  capMin,
			Entries:      w.entries,
			Ratio:        ratio,
			OverCapacity: w.assignedMin > capMin,
		})
	}
	return out
}
