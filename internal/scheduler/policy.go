package scheduler

import (
	"fmt"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

const (
	PolicyLeastLoaded = "least-loaded"
	PolicyRoundRobin  = "round-robin"
)

// Policy picks the employee for the next order. Implementations may keep
// per-run state; build a fresh one for every run.
type Policy interface {
	Name() string
	Select(t *Tracker) *domain.Employee
}

// ParsePolicy returns a new policy for name. Empty means least-loaded.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyLeastLoaded:
		return &LeastLoaded{}, nil
	case PolicyRoundRobin:
		return &RoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown allocation policy %q", name)
	}
}

// LeastLoaded always picks the employee with the fewest booked minutes.
type LeastLoaded struct{}

func (*LeastLoaded) Name() string { return PolicyLeastLoaded }

func (*LeastLoaded) Select(t *Tracker) *domain.Employee {
	return t.LeastLoaded()
}

// RoundRobin cycles the roster by index and ignores load.
type RoundRobin struct {
	next int
}

func (*RoundRobin) Name() string { return PolicyRoundRobin }

func (p *RoundRobin) Select(t *Tracker) *domain.Employee {
	roster := t.Roster()
	if len(roster) == 0 {
		return nil
	}
	e := roster[p.next%len(roster)]
	p.next++
	return e
}
