package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

var orderNumberCounter atomic.Int64

// Day is the fixed planning date used across tests.
var Day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// At returns Day at hh:mm.
func At(hh, mm int) time.Time {
	return Day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

// Order options
type OrderOption func(*domain.Order)

func WithPriority(p domain.PriorityTier) OrderOption {
	return func(o *domain.Order) {
		o.Priority = p
	}
}

func WithSubmittedAt(t time.Time) OrderOption {
	return func(o *domain.Order) {
		o.SubmittedAt = t
	}
}

func WithOrderNumber(n string) OrderOption {
	return func(o *domain.Order) {
		o.OrderNumber = n
	}
}

func NewTestOrder(cardCount int, opts ...OrderOption) *domain.Order {
	n := orderNumberCounter.Add(1)
	o := &domain.Order{
		ID:          uuid.New().String(),
		OrderNumber: fmt.Sprintf("ORD-%04d", n),
		CardCount:   cardCount,
		Priority:    domain.PriorityNormal,
		SubmittedAt: Day.Add(time.Duration(n) * time.Second),
		CreatedAt:   Day,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Employee options
type EmployeeOption func(*domain.Employee)

func WithCapacity(min int) EmployeeOption {
	return func(e *domain.Employee) {
		e.DailyCapacityMin = min
	}
}

func Inactive() EmployeeOption {
	return func(e *domain.Employee) {
		e.Active = false
	}
}

func NewTestEmployee(first, last string, opts ...EmployeeOption) *domain.Employee {
	e := &domain.Employee{
		ID:               uuid.New().String(),
		FirstName:        first,
		LastName:         last,
		DailyCapacityMin: domain.DefaultDailyCapacityMin,
		Active:           true,
		CreatedAt:        Day.Add(-30 * 24 * time.Hour),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlanningEntry options
type EntryOption func(*domain.PlanningEntry)

func WithStatus(s domain.PlanningStatus) EntryOption {
	return func(p *domain.PlanningEntry) {
		p.Status = s
	}
}

func WithSlot(start time.Time, durationMin int) EntryOption {
	return func(p *domain.PlanningEntry) {
		p.Date = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		p.StartTime = start
		p.DurationMin = durationMin
		p.EndTime = start.Add(time.Duration(durationMin) * time.Minute)
	}
}

// NewTestEntry builds a scheduled entry for order on Day at 09:00 sized at
// three minutes per card.
func NewTestEntry(order *domain.Order, employeeID string, opts ...EntryOption) *domain.PlanningEntry {
	now := Day.Add(-time.Hour)
	p := domain.NewPlanningEntry(uuid.New().String(), order, employeeID, Day, At(9, 0), order.CardCount*3, now)
	for _, opt := range opts {
		opt(p)
	}
	return p
}
