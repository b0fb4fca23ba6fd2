package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrLeaseHeld = errors.New("lease held by another owner")
)

// UnplannedQuery selects candidate orders for an allocation run.
type UnplannedQuery struct {
	Since time.Time
	// Until is an exclusive upper bound on SubmittedAt; nil means open-ended.
	Until *time.Time
	Limit int
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListUnplanned returns orders without a non-cancelled planning entry,
	// highest priority first, then oldest submission first.
	ListUnplanned(ctx context.Context, q UnplannedQuery) ([]*domain.Order, error)
}

type EmployeeRepo interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// ListActive returns active employees, largest daily capacity first.
	ListActive(ctx context.Context) ([]*domain.Employee, error)
}

type PlanningRepo interface {
	// Reserve inserts a new entry. It fails with domain.ErrDuplicateAssignment
	// when the order already has a non-cancelled entry.
	Reserve(ctx context.Context, e *domain.PlanningEntry) error
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.PlanningEntry, error)
	Update(ctx context.Context, e *domain.PlanningEntry) error
	ListByDate(ctx context.Context, date time.Time) ([]*domain.PlanningEntry, error)
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.PlanningEntry, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*domain.PlanningEntry, error)
	// DeleteByDateRange removes entries dated within [from, to] whose status
	// is one of statuses, returning the number deleted.
	DeleteByDateRange(ctx context.Context, from, to time.Time, statuses []domain.PlanningStatus) (int, error)
}

type LeaseRepo interface {
	// Acquire takes key for owner until now+ttl. An expired lease is taken
	// over; a live lease held by someone else yields ErrLeaseHeld.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration, now time.Time) error
	Release(ctx context.Context, key, owner string) error
}
