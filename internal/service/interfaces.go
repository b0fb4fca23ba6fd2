package service

import (
	"context"
	"time"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/importer"
)

type PlanningService interface {
	// Generate runs one allocation for req.Date. The result is never nil;
	// run-level failures also come back as *app.GenerateError.
	Generate(ctx context.Context, req app.GenerateRequest) (*app.GenerateResult, error)
	// Cleanup deletes entries dated within [from, to] whose status falls in
	// the configured clean scope.
	Cleanup(ctx context.Context, from, to time.Time) (int, error)
}

type LifecycleService interface {
	Transition(ctx context.Context, entryID string, action domain.LifecycleAction) (*app.TransitionResult, error)
	UpdateProgress(ctx context.Context, entryID string, pct int) (*app.TransitionResult, error)
}

type QueryService interface {
	Get(ctx context.Context, entryID string) (*domain.PlanningEntry, error)
	ListByDate(ctx context.Context, date time.Time) ([]*domain.PlanningEntry, error)
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.PlanningEntry, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*domain.PlanningEntry, error)
	// Employees returns the active roster for display lookups.
	Employees(ctx context.Context) ([]*domain.Employee, error)
}

// SeedResult counts what a seed import wrote and what already existed.
type SeedResult struct {
	EmployeesCreated int
	EmployeesSkipped int
	OrdersCreated    int
	OrdersSkipped    int
}

type SeedService interface {
	ImportFile(ctx context.Context, path string) (*SeedResult, error)
	Import(ctx context.Context, schema *importer.SeedSchema) (*SeedResult, error)
}
