package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/repository"
)

type queryService struct {
	planning  repository.PlanningRepo
	employees repository.EmployeeRepo
}

func NewQueryService(planning repository.PlanningRepo, employees repository.EmployeeRepo) QueryService {
	return &queryService{planning: planning, employees: employees}
}

func (s *queryService) Get(ctx context.Context, id string) (*domain.PlanningEntry, error) {
	e, err := s.planning.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading planning entry %s: %w", id, err)
	}
	return e, nil
}

func (s *queryService) ListByDate(ctx context.Context, date time.Time) ([]*domain.PlanningEntry, error) {
	return s.planning.ListByDate(ctx, date)
}

func (s *queryService) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.PlanningEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return s.planning.ListByEmployee(ctx, employeeID, from, to)
}

func (s *queryService) ListOverdue(ctx context.Context, now time.Time) ([]*domain.PlanningEntry, error) {
	return s.planning.ListOverdue(ctx, now)
}

func (s *queryService) Employees(ctx context.Context) ([]*domain.Employee, error) {
	return s.employees.ListActive(ctx)
}
