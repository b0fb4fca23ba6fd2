package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/config"
	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/lock"
	"github.com/alexanderramin/gradeplan/internal/repository"
	"github.com/alexanderramin/gradeplan/internal/testutil"
)

type testEnv struct {
	db        *sql.DB
	uow       db.UnitOfWork
	orders    *repository.SQLiteOrderRepo
	employees *repository.SQLiteEmployeeRepo
	planning  *repository.SQLitePlanningRepo
	locks     *lock.MutexMap
	sink      *recordingSink
	observer  *recordingObserver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:        database,
		uow:       testutil.NewTestUoW(database),
		orders:    repository.NewSQLiteOrderRepo(database),
		employees: repository.NewSQLiteEmployeeRepo(database),
		planning:  repository.NewSQLitePlanningRepo(database),
		locks:     lock.NewMutexMap(),
		sink:      &recordingSink{},
		observer:  &recordingObserver{},
	}
}

func (e *testEnv) planningService(cfg config.PlanningConfig, locker lock.Locker) PlanningService {
	if locker == nil {
		locker = e.locks
	}
	return NewPlanningService(e.orders, e.employees, e.planning, e.uow, locker, cfg, nil, e.sink, e.observer)
}

func (e *testEnv) employee(t *testing.T, first, last string, opts ...testutil.EmployeeOption) *domain.Employee {
	t.Helper()
	emp := testutil.NewTestEmployee(first, last, opts...)
	require.NoError(t, e.employees.Create(context.Background(), emp))
	return emp
}

func (e *testEnv) order(t *testing.T, cards int, opts ...testutil.OrderOption) *domain.Order {
	t.Helper()
	o := testutil.NewTestOrder(cards, opts...)
	require.NoError(t, e.orders.Create(context.Background(), o))
	return o
}

func (e *testEnv) entry(t *testing.T, o *domain.Order, empID string, opts ...testutil.EntryOption) *domain.PlanningEntry {
	t.Helper()
	p := testutil.NewTestEntry(o, empID, opts...)
	require.NoError(t, e.planning.Reserve(context.Background(), p))
	return p
}

type recordingSink struct {
	mu          sync.Mutex
	runs        []*app.GenerateResult
	cleanups    []int
	transitions []string
}

func (s *recordingSink) RecordRun(res *app.GenerateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, res)
	return nil
}

func (s *recordingSink) RecordCleanup(deleted int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, deleted)
	return nil
}

func (s *recordingSink) RecordTransition(action, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, action+":"+to)
	return nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func boolPtr(b bool) *bool { return &b }
