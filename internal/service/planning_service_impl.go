package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/config"
	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/lock"
	"github.com/alexanderramin/gradeplan/internal/logger"
	"github.com/alexanderramin/gradeplan/internal/metrics"
	"github.com/alexanderramin/gradeplan/internal/repository"
	"github.com/alexanderramin/gradeplan/internal/scheduler"
)

// maxCleanupDays bounds how many date locks one cleanup takes.
const maxCleanupDays = 366

type planningService struct {
	orders    repository.OrderRepo
	employees repository.EmployeeRepo
	planning  repository.PlanningRepo
	uow       db.UnitOfWork
	locker    lock.Locker
	cfg       config.PlanningConfig
	log       logger.Logger
	metrics   metrics.Sink
	observer  UseCaseObserver
}

func NewPlanningService(
	orders repository.OrderRepo,
	employees repository.EmployeeRepo,
	planning repository.PlanningRepo,
	uow db.UnitOfWork,
	locker lock.Locker,
	cfg config.PlanningConfig,
	log logger.Logger,
	sink metrics.Sink,
	observers ...UseCaseObserver,
) PlanningService {
	return &planningService{
		orders:    orders,
		employees: employees,
		planning:  planning,
		uow:       uow,
		locker:    locker,
		cfg:       cfg,
		log:       logger.OrNop(log),
		metrics:   metrics.OrNop(sink),
		observer:  useCaseObserverOrNoop(observers),
	}
}

type runOptions struct {
	engine     scheduler.Config
	cleanFirst bool
	scope      app.CleanScope
	limit      int
}

func (s *planningService) resolve(req app.GenerateRequest) (runOptions, error) {
	if req.Date.IsZero() {
		return runOptions{}, fmt.Errorf("date is required")
	}
	cfg := s.cfg
	if req.Policy != "" {
		cfg.Policy = req.Policy
	}
	if req.CleanScope != "" {
		cfg.CleanScope = string(req.CleanScope)
	}
	if req.BatchLimit < 0 {
		return runOptions{}, fmt.Errorf("batch limit must be non-negative, got %d", req.BatchLimit)
	}
	if req.BatchLimit > 0 {
		cfg.BatchLimit = req.BatchLimit
	}
	if req.TimePerCard < 0 {
		return runOptions{}, fmt.Errorf("time per card must be non-negative, got %d", req.TimePerCard)
	}
	if req.TimePerCard > 0 {
		cfg.TimePerCard = req.TimePerCard
	}
	if req.CleanFirst != nil {
		cfg.CleanFirst = *req.CleanFirst
	}
	if err := cfg.Validate(); err != nil {
		return runOptions{}, err
	}
	eng, err := cfg.Engine()
	if err != nil {
		return runOptions{}, err
	}
	return runOptions{
		engine:     eng,
		cleanFirst: cfg.CleanFirst,
		scope:      app.CleanScope(cfg.CleanScope),
		limit:      cfg.BatchLimit,
	}, nil
}

func runError(code app.GenerateErrorCode, err error, format string, args ...any) *app.GenerateError {
	return &app.GenerateError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (s *planningService) Generate(ctx context.Context, req app.GenerateRequest) (res *app.GenerateResult, err error) {
	startedAt := time.Now()
	date := scheduler.At(req.Date, 0)
	res = &app.GenerateResult{Date: date}
	fields := map[string]any{"date": date.Format("2006-01-02")}

	defer func() {
		res.Duration = time.Since(startedAt)
		if err != nil {
			res.Success = false
			res.Message = err.Error()
			var ge *app.GenerateError
			if errors.As(err, &ge) {
				res.Code = ge.Code
				res.Message = ge.Message
			}
		}
		fields["created"] = res.CreatedCount
		fields["failed"] = len(res.Failures)
		fields["skipped"] = len(res.Skipped)
		if mErr := s.metrics.RecordRun(res); mErr != nil {
			s.log.Warnf("recording run metrics: %v", mErr)
		}
		observe(ctx, s.observer, "generate-planning", startedAt, fields, err)
	}()

	now := time.Now().UTC()
	if req.Now != nil {
		now = *req.Now
	}

	opts, err := s.resolve(req)
	if err != nil {
		return res, runError(app.GenerateErrInvalidRequest, err, "invalid request: %v", err)
	}
	res.Policy = opts.engine.Policy
	fields["policy"] = opts.engine.Policy

	unlock, err := s.locker.TryLock(ctx, lock.DateKey(date))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return res, runError(app.GenerateErrLocked, err, "planning for %s is already running", date.Format("2006-01-02"))
		}
		return res, runError(app.GenerateErrStorage, err, "acquiring planning lock: %v", err)
	}
	defer unlock()

	roster, err := s.employees.ListActive(ctx)
	if err != nil {
		return res, runError(app.GenerateErrStorage, err, "loading employees: %v", err)
	}
	if len(roster) == 0 {
		return res, runError(app.GenerateErrNoEmployees, nil, "no active employees available for planning")
	}

	q := s.unplannedQuery(date, opts.limit)
	orders, deleted, err := s.fetchOrders(ctx, date, q, opts)
	if err != nil {
		return res, err
	}
	res.DeletedCount = deleted
	res.OrdersAnalyzed = len(orders)

	existing, err := s.planning.ListByDate(ctx, date)
	if err != nil {
		return res, runError(app.GenerateErrStorage, err, "loading existing planning: %v", err)
	}
	tracker := scheduler.NewTracker(roster)
	tracker.Seed(existing)

	eng, err := scheduler.NewEngine(opts.engine, s.planning, s.log, scheduler.WithClock(func() time.Time { return now }))
	if err != nil {
		return res, runError(app.GenerateErrInvalidRequest, err, "%v", err)
	}
	run, runErr := eng.Run(ctx, date, orders, tracker)
	if run != nil {
		fillResult(res, run)
	}
	if runErr != nil {
		return res, fmt.Errorf("planning run interrupted: %w", runErr)
	}

	res.Success = true
	res.Message = fmt.Sprintf("Created %d planning entries for %d employees on %s",
		res.CreatedCount, res.EmployeesUsed, date.Format("2006-01-02"))
	s.log.Infof("%s (%d failed, %d skipped, %d deleted)", res.Message, len(res.Failures), len(res.Skipped), res.DeletedCount)
	return res, nil
}

// unplannedQuery covers orders submitted on or after date, open-ended.
// A positive lookback moves the start back by that many days.
func (s *planningService) unplannedQuery(date time.Time, limit int) repository.UnplannedQuery {
	return repository.UnplannedQuery{
		Since: date.AddDate(0, 0, -s.cfg.OrderLookbackDays),
		Limit: limit,
	}
}

// fetchOrders loads candidates. With clean-first the delete and the fetch
// share one transaction that rolls back when nothing is left to plan.
func (s *planningService) fetchOrders(ctx context.Context, date time.Time, q repository.UnplannedQuery, opts runOptions) ([]*domain.Order, int, error) {
	if !opts.cleanFirst {
		orders, err := s.orders.ListUnplanned(ctx, q)
		if err != nil {
			return nil, 0, runError(app.GenerateErrStorage, err, "loading orders: %v", err)
		}
		if len(orders) == 0 {
			return nil, 0, runError(app.GenerateErrNoOrders, nil, "no unplanned orders to allocate")
		}
		return orders, 0, nil
	}

	var orders []*domain.Order
	var deleted int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := repository.NewSQLitePlanningRepo(tx).DeleteByDateRange(ctx, date, date, opts.scope.Statuses())
		if err != nil {
			return runError(app.GenerateErrStorage, err, "cleaning planning: %v", err)
		}
		orders, err = repository.NewSQLiteOrderRepo(tx).ListUnplanned(ctx, q)
		if err != nil {
			return runError(app.GenerateErrStorage, err, "loading orders: %v", err)
		}
		if len(orders) == 0 {
			return runError(app.GenerateErrNoOrders, nil, "no unplanned orders to allocate")
		}
		deleted = n
		return nil
	})
	if err != nil {
		var ge *app.GenerateError
		if !errors.As(err, &ge) {
			err = runError(app.GenerateErrStorage, err, "cleaning planning: %v", err)
		}
		return nil, 0, err
	}
	s.log.Infof("removed %d %s entries for %s before regeneration", deleted, opts.scope, date.Format("2006-01-02"))
	return orders, deleted, nil
}

func fillResult(res *app.GenerateResult, run *scheduler.RunResult) {
	res.Policy = run.Policy
	res.Entries = run.Entries
	res.CreatedCount = len(run.Entries)
	res.Warnings = run.Warnings

	used := make(map[string]bool)
	for _, e := range run.Entries {
		used[e.EmployeeID] = true
	}
	res.EmployeesUsed = len(used)

	for _, f := range run.Failures {
		res.Failures = append(res.Failures, app.ItemFailure{
			OrderID:     f.OrderID,
			OrderNumber: f.OrderNumber,
			Kind:        app.FailureKind(f.Kind),
			Message:     f.Err.Error(),
		})
	}
	for _, sk := range run.Skipped {
		res.Skipped = append(res.Skipped, app.SkippedOrder{
			OrderID:     sk.OrderID,
			OrderNumber: sk.OrderNumber,
			Reason:      sk.Reason,
		})
	}
	for _, l := range run.Loads {
		res.Workloads = append(res.Workloads, app.EmployeeWorkload{
			EmployeeID:   l.EmployeeID,
			Name:         l.Name,
			AssignedMin:  l.AssignedMin,
			CapacityMin:  l.CapacityMin,
			Entries:      l.Entries,
			Ratio:        l.Ratio,
			OverCapacity: l.OverCapacity,
		})
	}
	st := scheduler.ComputeLoadStats(run.Loads)
	res.LoadStats = app.LoadStats{
		MeanMin:   st.MeanMin,
		StdDevMin: st.StdDevMin,
		MinMin:    st.MinMin,
		MaxMin:    st.MaxMin,
		Spread:    st.Spread,
	}
}

func (s *planningService) Cleanup(ctx context.Context, from, to time.Time) (deleted int, err error) {
	startedAt := time.Now()
	from, to = scheduler.At(from, 0), scheduler.At(to, 0)
	fields := map[string]any{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02")}
	defer func() {
		fields["deleted"] = deleted
		observe(ctx, s.observer, "cleanup-planning", startedAt, fields, err)
	}()

	if to.Before(from) {
		return 0, fmt.Errorf("cleanup range end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	var keys []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, lock.DateKey(d))
		if len(keys) > maxCleanupDays {
			return 0, fmt.Errorf("cleanup range exceeds %d days", maxCleanupDays)
		}
	}

	unlock, err := lock.TryLockAll(ctx, s.locker, keys)
	if err != nil {
		return 0, fmt.Errorf("locking cleanup range: %w", err)
	}
	defer unlock()

	scope := app.CleanScope(s.cfg.CleanScope)
	deleted, err = s.planning.DeleteByDateRange(ctx, from, to, scope.Statuses())
	if err != nil {
		return 0, err
	}
	if mErr := s.metrics.RecordCleanup(deleted); mErr != nil {
		s.log.Warnf("recording cleanup metrics: %v", mErr)
	}
	s.log.Infof("cleanup removed %d %s entries between %s and %s",
		deleted, scope, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return deleted, nil
}
