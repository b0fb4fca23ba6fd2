package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/logger"
	"github.com/alexanderramin/gradeplan/internal/metrics"
	"github.com/alexanderramin/gradeplan/internal/repository"
)

type lifecycleService struct {
	uow      db.UnitOfWork
	log      logger.Logger
	metrics  metrics.Sink
	observer UseCaseObserver
	now      func() time.Time
}

func NewLifecycleService(uow db.UnitOfWork, log logger.Logger, sink metrics.Sink, observers ...UseCaseObserver) LifecycleService {
	return &lifecycleService{
		uow:      uow,
		log:      logger.OrNop(log),
		metrics:  metrics.OrNop(sink),
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *lifecycleService) Transition(ctx context.Context, id string, action domain.LifecycleAction) (res *app.TransitionResult, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "transition-planning", startedAt, map[string]any{"entry_id": id, "action": string(action)}, err)
	}()

	if !domain.ValidLifecycleActions[string(action)] {
		return nil, fmt.Errorf("unknown lifecycle action %q", action)
	}
	res, err = s.mutate(ctx, id, func(e *domain.PlanningEntry, now time.Time) error {
		return e.Apply(action, now)
	})
	if err != nil {
		return nil, err
	}
	s.record(string(action), res)
	return res, nil
}

func (s *lifecycleService) UpdateProgress(ctx context.Context, id string, pct int) (res *app.TransitionResult, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "update-progress", startedAt, map[string]any{"entry_id": id, "progress": pct}, err)
	}()

	res, err = s.mutate(ctx, id, func(e *domain.PlanningEntry, now time.Time) error {
		return e.UpdateProgress(pct, now)
	})
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		s.record("progress", res)
	}
	return res, nil
}

// mutate loads, changes and stores one entry inside a transaction.
func (s *lifecycleService) mutate(ctx context.Context, id string, change func(*domain.PlanningEntry, time.Time) error) (*app.TransitionResult, error) {
	var res *app.TransitionResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLitePlanningRepo(tx)
		entry, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading planning entry %s: %w", id, err)
		}
		from := entry.Status
		if err := change(entry, s.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("saving planning entry %s: %w", id, err)
		}
		res = &app.TransitionResult{Entry: entry, From: from, To: entry.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *lifecycleService) record(action string, res *app.TransitionResult) {
	if err := s.metrics.RecordTransition(action, string(res.To)); err != nil {
		s.log.Warnf("recording transition metrics: %v", err)
	}
	s.log.Infof("planning entry %s: %s -> %s (%d%%)", res.Entry.ID, res.From, res.To, res.Entry.ProgressPct)
}
