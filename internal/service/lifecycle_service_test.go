package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/alexanderramin/gradeplan/internal/repository"
	"github.com/alexanderramin/gradeplan/internal/testutil"
)

func TestTransition_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.employee(t, "Ana", "Adams")
	e := env.entry(t, env.order(t, 10), emp.ID)
	svc := NewLifecycleService(env.uow, nil, env.sink, env.observer)

	steps := []struct {
		action domain.LifecycleAction
		want   domain.PlanningStatus
	}{
		{domain.ActionStart, domain.StatusInProgress},
		{domain.ActionPause, domain.StatusPaused},
		{domain.ActionResume, domain.StatusInProgress},
		{domain.ActionComplete, domain.StatusCompleted},
	}
	for _, step := range steps {
		res, err := svc.Transition(ctx, e.ID, step.action)
		require.NoError(t, err, step.action)
		assert.Equal(t, step.want, res.To)
		assert.True(t, res.Changed())
	}

	got, err := env.planning.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.ProgressPct)
	assert.NotNil(t, got.ActualStart)
	assert.NotNil(t, got.ActualEnd)
	assert.Equal(t, []string{"start:in_progress", "pause:paused", "resume:in_progress", "complete:completed"}, env.sink.transitions)
	assert.Equal(t, "transition-planning", env.observer.last().Name)
}

func TestTransition_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.employee(t, "Ana", "Adams")
	scheduled := env.entry(t, env.order(t, 10), emp.ID)
	done := env.entry(t, env.order(t, 10), emp.ID, testutil.WithStatus(domain.StatusCompleted))
	svc := NewLifecycleService(env.uow, nil, env.sink)

	_, err := svc.Transition(ctx, scheduled.ID, domain.ActionPause)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Transition(ctx, scheduled.ID, domain.ActionResume)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Transition(ctx, done.ID, domain.ActionCancel)
	assert.ErrorIs(t, err, domain.ErrTerminalState)

	_, err = svc.Transition(ctx, "missing", domain.ActionStart)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Transition(ctx, scheduled.ID, domain.LifecycleAction("archive"))
	assert.ErrorContains(t, err, "unknown lifecycle action")

	got, err := env.planning.GetByID(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)
	assert.Empty(t, env.sink.transitions)
}

func TestTransition_CancelFreesOrderForReplanning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.employee(t, "Ana", "Adams")
	o := env.order(t, 10)
	e := env.entry(t, o, emp.ID)

	_, err := NewLifecycleService(env.uow, nil, nil).Transition(ctx, e.ID, domain.ActionCancel)
	require.NoError(t, err)

	exists, err := env.planning.ExistsForOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateProgress_CouplesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.employee(t, "Ana", "Adams")
	e := env.entry(t, env.order(t, 10), emp.ID)
	svc := NewLifecycleService(env.uow, nil, env.sink)

	res, err := svc.UpdateProgress(ctx, e.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.To)
	assert.False(t, res.Changed())

	res, err = svc.UpdateProgress(ctx, e.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.From)
	assert.Equal(t, domain.StatusInProgress, res.To)
	assert.NotNil(t, res.Entry.ActualStart)

	res, err = svc.UpdateProgress(ctx, e.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.To)

	got, err := env.planning.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.ProgressPct)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.NotNil(t, got.ActualEnd)

	_, err = svc.UpdateProgress(ctx, e.ID, 50)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
	assert.Equal(t, []string{"progress:in_progress", "progress:completed"}, env.sink.transitions)
}

func TestUpdateProgress_RejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ana", "Adams")
	e := env.entry(t, env.order(t, 10), emp.ID)
	svc := NewLifecycleService(env.uow, nil, nil)

	for _, pct := range []int{-1, 101} {
		_, err := svc.UpdateProgress(context.Background(), e.ID, pct)
		assert.ErrorIs(t, err, domain.ErrInvalidProgress, pct)
	}
}
