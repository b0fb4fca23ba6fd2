package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexanderramin/gradeplan/internal/app"
)

// PromSink records planner events in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	created     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	skipped     prometheus.Counter
	deleted     prometheus.Counter
	transitions *prometheus.CounterVec
	workload    *prometheus.GaugeVec
	duration    prometheus.Histogram
}

// NewPromSink registers metrics on reg. A nil registerer defaults to the
// global Prometheus registerer.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeplan_runs_total",
			Help: "Planning runs by outcome",
		}, []string{"outcome"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeplan_entries_created_total",
			Help: "Planning entries created by allocation runs",
		}, []string{"policy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeplan_item_failures_total",
			Help: "Orders a run could not plan, by failure kind",
		}, []string{"kind"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradeplan_duplicates_skipped_total",
			Help: "Orders skipped because they were already assigned",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradeplan_entries_deleted_total",
			Help: "Planning entries removed by cleanup or clean-first regeneration",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeplan_lifecycle_transitions_total",
			Help: "Lifecycle actions applied to planning entries",
		}, []string{"action", "to"}),
		workload: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gradeplan_workload_ratio",
			Help: "Assigned minutes over daily capacity after the last run",
		}, []string{"employee_id"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gradeplan_run_duration_seconds",
			Help:    "Wall time of planning runs",
			Buckets: prometheus.DefBuckets,
		}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.created, err = register(reg, s.created); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.skipped, err = register(reg, s.skipped); err != nil {
		return nil, err
	}
	if s.deleted, err = register(reg, s.deleted); err != nil {
		return nil, err
	}
	if s.transitions, err = register(reg, s.transitions); err != nil {
		return nil, err
	}
	if s.workload, err = register(reg, s.workload); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the collector already on reg when an identical one was
// registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("registering collector: %w", err)
	}
	return c, nil
}

// RecordRun counts the outcome of one Generate call.
func (s *PromSink) RecordRun(res *app.GenerateResult) error {
	if res == nil {
		return nil
	}
	outcome := "ok"
	if !res.Success {
		outcome = strings.ToLower(string(res.Code))
	}
	s.runs.WithLabelValues(outcome).Inc()
	s.duration.Observe(res.Duration.Seconds())
	s.deleted.Add(float64(res.DeletedCount))
	if !res.Success {
		return nil
	}

	s.created.WithLabelValues(res.Policy).Add(float64(res.CreatedCount))
	for _, f := range res.Failures {
		s.failures.WithLabelValues(string(f.Kind)).Inc()
	}
	s.skipped.Add(float64(len(res.Skipped)))
	for _, w := range res.Workloads {
		s.workload.WithLabelValues(w.EmployeeID).Set(w.Ratio)
	}
	return nil
}

func (s *PromSink) RecordCleanup(deleted int) error {
	s.deleted.Add(float64(deleted))
	return nil
}

func (s *PromSink) RecordTransition(action, to string) error {
	s.transitions.WithLabelValues(action, to).Inc()
	return nil
}
