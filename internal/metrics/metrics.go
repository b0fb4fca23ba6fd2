package metrics

import (
	"github.com/alexanderramin/gradeplan/internal/app"
)

// Sink records planner activity for observability purposes.
type Sink interface {
	RecordRun(res *app.GenerateResult) error
	RecordCleanup(deleted int) error
	RecordTransition(action, to string) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRun(*app.GenerateResult) error { return nil }
func (NopSink) RecordCleanup(int) error             { return nil }
func (NopSink) RecordTransition(string, string) error {
	return nil
}

// OrNop returns s, or a NopSink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}
