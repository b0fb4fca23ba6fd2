package app

import "github.com/alexanderramin/gradeplan/internal/domain"

// TransitionResult reports one lifecycle change of a planning entry.
type TransitionResult struct {
	Entry *domain.PlanningEntry
	From  domain.PlanningStatus
	To    domain.PlanningStatus
}

// Changed reports whether the stored status moved.
func (r *TransitionResult) Changed() bool {
	return r.From != r.To
}
