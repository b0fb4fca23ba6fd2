package scheduler

import "fmt"

// FailureKind classifies a per-order failure.
type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailurePersistence FailureKind = "persistence"
)

// ValidationError reports an order the engine cannot plan as given.
type ValidationError struct {
	OrderID string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order %s: %v", e.OrderID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed reservation or existence check.
type PersistenceError struct {
	OrderID    string
	EmployeeID string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.EmployeeID == "" {
		return fmt.Sprintf("order %s: %v", e.OrderID, e.Err)
	}
	return fmt.Sprintf("order %s for employee %s: %v", e.OrderID, e.EmployeeID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DuplicateAssignmentError marks an order that already holds a live
// assignment. It is a skip, not a failure.
type DuplicateAssignmentError struct {
	OrderID string
	// Source is where the duplicate was detected: "run", "store" or "reserve".
	Source string
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("order %s already assigned (%s)", e.OrderID, e.Source)
}

// Failure is one order the run could not plan.
type Failure struct {
	OrderID     string
	OrderNumber string
	Kind        FailureKind
	Err         error
}

// Skip is one order left out because it was already planned.
type Skip struct {
	OrderID     string
	OrderNumber string
	Reason      string
}
