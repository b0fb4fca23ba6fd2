package app

import (
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

// CleanScope names which statuses a clean-first regeneration deletes.
type CleanScope string

const (
	CleanNonTerminal CleanScope = "non_terminal"
	CleanScheduled   CleanScope = "scheduled"
)

// Statuses returns the stored statuses covered by the scope.
func (s CleanScope) Statuses() []domain.PlanningStatus {
	switch s {
	case CleanScheduled:
		return []domain.PlanningStatus{domain.StatusScheduled}
	case CleanNonTerminal:
		return domain.NonTerminalStatuses
	default:
		return nil
	}
}

func (s CleanScope) Valid() bool {
	return s == CleanNonTerminal || s == CleanScheduled
}

type GenerateRequest struct {
	Date time.Time
	// Optional overrides of the configured defaults.
	CleanFirst  *bool
	CleanScope  CleanScope
	Policy      string
	BatchLimit  int
	TimePerCard int
	Now         *time.Time
}

func NewGenerateRequest(date time.Time) GenerateRequest {
	return GenerateRequest{Date: date}
}

type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailurePersistence FailureKind = "persistence"
)

type ItemFailure struct {
	OrderID     string
	OrderNumber string
	Kind        FailureKind
	Message     string
}

type SkippedOrder struct {
	OrderID     string
	OrderNumber string
	Reason      string
}

type EmployeeWorkload struct {
	EmployeeID   string
	Name         string
	AssignedMin  int
	CapacityMin  int
	Entries      int
	Ratio        float64
	OverCapacity bool
}

type LoadStats struct {
	MeanMin   float64
	StdDevMin float64
	MinMin    float64
	MaxMin    float64
	Spread    float64
}

// GenerateResult is returned by every Generate call, including failed runs.
type GenerateResult struct {
	Success        bool
	Message        string
	Code           GenerateErrorCode
	Date           time.Time
	Policy         string
	CreatedCount   int
	DeletedCount   int
	OrdersAnalyzed int
	EmployeesUsed  int
	Entries        []*domain.PlanningEntry
	Failures       []ItemFailure
	Skipped        []SkippedOrder
	Workloads      []EmployeeWorkload
	LoadStats      LoadStats
	Warnings       []string
	Duration       time.Duration
}

type GenerateErrorCode string

const (
	GenerateErrInvalidRequest GenerateErrorCode = "INVALID_REQUEST"
	GenerateErrNoEmployees    GenerateErrorCode = "NO_EMPLOYEES"
	GenerateErrNoOrders       GenerateErrorCode = "NO_ORDERS"
	GenerateErrLocked         GenerateErrorCode = "LOCKED"
	GenerateErrStorage        GenerateErrorCode = "STORAGE"
)

// GenerateError aborts a run before any entry is written.
type GenerateError struct {
	Code    GenerateErrorCode
	Message string
	Err     error
}

func (e *GenerateError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *GenerateError) Unwrap() error { return e.Err }
