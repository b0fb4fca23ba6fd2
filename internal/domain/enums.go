package domain

type PriorityTier string

const (
	PriorityUrgent PriorityTier = "urgent"
	PriorityHigh   PriorityTier = "high"
	PriorityNormal PriorityTier = "normal"
	PriorityLow    PriorityTier = "low"
)

// Rank orders tiers for allocation (higher = planned first). Unknown tiers rank 0.
func (p PriorityTier) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p PriorityTier) Valid() bool {
	return p.Rank() > 0
}

// ValidPriorityTiers is the canonical set of accepted priority strings.
var ValidPriorityTiers = map[string]bool{
	"urgent": true, "high": true, "normal": true, "low": true,
}

type PlanningStatus string

const (
	StatusScheduled  PlanningStatus = "scheduled"
	StatusInProgress PlanningStatus = "in_progress"
	StatusPaused     PlanningStatus = "paused"
	StatusCompleted  PlanningStatus = "completed"
	StatusCancelled  PlanningStatus = "cancelled"

	// StatusOverdue is never stored; see PlanningEntry.EffectiveStatus.
	StatusOverdue PlanningStatus = "overdue"
)

// IsTerminal reports whether no further transition is allowed.
func (s PlanningStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// NonTerminalStatuses lists the stored statuses an entry can still leave.
var NonTerminalStatuses = []PlanningStatus{StatusScheduled, StatusInProgress, StatusPaused}

type LifecycleAction string

const (
	ActionStart    LifecycleAction = "start"
	ActionPause    LifecycleAction = "pause"
	ActionResume   LifecycleAction = "resume"
	ActionComplete LifecycleAction = "complete"
	ActionCancel   LifecycleAction = "cancel"
)

// ValidLifecycleActions is the canonical set of accepted action strings.
var ValidLifecycleActions = map[string]bool{
	"start": true, "pause": true, "resume": true, "complete": true, "cancel": true,
}
