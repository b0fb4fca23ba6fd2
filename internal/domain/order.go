package domain

import (
	"fmt"
	"time"
)

// Order is a unit of pending work. The planner only reads orders.
type Order struct {
	ID          string
	OrderNumber string
	CardCount   int
	Priority    PriorityTier
	SubmittedAt time.Time
	CreatedAt   time.Time
}

// Validate checks the fields the allocation engine depends on.
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	if o.CardCount < 1 {
		return fmt.Errorf("order %s: card count must be positive, got %d", o.DisplayNumber(), o.CardCount)
	}
	if !o.Priority.Valid() {
		return fmt.Errorf("order %s: unknown priority tier %q", o.DisplayNumber(), o.Priority)
	}
	return nil
}

// DisplayNumber prefers the human order number and falls back to the ID.
func (o *Order) DisplayNumber() string {
	return Coalesce(o.OrderNumber, o.ID)
}
