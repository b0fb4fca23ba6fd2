package scheduler

import "context"

// ExistenceChecker answers whether an order already has a live assignment.
type ExistenceChecker interface {
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
}

// Guard keeps orders from being assigned twice. The in-run set is a cache
// in front of the store; the store's reservation stays authoritative.
type Guard struct {
	seen  map[string]bool
	store ExistenceChecker
}

func NewGuard(store ExistenceChecker) *Guard {
	return &Guard{seen: make(map[string]bool), store: store}
}

// Check returns a *DuplicateAssignmentError when orderID is already
// assigned, the store's error when the lookup fails, and nil otherwise.
func (g *Guard) Check(ctx context.Context, orderID string) error {
	if g.seen[orderID] {
		return &DuplicateAssignmentError{OrderID: orderID, Source: "run"}
	}
	exists, err := g.store.ExistsForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if exists {
		g.seen[orderID] = true
		return &DuplicateAssignmentError{OrderID: orderID, Source: "store"}
	}
	return nil
}

// Mark records orderID as assigned in this run.
func (g *Guard) Mark(orderID string) {
	g.seen[orderID] = true
}
