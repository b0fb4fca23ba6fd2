package scheduler

import (
	"sort"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

// SortOrders sorts orders by the deterministic allocation rules:
// 1. Priority tier: urgent > high > normal > low
// 2. Submission time: oldest first
// 3. Order ID: lexical ascending
func SortOrders(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]

		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID < b.ID
	})
}
