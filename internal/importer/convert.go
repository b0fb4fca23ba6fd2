package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

// Seed is a converted seed file ready for persistence.
type Seed struct {
	Employees []*domain.Employee
	Orders    []*domain.Order
}

// Convert transforms a validated SeedSchema into domain objects.
// Call ValidateSeedSchema first; Convert assumes the schema is valid.
func Convert(schema *SeedSchema, now time.Time) (*Seed, error) {
	defaults := schema.Defaults
	if defaults == nil {
		defaults = &DefaultsSeed{}
	}

	seed := &Seed{
		Employees: make([]*domain.Employee, 0, len(schema.Employees)),
		Orders:    make([]*domain.Order, 0, len(schema.Orders)),
	}

	for _, e := range schema.Employees {
		seed.Employees = append(seed.Employees, &domain.Employee{
			ID:               e.ID,
			FirstName:        e.FirstName,
			LastName:         e.LastName,
			Email:            e.Email,
			DailyCapacityMin: domain.Deref(domain.DefaultDailyCapacityMin, e.DailyCapacityMin, defaults.DailyCapacityMin),
			Active:           domain.Deref(true, e.Active),
			CreatedAt:        now,
		})
	}

	for _, o := range schema.Orders {
		submitted, err := parseTimestamp(o.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		order := &domain.Order{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			CardCount:   o.CardCount,
			Priority:    domain.PriorityTier(domain.Coalesce(o.Priority, defaults.Priority, string(domain.PriorityNormal))),
			SubmittedAt: submitted,
			CreatedAt:   now,
		}
		if err := order.Validate(); err != nil {
			return nil, err
		}
		seed.Orders = append(seed.Orders, order)
	}

	return seed, nil
}
