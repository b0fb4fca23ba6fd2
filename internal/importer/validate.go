package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/domain"
)

// ValidateSeedSchema checks the seed for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateSeedSchema(schema *SeedSchema) []error {
	var errs []error

	if len(schema.Employees) == 0 && len(schema.Orders) == 0 {
		errs = append(errs, fmt.Errorf("seed contains no employees and no orders"))
	}
	errs = append(errs, validateDefaults(schema.Defaults)...)
	errs = append(errs, validateEmployees(schema.Employees)...)
	errs = append(errs, validateOrders(schema.Orders)...)

	return errs
}

func validateDefaults(d *DefaultsSeed) []error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.DailyCapacityMin != nil && *d.DailyCapacityMin <= 0 {
		errs = append(errs, fmt.Errorf("defaults.daily_capacity_min must be positive, got %d", *d.DailyCapacityMin))
	}
	if d.Priority != "" && !domain.ValidPriorityTiers[d.Priority] {
		errs = append(errs, fmt.Errorf("defaults.priority: invalid value %q", d.Priority))
	}
	return errs
}

func validateEmployees(employees []EmployeeSeed) []error {
	var errs []error
	ids := make(map[string]bool)

	for i, e := range employees {
		prefix := fmt.Sprintf("employees[%d]", i)
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[e.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, e.ID))
		}
		ids[e.ID] = true

		if e.FirstName == "" && e.LastName == "" {
			errs = append(errs, fmt.Errorf("%s: first_name or last_name is required", prefix))
		}
		if e.DailyCapacityMin != nil && *e.DailyCapacityMin <= 0 {
			errs = append(errs, fmt.Errorf("%s.daily_capacity_min must be positive, got %d", prefix, *e.DailyCapacityMin))
		}
	}
	return errs
}

func validateOrders(orders []OrderSeed) []error {
	var errs []error
	ids := make(map[string]bool)

	for i, o := range orders {
		prefix := fmt.Sprintf("orders[%d]", i)
		if o.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[o.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, o.ID))
		}
		ids[o.ID] = true

		if o.CardCount < 1 {
			errs = append(errs, fmt.Errorf("%s.card_count must be at least 1, got %d", prefix, o.CardCount))
		}
		if o.Priority != "" && !domain.ValidPriorityTiers[o.Priority] {
			errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", prefix, o.Priority))
		}
		if o.SubmittedAt == "" {
			errs = append(errs, fmt.Errorf("%s.submitted_at is required", prefix))
		} else if _, err := parseTimestamp(o.SubmittedAt); err != nil {
			errs = append(errs, fmt.Errorf("%s.submitted_at: %w", prefix, err))
		}
	}
	return errs
}

// parseTimestamp accepts RFC3339 or a bare date (midnight UTC).
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (expected RFC3339 or YYYY-MM-DD)", s)
}
