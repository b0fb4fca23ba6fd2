package domain

import (
	"strings"
	"time"
)

// DefaultDailyCapacityMin is one eight-hour working day.
const DefaultDailyCapacityMin = 480

type Employee struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	DailyCapacityMin int
	Active           bool
	CreatedAt        time.Time
}

// FullName joins first and last name, falling back to the ID when both are empty.
func (e *Employee) FullName() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	return Coalesce(name, e.ID)
}

// CapacityMin returns the daily capacity, substituting the default for unset values.
func (e *Employee) CapacityMin() int {
	if e.DailyCapacityMin <= 0 {
		return DefaultDailyCapacityMin
	}
	return e.DailyCapacityMin
}
