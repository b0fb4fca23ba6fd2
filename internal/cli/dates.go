package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/gradeplan/internal/scheduler"
)

// parseDay accepts YYYY-MM-DD or today/tomorrow/yesterday and returns
// midnight UTC of that day.
func parseDay(input string, now time.Time) (time.Time, error) {
	today := scheduler.At(now, 0)
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	d, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, tomorrow or yesterday)", input)
	}
	return d, nil
}
