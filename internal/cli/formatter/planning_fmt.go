package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/domain"
)

// Names maps employee IDs to display names. Unknown IDs fall back to a
// truncated ID.
type Names map[string]string

func (n Names) of(id string) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return TruncID(id)
}

// FormatGenerateResult renders the outcome of one planning run.
func FormatGenerateResult(res *app.GenerateResult) string {
	var b strings.Builder
	b.WriteString(Header("Planning " + res.Date.Format("2006-01-02")))
	b.WriteString("\n")

	if !res.Success {
		b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %s", res.Message)))
		if res.Code != "" {
			b.WriteString(Dim(fmt.Sprintf(" (%s)", res.Code)))
		}
		b.WriteString("\n")
		if len(res.Entries) == 0 {
			return b.String()
		}
		b.WriteString("\n")
	} else {
		b.WriteString(StyleGreen.Render("✔ "+res.Message) + "\n\n")
	}

	b.WriteString(KeyValue([][2]string{
		{"Policy", res.Policy},
		{"Orders analyzed", fmt.Sprint(res.OrdersAnalyzed)},
		{"Entries created", fmt.Sprint(res.CreatedCount)},
		{"Entries removed", fmt.Sprint(res.DeletedCount)},
		{"Employees used", fmt.Sprint(res.EmployeesUsed)},
		{"Took", res.Duration.Round(time.Millisecond).String()},
	}))

	names := Names{}
	for _, w := range res.Workloads {
		names[w.EmployeeID] = w.Name
	}
	if len(res.Entries) > 0 {
		b.WriteString("\n" + FormatEntries(res.Entries, names, time.Time{}))
	}
	if len(res.Workloads) > 0 {
		b.WriteString("\n" + formatWorkloads(res.Workloads, res.LoadStats))
	}
	if len(res.Failures) > 0 {
		b.WriteString("\n" + Header("Failures") + "\n")
		rows := make([][]string, 0, len(res.Failures))
		for _, f := range res.Failures {
			rows = append(rows, []string{f.OrderNumber, StyleRed.Render(string(f.Kind)), f.Message})
		}
		b.WriteString(RenderTable([]string{"ORDER", "KIND", "ERROR"}, rows))
	}
	if len(res.Skipped) > 0 {
		b.WriteString("\n" + Header("Skipped") + "\n")
		for _, s := range res.Skipped {
			b.WriteString(fmt.Sprintf("  %s %s\n", s.OrderNumber, Dim(s.Reason)))
		}
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range res.Warnings {
			b.WriteString(StyleYellow.Render("! "+w) + "\n")
		}
	}
	return b.String()
}

func formatWorkloads(loads []app.EmployeeWorkload, stats app.LoadStats) string {
	rows := make([][]string, 0, len(loads))
	for _, w := range loads {
		rows = append(rows, []string{
			w.Name,
			fmt.Sprint(w.Entries),
			FormatMinutes(w.AssignedMin),
			FormatMinutes(w.CapacityMin),
			RenderLoad(w.Ratio, 12),
		})
	}
	var b strings.Builder
	b.WriteString(Header("Workload") + "\n")
	b.WriteString(Table{
		Headers: []string{"EMPLOYEE", "ENTRIES", "BOOKED", "CAPACITY", "LOAD"},
		Rows:    rows,
		Right:   map[int]bool{1: true, 2: true, 3: true},
	}.Render())
	b.WriteString(Dim(fmt.Sprintf("mean %.0fm, stddev %.1fm, spread %.0fm", stats.MeanMin, stats.StdDevMin, stats.Spread)))
	b.WriteString("\n")
	return b.String()
}

// FormatEntries renders entries as a table. A non-zero now shows overdue
// entries as such.
func FormatEntries(entries []*domain.PlanningEntry, names Names, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No planning entries.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := e.Status
		if !now.IsZero() {
			status = e.EffectiveStatus(now)
		}
		rows = append(rows, []string{
			TruncID(e.ID),
			e.Date.Format("2006-01-02"),
			e.TimeRange(),
			names.of(e.EmployeeID),
			fmt.Sprint(e.CardCount),
			PriorityBadge(e.Priority),
			StatusPill(status),
			fmt.Sprintf("%d%%", e.ProgressPct),
		})
	}
	return Table{
		Headers: []string{"ID", "DATE", "SLOT", "EMPLOYEE", "CARDS", "PRIORITY", "STATUS", "PROGRESS"},
		Rows:    rows,
		Right:   map[int]bool{4: true, 7: true},
	}.Render()
}

// FormatEntryDetail renders every field of one entry.
func FormatEntryDetail(e *domain.PlanningEntry, employee string, now time.Time) string {
	pairs := [][2]string{
		{"ID", e.ID},
		{"Order", e.OrderID},
		{"Employee", employee},
		{"Date", HumanDate(e.Date)},
		{"Slot", fmt.Sprintf("%s (%s)", e.TimeRange(), FormatMinutes(e.DurationMin))},
		{"Cards", fmt.Sprint(e.CardCount)},
		{"Priority", PriorityBadge(e.Priority)},
		{"Status", StatusPill(e.EffectiveStatus(now))},
		{"Progress", RenderProgress(e.ProgressPct, 20)},
	}
	if e.ActualStart != nil {
		pairs = append(pairs, [2]string{"Started", e.ActualStart.Format(time.RFC3339)})
	}
	if e.ActualEnd != nil {
		pairs = append(pairs, [2]string{"Finished", e.ActualEnd.Format(time.RFC3339)})
	}
	if e.Notes != "" {
		pairs = append(pairs, [2]string{"Notes", e.Notes})
	}
	return RenderBox("Planning entry", strings.TrimRight(KeyValue(pairs), "\n"))
}

// FormatTransition renders a one-line lifecycle change.
func FormatTransition(res *app.TransitionResult) string {
	if !res.Changed() {
		return fmt.Sprintf("%s %s, progress %d%%", TruncID(res.Entry.ID), StatusPill(res.To), res.Entry.ProgressPct)
	}
	return fmt.Sprintf("%s %s → %s, progress %d%%",
		TruncID(res.Entry.ID), StatusPill(res.From), StatusPill(res.To), res.Entry.ProgressPct)
}
