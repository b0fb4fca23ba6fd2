package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/domain"
)

// SQLitePlanningRepo implements PlanningRepo using a SQLite database. It is
// the persistence sink of the allocation engine.
type SQLitePlanningRepo struct {
	db db.DBTX
}

func NewSQLitePlanningRepo(db db.DBTX) *SQLitePlanningRepo {
	return &SQLitePlanningRepo{db: db}
}

const planningColumns = `id, order_id, employee_id, planning_date, start_time, end_time, duration_min,
	priority, status, progress_pct, card_count, actual_start, actual_end, notes, created_at, updated_at`

func (r *SQLitePlanningRepo) Reserve(ctx context.Context, e *domain.PlanningEntry) error {
	query := `INSERT INTO planning_entries (` + planningColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.OrderID,
		e.EmployeeID,
		formatDate(e.Date),
		formatTime(e.StartTime),
		formatTime(e.EndTime),
		e.DurationMin,
		string(e.Priority),
		string(e.Status),
		e.ProgressPct,
		e.CardCount,
		nullableTimeToString(e.ActualStart, time.RFC3339),
		nullableTimeToString(e.ActualEnd, time.RFC3339),
		e.Notes,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reserving order %s: %w", e.OrderID, domain.ErrDuplicateAssignment)
		}
		return fmt.Errorf("inserting planning entry: %w", err)
	}
	return nil
}

func (r *SQLitePlanningRepo) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM planning_entries WHERE order_id = ? AND status != 'cancelled'
	)`
	var exists int
	if err := r.db.QueryRowContext(ctx, query, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking planning for order %s: %w", orderID, err)
	}
	return intToBool(exists), nil
}

func (r *SQLitePlanningRepo) GetByID(ctx context.Context, id string) (*domain.PlanningEntry, error) {
	query := `SELECT ` + planningColumns + ` FROM planning_entries WHERE id = ?`
	e, err := r.scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("planning entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (r *SQLitePlanningRepo) Update(ctx context.Context, e *domain.PlanningEntry) error {
	query := `UPDATE planning_entries SET status = ?, progress_pct = ?, actual_start = ?, actual_end = ?,
		notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(e.Status),
		e.ProgressPct,
		nullableTimeToString(e.ActualStart, time.RFC3339),
		nullableTimeToString(e.ActualEnd, time.RFC3339),
		e.Notes,
		formatTime(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating planning entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating planning entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("planning entry %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLitePlanningRepo) ListByDate(ctx context.Context, date time.Time) ([]*domain.PlanningEntry, error) {
	query := `SELECT ` + planningColumns + `
		FROM planning_entries
		WHERE planning_date = ?
		ORDER BY employee_id, start_time, id`
	return r.list(ctx, "listing planning by date", query, formatDate(date))
}

func (r *SQLitePlanningRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.PlanningEntry, error) {
	query := `SELECT ` + planningColumns + `
		FROM planning_entries
		WHERE employee_id = ? AND planning_date BETWEEN ? AND ?
		ORDER BY planning_date, start_time, id`
	return r.list(ctx, "listing planning by employee", query, employeeID, formatDate(from), formatDate(to))
}

func (r *SQLitePlanningRepo) ListOverdue(ctx context.Context, now time.Time) ([]*domain.PlanningEntry, error) {
	marks, args := statusArgs(domain.NonTerminalStatuses)
	query := `SELECT ` + planningColumns + `
		FROM planning_entries
		WHERE status IN (` + marks + `) AND end_time < ?
		ORDER BY end_time, id`
	args = append(args, formatTime(now))
	return r.list(ctx, "listing overdue planning", query, args...)
}

func (r *SQLitePlanningRepo) DeleteByDateRange(ctx context.Context, from, to time.Time, statuses []domain.PlanningStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	marks, statusVals := statusArgs(statuses)
	query := `DELETE FROM planning_entries
		WHERE planning_date BETWEEN ? AND ? AND status IN (` + marks + `)`
	args := append([]any{formatDate(from), formatDate(to)}, statusVals...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting planning entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted planning entries: %w", err)
	}
	return int(n), nil
}

func (r *SQLitePlanningRepo) list(ctx context.Context, op, query string, args ...any) ([]*domain.PlanningEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []*domain.PlanningEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (r *SQLitePlanningRepo) scanEntry(row rowScanner) (*domain.PlanningEntry, error) {
	var e domain.PlanningEntry
	var priority, status, planningDate, startTime, endTime, createdAt, updatedAt string
	var actualStart, actualEnd sql.NullString

	err := row.Scan(
		&e.ID, &e.OrderID, &e.EmployeeID, &planningDate, &startTime, &endTime, &e.DurationMin,
		&priority, &status, &e.ProgressPct, &e.CardCount, &actualStart, &actualEnd, &e.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning planning entry: %w", err)
	}
	e.Priority = domain.PriorityTier(priority)
	e.Status = domain.PlanningStatus(status)
	e.ActualStart = parseNullableTime(actualStart, time.RFC3339)
	e.ActualEnd = parseNullableTime(actualEnd, time.RFC3339)

	if e.Date, err = time.Parse(dateLayout, planningDate); err != nil {
		return nil, fmt.Errorf("parsing planning_date of entry %s: %w", e.ID, err)
	}
	for _, f := range []struct {
		dst *time.Time
		src string
		col string
	}{
		{&e.StartTime, startTime, "start_time"},
		{&e.EndTime, endTime, "end_time"},
		{&e.CreatedAt, createdAt, "created_at"},
		{&e.UpdatedAt, updatedAt, "updated_at"},
	} {
		if *f.dst, err = time.Parse(time.RFC3339, f.src); err != nil {
			return nil, fmt.Errorf("parsing %s of entry %s: %w", f.col, e.ID, err)
		}
	}
	return &e, nil
}
