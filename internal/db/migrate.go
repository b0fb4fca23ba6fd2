package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id                 TEXT PRIMARY KEY,
		first_name         TEXT NOT NULL DEFAULT '',
		last_name          TEXT NOT NULL DEFAULT '',
		email              TEXT NOT NULL DEFAULT '',
		daily_capacity_min INTEGER NOT NULL DEFAULT 480 CHECK(daily_capacity_min > 0),
		active             INTEGER NOT NULL DEFAULT 1,
		created_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_employees_active ON employees(active, daily_capacity_min)`,

	// card_count is deliberately unconstrained: legacy rows with a
	// non-positive count are skipped by the engine, not rejected here.
	`CREATE TABLE IF NOT EXISTS orders (
		id           TEXT PRIMARY KEY,
		order_number TEXT NOT NULL DEFAULT '',
		card_count   INTEGER NOT NULL DEFAULT 0,
		priority     TEXT NOT NULL DEFAULT 'normal',
		submitted_at TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_submitted ON orders(submitted_at)`,

	`CREATE TABLE IF NOT EXISTS planning_entries (
		id            TEXT PRIMARY KEY,
		order_id      TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		employee_id   TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		planning_date TEXT NOT NULL,
		start_time    TEXT NOT NULL,
		end_time      TEXT NOT NULL,
		duration_min  INTEGER NOT NULL CHECK(duration_min > 0),
		priority      TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'scheduled'
		              CHECK(status IN ('scheduled','in_progress','paused','completed','cancelled')),
		progress_pct  INTEGER NOT NULL DEFAULT 0 CHECK(progress_pct BETWEEN 0 AND 100),
		card_count    INTEGER NOT NULL,
		actual_start  TEXT,
		actual_end    TEXT,
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	// One live assignment per order; cancelled rows do not count.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_planning_active_order
		ON planning_entries(order_id) WHERE status != 'cancelled'`,
	`CREATE INDEX IF NOT EXISTS idx_planning_date ON planning_entries(planning_date)`,
	`CREATE INDEX IF NOT EXISTS idx_planning_employee_date ON planning_entries(employee_id, planning_date, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_planning_status ON planning_entries(status)`,

	`CREATE TABLE IF NOT EXISTS run_leases (
		lease_key   TEXT PRIMARY KEY,
		owner       TEXT NOT NULL,
		acquired_at TEXT NOT NULL,
		expires_at  TEXT NOT NULL
	)`,
}
