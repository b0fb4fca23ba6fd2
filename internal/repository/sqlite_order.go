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

// SQLiteOrderRepo implements OrderRepo using a SQLite database.
type SQLiteOrderRepo struct {
	db db.DBTX
}

func NewSQLiteOrderRepo(db db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: db}
}

const orderColumns = `o.id, o.order_number, o.card_count, o.priority, o.submitted_at, o.created_at`

func (r *SQLiteOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (id, order_number, card_count, priority, submitted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.OrderNumber,
		o.CardCount,
		string(o.Priority),
		formatTime(o.SubmittedAt),
		formatTime(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = ?`
	o, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, err
}

func (r *SQLiteOrderRepo) ListUnplanned(ctx context.Context, q UnplannedQuery) ([]*domain.Order, error) {
	var until string
	if q.Until != nil {
		until = formatTime(*q.Until)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.submitted_at >= ?
		  AND (? = '' OR o.submitted_at < ?)
		  AND NOT EXISTS (
			SELECT 1 FROM planning_entries p
			WHERE p.order_id = o.id AND p.status != 'cancelled'
		  )
		ORDER BY
			CASE o.priority
				WHEN 'urgent' THEN 4
				WHEN 'high'   THEN 3
				WHEN 'normal' THEN 2
				WHEN 'low'    THEN 1
				ELSE 0
			END DESC,
			o.submitted_at ASC,
			o.id ASC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, formatTime(q.Since), until, until, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unplanned orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteOrderRepo) scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var priority, submittedAt, createdAt string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CardCount, &priority, &submittedAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	o.Priority = domain.PriorityTier(priority)

	var err error
	if o.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt); err != nil {
		return nil, fmt.Errorf("parsing submitted_at of order %s: %w", o.ID, err)
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of order %s: %w", o.ID, err)
	}
	return &o, nil
}
