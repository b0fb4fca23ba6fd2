package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/db"
)

// SQLiteLeaseRepo implements LeaseRepo on the run_leases table so that
// separate processes sharing one database file exclude each other.
type SQLiteLeaseRepo struct {
	db db.DBTX
}

func NewSQLiteLeaseRepo(db db.DBTX) *SQLiteLeaseRepo {
	return &SQLiteLeaseRepo{db: db}
}

func (r *SQLiteLeaseRepo) Acquire(ctx context.Context, key, owner string, ttl time.Duration, now time.Time) error {
	// The upsert only overwrites a row that expired or already belongs to owner,
	// so zero affected rows means someone else holds the key.
	query := `INSERT INTO run_leases (lease_key, owner, acquired_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(lease_key) DO UPDATE SET
			owner = excluded.owner,
			acquired_at = excluded.acquired_at,
			expires_at = excluded.expires_at
		WHERE run_leases.expires_at <= excluded.acquired_at OR run_leases.owner = excluded.owner`
	res, err := r.db.ExecContext(ctx, query, key, owner, formatTime(now), formatTime(now.Add(ttl)))
	if err != nil {
		return fmt.Errorf("acquiring lease %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquiring lease %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("lease %s: %w", key, ErrLeaseHeld)
	}
	return nil
}

func (r *SQLiteLeaseRepo) Release(ctx context.Context, key, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM run_leases WHERE lease_key = ? AND owner = ?`, key, owner)
	if err != nil {
		return fmt.Errorf("releasing lease %s: %w", key, err)
	}
	return nil
}
