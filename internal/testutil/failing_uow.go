package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/gradeplan/internal/db"
)

// FaultyUoW wraps a real unit of work and fails every write whose SQL
// contains Match with Err, so tests can break a multi-write operation at
// a chosen table and check the rollback. Reads pass through.
type FaultyUoW struct {
	Inner db.UnitOfWork
	Match string
	Err   error

	hits atomic.Int32
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u})
	})
}

// Hits counts the writes that were failed.
func (u *FaultyUoW) Hits() int {
	return int(u.hits.Load())
}

type faultyTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.uow.Match) {
		f.uow.hits.Add(1)
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
