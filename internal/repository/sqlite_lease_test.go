package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/gradeplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseRepo_AcquireExcludesOtherOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteLeaseRepo(db)
	ctx := context.Background()
	now := testutil.At(8, 0)

	require.NoError(t, repo.Acquire(ctx, "planning:2025-03-10", "a", 10*time.Minute, now))

	err := repo.Acquire(ctx, "planning:2025-03-10", "b", 10*time.Minute, now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrLeaseHeld)

	// Different key is independent.
	require.NoError(t, repo.Acquire(ctx, "planning:2025-03-11", "b", 10*time.Minute, now))
}

func TestLeaseRepo_SameOwnerRenews(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteLeaseRepo(db)
	ctx := context.Background()
	now := testutil.At(8, 0)

	require.NoError(t, repo.Acquire(ctx, "k", "a", time.Minute, now))
	require.NoError(t, repo.Acquire(ctx, "k", "a", time.Minute, now.Add(30*time.Second)))
}

func TestLeaseRepo_ExpiredLeaseIsTakenOver(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteLeaseRepo(db)
	ctx := context.Background()
	now := testutil.At(8, 0)

	require.NoError(t, repo.Acquire(ctx, "k", "a", time.Minute, now))
	require.NoError(t, repo.Acquire(ctx, "k", "b", time.Minute, now.Add(2*time.Minute)))

	err := repo.Acquire(ctx, "k", "a", time.Minute, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrLeaseHeld)
}

func TestLeaseRepo_ReleaseOnlyByOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteLeaseRepo(db)
	ctx := context.Background()
	now := testutil.At(8, 0)

	require.NoError(t, repo.Acquire(ctx, "k", "a", time.Hour, now))

	require.NoError(t, repo.Release(ctx, "k", "b"))
	assert.ErrorIs(t, repo.Acquire(ctx, "k", "b", time.Hour, now), ErrLeaseHeld)

	require.NoError(t, repo.Release(ctx, "k", "a"))
	require.NoError(t, repo.Acquire(ctx, "k", "b", time.Hour, now))
}
