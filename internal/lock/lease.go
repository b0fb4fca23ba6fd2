package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/gradeplan/internal/logger"
	"github.com/alexanderramin/gradeplan/internal/repository"
)

// DefaultLeaseTTL bounds how long a crashed run can block a date.
const DefaultLeaseTTL = 10 * time.Minute

// LeaseLocker locks keys through a shared lease table so separate
// processes on one database exclude each other.
type LeaseLocker struct {
	store repository.LeaseRepo
	owner string
	ttl   time.Duration
	now   func() time.Time
	log   logger.Logger
}

func NewLeaseLocker(store repository.LeaseRepo, ttl time.Duration, log logger.Logger) *LeaseLocker {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &LeaseLocker{
		store: store,
		owner: uuid.New().String(),
		ttl:   ttl,
		now:   time.Now,
		log:   logger.OrNop(log),
	}
}

// Owner identifies this locker's leases.
func (l *LeaseLocker) Owner() string {
	return l.owner
}

func (l *LeaseLocker) TryLock(ctx context.Context, key string) (func(), error) {
	if err := l.store.Acquire(ctx, key, l.owner, l.ttl, l.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrLeaseHeld) {
			return nil, fmt.Errorf("%s: %w", key, ErrLocked)
		}
		return nil, fmt.Errorf("acquiring lease: %w", err)
	}
	l.log.Debugf("lease %s acquired by %s", key, l.owner)

	release := context.WithoutCancel(ctx)
	return func() {
		if err := l.store.Release(release, key, l.owner); err != nil {
			l.log.Warnf("releasing lease %s: %v", key, err)
		}
	}, nil
}
