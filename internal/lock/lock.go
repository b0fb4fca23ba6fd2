package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLocked is returned when another run holds the key.
var ErrLocked = errors.New("locked by another run")

// Locker grants exclusive use of a key without waiting. The returned
// unlock func releases it and is safe to call once.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(), err error)
}

// DateKey is the lock key for planning one date.
func DateKey(date time.Time) string {
	return "planning:" + date.Format("2006-01-02")
}

// MutexMap hands out one mutex per key within a process.
type MutexMap struct {
	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

func NewMutexMap() *MutexMap {
	return &MutexMap{
		mutexes: make(map[string]*sync.Mutex),
	}
}

func (m *MutexMap) TryLock(_ context.Context, key string) (func(), error) {
	mu := m.getMutex(key)
	if !mu.TryLock() {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}
	return mu.Unlock, nil
}

func (m *MutexMap) getMutex(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mu, ok := m.mutexes[key]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	m.mutexes[key] = mu
	return mu
}

// Chain takes every locker in order and releases in reverse. A failure
// part way releases what was already taken.
type Chain []Locker

func (c Chain) TryLock(ctx context.Context, key string) (func(), error) {
	return acquire(len(c), func(i int) (func(), error) { return c[i].TryLock(ctx, key) })
}

// TryLockAll takes keys in the order given. Callers sort keys so that
// concurrent runs over overlapping ranges cannot deadlock.
func TryLockAll(ctx context.Context, l Locker, keys []string) (func(), error) {
	return acquire(len(keys), func(i int) (func(), error) { return l.TryLock(ctx, keys[i]) })
}

func acquire(n int, take func(i int) (func(), error)) (func(), error) {
	unlocks := make([]func(), 0, n)
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for i := 0; i < n; i++ {
		unlock, err := take(i)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}
