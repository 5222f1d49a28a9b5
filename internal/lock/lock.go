// Package lock serializes settlement work per key (one wallet, one tournament).
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockHeld is returned when a key stays locked for longer than the caller is willing to wait
var ErrLockHeld = errors.New("lock is held by another holder")

// Locker acquires exclusive, expiring locks by key
type Locker interface {
	// Acquire blocks until key is held or ctx is done. The returned release is safe to call once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// WalletKey is the lock key serializing mutations of one user's wallet
func WalletKey(userID string) string {
	return "wallet:" + userID
}

// TournamentKey is the lock key serializing payouts of one tournament
func TournamentKey(tournamentID string) string {
	return "tournament:" + tournamentID
}

// boundedLocker gives up on a key after wait instead of queueing behind a slow holder
type boundedLocker struct {
	Locker
	wait time.Duration
}

// WithWait limits how long Acquire waits for a key. A zero wait leaves l unchanged.
func WithWait(l Locker, wait time.Duration) Locker {
	if wait <= 0 {
		return l
	}
	return &boundedLocker{Locker: l, wait: wait}
}

func (b *boundedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, b.wait)
	defer cancel()
	return b.Locker.Acquire(waitCtx, key)
}

// LocalLocker is an in-process Locker for single-replica deployments and tests.
// Entries are removed as soon as no holder or waiter references them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates a new LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Acquire waits for key to become free
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, errors.Join(ErrLockHeld, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys are tracked, for tests
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
