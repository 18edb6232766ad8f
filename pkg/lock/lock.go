// Package lock serialises plan mutations per school year.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned when another operation holds the lock
var ErrLocked = errors.New("another plan operation is running for this year")

// Release frees a held lock
type Release func(ctx context.Context) error

//go:generate mockgen -source=lock.go -destination=lock_mock.go -package=lock

// Locker hands out exclusive, non-blocking locks by key
type Locker interface {
	// Acquire returns ErrLocked immediately when the key is taken
	Acquire(ctx context.Context, key string) (Release, error)
}

// YearKey is the lock key guarding the plan of one year
func YearKey(yearID string) string {
	return "cooking-rota:plan-lock:" + yearID
}

// MemoryLocker is a process-local Locker
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[key]; taken {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
