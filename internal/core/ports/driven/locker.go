package driven

import (
	"context"
	"errors"
)

// ErrLockHeld is returned by Locker.TryLock when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another process")

// Locker is an advisory lock shared between processes.
type Locker interface {
	// TryLock acquires the lock without waiting.
	// It returns ErrLockHeld when the lock is taken, and a release func otherwise.
	TryLock(ctx context.Context) (release func(context.Context) error, err error)
}
