package permission

import "sync"

// roleLocks hands out one mutex per role id and drops it once unused.
type roleLocks struct {
	mu    sync.Mutex
	locks map[uint]*roleLock
}

type roleLock struct {
	mu   sync.Mutex
	refs int
}

func newRoleLocks() *roleLocks {
	return &roleLocks{locks: make(map[uint]*roleLock)}
}

// lock blocks until the role's mutex is held and returns its release func.
func (l *roleLocks) lock(roleID uint) func() {
	l.mu.Lock()
	rl, ok := l.locks[roleID]
	if !ok {
		rl = &roleLock{}
		l.locks[roleID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, roleID)
		}
		l.mu.Unlock()
	}
}

func (l *roleLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
