package permission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleLocks_SerializesPerRole(t *testing.T) {
	locks := newRoleLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(1)
			defer unlock()

			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Zero(t, locks.size())
}

func TestRoleLocks_IndependentRoles(t *testing.T) {
	locks := newRoleLocks()

	unlockA := locks.lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock(2)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()

	assert.Zero(t, locks.size())
}
