package lock

import (
	"sync"
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
)

type slot struct {
	ch   chan struct{}
	refs int
}

type local struct {
	timeout time.Duration

	// mutex protected members
	mu    sync.Mutex
	slots map[string]*slot
}

// NewLocal returns an in-process keyed lock. Lock gives up with
// domain.ErrLockTimeout after timeout.
func NewLocal(timeout time.Duration) domain.Locker {
	return &local{
		timeout: timeout,
		slots:   make(map[string]*slot),
	}
}

func (l *local) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *local) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *local) Lock(c ctx.Ctx, key string) (func(), error) {
	s := l.acquireSlot(key)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		once := sync.Once{}
		return func() {
			once.Do(func() {
				<-s.ch
				l.releaseSlot(key, s)
			})
		}, nil
	case <-timer.C:
		l.releaseSlot(key, s)
		c.WithFields(log.Fields{"key": key, "timeout": l.timeout}).Warn("lock timeout")
		return nil, domain.ErrLockTimeout
	case <-c.Done():
		l.releaseSlot(key, s)
		return nil, c.Err()
	}
}
