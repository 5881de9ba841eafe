package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/redis"
	"github.com/x-xyz/musicnft/service/redis/mocks"
)

type lockTestSuite struct {
	suite.Suite
}

func (s *lockTestSuite) TestLocalSerializesSameKey() {
	l := NewLocal(time.Second)
	c := ctx.Background()

	counter := 0
	maxInside := 0
	inside := 0
	mu := sync.Mutex{}

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(c, "k")
			s.NoError(err)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)
			counter++

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	s.Equal(20, counter)
	s.Equal(1, maxInside)
}

func (s *lockTestSuite) TestLocalIndependentKeys() {
	l := NewLocal(50 * time.Millisecond)
	c := ctx.Background()

	unlockA, err := l.Lock(c, "a")
	s.Require().NoError(err)
	defer unlockA()

	unlockB, err := l.Lock(c, "b")
	s.Require().NoError(err)
	unlockB()
}

func (s *lockTestSuite) TestLocalTimeout() {
	l := NewLocal(20 * time.Millisecond)
	c := ctx.Background()

	unlock, err := l.Lock(c, "k")
	s.Require().NoError(err)

	_, err = l.Lock(c, "k")
	s.ErrorIs(err, domain.ErrLockTimeout)

	// double unlock is harmless
	unlock()
	unlock()

	unlock, err = l.Lock(c, "k")
	s.NoError(err)
	unlock()
	s.Empty(l.(*local).slots)
}

func (s *lockTestSuite) TestLocalCanceled() {
	l := NewLocal(time.Second)
	unlock, err := l.Lock(ctx.Background(), "k")
	s.Require().NoError(err)
	defer unlock()

	c, cancel := ctx.WithCancel(ctx.Background())
	cancel()
	_, err = l.Lock(c, "k")
	s.ErrorIs(err, context.Canceled)
}

func (s *lockTestSuite) TestRedisAcquireRelease() {
	m := mocks.NewService(s.T())
	l := NewRedis(&RedisLockerCfg{Redis: m, TTL: time.Second, Timeout: time.Second})
	c := ctx.Background()

	var token []byte
	m.On("SetNX", mock.Anything, "tokenLock:1", mock.Anything, time.Second).
		Return(redis.ErrNotFound).Once()
	m.On("SetNX", mock.Anything, "tokenLock:1", mock.Anything, time.Second).
		Run(func(args mock.Arguments) { token = args.Get(2).([]byte) }).
		Return(nil).Once()

	unlock, err := l.Lock(c, "tokenLock:1")
	s.Require().NoError(err)

	m.On("DelIfEqual", mock.Anything, "tokenLock:1", mock.MatchedBy(func(v []byte) bool {
		return string(v) == string(token)
	})).Return(true, nil).Once()
	unlock()
}

func (s *lockTestSuite) TestRedisTimeout() {
	m := mocks.NewService(s.T())
	l := NewRedis(&RedisLockerCfg{Redis: m, TTL: time.Second, Timeout: 30 * time.Millisecond})

	m.On("SetNX", mock.Anything, "k", mock.Anything, time.Second).Return(redis.ErrNotFound)

	_, err := l.Lock(ctx.Background(), "k")
	s.ErrorIs(err, domain.ErrLockTimeout)
}

func TestLockTestSuite(t *testing.T) {
	suite.Run(t, new(lockTestSuite))
}
