package memstore

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
)

type memstoreTestSuite struct {
	suite.Suite
	store *Store
	data  map[string]int
}

func (s *memstoreTestSuite) SetupTest() {
	s.store = New()
	s.data = map[string]int{}
}

func (s *memstoreTestSuite) set(c ctx.Ctx, k string, v int) error {
	return s.store.Write(c, func() (func(), error) {
		prev, existed := s.data[k]
		s.data[k] = v
		return func() {
			if existed {
				s.data[k] = prev
			} else {
				delete(s.data, k)
			}
		}, nil
	})
}

func (s *memstoreTestSuite) TestCommit() {
	c := ctx.Background()
	err := s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
		s.True(s.store.InTransaction(c))
		s.NoError(s.set(c, "a", 1))
		return s.set(c, "b", 2)
	})
	s.NoError(err)
	s.Equal(map[string]int{"a": 1, "b": 2}, s.data)
	s.False(s.store.InTransaction(c))
}

func (s *memstoreTestSuite) TestRevertInReverseOrder() {
	c := ctx.Background()
	s.NoError(s.set(c, "a", 1))

	errBoom := errors.New("boom")
	err := s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
		s.NoError(s.set(c, "a", 2))
		s.NoError(s.set(c, "a", 3))
		s.NoError(s.set(c, "b", 4))
		return errBoom
	})
	s.ErrorIs(err, errBoom)
	s.Equal(map[string]int{"a": 1}, s.data)
}

func (s *memstoreTestSuite) TestRevertOnPanic() {
	c := ctx.Background()
	s.Panics(func() {
		_ = s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
			s.NoError(s.set(c, "a", 1))
			panic("boom")
		})
	})
	s.Empty(s.data)

	// the lock is released after the panic
	s.NoError(s.set(c, "a", 1))
}

func (s *memstoreTestSuite) TestNestedJoinsOuter() {
	c := ctx.Background()
	errBoom := errors.New("boom")
	err := s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
		s.NoError(s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
			return s.set(c, "inner", 1)
		}))
		return errBoom
	})
	s.ErrorIs(err, errBoom)
	s.Empty(s.data)
}

func (s *memstoreTestSuite) TestReadersWaitForCommit() {
	c := ctx.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
			_ = s.set(c, "a", 1)
			close(started)
			<-release
			return s.set(c, "b", 2)
		})
	}()

	<-started
	seen := make(chan map[string]int, 1)
	go func() {
		s.store.Read(c, func() {
			cp := map[string]int{}
			for k, v := range s.data {
				cp[k] = v
			}
			seen <- cp
		})
	}()

	select {
	case <-seen:
		s.Fail("read observed an open transaction")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()
	s.Equal(map[string]int{"a": 1, "b": 2}, <-seen)
}

func TestMemstoreTestSuite(t *testing.T) {
	suite.Run(t, new(memstoreTestSuite))
}
