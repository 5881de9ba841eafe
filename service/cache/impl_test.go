package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/service/cache/provider/primitive"
)

type resource struct {
	Data        []byte
	ContentType string
}

type cacheTestSuite struct {
	suite.Suite
	svc Service
}

func (s *cacheTestSuite) SetupTest() {
	s.svc = New(ServiceConfig{
		Ttl:   time.Minute,
		Pfx:   "test",
		Cache: primitive.NewPrimitive("test", 1),
	})
}

func (s *cacheTestSuite) TestGetByFunc() {
	c := ctx.Background()
	calls := 0
	getter := func() (interface{}, error) {
		calls++
		return &resource{Data: []byte("cover"), ContentType: "image/png"}, nil
	}

	var r1 resource
	s.NoError(s.svc.GetByFunc(c, "ipfs://cover", &r1, getter))
	s.Equal("image/png", r1.ContentType)

	var r2 resource
	s.NoError(s.svc.GetByFunc(c, "ipfs://cover", &r2, getter))
	s.Equal([]byte("cover"), r2.Data)
	s.Equal(1, calls)
}

func (s *cacheTestSuite) TestGetterErrorNotCached() {
	c := ctx.Background()
	errBoom := errors.New("boom")

	var r resource
	err := s.svc.GetByFunc(c, "k", &r, func() (interface{}, error) { return nil, errBoom })
	s.ErrorIs(err, errBoom)
	s.ErrorIs(s.svc.Get(c, "k", &r), ErrNotFound)
}

func (s *cacheTestSuite) TestDel() {
	c := ctx.Background()
	s.NoError(s.svc.Set(c, "k", &resource{ContentType: "audio/mpeg"}))

	var r resource
	s.NoError(s.svc.Get(c, "k", &r))
	s.Equal("audio/mpeg", r.ContentType)

	s.NoError(s.svc.Del(c, "k"))
	s.ErrorIs(s.svc.Get(c, "k", &r), ErrNotFound)
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(cacheTestSuite))
}
