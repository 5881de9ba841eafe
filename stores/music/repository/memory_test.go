package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/service/memstore"
)

var (
	alice = domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type memorySuite struct {
	suite.Suite

	ctx   ctx.Ctx
	store *memstore.Store
	im    music.Repo
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(memorySuite))
}

func (s *memorySuite) SetupTest() {
	s.ctx = ctx.Background()
	s.store = memstore.New()
	s.im = NewMemory(s.store)
}

func (s *memorySuite) mint(owner domain.Address, forSale bool) *music.Token {
	id, err := s.im.NextId(s.ctx)
	s.Require().NoError(err)
	t := &music.Token{Id: id, Title: "t", Creator: owner, Owner: owner, Price: domain.NewWei(100), IsForSale: forSale}
	s.Require().NoError(s.im.Create(s.ctx, t))
	return t
}

func (s *memorySuite) TestNextIdIsSequential() {
	for want := music.Id(1); want <= 3; want++ {
		id, err := s.im.NextId(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, id)
	}
}

func (s *memorySuite) TestCreateAndFindOne() {
	t := s.mint(alice, false)

	got, err := s.im.FindOne(s.ctx, t.Id)
	s.Require().NoError(err)
	s.Equal(t, got)

	got.Owner = bob
	again, err := s.im.FindOne(s.ctx, t.Id)
	s.Require().NoError(err)
	s.Equal(alice, again.Owner, "returned tokens must not alias the store")

	s.Error(s.im.Create(s.ctx, t))

	_, err = s.im.FindOne(s.ctx, 42)
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *memorySuite) TestFindAllAndCount() {
	a1 := s.mint(alice, true)
	a2 := s.mint(alice, false)
	b1 := s.mint(bob, true)

	cases := []struct {
		name string
		opts []music.FindAllOptionsFunc
		want []music.Id
	}{
		{name: "all newest first", want: []music.Id{b1.Id, a2.Id, a1.Id}},
		{name: "gallery", opts: []music.FindAllOptionsFunc{music.WithIsForSale(true)}, want: []music.Id{b1.Id, a1.Id}},
		{name: "collection", opts: []music.FindAllOptionsFunc{music.WithOwner(alice)}, want: []music.Id{a2.Id, a1.Id}},
		{name: "paged", opts: []music.FindAllOptionsFunc{music.WithPagination(1, 1)}, want: []music.Id{a2.Id}},
		{name: "past the end", opts: []music.FindAllOptionsFunc{music.WithPagination(5, 1)}, want: []music.Id{}},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			res, err := s.im.FindAll(s.ctx, c.opts...)
			s.Require().NoError(err)
			ids := []music.Id{}
			for _, t := range res {
				ids = append(ids, t.Id)
			}
			s.Equal(c.want, ids)
		})
	}

	n, err := s.im.Count(s.ctx, music.WithIsForSale(true))
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.im.FindAll(s.ctx, music.WithPagination(-1, 0))
	s.True(errors.Is(err, domain.ErrInvalidArgument))
}

func (s *memorySuite) TestPatchRevertsWithTransaction() {
	t := s.mint(alice, true)
	errBoom := errors.New("boom")

	err := s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
		owner, forSale := bob, false
		s.Require().NoError(s.im.Patch(c, t.Id, music.PatchableToken{Owner: &owner, IsForSale: &forSale}))
		_, err := s.im.NextId(c)
		s.Require().NoError(err)
		return errBoom
	})
	s.ErrorIs(err, errBoom)

	got, err := s.im.FindOne(s.ctx, t.Id)
	s.Require().NoError(err)
	s.Equal(alice, got.Owner)
	s.True(got.IsForSale)

	id, err := s.im.NextId(s.ctx)
	s.Require().NoError(err)
	s.Equal(music.Id(2), id)

	s.True(errors.Is(s.im.Patch(s.ctx, 99, music.PatchableToken{}), domain.ErrNotFound))
}
