package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/royalty"
)

const (
	creator  = domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	collab   = domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	reseller = domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")
)

func ether(s string) domain.Wei {
	w, err := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{}).ParseDisplay(s)
	if err != nil {
		panic(err)
	}
	return w
}

type policySuite struct {
	suite.Suite

	ctx      ctx.Ctx
	resolver royalty.RecipientResolver
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(policySuite))
}

func (s *policySuite) SetupTest() {
	s.ctx = ctx.Background()
	s.resolver = NewRecipientResolver(nil)
}

func (s *policySuite) token(owner domain.Address) *music.Token {
	return &music.Token{Id: 1, Creator: creator, Owner: owner}
}

func (s *policySuite) assertConserved(price domain.Wei, sp *royalty.Split) {
	s.Equal(0, sp.RoyaltyAmount.Add(sp.SellerAmount).Cmp(price), "royalty + seller must equal price")
	s.True(sp.RoyaltyAmount.Sign() >= 0)
	s.True(sp.SellerAmount.Sign() >= 0)
}

func (s *policySuite) TestFlat() {
	p, err := NewFlat(DefaultBps, s.resolver)
	s.Require().NoError(err)
	s.Equal(royalty.PolicyFlat, p.Name())

	cases := []struct {
		price   domain.Wei
		royalty string
		seller  string
	}{
		{ether("1"), "100000000000000000", "900000000000000000"},
		{ether("2"), "200000000000000000", "1800000000000000000"},
		// remainder goes to the seller
		{domain.NewWei(19), "1", "18"},
		{domain.NewWei(9), "0", "9"},
		{domain.NewWei(1), "0", "1"},
	}
	for _, c := range cases {
		sp, err := p.ComputeSplit(s.ctx, s.token(reseller), c.price)
		s.Require().NoError(err)
		s.Equal(creator, sp.Recipient)
		s.Equal(c.royalty, sp.RoyaltyAmount.String())
		s.Equal(c.seller, sp.SellerAmount.String())
		s.assertConserved(c.price, sp)
	}

	_, err = p.ComputeSplit(s.ctx, s.token(reseller), domain.NewWei(0))
	s.True(errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewFlat(10001, s.resolver)
	s.True(errors.Is(err, domain.ErrInvalidArgument))
	_, err = NewFlat(-1, s.resolver)
	s.True(errors.Is(err, domain.ErrInvalidArgument))
}

func (s *policySuite) TestZeroOnFirstSale() {
	base, err := NewFlat(DefaultBps, s.resolver)
	s.Require().NoError(err)
	p := NewZeroOnFirstSale(base, s.resolver)
	s.Equal(royalty.PolicyZeroOnFirstSale, p.Name())

	first, err := p.ComputeSplit(s.ctx, s.token(creator), ether("1"))
	s.Require().NoError(err)
	s.True(first.RoyaltyAmount.IsZero())
	s.Equal(ether("1").String(), first.SellerAmount.String())

	resale, err := p.ComputeSplit(s.ctx, s.token(reseller), ether("1"))
	s.Require().NoError(err)
	s.Equal(ether("0.1").String(), resale.RoyaltyAmount.String())
	s.assertConserved(ether("1"), resale)

	// a creator who bought the token back is reselling, not selling first
	boughtBack := s.token(creator)
	soldAt := time.Now()
	boughtBack.SoldAt = &soldAt
	again, err := p.ComputeSplit(s.ctx, boughtBack, ether("1"))
	s.Require().NoError(err)
	s.Equal(ether("0.1").String(), again.RoyaltyAmount.String())
	s.Equal(ether("0.9").String(), again.SellerAmount.String())
	s.assertConserved(ether("1"), again)
}

func (s *policySuite) TestTiered() {
	p, err := NewTiered([]royalty.Tier{
		{MinPrice: ether("0"), Bps: 1000},
		{MinPrice: ether("10"), Bps: 250},
		{MinPrice: ether("1"), Bps: 500},
	}, s.resolver)
	s.Require().NoError(err)
	s.Equal(royalty.PolicyTiered, p.Name())

	cases := []struct {
		price   string
		royalty string
	}{
		{"0.5", "0.05"},
		{"1", "0.05"},
		{"5", "0.25"},
		{"10", "0.25"},
		{"100", "2.5"},
	}
	for _, c := range cases {
		sp, err := p.ComputeSplit(s.ctx, s.token(reseller), ether(c.price))
		s.Require().NoError(err)
		s.Equal(ether(c.royalty).String(), sp.RoyaltyAmount.String(), c.price)
		s.assertConserved(ether(c.price), sp)
	}

	above, err := NewTiered([]royalty.Tier{{MinPrice: ether("1"), Bps: 500}}, s.resolver)
	s.Require().NoError(err)
	sp, err := above.ComputeSplit(s.ctx, s.token(reseller), ether("0.5"))
	s.Require().NoError(err)
	s.True(sp.RoyaltyAmount.IsZero())

	_, err = NewTiered(nil, s.resolver)
	s.True(errors.Is(err, domain.ErrInvalidArgument))
}

func (s *policySuite) TestDelegatedRecipient() {
	resolver := NewRecipientResolver(map[string]string{
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA": string(collab),
	})
	p, err := NewFlat(DefaultBps, resolver)
	s.Require().NoError(err)

	sp, err := p.ComputeSplit(s.ctx, s.token(reseller), ether("1"))
	s.Require().NoError(err)
	s.Equal(collab, sp.Recipient)

	s.Equal(reseller, resolver.Resolve(reseller))
}

func TestNewPolicy(t *testing.T) {
	req := require.New(t)
	formatter := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{})

	p, err := NewPolicy(&PolicyConfig{}, formatter)
	req.NoError(err)
	req.Equal(royalty.PolicyFlat, p.Name())

	bps := int64(0)
	p, err = NewPolicy(&PolicyConfig{Policy: royalty.PolicyZeroOnFirstSale, Bps: &bps}, formatter)
	req.NoError(err)
	req.Equal(royalty.PolicyZeroOnFirstSale, p.Name())

	p, err = NewPolicy(&PolicyConfig{
		Policy: royalty.PolicyTiered,
		Tiers:  []TierConfig{{MinPrice: "0", Bps: 1000}, {MinPrice: "1.5", Bps: 500}},
	}, formatter)
	req.NoError(err)
	req.Equal(royalty.PolicyTiered, p.Name())

	_, err = NewPolicy(&PolicyConfig{Policy: royalty.PolicyTiered, Tiers: []TierConfig{{MinPrice: "abc", Bps: 1}}}, formatter)
	req.True(errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewPolicy(&PolicyConfig{Policy: "auction"}, formatter)
	req.True(errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewPolicy(&PolicyConfig{Recipients: map[string]string{"0x1": "0x2"}}, formatter)
	req.True(errors.Is(err, domain.ErrInvalidAddress))
}
