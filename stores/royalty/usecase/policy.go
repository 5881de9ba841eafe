package usecase

import (
	"sort"

	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/royalty"
)

// DefaultBps is the flat 10% creator royalty
const DefaultBps = 1000

var errInvalidBps = xerrors.Errorf("bps out of [0, %d]: %w", royalty.BpsDenominator, domain.ErrInvalidArgument)

func validBps(bps int64) bool {
	return bps >= 0 && bps <= royalty.BpsDenominator
}

// split rounds the royalty down, the remainder always goes to the seller
func split(price domain.Wei, bps int64, recipient domain.Address) (*royalty.Split, error) {
	if !price.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	royaltyAmount := price.MulDiv(bps, royalty.BpsDenominator)
	return &royalty.Split{
		Recipient:     recipient,
		RoyaltyAmount: royaltyAmount,
		SellerAmount:  price.Sub(royaltyAmount),
	}, nil
}

type flat struct {
	bps      int64
	resolver royalty.RecipientResolver
}

// NewFlat pays bps of every sale to the creator's recipient
func NewFlat(bps int64, resolver royalty.RecipientResolver) (royalty.Policy, error) {
	if !validBps(bps) {
		return nil, errInvalidBps
	}
	return &flat{bps: bps, resolver: resolver}, nil
}

func (p *flat) Name() royalty.PolicyName {
	return royalty.PolicyFlat
}

func (p *flat) ComputeSplit(c ctx.Ctx, token *music.Token, price domain.Wei) (*royalty.Split, error) {
	return split(price, p.bps, p.resolver.Resolve(token.Creator))
}

type zeroOnFirstSale struct {
	base     royalty.Policy
	resolver royalty.RecipientResolver
}

// NewZeroOnFirstSale waives the royalty of base on the primary sale, the one
// by a creator who has owned the token since mint
func NewZeroOnFirstSale(base royalty.Policy, resolver royalty.RecipientResolver) royalty.Policy {
	return &zeroOnFirstSale{base: base, resolver: resolver}
}

func (p *zeroOnFirstSale) Name() royalty.PolicyName {
	return royalty.PolicyZeroOnFirstSale
}

func (p *zeroOnFirstSale) ComputeSplit(c ctx.Ctx, token *music.Token, price domain.Wei) (*royalty.Split, error) {
	if token.SoldAt == nil && token.Owner.Equals(token.Creator) {
		return split(price, 0, p.resolver.Resolve(token.Creator))
	}
	return p.base.ComputeSplit(c, token, price)
}

type tiered struct {
	// sorted by MinPrice descending
	tiers    []royalty.Tier
	resolver royalty.RecipientResolver
}

// NewTiered applies the bps of the highest tier whose MinPrice the price
// reaches, prices below every tier pay no royalty
func NewTiered(tiers []royalty.Tier, resolver royalty.RecipientResolver) (royalty.Policy, error) {
	if len(tiers) == 0 {
		return nil, xerrors.Errorf("no tiers: %w", domain.ErrInvalidArgument)
	}
	sorted := make([]royalty.Tier, len(tiers))
	copy(sorted, tiers)
	for _, t := range sorted {
		if !validBps(t.Bps) {
			return nil, errInvalidBps
		}
		if t.MinPrice.Sign() < 0 {
			return nil, domain.ErrInvalidAmount
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPrice.Cmp(sorted[j].MinPrice) > 0
	})
	return &tiered{tiers: sorted, resolver: resolver}, nil
}

func (p *tiered) Name() royalty.PolicyName {
	return royalty.PolicyTiered
}

func (p *tiered) ComputeSplit(c ctx.Ctx, token *music.Token, price domain.Wei) (*royalty.Split, error) {
	bps := int64(0)
	for _, t := range p.tiers {
		if price.Cmp(t.MinPrice) >= 0 {
			bps = t.Bps
			break
		}
	}
	return split(price, bps, p.resolver.Resolve(token.Creator))
}
