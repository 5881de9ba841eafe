package usecase

import (
	"golang.org/x/xerrors"

	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/base/validator"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/royalty"
)

type TierConfig struct {
	// MinPrice in ether
	MinPrice string `mapstructure:"min_price"`
	Bps      int64  `mapstructure:"bps"`
}

// PolicyConfig is the `royalty` config section
type PolicyConfig struct {
	Policy royalty.PolicyName `mapstructure:"policy"`
	// Bps of flat and zeroOnFirstSale, DefaultBps when nil
	Bps   *int64       `mapstructure:"bps"`
	Tiers []TierConfig `mapstructure:"tiers"`
	// Recipients maps creator to delegated recipient
	Recipients map[string]string `mapstructure:"recipients"`
}

// NewPolicy builds the configured policy, flat when no policy is named
func NewPolicy(cfg *PolicyConfig, formatter pricefomatter.PriceFormatter) (royalty.Policy, error) {
	for creator, recipient := range cfg.Recipients {
		if !validator.IsValidAddress(creator) || !validator.IsValidAddress(recipient) {
			return nil, xerrors.Errorf("royalty recipient %s -> %s: %w", creator, recipient, domain.ErrInvalidAddress)
		}
	}
	resolver := NewRecipientResolver(cfg.Recipients)

	bps := int64(DefaultBps)
	if cfg.Bps != nil {
		bps = *cfg.Bps
	}

	switch cfg.Policy {
	case "", royalty.PolicyFlat:
		return NewFlat(bps, resolver)
	case royalty.PolicyZeroOnFirstSale:
		base, err := NewFlat(bps, resolver)
		if err != nil {
			return nil, err
		}
		return NewZeroOnFirstSale(base, resolver), nil
	case royalty.PolicyTiered:
		tiers := make([]royalty.Tier, 0, len(cfg.Tiers))
		for _, t := range cfg.Tiers {
			minPrice, err := formatter.ParseDisplay(t.MinPrice)
			if err != nil {
				return nil, err
			}
			tiers = append(tiers, royalty.Tier{MinPrice: minPrice, Bps: t.Bps})
		}
		return NewTiered(tiers, resolver)
	default:
		return nil, xerrors.Errorf("unknown royalty policy %q: %w", cfg.Policy, domain.ErrInvalidArgument)
	}
}
