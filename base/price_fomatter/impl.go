package pricefomatter

import (
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/domain"
)

type PriceFormatterCfg struct {
	// Decimals of the display unit, EtherDecimals when zero
	Decimals int32
}

type impl struct {
	decimals int32
}

func NewPriceFormatter(cfg *PriceFormatterCfg) PriceFormatter {
	decimals := cfg.Decimals
	if decimals == 0 {
		decimals = EtherDecimals
	}
	return &impl{decimals: decimals}
}

func (f *impl) ToDisplay(w domain.Wei) decimal.Decimal {
	return decimal.NewFromBigInt(w.Big(), -f.decimals)
}

func (f *impl) FormatDisplay(w domain.Wei) string {
	return f.ToDisplay(w).String()
}

func (f *impl) ParseDisplay(s string) (domain.Wei, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Wei{}, xerrors.Errorf("parse %q: %w", s, domain.ErrInvalidAmount)
	}
	shifted := d.Shift(f.decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return domain.Wei{}, xerrors.Errorf("%q is finer than 1 wei: %w", s, domain.ErrInvalidAmount)
	}
	return domain.WeiFromBig(shifted.BigInt()), nil
}
