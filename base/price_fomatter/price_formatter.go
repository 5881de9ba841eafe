package pricefomatter

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/musicnft/domain"
)

// EtherDecimals is the number of wei digits in one ether
const EtherDecimals = 18

// PriceFormatter converts between wei and the display unit users type prices in
type PriceFormatter interface {
	// ToDisplay returns w in the display unit, e.g. 1500000000000000000 -> 1.5
	ToDisplay(w domain.Wei) decimal.Decimal
	FormatDisplay(w domain.Wei) string
	// ParseDisplay parses a display amount, precision finer than 1 wei is rejected
	ParseDisplay(s string) (domain.Wei, error)
}
