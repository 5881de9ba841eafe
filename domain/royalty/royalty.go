package royalty

import (
	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
)

// BpsDenominator is 100% in basis points
const BpsDenominator = 10000

type PolicyName string

const (
	PolicyFlat            PolicyName = "flat"
	PolicyZeroOnFirstSale PolicyName = "zeroOnFirstSale"
	PolicyTiered          PolicyName = "tiered"
)

// Split is how a sale price is divided. RoyaltyAmount + SellerAmount always
// equals the price.
type Split struct {
	Recipient     domain.Address `json:"recipient"`
	RoyaltyAmount domain.Wei     `json:"royaltyAmount"`
	SellerAmount  domain.Wei     `json:"sellerAmount"`
}

// Tier applies Bps to prices greater than or equal to MinPrice
type Tier struct {
	MinPrice domain.Wei
	Bps      int64
}

// Policy computes the split of a sale, token.Owner is the seller
type Policy interface {
	Name() PolicyName
	ComputeSplit(ctx ctx.Ctx, token *music.Token, price domain.Wei) (*Split, error)
}

// RecipientResolver maps a creator to the address royalties are paid to
type RecipientResolver interface {
	Resolve(creator domain.Address) domain.Address
}
