package sale

import (
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
)

// Receipt is the persisted record of one settled sale
type Receipt struct {
	Id               string         `json:"id" bson:"id"`
	TokenId          music.Id       `json:"tokenId" bson:"tokenId"`
	Seller           domain.Address `json:"seller" bson:"seller"`
	Buyer            domain.Address `json:"buyer" bson:"buyer"`
	RoyaltyRecipient domain.Address `json:"royaltyRecipient" bson:"royaltyRecipient"`
	Price            domain.Wei     `json:"price" bson:"price"`
	RoyaltyAmount    domain.Wei     `json:"royaltyAmount" bson:"royaltyAmount"`
	SellerAmount     domain.Wei     `json:"sellerAmount" bson:"sellerAmount"`
	Refund           domain.Wei     `json:"refund" bson:"refund"`
	Timestamp        time.Time      `json:"timestamp" bson:"timestamp"`
}

type FindAllOptions struct {
	TokenId *music.Id
	Account *domain.Address
	Offset  *int32
	Limit   *int32
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithTokenId(id music.Id) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.TokenId = &id
		return nil
	}
}

// WithAccount matches receipts where account is the seller or the buyer
func WithAccount(account domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		account = account.ToLower()
		options.Account = &account
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrInvalidArgument
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func (o FindAllOptions) Match(r *Receipt) bool {
	if o.TokenId != nil && r.TokenId != *o.TokenId {
		return false
	}
	if o.Account != nil && !r.Seller.Equals(*o.Account) && !r.Buyer.Equals(*o.Account) {
		return false
	}
	return true
}

type Repo interface {
	Insert(ctx ctx.Ctx, receipt *Receipt) error
	// FindAll returns matching receipts, newest first
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Receipt, error)
}

type UseCase interface {
	// ExecuteSale settles a purchase of token id by buyer. Funds, ownership
	// and the sale flag change together or not at all.
	ExecuteSale(ctx ctx.Ctx, id music.Id, buyer domain.Address, tendered domain.Wei) (*Receipt, error)
	FindReceipts(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Receipt, error)
}
