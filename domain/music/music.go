package music

import (
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
)

// DefaultCoverURI is used when a token is minted without cover art
const DefaultCoverURI = "/music.png"

// Id is assigned sequentially from 1 at mint and never reused
type Id uint64

type Token struct {
	Id            Id             `json:"id" bson:"id"`
	Title         string         `json:"title" bson:"title"`
	Artist        string         `json:"artist" bson:"artist"`
	Genre         string         `json:"genre" bson:"genre"`
	Creator       domain.Address `json:"creator" bson:"creator"`
	Owner         domain.Address `json:"owner" bson:"owner"`
	Price         domain.Wei     `json:"price" bson:"price"`
	IsForSale     bool           `json:"isForSale" bson:"isForSale"`
	CoverURI      string         `json:"coverUri" bson:"coverUri"`
	AudioURI      string         `json:"audioUri" bson:"audioUri"`
	TokenURI      string         `json:"tokenUri" bson:"tokenUri"`
	Approved      domain.Address `json:"approved" bson:"approved"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
	SoldAt        *time.Time     `json:"soldAt,omitempty" bson:"soldAt,omitempty"`
	LastSalePrice domain.Wei     `json:"lastSalePrice" bson:"lastSalePrice"`
}

// Clone returns a copy safe to hand out of a store
func (t *Token) Clone() *Token {
	c := *t
	if t.SoldAt != nil {
		soldAt := *t.SoldAt
		c.SoldAt = &soldAt
	}
	return &c
}

// CheckInvariants reports a token state that must never be persisted
func (t *Token) CheckInvariants() error {
	if t.Owner.IsEmpty() {
		return domain.ErrInvariantViolation
	}
	if t.IsForSale && !t.Price.IsPositive() {
		return domain.ErrInvariantViolation
	}
	return nil
}

type PatchableToken struct {
	Owner         *domain.Address `bson:"owner,omitempty"`
	Price         *domain.Wei     `bson:"price,omitempty"`
	IsForSale     *bool           `bson:"isForSale,omitempty"`
	Approved      *domain.Address `bson:"approved,omitempty"`
	UpdatedAt     *time.Time      `bson:"updatedAt,omitempty"`
	SoldAt        *time.Time      `bson:"soldAt,omitempty"`
	LastSalePrice *domain.Wei     `bson:"lastSalePrice,omitempty"`
}

// Apply writes every set field of p onto t
func (p PatchableToken) Apply(t *Token) {
	if p.Owner != nil {
		t.Owner = *p.Owner
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.IsForSale != nil {
		t.IsForSale = *p.IsForSale
	}
	if p.Approved != nil {
		t.Approved = *p.Approved
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	if p.SoldAt != nil {
		soldAt := *p.SoldAt
		t.SoldAt = &soldAt
	}
	if p.LastSalePrice != nil {
		t.LastSalePrice = *p.LastSalePrice
	}
}

type MintParams struct {
	Title    string
	Artist   string
	Genre    string
	Price    domain.Wei
	CoverURI string
	AudioURI string
	Creator  domain.Address
}

// Validate rejects malformed mint input before any state is touched
func (p *MintParams) Validate() error {
	if p.Title == "" || p.Artist == "" || p.AudioURI == "" {
		return domain.ErrInvalidArgument
	}
	if !p.Price.IsPositive() {
		return domain.ErrInvalidArgument
	}
	if p.Creator.IsEmpty() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// Metadata is the ERC-721 style document behind tokenURI
type Metadata struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	AnimationUrl string `json:"animation_url"`
}

func NewMetadata(p *MintParams) *Metadata {
	return &Metadata{
		Name:         p.Title,
		Description:  p.Artist + " - " + p.Genre,
		Image:        p.CoverURI,
		AnimationUrl: p.AudioURI,
	}
}

type FindAllOptions struct {
	IsForSale *bool
	Owner     *domain.Address
	Creator   *domain.Address
	Offset    *int32
	Limit     *int32
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

func WithIsForSale(isForSale bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IsForSale = &isForSale
		return nil
	}
}

func WithOwner(owner domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		owner = owner.ToLower()
		options.Owner = &owner
		return nil
	}
}

func WithCreator(creator domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		creator = creator.ToLower()
		options.Creator = &creator
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

// Match reports whether t satisfies the filter part of opts
func (o FindAllOptions) Match(t *Token) bool {
	if o.IsForSale != nil && t.IsForSale != *o.IsForSale {
		return false
	}
	if o.Owner != nil && !t.Owner.Equals(*o.Owner) {
		return false
	}
	if o.Creator != nil && !t.Creator.Equals(*o.Creator) {
		return false
	}
	return true
}

type Repo interface {
	// NextId allocates the next token id
	NextId(ctx ctx.Ctx) (Id, error)
	Create(ctx ctx.Ctx, token *Token) error
	FindOne(ctx ctx.Ctx, id Id) (*Token, error)
	// FindAll returns matching tokens, newest first
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Token, error)
	Count(ctx ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Patch(ctx ctx.Ctx, id Id, patchable PatchableToken) error
}

type UseCase interface {
	Mint(ctx ctx.Ctx, params *MintParams) (*Token, error)
	Get(ctx ctx.Ctx, id Id) (*Token, error)
	List(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Token, error)
	TotalCount(ctx ctx.Ctx) (int, error)
	TokenMetadata(ctx ctx.Ctx, id Id) (*Metadata, error)

	SetForSale(ctx ctx.Ctx, id Id, caller domain.Address, desired bool) (*Token, error)
	ToggleForSale(ctx ctx.Ctx, id Id, caller domain.Address) (*Token, error)
	SetPrice(ctx ctx.Ctx, id Id, caller domain.Address, price domain.Wei) (*Token, error)
	Approve(ctx ctx.Ctx, id Id, caller domain.Address, operator domain.Address) (*Token, error)
}

// Settler is the registry surface reserved for the settlement engine. Callers
// must hold the token lock and run inside a transaction.
type Settler interface {
	// GrantApproval lets operator move the token on behalf of owner
	GrantApproval(ctx ctx.Ctx, id Id, owner domain.Address, operator domain.Address) error
	// TransferOwnership moves the token from `from` to `to` and clears the approval.
	// ErrInvariantViolation is returned when `from` is not the owner or operator
	// was never approved.
	TransferOwnership(ctx ctx.Ctx, id Id, operator, from, to domain.Address) error
	// MarkSold delists the token and records the sale
	MarkSold(ctx ctx.Ctx, id Id, price domain.Wei) error
}
