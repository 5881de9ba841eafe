package event

import (
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/sale"
)

type Type string

const (
	TypeMinted        Type = "minted"
	TypeListedForSale Type = "listedForSale"
	TypePriceChanged  Type = "priceChanged"
	TypeSold          Type = "sold"
)

// Event is a market notification. Token is the state right after the change.
type Event struct {
	Type      Type          `json:"type"`
	TokenId   music.Id      `json:"tokenId"`
	Token     *music.Token  `json:"token,omitempty"`
	Receipt   *sale.Receipt `json:"receipt,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewTokenEvent(typ Type, token *music.Token) *Event {
	return &Event{
		Type:      typ,
		TokenId:   token.Id,
		Token:     token.Clone(),
		Timestamp: time.Now(),
	}
}

func NewSoldEvent(token *music.Token, receipt *sale.Receipt) *Event {
	r := *receipt
	return &Event{
		Type:      TypeSold,
		TokenId:   token.Id,
		Token:     token.Clone(),
		Receipt:   &r,
		Timestamp: receipt.Timestamp,
	}
}

// Subscriber receives every published event
type Subscriber interface {
	Name() string
	Notify(ctx ctx.Ctx, e *Event) error
}

// Publisher delivers events asynchronously. Subscriber failures are logged
// and never reach the publisher.
type Publisher interface {
	Publish(ctx ctx.Ctx, e *Event)
}
