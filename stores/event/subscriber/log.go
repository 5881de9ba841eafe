package subscriber

import (
	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain/event"
)

type logSubscriber struct{}

// NewLogSubscriber writes every event to the structured log
func NewLogSubscriber() event.Subscriber {
	return &logSubscriber{}
}

func (s *logSubscriber) Name() string {
	return "log"
}

func (s *logSubscriber) Notify(c ctx.Ctx, e *event.Event) error {
	fields := log.Fields{"type": e.Type, "tokenId": e.TokenId}
	if e.Token != nil {
		fields["owner"] = e.Token.Owner
		fields["price"] = e.Token.Price.String()
		fields["isForSale"] = e.Token.IsForSale
	}
	if e.Receipt != nil {
		fields["receiptId"] = e.Receipt.Id
		fields["buyer"] = e.Receipt.Buyer
		fields["seller"] = e.Receipt.Seller
	}
	c.WithFields(fields).Info("market event")
	return nil
}
