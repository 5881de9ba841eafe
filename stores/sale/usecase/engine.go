package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/metrics"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/event"
	"github.com/x-xyz/musicnft/domain/keys"
	"github.com/x-xyz/musicnft/domain/ledger"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/royalty"
	"github.com/x-xyz/musicnft/domain/sale"
)

type EngineCfg struct {
	Registry music.UseCase
	Settler  music.Settler
	Policy   royalty.Policy
	Ledger   ledger.UseCase
	Repo     sale.Repo
	Tx       domain.TxRunner
	Locker   domain.Locker
	// Publisher receives Sold after commit
	Publisher event.Publisher
	// Operator is the marketplace address approved for the duration of a sale
	Operator domain.Address
}

type engine struct {
	registry  music.UseCase
	settler   music.Settler
	policy    royalty.Policy
	ledger    ledger.UseCase
	repo      sale.Repo
	tx        domain.TxRunner
	locker    domain.Locker
	publisher event.Publisher
	operator  domain.Address
	met       metrics.Service
}

func New(cfg *EngineCfg) sale.UseCase {
	return &engine{
		registry:  cfg.Registry,
		settler:   cfg.Settler,
		policy:    cfg.Policy,
		ledger:    cfg.Ledger,
		repo:      cfg.Repo,
		tx:        cfg.Tx,
		locker:    cfg.Locker,
		publisher: cfg.Publisher,
		operator:  cfg.Operator.ToLower(),
		met:       metrics.New("sale"),
	}
}

// ExecuteSale settles a purchase of token id by buyer. Ledger movements and
// registry changes commit together or not at all.
func (im *engine) ExecuteSale(c ctx.Ctx, id music.Id, buyer domain.Address, tendered domain.Wei) (*sale.Receipt, error) {
	defer im.met.BumpTime("execute.time", "policy", string(im.policy.Name())).End()

	buyer = buyer.ToLower()
	c = ctx.WithLogFields(c, log.Fields{"tokenId": id, "buyer": buyer, "tendered": tendered.String()})

	if buyer.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}
	if tendered.Sign() < 0 {
		return nil, domain.ErrInvalidAmount
	}

	unlock, err := im.locker.Lock(c, keys.TokenLockKey(uint64(id)))
	if err != nil {
		im.met.BumpSum("execute.err", 1, "reason", "lock")
		c.WithField("err", err).Warn("locker.Lock failed")
		return nil, err
	}
	defer unlock()

	var (
		receipt *sale.Receipt
		sold    *music.Token
	)
	err = im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		var err error
		receipt, sold, err = im.settle(c, id, buyer, tendered)
		return err
	})
	if err != nil {
		im.met.BumpSum("execute.err", 1)
		c.WithField("err", err).Warn("sale rejected")
		return nil, err
	}

	im.met.BumpSum("execute.success", 1)
	c.WithFields(log.Fields{"receiptId": receipt.Id, "seller": receipt.Seller}).Info("token sold")
	im.publisher.Publish(c, event.NewSoldEvent(sold, receipt))
	return receipt, nil
}

func (im *engine) settle(c ctx.Ctx, id music.Id, buyer domain.Address, tendered domain.Wei) (*sale.Receipt, *music.Token, error) {
	token, err := im.registry.Get(c, id)
	if err != nil {
		return nil, nil, err
	}
	if !token.IsForSale {
		return nil, nil, domain.ErrNotForSale
	}
	seller := token.Owner.ToLower()
	if buyer.Equals(seller) {
		return nil, nil, domain.ErrSelfPurchase
	}
	price := token.Price
	if tendered.Cmp(price) < 0 {
		return nil, nil, xerrors.Errorf("tendered %s below price %s: %w", tendered, price, domain.ErrInsufficientFunds)
	}

	split, err := im.policy.ComputeSplit(c, token, price)
	if err != nil {
		c.WithField("err", err).Error("policy.ComputeSplit failed")
		return nil, nil, err
	}
	if split.RoyaltyAmount.Sign() < 0 || split.SellerAmount.Sign() < 0 || split.RoyaltyAmount.Add(split.SellerAmount).Cmp(price) != 0 {
		return nil, nil, xerrors.Errorf("split %s + %s of %s: %w", split.RoyaltyAmount, split.SellerAmount, price, domain.ErrInvariantViolation)
	}
	recipient := split.Recipient.ToLower()
	if recipient.IsEmpty() {
		recipient = token.Creator.ToLower()
	}
	refund := tendered.Sub(price)

	memo := fmt.Sprintf("sale of token %d", id)
	if err := im.ledger.Debit(c, buyer, tendered, memo); err != nil {
		return nil, nil, err
	}
	movements := []struct {
		account domain.Address
		amount  domain.Wei
		memo    string
	}{
		{recipient, split.RoyaltyAmount, fmt.Sprintf("royalty of token %d", id)},
		{seller, split.SellerAmount, memo},
		{buyer, refund, fmt.Sprintf("refund of token %d", id)},
	}
	for _, m := range movements {
		if !m.amount.IsPositive() {
			continue
		}
		if err := im.ledger.Credit(c, m.account, m.amount, m.memo); err != nil {
			c.WithFields(log.Fields{"account": m.account, "err": err}).Error("ledger.Credit failed")
			return nil, nil, err
		}
	}

	if err := im.settler.GrantApproval(c, id, seller, im.operator); err != nil {
		c.WithField("err", err).Error("settler.GrantApproval failed")
		return nil, nil, err
	}
	if err := im.settler.TransferOwnership(c, id, im.operator, seller, buyer); err != nil {
		c.WithField("err", err).Error("settler.TransferOwnership failed")
		return nil, nil, err
	}
	if err := im.settler.MarkSold(c, id, price); err != nil {
		c.WithField("err", err).Error("settler.MarkSold failed")
		return nil, nil, err
	}

	receipt := &sale.Receipt{
		Id:               uuid.NewString(),
		TokenId:          id,
		Seller:           seller,
		Buyer:            buyer,
		RoyaltyRecipient: recipient,
		Price:            price,
		RoyaltyAmount:    split.RoyaltyAmount,
		SellerAmount:     split.SellerAmount,
		Refund:           refund,
		Timestamp:        time.Now(),
	}
	if err := im.repo.Insert(c, receipt); err != nil {
		c.WithField("err", err).Error("repo.Insert failed")
		return nil, nil, err
	}

	sold, err := im.registry.Get(c, id)
	if err != nil {
		return nil, nil, err
	}
	if err := sold.CheckInvariants(); err != nil || sold.IsForSale || !sold.Owner.Equals(buyer) {
		return nil, nil, xerrors.Errorf("token %d after sale: %w", id, domain.ErrInvariantViolation)
	}
	return receipt, sold, nil
}

func (im *engine) FindReceipts(c ctx.Ctx, opts ...sale.FindAllOptionsFunc) ([]*sale.Receipt, error) {
	return im.repo.FindAll(c, opts...)
}
