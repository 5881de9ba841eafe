package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/metrics"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/ledger"
)

type LedgerUseCaseCfg struct {
	Repo ledger.Repo
	Tx   domain.TxRunner
}

type impl struct {
	repo ledger.Repo
	tx   domain.TxRunner
	met  metrics.Service
}

func New(cfg *LedgerUseCaseCfg) ledger.UseCase {
	return &impl{
		repo: cfg.Repo,
		tx:   cfg.Tx,
		met:  metrics.New("ledger"),
	}
}

func (im *impl) Deposit(c ctx.Ctx, account domain.Address, amount domain.Wei) (*ledger.Balance, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if account.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}

	var res *ledger.Balance
	err := im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		b, err := im.apply(c, account, amount, ledger.EntryKindDeposit, "deposit")
		res = b
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{"account": account, "err": err}).Error("deposit failed")
		return nil, err
	}
	im.met.BumpSum("deposit", 1)
	return res, nil
}

func (im *impl) Debit(c ctx.Ctx, account domain.Address, amount domain.Wei, memo string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		_, err := im.apply(c, account, amount, ledger.EntryKindDebit, memo)
		return err
	})
}

func (im *impl) Credit(c ctx.Ctx, account domain.Address, amount domain.Wei, memo string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if account.IsEmpty() {
		return xerrors.Errorf("credit to zero address: %w", domain.ErrInvariantViolation)
	}
	return im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		_, err := im.apply(c, account, amount, ledger.EntryKindCredit, memo)
		return err
	})
}

// apply moves amount on account and appends the matching entry. It must run
// inside a transaction.
func (im *impl) apply(c ctx.Ctx, account domain.Address, amount domain.Wei, kind ledger.EntryKind, memo string) (*ledger.Balance, error) {
	account = account.ToLower()

	current, err := im.balanceOf(c, account)
	if err != nil {
		return nil, err
	}

	next := current.Add(amount)
	if kind == ledger.EntryKindDebit {
		if current.Cmp(amount) < 0 {
			return nil, xerrors.Errorf("%s holds %s, needs %s: %w", account, current, amount, domain.ErrInsufficientFunds)
		}
		next = current.Sub(amount)
	}

	now := time.Now()
	balance := &ledger.Balance{Account: account, Amount: next, UpdatedAt: now}
	if err := im.repo.UpsertBalance(c, balance); err != nil {
		c.WithField("err", err).Error("repo.UpsertBalance failed")
		return nil, err
	}

	entry := &ledger.Entry{
		Id:        uuid.NewString(),
		Account:   account,
		Kind:      kind,
		Amount:    amount,
		Memo:      memo,
		CreatedAt: now,
	}
	if err := im.repo.InsertEntry(c, entry); err != nil {
		c.WithField("err", err).Error("repo.InsertEntry failed")
		return nil, err
	}
	return balance, nil
}

func (im *impl) balanceOf(c ctx.Ctx, account domain.Address) (domain.Wei, error) {
	b, err := im.repo.FindBalance(c, account)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewWei(0), nil
	} else if err != nil {
		c.WithField("err", err).Error("repo.FindBalance failed")
		return domain.Wei{}, err
	}
	return b.Amount, nil
}

func (im *impl) BalanceOf(c ctx.Ctx, account domain.Address) (domain.Wei, error) {
	return im.balanceOf(c, account.ToLower())
}

func (im *impl) Entries(c ctx.Ctx, account domain.Address, offset, limit int32) ([]*ledger.Entry, error) {
	return im.repo.FindEntries(c, account.ToLower(), offset, limit)
}
