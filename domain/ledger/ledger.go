package ledger

import (
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
)

type EntryKind string

const (
	EntryKindDeposit EntryKind = "deposit"
	EntryKindDebit   EntryKind = "debit"
	EntryKindCredit  EntryKind = "credit"
)

type Balance struct {
	Account   domain.Address `json:"account" bson:"account"`
	Amount    domain.Wei     `json:"amount" bson:"amount"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Entry is one append-only movement on an account
type Entry struct {
	Id        string         `json:"id" bson:"id"`
	Account   domain.Address `json:"account" bson:"account"`
	Kind      EntryKind      `json:"kind" bson:"kind"`
	Amount    domain.Wei     `json:"amount" bson:"amount"`
	Memo      string         `json:"memo" bson:"memo"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

type Repo interface {
	// FindBalance returns domain.ErrNotFound for an account never funded
	FindBalance(ctx ctx.Ctx, account domain.Address) (*Balance, error)
	UpsertBalance(ctx ctx.Ctx, balance *Balance) error
	InsertEntry(ctx ctx.Ctx, entry *Entry) error
	// FindEntries returns entries of account, newest first
	FindEntries(ctx ctx.Ctx, account domain.Address, offset, limit int32) ([]*Entry, error)
}

// UseCase is the fund side of the account provider. Debit and Credit join
// the caller's transaction.
type UseCase interface {
	Deposit(ctx ctx.Ctx, account domain.Address, amount domain.Wei) (*Balance, error)
	// Debit fails with domain.ErrInsufficientFunds when the balance is short
	Debit(ctx ctx.Ctx, account domain.Address, amount domain.Wei, memo string) error
	Credit(ctx ctx.Ctx, account domain.Address, amount domain.Wei, memo string) error
	BalanceOf(ctx ctx.Ctx, account domain.Address) (domain.Wei, error)
	Entries(ctx ctx.Ctx, account domain.Address, offset, limit int32) ([]*Entry, error)
}
