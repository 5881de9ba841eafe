package repository

import (
	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/ledger"
	"github.com/x-xyz/musicnft/service/memstore"
)

type memoryImpl struct {
	store    *memstore.Store
	balances map[domain.Address]ledger.Balance
	// append order, oldest first
	entries []*ledger.Entry
}

func NewMemory(store *memstore.Store) ledger.Repo {
	return &memoryImpl{
		store:    store,
		balances: map[domain.Address]ledger.Balance{},
	}
}

func (im *memoryImpl) FindBalance(c ctx.Ctx, account domain.Address) (*ledger.Balance, error) {
	var (
		res ledger.Balance
		ok  bool
	)
	im.store.Read(c, func() {
		res, ok = im.balances[account.ToLower()]
	})
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (im *memoryImpl) UpsertBalance(c ctx.Ctx, balance *ledger.Balance) error {
	account := balance.Account.ToLower()
	return im.store.Write(c, func() (func(), error) {
		prev, existed := im.balances[account]
		next := *balance
		next.Account = account
		im.balances[account] = next
		return func() {
			if existed {
				im.balances[account] = prev
			} else {
				delete(im.balances, account)
			}
		}, nil
	})
}

func (im *memoryImpl) InsertEntry(c ctx.Ctx, entry *ledger.Entry) error {
	return im.store.Write(c, func() (func(), error) {
		e := *entry
		e.Account = e.Account.ToLower()
		n := len(im.entries)
		im.entries = append(im.entries, &e)
		return func() { im.entries = im.entries[:n] }, nil
	})
}

func (im *memoryImpl) FindEntries(c ctx.Ctx, account domain.Address, offset, limit int32) ([]*ledger.Entry, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.ErrInvalidArgument
	}
	account = account.ToLower()

	res := []*ledger.Entry{}
	im.store.Read(c, func() {
		skipped := int32(0)
		for i := len(im.entries) - 1; i >= 0; i-- {
			e := im.entries[i]
			if e.Account != account {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && int32(len(res)) >= limit {
				break
			}
			cp := *e
			res = append(res, &cp)
		}
	})
	return res, nil
}
