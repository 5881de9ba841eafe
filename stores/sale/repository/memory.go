package repository

import (
	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain/sale"
	"github.com/x-xyz/musicnft/service/memstore"
)

type memoryImpl struct {
	store *memstore.Store
	// insertion order, oldest first
	receipts []*sale.Receipt
}

func NewMemory(store *memstore.Store) sale.Repo {
	return &memoryImpl{store: store}
}

func (im *memoryImpl) Insert(c ctx.Ctx, receipt *sale.Receipt) error {
	return im.store.Write(c, func() (func(), error) {
		r := *receipt
		n := len(im.receipts)
		im.receipts = append(im.receipts, &r)
		return func() { im.receipts = im.receipts[:n] }, nil
	})
}

func (im *memoryImpl) FindAll(c ctx.Ctx, optFns ...sale.FindAllOptionsFunc) ([]*sale.Receipt, error) {
	opts, err := sale.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("sale.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := int32(0), int32(0)
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []*sale.Receipt{}
	im.store.Read(c, func() {
		skipped := int32(0)
		for i := len(im.receipts) - 1; i >= 0; i-- {
			r := im.receipts[i]
			if !opts.Match(r) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && int32(len(res)) >= limit {
				break
			}
			cp := *r
			res = append(res, &cp)
		}
	})
	return res, nil
}
