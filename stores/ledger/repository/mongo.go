package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/ledger"
	"github.com/x-xyz/musicnft/service/query"
)

type mongoImpl struct {
	q query.Mongo
}

func NewMongo(q query.Mongo) ledger.Repo {
	return &mongoImpl{q}
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	if err := q.CreateIndexes(c, domain.TableLedgerBalances, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return err
	}
	return q.CreateIndexes(c, domain.TableLedgerEntries, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

func (im *mongoImpl) FindBalance(c ctx.Ctx, account domain.Address) (*ledger.Balance, error) {
	res := &ledger.Balance{}
	if err := im.q.FindOne(c, domain.TableLedgerBalances, bson.M{"account": account.ToLower()}, res); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *mongoImpl) UpsertBalance(c ctx.Ctx, balance *ledger.Balance) error {
	if err := im.q.Upsert(c, domain.TableLedgerBalances, bson.M{"account": balance.Account.ToLower()}, balance); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *mongoImpl) InsertEntry(c ctx.Ctx, entry *ledger.Entry) error {
	if err := im.q.Insert(c, domain.TableLedgerEntries, entry); err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *mongoImpl) FindEntries(c ctx.Ctx, account domain.Address, offset, limit int32) ([]*ledger.Entry, error) {
	res := []*ledger.Entry{}
	if err := im.q.Search(c, domain.TableLedgerEntries, int(offset), int(limit), "-createdAt", bson.M{"account": account.ToLower()}, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
