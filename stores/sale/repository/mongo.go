package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/sale"
	"github.com/x-xyz/musicnft/service/query"
)

type mongoImpl struct {
	q query.Mongo
}

func NewMongo(q query.Mongo) sale.Repo {
	return &mongoImpl{q}
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.CreateIndexes(c, domain.TableSaleReceipts, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tokenId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "buyer", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
}

func (im *mongoImpl) Insert(c ctx.Ctx, receipt *sale.Receipt) error {
	if err := im.q.Insert(c, domain.TableSaleReceipts, receipt); err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *mongoImpl) FindAll(c ctx.Ctx, optFns ...sale.FindAllOptionsFunc) ([]*sale.Receipt, error) {
	opts, err := sale.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("sale.GetFindAllOptions failed")
		return nil, err
	}

	qry := bson.M{}
	if opts.TokenId != nil {
		qry["tokenId"] = *opts.TokenId
	}
	if opts.Account != nil {
		qry["$or"] = bson.A{
			bson.M{"seller": *opts.Account},
			bson.M{"buyer": *opts.Account},
		}
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	res := []*sale.Receipt{}
	if err := im.q.Search(c, domain.TableSaleReceipts, offset, limit, "-timestamp", qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
