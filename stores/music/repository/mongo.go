package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/database/mongoclient"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/service/query"
)

const counterName = "music_token_id"

type counter struct {
	Name string `bson:"_id"`
	Seq  uint64 `bson:"seq"`
}

type mongoImpl struct {
	q query.Mongo
}

func NewMongo(q query.Mongo) music.Repo {
	return &mongoImpl{q}
}

// EnsureIndexes creates the indexes the gallery and collection queries rely on
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.CreateIndexes(c, domain.TableMusicTokens, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isForSale", Value: 1}, {Key: "id", Value: -1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "id", Value: -1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "id", Value: -1}}},
	})
}

func (im *mongoImpl) NextId(c ctx.Ctx) (music.Id, error) {
	res := counter{}
	if err := im.q.Increment(c, domain.TableCounters, bson.M{"_id": counterName}, &res, "seq", 1); err != nil {
		c.WithField("err", err).Error("q.Increment failed")
		return 0, err
	}
	return music.Id(res.Seq), nil
}

func (im *mongoImpl) Create(c ctx.Ctx, token *music.Token) error {
	if err := im.q.Insert(c, domain.TableMusicTokens, token); err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *mongoImpl) FindOne(c ctx.Ctx, id music.Id) (*music.Token, error) {
	res := &music.Token{}
	if err := im.q.FindOne(c, domain.TableMusicTokens, bson.M{"id": id}, res); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *mongoImpl) FindAll(c ctx.Ctx, optFns ...music.FindAllOptionsFunc) ([]*music.Token, error) {
	opts, err := music.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("music.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	res := []*music.Token{}
	if err := im.q.Search(c, domain.TableMusicTokens, offset, limit, "-id", toSelector(opts), &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *mongoImpl) Count(c ctx.Ctx, optFns ...music.FindAllOptionsFunc) (int, error) {
	opts, err := music.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("music.GetFindAllOptions failed")
		return 0, err
	}

	n, err := im.q.Count(c, domain.TableMusicTokens, toSelector(opts))
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return n, nil
}

func (im *mongoImpl) Patch(c ctx.Ctx, id music.Id, patchable music.PatchableToken) error {
	updater, err := mongoclient.MakeBsonM(patchable)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}
	if err := im.q.Patch(c, domain.TableMusicTokens, bson.M{"id": id}, updater); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return domain.ErrNotFound
		}
		c.WithField("err", err).Error("q.Patch failed")
		return err
	}
	return nil
}

func toSelector(opts music.FindAllOptions) bson.M {
	res := bson.M{}
	if opts.IsForSale != nil {
		res["isForSale"] = *opts.IsForSale
	}
	if opts.Owner != nil {
		res["owner"] = *opts.Owner
	}
	if opts.Creator != nil {
		res["creator"] = *opts.Creator
	}
	return res
}
