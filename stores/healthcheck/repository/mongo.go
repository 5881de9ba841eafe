package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/database/mongoclient"
	hcdomain "github.com/x-xyz/musicnft/domain/healthcheck"
)

const pingTimeout = 2 * time.Second

type mongoRepo struct {
	client *mongoclient.Client
}

func NewMongo(client *mongoclient.Client) hcdomain.HealthCheckRepo {
	return &mongoRepo{client: client}
}

func (im *mongoRepo) Name() string {
	return "mongo"
}

func (im *mongoRepo) Ping(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.client.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}
