package repository

import (
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	hcdomain "github.com/x-xyz/musicnft/domain/healthcheck"
	"github.com/x-xyz/musicnft/domain/keys"
	"github.com/x-xyz/musicnft/service/redis"
)

type redisRepo struct {
	redis redis.Service
}

func NewRedis(r redis.Service) hcdomain.HealthCheckRepo {
	return &redisRepo{redis: r}
}

func (im *redisRepo) Name() string {
	return "redis"
}

func (im *redisRepo) Ping(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.redis.Set(ctx, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
		context.WithField("err", err).Error("test redis set failed")
		return err
	}
	return nil
}
