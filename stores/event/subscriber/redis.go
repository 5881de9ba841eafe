package subscriber

import (
	"encoding/json"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain/event"
	"github.com/x-xyz/musicnft/service/redis"
)

type redisSubscriber struct {
	redis   redis.Service
	channel string
}

// NewRedisSubscriber publishes events as json on a redis pub/sub channel for
// external indexers
func NewRedisSubscriber(r redis.Service, channel string) event.Subscriber {
	return &redisSubscriber{redis: r, channel: channel}
}

func (s *redisSubscriber) Name() string {
	return "redis"
}

func (s *redisSubscriber) Notify(c ctx.Ctx, e *event.Event) error {
	msg, err := json.Marshal(e)
	if err != nil {
		c.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	receivers, err := s.redis.Publish(c, s.channel, msg)
	if err != nil {
		return err
	}
	c.WithFields(log.Fields{"channel": s.channel, "receivers": receivers}).Debug("event published")
	return nil
}
