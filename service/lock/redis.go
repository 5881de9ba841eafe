package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/x-xyz/musicnft/base/backoff"
	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/redis"
)

const (
	retryStart = 10 * time.Millisecond
	retryLimit = 200 * time.Millisecond
)

type RedisLockerCfg struct {
	Redis redis.Service
	// TTL bounds how long a crashed holder keeps the key
	TTL     time.Duration
	Timeout time.Duration
}

type redisLocker struct {
	redis   redis.Service
	ttl     time.Duration
	timeout time.Duration
}

// NewRedis returns a lock shared by every replica talking to the same redis.
// Contended keys are retried with exponential backoff until the timeout.
func NewRedis(cfg *RedisLockerCfg) domain.Locker {
	return &redisLocker{
		redis:   cfg.Redis,
		ttl:     cfg.TTL,
		timeout: cfg.Timeout,
	}
}

func (l *redisLocker) Lock(c ctx.Ctx, key string) (func(), error) {
	token := []byte(uuid.NewString())
	waitCtx, cancel := context.WithTimeout(c, l.timeout)
	defer cancel()

	b := backoff.NewExponential(retryStart, retryLimit)
	for {
		err := l.redis.SetNX(c, key, token, l.ttl)
		if err == nil {
			return func() {
				if _, err := l.redis.DelIfEqual(c, key, token); err != nil {
					c.WithFields(log.Fields{"key": key, "err": err}).Error("redis.DelIfEqual failed")
				}
			}, nil
		}
		if err != redis.ErrNotFound {
			c.WithFields(log.Fields{"key": key, "err": err}).Error("redis.SetNX failed")
			return nil, err
		}

		if err := b.Backoff(waitCtx); err != nil {
			if c.Err() != nil {
				return nil, c.Err()
			}
			c.WithFields(log.Fields{"key": key, "timeout": l.timeout}).Warn("lock timeout")
			return nil, domain.ErrLockTimeout
		}
	}
}
