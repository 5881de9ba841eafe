package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/musicnft/base/ctx"
)

const (
	// Forever means the key never expires
	Forever time.Duration = 0
)

var (
	// ErrNotFound is returned for a missing key, and by SetNX when the key is already held
	ErrNotFound = redis.ErrNil
	// ErrNoPool is returned when the service was built without a pool
	ErrNoPool = errors.New("redis pool not initialized")
)

// Service is the subset of redis commands the market uses
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX sets key only when absent, ErrNotFound means someone else holds it
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// GetDel returns the value of key and removes it atomically
	GetDel(context ctx.Ctx, key string) ([]byte, error)
	Del(context ctx.Ctx, ks ...string) (int, error)
	// DelIfEqual removes key only while it still holds val
	DelIfEqual(context ctx.Ctx, key string, val []byte) (bool, error)
	Publish(context ctx.Ctx, channel string, msg []byte) (int, error)
	Ping(context ctx.Ctx) error
}
