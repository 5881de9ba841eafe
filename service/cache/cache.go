package cache

import (
	"errors"
	"time"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/service/cache/provider"
)

var (
	ErrNotFound = errors.New("cache not found")
)

// OneTimeGetter loads the value on a miss, it must return a pointer of the
// same type as the container handed to GetByFunc
type OneTimeGetter func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

// Service is a typed read-through cache on top of a byte provider
type Service interface {
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl   time.Duration
	Pfx   string
	Cache provider.Provider
	// json when nil
	Serialize   Serializer
	Deserialize Deserializer
}
