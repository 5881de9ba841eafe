package main

import (
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/database/mongoclient"
	"github.com/x-xyz/musicnft/base/log"
	bValidator "github.com/x-xyz/musicnft/base/validator"
	"github.com/x-xyz/musicnft/domain"
	hcdomain "github.com/x-xyz/musicnft/domain/healthcheck"
	"github.com/x-xyz/musicnft/domain/ledger"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/sale"
	"github.com/x-xyz/musicnft/service/lock"
	"github.com/x-xyz/musicnft/service/memstore"
	"github.com/x-xyz/musicnft/service/query"
	"github.com/x-xyz/musicnft/service/redis"
	hc_repository "github.com/x-xyz/musicnft/stores/healthcheck/repository"
	ledger_repository "github.com/x-xyz/musicnft/stores/ledger/repository"
	music_repository "github.com/x-xyz/musicnft/stores/music/repository"
	sale_repository "github.com/x-xyz/musicnft/stores/sale/repository"
)

// backend is the storage every usecase shares. All repos of one backend join
// the same transactions.
type backend struct {
	tx         domain.TxRunner
	musicRepo  music.Repo
	ledgerRepo ledger.Repo
	saleRepo   sale.Repo
	probes     []hcdomain.HealthCheckRepo
}

func newBackend(c ctx.Ctx) *backend {
	switch driver := viper.GetString("storage.driver"); driver {
	case "mongo":
		c.Info("init mongo")
		cfg := &mongoclient.Config{}
		if err := viper.UnmarshalKey("mongo", cfg); err != nil {
			c.WithField("err", err).Panic("invalid mongo config")
		}
		client := mongoclient.MustConnectMongoClient(cfg)
		q := query.New(client, viper.GetBool("mongo.check_index"))
		for name, ensure := range map[string]func(ctx.Ctx, query.Mongo) error{
			"music":  music_repository.EnsureIndexes,
			"ledger": ledger_repository.EnsureIndexes,
			"sale":   sale_repository.EnsureIndexes,
		} {
			if err := ensure(c, q); err != nil {
				c.WithFields(log.Fields{"store": name, "err": err}).Panic("EnsureIndexes failed")
			}
		}
		return &backend{
			tx:         q,
			musicRepo:  music_repository.NewMongo(q),
			ledgerRepo: ledger_repository.NewMongo(q),
			saleRepo:   sale_repository.NewMongo(q),
			probes:     []hcdomain.HealthCheckRepo{hc_repository.NewMongo(client)},
		}
	case "memory", "":
		c.Warn("using in-memory storage, state is lost on restart")
		store := memstore.New()
		return &backend{
			tx:         store,
			musicRepo:  music_repository.NewMemory(store),
			ledgerRepo: ledger_repository.NewMemory(store),
			saleRepo:   sale_repository.NewMemory(store),
		}
	default:
		c.WithField("driver", driver).Panic("unknown storage driver")
		return nil
	}
}

func newLocker(c ctx.Ctx, r redis.Service) domain.Locker {
	timeout := viper.GetDuration("lock.timeout")
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	switch driver := viper.GetString("lock.driver"); driver {
	case "redis":
		return lock.NewRedis(&lock.RedisLockerCfg{
			Redis:   r,
			TTL:     viper.GetDuration("lock.ttl"),
			Timeout: timeout,
		})
	case "local", "":
		return lock.NewLocal(timeout)
	default:
		c.WithField("driver", driver).Panic("unknown lock driver")
		return nil
	}
}

// marketOperator parses the address the engine moves sold tokens as
func marketOperator(raw string) (domain.Address, error) {
	operator := domain.Address(raw).ToLower()
	if !bValidator.IsValidAddress(raw) || operator.IsEmpty() {
		return "", xerrors.Errorf("market.operator %q: %w", raw, domain.ErrInvalidAddress)
	}
	return operator, nil
}
