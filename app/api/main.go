package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	ipfsapi "github.com/ipfs/go-ipfs-api"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/database/redisclient"
	"github.com/x-xyz/musicnft/base/env"
	"github.com/x-xyz/musicnft/base/goroutine"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/metrics"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	bValidator "github.com/x-xyz/musicnft/base/validator"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/event"
	mmiddleware "github.com/x-xyz/musicnft/middleware"
	"github.com/x-xyz/musicnft/service/cache/provider/primitive"
	"github.com/x-xyz/musicnft/service/pinata"
	"github.com/x-xyz/musicnft/service/redis"
	auth_delivery "github.com/x-xyz/musicnft/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/musicnft/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/musicnft/stores/auth/usecase"
	event_subscriber "github.com/x-xyz/musicnft/stores/event/subscriber"
	event_usecase "github.com/x-xyz/musicnft/stores/event/usecase"
	hc_delivery "github.com/x-xyz/musicnft/stores/healthcheck/delivery/http"
	hc_repository "github.com/x-xyz/musicnft/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/musicnft/stores/healthcheck/usecase"
	ledger_delivery "github.com/x-xyz/musicnft/stores/ledger/delivery/http"
	ledger_usecase "github.com/x-xyz/musicnft/stores/ledger/usecase"
	music_delivery "github.com/x-xyz/musicnft/stores/music/delivery/http"
	music_usecase "github.com/x-xyz/musicnft/stores/music/usecase"
	royalty_usecase "github.com/x-xyz/musicnft/stores/royalty/usecase"
	sale_delivery "github.com/x-xyz/musicnft/stores/sale/delivery/http"
	sale_usecase "github.com/x-xyz/musicnft/stores/sale/usecase"
	web_resource_repository "github.com/x-xyz/musicnft/stores/web_resource/repository"
	web_resource_usecase "github.com/x-xyz/musicnft/stores/web_resource/usecase"
)

func loadConfig() {
	pflag.String("config", env.ConfigFile(), "path of the yaml config")
	pflag.String("address", "", "listen address, overrides server.address")
	pflag.String("storage", "", "storage driver, mongo or memory")
	pflag.Parse()

	_ = viper.BindPFlag("server.address", pflag.Lookup("address"))
	_ = viper.BindPFlag("storage.driver", pflag.Lookup("storage"))

	configFile, _ := pflag.CommandLine.GetString("config")
	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.SetDebug(true)
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	loadConfig()
	defer log.Sync()

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	b := newBackend(context)

	// init Redis service
	context.Info("init redis")
	redisCfg := &redisclient.Config{}
	if err := viper.UnmarshalKey("redis", redisCfg); err != nil {
		context.WithField("err", err).Panic("invalid redis config")
	}
	redisPool := redisclient.MustConnectRedis(redisCfg)
	redisService := redis.New("redis", metrics.New("redis"), redisPool)
	mmiddleware.SetupCache(viper.GetInt("http_cache_mb"))

	locker := newLocker(context, redisService)
	priceFormatter := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{})

	// events
	subscribers := []event.Subscriber{event_subscriber.NewLogSubscriber()}
	if channel := viper.GetString("events.redis_channel"); channel != "" {
		subscribers = append(subscribers, event_subscriber.NewRedisSubscriber(redisService, channel))
	}
	if botKey := viper.GetString("events.discord.bot_key"); botKey != "" {
		session, err := event_subscriber.NewDiscordSession(botKey)
		if err != nil {
			context.WithField("err", err).Panic("NewDiscordSession failed")
		}
		subscribers = append(subscribers, event_subscriber.NewDiscordSubscriber(event_subscriber.DiscordCfg{
			Sender:         session,
			ChannelId:      viper.GetString("events.discord.channel_id"),
			AssetUrl:       viper.GetString("events.discord.asset_url"),
			PriceFormatter: priceFormatter,
			CurrencySymbol: "ETH",
		}))
	}
	dispatcher := event_usecase.NewDispatcher(&event_usecase.DispatcherCfg{
		Subscribers: subscribers,
		Workers:     viper.GetInt("events.workers"),
		QueueLength: viper.GetInt("events.queue_length"),
		Timeout:     viper.GetDuration("events.timeout"),
	})
	defer dispatcher.Close()

	// web resources
	webResource := newWebResource(context)
	var metadataWriter domain.WebResourceWriterRepository
	if w := viper.GetString("web_resource.metadata_writer"); w != "" && w != "none" {
		metadataWriter = webResource
	}

	royaltyCfg := &royalty_usecase.PolicyConfig{}
	if err := viper.UnmarshalKey("royalty", royaltyCfg); err != nil {
		context.WithField("err", err).Panic("invalid royalty config")
	}
	policy, err := royalty_usecase.NewPolicy(royaltyCfg, priceFormatter)
	if err != nil {
		context.WithField("err", err).Panic("NewPolicy failed")
	}
	context.WithField("policy", policy.Name()).Info("royalty policy")

	operator, err := marketOperator(viper.GetString("market.operator"))
	if err != nil {
		context.WithField("err", err).Panic("invalid market operator")
	}

	// construct usecase and delivery
	registry := music_usecase.New(&music_usecase.RegistryCfg{
		Repo:           b.musicRepo,
		Tx:             b.tx,
		Locker:         locker,
		Publisher:      dispatcher,
		MetadataWriter: metadataWriter,
		MetadataPrefix: viper.GetString("web_resource.metadata_prefix"),
	})
	ledger := ledger_usecase.New(&ledger_usecase.LedgerUseCaseCfg{
		Repo: b.ledgerRepo,
		Tx:   b.tx,
	})
	engine := sale_usecase.New(&sale_usecase.EngineCfg{
		Registry:  registry,
		Settler:   registry,
		Policy:    policy,
		Ledger:    ledger,
		Repo:      b.saleRepo,
		Tx:        b.tx,
		Locker:    locker,
		Publisher: dispatcher,
		Operator:  operator,
	})
	auth := auth_usecase.New(&auth_usecase.AuthUseCaseCfg{
		JwtSecret:       viper.GetString("auth.jwt_secret"),
		Redis:           redisService,
		MessageTemplate: viper.GetString("auth.message"),
		NonceTtl:        viper.GetDuration("auth.nonce_ttl"),
		TokenTtl:        viper.GetDuration("auth.token_ttl"),
	})
	hc := hc_usecase.New(append(b.probes, hc_repository.NewRedis(redisService))...)

	authMiddleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	music_delivery.New(e, registry, webResource, priceFormatter, authMiddleware)
	ledger_delivery.New(e, ledger, priceFormatter, authMiddleware)
	sale_delivery.New(e, engine, priceFormatter, authMiddleware)

	goroutine.RecoverableGo(func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

func newWebResource(c ctx.Ctx) domain.WebResourceUseCase {
	timeout := viper.GetDuration("web_resource.timeout")
	cfg := &web_resource_usecase.WebResourceUseCaseCfg{
		HttpReader:    web_resource_repository.NewHttpReaderRepo(http.Client{}, timeout, nil),
		DataUriReader: web_resource_repository.NewDataUriReaderRepo(),
		Cache:         primitive.NewPrimitive("webResource", viper.GetInt("web_resource.cache_mb")),
		CacheTtl:      viper.GetDuration("web_resource.cache_ttl"),
	}

	ipfsApi := viper.GetString("web_resource.ipfs_api")
	if ipfsApi != "" {
		cfg.IpfsReader = web_resource_repository.NewIpfsNodeApiReaderRepo(ipfsapi.NewShell(ipfsApi), timeout)
	} else {
		cfg.IpfsReader = web_resource_repository.NewIpfsGatewayReaderRepo(http.Client{}, viper.GetString("web_resource.ipfs_gateway"), timeout)
	}

	switch writer := viper.GetString("web_resource.metadata_writer"); writer {
	case "gcs":
		opts := []option.ClientOption{}
		if f := viper.GetString("web_resource.gcs.credentials_file"); f != "" {
			opts = append(opts, option.WithCredentialsFile(f))
		}
		client, err := storage.NewClient(c, opts...)
		if err != nil {
			c.WithField("err", err).Panic("storage.NewClient failed")
		}
		w, err := web_resource_repository.NewCloudStorageWriterRepo(&web_resource_repository.CloudStorageWriterRepoCfg{
			Timeout:      timeout,
			Client:       client,
			BucketName:   viper.GetString("web_resource.gcs.bucket"),
			Url:          viper.GetString("web_resource.gcs.url"),
			CacheControl: "public, max-age=31536000",
		})
		if err != nil {
			c.WithField("err", err).Panic("NewCloudStorageWriterRepo failed")
		}
		cfg.Writer = w
	case "ipfs":
		if ipfsApi == "" {
			c.Panic("web_resource.ipfs_api is required by the ipfs metadata writer")
		}
		cfg.Writer = web_resource_repository.NewIpfsNodeApiWriterRepo(ipfsapi.NewShell(ipfsApi), timeout)
	case "pinata":
		pinataCfg := pinata.Config{}
		if err := viper.UnmarshalKey("web_resource.pinata", &pinataCfg); err != nil {
			c.WithField("err", err).Panic("invalid pinata config")
		}
		if pinataCfg.Timeout == 0 {
			pinataCfg.Timeout = timeout
		}
		cfg.Writer = web_resource_repository.NewPinataWriterRepo(pinata.New(pinataCfg))
	case "none", "":
	default:
		c.WithField("writer", writer).Panic("unknown metadata writer")
	}

	return web_resource_usecase.NewWebResourceUseCase(cfg)
}
