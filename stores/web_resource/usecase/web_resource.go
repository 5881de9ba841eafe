package usecase

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/cache"
	"github.com/x-xyz/musicnft/service/cache/provider"
)

const defaultCacheTtl = 10 * time.Minute

var dedicatedPinataRegex = regexp.MustCompile(`^https://.*.mypinata.cloud/ipfs/`)

type WebResourceUseCaseCfg struct {
	HttpReader    domain.WebResourceReaderRepository
	IpfsReader    domain.WebResourceReaderRepository
	DataUriReader domain.WebResourceReaderRepository
	// Writer receives token metadata, Store fails when nil
	Writer domain.WebResourceWriterRepository
	// Cache keeps fetched bytes, nothing is cached when nil
	Cache    provider.Provider
	CacheTtl time.Duration
}

type webResourceUseCase struct {
	httpReader    domain.WebResourceReaderRepository
	ipfsReader    domain.WebResourceReaderRepository
	dataUriReader domain.WebResourceReaderRepository
	writer        domain.WebResourceWriterRepository
	cache         cache.Service
}

func NewWebResourceUseCase(cfg *WebResourceUseCaseCfg) domain.WebResourceUseCase {
	u := &webResourceUseCase{
		httpReader:    cfg.HttpReader,
		ipfsReader:    cfg.IpfsReader,
		dataUriReader: cfg.DataUriReader,
		writer:        cfg.Writer,
	}
	if cfg.Cache != nil {
		ttl := cfg.CacheTtl
		if ttl == 0 {
			ttl = defaultCacheTtl
		}
		u.cache = cache.New(cache.ServiceConfig{
			Ttl:         ttl,
			Pfx:         "webResource",
			Cache:       cfg.Cache,
			Serialize:   serializeBytes,
			Deserialize: deserializeBytes,
		})
	}
	return u
}

func (u *webResourceUseCase) Get(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	if u.cache == nil || strings.HasPrefix(rawUrl, "data:") {
		return u.get(c, rawUrl)
	}
	var data []byte
	err := u.cache.GetByFunc(c, rawUrl, &data, func() (interface{}, error) {
		d, err := u.get(c, rawUrl)
		return &d, err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (u *webResourceUseCase) GetJson(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	data, err := u.Get(c, rawUrl)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		c.WithFields(log.Fields{
			"url": rawUrl,
		}).Error("invalid json")
		return nil, domain.ErrInvalidJsonFormat
	}

	return data, nil
}

func (u *webResourceUseCase) GetResource(c bCtx.Ctx, rawUrl string) (*domain.WebResource, error) {
	data, err := u.Get(c, rawUrl)
	if err != nil {
		return nil, err
	}
	return &domain.WebResource{
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
	}, nil
}

func (u *webResourceUseCase) get(c bCtx.Ctx, rawUrl string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	pUrl, err := url.Parse(rawUrl)
	if err != nil {
		c.WithFields(log.Fields{
			"url": rawUrl,
			"err": err,
		}).Warn("failed to parse url")
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}

	switch pUrl.Scheme {
	case "http", "https":
		data, err = u.httpReader.Get(c, rawUrl)
	case "ipfs":
		cid := strings.TrimPrefix(rawUrl, "ipfs://")
		cid = strings.TrimPrefix(cid, "ipfs/")
		data, err = u.ipfsReader.Get(c, cid)
	case "data":
		data, err = u.dataUriReader.Get(c, rawUrl)
	default:
		return nil, domain.ErrUnsupportedSchema
	}

	if err == nil {
		return data, nil
	}

	if pUrl.Scheme == "https" {
		if ipfsUrl := getIpfsUrl(rawUrl); len(ipfsUrl) > 0 {
			c.WithFields(log.Fields{
				"url":     rawUrl,
				"ipfsUrl": ipfsUrl,
			}).Info("falling back to ipfs")
			return u.get(c, ipfsUrl)
		}
	}

	c.WithFields(log.Fields{
		"schema": pUrl.Scheme,
		"url":    rawUrl,
		"err":    err,
	}).Error("failed to fetch")
	return nil, err
}

func (u *webResourceUseCase) Store(c bCtx.Ctx, path string, data []byte, contentType string) (string, error) {
	if u.writer == nil {
		return "", xerrors.New("no web resource writer configured")
	}
	uri, err := u.writer.Store(c, path, data, contentType)
	if err != nil {
		c.WithFields(log.Fields{
			"path": path,
			"err":  err,
		}).Error("writer.Store failed")
		return "", err
	}
	return uri, nil
}

// getIpfsUrl rewrites a known public gateway url into its ipfs:// form
func getIpfsUrl(url string) string {
	var (
		pinataPrefix     = "https://gateway.pinata.cloud/ipfs/"
		ipfsIoPrefix     = "https://ipfs.io/ipfs/"
		cloudflarePrefix = "https://cloudflare-ipfs.com/ipfs/"
		dwebPrefix       = "https://dweb.link/ipfs/"
		ipfsPrefix       = "ipfs://"
	)

	for _, p := range []string{pinataPrefix, ipfsIoPrefix, cloudflarePrefix, dwebPrefix} {
		if strings.HasPrefix(url, p) {
			return strings.Replace(url, p, ipfsPrefix, 1)
		}
	}
	if dedicatedPinataRegex.MatchString(url) {
		return dedicatedPinataRegex.ReplaceAllLiteralString(url, ipfsPrefix)
	}
	return ""
}

func serializeBytes(v interface{}) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, xerrors.Errorf("unexpected cache value %T", v)
	}
	return *b, nil
}

func deserializeBytes(data []byte, container interface{}) error {
	b, ok := container.(*[]byte)
	if !ok {
		return xerrors.Errorf("unexpected cache container %T", container)
	}
	*b = append([]byte(nil), data...)
	return nil
}
