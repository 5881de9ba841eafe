package repository

import (
	"bytes"
	"io"
	"net/url"
	"time"

	"cloud.google.com/go/storage"

	bCtx "github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
)

type CloudStorageWriterRepoCfg struct {
	Timeout    time.Duration
	Client     *storage.Client
	BucketName string
	// Url is the public base url of the bucket
	Url          string
	CacheControl string
}

type cloudStorageWriterRepo struct {
	client       *storage.Client
	bucketName   string
	ctxTimeout   time.Duration
	baseUrl      *url.URL
	cacheControl string
}

func NewCloudStorageWriterRepo(cfg *CloudStorageWriterRepoCfg) (domain.WebResourceWriterRepository, error) {
	baseUrl, err := url.Parse(cfg.Url)
	if err != nil {
		return nil, err
	}
	return &cloudStorageWriterRepo{
		client:       cfg.Client,
		bucketName:   cfg.BucketName,
		ctxTimeout:   cfg.Timeout,
		baseUrl:      baseUrl,
		cacheControl: cfg.CacheControl,
	}, nil
}

func (r *cloudStorageWriterRepo) Store(c bCtx.Ctx, path string, body []byte, contentType string) (string, error) {
	contentPath, err := url.Parse(path)
	if err != nil {
		c.WithFields(log.Fields{
			"path": path,
			"err":  err,
		}).Error("failed to parse path")
		return "", err
	}

	ctx, cancel := bCtx.WithTimeout(c, r.ctxTimeout)
	defer cancel()
	w := r.client.Bucket(r.bucketName).Object(path).NewWriter(ctx)
	if len(contentType) > 0 {
		w.ObjectAttrs.ContentType = contentType
	}
	if len(r.cacheControl) > 0 {
		w.ObjectAttrs.CacheControl = r.cacheControl
	}
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		ctx.WithField("err", err).Error("failed to copy")
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		ctx.WithField("err", err).Error("failed to close writer")
		return "", err
	}
	return r.baseUrl.ResolveReference(contentPath).String(), nil
}
