package domain

import (
	"github.com/x-xyz/musicnft/base/ctx"
)

type WebResourceReaderRepository interface {
	Get(ctx.Ctx, string) ([]byte, error)
}

// WebResourceWriterRepository stores data at path and returns the uri it can be read back from
type WebResourceWriterRepository interface {
	Store(c ctx.Ctx, path string, data []byte, contentType string) (string, error)
}

// WebResource is fetched content together with its detected mime type
type WebResource struct {
	Data        []byte
	ContentType string
}

type WebResourceUseCase interface {
	Get(ctx.Ctx, string) ([]byte, error)
	GetJson(ctx.Ctx, string) ([]byte, error)
	// GetResource fetches uri and detects the content type of the payload
	GetResource(ctx.Ctx, string) (*WebResource, error)
	Store(c ctx.Ctx, path string, data []byte, contentType string) (string, error)
}
