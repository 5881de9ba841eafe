package repository

import (
	"bytes"
	"encoding/json"
	"path"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/pinata"
)

type pinataWriterRepo struct {
	pinata pinata.Service
}

// NewPinataWriterRepo pins content through the pinata api, path becomes the
// pin name
func NewPinataWriterRepo(p pinata.Service) domain.WebResourceWriterRepository {
	return &pinataWriterRepo{pinata: p}
}

func (r *pinataWriterRepo) Store(c ctx.Ctx, p string, data []byte, contentType string) (string, error) {
	meta := pinata.WithMetadata(pinata.PinataMetadata{Name: p})

	var (
		hash string
		err  error
	)
	if contentType == "application/json" && json.Valid(data) {
		hash, err = r.pinata.PinJson(c, json.RawMessage(data), meta)
	} else {
		hash, err = r.pinata.Pin(c, bytes.NewReader(data), path.Base(p), meta)
	}
	if err != nil {
		c.WithFields(log.Fields{"path": p, "err": err}).Error("pinata failed")
		return "", err
	}
	return "ipfs://" + hash, nil
}
