package repository

import (
	"bytes"
	"time"

	ipfsapi "github.com/ipfs/go-ipfs-api"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/domain"
)

type ipfsNodeApiWriterRepo struct {
	shell *ipfsapi.Shell
}

// NewIpfsNodeApiWriterRepo pins content on an ipfs node. Content is addressed
// by its cid so the path is only logged.
func NewIpfsNodeApiWriterRepo(s *ipfsapi.Shell, timeout time.Duration) domain.WebResourceWriterRepository {
	s.SetTimeout(timeout)
	return &ipfsNodeApiWriterRepo{shell: s}
}

func (r *ipfsNodeApiWriterRepo) Store(c ctx.Ctx, path string, data []byte, contentType string) (string, error) {
	cid, err := r.shell.Add(bytes.NewReader(data), ipfsapi.Pin(true))
	if err != nil {
		c.WithFields(log.Fields{"path": path, "err": err}).Error("shell.Add failed")
		return "", err
	}
	c.WithFields(log.Fields{"path": path, "cid": cid}).Info("pinned")
	return "ipfs://" + cid, nil
}
