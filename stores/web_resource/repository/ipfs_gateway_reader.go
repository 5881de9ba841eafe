package repository

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	bCtx "github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
)

type ipfsGatewayReaderRepo struct {
	client     http.Client
	gateway    string
	ctxTimeout time.Duration
}

// NewIpfsGatewayReaderRepo reads cids through a public gateway such as
// https://ipfs.io/ipfs, used when no ipfs node is configured
func NewIpfsGatewayReaderRepo(c http.Client, gateway string, timeout time.Duration) domain.WebResourceReaderRepository {
	return &ipfsGatewayReaderRepo{client: c, gateway: strings.TrimSuffix(gateway, "/"), ctxTimeout: timeout}
}

func (r *ipfsGatewayReaderRepo) Get(c bCtx.Ctx, cid string) ([]byte, error) {
	return fetch(c, r.client, fmt.Sprintf("%s/%s", r.gateway, cid), nil, r.ctxTimeout)
}
