package repository

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bCtx "github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
)

func newContentServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ipfs/QmCover", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("cover-bytes"))
	})
	mux.HandleFunc("/metadata.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Night Drive"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func Test_httpReaderRepo_Get(t *testing.T) {
	req := require.New(t)
	s := newContentServer(t)
	ctx := bCtx.Background()

	r := NewHttpReaderRepo(http.Client{}, time.Second, map[string]string{"X-Api-Key": "k"})
	b, err := r.Get(ctx, s.URL+"/metadata.json")
	req.NoError(err)
	req.Equal(`{"name":"Night Drive"}`, string(b))

	_, err = r.Get(ctx, s.URL+"/missing")
	req.True(errors.Is(err, domain.ErrNotFound))

	_, err = r.Get(ctx, s.URL+"/broken")
	req.Error(err)

	noKey := NewHttpReaderRepo(http.Client{}, time.Second, nil)
	_, err = noKey.Get(ctx, s.URL+"/metadata.json")
	req.Error(err)
}

func Test_ipfsGatewayReaderRepo_Get(t *testing.T) {
	req := require.New(t)
	s := newContentServer(t)

	r := NewIpfsGatewayReaderRepo(http.Client{}, s.URL+"/ipfs/", time.Second)
	b, err := r.Get(bCtx.Background(), "QmCover")
	req.NoError(err)
	req.Equal("cover-bytes", string(b))

	_, err = r.Get(bCtx.Background(), "QmMissing")
	req.True(errors.Is(err, domain.ErrNotFound))
}
