package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/cache/provider/primitive"
	"github.com/x-xyz/musicnft/stores/web_resource/repository"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeReader struct {
	content map[string][]byte
	calls   map[string]int
}

func newFakeReader(content map[string][]byte) *fakeReader {
	return &fakeReader{content: content, calls: map[string]int{}}
}

func (r *fakeReader) Get(_ bCtx.Ctx, key string) ([]byte, error) {
	r.calls[key]++
	data, ok := r.content[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

type fakeWriter struct {
	stored map[string][]byte
}

func (w *fakeWriter) Store(_ bCtx.Ctx, path string, data []byte, contentType string) (string, error) {
	w.stored[path] = data
	return "https://storage.test/" + path, nil
}

type webResourceSuite struct {
	suite.Suite

	ctx    bCtx.Ctx
	http   *fakeReader
	ipfs   *fakeReader
	writer *fakeWriter
	im     domain.WebResourceUseCase
}

func TestWebResourceSuite(t *testing.T) {
	suite.Run(t, new(webResourceSuite))
}

func (s *webResourceSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.http = newFakeReader(map[string][]byte{
		"https://cdn.test/cover.png":    pngHeader,
		"https://cdn.test/meta.json":    []byte(`{"name":"Night Drive"}`),
		"https://cdn.test/not-json.txt": []byte("plain"),
	})
	s.ipfs = newFakeReader(map[string][]byte{
		"QmAudio":      []byte("ID3\x03\x00\x00\x00\x00\x00\x00"),
		"QmDir/0.json": []byte(`{"name":"0"}`),
		"QmFallback/1": []byte("from ipfs"),
	})
	s.writer = &fakeWriter{stored: map[string][]byte{}}
	s.im = NewWebResourceUseCase(&WebResourceUseCaseCfg{
		HttpReader:    s.http,
		IpfsReader:    s.ipfs,
		DataUriReader: repository.NewDataUriReaderRepo(),
		Writer:        s.writer,
		Cache:         primitive.NewPrimitive("webResourceTest", 1),
	})
}

func (s *webResourceSuite) TestSchemes() {
	b, err := s.im.Get(s.ctx, "ipfs://QmDir/0.json")
	s.Require().NoError(err)
	s.Equal(`{"name":"0"}`, string(b))

	b, err = s.im.Get(s.ctx, "ipfs://ipfs/QmDir/0.json")
	s.Require().NoError(err)
	s.Equal(`{"name":"0"}`, string(b))

	b, err = s.im.Get(s.ctx, "data:text/plain,hello")
	s.Require().NoError(err)
	s.Equal("hello", string(b))

	_, err = s.im.Get(s.ctx, "ftp://cdn.test/x")
	s.True(errors.Is(err, domain.ErrUnsupportedSchema))

	_, err = s.im.Get(s.ctx, "/music.png")
	s.True(errors.Is(err, domain.ErrUnsupportedSchema))
}

func (s *webResourceSuite) TestGatewayFallsBackToIpfs() {
	b, err := s.im.Get(s.ctx, "https://ipfs.io/ipfs/QmFallback/1")
	s.Require().NoError(err)
	s.Equal("from ipfs", string(b))
	s.Equal(1, s.http.calls["https://ipfs.io/ipfs/QmFallback/1"])
}

func (s *webResourceSuite) TestGetIsCached() {
	for i := 0; i < 3; i++ {
		b, err := s.im.Get(s.ctx, "https://cdn.test/meta.json")
		s.Require().NoError(err)
		s.Equal(`{"name":"Night Drive"}`, string(b))
	}
	s.Equal(1, s.http.calls["https://cdn.test/meta.json"])

	_, err := s.im.Get(s.ctx, "https://cdn.test/missing")
	s.True(errors.Is(err, domain.ErrNotFound))
	_, _ = s.im.Get(s.ctx, "https://cdn.test/missing")
	s.Equal(2, s.http.calls["https://cdn.test/missing"], "failures are not cached")
}

func (s *webResourceSuite) TestGetJson() {
	_, err := s.im.GetJson(s.ctx, "https://cdn.test/meta.json")
	s.NoError(err)

	_, err = s.im.GetJson(s.ctx, "https://cdn.test/not-json.txt")
	s.True(errors.Is(err, domain.ErrInvalidJsonFormat))
}

func (s *webResourceSuite) TestGetResourceDetectsContentType() {
	r, err := s.im.GetResource(s.ctx, "https://cdn.test/cover.png")
	s.Require().NoError(err)
	s.Equal("image/png", r.ContentType)

	r, err = s.im.GetResource(s.ctx, "ipfs://QmAudio")
	s.Require().NoError(err)
	s.Equal("audio/mpeg", r.ContentType)

	r, err = s.im.GetResource(s.ctx, "https://cdn.test/meta.json")
	s.Require().NoError(err)
	s.Equal("application/json", r.ContentType)
}

func (s *webResourceSuite) TestStore() {
	uri, err := s.im.Store(s.ctx, "metadata/a.json", []byte("{}"), "application/json")
	s.Require().NoError(err)
	s.Equal("https://storage.test/metadata/a.json", uri)
	s.Equal([]byte("{}"), s.writer.stored["metadata/a.json"])

	readOnly := NewWebResourceUseCase(&WebResourceUseCaseCfg{HttpReader: s.http})
	_, err = readOnly.Store(s.ctx, "metadata/b.json", []byte("{}"), "application/json")
	s.Error(err)
}

func Test_getIpfsUrl(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"pinata", "https://gateway.pinata.cloud/ipfs/QmCover", "ipfs://QmCover"},
		{"pinata dedicated", "https://label.mypinata.cloud/ipfs/QmCover", "ipfs://QmCover"},
		{"ipfs.io", "https://ipfs.io/ipfs/QmAlbum/1.mp3", "ipfs://QmAlbum/1.mp3"},
		{"cloudflare", "https://cloudflare-ipfs.com/ipfs/QmCover", "ipfs://QmCover"},
		{"dweb", "https://dweb.link/ipfs/QmCover", "ipfs://QmCover"},
		{"noop", "https://some.url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, getIpfsUrl(tt.url))
		})
	}
}
