package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
)

type cacheMiddlewareSuite struct {
	suite.Suite
}

func (s *cacheMiddlewareSuite) SetupSuite() {
	SetupCache(1)
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(url string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", ctx.Background())
	s.Require().NoError(CacheHttp(30 * time.Second)(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	res := "Hello, World"
	rec := s.serve("/tokens/1/metadata?b=2&a=1", func(c echo.Context) error {
		return c.String(http.StatusOK, res)
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(res, rec.Body.String())

	// same query in another order hits the cache
	rec2 := s.serve("/tokens/1/metadata?a=1&b=2", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, again")
	})
	s.Equal(http.StatusOK, rec2.Code)
	s.Equal(res, rec2.Body.String())
	s.Equal(echo.MIMETextPlainCharsetUTF8, rec2.Header().Get(echo.HeaderContentType))
}

func (s *cacheMiddlewareSuite) TestErrorsAreNotCached() {
	rec := s.serve("/tokens/2/metadata", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "not found")
	})
	s.Equal(http.StatusNotFound, rec.Code)

	rec2 := s.serve("/tokens/2/metadata", func(c echo.Context) error {
		return c.String(http.StatusOK, "found")
	})
	s.Equal("found", rec2.Body.String())
}
