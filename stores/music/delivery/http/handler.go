package http

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/delivery"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/middleware"
	authMiddleware "github.com/x-xyz/musicnft/stores/auth/delivery/http/middleware"
)

const defaultLimit = 50

type handler struct {
	music          music.UseCase
	webResource    domain.WebResourceUseCase
	priceFormatter pricefomatter.PriceFormatter
}

// TokenResponse adds the display price next to the wei amount
type TokenResponse struct {
	*music.Token
	PriceDisplay string `json:"priceDisplay"`
}

func New(
	e *echo.Echo,
	music music.UseCase,
	webResource domain.WebResourceUseCase,
	priceFormatter pricefomatter.PriceFormatter,
	authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{music, webResource, priceFormatter}

	gs := e.Group("/tokens")

	gs.GET("", h.list)

	gs.POST("", h.mint, authMiddleware.Auth())

	gs.GET("/count", h.count)

	g := gs.Group("/:id", ParseId())

	g.GET("", h.get)

	g.GET("/metadata", h.metadata, middleware.CacheHttp(time.Minute))

	g.GET("/cover", h.cover)

	g.PUT("/sale", h.setForSale, authMiddleware.Auth())

	g.POST("/toggle", h.toggleForSale, authMiddleware.Auth())

	g.PUT("/price", h.setPrice, authMiddleware.Auth())

	g.POST("/approve", h.approve, authMiddleware.Auth())
}

// ParseId validates the :id param and stores it as "tokenId"
func ParseId() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
			}
			c.Set("tokenId", music.Id(id))
			return next(c)
		}
	}
}

func (h *handler) toResponse(t *music.Token) *TokenResponse {
	return &TokenResponse{Token: t, PriceDisplay: h.priceFormatter.FormatDisplay(t.Price)}
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ForSale string         `query:"forSale" validate:"omitempty,oneof=true false"`
		Owner   domain.Address `query:"owner" validate:"omitempty,address"`
		Offset  int32          `query:"offset" validate:"gte=0"`
		Limit   int32          `query:"limit" validate:"gte=0,lte=200"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	opts := []music.FindAllOptionsFunc{music.WithPagination(p.Offset, p.Limit)}
	if p.ForSale != "" {
		opts = append(opts, music.WithIsForSale(p.ForSale == "true"))
	}
	if p.Owner != "" {
		opts = append(opts, music.WithOwner(p.Owner))
	}

	tokens, err := h.music.List(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("music.List failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := make([]*TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		res = append(res, h.toResponse(t))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) count(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	n, err := h.music.TotalCount(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("music.TotalCount failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, n)
}

func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Title    string `json:"title" validate:"required"`
		Artist   string `json:"artist" validate:"required"`
		Genre    string `json:"genre"`
		Price    string `json:"price" validate:"required,amount"`
		CoverURI string `json:"coverUri"`
		AudioURI string `json:"audioUri" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	price, err := h.priceFormatter.ParseDisplay(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	creator, _ := authMiddleware.CurrentAccount(c)
	token, err := h.music.Mint(ctx, &music.MintParams{
		Title:    p.Title,
		Artist:   p.Artist,
		Genre:    p.Genre,
		Price:    price,
		CoverURI: p.CoverURI,
		AudioURI: p.AudioURI,
		Creator:  creator,
	})
	if err != nil {
		ctx.WithField("err", err).Error("music.Mint failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, h.toResponse(token))
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	token, err := h.music.Get(ctx, c.Get("tokenId").(music.Id))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(token))
}

// metadata serves the tokenURI document, so it is returned unwrapped
func (h *handler) metadata(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	m, err := h.music.TokenMetadata(ctx, c.Get("tokenId").(music.Id))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *handler) cover(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	token, err := h.music.Get(ctx, c.Get("tokenId").(music.Id))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	// site relative covers such as the default one are served by the frontend
	if u, err := url.Parse(token.CoverURI); err != nil || u.Scheme == "" {
		return c.Redirect(http.StatusFound, token.CoverURI)
	}

	res, err := h.webResource.GetResource(ctx, token.CoverURI)
	if err != nil {
		ctx.WithField("err", err).Warn("webResource.GetResource failed")
		return delivery.MakeJsonResp(c, http.StatusBadGateway, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return c.Blob(http.StatusOK, res.ContentType, res.Data)
}

func (h *handler) setForSale(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		IsForSale *bool `json:"isForSale" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	caller, _ := authMiddleware.CurrentAccount(c)
	token, err := h.music.SetForSale(ctx, c.Get("tokenId").(music.Id), caller, *p.IsForSale)
	if err != nil {
		ctx.WithField("err", err).Warn("music.SetForSale failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(token))
}

func (h *handler) toggleForSale(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	caller, _ := authMiddleware.CurrentAccount(c)
	token, err := h.music.ToggleForSale(ctx, c.Get("tokenId").(music.Id), caller)
	if err != nil {
		ctx.WithField("err", err).Warn("music.ToggleForSale failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(token))
}

func (h *handler) setPrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Price string `json:"price" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	price, err := h.priceFormatter.ParseDisplay(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	caller, _ := authMiddleware.CurrentAccount(c)
	token, err := h.music.SetPrice(ctx, c.Get("tokenId").(music.Id), caller, price)
	if err != nil {
		ctx.WithField("err", err).Warn("music.SetPrice failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(token))
}

func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Operator domain.Address `json:"operator" validate:"required,address"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	caller, _ := authMiddleware.CurrentAccount(c)
	token, err := h.music.Approve(ctx, c.Get("tokenId").(music.Id), caller, p.Operator)
	if err != nil {
		ctx.WithField("err", err).Warn("music.Approve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(token))
}
