package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/delivery"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/sale"
	"github.com/x-xyz/musicnft/middleware"
	authMiddleware "github.com/x-xyz/musicnft/stores/auth/delivery/http/middleware"
	musicHttp "github.com/x-xyz/musicnft/stores/music/delivery/http"
)

type handler struct {
	sale           sale.UseCase
	priceFormatter pricefomatter.PriceFormatter
}

type ReceiptResponse struct {
	*sale.Receipt
	PriceDisplay string `json:"priceDisplay"`
}

func New(
	e *echo.Echo,
	sale sale.UseCase,
	priceFormatter pricefomatter.PriceFormatter,
	authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{sale, priceFormatter}

	g := e.Group("/tokens/:id", musicHttp.ParseId())

	g.POST("/buy", h.buy, authMiddleware.Auth())

	g.GET("/sales", h.tokenSales)

	e.GET("/accounts/:address/sales", h.accountSales, middleware.IsValidAddress("address"))
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Tendered string `json:"tendered" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	tendered, err := h.priceFormatter.ParseDisplay(p.Tendered)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	id := c.Get("tokenId").(music.Id)
	buyer, _ := authMiddleware.CurrentAccount(c)
	receipt, err := h.sale.ExecuteSale(ctx, id, buyer, tendered)
	if err != nil {
		ctx.WithField("err", err).Warn("sale.ExecuteSale failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.toResponse(receipt))
}

func (h *handler) tokenSales(c echo.Context) error {
	id := c.Get("tokenId").(music.Id)
	return h.find(c, sale.WithTokenId(id))
}

func (h *handler) accountSales(c echo.Context) error {
	return h.find(c, sale.WithAccount(domain.Address(c.Param("address"))))
}

func (h *handler) find(c echo.Context, filter sale.FindAllOptionsFunc) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Offset int32 `query:"offset" validate:"gte=0"`
		Limit  int32 `query:"limit" validate:"gte=0,lte=200"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.Limit == 0 {
		p.Limit = 50
	}

	receipts, err := h.sale.FindReceipts(ctx, filter, sale.WithPagination(p.Offset, p.Limit))
	if err != nil {
		ctx.WithField("err", err).Error("sale.FindReceipts failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := make([]*ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		res = append(res, h.toResponse(r))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) toResponse(r *sale.Receipt) *ReceiptResponse {
	return &ReceiptResponse{Receipt: r, PriceDisplay: h.priceFormatter.FormatDisplay(r.Price)}
}
