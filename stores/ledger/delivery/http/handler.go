package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/delivery"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/ledger"
	"github.com/x-xyz/musicnft/middleware"
	authMiddleware "github.com/x-xyz/musicnft/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledger         ledger.UseCase
	priceFormatter pricefomatter.PriceFormatter
}

type balanceResponse struct {
	Account       domain.Address `json:"account"`
	Amount        domain.Wei     `json:"amount"`
	AmountDisplay string         `json:"amountDisplay"`
}

func New(
	e *echo.Echo,
	ledger ledger.UseCase,
	priceFormatter pricefomatter.PriceFormatter,
	authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{ledger, priceFormatter}

	g := e.Group("/accounts")

	g.POST("/deposit", h.deposit, authMiddleware.Auth())

	g.GET("/:address/balance", h.balance, middleware.IsValidAddress("address"))

	g.GET("/:address/entries", h.entries, middleware.IsValidAddress("address"))
}

func (h *handler) deposit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Amount string `json:"amount" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := h.priceFormatter.ParseDisplay(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	account, _ := authMiddleware.CurrentAccount(c)
	b, err := h.ledger.Deposit(ctx, account, amount)
	if err != nil {
		ctx.WithField("err", err).Error("ledger.Deposit failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, &balanceResponse{
		Account:       b.Account,
		Amount:        b.Amount,
		AmountDisplay: h.priceFormatter.FormatDisplay(b.Amount),
	})
}

func (h *handler) balance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	account := domain.Address(c.Param("address")).ToLower()
	amount, err := h.ledger.BalanceOf(ctx, account)
	if err != nil {
		ctx.WithField("err", err).Error("ledger.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, &balanceResponse{
		Account:       account,
		Amount:        amount,
		AmountDisplay: h.priceFormatter.FormatDisplay(amount),
	})
}

func (h *handler) entries(c echo.Context) error {
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

	res, err := h.ledger.Entries(ctx, domain.Address(c.Param("address")), p.Offset, p.Limit)
	if err != nil {
		ctx.WithField("err", err).Error("ledger.Entries failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
