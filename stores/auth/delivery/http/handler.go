package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/delivery"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/middleware"
)

type authHandler struct {
	auth domain.AuthUsecase
}

func New(e *echo.Echo, auth domain.AuthUsecase) {
	handler := &authHandler{
		auth: auth,
	}
	g := e.Group("/auth")
	g.GET("/nonce/:address", handler.nonce, middleware.IsValidAddress("address"))
	g.POST("/sign", handler.sign)
}

// nonce returns the message the wallet has to personal_sign
func (h *authHandler) nonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	msg, err := h.auth.Nonce(ctx, domain.Address(c.Param("address")))
	if err != nil {
		ctx.WithField("err", err).Error("auth.Nonce failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, msg)
}

func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   domain.Address `json:"address" validate:"required,address"`
		Signature string         `json:"signature" validate:"required"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Warn("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidArgument)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if tkn, err := h.auth.SignIn(ctx, p.Address, p.Signature); err != nil {
		ctx.WithField("err", err).Warn("auth.SignIn failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}
