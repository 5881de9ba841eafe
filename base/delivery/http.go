package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// errStatus is checked in order, the first match wins
var errStatus = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidArgument, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{query.ErrNotFound, http.StatusNotFound},
	{domain.ErrNotForSale, http.StatusConflict},
	{domain.ErrSelfPurchase, http.StatusConflict},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
	{domain.ErrLockTimeout, http.StatusServiceUnavailable},
	{domain.ErrInvariantViolation, http.StatusInternalServerError},
}

// StatusOf returns the http status of a domain error, fallback is returned for
// errors outside the domain set
func StatusOf(err error, fallback int) int {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
