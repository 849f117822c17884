package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type postContractRequest struct {
	Years int `json:"years"`
}

// PostContract signs the caller's pending contract.
func (h *AuctionHandler) PostContract(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	var body postContractRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Engine.PostContract(c.Request().Context(), id, uid, body.Years, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "post contract", err)
	}
	return result(c, res, http.StatusOK, nil)
}

// Buyout releases the caller's pending contract for the buyout fee.
func (h *AuctionHandler) Buyout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	res, err := h.Engine.BuyoutPlayer(c.Request().Context(), id, uid, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "buyout", err)
	}
	return result(c, res, http.StatusOK, nil)
}

// MyContracts lists the caller's contracts still waiting to be posted.
func (h *AuctionHandler) MyContracts(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Engine.PendingContracts(c.Request().Context(), uid)
	if err != nil {
		return failure(c, h.Log, "my contracts", err)
	}
	out := make([]contractView, 0, len(list))
	for _, pc := range list {
		out = append(out, newContractView(pc))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
