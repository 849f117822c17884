package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/middleware"
)

type releaseRequest struct {
	PlayerIDs []uint64 `json:"player_ids"`
}

// ReleasePlayers drops players from the caller's roster into the release
// queue.  Commissioners may release from any roster.
func (h *AuctionHandler) ReleasePlayers(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body releaseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	commissioner := middleware.Role(c) == middleware.RoleCommissioner
	res, err := h.Engine.ReleasePlayers(c.Request().Context(), uid, commissioner, body.PlayerIDs, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "release players", err)
	}
	out := make([]releaseView, 0, len(res.Released))
	for _, r := range res.Released {
		out = append(out, newReleaseView(r))
	}
	return result(c, res.Result, http.StatusOK, echo.Map{"released": out})
}

// ReleaseQueue lists released players waiting for a decision.
func (h *AuctionHandler) ReleaseQueue(c echo.Context) error {
	list, err := h.Engine.ReleaseQueue(c.Request().Context())
	if err != nil {
		return failure(c, h.Log, "release queue", err)
	}
	out := make([]releaseView, 0, len(list))
	for _, r := range list {
		out = append(out, newReleaseView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type addReleasedRequest struct {
	StartingBid decimal.Decimal `json:"starting_bid"`
}

// AddReleasedPlayer nominates a queued player into the main auction.
func (h *AuctionHandler) AddReleasedPlayer(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	var body addReleasedRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StartingBid.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starting_bid must not be negative"})
	}

	ctx := c.Request().Context()
	now := h.Clock.Now()
	a, err := h.Auctions.GetOrCreate(ctx, uid, now)
	if err != nil {
		return failure(c, h.Log, "main auction", err)
	}
	res, err := h.Engine.AddReleasedPlayer(ctx, a.ID, id, uid, body.StartingBid, now)
	if err != nil {
		return failure(c, h.Log, "add released player", err)
	}
	if !res.OK {
		return result(c, res.Result, http.StatusCreated, nil)
	}
	h.evict(ctx)
	return result(c, res.Result, http.StatusCreated, echo.Map{"item_id": res.Item.ID})
}

// RejectReleasedPlayer closes a queue entry without nominating.
func (h *AuctionHandler) RejectReleasedPlayer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	res, err := h.Engine.RejectReleasedPlayer(c.Request().Context(), id, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "reject released player", err)
	}
	return result(c, res, http.StatusOK, nil)
}
