package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/middleware"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// AuctionHandler serves the board, bidding, contracts and the
// commissioner tools.
type AuctionHandler struct {
	Engine      *auction.Engine
	Auctions    *auction.CurrentAuctionProvider
	Clock       auction.Clock
	Cache       *redis.Client // nil disables board cache eviction
	CachePrefix string
	Log         zerolog.Logger
}

// NewAuctionHandler panics when a required dependency is missing.
func NewAuctionHandler(eng *auction.Engine, auctions *auction.CurrentAuctionProvider, clock auction.Clock,
	cache *redis.Client, cachePrefix string, log zerolog.Logger) *AuctionHandler {
	if eng == nil || auctions == nil || clock == nil {
		panic("nil dependency passed to NewAuctionHandler")
	}
	return &AuctionHandler{
		Engine:      eng,
		Auctions:    auctions,
		Clock:       clock,
		Cache:       cache,
		CachePrefix: cachePrefix,
		Log:         log.With().Str("component", "http").Logger(),
	}
}

// evict drops cached board pages after a mutation.
func (h *AuctionHandler) evict(ctx context.Context) {
	if err := middleware.EvictCache(ctx, h.Cache, h.CachePrefix); err != nil {
		h.Log.Warn().Err(err).Msg("board cache eviction failed")
	}
}

// GetBoard returns the main auction and its active lots.
func (h *AuctionHandler) GetBoard(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.Auctions.Current(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active auction"})
	} else if err != nil {
		return failure(c, h.Log, "current auction", err)
	}
	b, err := h.Engine.Board(ctx, a.ID, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "board", err)
	}
	items := make([]itemView, 0, len(b.Items))
	for _, bi := range b.Items {
		items = append(items, newItemView(bi))
	}
	return c.JSON(http.StatusOK, echo.Map{"auction": newAuctionView(b.Auction), "items": items})
}

// GetBidHistory lists a lot's bids, highest first.
func (h *AuctionHandler) GetBidHistory(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	bids, err := h.Engine.BidHistory(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auction item not found"})
	} else if err != nil {
		return failure(c, h.Log, "bid history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bidViews(bids)})
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// PlaceBid bids on a lot for the caller.
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var body placeBidRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !body.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}

	ctx := c.Request().Context()
	res, err := h.Engine.PlaceBid(ctx, id, uid, body.Amount, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "place bid", err)
	}
	if !res.OK {
		return result(c, res.Result, http.StatusCreated, nil)
	}
	h.evict(ctx)
	return result(c, res.Result, http.StatusCreated, echo.Map{"bid": newBidView(*res.Bid)})
}

// MyBids lists the caller's bids, newest first.
func (h *AuctionHandler) MyBids(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bids, err := h.Engine.BidsByBidder(c.Request().Context(), uid)
	if err != nil {
		return failure(c, h.Log, "my bids", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bidViews(bids)})
}

type nominateRequest struct {
	PlayerID    uint64          `json:"player_id"`
	StartingBid decimal.Decimal `json:"starting_bid"`
}

// Nominate puts a free agent up in the main auction, creating the
// auction if there is none.
func (h *AuctionHandler) Nominate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body nominateRequest
	if err := c.Bind(&body); err != nil || body.PlayerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "player_id is required"})
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
	res, err := h.Engine.NominatePlayer(ctx, a.ID, body.PlayerID, uid, body.StartingBid, now)
	if err != nil {
		return failure(c, h.Log, "nominate", err)
	}
	if !res.OK {
		return result(c, res.Result, http.StatusCreated, nil)
	}
	h.evict(ctx)
	return result(c, res.Result, http.StatusCreated, echo.Map{"item_id": res.Item.ID})
}

// RemoveItem withdraws a lot, or awards it when it has a bidder.
func (h *AuctionHandler) RemoveItem(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx := c.Request().Context()
	res, err := h.Engine.RemoveItem(ctx, id, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "remove item", err)
	}
	if res.OK {
		h.evict(ctx)
	}
	return result(c, res, http.StatusOK, nil)
}

// ToggleType switches the main auction between in-season and off-season.
func (h *AuctionHandler) ToggleType(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	res, err := h.Auctions.ToggleType(ctx, uid, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "toggle type", err)
	}
	if res.OK {
		h.evict(ctx)
	}
	return result(c, res, http.StatusOK, nil)
}

// SweepContracts runs the expired-contract sweep now.
func (h *AuctionHandler) SweepContracts(c echo.Context) error {
	rep, err := h.Engine.ProcessExpiredContracts(c.Request().Context(), h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "contract sweep", err)
	}
	return c.JSON(http.StatusOK, rep)
}

// SweepAwards runs the auto-award sweep now.
func (h *AuctionHandler) SweepAwards(c echo.Context) error {
	ctx := c.Request().Context()
	rep, err := h.Engine.AutoAwardExpiredAuctions(ctx, h.Clock.Now())
	if err != nil {
		return failure(c, h.Log, "award sweep", err)
	}
	if rep.Processed > 0 {
		h.evict(ctx)
	}
	return c.JSON(http.StatusOK, rep)
}
