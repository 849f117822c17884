// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-auction/internal/handler"
	"github.com/iliyamo/fantasy-auction/internal/middleware"
)

// Middlewares are the Redis-backed layers applied to selected routes.
// Either may be a pass-through.
type Middlewares struct {
	RateLimit  echo.MiddlewareFunc
	BoardCache echo.MiddlewareFunc
}

// RegisterRoutes registers the unauthenticated routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuction registers the auction API under /v1.  The board and bid
// histories are public; everything else needs a token, and the
// commissioner tools need the COMMISSIONER role.
func RegisterAuction(e *echo.Echo, h *handler.AuctionHandler, jwtSecret string, mw Middlewares) {
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if mw.RateLimit == nil {
		mw.RateLimit = pass
	}
	if mw.BoardCache == nil {
		mw.BoardCache = pass
	}

	e.GET("/v1/auction", h.GetBoard, mw.BoardCache)
	e.GET("/v1/auction/items/:id/bids", h.GetBidHistory, mw.BoardCache)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner, middleware.RoleCommissioner))
	auth.POST("/auction/items/:id/bids", h.PlaceBid, mw.RateLimit)
	auth.GET("/me/bids", h.MyBids)
	auth.GET("/me/contracts", h.MyContracts)
	auth.POST("/contracts/:id/post", h.PostContract)
	auth.POST("/contracts/:id/buyout", h.Buyout)
	auth.POST("/team/release", h.ReleasePlayers)

	commish := middleware.RequireRole(middleware.RoleCommissioner)
	auth.POST("/auction/items", h.Nominate, commish)
	auth.POST("/auction/items/:id/remove", h.RemoveItem, commish)
	auth.POST("/auction/toggle-type", h.ToggleType, commish)
	auth.GET("/auction/release-queue", h.ReleaseQueue, commish)
	auth.POST("/auction/release-queue/:id/add", h.AddReleasedPlayer, commish)
	auth.POST("/auction/release-queue/:id/reject", h.RejectReleasedPlayer, commish)
	auth.POST("/admin/sweeps/contracts", h.SweepContracts, commish)
	auth.POST("/admin/sweeps/awards", h.SweepAwards, commish)
}
