package api

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/handlers"
	authmw "github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/websocket"

	"github.com/labstack/echo/v4"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Auction   *handlers.AuctionHandler
	Bid       *handlers.BidHandler
	Offer     *handlers.OfferHandler
	Watchlist *handlers.WatchlistHandler
	Stats     *handlers.StatsHandler
	Category  *handlers.CategoryHandler
	WebSocket *websocket.Handler
}

// RegisterRoutes mounts the API under /api/v1. Reads on auctions, bids,
// offers, comments and categories are public; writes require a token and
// the admin group additionally requires the admin role.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)

	v1.GET("/auctions", h.Auction.ListAuctions)
	v1.GET("/auctions/:id", h.Auction.GetAuction)
	v1.GET("/auctions/:id/bids", h.Bid.ListBids)
	v1.GET("/auctions/:id/offers", h.Offer.ListOffers)
	v1.GET("/auctions/:id/comments", h.Watchlist.ListComments)
	v1.GET("/categories", h.Category.ListCategories)
	v1.GET("/stats/marketplace", h.Stats.MarketplaceReport)

	auth := v1.Group("", authmw.JWT(jwtSecret))
	auth.GET("/users/me", h.User.Me)
	auth.PUT("/users/me/payment-method", h.User.ReplacePaymentMethod)
	auth.GET("/stats/me", h.User.MyStats)

	auth.POST("/auctions", h.Auction.CreateAuction)
	auth.DELETE("/auctions/:id", h.Auction.CancelAuction)
	auth.POST("/auctions/:id/bids", h.Bid.PlaceBid)
	auth.POST("/auctions/:id/buy-now", h.Bid.BuyNow)
	auth.POST("/auctions/:id/offers", h.Offer.MakeOffer)
	auth.POST("/offers/:offerId/respond", h.Offer.RespondToOffer)
	auth.DELETE("/offers/:offerId", h.Offer.WithdrawOffer)
	auth.POST("/auctions/:id/watch", h.Watchlist.Watch)
	auth.DELETE("/auctions/:id/watch", h.Watchlist.Unwatch)
	auth.POST("/auctions/:id/comments", h.Watchlist.AddComment)

	admin := v1.Group("/admin", authmw.JWT(jwtSecret), authmw.RequireAdmin())
	admin.POST("/auctions/:id/approve", h.Auction.ApproveAuction)
	admin.POST("/auctions/:id/end", h.Auction.CloseAuction)
	admin.POST("/auctions/:id/cancel", h.Auction.CancelAuction)
	admin.POST("/categories", h.Category.CreateCategory)
	admin.PUT("/commissions/:category", h.Category.SetCommission)

	e.GET("/ws/auctions/:id", h.WebSocket.HandleConnection, authmw.JWTFromQuery(jwtSecret))
}
