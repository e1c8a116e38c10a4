package websocket

import (
	"context"
	"net/http"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BidPlacer is the slice of the bid service the live channel needs.
type BidPlacer interface {
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error)
}

// Handler upgrades auction-page connections and runs their read loop.
type Handler struct {
	bidService  BidPlacer
	auctionRepo domain.AuctionRepository
	stateCache  domain.AuctionStateCache
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewHandler(
	bidService BidPlacer,
	auctionRepo domain.AuctionRepository,
	stateCache domain.AuctionStateCache,
	connManager domain.ConnectionManager,
	log logger.Logger,
) *Handler {
	return &Handler{
		bidService:  bidService,
		auctionRepo: auctionRepo,
		stateCache:  stateCache,
		connManager: connManager,
		log:         log,
	}
}

// HandleConnection serves GET /ws/auctions/:id. The route's query-token
// middleware validates the JWT and injects the caller identity, since
// browsers cannot set headers on websocket upgrades.
func (h *Handler) HandleConnection(c echo.Context) error {
	auctionID := c.Param("id")
	ctx := c.Request().Context()

	status, err := h.stateCache.GetAuctionStatus(ctx, auctionID)
	if err != nil {
		// Cache miss or Redis hiccup: fall back to the database row.
		auction, repoErr := h.auctionRepo.GetAuction(ctx, auctionID)
		if repoErr != nil {
			h.log.Error("Failed to check auction status", "auction_id", auctionID, "error", repoErr)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to check auction")
		}
		status = auction.Status
	}
	if status != domain.AuctionActive {
		return echo.NewHTTPError(http.StatusForbidden, "auction is not live")
	}

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "auction_id", auctionID, "error", err)
		return nil
	}

	wsConn := NewConnection(conn, userID, auctionID, h.log)
	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "auction_id", auctionID, "error", err)
		conn.Close()
		return nil
	}

	h.log.Info("WebSocket connected", "auction_id", auctionID, "user_id", userID)
	go h.readLoop(wsConn)

	return nil
}

func (h *Handler) readLoop(conn *Connection) {
	defer func() {
		if err := h.connManager.UnregisterConnection(conn.UserID(), conn.AuctionID()); err != nil {
			h.log.Error("Failed to unregister connection", "error", err)
		}
		conn.Close()
	}()

	for {
		var msg struct {
			Type   string  `json:"type"`
			Amount float64 `json:"amount"`
		}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Error("WebSocket read failed", "auction_id", conn.AuctionID(), "error", err)
			}
			return
		}

		switch msg.Type {
		case "place_bid":
			h.handleBid(conn, msg.Amount)
		case "ping":
			if err := conn.Send(map[string]string{"type": "pong"}); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleBid(conn *Connection, amount float64) {
	bid, err := h.bidService.PlaceBid(context.Background(), conn.AuctionID(), conn.UserID(), amount)
	if err != nil {
		if sendErr := conn.Send(map[string]string{
			"type":    "bid_rejected",
			"message": err.Error(),
		}); sendErr != nil {
			h.log.Error("Failed to send rejection", "auction_id", conn.AuctionID(), "error", sendErr)
		}
		return
	}

	if err := conn.Send(map[string]interface{}{
		"type":   "bid_confirmed",
		"bid_id": bid.ID,
		"amount": bid.Amount,
	}); err != nil {
		h.log.Error("Failed to send confirmation", "auction_id", conn.AuctionID(), "error", err)
	}
}
