package handlers

import (
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type AuctionResponse struct {
	ID              string    `json:"id"`
	SellerID        string    `json:"seller_id"`
	Category        string    `json:"category"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartPrice      float64   `json:"start_price"`
	ReservePrice    float64   `json:"reserve_price,omitempty"`
	BuyNowPrice     float64   `json:"buy_now_price,omitempty"`
	CurrentPrice    float64   `json:"current_price"`
	CurrentBidderID string    `json:"current_bidder_id,omitempty"`
	WinnerID        string    `json:"winner_id,omitempty"`
	FinalPrice      float64   `json:"final_price,omitempty"`
	BidCount        int       `json:"bid_count"`
	WatchCount      int       `json:"watch_count"`
	Status          string    `json:"status"`
	EndTime         time.Time `json:"end_time"`
	CreatedAt       time.Time `json:"created_at"`
}

func toAuctionResponse(a *domain.Auction) *AuctionResponse {
	return &AuctionResponse{
		ID:              a.ID,
		SellerID:        a.SellerID,
		Category:        a.Category,
		Title:           a.Title,
		Description:     a.Description,
		StartPrice:      a.StartPrice,
		ReservePrice:    a.ReservePrice,
		BuyNowPrice:     a.BuyNowPrice,
		CurrentPrice:    a.CurrentPrice,
		CurrentBidderID: a.CurrentBidderID,
		WinnerID:        a.WinnerID,
		FinalPrice:      a.FinalPrice,
		BidCount:        a.BidCount,
		WatchCount:      a.WatchCount,
		Status:          a.Status.String(),
		EndTime:         a.EndTime,
		CreatedAt:       a.CreatedAt,
	}
}

func toAuctionResponses(auctions []*domain.Auction) []*AuctionResponse {
	out := make([]*AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, toAuctionResponse(a))
	}
	return out
}

type BidResponse struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	BuyNow    bool      `json:"buy_now,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toBidResponse(b *domain.Bid) *BidResponse {
	return &BidResponse{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		BuyNow:    b.BuyNow,
		CreatedAt: b.CreatedAt,
	}
}

type OfferResponse struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	BuyerID   string    `json:"buyer_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toOfferResponse(o *domain.Offer) *OfferResponse {
	return &OfferResponse{
		ID:        o.ID,
		AuctionID: o.AuctionID,
		BuyerID:   o.BuyerID,
		Amount:    o.Amount,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	PaymentVerified bool      `json:"payment_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		PaymentVerified: u.PaymentVerified,
		CreatedAt:       u.CreatedAt,
	}
}

type CommentResponse struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(cm *domain.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        cm.ID,
		AuctionID: cm.AuctionID,
		UserID:    cm.UserID,
		Body:      cm.Body,
		CreatedAt: cm.CreatedAt,
	}
}
