package domain

// MarketplaceStats is the dashboard summary computed fresh on every request.
type MarketplaceStats struct {
	TotalAuctions    int     `json:"total_auctions"`
	ActiveAuctions   int     `json:"active_auctions"`
	SoldAuctions     int     `json:"sold_auctions"`
	TotalBids        int     `json:"total_bids"`
	TotalRevenue     float64 `json:"total_revenue"`
	AverageSalePrice float64 `json:"average_sale_price"`
}

type CategoryStats struct {
	Category     string  `json:"category"`
	Auctions     int     `json:"auctions"`
	Sold         int     `json:"sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

type UserStats struct {
	UserID      string  `json:"user_id"`
	BidsPlaced  int     `json:"bids_placed"`
	AuctionsWon int     `json:"auctions_won"`
	WinRate     float64 `json:"win_rate"`
	TotalSpent  float64 `json:"total_spent"`
}
