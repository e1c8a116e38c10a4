package mysql

import (
	"context"
	"database/sql"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLStatsRepository struct {
	db *sql.DB
}

func NewMySQLStatsRepository(db *sql.DB) *MySQLStatsRepository {
	return &MySQLStatsRepository{db: db}
}

func (r *MySQLStatsRepository) MarketplaceStats(ctx context.Context) (*domain.MarketplaceStats, error) {
	var stats domain.MarketplaceStats

	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(status = ?), 0),
            COALESCE(SUM(status IN (?, ?)), 0),
            COALESCE(SUM(bid_count), 0)
        FROM auctions
    `
	err := r.db.QueryRowContext(ctx, query,
		int(domain.AuctionActive), int(domain.AuctionSold), int(domain.AuctionSoldBuyNow)).Scan(
		&stats.TotalAuctions, &stats.ActiveAuctions, &stats.SoldAuctions, &stats.TotalBids)
	if err != nil {
		return nil, err
	}

	query = `
        SELECT COALESCE(AVG(final_price), 0)
        FROM auctions
        WHERE status IN (?, ?)
    `
	err = r.db.QueryRowContext(ctx, query,
		int(domain.AuctionSold), int(domain.AuctionSoldBuyNow)).Scan(&stats.AverageSalePrice)
	if err != nil {
		return nil, err
	}

	query = `
        SELECT COALESCE(SUM(total_amount), 0)
        FROM bid_payments
        WHERE type = ? AND status = ?
    `
	err = r.db.QueryRowContext(ctx, query,
		string(domain.PaymentFinalCommission), string(domain.PaymentSucceeded)).Scan(&stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *MySQLStatsRepository) CategoryBreakdown(ctx context.Context) ([]*domain.CategoryStats, error) {
	query := `
        SELECT
            a.category,
            COUNT(*),
            COALESCE(SUM(a.status IN (?, ?)), 0),
            COALESCE(SUM(CASE WHEN a.status IN (?, ?) THEN a.final_price ELSE 0 END), 0)
        FROM auctions a
        GROUP BY a.category
        ORDER BY a.category
    `

	sold := int(domain.AuctionSold)
	buyNow := int(domain.AuctionSoldBuyNow)

	rows, err := r.db.QueryContext(ctx, query, sold, buyNow, sold, buyNow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []*domain.CategoryStats
	for rows.Next() {
		var cs domain.CategoryStats
		err := rows.Scan(&cs.Category, &cs.Auctions, &cs.Sold, &cs.TotalRevenue)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, &cs)
	}

	return breakdown, rows.Err()
}

func (r *MySQLStatsRepository) UserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	stats := domain.UserStats{UserID: userID}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bids WHERE bidder_id = ?`, userID).Scan(&stats.BidsPlaced)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT COUNT(*), COALESCE(SUM(final_price), 0)
        FROM auctions
        WHERE winner_id = ? AND status IN (?, ?)
    `
	err = r.db.QueryRowContext(ctx, query, userID,
		int(domain.AuctionSold), int(domain.AuctionSoldBuyNow)).Scan(&stats.AuctionsWon, &stats.TotalSpent)
	if err != nil {
		return nil, err
	}

	var auctionsBidOn int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT auction_id) FROM bids WHERE bidder_id = ?`, userID).Scan(&auctionsBidOn)
	if err != nil {
		return nil, err
	}

	if auctionsBidOn > 0 {
		stats.WinRate = float64(stats.AuctionsWon) / float64(auctionsBidOn)
	}

	return &stats, nil
}
