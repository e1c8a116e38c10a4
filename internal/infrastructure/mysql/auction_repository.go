package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

const auctionColumns = `id, seller_id, category, title, description, start_price, reserve_price,
        buy_now_price, current_price, current_bidder_id, winner_id, final_price,
        bid_count, watch_count, status, end_time, created_at, updated_at`

func (r *MySQLAuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.SellerID, auction.Category, auction.Title, auction.Description,
		auction.StartPrice, auction.ReservePrice, auction.BuyNowPrice,
		auction.CurrentPrice, auction.CurrentBidderID, auction.WinnerID, auction.FinalPrice,
		auction.BidCount, auction.WatchCount, int(auction.Status),
		auction.EndTime, auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (r *MySQLAuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`

	auction, err := scanAuction(r.db.QueryRowContext(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return auction, nil
}

func (r *MySQLAuctionRepository) ListAuctions(ctx context.Context, status *domain.AuctionStatus, category string) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE 1=1`
	var args []interface{}

	if status != nil {
		query += ` AND status = ?`
		args = append(args, int(*status))
	}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY end_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}

	return auctions, rows.Err()
}

func (r *MySQLAuctionRepository) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, int(status), time.Now(), auctionID)
	return err
}

// RecordBid is conditional on the stored price still being below the new
// amount, so a stale write that lost the race in Redis cannot regress the
// current price.
func (r *MySQLAuctionRepository) RecordBid(ctx context.Context, auctionID, bidderID string, amount float64) (bool, error) {
	query := `
        UPDATE auctions
        SET current_price = ?, current_bidder_id = ?, bid_count = bid_count + 1, updated_at = ?
        WHERE id = ? AND current_price < ?
    `
	result, err := r.db.ExecContext(ctx, query, amount, bidderID, time.Now(), auctionID, amount)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// SetWinner only touches a row that is still active, so two finalizations
// racing for the same auction cannot both settle it.
func (r *MySQLAuctionRepository) SetWinner(ctx context.Context, auctionID string, status domain.AuctionStatus, winnerID string, finalPrice float64) (bool, error) {
	query := `
        UPDATE auctions
        SET status = ?, winner_id = ?, final_price = ?, updated_at = ?
        WHERE id = ? AND status = ?
    `
	result, err := r.db.ExecContext(ctx, query, int(status), winnerID, finalPrice, time.Now(), auctionID, int(domain.AuctionActive))
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *MySQLAuctionRepository) UpdateEndTime(ctx context.Context, auctionID string, endTime time.Time) error {
	query := `UPDATE auctions SET end_time = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, endTime, time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) AdjustWatchCount(ctx context.Context, auctionID string, delta int) error {
	query := `UPDATE auctions SET watch_count = watch_count + ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, delta, time.Now(), auctionID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner) (*domain.Auction, error) {
	var auction domain.Auction
	var status int

	err := row.Scan(
		&auction.ID, &auction.SellerID, &auction.Category, &auction.Title, &auction.Description,
		&auction.StartPrice, &auction.ReservePrice, &auction.BuyNowPrice,
		&auction.CurrentPrice, &auction.CurrentBidderID, &auction.WinnerID, &auction.FinalPrice,
		&auction.BidCount, &auction.WatchCount, &status,
		&auction.EndTime, &auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	return &auction, nil
}
