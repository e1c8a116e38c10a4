package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLOfferRepository struct {
	db *sql.DB
}

func NewMySQLOfferRepository(db *sql.DB) *MySQLOfferRepository {
	return &MySQLOfferRepository{db: db}
}

func (r *MySQLOfferRepository) CreateOffer(ctx context.Context, offer *domain.Offer) error {
	query := `
        INSERT INTO offers (id, auction_id, buyer_id, amount, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		offer.ID, offer.AuctionID, offer.BuyerID, offer.Amount,
		string(offer.Status), offer.CreatedAt, offer.UpdatedAt)
	return err
}

func (r *MySQLOfferRepository) GetOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	query := `
        SELECT id, auction_id, buyer_id, amount, status, created_at, updated_at
        FROM offers WHERE id = ?
    `

	var offer domain.Offer
	var status string

	err := r.db.QueryRowContext(ctx, query, offerID).Scan(
		&offer.ID, &offer.AuctionID, &offer.BuyerID, &offer.Amount,
		&status, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}

	offer.Status = domain.OfferStatus(status)
	return &offer, nil
}

func (r *MySQLOfferRepository) GetOffersForAuction(ctx context.Context, auctionID string) ([]*domain.Offer, error) {
	query := `
        SELECT id, auction_id, buyer_id, amount, status, created_at, updated_at
        FROM offers
        WHERE auction_id = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		var offer domain.Offer
		var status string

		err := rows.Scan(&offer.ID, &offer.AuctionID, &offer.BuyerID,
			&offer.Amount, &status, &offer.CreatedAt, &offer.UpdatedAt)
		if err != nil {
			return nil, err
		}

		offer.Status = domain.OfferStatus(status)
		offers = append(offers, &offer)
	}

	return offers, rows.Err()
}

func (r *MySQLOfferRepository) UpdateOfferStatus(ctx context.Context, offerID string, status domain.OfferStatus) error {
	query := `UPDATE offers SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), time.Now(), offerID)
	return err
}

func (r *MySQLOfferRepository) RejectPendingOffers(ctx context.Context, auctionID, exceptOfferID string) error {
	query := `
        UPDATE offers SET status = ?, updated_at = ?
        WHERE auction_id = ? AND status = ? AND id <> ?
    `
	_, err := r.db.ExecContext(ctx, query,
		string(domain.OfferRejected), time.Now(), auctionID, string(domain.OfferPending), exceptOfferID)
	return err
}
