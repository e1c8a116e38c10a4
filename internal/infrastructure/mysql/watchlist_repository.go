package mysql

import (
	"context"
	"database/sql"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLWatchlistRepository struct {
	db *sql.DB
}

func NewMySQLWatchlistRepository(db *sql.DB) *MySQLWatchlistRepository {
	return &MySQLWatchlistRepository{db: db}
}

func (r *MySQLWatchlistRepository) AddEntry(ctx context.Context, entry *domain.WatchlistEntry) (bool, error) {
	// INSERT IGNORE so double-watching is a no-op, unique key on (auction_id, user_id)
	query := `
        INSERT IGNORE INTO watchlist (id, auction_id, user_id, created_at)
        VALUES (?, ?, ?, ?)
    `
	result, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.AuctionID, entry.UserID, entry.CreatedAt)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *MySQLWatchlistRepository) RemoveEntry(ctx context.Context, auctionID, userID string) (bool, error) {
	query := `DELETE FROM watchlist WHERE auction_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, auctionID, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *MySQLWatchlistRepository) SaveComment(ctx context.Context, comment *domain.Comment) error {
	query := `
        INSERT INTO comments (id, auction_id, user_id, body, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.AuctionID, comment.UserID, comment.Body, comment.CreatedAt)
	return err
}

func (r *MySQLWatchlistRepository) GetCommentsForAuction(ctx context.Context, auctionID string) ([]*domain.Comment, error) {
	query := `
        SELECT id, auction_id, user_id, body, created_at
        FROM comments
        WHERE auction_id = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var comment domain.Comment
		err := rows.Scan(&comment.ID, &comment.AuctionID, &comment.UserID,
			&comment.Body, &comment.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}
