package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

const paymentColumns = `id, auction_id, user_id, bid_amount, commission_amount, total_amount,
        provider_intent_id, payment_method_id, status, type, created_at, updated_at`

func (r *MySQLPaymentRepository) CreatePayment(ctx context.Context, payment *domain.BidPayment) error {
	query := `
        INSERT INTO bid_payments (` + paymentColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.AuctionID, payment.UserID,
		payment.BidAmount, payment.CommissionAmount, payment.TotalAmount,
		payment.ProviderIntentID, payment.PaymentMethodID,
		string(payment.Status), string(payment.Type),
		payment.CreatedAt, payment.UpdatedAt)
	return err
}

func (r *MySQLPaymentRepository) UpdatePayment(ctx context.Context, paymentID string, status domain.PaymentStatus, providerIntentID string) error {
	query := `
        UPDATE bid_payments
        SET status = ?, provider_intent_id = ?, updated_at = ?
        WHERE id = ?
    `
	result, err := r.db.ExecContext(ctx, query, string(status), providerIntentID, time.Now(), paymentID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *MySQLPaymentRepository) GetPaymentsByUserAndStatus(ctx context.Context, userID string, status domain.PaymentStatus) ([]*domain.BidPayment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM bid_payments
        WHERE user_id = ? AND status = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.BidPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func (r *MySQLPaymentRepository) GetAuthorization(ctx context.Context, auctionID, userID string) (*domain.BidPayment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM bid_payments
        WHERE auction_id = ? AND user_id = ? AND type = ? AND status = ?
        ORDER BY created_at DESC
        LIMIT 1
    `

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, auctionID, userID,
		string(domain.PaymentBidAuthorization), string(domain.PaymentRequiresCapture)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// RetireAuthorizations flips the user's authorization records inside one
// transaction so a crash cannot leave the cancel-and-replace half applied.
func (r *MySQLPaymentRepository) RetireAuthorizations(ctx context.Context, userID string) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.ExecContext(ctx, `
        UPDATE bid_payments SET status = ?, updated_at = ?
        WHERE user_id = ? AND type = ? AND status = ?
    `, string(domain.PaymentCanceled), now, userID,
		string(domain.PaymentBidAuthorization), string(domain.PaymentRequiresCapture))
	if err != nil {
		return 0, 0, err
	}
	canceled, err := result.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	result, err = tx.ExecContext(ctx, `
        UPDATE bid_payments SET status = ?, updated_at = ?
        WHERE user_id = ? AND type = ? AND status = ?
    `, string(domain.PaymentReplaced), now, userID,
		string(domain.PaymentBidAuthorization), string(domain.PaymentSucceeded))
	if err != nil {
		return 0, 0, err
	}
	replaced, err := result.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return int(canceled), int(replaced), nil
}

func scanPayment(row rowScanner) (*domain.BidPayment, error) {
	var payment domain.BidPayment
	var status, paymentType string

	err := row.Scan(
		&payment.ID, &payment.AuctionID, &payment.UserID,
		&payment.BidAmount, &payment.CommissionAmount, &payment.TotalAmount,
		&payment.ProviderIntentID, &payment.PaymentMethodID,
		&status, &paymentType, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatus(status)
	payment.Type = domain.PaymentType(paymentType)
	return &payment, nil
}
